package loyalty

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/models"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/repository"
	"github.com/google/uuid"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,48}$`)

type ClinicInput struct {
	Name             string `json:"name"`
	Slug             string `json:"slug"`
	PrimaryColor     string `json:"primaryColor"`
	Texture          string `json:"texture"`
	LogoURL          string `json:"logoUrl"`
	SubscriptionTier string `json:"subscriptionTier"`
	// AdminName and AdminEmail, when set, create the clinic's first ADMIN user.
	AdminName  string `json:"adminName"`
	AdminEmail string `json:"adminEmail"`
}

type ClinicUpdate struct {
	Name             *string    `json:"name"`
	Slug             *string    `json:"slug"`
	PrimaryColor     *string    `json:"primaryColor"`
	Texture          *string    `json:"texture"`
	LogoURL          *string    `json:"logoUrl"`
	SubscriptionTier *string    `json:"subscriptionTier"`
	AdminUserID      *uuid.UUID `json:"adminUserId"`
}

// CreateClinic opens a new tenant. The operator's view of every clinic is returned.
func (e *Engine) CreateClinic(ctx context.Context, in ClinicInput) (*Result, error) {
	return e.mutate(ctx, "CreateClinic", nil, func(m *mutation) error {
		name := strings.TrimSpace(in.Name)
		slug := strings.TrimSpace(in.Slug)
		if name == "" {
			return fail(CodeValidation, "Clinic name is required")
		}
		if !slugPattern.MatchString(slug) {
			return fail(CodeValidation, "Slug %q must be 2-49 lowercase letters, digits or dashes", slug)
		}
		if _, err := m.tx.GetClinicBySlug(ctx, slug); err == nil {
			return fail(CodeConflict, "Slug %s is already taken", slug)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("check slug: %w", err)
		}

		clinic := &models.Clinic{
			ID:               uuid.New(),
			Name:             name,
			Slug:             slug,
			PrimaryColor:     in.PrimaryColor,
			Texture:          in.Texture,
			LogoURL:          in.LogoURL,
			SubscriptionTier: strings.ToUpper(strings.TrimSpace(in.SubscriptionTier)),
		}
		if clinic.SubscriptionTier == "" {
			clinic.SubscriptionTier = "FREE"
		}
		if err := m.tx.CreateClinic(ctx, clinic); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return fail(CodeConflict, "Slug %s is already taken", slug)
			}
			return fmt.Errorf("create clinic: %w", err)
		}

		if adminName := strings.TrimSpace(in.AdminName); adminName != "" {
			admin := &models.User{
				ID:          uuid.New(),
				ClinicID:    clinic.ID,
				Role:        models.RoleAdmin,
				Name:        adminName,
				Email:       strings.TrimSpace(in.AdminEmail),
				CurrentTier: e.policy.Tiers[0].Tier,
			}
			if err := m.tx.CreateUser(ctx, admin); err != nil {
				return fmt.Errorf("create clinic admin: %w", err)
			}
			clinic.AdminUserID = &admin.ID
			if err := m.tx.UpdateClinic(ctx, clinic); err != nil {
				return fmt.Errorf("update clinic: %w", err)
			}
		}
		return m.done("Clinic %s created", clinic.Name)
	})
}

// UpdateClinic edits a clinic's profile. The slug cannot change once issued.
func (e *Engine) UpdateClinic(ctx context.Context, clinicID uuid.UUID, upd ClinicUpdate) (*Result, error) {
	return e.mutate(ctx, "UpdateClinic", nil, func(m *mutation) error {
		clinic, err := m.tx.GetClinic(ctx, clinicID)
		if errors.Is(err, repository.ErrNotFound) {
			return fail(CodeNotFound, "Clinic not found")
		}
		if err != nil {
			return fmt.Errorf("load clinic: %w", err)
		}

		if upd.Slug != nil && strings.TrimSpace(*upd.Slug) != clinic.Slug {
			return fail(CodeValidation, "Clinic slug cannot be changed")
		}
		if upd.Name != nil {
			name := strings.TrimSpace(*upd.Name)
			if name == "" {
				return fail(CodeValidation, "Clinic name is required")
			}
			clinic.Name = name
		}
		if upd.PrimaryColor != nil {
			clinic.PrimaryColor = *upd.PrimaryColor
		}
		if upd.Texture != nil {
			clinic.Texture = *upd.Texture
		}
		if upd.LogoURL != nil {
			clinic.LogoURL = *upd.LogoURL
		}
		if upd.SubscriptionTier != nil {
			clinic.SubscriptionTier = strings.ToUpper(strings.TrimSpace(*upd.SubscriptionTier))
		}
		if upd.AdminUserID != nil {
			if _, err := e.loadMember(ctx, m.tx, clinic.ID, *upd.AdminUserID); err != nil {
				return err
			}
			clinic.AdminUserID = upd.AdminUserID
		}

		if err := m.tx.UpdateClinic(ctx, clinic); err != nil {
			return fmt.Errorf("update clinic: %w", err)
		}
		m.evict = append(m.evict, clinic.ID)
		return m.done("Clinic %s updated", clinic.Name)
	})
}

// DeleteClinic removes a clinic together with every user, wallet, ledger entry, household,
// care plan and appointment it owns.
func (e *Engine) DeleteClinic(ctx context.Context, clinicID uuid.UUID) (*Result, error) {
	return e.mutate(ctx, "DeleteClinic", nil, func(m *mutation) error {
		clinic, err := m.tx.GetClinic(ctx, clinicID)
		if errors.Is(err, repository.ErrNotFound) {
			return fail(CodeNotFound, "Clinic not found")
		}
		if err != nil {
			return fmt.Errorf("load clinic: %w", err)
		}
		if err := m.tx.DeleteClinic(ctx, clinicID); err != nil {
			return fmt.Errorf("delete clinic: %w", err)
		}
		m.evict = append(m.evict, clinicID)
		return m.done("Clinic %s deleted", clinic.Name)
	})
}

func (e *Engine) ListClinics(ctx context.Context) ([]models.Clinic, error) {
	clinics, err := e.store.ListClinics(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListClinics: %w", err)
	}
	return clinics, nil
}

type PatientInput struct {
	Name   string `json:"name"`
	Mobile string `json:"mobile"`
	Email  string `json:"email"`
}

// RegisterPatient enrolls a patient with an empty wallet. Mobile numbers are unique per clinic.
func (e *Engine) RegisterPatient(ctx context.Context, clinicID uuid.UUID, in PatientInput) (*Result, error) {
	return e.mutate(ctx, "RegisterPatient", &clinicID, func(m *mutation) error {
		if _, err := e.loadClinic(ctx, m.tx, clinicID); err != nil {
			return err
		}
		name := strings.TrimSpace(in.Name)
		mobile := NormalizeMobile(in.Mobile)
		if name == "" {
			return fail(CodeValidation, "Patient name is required")
		}
		if len(strings.TrimPrefix(mobile, "+")) < 7 {
			return fail(CodeValidation, "Mobile number %q is too short", in.Mobile)
		}

		if _, err := m.tx.FindUserByMobile(ctx, clinicID, mobile); err == nil {
			return fail(CodeConflict, "Mobile %s is already registered", mobile)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("check mobile: %w", err)
		}

		patient := &models.User{
			ID:          uuid.New(),
			ClinicID:    clinicID,
			Role:        models.RolePatient,
			Name:        name,
			Mobile:      &mobile,
			Email:       strings.TrimSpace(in.Email),
			CurrentTier: e.policy.Tiers[0].Tier,
		}
		if err := m.tx.CreateUser(ctx, patient); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return fail(CodeConflict, "Mobile %s is already registered", mobile)
			}
			return fmt.Errorf("create patient: %w", err)
		}
		if err := m.tx.CreateWallet(ctx, &models.Wallet{ID: uuid.New(), UserID: patient.ID, ClinicID: clinicID}); err != nil {
			return fmt.Errorf("create wallet: %w", err)
		}
		return m.done("%s registered", name)
	})
}
