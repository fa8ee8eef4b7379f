package loyalty

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/models"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/repository"
	"github.com/google/uuid"
)

// NormalizeMobile strips formatting so numbers compare equal however they were typed.
func NormalizeMobile(mobile string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(mobile) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// householdOf finds or creates the group headed by head and points the head at it.
func (e *Engine) householdOf(ctx context.Context, tx repository.Store, head *models.User) (*models.FamilyGroup, error) {
	if head.FamilyGroupID != nil {
		group, err := tx.GetFamilyGroup(ctx, *head.FamilyGroupID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("load family group: %w", err)
		}
		if err == nil {
			if group.HeadUserID != head.ID {
				return nil, fail(CodeValidation, "%s already belongs to another household", head.Name)
			}
			return group, nil
		}
	}

	group, err := tx.GetFamilyGroupByHead(ctx, head.ID)
	if errors.Is(err, repository.ErrNotFound) {
		group = &models.FamilyGroup{
			ID:         uuid.New(),
			ClinicID:   head.ClinicID,
			Name:       head.Name + " Family",
			HeadUserID: head.ID,
		}
		if err := tx.CreateFamilyGroup(ctx, group); err != nil {
			return nil, fmt.Errorf("create family group: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("load family group: %w", err)
	}

	head.FamilyGroupID = &group.ID
	if err := tx.UpdateUser(ctx, head); err != nil {
		return nil, fmt.Errorf("update household head: %w", err)
	}
	return group, nil
}

// LinkFamilyMember moves the patient registered under memberMobile into the head's household,
// taking them out of any household they belong to.
func (e *Engine) LinkFamilyMember(ctx context.Context, clinicID, headUserID uuid.UUID, memberMobile string) (*Result, error) {
	return e.linkFamilyMember(ctx, "LinkFamilyMember", clinicID, headUserID, memberMobile, true)
}

// ClaimFamilyMember is the patient-initiated LinkFamilyMember. Only patients outside any
// household can be claimed; moving members between households is left to clinic staff.
func (e *Engine) ClaimFamilyMember(ctx context.Context, clinicID, headUserID uuid.UUID, memberMobile string) (*Result, error) {
	return e.linkFamilyMember(ctx, "ClaimFamilyMember", clinicID, headUserID, memberMobile, false)
}

func (e *Engine) linkFamilyMember(ctx context.Context, action string, clinicID, headUserID uuid.UUID, memberMobile string, move bool) (*Result, error) {
	return e.mutate(ctx, action, &clinicID, func(m *mutation) error {
		mobile := NormalizeMobile(memberMobile)
		if mobile == "" {
			return fail(CodeValidation, "Member mobile number is required")
		}
		head, err := e.loadPatient(ctx, m.tx, clinicID, headUserID)
		if err != nil {
			return err
		}

		member, err := m.tx.FindUserByMobile(ctx, head.ClinicID, mobile)
		if errors.Is(err, repository.ErrNotFound) {
			return fail(CodeNotFound, "No patient with mobile %s in this clinic", mobile)
		}
		if err != nil {
			return fmt.Errorf("find member: %w", err)
		}
		if member.Role != models.RolePatient {
			return fail(CodeNotFound, "No patient with mobile %s in this clinic", mobile)
		}
		if member.ID == head.ID {
			return fail(CodeValidation, "A head of household cannot link themselves")
		}

		group, err := e.householdOf(ctx, m.tx, head)
		if err != nil {
			return err
		}
		if member.FamilyGroupID != nil && *member.FamilyGroupID == group.ID {
			return m.done("%s is already in %s", member.Name, group.Name)
		}
		if member.FamilyGroupID != nil && !move {
			return fail(CodeAuth, "%s already belongs to a household, ask the clinic to move them", member.Name)
		}

		if err := e.dissolveOwnHousehold(ctx, m.tx, member); err != nil {
			return err
		}
		member.FamilyGroupID = &group.ID
		if err := m.tx.UpdateUser(ctx, member); err != nil {
			return fmt.Errorf("update member: %w", err)
		}
		return m.done("%s joined %s", member.Name, group.Name)
	})
}

// dissolveOwnHousehold removes the empty group a user heads so they can join another one.
// Heads of households that still have members must unlink them first.
func (e *Engine) dissolveOwnHousehold(ctx context.Context, tx repository.Store, user *models.User) error {
	own, err := tx.GetFamilyGroupByHead(ctx, user.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load family group: %w", err)
	}

	members, err := tx.ListFamilyMembers(ctx, own.ID)
	if err != nil {
		return fmt.Errorf("list family members: %w", err)
	}
	for _, other := range members {
		if other.ID != user.ID {
			return fail(CodeValidation, "%s heads a household with other members", user.Name)
		}
	}
	if err := tx.DeleteFamilyGroup(ctx, own.ID); err != nil {
		return fmt.Errorf("delete family group: %w", err)
	}
	return nil
}

// AddFamilyMember registers a dependent without their own login under the head's household.
func (e *Engine) AddFamilyMember(ctx context.Context, clinicID, headUserID uuid.UUID, name, relation string, age int) (*Result, error) {
	return e.mutate(ctx, "AddFamilyMember", &clinicID, func(m *mutation) error {
		name = strings.TrimSpace(name)
		if name == "" {
			return fail(CodeValidation, "Member name is required")
		}
		if age < 0 || age > 130 {
			return fail(CodeValidation, "Age must be within 0..130")
		}
		head, err := e.loadPatient(ctx, m.tx, clinicID, headUserID)
		if err != nil {
			return err
		}
		group, err := e.householdOf(ctx, m.tx, head)
		if err != nil {
			return err
		}

		member := &models.User{
			ID:            uuid.New(),
			ClinicID:      head.ClinicID,
			Role:          models.RolePatient,
			Name:          name,
			CurrentTier:   e.policy.Tiers[0].Tier,
			FamilyGroupID: &group.ID,
			Relation:      strings.TrimSpace(relation),
			Age:           age,
		}
		if err := m.tx.CreateUser(ctx, member); err != nil {
			return fmt.Errorf("create member: %w", err)
		}
		if err := m.tx.CreateWallet(ctx, &models.Wallet{ID: uuid.New(), UserID: member.ID, ClinicID: member.ClinicID}); err != nil {
			return fmt.Errorf("create wallet: %w", err)
		}
		return m.done("%s added to %s", name, group.Name)
	})
}
