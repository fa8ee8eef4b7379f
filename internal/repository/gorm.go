package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/models"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the PostgreSQL-backed Store.
type GormStore struct {
	db   *gorm.DB
	inTx bool
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Atomic(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, inTx: true})
	})
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// locked adds FOR UPDATE to reads made inside a transaction.
func (s *GormStore) locked(ctx context.Context) *gorm.DB {
	q := s.db.WithContext(ctx)
	if s.inTx {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

func first[T any](q *gorm.DB, query string, args ...interface{}) (*T, error) {
	var out T
	if err := q.Where(query, args...).First(&out).Error; err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

// saved maps a zero-row update to ErrNotFound.
func saved(res *gorm.DB) error {
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) GetClinic(ctx context.Context, id uuid.UUID) (*models.Clinic, error) {
	return first[models.Clinic](s.db.WithContext(ctx), "id = ?", id)
}

func (s *GormStore) GetClinicBySlug(ctx context.Context, slug string) (*models.Clinic, error) {
	return first[models.Clinic](s.db.WithContext(ctx), "slug = ?", slug)
}

// LockClinic serializes writers that must see a consistent view of a clinic, such as the
// appointment conflict check.
func (s *GormStore) LockClinic(ctx context.Context, id uuid.UUID) (*models.Clinic, error) {
	return first[models.Clinic](s.locked(ctx), "id = ?", id)
}

func (s *GormStore) ListClinics(ctx context.Context) ([]models.Clinic, error) {
	var out []models.Clinic
	if err := s.db.WithContext(ctx).Order("created_at, id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GormStore) CreateClinic(ctx context.Context, clinic *models.Clinic) error {
	return translate(s.db.WithContext(ctx).Create(clinic).Error)
}

func (s *GormStore) UpdateClinic(ctx context.Context, clinic *models.Clinic) error {
	return saved(s.db.WithContext(ctx).Model(clinic).Select("*").Omit("created_at").Updates(clinic))
}

// DeleteClinic removes the clinic and all rows scoped to it, children first.
func (s *GormStore) DeleteClinic(ctx context.Context, id uuid.UUID) error {
	return s.Atomic(ctx, func(st Store) error {
		tx := st.(*GormStore).db.WithContext(ctx)
		for _, model := range []interface{}{
			&models.Transaction{},
			&models.Wallet{},
			&models.Appointment{},
			&models.CarePlan{},
			&models.FamilyGroup{},
			&models.User{},
		} {
			if err := tx.Scopes(tenant.ForClinic(id)).Delete(model).Error; err != nil {
				return fmt.Errorf("delete %T: %w", model, err)
			}
		}
		return saved(tx.Delete(&models.Clinic{}, "id = ?", id))
	})
}

func (s *GormStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return first[models.User](s.locked(ctx), "id = ?", id)
}

func (s *GormStore) FindUserByMobile(ctx context.Context, clinicID uuid.UUID, mobile string) (*models.User, error) {
	return first[models.User](s.db.WithContext(ctx).Scopes(tenant.ForClinic(clinicID)), "mobile = ?", mobile)
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	return translate(s.db.WithContext(ctx).Create(user).Error)
}

func (s *GormStore) UpdateUser(ctx context.Context, user *models.User) error {
	return saved(s.db.WithContext(ctx).Model(user).Select("*").Omit("created_at").Updates(user))
}

func (s *GormStore) GetWalletByUser(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	return first[models.Wallet](s.locked(ctx), "user_id = ?", userID)
}

func (s *GormStore) CreateWallet(ctx context.Context, wallet *models.Wallet) error {
	return translate(s.db.WithContext(ctx).Create(wallet).Error)
}

func (s *GormStore) UpdateWallet(ctx context.Context, wallet *models.Wallet) error {
	return saved(s.db.WithContext(ctx).Model(wallet).Select("*").Omit("created_at").Updates(wallet))
}

func (s *GormStore) AppendTransaction(ctx context.Context, entry *models.Transaction) error {
	return translate(s.db.WithContext(ctx).Create(entry).Error)
}

func (s *GormStore) GetFamilyGroup(ctx context.Context, id uuid.UUID) (*models.FamilyGroup, error) {
	return first[models.FamilyGroup](s.db.WithContext(ctx), "id = ?", id)
}

func (s *GormStore) GetFamilyGroupByHead(ctx context.Context, headUserID uuid.UUID) (*models.FamilyGroup, error) {
	return first[models.FamilyGroup](s.db.WithContext(ctx), "head_user_id = ?", headUserID)
}

func (s *GormStore) ListFamilyMembers(ctx context.Context, groupID uuid.UUID) ([]models.User, error) {
	var out []models.User
	err := s.db.WithContext(ctx).Where("family_group_id = ?", groupID).Order("created_at, id").Find(&out).Error
	return out, err
}

func (s *GormStore) CreateFamilyGroup(ctx context.Context, group *models.FamilyGroup) error {
	return translate(s.db.WithContext(ctx).Create(group).Error)
}

func (s *GormStore) DeleteFamilyGroup(ctx context.Context, id uuid.UUID) error {
	return saved(s.db.WithContext(ctx).Delete(&models.FamilyGroup{}, "id = ?", id))
}

func (s *GormStore) GetCarePlan(ctx context.Context, id uuid.UUID) (*models.CarePlan, error) {
	return first[models.CarePlan](s.locked(ctx), "id = ?", id)
}

func (s *GormStore) ListActiveCarePlans(ctx context.Context, clinicID uuid.UUID, userID *uuid.UUID) ([]models.CarePlan, error) {
	q := s.locked(ctx).Scopes(tenant.ForClinic(clinicID)).Where("is_active = ?", true)
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	var out []models.CarePlan
	err := q.Order("assigned_at, id").Find(&out).Error
	return out, err
}

func (s *GormStore) CreateCarePlan(ctx context.Context, plan *models.CarePlan) error {
	return translate(s.db.WithContext(ctx).Create(plan).Error)
}

func (s *GormStore) UpdateCarePlan(ctx context.Context, plan *models.CarePlan) error {
	return saved(s.db.WithContext(ctx).Model(plan).Select("*").Omit("assigned_at").Updates(plan))
}

func (s *GormStore) GetAppointment(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	return first[models.Appointment](s.locked(ctx), "id = ?", id)
}

func (s *GormStore) ListOpenAppointments(ctx context.Context, clinicID uuid.UUID, from, to time.Time) ([]models.Appointment, error) {
	var out []models.Appointment
	err := s.db.WithContext(ctx).
		Scopes(tenant.ForClinic(clinicID)).
		Where("status <> ?", models.AppointmentCancelled).
		Where("start_time < ? AND end_time > ?", to, from).
		Order("start_time, id").
		Find(&out).Error
	return out, err
}

func (s *GormStore) CreateAppointment(ctx context.Context, appt *models.Appointment) error {
	return translate(s.db.WithContext(ctx).Create(appt).Error)
}

func (s *GormStore) UpdateAppointment(ctx context.Context, appt *models.Appointment) error {
	return saved(s.db.WithContext(ctx).Model(appt).Select("*").Omit("created_at").Updates(appt))
}

func (s *GormStore) Snapshot(ctx context.Context, clinicID *uuid.UUID) (*models.DatabaseState, error) {
	db := s.db.WithContext(ctx)
	scoped := func() *gorm.DB {
		if clinicID == nil {
			return db
		}
		return db.Scopes(tenant.ForClinic(*clinicID))
	}

	state := &models.DatabaseState{}
	clinics := db.Order("created_at, id")
	if clinicID != nil {
		clinics = clinics.Where("id = ?", *clinicID)
	}
	if err := clinics.Find(&state.Clinics).Error; err != nil {
		return nil, fmt.Errorf("snapshot clinics: %w", err)
	}
	if err := scoped().Order("created_at, id").Find(&state.Users).Error; err != nil {
		return nil, fmt.Errorf("snapshot users: %w", err)
	}
	if err := scoped().Order("created_at, id").Find(&state.Wallets).Error; err != nil {
		return nil, fmt.Errorf("snapshot wallets: %w", err)
	}
	if err := scoped().Order("created_at, id").Find(&state.Transactions).Error; err != nil {
		return nil, fmt.Errorf("snapshot transactions: %w", err)
	}
	if err := scoped().Order("created_at, id").Find(&state.FamilyGroups).Error; err != nil {
		return nil, fmt.Errorf("snapshot family groups: %w", err)
	}
	if err := scoped().Order("assigned_at, id").Find(&state.CarePlans).Error; err != nil {
		return nil, fmt.Errorf("snapshot care plans: %w", err)
	}
	if err := scoped().Order("start_time, id").Find(&state.Appointments).Error; err != nil {
		return nil, fmt.Errorf("snapshot appointments: %w", err)
	}
	return state, nil
}
