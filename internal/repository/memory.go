package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MemoryStore keeps the whole dataset in process. A single mutex serializes every call, and
// Atomic restores a deep copy of the dataset when the callback fails.
type MemoryStore struct {
	mu  sync.Mutex
	set *dataset
	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{set: newDataset(), now: time.Now}
}

type dataset struct {
	clinics      map[uuid.UUID]models.Clinic
	users        map[uuid.UUID]models.User
	wallets      map[uuid.UUID]models.Wallet
	transactions []models.Transaction
	familyGroups map[uuid.UUID]models.FamilyGroup
	carePlans    map[uuid.UUID]models.CarePlan
	appointments map[uuid.UUID]models.Appointment
}

func newDataset() *dataset {
	return &dataset{
		clinics:      make(map[uuid.UUID]models.Clinic),
		users:        make(map[uuid.UUID]models.User),
		wallets:      make(map[uuid.UUID]models.Wallet),
		familyGroups: make(map[uuid.UUID]models.FamilyGroup),
		carePlans:    make(map[uuid.UUID]models.CarePlan),
		appointments: make(map[uuid.UUID]models.Appointment),
	}
}

func (d *dataset) clone() *dataset {
	out := newDataset()
	for k, v := range d.clinics {
		out.clinics[k] = cloneClinic(v)
	}
	for k, v := range d.users {
		out.users[k] = cloneUser(v)
	}
	for k, v := range d.wallets {
		out.wallets[k] = cloneWallet(v)
	}
	out.transactions = make([]models.Transaction, len(d.transactions))
	for i, t := range d.transactions {
		out.transactions[i] = cloneTransaction(t)
	}
	for k, v := range d.familyGroups {
		out.familyGroups[k] = v
	}
	for k, v := range d.carePlans {
		out.carePlans[k] = cloneCarePlan(v)
	}
	for k, v := range d.appointments {
		out.appointments[k] = cloneAppointment(v)
	}
	return out
}

func (s *MemoryStore) Atomic(ctx context.Context, fn func(tx Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	backup := s.set.clone()
	if err := fn(&memTx{set: s.set, now: s.now}); err != nil {
		s.set = backup
		return err
	}
	return nil
}

// do runs a single non-transactional call under the store lock.
func (s *MemoryStore) do(fn func(tx *memTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&memTx{set: s.set, now: s.now})
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) GetClinic(ctx context.Context, id uuid.UUID) (out *models.Clinic, err error) {
	err = s.do(func(tx *memTx) error { out, err = tx.GetClinic(ctx, id); return err })
	return out, err
}

func (s *MemoryStore) GetClinicBySlug(ctx context.Context, slug string) (out *models.Clinic, err error) {
	err = s.do(func(tx *memTx) error { out, err = tx.GetClinicBySlug(ctx, slug); return err })
	return out, err
}

func (s *MemoryStore) LockClinic(ctx context.Context, id uuid.UUID) (*models.Clinic, error) {
	return s.GetClinic(ctx, id)
}

func (s *MemoryStore) ListClinics(ctx context.Context) (out []models.Clinic, err error) {
	err = s.do(func(tx *memTx) error { out, err = tx.ListClinics(ctx); return err })
	return out, err
}

func (s *MemoryStore) CreateClinic(ctx context.Context, clinic *models.Clinic) error {
	return s.do(func(tx *memTx) error { return tx.CreateClinic(ctx, clinic) })
}

func (s *MemoryStore) UpdateClinic(ctx context.Context, clinic *models.Clinic) error {
	return s.do(func(tx *memTx) error { return tx.UpdateClinic(ctx, clinic) })
}

func (s *MemoryStore) DeleteClinic(ctx context.Context, id uuid.UUID) error {
	return s.do(func(tx *memTx) error { return tx.DeleteClinic(ctx, id) })
}

func (s *MemoryStore) GetUser(ctx context.Context, id uuid.UUID) (out *models.User, err error) {
	err = s.do(func(tx *memTx) error { out, err = tx.GetUser(ctx, id); return err })
	return out, err
}

func (s *MemoryStore) FindUserByMobile(ctx context.Context, clinicID uuid.UUID, mobile string) (out *models.User, err error) {
	err = s.do(func(tx *memTx) error { out, err = tx.FindUserByMobile(ctx, clinicID, mobile); return err })
	return out, err
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	return s.do(func(tx *memTx) error { return tx.CreateUser(ctx, user) })
}

func (s *MemoryStore) UpdateUser(ctx context.Context, user *models.User) error {
	return s.do(func(tx *memTx) error { return tx.UpdateUser(ctx, user) })
}

func (s *MemoryStore) GetWalletByUser(ctx context.Context, userID uuid.UUID) (out *models.Wallet, err error) {
	err = s.do(func(tx *memTx) error { out, err = tx.GetWalletByUser(ctx, userID); return err })
	return out, err
}

func (s *MemoryStore) CreateWallet(ctx context.Context, wallet *models.Wallet) error {
	return s.do(func(tx *memTx) error { return tx.CreateWallet(ctx, wallet) })
}

func (s *MemoryStore) UpdateWallet(ctx context.Context, wallet *models.Wallet) error {
	return s.do(func(tx *memTx) error { return tx.UpdateWallet(ctx, wallet) })
}

func (s *MemoryStore) AppendTransaction(ctx context.Context, entry *models.Transaction) error {
	return s.do(func(tx *memTx) error { return tx.AppendTransaction(ctx, entry) })
}

func (s *MemoryStore) GetFamilyGroup(ctx context.Context, id uuid.UUID) (out *models.FamilyGroup, err error) {
	err = s.do(func(tx *memTx) error { out, err = tx.GetFamilyGroup(ctx, id); return err })
	return out, err
}

func (s *MemoryStore) GetFamilyGroupByHead(ctx context.Context, headUserID uuid.UUID) (out *models.FamilyGroup, err error) {
	err = s.do(func(tx *memTx) error { out, err = tx.GetFamilyGroupByHead(ctx, headUserID); return err })
	return out, err
}

func (s *MemoryStore) ListFamilyMembers(ctx context.Context, groupID uuid.UUID) (out []models.User, err error) {
	err = s.do(func(tx *memTx) error { out, err = tx.ListFamilyMembers(ctx, groupID); return err })
	return out, err
}

func (s *MemoryStore) CreateFamilyGroup(ctx context.Context, group *models.FamilyGroup) error {
	return s.do(func(tx *memTx) error { return tx.CreateFamilyGroup(ctx, group) })
}

func (s *MemoryStore) DeleteFamilyGroup(ctx context.Context, id uuid.UUID) error {
	return s.do(func(tx *memTx) error { return tx.DeleteFamilyGroup(ctx, id) })
}

func (s *MemoryStore) GetCarePlan(ctx context.Context, id uuid.UUID) (out *models.CarePlan, err error) {
	err = s.do(func(tx *memTx) error { out, err = tx.GetCarePlan(ctx, id); return err })
	return out, err
}

func (s *MemoryStore) ListActiveCarePlans(ctx context.Context, clinicID uuid.UUID, userID *uuid.UUID) (out []models.CarePlan, err error) {
	err = s.do(func(tx *memTx) error { out, err = tx.ListActiveCarePlans(ctx, clinicID, userID); return err })
	return out, err
}

func (s *MemoryStore) CreateCarePlan(ctx context.Context, plan *models.CarePlan) error {
	return s.do(func(tx *memTx) error { return tx.CreateCarePlan(ctx, plan) })
}

func (s *MemoryStore) UpdateCarePlan(ctx context.Context, plan *models.CarePlan) error {
	return s.do(func(tx *memTx) error { return tx.UpdateCarePlan(ctx, plan) })
}

func (s *MemoryStore) GetAppointment(ctx context.Context, id uuid.UUID) (out *models.Appointment, err error) {
	err = s.do(func(tx *memTx) error { out, err = tx.GetAppointment(ctx, id); return err })
	return out, err
}

func (s *MemoryStore) ListOpenAppointments(ctx context.Context, clinicID uuid.UUID, from, to time.Time) (out []models.Appointment, err error) {
	err = s.do(func(tx *memTx) error { out, err = tx.ListOpenAppointments(ctx, clinicID, from, to); return err })
	return out, err
}

func (s *MemoryStore) CreateAppointment(ctx context.Context, appt *models.Appointment) error {
	return s.do(func(tx *memTx) error { return tx.CreateAppointment(ctx, appt) })
}

func (s *MemoryStore) UpdateAppointment(ctx context.Context, appt *models.Appointment) error {
	return s.do(func(tx *memTx) error { return tx.UpdateAppointment(ctx, appt) })
}

func (s *MemoryStore) Snapshot(ctx context.Context, clinicID *uuid.UUID) (out *models.DatabaseState, err error) {
	err = s.do(func(tx *memTx) error { out, err = tx.Snapshot(ctx, clinicID); return err })
	return out, err
}

// memTx operates on the dataset while the owning MemoryStore holds its lock.
type memTx struct {
	set *dataset
	now func() time.Time
}

func (t *memTx) Atomic(ctx context.Context, fn func(tx Store) error) error {
	return fn(t)
}

func (t *memTx) Ping(ctx context.Context) error { return nil }

func (t *memTx) GetClinic(ctx context.Context, id uuid.UUID) (*models.Clinic, error) {
	c, ok := t.set.clinics[id]
	if !ok {
		return nil, ErrNotFound
	}
	c = cloneClinic(c)
	return &c, nil
}

func (t *memTx) GetClinicBySlug(ctx context.Context, slug string) (*models.Clinic, error) {
	for _, c := range t.set.clinics {
		if c.Slug == slug {
			c = cloneClinic(c)
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (t *memTx) LockClinic(ctx context.Context, id uuid.UUID) (*models.Clinic, error) {
	return t.GetClinic(ctx, id)
}

func (t *memTx) ListClinics(ctx context.Context) ([]models.Clinic, error) {
	out := make([]models.Clinic, 0, len(t.set.clinics))
	for _, c := range t.set.clinics {
		out = append(out, cloneClinic(c))
	}
	slices.SortFunc(out, func(a, b models.Clinic) int { return byCreated(a.CreatedAt, b.CreatedAt, a.ID, b.ID) })
	return out, nil
}

func (t *memTx) CreateClinic(ctx context.Context, clinic *models.Clinic) error {
	if _, ok := t.set.clinics[clinic.ID]; ok {
		return ErrDuplicate
	}
	for _, c := range t.set.clinics {
		if c.Slug == clinic.Slug {
			return ErrDuplicate
		}
	}
	if clinic.ID == uuid.Nil {
		clinic.ID = uuid.New()
	}
	if clinic.SubscriptionTier == "" {
		clinic.SubscriptionTier = "FREE"
	}
	now := t.now()
	clinic.CreatedAt, clinic.UpdatedAt = now, now
	t.set.clinics[clinic.ID] = cloneClinic(*clinic)
	return nil
}

func (t *memTx) UpdateClinic(ctx context.Context, clinic *models.Clinic) error {
	if _, ok := t.set.clinics[clinic.ID]; !ok {
		return ErrNotFound
	}
	clinic.UpdatedAt = t.now()
	t.set.clinics[clinic.ID] = cloneClinic(*clinic)
	return nil
}

// DeleteClinic removes the clinic and every row that carries its id.
func (t *memTx) DeleteClinic(ctx context.Context, id uuid.UUID) error {
	if _, ok := t.set.clinics[id]; !ok {
		return ErrNotFound
	}
	kept := t.set.transactions[:0]
	for _, tr := range t.set.transactions {
		if tr.ClinicID != id {
			kept = append(kept, tr)
		}
	}
	t.set.transactions = kept
	for k, w := range t.set.wallets {
		if w.ClinicID == id {
			delete(t.set.wallets, k)
		}
	}
	for k, a := range t.set.appointments {
		if a.ClinicID == id {
			delete(t.set.appointments, k)
		}
	}
	for k, p := range t.set.carePlans {
		if p.ClinicID == id {
			delete(t.set.carePlans, k)
		}
	}
	for k, g := range t.set.familyGroups {
		if g.ClinicID == id {
			delete(t.set.familyGroups, k)
		}
	}
	for k, u := range t.set.users {
		if u.ClinicID == id {
			delete(t.set.users, k)
		}
	}
	delete(t.set.clinics, id)
	return nil
}

func (t *memTx) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := t.set.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u = cloneUser(u)
	return &u, nil
}

func (t *memTx) FindUserByMobile(ctx context.Context, clinicID uuid.UUID, mobile string) (*models.User, error) {
	for _, u := range t.set.users {
		if u.ClinicID == clinicID && u.Mobile != nil && *u.Mobile == mobile {
			u = cloneUser(u)
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (t *memTx) CreateUser(ctx context.Context, user *models.User) error {
	if _, ok := t.set.users[user.ID]; ok {
		return ErrDuplicate
	}
	if user.Mobile != nil {
		if _, err := t.FindUserByMobile(ctx, user.ClinicID, *user.Mobile); err == nil {
			return ErrDuplicate
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = models.RolePatient
	}
	if user.CurrentTier == "" {
		user.CurrentTier = models.TierMember
	}
	now := t.now()
	user.CreatedAt, user.UpdatedAt = now, now
	t.set.users[user.ID] = cloneUser(*user)
	return nil
}

func (t *memTx) UpdateUser(ctx context.Context, user *models.User) error {
	if _, ok := t.set.users[user.ID]; !ok {
		return ErrNotFound
	}
	user.UpdatedAt = t.now()
	t.set.users[user.ID] = cloneUser(*user)
	return nil
}

func (t *memTx) GetWalletByUser(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	for _, w := range t.set.wallets {
		if w.UserID == userID {
			w = cloneWallet(w)
			return &w, nil
		}
	}
	return nil, ErrNotFound
}

func (t *memTx) CreateWallet(ctx context.Context, wallet *models.Wallet) error {
	if _, err := t.GetWalletByUser(ctx, wallet.UserID); err == nil {
		return ErrDuplicate
	}
	if wallet.ID == uuid.Nil {
		wallet.ID = uuid.New()
	}
	now := t.now()
	wallet.CreatedAt, wallet.UpdatedAt = now, now
	t.set.wallets[wallet.ID] = cloneWallet(*wallet)
	return nil
}

func (t *memTx) UpdateWallet(ctx context.Context, wallet *models.Wallet) error {
	if _, ok := t.set.wallets[wallet.ID]; !ok {
		return ErrNotFound
	}
	wallet.UpdatedAt = t.now()
	t.set.wallets[wallet.ID] = cloneWallet(*wallet)
	return nil
}

func (t *memTx) AppendTransaction(ctx context.Context, entry *models.Transaction) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = t.now()
	}
	t.set.transactions = append(t.set.transactions, cloneTransaction(*entry))
	return nil
}

func (t *memTx) GetFamilyGroup(ctx context.Context, id uuid.UUID) (*models.FamilyGroup, error) {
	g, ok := t.set.familyGroups[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &g, nil
}

func (t *memTx) GetFamilyGroupByHead(ctx context.Context, headUserID uuid.UUID) (*models.FamilyGroup, error) {
	for _, g := range t.set.familyGroups {
		if g.HeadUserID == headUserID {
			return &g, nil
		}
	}
	return nil, ErrNotFound
}

func (t *memTx) ListFamilyMembers(ctx context.Context, groupID uuid.UUID) ([]models.User, error) {
	var out []models.User
	for _, u := range t.set.users {
		if u.FamilyGroupID != nil && *u.FamilyGroupID == groupID {
			out = append(out, cloneUser(u))
		}
	}
	slices.SortFunc(out, func(a, b models.User) int { return byCreated(a.CreatedAt, b.CreatedAt, a.ID, b.ID) })
	return out, nil
}

func (t *memTx) CreateFamilyGroup(ctx context.Context, group *models.FamilyGroup) error {
	if _, err := t.GetFamilyGroupByHead(ctx, group.HeadUserID); err == nil {
		return ErrDuplicate
	}
	if group.ID == uuid.Nil {
		group.ID = uuid.New()
	}
	group.CreatedAt = t.now()
	t.set.familyGroups[group.ID] = *group
	return nil
}

func (t *memTx) DeleteFamilyGroup(ctx context.Context, id uuid.UUID) error {
	if _, ok := t.set.familyGroups[id]; !ok {
		return ErrNotFound
	}
	delete(t.set.familyGroups, id)
	return nil
}

func (t *memTx) GetCarePlan(ctx context.Context, id uuid.UUID) (*models.CarePlan, error) {
	p, ok := t.set.carePlans[id]
	if !ok {
		return nil, ErrNotFound
	}
	p = cloneCarePlan(p)
	return &p, nil
}

func (t *memTx) ListActiveCarePlans(ctx context.Context, clinicID uuid.UUID, userID *uuid.UUID) ([]models.CarePlan, error) {
	var out []models.CarePlan
	for _, p := range t.set.carePlans {
		if p.ClinicID != clinicID || !p.IsActive {
			continue
		}
		if userID != nil && p.UserID != *userID {
			continue
		}
		out = append(out, cloneCarePlan(p))
	}
	slices.SortFunc(out, func(a, b models.CarePlan) int { return byCreated(a.AssignedAt, b.AssignedAt, a.ID, b.ID) })
	return out, nil
}

func (t *memTx) CreateCarePlan(ctx context.Context, plan *models.CarePlan) error {
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	if plan.AssignedAt.IsZero() {
		plan.AssignedAt = t.now()
	}
	plan.UpdatedAt = t.now()
	t.set.carePlans[plan.ID] = cloneCarePlan(*plan)
	return nil
}

func (t *memTx) UpdateCarePlan(ctx context.Context, plan *models.CarePlan) error {
	if _, ok := t.set.carePlans[plan.ID]; !ok {
		return ErrNotFound
	}
	plan.UpdatedAt = t.now()
	t.set.carePlans[plan.ID] = cloneCarePlan(*plan)
	return nil
}

func (t *memTx) GetAppointment(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	a, ok := t.set.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	a = cloneAppointment(a)
	return &a, nil
}

func (t *memTx) ListOpenAppointments(ctx context.Context, clinicID uuid.UUID, from, to time.Time) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range t.set.appointments {
		if a.ClinicID != clinicID || a.Status == models.AppointmentCancelled {
			continue
		}
		if a.Overlaps(from, to) {
			out = append(out, cloneAppointment(a))
		}
	}
	slices.SortFunc(out, func(a, b models.Appointment) int { return byCreated(a.StartTime, b.StartTime, a.ID, b.ID) })
	return out, nil
}

func (t *memTx) CreateAppointment(ctx context.Context, appt *models.Appointment) error {
	if appt.ID == uuid.Nil {
		appt.ID = uuid.New()
	}
	if appt.Status == "" {
		appt.Status = models.AppointmentScheduled
	}
	now := t.now()
	appt.CreatedAt, appt.UpdatedAt = now, now
	t.set.appointments[appt.ID] = cloneAppointment(*appt)
	return nil
}

func (t *memTx) UpdateAppointment(ctx context.Context, appt *models.Appointment) error {
	if _, ok := t.set.appointments[appt.ID]; !ok {
		return ErrNotFound
	}
	appt.UpdatedAt = t.now()
	t.set.appointments[appt.ID] = cloneAppointment(*appt)
	return nil
}

func (t *memTx) Snapshot(ctx context.Context, clinicID *uuid.UUID) (*models.DatabaseState, error) {
	in := func(id uuid.UUID) bool { return clinicID == nil || id == *clinicID }
	state := &models.DatabaseState{
		Clinics:      []models.Clinic{},
		Users:        []models.User{},
		Wallets:      []models.Wallet{},
		Transactions: []models.Transaction{},
		FamilyGroups: []models.FamilyGroup{},
		CarePlans:    []models.CarePlan{},
		Appointments: []models.Appointment{},
	}

	for _, c := range t.set.clinics {
		if in(c.ID) {
			state.Clinics = append(state.Clinics, cloneClinic(c))
		}
	}
	for _, u := range t.set.users {
		if in(u.ClinicID) {
			state.Users = append(state.Users, cloneUser(u))
		}
	}
	for _, w := range t.set.wallets {
		if in(w.ClinicID) {
			state.Wallets = append(state.Wallets, cloneWallet(w))
		}
	}
	for _, tr := range t.set.transactions {
		if in(tr.ClinicID) {
			state.Transactions = append(state.Transactions, cloneTransaction(tr))
		}
	}
	for _, g := range t.set.familyGroups {
		if in(g.ClinicID) {
			state.FamilyGroups = append(state.FamilyGroups, g)
		}
	}
	for _, p := range t.set.carePlans {
		if in(p.ClinicID) {
			state.CarePlans = append(state.CarePlans, cloneCarePlan(p))
		}
	}
	for _, a := range t.set.appointments {
		if in(a.ClinicID) {
			state.Appointments = append(state.Appointments, cloneAppointment(a))
		}
	}

	slices.SortFunc(state.Clinics, func(a, b models.Clinic) int { return byCreated(a.CreatedAt, b.CreatedAt, a.ID, b.ID) })
	slices.SortFunc(state.Users, func(a, b models.User) int { return byCreated(a.CreatedAt, b.CreatedAt, a.ID, b.ID) })
	slices.SortFunc(state.Wallets, func(a, b models.Wallet) int { return byCreated(a.CreatedAt, b.CreatedAt, a.ID, b.ID) })
	slices.SortFunc(state.FamilyGroups, func(a, b models.FamilyGroup) int { return byCreated(a.CreatedAt, b.CreatedAt, a.ID, b.ID) })
	slices.SortFunc(state.CarePlans, func(a, b models.CarePlan) int { return byCreated(a.AssignedAt, b.AssignedAt, a.ID, b.ID) })
	slices.SortFunc(state.Appointments, func(a, b models.Appointment) int { return byCreated(a.StartTime, b.StartTime, a.ID, b.ID) })
	return state, nil
}

func byCreated(a, b time.Time, aID, bID uuid.UUID) int {
	if c := a.Compare(b); c != 0 {
		return c
	}
	return slices.Compare(aID[:], bID[:])
}

func cloneClinic(c models.Clinic) models.Clinic {
	c.AdminUserID = cloneID(c.AdminUserID)
	return c
}

func cloneUser(u models.User) models.User {
	if u.Mobile != nil {
		m := *u.Mobile
		u.Mobile = &m
	}
	u.FamilyGroupID = cloneID(u.FamilyGroupID)
	return u
}

func cloneWallet(w models.Wallet) models.Wallet {
	if w.LastTransactionAt != nil {
		at := *w.LastTransactionAt
		w.LastTransactionAt = &at
	}
	return w
}

func cloneTransaction(t models.Transaction) models.Transaction {
	t.CarePlanID = cloneID(t.CarePlanID)
	return t
}

func cloneAppointment(a models.Appointment) models.Appointment {
	a.DoctorID = cloneID(a.DoctorID)
	return a
}

func cloneCarePlan(p models.CarePlan) models.CarePlan {
	p.Instructions = slices.Clone(p.Instructions)
	p.Checklist = slices.Clone(p.Checklist)
	if p.Metadata != nil {
		meta := make(datatypes.JSONMap, len(p.Metadata))
		for k, v := range p.Metadata {
			meta[k] = v
		}
		p.Metadata = meta
	}
	p.AdherenceRecord = datatypes.NewJSONType(p.Adherence())
	return p
}

func cloneID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
