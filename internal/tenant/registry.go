package tenant

import (
	"context"
	"fmt"
	"sync"

	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/models"
	"github.com/google/uuid"
)

// ClinicLister is the slice of the store the registry needs.
type ClinicLister interface {
	ListClinics(ctx context.Context) ([]models.Clinic, error)
}

// Registry caches clinic ids by slug so operators can address a tenant by its URL slug.
type Registry struct {
	mu     sync.RWMutex
	bySlug map[string]uuid.UUID
	byID   map[uuid.UUID]string
}

func NewRegistry() *Registry {
	return &Registry{
		bySlug: make(map[string]uuid.UUID),
		byID:   make(map[uuid.UUID]string),
	}
}

// Reload replaces the registry contents with the clinics currently in the store.
func (r *Registry) Reload(ctx context.Context, store ClinicLister) error {
	clinics, err := store.ListClinics(ctx)
	if err != nil {
		return fmt.Errorf("failed to load clinics: %w", err)
	}

	bySlug := make(map[string]uuid.UUID, len(clinics))
	byID := make(map[uuid.UUID]string, len(clinics))
	for _, c := range clinics {
		bySlug[c.Slug] = c.ID
		byID[c.ID] = c.Slug
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.bySlug, r.byID = bySlug, byID
	return nil
}

func (r *Registry) Register(clinic models.Clinic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bySlug[clinic.Slug] = clinic.ID
	r.byID[clinic.ID] = clinic.Slug
}

func (r *Registry) Remove(clinicID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if slug, ok := r.byID[clinicID]; ok {
		delete(r.bySlug, slug)
		delete(r.byID, clinicID)
	}
}

func (r *Registry) Resolve(slug string) (uuid.UUID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.bySlug[slug]
	return id, ok
}

func (r *Registry) Exists(clinicID uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byID[clinicID]
	return ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
