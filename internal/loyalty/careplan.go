package loyalty

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/models"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/repository"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CarePlanTemplate seeds a new care plan.
type CarePlanTemplate struct {
	Name         string                 `json:"name"`
	Category     models.Category        `json:"category"`
	Cost         float64                `json:"cost"`
	Instructions []string               `json:"instructions"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// CarePlanUpdate lists the fields staff may edit. Nil fields are left unchanged.
type CarePlanUpdate struct {
	TreatmentName      *string                 `json:"treatmentName"`
	Cost               *float64                `json:"cost"`
	Instructions       *[]string               `json:"instructions"`
	Metadata           map[string]interface{}  `json:"metadata"`
	Checklist          *[]models.ChecklistItem `json:"checklist"`
	AdherenceRecord    map[string]int          `json:"adherenceRecord"`
	LastChecklistReset *string                 `json:"lastChecklistReset"`
}

func (t CarePlanTemplate) validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fail(CodeValidation, "Care plan name is required")
	}
	if t.Cost < 0 || math.IsNaN(t.Cost) {
		return fail(CodeValidation, "Care plan cost cannot be negative")
	}
	return nil
}

func checklistFrom(instructions []string) datatypes.JSONSlice[models.ChecklistItem] {
	items := make(datatypes.JSONSlice[models.ChecklistItem], 0, len(instructions))
	for _, task := range instructions {
		items = append(items, models.ChecklistItem{ID: uuid.NewString(), Task: task})
	}
	return items
}

// AssignCarePlan gives the patient a new active plan, cancelling any plan they already follow
// in this clinic.
func (e *Engine) AssignCarePlan(ctx context.Context, clinicID, patientID uuid.UUID, tpl CarePlanTemplate) (*Result, error) {
	return e.mutate(ctx, "AssignCarePlan", &clinicID, func(m *mutation) error {
		if _, err := e.loadClinic(ctx, m.tx, clinicID); err != nil {
			return err
		}
		patient, err := e.loadPatient(ctx, m.tx, clinicID, patientID)
		if err != nil {
			return err
		}
		plan, err := e.assignPlan(ctx, m.tx, clinicID, patient.ID, tpl)
		if err != nil {
			return err
		}
		return m.done("%s assigned to %s", plan.TreatmentName, patient.Name)
	})
}

func (e *Engine) assignPlan(ctx context.Context, tx repository.Store, clinicID, userID uuid.UUID, tpl CarePlanTemplate) (*models.CarePlan, error) {
	if err := tpl.validate(); err != nil {
		return nil, err
	}
	if tpl.Category != "" && !knownCategory(tpl.Category) {
		return nil, fail(CodeValidation, "Unknown category %q", tpl.Category)
	}

	active, err := tx.ListActiveCarePlans(ctx, clinicID, &userID)
	if err != nil {
		return nil, fmt.Errorf("list active care plans: %w", err)
	}
	for i := range active {
		active[i].IsActive = false
		active[i].Status = models.CarePlanCancelled
		if err := tx.UpdateCarePlan(ctx, &active[i]); err != nil {
			return nil, fmt.Errorf("deactivate care plan: %w", err)
		}
	}

	plan := &models.CarePlan{
		ID:                 uuid.New(),
		ClinicID:           clinicID,
		UserID:             userID,
		TreatmentName:      strings.TrimSpace(tpl.Name),
		Category:           tpl.Category,
		Cost:               tpl.Cost,
		Instructions:       datatypes.JSONSlice[string](append([]string(nil), tpl.Instructions...)),
		Checklist:          checklistFrom(tpl.Instructions),
		IsActive:           true,
		Status:             models.CarePlanActive,
		AssignedAt:         e.now(),
		Metadata:           copyMetadata(tpl.Metadata),
		AdherenceRecord:    datatypes.NewJSONType(map[string]int{}),
		LastChecklistReset: e.Today(),
	}
	if err := tx.CreateCarePlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("create care plan: %w", err)
	}
	return plan, nil
}

func copyMetadata(in map[string]interface{}) datatypes.JSONMap {
	out := make(datatypes.JSONMap, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// loadPlan returns a plan of clinicID. Plans of other clinics are reported as missing.
func (e *Engine) loadPlan(ctx context.Context, tx repository.Store, clinicID, planID uuid.UUID) (*models.CarePlan, error) {
	plan, err := tx.GetCarePlan(ctx, planID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && plan.ClinicID != clinicID) {
		return nil, fail(CodeNotFound, "Care plan not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load care plan: %w", err)
	}
	return plan, nil
}

// ToggleChecklistItem flips the completion state of one checklist item.
func (e *Engine) ToggleChecklistItem(ctx context.Context, clinicID, planID uuid.UUID, itemID string) (*Result, error) {
	return e.mutate(ctx, "ToggleChecklistItem", &clinicID, func(m *mutation) error {
		plan, err := e.loadPlan(ctx, m.tx, clinicID, planID)
		if err != nil {
			return err
		}
		if !plan.IsActive {
			return fail(CodeValidation, "Care plan %s has ended", plan.TreatmentName)
		}

		idx := -1
		for i, item := range plan.Checklist {
			if item.ID == itemID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fail(CodeNotFound, "Checklist item not found")
		}

		plan.Checklist[idx].Completed = !plan.Checklist[idx].Completed
		if err := m.tx.UpdateCarePlan(ctx, plan); err != nil {
			return fmt.Errorf("update care plan: %w", err)
		}
		if plan.Checklist[idx].Completed {
			return m.done("Marked %q done", plan.Checklist[idx].Task)
		}
		return m.done("Marked %q not done", plan.Checklist[idx].Task)
	})
}

// UpdateCarePlan merges the whitelisted fields of upd into an active plan.
func (e *Engine) UpdateCarePlan(ctx context.Context, clinicID, planID uuid.UUID, upd CarePlanUpdate) (*Result, error) {
	return e.mutate(ctx, "UpdateCarePlan", &clinicID, func(m *mutation) error {
		plan, err := e.loadPlan(ctx, m.tx, clinicID, planID)
		if err != nil {
			return err
		}
		if !plan.IsActive {
			return fail(CodeValidation, "Care plan %s has ended", plan.TreatmentName)
		}
		if err := applyCarePlanUpdate(plan, upd, e.Today()); err != nil {
			return err
		}
		if err := m.tx.UpdateCarePlan(ctx, plan); err != nil {
			return fmt.Errorf("update care plan: %w", err)
		}
		return m.done("Care plan updated")
	})
}

func applyCarePlanUpdate(plan *models.CarePlan, upd CarePlanUpdate, today string) error {
	if upd.TreatmentName != nil {
		name := strings.TrimSpace(*upd.TreatmentName)
		if name == "" {
			return fail(CodeValidation, "Care plan name is required")
		}
		plan.TreatmentName = name
	}
	if upd.Cost != nil {
		if *upd.Cost < 0 || math.IsNaN(*upd.Cost) {
			return fail(CodeValidation, "Care plan cost cannot be negative")
		}
		plan.Cost = *upd.Cost
	}
	if upd.Instructions != nil {
		plan.Instructions = datatypes.JSONSlice[string](append([]string(nil), (*upd.Instructions)...))
	}
	if upd.Metadata != nil {
		plan.Metadata = copyMetadata(upd.Metadata)
	}
	if upd.Checklist != nil {
		items := make(datatypes.JSONSlice[models.ChecklistItem], 0, len(*upd.Checklist))
		seen := make(map[string]bool, len(*upd.Checklist))
		for _, item := range *upd.Checklist {
			if item.ID == "" {
				item.ID = uuid.NewString()
			}
			if seen[item.ID] {
				return fail(CodeValidation, "Duplicate checklist item %s", item.ID)
			}
			seen[item.ID] = true
			items = append(items, item)
		}
		plan.Checklist = items
	}
	if upd.AdherenceRecord != nil {
		record := make(map[string]int, len(upd.AdherenceRecord))
		for day, score := range upd.AdherenceRecord {
			if _, err := time.Parse(time.DateOnly, day); err != nil {
				return fail(CodeValidation, "Adherence day %q is not a YYYY-MM-DD date", day)
			}
			if score < 0 || score > 100 {
				return fail(CodeValidation, "Adherence score for %s must be within 0..100", day)
			}
			record[day] = score
		}
		plan.AdherenceRecord = datatypes.NewJSONType(record)
	}
	if upd.LastChecklistReset != nil {
		if _, err := time.Parse(time.DateOnly, *upd.LastChecklistReset); err != nil {
			return fail(CodeValidation, "Last reset %q is not a YYYY-MM-DD date", *upd.LastChecklistReset)
		}
		if *upd.LastChecklistReset > today {
			return fail(CodeValidation, "Last reset %s is after today (%s)", *upd.LastChecklistReset, today)
		}
		plan.LastChecklistReset = *upd.LastChecklistReset
	}
	return nil
}

// AdherenceScore is the rounded percentage of completed checklist items, 0 for an empty list.
func AdherenceScore(items []models.ChecklistItem) int {
	if len(items) == 0 {
		return 0
	}
	done := 0
	for _, item := range items {
		if item.Completed {
			done++
		}
	}
	return int(math.Round(100 * float64(done) / float64(len(items))))
}

// ResetChecklist archives the score of the last reset day and unchecks every item. It reports
// false, leaving the plan untouched, when the plan is inactive or was already reset on today.
func ResetChecklist(plan *models.CarePlan, today string) bool {
	if !plan.IsActive || plan.LastChecklistReset >= today {
		return false
	}
	if plan.LastChecklistReset != "" {
		record := plan.Adherence()
		record[plan.LastChecklistReset] = AdherenceScore(plan.Checklist)
		plan.AdherenceRecord = datatypes.NewJSONType(record)
	}
	for i := range plan.Checklist {
		plan.Checklist[i].Completed = false
	}
	plan.LastChecklistReset = today
	return true
}

// DailyReset rolls one plan over to today.
func (e *Engine) DailyReset(ctx context.Context, clinicID, planID uuid.UUID) (*Result, error) {
	today := e.Today()
	return e.mutate(ctx, "DailyReset", &clinicID, func(m *mutation) error {
		plan, err := e.loadPlan(ctx, m.tx, clinicID, planID)
		if err != nil {
			return err
		}
		if !ResetChecklist(plan, today) {
			return m.done("Checklist already current")
		}
		if err := m.tx.UpdateCarePlan(ctx, plan); err != nil {
			return fmt.Errorf("update care plan: %w", err)
		}
		return m.done("Checklist reset for %s", today)
	})
}

// DailyResetAll rolls every active plan of a clinic over to today.
func (e *Engine) DailyResetAll(ctx context.Context, clinicID uuid.UUID) (*Result, error) {
	today := e.Today()
	return e.mutate(ctx, "DailyResetAll", &clinicID, func(m *mutation) error {
		if _, err := e.loadClinic(ctx, m.tx, clinicID); err != nil {
			return err
		}
		plans, err := m.tx.ListActiveCarePlans(ctx, clinicID, nil)
		if err != nil {
			return fmt.Errorf("list active care plans: %w", err)
		}
		reset := 0
		for i := range plans {
			if !ResetChecklist(&plans[i], today) {
				continue
			}
			if err := m.tx.UpdateCarePlan(ctx, &plans[i]); err != nil {
				return fmt.Errorf("update care plan: %w", err)
			}
			reset++
		}
		return m.done("%d care plans reset for %s", reset, today)
	})
}

// TerminateCarePlan ends a plan. Terminating an ended plan succeeds without changes.
func (e *Engine) TerminateCarePlan(ctx context.Context, clinicID, planID uuid.UUID) (*Result, error) {
	return e.mutate(ctx, "TerminateCarePlan", &clinicID, func(m *mutation) error {
		plan, err := e.loadPlan(ctx, m.tx, clinicID, planID)
		if err != nil {
			return err
		}
		if !plan.IsActive {
			return m.done("Care plan already ended")
		}
		plan.IsActive = false
		plan.Status = models.CarePlanCancelled
		if err := m.tx.UpdateCarePlan(ctx, plan); err != nil {
			return fmt.Errorf("update care plan: %w", err)
		}
		return m.done("%s ended", plan.TreatmentName)
	})
}

// StartDailyReset runs DailyResetAll for every clinic on each tick until done is closed.
func (e *Engine) StartDailyReset(interval time.Duration, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				e.resetAllClinics(context.Background())
			case <-done:
				return
			}
		}
	}()
}

func (e *Engine) resetAllClinics(ctx context.Context) {
	clinics, err := e.store.ListClinics(ctx)
	if err != nil {
		slog.Error("daily reset: list clinics failed", "error", err)
		return
	}
	for _, c := range clinics {
		res, err := e.DailyResetAll(ctx, c.ID)
		if err != nil {
			slog.Error("daily reset failed", "clinic_id", c.ID.String(), "error", err)
			continue
		}
		slog.Info("daily reset completed", "clinic_id", c.ID.String(), "message", res.Message)
	}
}
