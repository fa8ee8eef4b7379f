package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/dto"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/loyalty"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/repository"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

type CarePlanHandler struct {
	engine *loyalty.Engine
	store  repository.Store
}

func NewCarePlanHandler(engine *loyalty.Engine, store repository.Store) *CarePlanHandler {
	return &CarePlanHandler{engine: engine, store: store}
}

func (h *CarePlanHandler) Assign(c *fiber.Ctx) error {
	clinicID, ok := tenant.GetClinicID(c)
	if !ok {
		return noClinic(c)
	}

	var req dto.AssignCarePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	res, err := h.engine.AssignCarePlan(c.UserContext(), clinicID, req.PatientID, req.CarePlanTemplate)
	return respond(c, fiber.StatusCreated, res, err)
}

func (h *CarePlanHandler) Update(c *fiber.Ctx) error {
	clinicID, ok := tenant.GetClinicID(c)
	if !ok {
		return noClinic(c)
	}
	planID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid care plan id")
	}

	var req loyalty.CarePlanUpdate
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	res, err := h.engine.UpdateCarePlan(c.UserContext(), clinicID, planID, req)
	return respond(c, fiber.StatusOK, res, err)
}

func (h *CarePlanHandler) ToggleItem(c *fiber.Ctx) error {
	clinicID, ok := tenant.GetClinicID(c)
	if !ok {
		return noClinic(c)
	}
	planID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid care plan id")
	}

	res, err := h.engine.ToggleChecklistItem(c.UserContext(), clinicID, planID, c.Params("itemId"))
	return respond(c, fiber.StatusOK, res, err)
}

// ToggleMyItem lets a patient tick items on their own plan only.
func (h *CarePlanHandler) ToggleMyItem(c *fiber.Ctx) error {
	clinicID, ok := tenant.GetClinicID(c)
	if !ok {
		return noClinic(c)
	}
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	planID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid care plan id")
	}

	plan, err := h.store.GetCarePlan(c.UserContext(), planID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && (plan.UserID != userID || plan.ClinicID != clinicID)) {
		return respond(c, fiber.StatusOK, (&loyalty.Failure{Code: loyalty.CodeNotFound, Message: "Care plan not found"}).Result(), nil)
	}
	if err != nil {
		return storageFailure(c, err)
	}

	res, err := h.engine.ToggleChecklistItem(c.UserContext(), clinicID, planID, c.Params("itemId"))
	return respond(c, fiber.StatusOK, res, err)
}

func (h *CarePlanHandler) Reset(c *fiber.Ctx) error {
	clinicID, ok := tenant.GetClinicID(c)
	if !ok {
		return noClinic(c)
	}
	planID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid care plan id")
	}

	res, err := h.engine.DailyReset(c.UserContext(), clinicID, planID)
	return respond(c, fiber.StatusOK, res, err)
}

func (h *CarePlanHandler) ResetAll(c *fiber.Ctx) error {
	clinicID, ok := tenant.GetClinicID(c)
	if !ok {
		return noClinic(c)
	}
	res, err := h.engine.DailyResetAll(c.UserContext(), clinicID)
	return respond(c, fiber.StatusOK, res, err)
}

func (h *CarePlanHandler) Terminate(c *fiber.Ctx) error {
	clinicID, ok := tenant.GetClinicID(c)
	if !ok {
		return noClinic(c)
	}
	planID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid care plan id")
	}

	res, err := h.engine.TerminateCarePlan(c.UserContext(), clinicID, planID)
	return respond(c, fiber.StatusOK, res, err)
}
