package handlers

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/loyalty"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ClinicHandler serves the platform operator's clinic directory.
type ClinicHandler struct {
	engine   *loyalty.Engine
	registry *tenant.Registry
}

func NewClinicHandler(engine *loyalty.Engine, registry *tenant.Registry) *ClinicHandler {
	return &ClinicHandler{engine: engine, registry: registry}
}

func (h *ClinicHandler) List(c *fiber.Ctx) error {
	clinics, err := h.engine.ListClinics(c.UserContext())
	if err != nil {
		return storageFailure(c, err)
	}
	return c.JSON(fiber.Map{"clinics": clinics, "count": len(clinics)})
}

// State returns every clinic's data, or one clinic's when ?clinic=<slug> is given.
func (h *ClinicHandler) State(c *fiber.Ctx) error {
	var scope *uuid.UUID
	if slug := c.Query("clinic"); slug != "" {
		id, ok := h.registry.Resolve(slug)
		if !ok {
			return respond(c, fiber.StatusOK, (&loyalty.Failure{Code: loyalty.CodeNotFound, Message: "Unknown clinic " + slug}).Result(), nil)
		}
		scope = &id
	}
	res, err := h.engine.GetData(c.UserContext(), scope)
	return respond(c, fiber.StatusOK, res, err)
}

func (h *ClinicHandler) Create(c *fiber.Ctx) error {
	var req loyalty.ClinicInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	res, err := h.engine.CreateClinic(c.UserContext(), req)
	if err == nil && res.Success {
		h.reload(c)
	}
	return respond(c, fiber.StatusCreated, res, err)
}

func (h *ClinicHandler) Update(c *fiber.Ctx) error {
	clinicID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid clinic id")
	}

	var req loyalty.ClinicUpdate
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	res, err := h.engine.UpdateClinic(c.UserContext(), clinicID, req)
	return respond(c, fiber.StatusOK, res, err)
}

func (h *ClinicHandler) Delete(c *fiber.Ctx) error {
	clinicID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid clinic id")
	}

	res, err := h.engine.DeleteClinic(c.UserContext(), clinicID)
	if err == nil && res.Success {
		h.registry.Remove(clinicID)
	}
	return respond(c, fiber.StatusOK, res, err)
}

func (h *ClinicHandler) reload(c *fiber.Ctx) {
	if err := h.registry.Reload(c.UserContext(), h.engine); err != nil {
		slog.Error("clinic registry reload failed", "error", err)
	}
}
