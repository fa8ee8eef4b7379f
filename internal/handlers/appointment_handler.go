package handlers

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/dto"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/loyalty"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/models"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AppointmentHandler struct {
	engine *loyalty.Engine
}

func NewAppointmentHandler(engine *loyalty.Engine) *AppointmentHandler {
	return &AppointmentHandler{engine: engine}
}

func (h *AppointmentHandler) Schedule(c *fiber.Ctx) error {
	clinicID, ok := tenant.GetClinicID(c)
	if !ok {
		return noClinic(c)
	}

	var req dto.ScheduleAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	return h.schedule(c, clinicID, req)
}

// ScheduleMine books a slot for the authenticated patient; any patientId in the body is ignored.
func (h *AppointmentHandler) ScheduleMine(c *fiber.Ctx) error {
	clinicID, ok := tenant.GetClinicID(c)
	if !ok {
		return noClinic(c)
	}
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.ScheduleAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	req.PatientID = userID
	return h.schedule(c, clinicID, req)
}

func (h *AppointmentHandler) schedule(c *fiber.Ctx, clinicID uuid.UUID, req dto.ScheduleAppointmentRequest) error {
	res, err := h.engine.ScheduleAppointment(c.UserContext(), loyalty.AppointmentRequest{
		ClinicID:  clinicID,
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		Start:     req.StartTime,
		End:       req.EndTime,
		Type:      req.Type,
		Notes:     req.Notes,
	})
	return respond(c, fiber.StatusCreated, res, err)
}

func (h *AppointmentHandler) UpdateStatus(c *fiber.Ctx) error {
	clinicID, ok := tenant.GetClinicID(c)
	if !ok {
		return noClinic(c)
	}
	apptID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid appointment id")
	}

	var req dto.AppointmentStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	status := models.AppointmentStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	res, err := h.engine.UpdateAppointmentStatus(c.UserContext(), clinicID, apptID, status)
	return respond(c, fiber.StatusOK, res, err)
}
