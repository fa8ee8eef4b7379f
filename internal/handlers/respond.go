package handlers

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/dto"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/loyalty"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/tenant"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var statusByCode = map[loyalty.Code]int{
	loyalty.CodeAuth:       fiber.StatusForbidden,
	loyalty.CodeFunds:      fiber.StatusUnprocessableEntity,
	loyalty.CodeValidation: fiber.StatusBadRequest,
	loyalty.CodeConflict:   fiber.StatusConflict,
	loyalty.CodeNotFound:   fiber.StatusNotFound,
}

// respond writes an engine outcome. Business failures keep their message and code;
// storage errors are reported as DB_ERR without internal detail.
func respond(c *fiber.Ctx, okStatus int, res *loyalty.Result, err error) error {
	if err != nil {
		return storageFailure(c, err)
	}
	if res.Success {
		return c.Status(okStatus).JSON(res)
	}

	status, ok := statusByCode[res.Error]
	if !ok {
		status = fiber.StatusInternalServerError
	}
	return c.Status(status).JSON(res)
}

func storageFailure(c *fiber.Ctx, err error) error {
	clinicID, _ := tenant.GetClinicID(c)
	slog.Error("storage failure",
		"clinic_id", clinicID.String(),
		"action", c.Method()+" "+c.Route().Path,
		"trace_id", c.GetRespHeader(fiber.HeaderXRequestID),
		"error", err,
	)
	if hub := sentryfiber.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}
	return c.Status(fiber.StatusInternalServerError).JSON(loyalty.Result{
		Success: false,
		Message: "The ledger could not be reached, please try again",
		Error:   loyalty.CodeDB,
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Message: message, Error: string(loyalty.CodeValidation),
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Message: "Unauthorized", Error: string(loyalty.CodeAuth),
	})
}

func noClinic(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
		Message: "Clinic context required", Error: string(loyalty.CodeAuth),
	})
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}
