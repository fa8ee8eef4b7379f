package middleware

import (
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/config"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/dto"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/models"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// TenantMiddleware resolves the clinic a request acts on.
//
// Clinic users are pinned to the clinic_id claim of their token. The platform operator
// (admin token or SUPER_ADMIN) picks a clinic with X-Clinic-ID or X-Clinic-Slug.
func TenantMiddleware(cfg *config.Config, registry *tenant.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if hasAdminToken(c, cfg) || tenant.GetRole(c) == models.RoleSuperAdmin {
			return resolveOperatorClinic(c, registry)
		}

		clinicID, ok := tenant.ClaimedClinicID(c)
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Message: "Token is not bound to a clinic", Error: "AUTH_ERR",
			})
		}
		if !registry.Exists(clinicID) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Message: "Unknown clinic", Error: "AUTH_ERR",
			})
		}
		tenant.SetClinicID(c, clinicID)
		return c.Next()
	}
}

func resolveOperatorClinic(c *fiber.Ctx, registry *tenant.Registry) error {
	if raw := c.Get("X-Clinic-ID"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil || !registry.Exists(id) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Message: "Invalid X-Clinic-ID: " + raw, Error: "AUTH_ERR",
			})
		}
		tenant.SetClinicID(c, id)
		return c.Next()
	}

	if slug := c.Get("X-Clinic-Slug"); slug != "" {
		id, ok := registry.Resolve(slug)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Message: "Invalid X-Clinic-Slug: " + slug, Error: "AUTH_ERR",
			})
		}
		tenant.SetClinicID(c, id)
		return c.Next()
	}

	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Message: "X-Clinic-ID or X-Clinic-Slug header is required", Error: "AUTH_ERR",
	})
}
