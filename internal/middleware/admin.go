package middleware

import (
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/config"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/dto"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/models"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/repository"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

// OperatorRequired admits the platform operator: the X-Admin-Token or a SUPER_ADMIN token.
func OperatorRequired(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if hasAdminToken(c, cfg) || tenant.GetRole(c) == models.RoleSuperAdmin {
			return c.Next()
		}
		return forbidden(c, "Platform operator access required")
	}
}

// StaffRequired admits clinic staff. Besides the operator, an ADMIN claim must be backed by
// an ADMIN user of the resolved clinic in the store.
func StaffRequired(store repository.Store, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if hasAdminToken(c, cfg) || tenant.GetRole(c) == models.RoleSuperAdmin {
			return c.Next()
		}

		clinicID, ok := tenant.GetClinicID(c)
		if !ok {
			return forbidden(c, "Clinic context required")
		}
		userID, err := tenant.GetUserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Message: "Unauthorized", Error: "AUTH_ERR",
			})
		}

		user, err := store.GetUser(c.UserContext(), userID)
		if err == nil && user.ClinicID == clinicID && user.Role == models.RoleAdmin {
			return c.Next()
		}
		return forbidden(c, "Clinic staff access required")
	}
}

func forbidden(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
		Message: message, Error: "AUTH_ERR",
	})
}
