package tenant

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const clinicLocal = "clinic_id"

// SetClinicID stores the resolved tenant on the request.
func SetClinicID(c *fiber.Ctx, clinicID uuid.UUID) {
	c.Locals(clinicLocal, clinicID)
}

// GetClinicID extracts the clinic id resolved by the tenant middleware.
func GetClinicID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, ok := c.Locals(clinicLocal).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func claims(c *fiber.Ctx) (jwt.MapClaims, bool) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return nil, false
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	return mc, ok
}

// GetUserID extracts the user UUID from JWT claims in context.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	mc, ok := claims(c)
	if !ok {
		return uuid.Nil, errors.New("invalid token in context")
	}

	sub, ok := mc["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sub claim")
	}

	return uuid.Parse(sub)
}

// GetRole returns the user_role claim, or an empty role when absent.
func GetRole(c *fiber.Ctx) models.Role {
	mc, ok := claims(c)
	if !ok {
		return ""
	}
	role, _ := mc["user_role"].(string)
	return models.Role(role)
}

// ClaimedClinicID returns the clinic_id claim of the caller's token.
func ClaimedClinicID(c *fiber.Ctx) (uuid.UUID, bool) {
	mc, ok := claims(c)
	if !ok {
		return uuid.Nil, false
	}
	raw, _ := mc["clinic_id"].(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
