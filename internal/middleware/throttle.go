package middleware

import (
	"sync"

	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/dto"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// ClinicThrottle applies a token bucket per clinic to mutating requests. Reads pass through.
func ClinicThrottle(limit float64, burst int) fiber.Handler {
	var (
		mu       sync.Mutex
		limiters = make(map[uuid.UUID]*rate.Limiter)
	)
	get := func(id uuid.UUID) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[id]
		if !ok {
			l = rate.NewLimiter(rate.Limit(limit), burst)
			limiters[id] = l
		}
		return l
	}

	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodGet || c.Method() == fiber.MethodHead || c.Method() == fiber.MethodOptions {
			return c.Next()
		}
		clinicID, ok := tenant.GetClinicID(c)
		if !ok {
			return c.Next()
		}
		if !get(clinicID).Allow() {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Message: "Too many requests for this clinic, slow down", Error: "API_ERR",
			})
		}
		return c.Next()
	}
}
