package handlers

import (
	"context"
	"time"

	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/dto"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

// Pinger is anything the health check can probe: the store, the Redis client.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store    Pinger
	cache    Pinger
	registry *tenant.Registry
}

// NewHealthHandler takes a nil cache when Redis is not configured.
func NewHealthHandler(store, cache Pinger, registry *tenant.Registry) *HealthHandler {
	return &HealthHandler{store: store, cache: cache, registry: registry}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := "ok"
	storeStatus := "ok"
	if err := h.store.Ping(ctx); err != nil {
		storeStatus = "unhealthy: " + err.Error()
		status = "degraded"
	}

	cacheStatus := "disabled"
	if h.cache != nil {
		cacheStatus = "ok"
		if err := h.cache.Ping(ctx); err != nil {
			cacheStatus = "unhealthy: " + err.Error()
		}
	}

	code := fiber.StatusOK
	if status != "ok" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(dto.HealthResponse{
		Status:      status,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Store:       storeStatus,
		Cache:       cacheStatus,
		ClinicCount: h.registry.Len(),
	})
}
