package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/config"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/repository"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type Handlers struct {
	Health      *handlers.HealthHandler
	Ledger      *handlers.LedgerHandler
	CarePlan    *handlers.CarePlanHandler
	Appointment *handlers.AppointmentHandler
	Family      *handlers.FamilyHandler
	Clinic      *handlers.ClinicHandler
}

func Setup(app *fiber.App, cfg *config.Config, store repository.Store, registry *tenant.Registry, h Handlers) {
	api := app.Group("/api")

	// General API rate limiter: 120 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               120,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", h.Health.Check)

	// Platform operator: clinic directory (no tenant)
	operator := api.Group("/operator", middleware.JWTProtected(cfg), middleware.OperatorRequired(cfg))
	operator.Get("/clinics", h.Clinic.List)
	operator.Post("/clinics", h.Clinic.Create)
	operator.Patch("/clinics/:id", h.Clinic.Update)
	operator.Delete("/clinics/:id", h.Clinic.Delete)
	operator.Get("/state", h.Clinic.State)

	tenanted := []fiber.Handler{
		middleware.JWTProtected(cfg),
		middleware.TenantMiddleware(cfg, registry),
		middleware.ClinicThrottle(cfg.ClinicRateLimit, cfg.ClinicRateBurst),
	}

	// Any clinic member acting on their own records
	me := api.Group("/me", tenanted...)
	me.Get("/state", h.Ledger.GetState)
	me.Get("/wallet", h.Ledger.MyWallet)
	me.Post("/care-plans/:id/checklist/:itemId/toggle", h.CarePlan.ToggleMyItem)
	me.Post("/appointments", h.Appointment.ScheduleMine)
	me.Post("/family/link", h.Family.LinkToMe)
	me.Post("/family/members", h.Family.AddMyMember)

	// Clinic staff
	clinic := api.Group("/clinic", append(tenanted, middleware.StaffRequired(store, cfg))...)
	clinic.Get("/state", h.Ledger.GetState)
	clinic.Post("/patients", h.Ledger.RegisterPatient)
	clinic.Get("/wallets/:userId", h.Ledger.GetWallet)
	clinic.Post("/transactions", h.Ledger.ProcessTransaction)

	clinic.Post("/care-plans", h.CarePlan.Assign)
	clinic.Post("/care-plans/reset", h.CarePlan.ResetAll)
	clinic.Patch("/care-plans/:id", h.CarePlan.Update)
	clinic.Delete("/care-plans/:id", h.CarePlan.Terminate)
	clinic.Post("/care-plans/:id/reset", h.CarePlan.Reset)
	clinic.Post("/care-plans/:id/checklist/:itemId/toggle", h.CarePlan.ToggleItem)

	clinic.Post("/appointments", h.Appointment.Schedule)
	clinic.Patch("/appointments/:id/status", h.Appointment.UpdateStatus)

	clinic.Post("/family/link", h.Family.Link)
	clinic.Post("/family/members", h.Family.AddMember)
}
