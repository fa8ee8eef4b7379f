package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/config"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/dto"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/models"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/repository"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type env struct {
	cfg      *config.Config
	store    *repository.MemoryStore
	registry *tenant.Registry
	clinic   models.Clinic
	admin    models.User
	patient  models.User
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	e := &env{
		cfg:      &config.Config{JWTSecret: testSecret, AdminToken: "op-token"},
		store:    repository.NewMemoryStore(),
		registry: tenant.NewRegistry(),
	}
	e.clinic = models.Clinic{ID: uuid.New(), Name: "Smile Dental", Slug: "smile-dental"}
	require.NoError(t, e.store.CreateClinic(ctx, &e.clinic))
	e.admin = models.User{ID: uuid.New(), ClinicID: e.clinic.ID, Name: "Dr. Rao", Role: models.RoleAdmin}
	require.NoError(t, e.store.CreateUser(ctx, &e.admin))
	e.patient = models.User{ID: uuid.New(), ClinicID: e.clinic.ID, Name: "Asha", Role: models.RolePatient}
	require.NoError(t, e.store.CreateUser(ctx, &e.patient))
	require.NoError(t, e.registry.Reload(ctx, e.store))
	return e
}

func token(t *testing.T, sub uuid.UUID, clinicID *uuid.UUID, role models.Role) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":       sub.String(),
		"user_role": string(role),
		"exp":       time.Now().Add(time.Hour).Unix(),
	}
	if clinicID != nil {
		claims["clinic_id"] = clinicID.String()
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (e *env) app() *fiber.App {
	app := fiber.New()
	api := app.Group("/api", JWTProtected(e.cfg), TenantMiddleware(e.cfg, e.registry))
	api.Get("/whoami", func(c *fiber.Ctx) error {
		id, _ := tenant.GetClinicID(c)
		return c.SendString(id.String())
	})
	api.Post("/staff", StaffRequired(e.store, e.cfg), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	api.Post("/operator", OperatorRequired(e.cfg), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	return app
}

func do(t *testing.T, app *fiber.App, method, path string, headers map[string]string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	buf := make([]byte, 512)
	n, _ := resp.Body.Read(buf)
	return resp, string(buf[:n])
}

func TestJWTRejectsMissingToken(t *testing.T) {
	e := newEnv(t)
	resp, body := do(t, e.app(), http.MethodGet, "/api/whoami", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	var out dto.ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	assert.False(t, out.Success)
	assert.Equal(t, "AUTH_ERR", out.Error)
}

func TestTenantFromClaim(t *testing.T) {
	e := newEnv(t)
	tok := token(t, e.patient.ID, &e.clinic.ID, models.RolePatient)

	resp, body := do(t, e.app(), http.MethodGet, "/api/whoami", map[string]string{
		"Authorization": "Bearer " + tok,
		"X-Clinic-ID":   uuid.NewString(),
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, e.clinic.ID.String(), body)

	tok = token(t, e.patient.ID, nil, models.RolePatient)
	resp, _ = do(t, e.app(), http.MethodGet, "/api/whoami", map[string]string{"Authorization": "Bearer " + tok})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	unknown := uuid.New()
	tok = token(t, e.patient.ID, &unknown, models.RolePatient)
	resp, _ = do(t, e.app(), http.MethodGet, "/api/whoami", map[string]string{"Authorization": "Bearer " + tok})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestTenantForOperator(t *testing.T) {
	e := newEnv(t)
	app := e.app()

	resp, body := do(t, app, http.MethodGet, "/api/whoami", map[string]string{
		"X-Admin-Token": "op-token", "X-Clinic-Slug": "smile-dental",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, e.clinic.ID.String(), body)

	tok := token(t, uuid.New(), nil, models.RoleSuperAdmin)
	resp, body = do(t, app, http.MethodGet, "/api/whoami", map[string]string{
		"Authorization": "Bearer " + tok, "X-Clinic-ID": e.clinic.ID.String(),
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, e.clinic.ID.String(), body)

	resp, _ = do(t, app, http.MethodGet, "/api/whoami", map[string]string{
		"X-Admin-Token": "op-token", "X-Clinic-Slug": "nowhere",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, app, http.MethodGet, "/api/whoami", map[string]string{"X-Admin-Token": "op-token"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, app, http.MethodGet, "/api/whoami", map[string]string{
		"X-Admin-Token": "wrong", "X-Clinic-Slug": "smile-dental",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestStaffRequired(t *testing.T) {
	e := newEnv(t)
	app := e.app()

	staff := token(t, e.admin.ID, &e.clinic.ID, models.RoleAdmin)
	resp, _ := do(t, app, http.MethodPost, "/api/staff", map[string]string{"Authorization": "Bearer " + staff})
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	// The role claim alone is not enough.
	forged := token(t, e.patient.ID, &e.clinic.ID, models.RoleAdmin)
	resp, _ = do(t, app, http.MethodPost, "/api/staff", map[string]string{"Authorization": "Bearer " + forged})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = do(t, app, http.MethodPost, "/api/staff", map[string]string{
		"X-Admin-Token": "op-token", "X-Clinic-ID": e.clinic.ID.String(),
	})
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestOperatorRequired(t *testing.T) {
	e := newEnv(t)
	app := e.app()

	staff := token(t, e.admin.ID, &e.clinic.ID, models.RoleAdmin)
	resp, _ := do(t, app, http.MethodPost, "/api/operator", map[string]string{"Authorization": "Bearer " + staff})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	op := token(t, uuid.New(), nil, models.RoleSuperAdmin)
	resp, _ = do(t, app, http.MethodPost, "/api/operator", map[string]string{
		"Authorization": "Bearer " + op, "X-Clinic-Slug": "smile-dental",
	})
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestClinicThrottle(t *testing.T) {
	clinicID := uuid.New()
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		tenant.SetClinicID(c, clinicID)
		return c.Next()
	})
	app.Use(ClinicThrottle(0.001, 2))
	app.All("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	for i := 0; i < 2; i++ {
		resp, _ := do(t, app, http.MethodPost, "/", nil)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	}
	resp, _ := do(t, app, http.MethodPost, "/", nil)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	resp, _ = do(t, app, http.MethodGet, "/", nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}
