package handlers

import (
	"errors"
	"strings"

	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/dto"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/loyalty"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/models"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type LedgerHandler struct {
	engine *loyalty.Engine
}

func NewLedgerHandler(engine *loyalty.Engine) *LedgerHandler {
	return &LedgerHandler{engine: engine}
}

// GetState returns the clinic snapshot the dashboards render from.
func (h *LedgerHandler) GetState(c *fiber.Ctx) error {
	clinicID, ok := tenant.GetClinicID(c)
	if !ok {
		return noClinic(c)
	}
	res, err := h.engine.GetData(c.UserContext(), &clinicID)
	return respond(c, fiber.StatusOK, res, err)
}

func (h *LedgerHandler) ProcessTransaction(c *fiber.Ctx) error {
	clinicID, ok := tenant.GetClinicID(c)
	if !ok {
		return noClinic(c)
	}

	var req dto.TransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	res, err := h.engine.ProcessTransaction(c.UserContext(), loyalty.TransactionRequest{
		ClinicID:  clinicID,
		PatientID: req.PatientID,
		Amount:    req.Amount,
		Category:  models.Category(strings.ToUpper(req.Category)),
		Type:      models.TransactionType(strings.ToUpper(req.Type)),
		CarePlan:  req.CarePlan,
	})
	return respond(c, fiber.StatusCreated, res, err)
}

func (h *LedgerHandler) RegisterPatient(c *fiber.Ctx) error {
	clinicID, ok := tenant.GetClinicID(c)
	if !ok {
		return noClinic(c)
	}

	var req loyalty.PatientInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	res, err := h.engine.RegisterPatient(c.UserContext(), clinicID, req)
	return respond(c, fiber.StatusCreated, res, err)
}

// GetWallet reports the wallet a patient's points land in, which is the household
// head's when the patient belongs to a family group.
func (h *LedgerHandler) GetWallet(c *fiber.Ctx) error {
	clinicID, ok := tenant.GetClinicID(c)
	if !ok {
		return noClinic(c)
	}
	userID, ok := paramID(c, "userId")
	if !ok {
		return badRequest(c, "Invalid user id")
	}
	return h.wallet(c, clinicID, userID)
}

// MyWallet is GetWallet for the authenticated patient.
func (h *LedgerHandler) MyWallet(c *fiber.Ctx) error {
	clinicID, ok := tenant.GetClinicID(c)
	if !ok {
		return noClinic(c)
	}
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	return h.wallet(c, clinicID, userID)
}

func (h *LedgerHandler) wallet(c *fiber.Ctx, clinicID, userID uuid.UUID) error {
	head, err := h.engine.EffectiveHead(c.UserContext(), userID)
	if err != nil {
		return walletError(c, err)
	}
	if head.ClinicID != clinicID {
		return respond(c, fiber.StatusOK, (&loyalty.Failure{Code: loyalty.CodeAuth, Message: "Patient is not a member of this clinic"}).Result(), nil)
	}
	wallet, err := h.engine.EffectiveWallet(c.UserContext(), userID)
	if err != nil {
		return walletError(c, err)
	}

	return c.JSON(dto.WalletResponse{
		HeadUserID: head.ID,
		WalletID:   wallet.ID,
		Balance:    wallet.Balance,
		Tier:       string(head.CurrentTier),
	})
}

func walletError(c *fiber.Ctx, err error) error {
	var f *loyalty.Failure
	if errors.As(err, &f) {
		return respond(c, fiber.StatusOK, f.Result(), nil)
	}
	return storageFailure(c, err)
}
