package loyalty

import (
	"context"
	"fmt"
	"math"

	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/models"
	"github.com/google/uuid"
)

type TransactionRequest struct {
	ClinicID  uuid.UUID
	PatientID uuid.UUID
	Amount    float64
	Category  models.Category
	Type      models.TransactionType
	// CarePlan, when set on an EARN, replaces the patient's active care plan.
	CarePlan *CarePlanTemplate
}

// ProcessTransaction records a visit (EARN) or a redemption (REDEEM) against the patient's
// effective wallet.
func (e *Engine) ProcessTransaction(ctx context.Context, req TransactionRequest) (*Result, error) {
	return e.mutate(ctx, "ProcessTransaction", &req.ClinicID, func(m *mutation) error {
		if _, err := e.loadClinic(ctx, m.tx, req.ClinicID); err != nil {
			return err
		}
		patient, err := e.loadPatient(ctx, m.tx, req.ClinicID, req.PatientID)
		if err != nil {
			return err
		}
		if math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) || req.Amount <= 0 {
			return fail(CodeValidation, "Amount must be a positive number")
		}
		if req.Amount > MaxTransactionAmount {
			return fail(CodeValidation, "Amount exceeds the %.0f limit", float64(MaxTransactionAmount))
		}
		if !knownCategory(req.Category) {
			return fail(CodeValidation, "Unknown category %q", req.Category)
		}

		head, err := effectiveHead(ctx, m.tx, patient)
		if err != nil {
			return err
		}
		wallet, err := effectiveWallet(ctx, m.tx, head)
		if err != nil {
			return err
		}

		switch req.Type {
		case models.TransactionEarn:
			return e.earn(ctx, m, req, patient, head, wallet)
		case models.TransactionRedeem:
			return e.redeem(ctx, m, req, patient, wallet)
		default:
			return fail(CodeValidation, "Unknown transaction type %q", req.Type)
		}
	})
}

func (e *Engine) earn(ctx context.Context, m *mutation, req TransactionRequest, patient, head *models.User, wallet *models.Wallet) error {
	if req.Category == models.CategoryReward {
		return fail(CodeValidation, "Rewards cannot be earned against")
	}

	previous := head.CurrentTier
	head.LifetimeSpend += req.Amount
	head.CurrentTier = e.policy.Promote(head.CurrentTier, e.policy.TierForSpend(head.LifetimeSpend))
	points := e.policy.PointsForEarn(req.Amount, head.CurrentTier, req.Category)
	if points > math.MaxInt64-wallet.Balance {
		return fail(CodeValidation, "Wallet balance would overflow")
	}

	now := e.now()
	wallet.Balance += points
	wallet.LastTransactionAt = &now
	if err := m.tx.UpdateWallet(ctx, wallet); err != nil {
		return fmt.Errorf("update wallet: %w", err)
	}
	if err := m.tx.UpdateUser(ctx, head); err != nil {
		return fmt.Errorf("update household head: %w", err)
	}

	description := string(req.Category)
	var planID *uuid.UUID
	if req.CarePlan != nil {
		plan, err := e.assignPlan(ctx, m.tx, req.ClinicID, patient.ID, *req.CarePlan)
		if err != nil {
			return err
		}
		description = plan.TreatmentName
		planID = &plan.ID
	}

	entry := models.Transaction{
		ID:           uuid.New(),
		WalletID:     wallet.ID,
		ClinicID:     req.ClinicID,
		PatientID:    patient.ID,
		AmountPaid:   req.Amount,
		PointsEarned: points,
		Category:     req.Category,
		Type:         models.TransactionEarn,
		Description:  description,
		CarePlanID:   planID,
		CreatedAt:    now,
	}
	if err := m.tx.AppendTransaction(ctx, &entry); err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}
	m.ledger = append(m.ledger, entry)

	if head.CurrentTier != previous {
		return m.done("Earned %d points. %s reached %s tier", points, head.Name, head.CurrentTier)
	}
	return m.done("Earned %d points", points)
}

func (e *Engine) redeem(ctx context.Context, m *mutation, req TransactionRequest, patient *models.User, wallet *models.Wallet) error {
	var redeem int64
	description := "Bill discount"
	switch RedemptionKindFor(req.Category) {
	case RedemptionCatalog:
		redeem = int64(math.Floor(req.Amount))
		description = "Reward redemption"
	case RedemptionBillDiscount:
		redeem = min(wallet.Balance, e.policy.RedeemCap(req.Amount))
	}

	if wallet.Balance < redeem {
		return fail(CodeFunds, "Insufficient points: balance %d, required %d", wallet.Balance, redeem)
	}
	if redeem <= 0 {
		return fail(CodeValidation, "Nothing to redeem")
	}

	now := e.now()
	wallet.Balance -= redeem
	wallet.LastTransactionAt = &now
	if err := m.tx.UpdateWallet(ctx, wallet); err != nil {
		return fmt.Errorf("update wallet: %w", err)
	}

	entry := models.Transaction{
		ID:           uuid.New(),
		WalletID:     wallet.ID,
		ClinicID:     req.ClinicID,
		PatientID:    patient.ID,
		AmountPaid:   0,
		PointsEarned: -redeem,
		Category:     req.Category,
		Type:         models.TransactionRedeem,
		Description:  description,
		CreatedAt:    now,
	}
	if err := m.tx.AppendTransaction(ctx, &entry); err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}
	m.ledger = append(m.ledger, entry)
	return m.done("Redeemed %d points", redeem)
}
