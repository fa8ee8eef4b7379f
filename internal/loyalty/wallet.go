package loyalty

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/models"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/repository"
	"github.com/google/uuid"
)

// EffectiveHead returns the user whose spend and wallet absorb userID's activity: the household
// head when the user belongs to a family group, otherwise the user.
func (e *Engine) EffectiveHead(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := e.store.GetUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &Failure{Code: CodeNotFound, Message: "User not found"}
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return effectiveHead(ctx, e.store, user)
}

// EffectiveWallet returns the wallet of EffectiveHead(userID), creating an empty one if the head
// has none yet.
func (e *Engine) EffectiveWallet(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	var wallet *models.Wallet
	err := e.store.Atomic(ctx, func(tx repository.Store) error {
		user, err := tx.GetUser(ctx, userID)
		if errors.Is(err, repository.ErrNotFound) {
			return &Failure{Code: CodeNotFound, Message: "User not found"}
		}
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		head, err := effectiveHead(ctx, tx, user)
		if err != nil {
			return err
		}
		wallet, err = effectiveWallet(ctx, tx, head)
		return err
	})
	return wallet, err
}

func effectiveHead(ctx context.Context, tx repository.Store, user *models.User) (*models.User, error) {
	if user.FamilyGroupID == nil {
		return user, nil
	}
	group, err := tx.GetFamilyGroup(ctx, *user.FamilyGroupID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fail(CodeData, "Family group of %s no longer exists", user.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("load family group: %w", err)
	}
	if group.HeadUserID == user.ID {
		return user, nil
	}
	head, err := tx.GetUser(ctx, group.HeadUserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fail(CodeData, "Head of household %s no longer exists", group.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("load household head: %w", err)
	}
	return head, nil
}

func effectiveWallet(ctx context.Context, tx repository.Store, head *models.User) (*models.Wallet, error) {
	wallet, err := tx.GetWalletByUser(ctx, head.ID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("load wallet: %w", err)
	}

	wallet = &models.Wallet{ID: uuid.New(), UserID: head.ID, ClinicID: head.ClinicID}
	if err := tx.CreateWallet(ctx, wallet); err != nil {
		return nil, fmt.Errorf("create wallet: %w", err)
	}
	return wallet, nil
}
