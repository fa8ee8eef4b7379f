package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupGormMock(t *testing.T) (sqlmock.Sqlmock, *GormStore) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return mock, NewGormStore(gdb)
}

func TestGormDeleteClinicCascades(t *testing.T) {
	mock, store := setupGormMock(t)
	clinicID := uuid.New()

	mock.ExpectBegin()
	for _, table := range []string{"transactions", "wallets", "appointments", "care_plans", "family_groups", "users"} {
		mock.ExpectExec(`DELETE FROM "` + table + `" WHERE clinic_id = \$1`).
			WithArgs(clinicID).
			WillReturnResult(sqlmock.NewResult(0, 2))
	}
	mock.ExpectExec(`DELETE FROM "clinics" WHERE id = \$1`).
		WithArgs(clinicID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.DeleteClinic(context.Background(), clinicID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormDeleteMissingClinicRollsBack(t *testing.T) {
	mock, store := setupGormMock(t)
	clinicID := uuid.New()

	mock.ExpectBegin()
	for _, table := range []string{"transactions", "wallets", "appointments", "care_plans", "family_groups", "users"} {
		mock.ExpectExec(`DELETE FROM "` + table + `"`).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec(`DELETE FROM "clinics"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.DeleteClinic(context.Background(), clinicID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormWalletReadLocksInsideTransaction(t *testing.T) {
	mock, store := setupGormMock(t)
	userID := uuid.New()
	walletID := uuid.New()
	clinicID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "wallets" WHERE user_id = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "clinic_id", "balance"}).
			AddRow(walletID.String(), userID.String(), clinicID.String(), 720))
	mock.ExpectCommit()

	err := store.Atomic(context.Background(), func(tx Store) error {
		w, err := tx.GetWalletByUser(context.Background(), userID)
		if err != nil {
			return err
		}
		assert.Equal(t, walletID, w.ID)
		assert.Equal(t, int64(720), w.Balance)
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormGetUserNotFound(t *testing.T) {
	mock, store := setupGormMock(t)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.GetUser(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
