package vaulttransfer

import (
	"time"

	"gorm.io/gorm"

	"github.com/abc-custody/custody-backend/internal/model"
)

type IStore interface {
	Create(tx *gorm.DB, transfer *model.VaultTransfer) (*model.VaultTransfer, error)
	GetByID(tx *gorm.DB, id string) (*model.VaultTransfer, error)

	// GetLatestByDepositID returns the sweep attempt with the latest
	// transfer time, or gorm.ErrRecordNotFound when none exists.
	GetLatestByDepositID(tx *gorm.DB, depositID string) (*model.VaultTransfer, error)

	// HasActiveForDeposit reports whether a sent or confirmed transfer
	// exists for the deposit. Such a deposit must never be re-swept.
	HasActiveForDeposit(tx *gorm.DB, depositID string) (bool, error)

	MarkSent(tx *gorm.DB, id, txHash string, gasEstimate uint64, at time.Time) error
	MarkConfirmed(tx *gorm.DB, id string, gasUsed uint64, gasFee string, at time.Time) error
	MarkFailed(tx *gorm.DB, id, errorMessage string) error
}
