package deposit

import (
	"time"

	"gorm.io/gorm"

	"github.com/abc-custody/custody-backend/internal/model"
)

type ListFilter struct {
	UserID string
	Status model.DepositStatus
	Asset  string
	Limit  int
	Offset int
}

type IStore interface {
	Create(tx *gorm.DB, deposit *model.Deposit) (*model.Deposit, error)
	GetByID(tx *gorm.DB, id string) (*model.Deposit, error)
	GetByTxHash(tx *gorm.DB, txHash string) (*model.Deposit, error)
	List(tx *gorm.DB, filter ListFilter) ([]model.Deposit, error)

	// FindConfirming returns deposits still moving through the
	// confirmation pipeline (detected or confirming).
	FindConfirming(tx *gorm.DB) ([]model.Deposit, error)

	// FindSweepEligible returns confirmed, sender-verified deposits with
	// no vault transfer in sent or confirmed status.
	FindSweepEligible(tx *gorm.DB) ([]model.Deposit, error)

	UpdateConfirmations(tx *gorm.DB, id string, confirmations int64, status model.DepositStatus, confirmedAt *time.Time) error

	// UpdateStatusIf advances the status only when the row still holds the
	// expected current status. Returns false when another writer got there
	// first.
	UpdateStatusIf(tx *gorm.DB, id string, from, to model.DepositStatus) (bool, error)
}
