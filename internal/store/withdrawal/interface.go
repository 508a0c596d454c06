package withdrawal

import (
	"time"

	"gorm.io/gorm"

	"github.com/abc-custody/custody-backend/internal/model"
)

type ListFilter struct {
	UserID     string
	MemberType model.MemberType
	Status     model.WithdrawalStatus
	Currency   string
	Limit      int
	Offset     int
}

type IStore interface {
	Create(tx *gorm.DB, withdrawal *model.Withdrawal) (*model.Withdrawal, error)
	GetByID(tx *gorm.DB, id string) (*model.Withdrawal, error)
	List(tx *gorm.DB, filter ListFilter) ([]model.Withdrawal, error)

	// Save persists the full row, audit trail included.
	Save(tx *gorm.DB, withdrawal *model.Withdrawal) error

	// FindExpiredWaiting returns individual-member withdrawals whose
	// holding period has elapsed.
	FindExpiredWaiting(tx *gorm.DB, now time.Time) ([]model.Withdrawal, error)

	// FindPendingWithVaultTx returns withdrawal_pending rows that hold a
	// vault-assigned transaction id.
	FindPendingWithVaultTx(tx *gorm.DB) ([]model.Withdrawal, error)

	// FindByStatusWithTxHash returns rows in the given status that hold a
	// broadcast hash.
	FindByStatusWithTxHash(tx *gorm.DB, status model.WithdrawalStatus) ([]model.Withdrawal, error)

	// UpdateStatusIf applies the updates only while the row still holds
	// the expected status. Returns false when it no longer does.
	UpdateStatusIf(tx *gorm.DB, id string, from model.WithdrawalStatus, updates map[string]interface{}) (bool, error)
}
