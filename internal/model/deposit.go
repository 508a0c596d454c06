package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type DepositStatus string

const (
	DepositStatusDetected   DepositStatus = "detected"
	DepositStatusConfirming DepositStatus = "confirming"
	DepositStatusConfirmed  DepositStatus = "confirmed"
	DepositStatusCredited   DepositStatus = "credited"
)

// Deposit is one uniquely observed inbound on-chain transfer. The unique
// txHash index is what makes the scanner idempotent across overlapping
// block ranges.
type Deposit struct {
	ID                    string          `json:"id" gorm:"column:id;primaryKey"`
	UserID                string          `json:"user_id" gorm:"column:user_id;not null;index"`
	DepositAddressID      string          `json:"deposit_address_id" gorm:"column:deposit_address_id;not null;index"`
	TxHash                string          `json:"tx_hash" gorm:"column:tx_hash;not null;uniqueIndex"`
	Asset                 string          `json:"asset" gorm:"column:asset;not null;index"`
	Network               string          `json:"network" gorm:"column:network;not null"`
	Amount                decimal.Decimal `json:"amount" gorm:"column:amount;type:numeric(30,6);not null"`
	FromAddress           string          `json:"from_address" gorm:"column:from_address;not null"`
	ToAddress             string          `json:"to_address" gorm:"column:to_address;not null"`
	Status                DepositStatus   `json:"status" gorm:"column:status;type:varchar(20);not null;default:'detected';index"`
	SenderVerified        bool            `json:"sender_verified" gorm:"column:sender_verified;not null;default:false"`
	CurrentConfirmations  int64           `json:"current_confirmations" gorm:"column:current_confirmations;not null;default:0"`
	RequiredConfirmations int64           `json:"required_confirmations" gorm:"column:required_confirmations;not null;default:12"`
	BlockHeight           uint64          `json:"block_height" gorm:"column:block_height;not null"`
	DetectedAt            time.Time       `json:"detected_at" gorm:"column:detected_at;not null"`
	ConfirmedAt           *time.Time      `json:"confirmed_at,omitempty" gorm:"column:confirmed_at"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

func (Deposit) TableName() string {
	return "deposits"
}

// IsTerminal reports whether the deposit has left the confirmation pipeline.
func (d *Deposit) IsTerminal() bool {
	return d.Status == DepositStatusCredited
}

// NextStatus derives the confirmation-driven status for a given confirmation
// count. The state machine is monotonic: a shrunk count never demotes.
func (d *Deposit) NextStatus(confirmations int64) DepositStatus {
	switch {
	case confirmations >= d.RequiredConfirmations:
		return DepositStatusConfirmed
	case confirmations >= 1:
		return DepositStatusConfirming
	default:
		return d.Status
	}
}
