package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type VaultTransferStatus string

const (
	VaultTransferStatusPending   VaultTransferStatus = "pending"
	VaultTransferStatusSent      VaultTransferStatus = "sent"
	VaultTransferStatusConfirmed VaultTransferStatus = "confirmed"
	VaultTransferStatusFailed    VaultTransferStatus = "failed"
)

// VaultTransfer is one sweep attempt of a deposit into the custodial vault.
// A deposit may accumulate failed attempts, but at most one transfer in
// sent or confirmed status may exist for it at any time.
type VaultTransfer struct {
	ID             string              `json:"id" gorm:"column:id;primaryKey"`
	DepositID      string              `json:"deposit_id" gorm:"column:deposit_id;not null;index"`
	FromAddress    string              `json:"from_address" gorm:"column:from_address;not null;index"`
	ToVaultAddress string              `json:"to_vault_address" gorm:"column:to_vault_address;not null"`
	VaultID        int                 `json:"vault_id" gorm:"column:vault_id"`
	Asset          string              `json:"asset" gorm:"column:asset;not null"`
	Network        string              `json:"network" gorm:"column:network;not null"`
	Amount         decimal.Decimal     `json:"amount" gorm:"column:amount;type:numeric(30,6);not null"`
	TxHash         *string             `json:"tx_hash,omitempty" gorm:"column:tx_hash;uniqueIndex"`
	GasUsed        *uint64             `json:"gas_used,omitempty" gorm:"column:gas_used"`
	GasFee         *decimal.Decimal    `json:"gas_fee,omitempty" gorm:"column:gas_fee;type:numeric(30,18)"`
	FeeAmount      *decimal.Decimal    `json:"fee_amount,omitempty" gorm:"column:fee_amount;type:numeric(30,6)"`
	FeeRate        *decimal.Decimal    `json:"fee_rate,omitempty" gorm:"column:fee_rate;type:numeric(5,4)"`
	Status         VaultTransferStatus `json:"status" gorm:"column:status;type:varchar(20);not null;default:'pending';index"`
	ErrorMessage   string              `json:"error_message,omitempty" gorm:"column:error_message;type:text"`
	TransferredAt  *time.Time          `json:"transferred_at,omitempty" gorm:"column:transferred_at;index"`
	ConfirmedAt    *time.Time          `json:"confirmed_at,omitempty" gorm:"column:confirmed_at"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

func (VaultTransfer) TableName() string {
	return "vault_transfers"
}
