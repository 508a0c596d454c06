package model

import "time"

// DepositAddress is a custodial receive address generated per (user, asset).
// The private key is held only for sweep signing; nothing else reads it.
type DepositAddress struct {
	ID               string     `json:"id" gorm:"column:id;primaryKey"`
	UserID           string     `json:"user_id" gorm:"column:user_id;not null;index"`
	Label            string     `json:"label" gorm:"column:label"`
	Coin             string     `json:"coin" gorm:"column:coin;not null;index"`
	Network          string     `json:"network" gorm:"column:network;not null"`
	Address          string     `json:"address" gorm:"column:address;not null;uniqueIndex"`
	PrivateKey       string     `json:"-" gorm:"column:private_key"`
	ContractAddress  string     `json:"contract_address,omitempty" gorm:"column:contract_address"`
	IsActive         bool       `json:"is_active" gorm:"column:is_active;not null;default:true;index"`
	LastCheckedBlock *uint64    `json:"last_checked_block,omitempty" gorm:"column:last_checked_block"`
	AddedAt          time.Time  `json:"added_at" gorm:"column:added_at;not null;autoCreateTime"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	DeletedAt        *time.Time `json:"-" gorm:"column:deleted_at;index"`
}

func (DepositAddress) TableName() string {
	return "deposit_addresses"
}
