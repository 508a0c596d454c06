package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// AddressPermissions controls what a registered counterparty address may be
// used for. Stored as JSONB.
type AddressPermissions struct {
	CanDeposit  bool `json:"canDeposit"`
	CanWithdraw bool `json:"canWithdraw"`
}

func (p AddressPermissions) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *AddressPermissions) Scan(value interface{}) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.Errorf("unexpected type %T for AddressPermissions", value)
	}
	return json.Unmarshal(b, p)
}

// WithdrawalAddress is a user's pre-registered counterparty address. The
// deposit scanner trusts inbound transfers only from addresses with the
// canDeposit permission.
type WithdrawalAddress struct {
	ID          string             `json:"id" gorm:"column:id;primaryKey"`
	UserID      string             `json:"user_id" gorm:"column:user_id;not null;index"`
	Label       string             `json:"label" gorm:"column:label"`
	Address     string             `json:"address" gorm:"column:address;not null;index"`
	Coin        string             `json:"coin" gorm:"column:coin;not null"`
	Permissions AddressPermissions `json:"permissions" gorm:"column:permissions;type:jsonb"`
	AddedAt     time.Time          `json:"added_at" gorm:"column:added_at;not null;autoCreateTime"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func (WithdrawalAddress) TableName() string {
	return "withdrawal_addresses"
}
