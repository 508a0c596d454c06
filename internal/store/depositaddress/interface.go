package depositaddress

import (
	"gorm.io/gorm"

	"github.com/abc-custody/custody-backend/internal/model"
)

type IStore interface {
	Create(tx *gorm.DB, addr *model.DepositAddress) (*model.DepositAddress, error)
	GetByID(tx *gorm.DB, id string) (*model.DepositAddress, error)
	FindScannable(tx *gorm.DB, coins []string) ([]model.DepositAddress, error)
	UpdateLastCheckedBlock(tx *gorm.DB, id string, block uint64) error
}
