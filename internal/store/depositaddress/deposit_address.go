package depositaddress

import (
	"gorm.io/gorm"

	"github.com/abc-custody/custody-backend/internal/model"
)

type Store struct {
}

func New() IStore {
	return &Store{}
}

func (s *Store) Create(tx *gorm.DB, addr *model.DepositAddress) (*model.DepositAddress, error) {
	return addr, tx.Create(addr).Error
}

func (s *Store) GetByID(tx *gorm.DB, id string) (*model.DepositAddress, error) {
	var addr model.DepositAddress
	err := tx.Where("id = ?", id).First(&addr).Error
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

// FindScannable returns the active addresses whose asset is observable on
// the chain the scanner talks to.
func (s *Store) FindScannable(tx *gorm.DB, coins []string) ([]model.DepositAddress, error) {
	var addrs []model.DepositAddress
	err := tx.Where("is_active = ? AND coin IN ?", true, coins).Find(&addrs).Error
	if err != nil {
		return nil, err
	}
	return addrs, nil
}

func (s *Store) UpdateLastCheckedBlock(tx *gorm.DB, id string, block uint64) error {
	return tx.Model(&model.DepositAddress{}).
		Where("id = ?", id).
		Update("last_checked_block", block).Error
}
