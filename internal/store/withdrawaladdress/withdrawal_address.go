package withdrawaladdress

import (
	"gorm.io/gorm"

	"github.com/abc-custody/custody-backend/internal/model"
)

type Store struct {
}

func New() IStore {
	return &Store{}
}

func (s *Store) Create(tx *gorm.DB, addr *model.WithdrawalAddress) (*model.WithdrawalAddress, error) {
	return addr, tx.Create(addr).Error
}

func (s *Store) FindByUser(tx *gorm.DB, userID string) ([]model.WithdrawalAddress, error) {
	var addrs []model.WithdrawalAddress
	err := tx.Where("user_id = ?", userID).Find(&addrs).Error
	if err != nil {
		return nil, err
	}
	return addrs, nil
}
