package withdrawaladdress

import (
	"gorm.io/gorm"

	"github.com/abc-custody/custody-backend/internal/model"
)

type IStore interface {
	Create(tx *gorm.DB, addr *model.WithdrawalAddress) (*model.WithdrawalAddress, error)
	FindByUser(tx *gorm.DB, userID string) ([]model.WithdrawalAddress, error)
}
