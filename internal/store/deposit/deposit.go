package deposit

import (
	"time"

	"gorm.io/gorm"

	"github.com/abc-custody/custody-backend/internal/model"
)

type Store struct {
}

func New() IStore {
	return &Store{}
}

func (s *Store) Create(tx *gorm.DB, deposit *model.Deposit) (*model.Deposit, error) {
	return deposit, tx.Create(deposit).Error
}

func (s *Store) GetByID(tx *gorm.DB, id string) (*model.Deposit, error) {
	var deposit model.Deposit
	err := tx.Where("id = ?", id).First(&deposit).Error
	if err != nil {
		return nil, err
	}
	return &deposit, nil
}

func (s *Store) GetByTxHash(tx *gorm.DB, txHash string) (*model.Deposit, error) {
	var deposit model.Deposit
	err := tx.Where("tx_hash = ?", txHash).First(&deposit).Error
	if err != nil {
		return nil, err
	}
	return &deposit, nil
}

func (s *Store) List(tx *gorm.DB, filter ListFilter) ([]model.Deposit, error) {
	q := tx.Model(&model.Deposit{})
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Asset != "" {
		q = q.Where("asset = ?", filter.Asset)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var deposits []model.Deposit
	err := q.Order("detected_at DESC").Find(&deposits).Error
	if err != nil {
		return nil, err
	}
	return deposits, nil
}

func (s *Store) FindConfirming(tx *gorm.DB) ([]model.Deposit, error) {
	var deposits []model.Deposit
	err := tx.Where("status IN ?", []model.DepositStatus{
		model.DepositStatusDetected,
		model.DepositStatusConfirming,
	}).Find(&deposits).Error
	if err != nil {
		return nil, err
	}
	return deposits, nil
}

func (s *Store) FindSweepEligible(tx *gorm.DB) ([]model.Deposit, error) {
	var deposits []model.Deposit
	err := tx.
		Where("status = ? AND sender_verified = ?", model.DepositStatusConfirmed, true).
		Where("id NOT IN (?)",
			tx.Session(&gorm.Session{NewDB: true}).
				Model(&model.VaultTransfer{}).
				Select("deposit_id").
				Where("status IN ?", []model.VaultTransferStatus{
					model.VaultTransferStatusSent,
					model.VaultTransferStatusConfirmed,
				}),
		).
		Find(&deposits).Error
	if err != nil {
		return nil, err
	}
	return deposits, nil
}

func (s *Store) UpdateConfirmations(tx *gorm.DB, id string, confirmations int64, status model.DepositStatus, confirmedAt *time.Time) error {
	updates := map[string]interface{}{
		"current_confirmations": confirmations,
		"status":                status,
	}
	if confirmedAt != nil {
		updates["confirmed_at"] = confirmedAt
	}

	return tx.Model(&model.Deposit{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (s *Store) UpdateStatusIf(tx *gorm.DB, id string, from, to model.DepositStatus) (bool, error) {
	res := tx.Model(&model.Deposit{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
