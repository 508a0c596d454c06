package withdrawal

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

func (s *Store) Create(tx *gorm.DB, withdrawal *model.Withdrawal) (*model.Withdrawal, error) {
	return withdrawal, tx.Create(withdrawal).Error
}

func (s *Store) GetByID(tx *gorm.DB, id string) (*model.Withdrawal, error) {
	var w model.Withdrawal
	err := tx.Where("id = ?", id).First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *Store) List(tx *gorm.DB, filter ListFilter) ([]model.Withdrawal, error) {
	q := tx.Model(&model.Withdrawal{})
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.MemberType != "" {
		q = q.Where("member_type = ?", filter.MemberType)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Currency != "" {
		q = q.Where("currency = ?", filter.Currency)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var withdrawals []model.Withdrawal
	err := q.Order("initiated_at DESC").Find(&withdrawals).Error
	if err != nil {
		return nil, err
	}
	return withdrawals, nil
}

func (s *Store) Save(tx *gorm.DB, withdrawal *model.Withdrawal) error {
	return tx.Save(withdrawal).Error
}

func (s *Store) FindExpiredWaiting(tx *gorm.DB, now time.Time) ([]model.Withdrawal, error) {
	var withdrawals []model.Withdrawal
	err := tx.Where(
		"status = ? AND member_type = ? AND processing_scheduled_at IS NOT NULL AND processing_scheduled_at <= ?",
		model.WithdrawalStatusWait, model.MemberTypeIndividual, now,
	).Find(&withdrawals).Error
	if err != nil {
		return nil, err
	}
	return withdrawals, nil
}

func (s *Store) FindPendingWithVaultTx(tx *gorm.DB) ([]model.Withdrawal, error) {
	var withdrawals []model.Withdrawal
	err := tx.Where(
		"status = ? AND vault_tx_id <> ''",
		model.WithdrawalStatusPending,
	).Find(&withdrawals).Error
	if err != nil {
		return nil, err
	}
	return withdrawals, nil
}

func (s *Store) FindByStatusWithTxHash(tx *gorm.DB, status model.WithdrawalStatus) ([]model.Withdrawal, error) {
	var withdrawals []model.Withdrawal
	err := tx.Where("status = ? AND tx_hash <> ''", status).Find(&withdrawals).Error
	if err != nil {
		return nil, err
	}
	return withdrawals, nil
}

func (s *Store) UpdateStatusIf(tx *gorm.DB, id string, from model.WithdrawalStatus, updates map[string]interface{}) (bool, error) {
	res := tx.Model(&model.Withdrawal{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
