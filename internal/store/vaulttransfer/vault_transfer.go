package vaulttransfer

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

func (s *Store) Create(tx *gorm.DB, transfer *model.VaultTransfer) (*model.VaultTransfer, error) {
	return transfer, tx.Create(transfer).Error
}

func (s *Store) GetByID(tx *gorm.DB, id string) (*model.VaultTransfer, error) {
	var transfer model.VaultTransfer
	err := tx.Where("id = ?", id).First(&transfer).Error
	if err != nil {
		return nil, err
	}
	return &transfer, nil
}

func (s *Store) GetLatestByDepositID(tx *gorm.DB, depositID string) (*model.VaultTransfer, error) {
	// latest by broadcast time; attempts that never reached the chain
	// have no transferred_at and rank below any broadcast one
	var transfer model.VaultTransfer
	err := tx.Where("deposit_id = ?", depositID).
		Order("transferred_at DESC NULLS LAST, created_at DESC").
		First(&transfer).Error
	if err != nil {
		return nil, err
	}
	return &transfer, nil
}

func (s *Store) HasActiveForDeposit(tx *gorm.DB, depositID string) (bool, error) {
	var count int64
	err := tx.Model(&model.VaultTransfer{}).
		Where("deposit_id = ? AND status IN ?", depositID, []model.VaultTransferStatus{
			model.VaultTransferStatusSent,
			model.VaultTransferStatusConfirmed,
		}).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) MarkSent(tx *gorm.DB, id, txHash string, gasEstimate uint64, at time.Time) error {
	return tx.Model(&model.VaultTransfer{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"tx_hash":        txHash,
			"gas_used":       gasEstimate,
			"status":         model.VaultTransferStatusSent,
			"transferred_at": at,
		}).Error
}

func (s *Store) MarkConfirmed(tx *gorm.DB, id string, gasUsed uint64, gasFee string, at time.Time) error {
	return tx.Model(&model.VaultTransfer{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"gas_used":     gasUsed,
			"gas_fee":      gasFee,
			"status":       model.VaultTransferStatusConfirmed,
			"confirmed_at": at,
		}).Error
}

func (s *Store) MarkFailed(tx *gorm.DB, id, errorMessage string) error {
	return tx.Model(&model.VaultTransfer{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        model.VaultTransferStatusFailed,
			"error_message": errorMessage,
		}).Error
}
