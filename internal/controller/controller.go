package controller

import (
	"fmt"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/abc-custody/custody-backend/internal/model"
	"github.com/abc-custody/custody-backend/internal/store"
	"github.com/abc-custody/custody-backend/internal/utils/config"
	"github.com/abc-custody/custody-backend/internal/utils/logger"
	"github.com/abc-custody/custody-backend/internal/vaultapi"
)

type Controller struct {
	db        *gorm.DB
	store     *store.Store
	vaultApi  vaultapi.IVaultAPI
	logger    *logger.Logger
	appConfig *config.AppConfig
}

func New(db *gorm.DB, store *store.Store, vaultApi vaultapi.IVaultAPI, logger *logger.Logger, appConfig *config.AppConfig) IController {
	return &Controller{
		db:        db,
		store:     store,
		vaultApi:  vaultApi,
		logger:    logger,
		appConfig: appConfig,
	}
}

func (c *Controller) SubmitWithdrawal(withdrawalID string, source SourceVault) (*model.Withdrawal, error) {
	w, err := c.store.Withdrawal.GetByID(c.db, withdrawalID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load withdrawal")
	}

	if w.Status != model.WithdrawalStatusProcessing {
		return nil, errors.Errorf("withdrawal %s is %s, not %s", w.ID, w.Status, model.WithdrawalStatusProcessing)
	}

	vaultID := c.appConfig.Vault.HotVaultID
	if source == SourceVaultCold {
		vaultID = c.appConfig.Vault.ColdVaultID
	}

	c.logger.Info(fmt.Sprintf("[SubmitWithdrawal] Submitting %s (%s %s) from vault %d",
		w.ID, w.Amount, w.Currency, vaultID))

	assignedID, err := c.vaultApi.InitiateTransfer(w, vaultID)
	if err != nil {
		c.logger.Error("[SubmitWithdrawal][InitiateTransfer]", map[string]string{
			"withdrawalId": w.ID,
			"error":        err.Error(),
		})
		return nil, err
	}

	w.AppendAudit("operator", "vault_transfer_initiated",
		fmt.Sprintf("vault %d assigned transaction %s", vaultID, assignedID))

	moved, err := c.store.Withdrawal.UpdateStatusIf(c.db, w.ID, model.WithdrawalStatusProcessing, map[string]interface{}{
		"status":      model.WithdrawalStatusPending,
		"vault_tx_id": assignedID,
		"audit_trail": w.AuditTrail,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to record vault transaction id")
	}
	if !moved {
		return nil, errors.Errorf("withdrawal %s left %s during submission", w.ID, model.WithdrawalStatusProcessing)
	}

	return c.store.Withdrawal.GetByID(c.db, w.ID)
}
