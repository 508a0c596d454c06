package crawler

import (
	"fmt"
	"strings"

	"github.com/abc-custody/custody-backend/internal/model"
	"github.com/abc-custody/custody-backend/internal/vaultapi"
)

// TrackVaultWithdrawals polls the custody API for withdrawals that hold a
// vault-assigned transaction id but no broadcast hash yet.
//
//	Rejected/Failed        -> admin_rejected
//	hash present           -> transferring (hash recorded, exactly once)
//	New, no hash           -> still pending, untouched
//	anything else, no hash -> logged as unrecognized, untouched
func (c *Crawler) TrackVaultWithdrawals() (CycleResult, error) {
	c.logger.Info("[TrackVaultWithdrawals] Start polling custody transfers...")

	var result CycleResult

	pending, err := c.store.Withdrawal.FindPendingWithVaultTx(c.db)
	if err != nil {
		c.logger.Error("[TrackVaultWithdrawals][FindPendingWithVaultTx]", map[string]string{
			"error": err.Error(),
		})
		return result, err
	}

	for _, w := range pending {
		if err := c.trackVaultWithdrawal(&w); err != nil {
			c.logger.Error("[TrackVaultWithdrawals][trackVaultWithdrawal]", map[string]string{
				"withdrawalId": w.ID,
				"error":        err.Error(),
			})
			result.fail(w.ID, err)
			continue
		}
		result.ok(w.ID)
	}

	return result, nil
}

func (c *Crawler) trackVaultWithdrawal(w *model.Withdrawal) error {
	status, err := c.vaultApi.TransferStatus(w.VaultTxID)
	if err != nil {
		return err
	}

	if status.Status == vaultapi.TransferStatusRejected || status.Status == vaultapi.TransferStatusFailed {
		now := c.now()
		w.AppendAudit("vault system", "transfer_rejected", fmt.Sprintf("custody status %s", status.Status))

		_, err := c.store.Withdrawal.UpdateStatusIf(c.db, w.ID, model.WithdrawalStatusPending, map[string]interface{}{
			"status":           model.WithdrawalStatusAdminRejected,
			"rejection_reason": fmt.Sprintf("custody %s", strings.ToLower(status.Status)),
			"rejected_at":      now,
			"rejected_by":      "vault system",
			"audit_trail":      w.AuditTrail,
		})
		if err != nil {
			return err
		}

		c.logger.Info(fmt.Sprintf("[TrackVaultWithdrawals] %s: custody %s -> admin_rejected", w.ID, status.Status))
		return nil
	}

	if status.TxHash != "" {
		w.AppendAudit("vault system", "tx_hash_assigned", status.TxHash)

		// the status guard makes the hash assignment happen at most once
		_, err := c.store.Withdrawal.UpdateStatusIf(c.db, w.ID, model.WithdrawalStatusPending, map[string]interface{}{
			"status":      model.WithdrawalStatusTransferring,
			"tx_hash":     status.TxHash,
			"audit_trail": w.AuditTrail,
		})
		if err != nil {
			return err
		}

		c.logger.Info(fmt.Sprintf("[TrackVaultWithdrawals] %s: hash %s -> transferring", w.ID, status.TxHash))
		return nil
	}

	if status.Status == vaultapi.TransferStatusNew {
		c.logger.Debug(fmt.Sprintf("[TrackVaultWithdrawals] %s: still pending at custody", w.ID))
		return nil
	}

	c.logger.Info("[TrackVaultWithdrawals] unrecognized custody state, leaving untouched", map[string]string{
		"withdrawalId": w.ID,
		"status":       status.Status,
	})
	return nil
}
