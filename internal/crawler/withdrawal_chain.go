package crawler

import (
	"fmt"

	"github.com/ethereum/go-ethereum/core/types"

	"github.com/abc-custody/custody-backend/internal/consts"
	"github.com/abc-custody/custody-backend/internal/model"
)

// TrackWithdrawalReceipts drives broadcast withdrawals to their final
// states in two passes. Pass 1: a mined receipt, regardless of its success
// flag, moves transferring -> processing. Pass 2: a successful receipt
// moves processing -> success and stamps the completion time. Asset
// families without a receipt lookup are skipped, not errored.
func (c *Crawler) TrackWithdrawalReceipts() (CycleResult, error) {
	c.logger.Info("[TrackWithdrawalReceipts] Start checking withdrawal receipts...")

	var result CycleResult

	transferring, err := c.store.Withdrawal.FindByStatusWithTxHash(c.db, model.WithdrawalStatusTransferring)
	if err != nil {
		c.logger.Error("[TrackWithdrawalReceipts][FindTransferring]", map[string]string{
			"error": err.Error(),
		})
		return result, err
	}

	for _, w := range transferring {
		receipt, skip, err := c.withdrawalReceipt(&w)
		if err != nil {
			result.fail(w.ID, err)
			continue
		}
		if skip || receipt == nil {
			continue
		}

		w.AppendAudit("chain tracker", "receipt_observed", w.TxHash)
		_, err = c.store.Withdrawal.UpdateStatusIf(c.db, w.ID, model.WithdrawalStatusTransferring, map[string]interface{}{
			"status":      model.WithdrawalStatusProcessing,
			"audit_trail": w.AuditTrail,
		})
		if err != nil {
			result.fail(w.ID, err)
			continue
		}

		c.logger.Info(fmt.Sprintf("[TrackWithdrawalReceipts] %s: transferring -> processing", w.ID))
		result.ok(w.ID)
	}

	processing, err := c.store.Withdrawal.FindByStatusWithTxHash(c.db, model.WithdrawalStatusProcessing)
	if err != nil {
		c.logger.Error("[TrackWithdrawalReceipts][FindProcessing]", map[string]string{
			"error": err.Error(),
		})
		return result, err
	}

	for _, w := range processing {
		receipt, skip, err := c.withdrawalReceipt(&w)
		if err != nil {
			result.fail(w.ID, err)
			continue
		}
		if skip || receipt == nil || receipt.Status != types.ReceiptStatusSuccessful {
			continue
		}

		w.AppendAudit("chain tracker", "receipt_successful", w.TxHash)
		_, err = c.store.Withdrawal.UpdateStatusIf(c.db, w.ID, model.WithdrawalStatusProcessing, map[string]interface{}{
			"status":       model.WithdrawalStatusSuccess,
			"completed_at": c.now(),
			"audit_trail":  w.AuditTrail,
		})
		if err != nil {
			result.fail(w.ID, err)
			continue
		}

		c.logger.Info(fmt.Sprintf("[TrackWithdrawalReceipts] %s: processing -> success", w.ID))
		result.ok(w.ID)
	}

	return result, nil
}

// withdrawalReceipt fetches the chain receipt for the withdrawal's asset
// family. skip is true for families with no implemented lookup.
func (c *Crawler) withdrawalReceipt(w *model.Withdrawal) (*types.Receipt, bool, error) {
	if !consts.IsEvmAsset(w.Currency) {
		// BTC and SOL lookups are not wired up yet
		c.logger.Info("[TrackWithdrawalReceipts] unsupported asset family, skipping", map[string]string{
			"withdrawalId": w.ID,
			"currency":     w.Currency,
		})
		return nil, true, nil
	}

	receipt, err := c.ethRpc.Receipt(w.TxHash)
	if err != nil {
		c.logger.Error("[TrackWithdrawalReceipts][Receipt]", map[string]string{
			"withdrawalId": w.ID,
			"txHash":       w.TxHash,
			"error":        err.Error(),
		})
		return nil, false, err
	}
	return receipt, false, nil
}
