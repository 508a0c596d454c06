package crawler

import (
	"fmt"
	"time"

	"github.com/abc-custody/custody-backend/internal/model"
)

// TrackDepositConfirmations recomputes the confirmation count of every
// deposit still in the confirmation pipeline and advances its state
// machine. Rows are written only when the status or the count actually
// changed. Counts derive from the current head; a reorg-shrunk count never
// demotes a status.
func (c *Crawler) TrackDepositConfirmations() (CycleResult, error) {
	c.logger.Info("[TrackDepositConfirmations] Start tracking confirmations...")

	var result CycleResult

	height, err := c.ethRpc.CurrentBlockHeight()
	if err != nil {
		c.logger.Error("[TrackDepositConfirmations][CurrentBlockHeight]", map[string]string{
			"error": err.Error(),
		})
		return result, err
	}

	deposits, err := c.store.Deposit.FindConfirming(c.db)
	if err != nil {
		c.logger.Error("[TrackDepositConfirmations][FindConfirming]", map[string]string{
			"error": err.Error(),
		})
		return result, err
	}

	for _, deposit := range deposits {
		confirmations := int64(0)
		if height > deposit.BlockHeight {
			confirmations = int64(height - deposit.BlockHeight)
		}

		newStatus := deposit.NextStatus(confirmations)
		if newStatus == deposit.Status && confirmations == deposit.CurrentConfirmations {
			continue
		}

		var confirmedAt *time.Time
		if newStatus == model.DepositStatusConfirmed && deposit.ConfirmedAt == nil {
			now := c.now()
			confirmedAt = &now
		}

		if err := c.store.Deposit.UpdateConfirmations(c.db, deposit.ID, confirmations, newStatus, confirmedAt); err != nil {
			c.logger.Error("[TrackDepositConfirmations][UpdateConfirmations]", map[string]string{
				"depositId": deposit.ID,
				"error":     err.Error(),
			})
			result.fail(deposit.ID, err)
			continue
		}

		c.logger.Info(fmt.Sprintf("[TrackDepositConfirmations] %s: %d confirmations (%s)",
			deposit.TxHash, confirmations, newStatus))
		result.ok(deposit.ID)
	}

	return result, nil
}
