package crawler

import (
	"fmt"

	"github.com/abc-custody/custody-backend/internal/model"
)

// PromoteExpiredWaits moves individual-member withdrawals whose holding
// period has elapsed from withdrawal_wait into aml_review. Pure timer-driven
// promotion, no external calls.
func (c *Crawler) PromoteExpiredWaits() (CycleResult, error) {
	var result CycleResult

	expired, err := c.store.Withdrawal.FindExpiredWaiting(c.db, c.now())
	if err != nil {
		c.logger.Error("[PromoteExpiredWaits][FindExpiredWaiting]", map[string]string{
			"error": err.Error(),
		})
		return result, err
	}

	if len(expired) == 0 {
		return result, nil
	}

	c.logger.Info(fmt.Sprintf("[PromoteExpiredWaits] %d withdrawals past their holding period", len(expired)))

	for _, w := range expired {
		w.AppendAudit("scheduler", "wait_period_expired", "transitioned to AML review")

		promoted, err := c.store.Withdrawal.UpdateStatusIf(c.db, w.ID, model.WithdrawalStatusWait, map[string]interface{}{
			"status":      model.WithdrawalStatusAMLReview,
			"audit_trail": w.AuditTrail,
		})
		if err != nil {
			c.logger.Error("[PromoteExpiredWaits][UpdateStatusIf]", map[string]string{
				"withdrawalId": w.ID,
				"error":        err.Error(),
			})
			result.fail(w.ID, err)
			continue
		}
		if !promoted {
			// cancelled or promoted elsewhere between select and update
			continue
		}

		c.logger.Info(fmt.Sprintf("[PromoteExpiredWaits] Withdrawal %s -> aml_review", w.ID))
		result.ok(w.ID)
	}

	return result, nil
}
