package crawler

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/abc-custody/custody-backend/internal/consts"
	"github.com/abc-custody/custody-backend/internal/ethrpc"
	"github.com/abc-custody/custody-backend/internal/model"
)

// ScanDeposits walks every active, chain-observable deposit address, fetches
// inbound transfers since its checkpoint and inserts new Deposit rows in
// detected state. The per-address checkpoint advances only when the whole
// scan for that address completed cleanly, so a mid-scan failure re-examines
// the same range next cycle; the unique tx hash index keeps that idempotent.
func (c *Crawler) ScanDeposits() (CycleResult, error) {
	c.logger.Info("[ScanDeposits] Start scanning deposit addresses...")

	var result CycleResult

	height, err := c.ethRpc.CurrentBlockHeight()
	if err != nil {
		c.logger.Error("[ScanDeposits][CurrentBlockHeight]", map[string]string{
			"error": err.Error(),
		})
		return result, err
	}

	addrs, err := c.store.DepositAddress.FindScannable(c.db, consts.EvmAssets)
	if err != nil {
		c.logger.Error("[ScanDeposits][FindScannable]", map[string]string{
			"error": err.Error(),
		})
		return result, err
	}

	for _, addr := range addrs {
		if err := c.scanAddress(&addr, height); err != nil {
			c.logger.Error("[ScanDeposits][scanAddress]", map[string]string{
				"address": addr.Address,
				"error":   err.Error(),
			})
			result.fail(addr.ID, err)
			continue
		}
		result.ok(addr.ID)
	}

	c.logger.Info(fmt.Sprintf("[ScanDeposits] Done: %d addresses scanned, %d failed", len(result.Succeeded), len(result.Failed)))
	return result, nil
}

func (c *Crawler) scanAddress(addr *model.DepositAddress, height uint64) error {
	transfers, lastChecked, err := c.ethRpc.TransfersTo(addr.Address, addr.LastCheckedBlock, c.appConfig.Blockchain.MaxScanBlocks)
	if err != nil {
		return err
	}

	for _, transfer := range transfers {
		if !strings.EqualFold(transfer.To, addr.Address) {
			continue
		}
		if transfer.ValueWei == nil || transfer.ValueWei.Sign() == 0 {
			continue
		}

		if err := c.recordDeposit(addr, transfer, height); err != nil {
			return err
		}
	}

	// checkpoint moves only after a clean pass over the whole range
	return c.store.DepositAddress.UpdateLastCheckedBlock(c.db, addr.ID, lastChecked)
}

func (c *Crawler) recordDeposit(addr *model.DepositAddress, transfer model.OnchainTransfer, height uint64) error {
	if existing, err := c.store.Deposit.GetByTxHash(c.db, transfer.TxHash); err == nil && existing != nil {
		return nil
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	verified, err := c.isAllowedSender(addr.UserID, transfer.From)
	if err != nil {
		return err
	}

	confirmations := int64(0)
	if height > transfer.BlockNumber {
		confirmations = int64(height - transfer.BlockNumber)
	}

	deposit := &model.Deposit{
		ID:                    model.NewID("dep"),
		UserID:                addr.UserID,
		DepositAddressID:      addr.ID,
		TxHash:                transfer.TxHash,
		Asset:                 addr.Coin,
		Network:               c.appConfig.Blockchain.Network,
		Amount:                ethrpc.FromBaseUnits(transfer.ValueWei, consts.ETH_DECIMALS).Round(6),
		FromAddress:           transfer.From,
		ToAddress:             transfer.To,
		Status:                model.DepositStatusDetected,
		SenderVerified:        verified,
		CurrentConfirmations:  confirmations,
		RequiredConfirmations: consts.REQUIRED_CONFIRMATIONS,
		BlockHeight:           transfer.BlockNumber,
		DetectedAt:            c.now(),
	}

	if _, err := c.store.Deposit.Create(c.db, deposit); err != nil {
		// a scanner on an overlapping range got there first
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.logger.Debug("[recordDeposit] duplicate tx hash, skipping", map[string]string{
				"txHash": transfer.TxHash,
			})
			return nil
		}
		return err
	}

	c.logger.Info(fmt.Sprintf("[ScanDeposits] New deposit detected: %s (%s %s) senderVerified=%t",
		transfer.TxHash, deposit.Amount, deposit.Asset, verified))
	return nil
}

// isAllowedSender matches the sender against the user's registered
// counterparty addresses, case-insensitively, requiring the canDeposit
// permission.
func (c *Crawler) isAllowedSender(userID, sender string) (bool, error) {
	whitelist, err := c.store.WithdrawalAddress.FindByUser(c.db, userID)
	if err != nil {
		return false, err
	}

	for _, entry := range whitelist {
		if strings.EqualFold(entry.Address, sender) && entry.Permissions.CanDeposit {
			return true, nil
		}
	}
	return false, nil
}
