package crawler

import (
	"fmt"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/abc-custody/custody-backend/internal/consts"
	"github.com/abc-custody/custody-backend/internal/ethrpc"
	"github.com/abc-custody/custody-backend/internal/model"
)

// SweepConfirmedDeposits moves confirmed, sender-verified deposits into the
// custodial vault. Each deposit gets its own VaultTransfer lineage: a new
// attempt is made only while no sent or confirmed transfer exists for it.
// Native sweeps deduct the custody fee; token sweeps move gross. A failure
// on one deposit never aborts the rest of the batch.
func (c *Crawler) SweepConfirmedDeposits() (CycleResult, error) {
	c.logger.Info("[SweepConfirmedDeposits] Start sweeping confirmed deposits...")

	var result CycleResult

	vaultAddress, err := c.vaultApi.VaultReceiveAddress(c.appConfig.Vault.DefaultVaultID, "ETH")
	if err != nil {
		c.logger.Error("[SweepConfirmedDeposits][VaultReceiveAddress]", map[string]string{
			"error": err.Error(),
		})
		return result, err
	}

	deposits, err := c.store.Deposit.FindSweepEligible(c.db)
	if err != nil {
		c.logger.Error("[SweepConfirmedDeposits][FindSweepEligible]", map[string]string{
			"error": err.Error(),
		})
		return result, err
	}

	c.logger.Info(fmt.Sprintf("[SweepConfirmedDeposits] %d deposits eligible", len(deposits)))

	for _, deposit := range deposits {
		if err := c.sweepOne(&deposit, vaultAddress); err != nil {
			c.logger.Error("[SweepConfirmedDeposits][sweepOne]", map[string]string{
				"depositId": deposit.ID,
				"error":     err.Error(),
			})
			result.fail(deposit.ID, err)
			continue
		}
		result.ok(deposit.ID)
	}

	return result, nil
}

func (c *Crawler) sweepOne(deposit *model.Deposit, vaultAddress string) error {
	// eligibility was read at the start of the batch; recheck right before
	// the attempt so a transfer that went sent in the meantime is not
	// duplicated
	active, err := c.store.VaultTransfer.HasActiveForDeposit(c.db, deposit.ID)
	if err != nil {
		return errors.Wrap(err, "failed to check transfer lineage")
	}
	if active {
		c.logger.Debug("[sweepOne] deposit already has an active transfer, skipping", map[string]string{
			"depositId": deposit.ID,
		})
		return nil
	}

	addr, err := c.store.DepositAddress.GetByID(c.db, deposit.DepositAddressID)
	if err != nil {
		return errors.Wrap(err, "failed to load deposit address")
	}
	if addr.PrivateKey == "" {
		return errors.Errorf("deposit address %s holds no private key", addr.ID)
	}

	feeRate := c.appConfig.Sweep.FeeRate
	native := consts.IsNativeAsset(deposit.Asset)

	transfer := &model.VaultTransfer{
		ID:             model.NewID("vtx"),
		DepositID:      deposit.ID,
		FromAddress:    addr.Address,
		ToVaultAddress: vaultAddress,
		VaultID:        c.appConfig.Vault.DefaultVaultID,
		Asset:          deposit.Asset,
		Network:        deposit.Network,
		Amount:         deposit.Amount,
		Status:         model.VaultTransferStatusPending,
	}
	if native {
		fee := deposit.Amount.Mul(feeRate).Round(6)
		transfer.FeeAmount = &fee
		transfer.FeeRate = &feeRate
	}

	if _, err := c.store.VaultTransfer.Create(c.db, transfer); err != nil {
		return errors.Wrap(err, "failed to create vault transfer")
	}

	if err := c.executeSweep(deposit, addr, transfer, vaultAddress); err != nil {
		if markErr := c.store.VaultTransfer.MarkFailed(c.db, transfer.ID, err.Error()); markErr != nil {
			c.logger.Error("[sweepOne][MarkFailed]", map[string]string{
				"transferId": transfer.ID,
				"error":      markErr.Error(),
			})
		}
		return err
	}

	return nil
}

func (c *Crawler) executeSweep(deposit *model.Deposit, addr *model.DepositAddress, transfer *model.VaultTransfer, vaultAddress string) error {
	gasBalanceWei, err := c.ethRpc.NativeBalance(addr.Address)
	if err != nil {
		return errors.Wrap(err, "failed to fetch gas balance")
	}

	gasBalance := ethrpc.FromBaseUnits(gasBalanceWei, consts.ETH_DECIMALS)
	minGas := c.appConfig.Sweep.MinGasBalance
	if gasBalance.LessThan(minGas) {
		return errors.Errorf("insufficient gas: %s ETH on %s (minimum %s ETH)",
			gasBalance, addr.Address, minGas)
	}

	var signedTx *types.Transaction
	var gasEstimate uint64

	if consts.IsNativeAsset(deposit.Asset) {
		// fee comes out of the swept amount; the remainder moves
		sendAmount := deposit.Amount.Sub(*transfer.FeeAmount)
		sendWei := ethrpc.ToBaseUnits(sendAmount, consts.ETH_DECIMALS)

		gasEstimate, err = c.ethRpc.EstimateNativeTransferGas(addr.Address, vaultAddress, sendWei)
		if err != nil {
			return errors.Wrap(err, "failed to estimate gas")
		}

		signedTx, err = c.ethRpc.SignNativeTransfer(addr.PrivateKey, vaultAddress, sendWei)
		if err != nil {
			return errors.Wrap(err, "failed to sign transfer")
		}
	} else {
		tokenAddress := c.appConfig.Blockchain.TokenAddresses[deposit.Asset]
		if tokenAddress == "" {
			return errors.Errorf("no token contract address configured for %s", deposit.Asset)
		}

		tokenDecimals, err := c.ethRpc.TokenDecimals(tokenAddress)
		if err != nil {
			return errors.Wrap(err, "failed to fetch token decimals")
		}

		amountRaw := ethrpc.ToBaseUnits(deposit.Amount, int32(tokenDecimals))

		gasEstimate, err = c.ethRpc.EstimateTokenTransferGas(addr.Address, vaultAddress, tokenAddress, amountRaw)
		if err != nil {
			return errors.Wrap(err, "failed to estimate gas")
		}

		signedTx, err = c.ethRpc.SignTokenTransfer(addr.PrivateKey, vaultAddress, tokenAddress, amountRaw)
		if err != nil {
			return errors.Wrap(err, "failed to sign transfer")
		}
	}

	txHash, err := c.ethRpc.Broadcast(signedTx)
	if err != nil {
		return errors.Wrap(err, "failed to broadcast transfer")
	}

	if err := c.store.VaultTransfer.MarkSent(c.db, transfer.ID, txHash, gasEstimate, c.now()); err != nil {
		return errors.Wrap(err, "failed to mark transfer sent")
	}

	c.logger.Info(fmt.Sprintf("[SweepConfirmedDeposits] Broadcast %s (%s %s)", txHash, transfer.Amount, transfer.Asset))

	receipt, err := c.ethRpc.AwaitConfirmations(txHash, consts.SWEEP_CONFIRMATIONS)
	if err != nil {
		return errors.Wrap(err, "failed waiting for confirmation")
	}

	// the transfer confirmation and the deposit credit land together; the
	// status guard keeps a concurrent writer from double-advancing
	gasFee := gasFeeFromReceipt(receipt)
	if err := c.doInTx(func(tx *gorm.DB) error {
		if err := c.store.VaultTransfer.MarkConfirmed(tx, transfer.ID, receipt.GasUsed, gasFee.String(), c.now()); err != nil {
			return errors.Wrap(err, "failed to mark transfer confirmed")
		}
		advanced, err := c.store.Deposit.UpdateStatusIf(tx, deposit.ID, model.DepositStatusConfirmed, model.DepositStatusCredited)
		if err != nil {
			return errors.Wrap(err, "failed to credit deposit")
		}
		if !advanced {
			c.logger.Error("[executeSweep] deposit no longer in confirmed status", map[string]string{
				"depositId": deposit.ID,
			})
		}
		return nil
	}); err != nil {
		return err
	}

	c.logger.Info(fmt.Sprintf("[SweepConfirmedDeposits] Confirmed %s, deposit %s credited", txHash, deposit.ID))
	return nil
}

func gasFeeFromReceipt(receipt *types.Receipt) decimal.Decimal {
	if receipt.EffectiveGasPrice == nil {
		return decimal.Zero
	}
	feeWei := decimal.NewFromBigInt(receipt.EffectiveGasPrice, 0).
		Mul(decimal.NewFromInt(int64(receipt.GasUsed)))
	return feeWei.Shift(-consts.ETH_DECIMALS)
}
