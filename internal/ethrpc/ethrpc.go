package ethrpc

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"

	"github.com/abc-custody/custody-backend/internal/model"
	"github.com/abc-custody/custody-backend/internal/utils/config"
	"github.com/abc-custody/custody-backend/internal/utils/logger"
)

const (
	callTimeout = 30 * time.Second

	confirmationPollInterval = 5 * time.Second
	confirmationWaitDeadline = 10 * time.Minute
)

const erc20ABIJSON = `[
	{"name":"transfer","type":"function","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"name":"balanceOf","type":"function","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"name":"decimals","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]}
]`

type EthRPC struct {
	client    *ethclient.Client
	chainID   *big.Int
	erc20ABI  abi.ABI
	appConfig *config.AppConfig
	logger    *logger.Logger
}

func New(appConfig *config.AppConfig, logger *logger.Logger) (IEthRPC, error) {
	client, err := ethclient.Dial(appConfig.Blockchain.RPCEndpoint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to dial rpc endpoint")
	}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch chain id")
	}

	parsedABI, err := abi.JSON(strings.NewReader(erc20ABIJSON))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse erc20 abi")
	}

	return &EthRPC{
		client:    client,
		chainID:   chainID,
		erc20ABI:  parsedABI,
		appConfig: appConfig,
		logger:    logger,
	}, nil
}

func (e *EthRPC) CurrentBlockHeight() (uint64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	return e.client.BlockNumber(ctx)
}

func (e *EthRPC) TransfersTo(address string, sinceBlock *uint64, maxBlocks int) ([]model.OnchainTransfer, uint64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	height, err := e.client.BlockNumber(ctx)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to fetch block height")
	}

	start, end := scanWindow(height, sinceBlock, maxBlocks)
	if start > end {
		// checkpoint already at or past the head, nothing new to scan
		return nil, *sinceBlock, nil
	}

	target := strings.ToLower(address)
	signer := types.LatestSignerForChainID(e.chainID)

	var transfers []model.OnchainTransfer
	for blockNum := start; blockNum <= end; blockNum++ {
		blockCtx, blockCancel := context.WithTimeout(context.Background(), callTimeout)
		block, err := e.client.BlockByNumber(blockCtx, new(big.Int).SetUint64(blockNum))
		blockCancel()
		if err != nil {
			e.logger.Error("[TransfersTo][BlockByNumber]", map[string]string{
				"block": new(big.Int).SetUint64(blockNum).String(),
				"error": err.Error(),
			})
			return nil, 0, errors.Wrapf(err, "failed to fetch block %d", blockNum)
		}

		for _, tx := range block.Transactions() {
			to := tx.To()
			if to == nil || strings.ToLower(to.Hex()) != target {
				continue
			}

			from, err := types.Sender(signer, tx)
			if err != nil {
				e.logger.Error("[TransfersTo][Sender]", map[string]string{
					"txHash": tx.Hash().Hex(),
					"error":  err.Error(),
				})
				continue
			}

			transfers = append(transfers, model.OnchainTransfer{
				TxHash:      tx.Hash().Hex(),
				BlockNumber: blockNum,
				From:        from.Hex(),
				To:          to.Hex(),
				ValueWei:    tx.Value(),
			})
		}
	}

	return transfers, end, nil
}

func (e *EthRPC) Receipt(txHash string) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	receipt, err := e.client.TransactionReceipt(ctx, common.HexToHash(txHash))
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to fetch receipt")
	}
	return receipt, nil
}

func (e *EthRPC) NativeBalance(address string) (*big.Int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	return e.client.BalanceAt(ctx, common.HexToAddress(address), nil)
}

func (e *EthRPC) TokenDecimals(tokenAddress string) (uint8, error) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	data, err := e.erc20ABI.Pack("decimals")
	if err != nil {
		return 0, errors.Wrap(err, "failed to pack decimals call")
	}

	token := common.HexToAddress(tokenAddress)
	out, err := e.client.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return 0, errors.Wrap(err, "decimals call failed")
	}

	results, err := e.erc20ABI.Unpack("decimals", out)
	if err != nil {
		return 0, errors.Wrap(err, "failed to unpack decimals result")
	}

	return results[0].(uint8), nil
}

func (e *EthRPC) EstimateNativeTransferGas(from, to string, amountWei *big.Int) (uint64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	toAddr := common.HexToAddress(to)
	return e.client.EstimateGas(ctx, ethereum.CallMsg{
		From:  common.HexToAddress(from),
		To:    &toAddr,
		Value: amountWei,
	})
}

func (e *EthRPC) EstimateTokenTransferGas(from, to, tokenAddress string, amountRaw *big.Int) (uint64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	data, err := e.erc20ABI.Pack("transfer", common.HexToAddress(to), amountRaw)
	if err != nil {
		return 0, errors.Wrap(err, "failed to pack transfer call")
	}

	token := common.HexToAddress(tokenAddress)
	return e.client.EstimateGas(ctx, ethereum.CallMsg{
		From: common.HexToAddress(from),
		To:   &token,
		Data: data,
	})
}

func (e *EthRPC) SignNativeTransfer(privateKeyHex, to string, amountWei *big.Int) (*types.Transaction, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid private key")
	}

	from := crypto.PubkeyToAddress(key.PublicKey)
	nonce, tip, maxFee, err := e.txParams(from)
	if err != nil {
		return nil, err
	}

	toAddr := common.HexToAddress(to)
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   e.chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: maxFee,
		Gas:       21000,
		To:        &toAddr,
		Value:     amountWei,
	})

	return types.SignTx(tx, types.LatestSignerForChainID(e.chainID), key)
}

func (e *EthRPC) SignTokenTransfer(privateKeyHex, to, tokenAddress string, amountRaw *big.Int) (*types.Transaction, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid private key")
	}

	data, err := e.erc20ABI.Pack("transfer", common.HexToAddress(to), amountRaw)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack transfer call")
	}

	from := crypto.PubkeyToAddress(key.PublicKey)
	nonce, tip, maxFee, err := e.txParams(from)
	if err != nil {
		return nil, err
	}

	gasLimit, err := e.EstimateTokenTransferGas(from.Hex(), to, tokenAddress, amountRaw)
	if err != nil {
		return nil, err
	}

	token := common.HexToAddress(tokenAddress)
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   e.chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: maxFee,
		Gas:       gasLimit,
		To:        &token,
		Data:      data,
	})

	return types.SignTx(tx, types.LatestSignerForChainID(e.chainID), key)
}

func (e *EthRPC) Broadcast(signedTx *types.Transaction) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	if err := e.client.SendTransaction(ctx, signedTx); err != nil {
		return "", errors.Wrap(err, "failed to broadcast transaction")
	}
	return signedTx.Hash().Hex(), nil
}

func (e *EthRPC) AwaitConfirmations(txHash string, n int) (*types.Receipt, error) {
	deadline := time.Now().Add(confirmationWaitDeadline)

	for {
		receipt, err := e.Receipt(txHash)
		if err != nil {
			return nil, err
		}

		if receipt != nil {
			height, err := e.CurrentBlockHeight()
			if err != nil {
				return nil, err
			}
			if height >= receipt.BlockNumber.Uint64()+uint64(n)-1 {
				return receipt, nil
			}
		}

		if time.Now().After(deadline) {
			return nil, errors.Errorf("transaction %s not confirmed within %s", txHash, confirmationWaitDeadline)
		}
		time.Sleep(confirmationPollInterval)
	}
}

// txParams fetches the pending nonce and EIP-1559 fee caps for from.
func (e *EthRPC) txParams(from common.Address) (uint64, *big.Int, *big.Int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	nonce, err := e.client.PendingNonceAt(ctx, from)
	if err != nil {
		return 0, nil, nil, errors.Wrap(err, "failed to fetch pending nonce")
	}

	tip, err := e.client.SuggestGasTipCap(ctx)
	if err != nil {
		return 0, nil, nil, errors.Wrap(err, "failed to fetch gas tip cap")
	}

	head, err := e.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, nil, nil, errors.Wrap(err, "failed to fetch chain head")
	}

	maxFee := new(big.Int).Add(tip, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
	return nonce, tip, maxFee, nil
}
