package ethrpc

import (
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"

	"github.com/abc-custody/custody-backend/internal/model"
)

type IEthRPC interface {
	CurrentBlockHeight() (uint64, error)

	// TransfersTo scans at most maxBlocks blocks after sinceBlock (or the
	// most recent maxBlocks when sinceBlock is nil) and returns the inbound
	// native transfers addressed to address, together with the last block
	// examined. A scan error returns before any partial result so callers
	// can safely leave their checkpoint untouched.
	TransfersTo(address string, sinceBlock *uint64, maxBlocks int) ([]model.OnchainTransfer, uint64, error)

	// Receipt returns nil without error while the transaction is unmined.
	Receipt(txHash string) (*types.Receipt, error)

	NativeBalance(address string) (*big.Int, error)
	TokenDecimals(tokenAddress string) (uint8, error)

	EstimateNativeTransferGas(from, to string, amountWei *big.Int) (uint64, error)
	EstimateTokenTransferGas(from, to, tokenAddress string, amountRaw *big.Int) (uint64, error)

	SignNativeTransfer(privateKeyHex, to string, amountWei *big.Int) (*types.Transaction, error)
	SignTokenTransfer(privateKeyHex, to, tokenAddress string, amountRaw *big.Int) (*types.Transaction, error)

	Broadcast(signedTx *types.Transaction) (string, error)

	// AwaitConfirmations blocks until the transaction has n confirmations
	// or the wait deadline passes.
	AwaitConfirmations(txHash string, n int) (*types.Receipt, error)
}
