package model

import "math/big"

// OnchainTransfer is a raw inbound transfer observed on the chain, before
// any custody bookkeeping is attached to it.
type OnchainTransfer struct {
	TxHash      string
	BlockNumber uint64
	From        string
	To          string
	ValueWei    *big.Int
}
