package ethrpc

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// ToBaseUnits converts a human-readable asset amount to the chain's integer
// representation, e.g. ETH -> wei with decimals=18.
func ToBaseUnits(amount decimal.Decimal, decimals int32) *big.Int {
	return amount.Shift(decimals).Truncate(0).BigInt()
}

// FromBaseUnits converts a chain integer amount back to a human-readable
// decimal, e.g. wei -> ETH with decimals=18.
func FromBaseUnits(raw *big.Int, decimals int32) decimal.Decimal {
	return decimal.NewFromBigInt(raw, 0).Shift(-decimals)
}

// scanWindow computes the inclusive block range a scan should examine.
// maxBlocks below 1 is treated as 1 so a misconfigured window still scans
// something instead of misbehaving. start > end means the checkpoint is
// already at or past the head.
func scanWindow(height uint64, sinceBlock *uint64, maxBlocks int) (start, end uint64) {
	if maxBlocks < 1 {
		maxBlocks = 1
	}

	if sinceBlock != nil {
		start = *sinceBlock + 1
	} else if height > uint64(maxBlocks) {
		start = height - uint64(maxBlocks)
	}

	end = start + uint64(maxBlocks) - 1
	if end > height {
		end = height
	}
	return start, end
}
