package consts

const (
	ETH_DECIMALS = 18

	// Confirmations a deposit needs before it may be swept.
	REQUIRED_CONFIRMATIONS = 12

	// Confirmations a sweep broadcast waits for before the deposit is
	// credited.
	SWEEP_CONFIRMATIONS = 1
)

// EvmAssets are the asset symbols the EVM pipeline handles. ETH moves
// natively; the rest are ERC-20 tokens.
var EvmAssets = []string{"ETH", "USDT", "USDC"}

func IsEvmAsset(asset string) bool {
	for _, a := range EvmAssets {
		if a == asset {
			return true
		}
	}
	return false
}

func IsNativeAsset(asset string) bool {
	return asset == "ETH"
}
