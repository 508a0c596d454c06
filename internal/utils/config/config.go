package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/abc-custody/custody-backend/internal/types/environments"
)

type AppConfig struct {
	Environment environments.Environment
	ApiServer   ApiServerConfig
	Postgres    DBConnection
	Blockchain  BlockchainConfig
	Vault       VaultConfig
	Sweep       SweepConfig
}

type ApiServerConfig struct {
	Port           string
	AllowedOrigins string
}

type DBConnection struct {
	Host string
	Port string
	User string
	Name string
	Pass string

	SSLMode string
}

type BlockchainConfig struct {
	RPCEndpoint string
	Network     string

	// Deposit scans never examine more than this many blocks per address
	// per cycle.
	MaxScanBlocks int

	// ERC-20 contract addresses by asset symbol, e.g. USDT, USDC.
	TokenAddresses map[string]string
}

type VaultConfig struct {
	APIURL string
	APIKey string

	DefaultVaultID int
	HotVaultID     int
	ColdVaultID    int
}

type SweepConfig struct {
	// Fee rate deducted from native-asset sweeps, e.g. 0.05 for 5%.
	FeeRate decimal.Decimal

	// Minimum native balance a deposit address must hold to pay for gas.
	MinGasBalance decimal.Decimal
}

func New() *AppConfig {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// will not override env variables that already exist
	godotenv.Load(".env." + env)

	return &AppConfig{
		Environment: environments.Environment(env),
		ApiServer: ApiServerConfig{
			Port:           envVarOrDefault("API_PORT", "3000"),
			AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
		},
		Postgres: DBConnection{
			Host:    os.Getenv("DB_HOST"),
			Port:    os.Getenv("DB_PORT"),
			User:    os.Getenv("DB_USER"),
			Name:    os.Getenv("DB_NAME"),
			Pass:    os.Getenv("DB_PASS"),
			SSLMode: os.Getenv("DB_SSL_MODE"),
		},
		Blockchain: BlockchainConfig{
			RPCEndpoint:   os.Getenv("BLOCKCHAIN_RPC_ENDPOINT"),
			Network:       envVarOrDefault("BLOCKCHAIN_NETWORK", "Holesky"),
			MaxScanBlocks: envVarAtoiOrDefault("BLOCKCHAIN_MAX_SCAN_BLOCKS", 10),
			TokenAddresses: map[string]string{
				"USDT": os.Getenv("TOKEN_ADDR_USDT"),
				"USDC": os.Getenv("TOKEN_ADDR_USDC"),
			},
		},
		Vault: VaultConfig{
			APIURL:         os.Getenv("VAULT_API_URL"),
			APIKey:         os.Getenv("VAULT_API_KEY"),
			DefaultVaultID: envVarAtoiOrDefault("VAULT_DEFAULT_ID", 7),
			HotVaultID:     envVarAtoiOrDefault("VAULT_HOT_ID", 7),
			ColdVaultID:    envVarAtoiOrDefault("VAULT_COLD_ID", 8),
		},
		Sweep: SweepConfig{
			FeeRate:       envVarDecimalOrDefault("SWEEP_FEE_RATE", "0.05"),
			MinGasBalance: envVarDecimalOrDefault("SWEEP_MIN_GAS_BALANCE", "0.001"),
		},
	}
}

func envVarOrDefault(envName, fallback string) string {
	value := os.Getenv(envName)
	if value == "" {
		return fallback
	}
	return value
}

func envVarAtoiOrDefault(envName string, fallback int) int {
	valueStr := os.Getenv(envName)
	if valueStr == "" {
		return fallback
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		panic(err)
	}

	return value
}

func envVarDecimalOrDefault(envName, fallback string) decimal.Decimal {
	valueStr := os.Getenv(envName)
	if valueStr == "" {
		valueStr = fallback
	}

	value, err := decimal.NewFromString(valueStr)
	if err != nil {
		panic(err)
	}

	return value
}
