package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	MigrationsDir string

	// Ledger policy
	BaseCurrency       string
	ApprovalThreshold  decimal.Decimal
	TransferFeePercent decimal.Decimal

	// Rate limiting, e.g. "100-M" for 100 requests per minute per IP.
	RateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("MIGRATIONS_DIR", "migrations")
	viper.SetDefault("BASE_CURRENCY", "USD")
	viper.SetDefault("APPROVAL_THRESHOLD", "10000")
	viper.SetDefault("TRANSFER_FEE_PERCENT", "0.01")
	viper.SetDefault("RATE_LIMIT", "100-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.MigrationsDir = viper.GetString("MIGRATIONS_DIR")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	cfg.BaseCurrency = viper.GetString("BASE_CURRENCY")

	threshold, err := decimal.NewFromString(viper.GetString("APPROVAL_THRESHOLD"))
	if err != nil {
		log.Printf("Warning: Invalid value for APPROVAL_THRESHOLD ('%s'). Defaulting to 10000.\n", viper.GetString("APPROVAL_THRESHOLD"))
		threshold = decimal.NewFromInt(10000)
	}
	cfg.ApprovalThreshold = threshold

	feePercent, err := decimal.NewFromString(viper.GetString("TRANSFER_FEE_PERCENT"))
	if err != nil || feePercent.IsNegative() {
		log.Printf("Warning: Invalid value for TRANSFER_FEE_PERCENT ('%s'). Defaulting to 0.01.\n", viper.GetString("TRANSFER_FEE_PERCENT"))
		feePercent = decimal.NewFromFloat(0.01)
	}
	cfg.TransferFeePercent = feePercent

	return cfg, nil
}
