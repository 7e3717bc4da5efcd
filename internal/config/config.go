// Package config provides the explicit configuration object passed into the
// reconciliation engine and its collaborators.
//
// Configuration is resolved in order:
//  1. Built-in defaults
//  2. YAML file (config.yaml), when present
//  3. Environment variables (highest precedence)
//
// A .env file next to the binary is honoured via godotenv.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// SLAWindow is the expected settlement latency for one payment method:
// settlements normally land between MinDays and MaxDays after the
// transaction, and anything strictly later than ThresholdDays is anomalous.
type SLAWindow struct {
	MinDays       int `yaml:"min_days"`
	MaxDays       int `yaml:"max_days"`
	ThresholdDays int `yaml:"threshold_days"`
}

// FeesConfig holds the per-method fee schedule parameters. Percent values are
// expressed as percentages (2.9 means 2.9%).
type FeesConfig struct {
	CardPercent    float64 `yaml:"card_percent"`
	CardFixed      float64 `yaml:"card_fixed"`
	BankPercent    float64 `yaml:"bank_percent"`
	VoucherPercent float64 `yaml:"voucher_percent"`
}

// CurrencyConfig maps ISO currency codes to their USD conversion rate
// (USD per one unit of local currency).
type CurrencyConfig struct {
	RatesToUSD map[string]float64 `yaml:"rates_to_usd"`
}

// SettlementConfig holds the SLA windows keyed by payment method, plus the
// window applied to unrecognized methods.
type SettlementConfig struct {
	Windows map[string]SLAWindow `yaml:"windows"`
	Default SLAWindow            `yaml:"default"`
}

// DataConfig holds input file locations.
type DataConfig struct {
	TransactionsPath string `yaml:"transactions_path"`
	SettlementsPath  string `yaml:"settlements_path"`
}

// ServerConfig holds the HTTP and storage settings.
type ServerConfig struct {
	Port   string `yaml:"port"`
	DBPath string `yaml:"db_path"`
}

// Config is the full configuration surface. It is passed explicitly into the
// engine entry points so parallel runs with different parameters stay isolated.
type Config struct {
	Data       DataConfig       `yaml:"data"`
	Server     ServerConfig     `yaml:"server"`
	Fees       FeesConfig       `yaml:"fees"`
	Currency   CurrencyConfig   `yaml:"currency"`
	Settlement SettlementConfig `yaml:"settlement"`
}

// Default returns the documented default configuration.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			TransactionsPath: "testdata/transactions.csv",
			SettlementsPath:  "testdata/settlements.csv",
		},
		Server: ServerConfig{
			Port:   "8080",
			DBPath: "horizon.db",
		},
		Fees: FeesConfig{
			CardPercent:    2.9,
			CardFixed:      0.30,
			BankPercent:    1.5,
			VoucherPercent: 3.5,
		},
		Currency: CurrencyConfig{
			RatesToUSD: map[string]float64{
				"USD": 1.0,
				"BRL": 0.20,    // Brazilian Real
				"MXN": 0.055,   // Mexican Peso
				"COP": 0.00025, // Colombian Peso
				"CLP": 0.0011,  // Chilean Peso
			},
		},
		Settlement: SettlementConfig{
			Windows: map[string]SLAWindow{
				"credit_card":   {MinDays: 2, MaxDays: 3, ThresholdDays: 5},
				"debit_card":    {MinDays: 2, MaxDays: 3, ThresholdDays: 5},
				"bank_transfer": {MinDays: 5, MaxDays: 7, ThresholdDays: 10},
				"cash_voucher":  {MinDays: 3, MaxDays: 5, ThresholdDays: 8},
			},
			Default: SLAWindow{MinDays: 2, MaxDays: 5, ThresholdDays: 7},
		},
	}
}

// WindowFor returns the SLA window for a payment method, falling back to the
// default window for unrecognized methods.
func (c *SettlementConfig) WindowFor(method string) SLAWindow {
	if w, ok := c.Windows[method]; ok {
		return w
	}
	return c.Default
}

// Rate returns the USD conversion rate for a currency. Unknown currencies
// degrade to 1.0 so the pipeline always completes.
func (c *CurrencyConfig) Rate(currency string) float64 {
	if r, ok := c.RatesToUSD[currency]; ok {
		return r
	}
	return 1.0
}

// Load reads a YAML config file and applies environment overrides on top.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// LoadOrEnv tries config.yaml first and falls back to defaults plus
// environment variables. A .env file is loaded first when present.
func LoadOrEnv() *Config {
	_ = godotenv.Load()

	if cfg, err := Load("config.yaml"); err == nil {
		return cfg
	}

	cfg := Default()
	cfg.applyEnv()
	return cfg
}

func (c *Config) applyEnv() {
	c.Data.TransactionsPath = getEnv("TRANSACTIONS_DATA_PATH", c.Data.TransactionsPath)
	c.Data.SettlementsPath = getEnv("SETTLEMENTS_DATA_PATH", c.Data.SettlementsPath)
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.DBPath = getEnv("DB_PATH", c.Server.DBPath)

	c.Fees.CardPercent = getEnvFloat("CARD_FEE_PERCENT", c.Fees.CardPercent)
	c.Fees.CardFixed = getEnvFloat("CARD_FEE_FIXED", c.Fees.CardFixed)
	c.Fees.BankPercent = getEnvFloat("BANK_FEE_PERCENT", c.Fees.BankPercent)
	c.Fees.VoucherPercent = getEnvFloat("VOUCHER_FEE_PERCENT", c.Fees.VoucherPercent)

	if c.Currency.RatesToUSD == nil {
		c.Currency.RatesToUSD = map[string]float64{"USD": 1.0}
	}
	c.Currency.RatesToUSD["BRL"] = getEnvFloat("BRL_TO_USD", c.Currency.RatesToUSD["BRL"])
	c.Currency.RatesToUSD["MXN"] = getEnvFloat("MXN_TO_USD", c.Currency.RatesToUSD["MXN"])
	c.Currency.RatesToUSD["COP"] = getEnvFloat("COP_TO_USD", c.Currency.RatesToUSD["COP"])
	c.Currency.RatesToUSD["CLP"] = getEnvFloat("CLP_TO_USD", c.Currency.RatesToUSD["CLP"])
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
