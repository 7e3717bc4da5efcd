package currency

import (
	"log"

	"github.com/horizongaming/reconciler/internal/config"
)

// Converter translates local currency amounts into USD using the configured
// rate table. Rates are USD per one unit of local currency.
type Converter struct {
	rates map[string]float64
}

// NewConverter builds a converter from configuration.
func NewConverter(cfg config.CurrencyConfig) *Converter {
	rates := make(map[string]float64, len(cfg.RatesToUSD))
	for code, r := range cfg.RatesToUSD {
		rates[code] = r
	}
	return &Converter{rates: rates}
}

// Rate returns the USD conversion rate for a currency. Unknown currencies
// degrade to 1.0 so downstream aggregation always completes; the substitution
// is logged as a data-quality signal.
func (c *Converter) Rate(currency string) float64 {
	if rate, ok := c.rates[currency]; ok {
		return rate
	}
	log.Printf("[currency] WARNING: unknown currency %q, using 1.0 rate", currency)
	return 1.0
}

// ToUSD converts a local currency amount to USD.
func (c *Converter) ToUSD(amount float64, currency string) float64 {
	return amount * c.Rate(currency)
}

// FromUSD converts a USD amount to local currency.
func (c *Converter) FromUSD(usdAmount float64, currency string) float64 {
	rate := c.Rate(currency)
	if rate == 0 {
		return 0
	}
	return usdAmount / rate
}
