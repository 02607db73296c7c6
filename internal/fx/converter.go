// Package fx converts amounts between currencies using a directed
// exchange-rate table. Only direct lookups are performed; there is no
// path-finding across intermediate currencies.
package fx

import (
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RateSource looks up a directed rate. The boolean reports whether the
// rate exists.
type RateSource interface {
	Rate(from, to string) (float64, bool, error)
}

// Converter applies multiplicative currency conversion.
type Converter struct {
	rates  RateSource
	logger *zap.Logger
}

// NewConverter creates a Converter over a rate table.
func NewConverter(rates RateSource, logger *zap.Logger) *Converter {
	return &Converter{rates: rates, logger: logger}
}

// Convert returns amount expressed in the target currency. The returned
// boolean reports whether a rate was actually found: a missing rate
// applies multiplier 1 rather than failing, and callers that care about
// mis-valuation must check the flag instead of comparing the amounts.
func (c *Converter) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, bool, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))

	if from == to || from == "" || to == "" {
		return amount, true, nil
	}

	rate, found, err := c.rates.Rate(from, to)
	if err != nil {
		return amount, false, err
	}
	if !found {
		c.logger.Warn("no exchange rate, valuing at 1:1",
			zap.String("from", from), zap.String("to", to))
		return amount, false, nil
	}
	return amount.Mul(decimal.NewFromFloat(rate)), true, nil
}
