package fx

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRates map[string]float64

func (f fakeRates) Rate(from, to string) (float64, bool, error) {
	r, ok := f[from+"->"+to]
	return r, ok, nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestConvert_Identity(t *testing.T) {
	c := NewConverter(fakeRates{}, zap.NewNop())

	for _, ccy := range []string{"USD", "EUR", "JPY"} {
		out, found, err := c.Convert(dec("123.45"), ccy, ccy)
		require.NoError(t, err)
		assert.True(t, found)
		assert.True(t, out.Equal(dec("123.45")))
	}
}

func TestConvert_DirectedRate(t *testing.T) {
	c := NewConverter(fakeRates{"USD->EUR": 0.92}, zap.NewNop())

	out, found, err := c.Convert(dec("2000"), "USD", "EUR")
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, out.Equal(dec("1840")), "got %s", out)
}

func TestConvert_NoInverseDerived(t *testing.T) {
	c := NewConverter(fakeRates{"USD->EUR": 0.92}, zap.NewNop())

	// EUR->USD is absent; the amount passes through at 1:1 and the
	// flag distinguishes that from a genuine rate of 1.
	out, found, err := c.Convert(dec("100"), "EUR", "USD")
	require.NoError(t, err)
	assert.False(t, found)
	assert.True(t, out.Equal(dec("100")))
}

func TestConvert_MissingRateFlagged(t *testing.T) {
	c := NewConverter(fakeRates{}, zap.NewNop())

	out, found, err := c.Convert(dec("50"), "GBP", "CHF")
	require.NoError(t, err)
	assert.False(t, found)
	assert.True(t, out.Equal(dec("50")))
}

func TestConvert_NormalizesCase(t *testing.T) {
	c := NewConverter(fakeRates{"USD->EUR": 0.92}, zap.NewNop())

	out, found, err := c.Convert(dec("100"), " usd ", "eur")
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, out.Equal(dec("92")))
}
