package strategies

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/synthbt/market"
)

func TestRegistry(t *testing.T) {
	e, err := Get(" Breakout-Retest ")
	require.NoError(t, err)
	assert.Equal(t, "breakout-retest", e.Name())

	_, err = Get("ema-cross")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "breakout-retest")

	assert.Subset(t, Names(), []string{"breakout-retest", "noop"})
}

func TestNoop_Evaluate(t *testing.T) {
	trades, err := Noop{}.Evaluate([]market.Candle{{Open: 1, High: 2, Low: 0.5, Close: 1.5}}, DefaultParams())
	require.NoError(t, err)
	assert.Empty(t, trades)

	_, err = Noop{}.Evaluate(nil, Params{})
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestDefaultParamsValid(t *testing.T) {
	assert.NoError(t, DefaultParams().Validate())
}

func TestSideText(t *testing.T) {
	b, err := Short.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "short", string(b))

	var s Side
	require.NoError(t, s.UnmarshalText([]byte("LONG")))
	assert.Equal(t, Long, s)
	assert.Error(t, s.UnmarshalText([]byte("flat")))
}
