package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/synthbt/market"
)

func testCandles() []market.Candle {
	return []market.Candle{
		{Open: 100, High: 105, Low: 99, Close: 102},
		{Open: 102, High: 107, Low: 101, Close: 105},
		{Open: 105, High: 108, Low: 96, Close: 106},
		{Open: 106, High: 110, Low: 105, Close: 108},
		{Open: 108, High: 112, Low: 107, Close: 110},
	}
}

func TestDonchianStreaming(t *testing.T) {
	candles := testCandles()

	t.Run("basic functionality", func(t *testing.T) {
		d := NewDonchian(3)
		assert.Equal(t, "Donchian(3)", d.Name())
		assert.Equal(t, 3, d.Warmup())
		assert.False(t, d.Ready())
		assert.Equal(t, Band{}, d.Band())

		d.Update(candles[0])
		d.Update(candles[1])
		assert.False(t, d.Ready())

		d.Update(candles[2])
		require.True(t, d.Ready())
		assert.Equal(t, Band{Upper: 108, Lower: 96, Ready: true}, d.Band())

		d.Update(candles[3])
		assert.Equal(t, Band{Upper: 110, Lower: 96, Ready: true}, d.Band())
		d.Update(candles[4])
		assert.Equal(t, Band{Upper: 112, Lower: 96, Ready: true}, d.Band())
	})

	t.Run("window slides", func(t *testing.T) {
		d := NewDonchian(2)
		for _, c := range candles {
			d.Update(c)
		}
		assert.Equal(t, Band{Upper: 112, Lower: 105, Ready: true}, d.Band())
	})

	t.Run("reset functionality", func(t *testing.T) {
		d := NewDonchian(2)
		d.Update(candles[0])
		d.Update(candles[1])
		assert.True(t, d.Ready())

		d.Reset()
		assert.False(t, d.Ready())
		assert.Equal(t, Band{}, d.Band())
	})

	t.Run("period floor", func(t *testing.T) {
		d := NewDonchian(0)
		assert.Equal(t, 1, d.Warmup())
		d.Update(candles[4])
		assert.Equal(t, Band{Upper: 112, Lower: 107, Ready: true}, d.Band())
	})
}

func TestPriorBands(t *testing.T) {
	candles := testCandles()
	bands := PriorBands(candles, 2)
	require.Len(t, bands, len(candles))

	assert.False(t, bands[0].Ready)
	assert.False(t, bands[1].Ready)
	for i := 2; i < len(candles); i++ {
		lo, hi, _ := market.Range(candles[i-2 : i])
		assert.Equal(t, Band{Upper: hi, Lower: lo, Ready: true}, bands[i], "index %d", i)
	}

	assert.Empty(t, PriorBands(nil, 3))
}

var _ Indicator = (*Donchian)(nil)
