package indicators

import (
	"fmt"

	"github.com/rustyeddy/synthbt/market"
)

// Donchian tracks the highest high and lowest low of the last period
// candles.
type Donchian struct {
	period  int
	candles []market.Candle
}

// NewDonchian creates a Donchian channel over period candles. Periods
// below 1 are treated as 1.
func NewDonchian(period int) *Donchian {
	if period < 1 {
		period = 1
	}
	return &Donchian{
		period:  period,
		candles: make([]market.Candle, 0, period),
	}
}

func (d *Donchian) Name() string {
	return fmt.Sprintf("Donchian(%d)", d.period)
}

func (d *Donchian) Warmup() int {
	return d.period
}

func (d *Donchian) Reset() {
	d.candles = d.candles[:0]
}

func (d *Donchian) Update(c market.Candle) {
	if len(d.candles) == d.period {
		copy(d.candles, d.candles[1:])
		d.candles = d.candles[:d.period-1]
	}
	d.candles = append(d.candles, c)
}

func (d *Donchian) Ready() bool {
	return len(d.candles) >= d.period
}

// Band returns the current channel. Both bounds are 0 until Ready.
func (d *Donchian) Band() Band {
	if !d.Ready() {
		return Band{}
	}
	lo, hi, _ := market.Range(d.candles)
	return Band{Upper: hi, Lower: lo, Ready: true}
}

// Band is one channel reading.
type Band struct {
	Upper float64
	Lower float64
	Ready bool
}

// PriorBands returns, for every index i, the channel over the period
// candles before i. Indexes below period are not Ready.
func PriorBands(candles []market.Candle, period int) []Band {
	d := NewDonchian(period)
	bands := make([]Band, len(candles))
	for i, c := range candles {
		bands[i] = d.Band()
		d.Update(c)
	}
	return bands
}
