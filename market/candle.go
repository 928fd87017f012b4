package market

import "fmt"

// Candle represents one synthetic OHLC bar. The position of a candle in its
// slice is the only time reference.
type Candle struct {
	Open  float64 `json:"open" yaml:"open"`
	High  float64 `json:"high" yaml:"high"`
	Low   float64 `json:"low" yaml:"low"`
	Close float64 `json:"close" yaml:"close"`
}

// Bullish reports whether the candle closed at or above its open.
func (c Candle) Bullish() bool {
	return c.Close >= c.Open
}

// Body returns the lower and upper edge of the candle body.
func (c Candle) Body() (lo, hi float64) {
	if c.Open < c.Close {
		return c.Open, c.Close
	}
	return c.Close, c.Open
}

// Validate checks that the wicks enclose the body.
func (c Candle) Validate() error {
	lo, hi := c.Body()
	if c.Low > lo {
		return fmt.Errorf("low %.2f above body %.2f", c.Low, lo)
	}
	if c.High < hi {
		return fmt.Errorf("high %.2f below body %.2f", c.High, hi)
	}
	return nil
}

// Range returns the lowest low and highest high over candles.
// ok is false when candles is empty.
func Range(candles []Candle) (lo, hi float64, ok bool) {
	if len(candles) == 0 {
		return 0, 0, false
	}
	lo, hi = candles[0].Low, candles[0].High
	for _, c := range candles[1:] {
		if c.Low < lo {
			lo = c.Low
		}
		if c.High > hi {
			hi = c.High
		}
	}
	return lo, hi, true
}
