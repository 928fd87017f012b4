// Package indicators provides streaming candle indicators.
package indicators

import "github.com/rustyeddy/synthbt/market"

// Indicator computes a streaming value from candles.
type Indicator interface {
	// Name returns a stable identifier like "Donchian(20)".
	Name() string

	// Warmup returns how many updates are needed before Ready() can be true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next closed candle.
	Update(c market.Candle)

	// Ready reports whether the current value is meaningful.
	Ready() bool
}
