// Package synth generates synthetic OHLC candle series.
//
// A series is a bounded random walk: every step moves the close by a random
// magnitude whose direction is decided by the configured Mode, adds random
// wicks on both sides and clamps everything into [PriceMin, PriceMax]
// rounded inward to whole cents.
package synth

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/synthbt/market"
)

// ErrInvalidConfig is returned when a Config cannot be generated from.
var ErrInvalidConfig = errors.New("invalid generation config")

// MaxVolatility caps Volatility. At the cap a single step may travel the
// whole price band.
const MaxVolatility = 50

// Precision is the number of decimals kept on emitted candles.
const Precision = 2

// Mode selects the directional bias of the walk.
type Mode string

const (
	// Trending keeps one direction, chosen at random, for the whole run.
	Trending Mode = "trending"
	// Ranging flips direction every step.
	Ranging Mode = "ranging"
	// Wild draws a fresh direction every step.
	Wild Mode = "wild"
)

// Modes lists the supported modes.
var Modes = []Mode{Trending, Ranging, Wild}

// ParseMode maps a mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case Trending, Ranging, Wild:
		return m, nil
	}
	return "", fmt.Errorf("%w: unknown mode %q (supported: trending, ranging, wild)", ErrInvalidConfig, s)
}

// Config describes one synthetic series.
type Config struct {
	PriceMin   float64 `json:"price_min" yaml:"price_min" mapstructure:"price_min"`
	PriceMax   float64 `json:"price_max" yaml:"price_max" mapstructure:"price_max"`
	Volatility float64 `json:"volatility" yaml:"volatility" mapstructure:"volatility"`
	NumCandles int     `json:"num_candles" yaml:"num_candles" mapstructure:"num_candles"`
	Mode       Mode    `json:"mode" yaml:"mode" mapstructure:"mode"`
}

// Validate checks the generator preconditions. A degenerate band
// (PriceMin == PriceMax) is accepted and yields flat candles.
func (c Config) Validate() error {
	if c.PriceMin > c.PriceMax {
		return fmt.Errorf("%w: price_min %.2f above price_max %.2f", ErrInvalidConfig, c.PriceMin, c.PriceMax)
	}
	if c.NumCandles < 0 {
		return fmt.Errorf("%w: num_candles must not be negative", ErrInvalidConfig)
	}
	if lo, hi := c.Band(); lo > hi {
		return fmt.Errorf("%w: no %d-decimal price between price_min %v and price_max %v", ErrInvalidConfig, Precision, c.PriceMin, c.PriceMax)
	}
	if c.Volatility <= 0 || c.Volatility > MaxVolatility {
		return fmt.Errorf("%w: volatility must be in (0, %d]", ErrInvalidConfig, MaxVolatility)
	}
	if _, err := ParseMode(string(c.Mode)); err != nil {
		return err
	}
	return nil
}

// Band returns the emittable price range: PriceMin rounded up and PriceMax
// rounded down to Precision decimals.
func (c Config) Band() (lo, hi float64) {
	lo = decimal.NewFromFloat(c.PriceMin).RoundCeil(Precision).InexactFloat64()
	hi = decimal.NewFromFloat(c.PriceMax).RoundFloor(Precision).InexactFloat64()
	return lo, hi
}

// MaxMove is the largest close-to-close step for c. Wicks extend at most
// half of it beyond the body.
func (c Config) MaxMove() float64 {
	return (c.PriceMax - c.PriceMin) * c.Volatility / MaxVolatility
}

// Rand is the random source used by Generate. *rand.Rand from math/rand and
// math/rand/v2 both satisfy it.
type Rand interface {
	Float64() float64
}

// NewRand returns a deterministic source for seed.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), 0x9e3779b97f4a7c15))
}

// Generate produces cfg.NumCandles candles drawn from rng. The same config
// and an identically seeded source always produce the same series.
func Generate(cfg Config, rng Rand) ([]market.Candle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrInvalidConfig)
	}

	out := make([]market.Candle, 0, cfg.NumCandles)
	if cfg.NumCandles == 0 {
		return out, nil
	}

	maxMove := cfg.MaxMove()
	dir := newBias(cfg.Mode, rng)
	lo, hi := cfg.Band()
	open := uniform(rng, lo, hi)

	for i := 0; i < cfg.NumCandles; i++ {
		sign := dir.next()
		close := clamp(open+sign*uniform(rng, 0, maxMove), lo, hi)

		bodyLo, bodyHi := open, close
		if bodyLo > bodyHi {
			bodyLo, bodyHi = bodyHi, bodyLo
		}
		high := clamp(bodyHi+uniform(rng, 0, maxMove/2), bodyHi, hi)
		low := clamp(bodyLo-uniform(rng, 0, maxMove/2), lo, bodyLo)

		out = append(out, market.Candle{
			Open:  round(open),
			High:  round(high),
			Low:   round(low),
			Close: round(close),
		})
		open = close
	}
	return out, nil
}

// bias yields the direction of each step.
type bias struct {
	mode Mode
	rng  Rand
	sign float64
}

func newBias(mode Mode, rng Rand) *bias {
	return &bias{mode: mode, rng: rng, sign: randomSign(rng)}
}

func (b *bias) next() float64 {
	switch b.mode {
	case Ranging:
		s := b.sign
		b.sign = -b.sign
		return s
	case Wild:
		return randomSign(b.rng)
	default:
		return b.sign
	}
}

func randomSign(rng Rand) float64 {
	if rng.Float64() < 0.5 {
		return -1
	}
	return 1
}

func uniform(rng Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round(v float64) float64 {
	return decimal.NewFromFloat(v).Round(Precision).InexactFloat64()
}
