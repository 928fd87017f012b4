package strategies

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rustyeddy/synthbt/market"
)

// ErrInvalidParams is returned when an evaluator is given unusable parameters.
var ErrInvalidParams = errors.New("invalid strategy params")

// Evaluator scans a candle series and reports the trades it would take.
// Implementations must be pure: the same candles and params always produce
// the same trades and the input slice is never modified.
type Evaluator interface {
	Name() string
	Evaluate(candles []market.Candle, p Params) ([]Trade, error)
}

// Params configures an evaluator.
type Params struct {
	// Lookback is the breakout window size in candles.
	Lookback int `json:"lookback" yaml:"lookback" mapstructure:"lookback"`
	// RiskReward multiplies the entry-to-stop distance to place the target.
	RiskReward float64 `json:"risk_reward" yaml:"risk_reward" mapstructure:"risk_reward"`
	// StopBuffer is the distance between the breakout level and the stop.
	StopBuffer float64 `json:"stop_buffer" yaml:"stop_buffer" mapstructure:"stop_buffer"`
	// RetestWindow bounds the retest search in candles. 0 searches to the
	// end of the series.
	RetestWindow int `json:"retest_window" yaml:"retest_window" mapstructure:"retest_window"`
}

// DefaultParams returns the parameters used when none are configured.
func DefaultParams() Params {
	return Params{
		Lookback:     10,
		RiskReward:   2,
		StopBuffer:   1,
		RetestWindow: 0,
	}
}

// Validate checks p on its own; the relation to a series length is checked
// by the caller that knows it.
func (p Params) Validate() error {
	if p.Lookback < 1 {
		return fmt.Errorf("%w: lookback must be at least 1", ErrInvalidParams)
	}
	if p.RiskReward <= 0 {
		return fmt.Errorf("%w: risk_reward must be positive", ErrInvalidParams)
	}
	if p.StopBuffer <= 0 {
		return fmt.Errorf("%w: stop_buffer must be positive", ErrInvalidParams)
	}
	if p.RetestWindow < 0 {
		return fmt.Errorf("%w: retest_window must not be negative", ErrInvalidParams)
	}
	return nil
}

var (
	mu       sync.RWMutex
	registry = make(map[string]Evaluator)
)

// Register makes an evaluator available by name.
func Register(name string, e Evaluator) {
	mu.Lock()
	defer mu.Unlock()
	registry[normalize(name)] = e
}

// Get returns the evaluator registered as name.
func Get(name string) (Evaluator, error) {
	mu.RLock()
	defer mu.RUnlock()
	e, ok := registry[normalize(name)]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (supported: %s)", name, strings.Join(namesLocked(), ", "))
	}
	return e, nil
}

// Names lists the registered evaluators in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	return namesLocked()
}

func namesLocked() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
