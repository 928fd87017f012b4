package strategies

import "github.com/rustyeddy/synthbt/market"

// Noop never trades. It is the baseline when comparing evaluators.
type Noop struct{}

func init() {
	Register("noop", Noop{})
}

func (Noop) Name() string { return "noop" }

func (Noop) Evaluate(candles []market.Candle, p Params) ([]Trade, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return []Trade{}, nil
}
