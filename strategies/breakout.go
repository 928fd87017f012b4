package strategies

import (
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/synthbt/indicators"
	"github.com/rustyeddy/synthbt/market"
)

// BreakoutRetest trades a close beyond the recent range once price comes
// back to the broken level.
//
// The scan is a small state machine:
//   - scanning: look for a close above the highest high (long) or below the
//     lowest low (short) of the previous Lookback candles
//   - awaiting retest: wait for a candle that trades back to the breakout
//     level and enter at its close
//   - open: resolve the position against its stop and target
//
// Only one position is tracked at a time. When both stop and target fall
// inside the same candle the stop is assumed to fill first.
type BreakoutRetest struct{}

func init() {
	Register("breakout-retest", BreakoutRetest{})
}

func (BreakoutRetest) Name() string { return "breakout-retest" }

// Evaluate runs the scan over candles. Series no longer than p.Lookback
// produce no trades.
func (BreakoutRetest) Evaluate(candles []market.Candle, p Params) ([]Trade, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	s := &scan{
		candles: candles,
		bands:   indicators.PriorBands(candles, p.Lookback),
		p:       p,
		rr:      decimal.NewFromFloat(p.RiskReward),
		buffer:  decimal.NewFromFloat(p.StopBuffer),
		i:       p.Lookback,
		trades:  []Trade{},
	}
	return s.run(), nil
}

type state int

const (
	scanning state = iota
	awaitingRetestLong
	awaitingRetestShort
	openLong
	openShort
)

type scan struct {
	candles []market.Candle
	bands   []indicators.Band
	p       Params
	rr      decimal.Decimal
	buffer  decimal.Decimal

	state    state
	i        int // next candle to look at
	breakout int // index of the breakout candle while awaiting a retest
	level    float64
	pos      Trade
	trades   []Trade
}

func (s *scan) run() []Trade {
	for {
		if s.i >= len(s.candles) {
			if s.state == awaitingRetestLong || s.state == awaitingRetestShort {
				// Ran out of candles before a retest: drop the setup and
				// keep scanning for later breakouts.
				s.abandon()
				continue
			}
			break
		}

		switch s.state {
		case scanning:
			s.detect()
		case awaitingRetestLong, awaitingRetestShort:
			s.awaitRetest()
		case openLong, openShort:
			s.manage()
		}
	}

	if s.state == openLong || s.state == openShort {
		s.pos.Result = Open
		s.trades = append(s.trades, s.pos)
	}
	return s.trades
}

func (s *scan) detect() {
	c := s.candles[s.i]
	band := s.bands[s.i]

	switch {
	case c.Close > band.Upper:
		s.state = awaitingRetestLong
		s.level = band.Upper
	case c.Close < band.Lower:
		s.state = awaitingRetestShort
		s.level = band.Lower
	default:
		s.i++
		return
	}
	s.breakout = s.i
	s.i++
}

func (s *scan) abandon() {
	s.state = scanning
	s.i = s.breakout + 1
}

func (s *scan) awaitRetest() {
	if s.p.RetestWindow > 0 && s.i-s.breakout > s.p.RetestWindow {
		s.abandon()
		return
	}

	c := s.candles[s.i]
	long := s.state == awaitingRetestLong
	touched := (long && c.Low <= s.level) || (!long && c.High >= s.level)
	if !touched {
		s.i++
		return
	}

	level := decimal.NewFromFloat(s.level)
	entry := decimal.NewFromFloat(c.Close)
	side := Long
	stop := level.Sub(s.buffer)
	if !long {
		side = Short
		stop = level.Add(s.buffer)
	}

	// risk is positive only when the retest closed on the right side of
	// its own stop.
	risk := entry.Sub(stop).Mul(decimal.NewFromInt(int64(side)))
	if !risk.IsPositive() {
		s.state = scanning
		s.i++
		return
	}
	take := entry.Add(risk.Mul(s.rr).Mul(decimal.NewFromInt(int64(side))))

	s.pos = Trade{
		Side:       side,
		EntryIndex: s.i,
		EntryPrice: c.Close,
		StopLoss:   stop.InexactFloat64(),
		TakeProfit: take.InexactFloat64(),
	}
	if long {
		s.state = openLong
	} else {
		s.state = openShort
	}
	s.i++
}

func (s *scan) manage() {
	c := s.candles[s.i]

	var stopHit, takeHit bool
	if s.state == openLong {
		stopHit = c.Low <= s.pos.StopLoss
		takeHit = c.High >= s.pos.TakeProfit
	} else {
		stopHit = c.High >= s.pos.StopLoss
		takeHit = c.Low <= s.pos.TakeProfit
	}

	switch {
	case stopHit:
		s.close(Loss, s.pos.StopLoss)
	case takeHit:
		s.close(Win, s.pos.TakeProfit)
	default:
		s.i++
	}
}

func (s *scan) close(res Result, price float64) {
	exit := s.i
	s.pos.ExitIndex = &exit
	s.pos.ExitPrice = price
	s.pos.Result = res
	s.trades = append(s.trades, s.pos)

	s.pos = Trade{}
	s.state = scanning
	s.i++
}
