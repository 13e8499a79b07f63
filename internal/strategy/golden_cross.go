package strategy

import (
	"fmt"

	"github.com/adani-quant/trading-dashboard/internal/candle"
	"github.com/adani-quant/trading-dashboard/internal/indicator"
)

// GoldenCross goes long when the 50-bar SMA crosses above the 200-bar
// SMA and exits on the opposite cross. The recorded stop and take
// profit are advisory; the only exit trigger is the death cross.
type GoldenCross struct {
	symbol  string
	candles []candle.Candle
	sma50   []float64
	sma200  []float64
}

// NewGoldenCross builds the 50/200 SMA crossover strategy.
func NewGoldenCross(symbol string) *GoldenCross {
	return &GoldenCross{symbol: symbol}
}

func (s *GoldenCross) Name() string      { return "golden-cross" }
func (s *GoldenCross) Symbol() string    { return s.symbol }
func (s *GoldenCross) WarmupPeriod() int { return 200 }

func (s *GoldenCross) Prepare(candles []candle.Candle) error {
	if len(candles) <= s.WarmupPeriod() {
		return fmt.Errorf("need more than %d candles, have %d", s.WarmupPeriod(), len(candles))
	}
	closes := candle.Closes(candles)
	s.candles = candles
	s.sma50 = indicator.CalculateSMA(closes, 50)
	s.sma200 = indicator.CalculateSMA(closes, 200)
	return nil
}

func (s *GoldenCross) Advise(i int, pos *Position) Advice {
	goldenCross := s.sma50[i-1] <= s.sma200[i-1] && s.sma50[i] > s.sma200[i]
	deathCross := s.sma50[i-1] >= s.sma200[i-1] && s.sma50[i] < s.sma200[i]

	if pos != nil {
		if deathCross {
			return Advice{Action: Exit, Reason: "50/200 SMA death cross"}
		}
		return Advice{Action: Hold}
	}

	if goldenCross {
		price := s.candles[i].Close
		return Advice{
			Action:     Enter,
			Reason:     "50/200 SMA golden cross",
			StopLoss:   price * 0.94,
			TakeProfit: price * 1.12,
		}
	}
	return Advice{Action: Hold}
}
