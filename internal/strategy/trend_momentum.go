package strategy

import (
	"fmt"

	"github.com/adani-quant/trading-dashboard/internal/candle"
	"github.com/adani-quant/trading-dashboard/internal/indicator"
)

// TrendMomentum is a long-only composite strategy. It enters on the
// confluence of trend, momentum, volume, and volatility filters and
// exits on the first reversal signal, stop, target, or holding limit.
type TrendMomentum struct {
	symbol string

	candles []candle.Candle

	sma20   []float64
	sma50   []float64
	sma200  []float64
	rsi     []float64
	atr     []float64
	atrMean []float64
	macd    *indicator.MACDResult
	roc5    []float64
	roc20   []float64
	volRate []float64

	// Rolling 5-bar extremes, compared against the window five bars back.
	high5 []float64
	low5  []float64
}

// NewTrendMomentum builds the composite trend/momentum strategy.
func NewTrendMomentum(symbol string) *TrendMomentum {
	return &TrendMomentum{symbol: symbol}
}

func (s *TrendMomentum) Name() string   { return "trend-momentum" }
func (s *TrendMomentum) Symbol() string { return s.symbol }

// WarmupPeriod covers the slowest indicator, the 200-bar SMA.
func (s *TrendMomentum) WarmupPeriod() int { return 200 }

// Prepare computes every indicator series the bar loop consults.
func (s *TrendMomentum) Prepare(candles []candle.Candle) error {
	if len(candles) <= s.WarmupPeriod() {
		return fmt.Errorf("need more than %d candles, have %d", s.WarmupPeriod(), len(candles))
	}
	closes := candle.Closes(candles)
	highs := candle.Highs(candles)
	lows := candle.Lows(candles)
	volumes := candle.Volumes(candles)

	s.candles = candles
	s.sma20 = indicator.CalculateSMA(closes, 20)
	s.sma50 = indicator.CalculateSMA(closes, 50)
	s.sma200 = indicator.CalculateSMA(closes, 200)
	s.rsi = indicator.CalculateRSI(closes, 14)
	s.atr = indicator.CalculateATR(candles, 14)
	s.atrMean = indicator.CalculateSMA(s.atr, 20)
	s.macd = indicator.CalculateMACD(closes, 12, 26, 9)
	if s.macd == nil {
		return fmt.Errorf("macd calculation failed for %d candles", len(candles))
	}
	s.roc5 = indicator.CalculateROC(closes, 5)
	s.roc20 = indicator.CalculateROC(closes, 20)
	s.high5 = indicator.RollingMax(highs, 5)
	s.low5 = indicator.RollingMin(lows, 5)

	volSMA := indicator.CalculateSMA(volumes, 20)
	s.volRate = make([]float64, len(candles))
	for i := range s.volRate {
		if volSMA[i] == 0 {
			s.volRate[i] = 0
			continue
		}
		s.volRate[i] = volumes[i] / volSMA[i]
	}
	return nil
}

// Advise evaluates one bar. NaN indicator values fail every comparison,
// so unwarmed bars never trigger.
func (s *TrendMomentum) Advise(i int, pos *Position) Advice {
	price := s.candles[i].Close

	if pos != nil {
		switch {
		case s.atr[i] > s.atrMean[i]*1.3:
			return Advice{Action: Exit, Reason: "volatility spike"}
		case price < s.sma20[i]:
			return Advice{Action: Exit, Reason: "close below 20-bar SMA"}
		case s.macd.MACD[i] < s.macd.Signal[i] && s.macd.Histogram[i] < 0:
			return Advice{Action: Exit, Reason: "MACD momentum reversal"}
		case s.rsi[i] > 70:
			return Advice{Action: Exit, Reason: "RSI overbought"}
		case price <= pos.EntryPrice*0.98:
			return Advice{Action: Exit, Reason: "2% stop loss"}
		case price >= pos.EntryPrice*1.04:
			return Advice{Action: Exit, Reason: "4% take profit"}
		case pos.HoldingDays(s.candles[i].Timestamp) >= 8:
			return Advice{Action: Exit, Reason: "8-day holding limit"}
		}
		return Advice{Action: Hold}
	}

	volatilityOK := s.atr[i] < s.atrMean[i]*1.1 && s.atr[i] > s.atrMean[i]*0.7

	trendOK := price > s.sma20[i] &&
		s.sma20[i] > s.sma50[i] &&
		s.sma50[i] > s.sma200[i]

	momentumOK := s.rsi[i] > 45 && s.rsi[i] < 65 &&
		s.macd.MACD[i] > s.macd.Signal[i] &&
		s.macd.Histogram[i] > 0 &&
		s.roc5[i] > 0 && s.roc20[i] > 0

	volumeOK := s.volRate[i] > 1.3

	patternOK := i >= 5 &&
		s.high5[i] > s.high5[i-5] &&
		!(s.low5[i] < s.low5[i-5]) &&
		price > s.sma20[i]*1.01

	if volatilityOK && trendOK && momentumOK && volumeOK && patternOK {
		return Advice{
			Action:     Enter,
			Reason:     "strong trend with momentum and volume confirmation",
			StopLoss:   price - s.atr[i]*1.2,
			TakeProfit: price + s.atr[i]*2.0,
		}
	}
	return Advice{Action: Hold}
}
