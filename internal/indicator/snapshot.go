package indicator

import (
	"fmt"
	"math"

	"github.com/adani-quant/trading-dashboard/internal/candle"
)

// Snapshot bundles the full indicator set computed over one candle series.
// Every slice is aligned with the input candles, NaN-padded during warmup.
type Snapshot struct {
	SMA20  []float64 `json:"sma_20"`
	SMA50  []float64 `json:"sma_50"`
	SMA100 []float64 `json:"sma_100"`
	SMA200 []float64 `json:"sma_200"`

	EMA20  []float64 `json:"ema_20"`
	EMA50  []float64 `json:"ema_50"`
	EMA100 []float64 `json:"ema_100"`

	RSI14 []float64 `json:"rsi_14"`

	MACD       []float64 `json:"macd"`
	MACDSignal []float64 `json:"macd_signal"`
	MACDHist   []float64 `json:"macd_hist"`

	BBUpper  []float64 `json:"bb_upper"`
	BBMiddle []float64 `json:"bb_middle"`
	BBLower  []float64 `json:"bb_lower"`

	ADX     []float64 `json:"adx"`
	PlusDI  []float64 `json:"plus_di"`
	MinusDI []float64 `json:"minus_di"`

	ATR14     []float64 `json:"atr_14"`
	ATRMean20 []float64 `json:"atr_mean_20"`

	VolumeSMA20 []float64 `json:"volume_sma_20"`
	VolumeRatio []float64 `json:"volume_ratio"`

	ROC5  []float64 `json:"roc_5"`
	ROC20 []float64 `json:"roc_20"`

	StochK []float64 `json:"stoch_k"`
	StochD []float64 `json:"stoch_d"`

	High20 []float64 `json:"high_20"`
	High30 []float64 `json:"high_30"`
}

// minSnapshotCandles is driven by the slowest component, SMA200.
const minSnapshotCandles = 200

// NewSnapshot computes the full indicator set for the given candles.
// The input must be sorted by timestamp ascending.
func NewSnapshot(candles []candle.Candle) (*Snapshot, error) {
	if len(candles) < minSnapshotCandles {
		return nil, errInsufficientData(minSnapshotCandles, len(candles))
	}

	closes := candle.Closes(candles)
	highs := candle.Highs(candles)
	volumes := candle.Volumes(candles)

	snap := &Snapshot{
		SMA20:  CalculateSMA(closes, 20),
		SMA50:  CalculateSMA(closes, 50),
		SMA100: CalculateSMA(closes, 100),
		SMA200: CalculateSMA(closes, 200),
		EMA20:  CalculateEMA(closes, 20),
		EMA50:  CalculateEMA(closes, 50),
		EMA100: CalculateEMA(closes, 100),
		RSI14:  CalculateRSI(closes, 14),
		ROC5:   CalculateROC(closes, 5),
		ROC20:  CalculateROC(closes, 20),
		ATR14:  CalculateATR(candles, 14),
		High20: RollingMax(highs, 20),
		High30: RollingMax(highs, 30),
	}

	macd := CalculateMACD(closes, 12, 26, 9)
	if macd == nil {
		return nil, fmt.Errorf("macd calculation failed for %d candles", len(candles))
	}
	snap.MACD = macd.MACD
	snap.MACDSignal = macd.Signal
	snap.MACDHist = macd.Histogram

	bb, err := CalculateBollinger(closes, 20, 2.0)
	if err != nil {
		return nil, fmt.Errorf("bollinger calculation: %w", err)
	}
	snap.BBUpper = bb.Upper
	snap.BBMiddle = bb.Middle
	snap.BBLower = bb.Lower

	adx := CalculateADX(candles, 14)
	if adx == nil {
		return nil, fmt.Errorf("adx calculation failed for %d candles", len(candles))
	}
	snap.ADX = adx.ADX
	snap.PlusDI = adx.PlusDI
	snap.MinusDI = adx.MinusDI

	periodK, smoothK, periodD := DefaultStochasticSettings()
	stoch, err := CalculateStochastic(candles, periodK, smoothK, periodD)
	if err != nil {
		return nil, fmt.Errorf("stochastic calculation: %w", err)
	}
	snap.StochK = stoch.K
	snap.StochD = stoch.D

	snap.ATRMean20 = CalculateSMA(snap.ATR14, 20)
	snap.VolumeSMA20 = CalculateSMA(volumes, 20)

	snap.VolumeRatio = make([]float64, len(candles))
	for i := range snap.VolumeRatio {
		if snap.VolumeSMA20[i] == 0 || math.IsNaN(snap.VolumeSMA20[i]) {
			snap.VolumeRatio[i] = math.NaN()
			continue
		}
		snap.VolumeRatio[i] = volumes[i] / snap.VolumeSMA20[i]
	}

	return snap, nil
}

// HigherHigh reports whether the high at index i exceeds the prior high.
func HigherHigh(candles []candle.Candle, i int) bool {
	return i > 0 && candles[i].High > candles[i-1].High
}

// LowerLow reports whether the low at index i undercuts the prior low.
func LowerLow(candles []candle.Candle, i int) bool {
	return i > 0 && candles[i].Low < candles[i-1].Low
}
