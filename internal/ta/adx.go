package ta

import "math"

// ADX implements Wilder's Average Directional Index (trend strength) over
// full OHLC slices. Requires at least 2*period+1 bars: period bars to seed
// the smoothed TR/+DM/-DM averages, then period DX values to seed ADX.
// Returns NaN when the series is too short.
func ADX(highs, lows, closes []float64, period int) float64 {
	if period <= 0 || len(highs) != len(lows) || len(lows) != len(closes) {
		return math.NaN()
	}
	if len(closes) < 2*period+1 {
		return math.NaN()
	}

	p := float64(period)
	var tr14, pdm14, mdm14 float64
	var adx, dxSum float64
	dxCount := 0

	for i := 1; i < len(closes); i++ {
		upMove := highs[i] - highs[i-1]
		downMove := lows[i-1] - lows[i]

		var pdm, mdm float64
		if upMove > downMove && upMove > 0 {
			pdm = upMove
		}
		if downMove > upMove && downMove > 0 {
			mdm = downMove
		}

		tr1 := highs[i] - lows[i]
		tr2 := math.Abs(highs[i] - closes[i-1])
		tr3 := math.Abs(lows[i] - closes[i-1])
		tr := math.Max(tr1, math.Max(tr2, tr3))

		if i <= period {
			// Warmup phase A: accumulate initial averages.
			tr14 += tr
			pdm14 += pdm
			mdm14 += mdm
			if i == period {
				tr14 /= p
				pdm14 /= p
				mdm14 /= p
			}
			continue
		}

		// Wilder smoothing.
		tr14 = (tr14*(p-1) + tr) / p
		pdm14 = (pdm14*(p-1) + pdm) / p
		mdm14 = (mdm14*(p-1) + mdm) / p

		if tr14 == 0 {
			continue
		}
		pdi := 100.0 * (pdm14 / tr14)
		mdi := 100.0 * (mdm14 / tr14)
		den := pdi + mdi
		if den == 0 {
			continue
		}
		dx := 100.0 * math.Abs(pdi-mdi) / den

		dxCount++
		if dxCount <= period {
			// Warmup phase B: seed ADX with the average of the first
			// period DX values.
			dxSum += dx
			if dxCount == period {
				adx = dxSum / p
			}
			continue
		}
		adx = (adx*(p-1) + dx) / p
	}

	if dxCount < period {
		return math.NaN()
	}
	return adx
}
