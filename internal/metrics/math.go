package metrics

import "math"

// Pct is part/whole*100, 0 when whole is 0, clamped to [0, 100].
func Pct(part, whole int) float64 {
	if whole <= 0 || part <= 0 {
		return 0
	}
	r := safeDivF(float64(part), float64(whole)) * 100
	if r > 100 {
		return 100
	}
	return r
}

// Mean of xs, 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var s float64
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

// Round1 is a display helper; the analyzers never round their own output.
func Round1(f float64) float64 { return math.Round(f*10) / 10 }

func safeDivF(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func max0(i int) int {
	if i < 0 {
		return 0
	}
	return i
}
