package analysis

// UpCrossings returns the times at which series rises through threshold,
// linearly interpolated between samples.
func UpCrossings(times, series []float64, threshold float64) []float64 {
	n := len(times)
	if len(series) < n {
		n = len(series)
	}

	var out []float64
	for i := 1; i < n; i++ {
		prev, curr := series[i-1], series[i]
		if prev < threshold && curr >= threshold {
			frac := (threshold - prev) / (curr - prev)
			out = append(out, times[i-1]+frac*(times[i]-times[i-1]))
		}
	}
	return out
}

// MeanPeriod is the average spacing of consecutive crossing times. ok is
// false with fewer than two crossings.
func MeanPeriod(crossings []float64) (period float64, ok bool) {
	if len(crossings) < 2 {
		return 0, false
	}
	return (crossings[len(crossings)-1] - crossings[0]) / float64(len(crossings)-1), true
}
