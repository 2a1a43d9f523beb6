// Package stats computes latency distribution metrics over trial samples.
package stats

import (
	"encoding/json"
	"math"
	"sort"
)

// Metrics holds the derived distribution metrics for one sample set.
// A Metrics value is computed fresh from its samples and never mutated.
type Metrics struct {
	P0   float64 `json:"p0"`
	P25  float64 `json:"p25"`
	P50  float64 `json:"p50"`
	P75  float64 `json:"p75"`
	P90  float64 `json:"p90"`
	P95  float64 `json:"p95"`
	P99  float64 `json:"p99"`
	P100 float64 `json:"p100"`

	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"`
}

// Valid reports whether the metrics were computed from a non-empty sample
// set. Metrics over zero samples are NaN throughout and unusable except as
// a "no data" marker.
func (m Metrics) Valid() bool {
	return !math.IsNaN(m.Mean)
}

// MarshalJSON emits null for NaN fields; JSON has no NaN literal and
// encoding/json refuses to marshal one.
func (m Metrics) MarshalJSON() ([]byte, error) {
	opt := func(v float64) *float64 {
		if math.IsNaN(v) {
			return nil
		}
		return &v
	}

	return json.Marshal(struct {
		P0     *float64 `json:"p0"`
		P25    *float64 `json:"p25"`
		P50    *float64 `json:"p50"`
		P75    *float64 `json:"p75"`
		P90    *float64 `json:"p90"`
		P95    *float64 `json:"p95"`
		P99    *float64 `json:"p99"`
		P100   *float64 `json:"p100"`
		Mean   *float64 `json:"mean"`
		StdDev *float64 `json:"stdDev"`
	}{
		opt(m.P0), opt(m.P25), opt(m.P50), opt(m.P75),
		opt(m.P90), opt(m.P95), opt(m.P99), opt(m.P100),
		opt(m.Mean), opt(m.StdDev),
	})
}

// Compute derives percentile metrics, mean and population standard deviation
// from the given samples. The input slice is not modified.
//
// Percentiles use linear interpolation between order statistics: for
// p in [0,1] the fractional index is (n-1)*p over the sorted samples,
// interpolating between the neighboring elements when the index is not
// integral. A single sample yields that value for every percentile and a
// standard deviation of zero. An empty input yields NaN for every field;
// callers must treat such metrics as invalid.
func Compute(samples []float64) Metrics {
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	mean := meanOf(sorted)

	return Metrics{
		P0:     percentile(sorted, 0),
		P25:    percentile(sorted, 0.25),
		P50:    percentile(sorted, 0.50),
		P75:    percentile(sorted, 0.75),
		P90:    percentile(sorted, 0.90),
		P95:    percentile(sorted, 0.95),
		P99:    percentile(sorted, 0.99),
		P100:   percentile(sorted, 1),
		Mean:   mean,
		StdDev: stdDevOf(sorted, mean),
	}
}

// percentile returns the interpolated p-th percentile (p in [0,1]) of an
// already-sorted sample slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}

	idx := float64(len(sorted)-1) * p
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper {
		return sorted[lower]
	}

	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

func meanOf(samples []float64) float64 {
	sum := 0.0
	for _, s := range samples {
		sum += s
	}
	// 0/0 for an empty input, yielding the NaN sentinel.
	return sum / float64(len(samples))
}

// stdDevOf computes the population standard deviation (variance over n,
// not n-1).
func stdDevOf(samples []float64, mean float64) float64 {
	sumSq := 0.0
	for _, s := range samples {
		d := s - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(samples)))
}
