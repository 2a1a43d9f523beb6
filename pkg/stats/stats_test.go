package stats

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCompute_TenSamples(t *testing.T) {
	samples := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	m := Compute(samples)

	if !almostEqual(m.P0, 1) {
		t.Errorf("P0 = %v, want 1", m.P0)
	}
	if !almostEqual(m.P50, 5.5) {
		t.Errorf("P50 = %v, want 5.5", m.P50)
	}
	if !almostEqual(m.P100, 10) {
		t.Errorf("P100 = %v, want 10", m.P100)
	}
	if !almostEqual(m.Mean, 5.5) {
		t.Errorf("Mean = %v, want 5.5", m.Mean)
	}
}

func TestCompute_Interpolation(t *testing.T) {
	// n=4: idx for p25 is 0.75, interpolating between 10 and 20.
	samples := []float64{10, 20, 30, 40}

	m := Compute(samples)

	tests := []struct {
		name     string
		got      float64
		expected float64
	}{
		{"p25", m.P25, 17.5},
		{"p50", m.P50, 25},
		{"p75", m.P75, 32.5},
		{"p90", m.P90, 37},
		{"p95", m.P95, 38.5},
		{"p99", m.P99, 39.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !almostEqual(tt.got, tt.expected) {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}
}

func TestCompute_MinMaxAndMonotonicity(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
	}{
		{"ascending", []float64{1, 2, 3, 4, 5}},
		{"unsorted", []float64{42, 7, 19, 3, 88, 21}},
		{"duplicates", []float64{5, 5, 5, 1, 9, 5}},
		{"two_elements", []float64{100, 200}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Compute(tt.samples)

			min, max := tt.samples[0], tt.samples[0]
			for _, s := range tt.samples {
				if s < min {
					min = s
				}
				if s > max {
					max = s
				}
			}

			if !almostEqual(m.P0, min) {
				t.Errorf("P0 = %v, want min %v", m.P0, min)
			}
			if !almostEqual(m.P100, max) {
				t.Errorf("P100 = %v, want max %v", m.P100, max)
			}

			ordered := []float64{m.P0, m.P25, m.P50, m.P75, m.P90, m.P95, m.P99, m.P100}
			for i := 1; i < len(ordered); i++ {
				if ordered[i] < ordered[i-1] {
					t.Errorf("Percentiles not monotonic: index %d (%v) < index %d (%v)",
						i, ordered[i], i-1, ordered[i-1])
				}
			}
		})
	}
}

func TestCompute_SingleSample(t *testing.T) {
	m := Compute([]float64{42})

	for name, got := range map[string]float64{
		"P0": m.P0, "P25": m.P25, "P50": m.P50, "P75": m.P75,
		"P90": m.P90, "P95": m.P95, "P99": m.P99, "P100": m.P100,
		"Mean": m.Mean,
	} {
		if !almostEqual(got, 42) {
			t.Errorf("%s = %v, want 42", name, got)
		}
	}
	if m.StdDev != 0 {
		t.Errorf("StdDev = %v, want 0", m.StdDev)
	}
	if !m.Valid() {
		t.Error("Valid() = false for single sample, want true")
	}
}

func TestCompute_PopulationStdDev(t *testing.T) {
	// Population variance of {2,4,4,4,5,5,7,9} is 4 (the classic example);
	// sample variance would be 32/7.
	m := Compute([]float64{2, 4, 4, 4, 5, 5, 7, 9})

	if !almostEqual(m.StdDev, 2) {
		t.Errorf("StdDev = %v, want 2 (population, not sample)", m.StdDev)
	}
	if !almostEqual(m.Mean, 5) {
		t.Errorf("Mean = %v, want 5", m.Mean)
	}
}

func TestCompute_EmptyInput(t *testing.T) {
	m := Compute(nil)

	if !math.IsNaN(m.Mean) {
		t.Errorf("Mean = %v, want NaN for empty input", m.Mean)
	}
	if !math.IsNaN(m.StdDev) {
		t.Errorf("StdDev = %v, want NaN for empty input", m.StdDev)
	}
	if !math.IsNaN(m.P50) {
		t.Errorf("P50 = %v, want NaN for empty input", m.P50)
	}
	if m.Valid() {
		t.Error("Valid() = true for empty input, want false")
	}
}

func TestMetrics_MarshalJSON(t *testing.T) {
	t.Run("valid metrics", func(t *testing.T) {
		data, err := json.Marshal(Compute([]float64{1, 2, 3}))
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		if !strings.Contains(string(data), `"p50":2`) {
			t.Errorf("Marshaled metrics missing p50: %s", data)
		}
	})

	t.Run("empty metrics marshal NaN as null", func(t *testing.T) {
		data, err := json.Marshal(Compute(nil))
		if err != nil {
			t.Fatalf("Marshal failed for NaN metrics: %v", err)
		}
		if !strings.Contains(string(data), `"mean":null`) {
			t.Errorf("Expected NaN mean to marshal as null: %s", data)
		}
	})
}

func TestCompute_DoesNotMutateInput(t *testing.T) {
	samples := []float64{3, 1, 2}
	Compute(samples)

	if samples[0] != 3 || samples[1] != 1 || samples[2] != 2 {
		t.Errorf("Compute mutated its input: %v", samples)
	}
}
