package reporting

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultBins is the number of equal-width probability bins.
const DefaultBins = 20

// Bin counts probabilities in [Lower, Upper). The last bin includes 1.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram is a probability distribution over [0,1].
type Histogram struct {
	Bins []Bin `json:"bins"`
}

// ProbabilityHistogram counts probs into n equal-width bins over [0,1].
// Values outside [0,1] are clamped into the edge bins.
func ProbabilityHistogram(probs []float64, n int) Histogram {
	if n <= 0 {
		n = DefaultBins
	}
	edges := floats.Span(make([]float64, n+1), 0, 1)
	bins := make([]Bin, n)
	for i := range bins {
		bins[i] = Bin{Lower: edges[i], Upper: edges[i+1]}
	}
	if len(probs) == 0 {
		return Histogram{Bins: bins}
	}

	x := make([]float64, 0, len(probs))
	for _, p := range probs {
		if math.IsNaN(p) {
			continue
		}
		x = append(x, math.Min(math.Max(p, 0), 1))
	}
	if len(x) == 0 {
		return Histogram{Bins: bins}
	}
	sort.Float64s(x)

	// stat.Histogram excludes the top divider, so nudge it past 1.
	dividers := append([]float64(nil), edges...)
	dividers[n] = math.Nextafter(1, 2)
	counts := stat.Histogram(nil, dividers, x, nil)
	for i, c := range counts {
		bins[i].Count = int(c)
	}
	return Histogram{Bins: bins}
}
