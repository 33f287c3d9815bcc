package eval

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Criterion picks the representative fitness out of repeated measurements
// of the same individual (spec.md §4.H step 7).
type Criterion int

const (
	Minimum Criterion = iota
	Maximum
	Median
)

func (c Criterion) String() string {
	switch c {
	case Minimum:
		return "minimum"
	case Maximum:
		return "maximum"
	case Median:
		return "median"
	default:
		return fmt.Sprintf("Criterion(%d)", int(c))
	}
}

// ParseCriterion parses the configuration document's lowercase criterion
// name.
func ParseCriterion(s string) (Criterion, error) {
	switch s {
	case "minimum":
		return Minimum, nil
	case "maximum":
		return Maximum, nil
	case "median":
		return Median, nil
	default:
		return 0, fmt.Errorf("eval: unknown criterion %q", s)
	}
}

// Invalid returns the sentinel fitness substituted for an evaluation that
// never produced a measurement: +Inf for Minimum and Median, -Inf for
// Maximum, so an invalid individual never ranks as "better" than any
// feasible one regardless of optimization direction.
func (c Criterion) Invalid() float64 {
	if c == Maximum {
		return math.Inf(-1)
	}
	return math.Inf(1)
}

// Representative reduces a non-empty slice of measurements to the single
// fitness reported for the individual. fitnesses must not contain NaN;
// callers reject NaN as fatal before calling Representative.
func (c Criterion) Representative(fitnesses []float64) float64 {
	switch c {
	case Minimum:
		return floats.Min(fitnesses)
	case Maximum:
		return floats.Max(fitnesses)
	case Median:
		sorted := append([]float64(nil), fitnesses...)
		sort.Float64s(sorted)
		return sorted[len(sorted)/2]
	default:
		panic(fmt.Sprintf("eval: unknown criterion %d", int(c)))
	}
}
