// Package output implements spec.md §4.N: the results document (ranked
// [display, fitness] pairs) and the optional genetic history document,
// written with encoding/json the way original_source/src/bin/autotuner/main.rs
// writes its results via serde_json::to_string_pretty.
package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kerntune/kerntune/internal/param"
	"github.com/kerntune/kerntune/internal/ranking"
	"github.com/kerntune/kerntune/internal/strategy/genetic"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// ResultPair is one ranked entry: an Individual's display string paired
// with its fitness. It marshals as a two-element JSON array, matching
// original_source's `(format!("{}", instance), fitness)` tuple.
type ResultPair struct {
	Display string
	Fitness float64
}

func (p ResultPair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{p.Display, p.Fitness})
}

func (p *ResultPair) UnmarshalJSON(data []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if err := json.Unmarshal(pair[0], &p.Display); err != nil {
		return fmt.Errorf("output: result pair display: %w", err)
	}
	if err := json.Unmarshal(pair[1], &p.Fitness); err != nil {
		return fmt.Errorf("output: result pair fitness: %w", err)
	}
	return nil
}

// Results builds the ranked results document, best first, from a Ranking.
func Results(profile *param.Profile, r *ranking.Ranking[*param.Individual]) ([]ResultPair, error) {
	entries := r.Entries()
	pairs := make([]ResultPair, len(entries))
	for i, e := range entries {
		display, err := param.Display(profile, e.Value)
		if err != nil {
			return nil, fmt.Errorf("output: displaying entry %d: %w", i, err)
		}
		pairs[i] = ResultPair{Display: display, Fitness: e.Fitness}
	}
	return pairs, nil
}

// WriteResults writes the results document to path as indented JSON.
func WriteResults(path string, pairs []ResultPair) error {
	data, err := json.MarshalIndent(pairs, "", "  ")
	if err != nil {
		return fmt.Errorf("output: encoding results: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// WriteHistory writes the optional genetic convergence history document.
func WriteHistory(path string, history []genetic.GenerationSummary) error {
	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("output: encoding history: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ConvergencePlot renders a generation-indexed line chart of current_best
// and current_worst, the way cmd/carta and cmd/press render a pipeline's
// numeric output as a gonum/plot figure. The result is an optional
// complement to WriteHistory's raw JSON, useful for eyeballing convergence
// without re-plotting the document elsewhere.
func ConvergencePlot(path string, history []genetic.GenerationSummary) error {
	if len(history) == 0 {
		return fmt.Errorf("output: convergence plot: empty history")
	}

	p := plot.New()
	p.Title.Text = "convergence"
	p.X.Label.Text = "generation"
	p.Y.Label.Text = "fitness"

	best := make(plotter.XYs, len(history))
	worst := make(plotter.XYs, len(history))
	for i, h := range history {
		best[i].X, best[i].Y = float64(i), h.CurrentBest
		worst[i].X, worst[i].Y = float64(i), h.CurrentWorst
	}

	bestLine, err := plotter.NewLine(best)
	if err != nil {
		return fmt.Errorf("output: convergence plot: best line: %w", err)
	}
	bestLine.Color = plotutil.Color(0)

	worstLine, err := plotter.NewLine(worst)
	if err != nil {
		return fmt.Errorf("output: convergence plot: worst line: %w", err)
	}
	worstLine.Color = plotutil.Color(1)
	worstLine.Dashes = plotutil.Dashes(1)

	p.Add(bestLine, worstLine)
	p.Legend.Add("best", bestLine)
	p.Legend.Add("worst", worstLine)

	if err := p.Save(20*vg.Centimeter, 12*vg.Centimeter, path); err != nil {
		return fmt.Errorf("output: convergence plot: save: %w", err)
	}
	return nil
}
