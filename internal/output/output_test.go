package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/kerntune/kerntune/internal/param"
	"github.com/kerntune/kerntune/internal/ranking"
	"github.com/kerntune/kerntune/internal/strategy/genetic"
)

func TestResultPairRoundTrip(t *testing.T) {
	p := ResultPair{Display: "X=1, Y=true", Fitness: 3.5}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `["X=1, Y=true",3.5]` {
		t.Fatalf("Marshal = %s, want a two-element JSON array", data)
	}

	var got ResultPair
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got != p {
		t.Fatalf("round trip = %+v, want %+v", got, p)
	}
}

func TestResultsBestFirst(t *testing.T) {
	profile := param.NewProfile([]string{"X"}, []param.Specification{param.NewIntegerSequence(0, 10, "")})
	r := ranking.New[*param.Individual](ranking.Minimize, 2)
	for _, v := range []int32{5, 1, 9} {
		ind, err := param.NewIndividual(profile, map[string]param.Value{"X": {Kind: param.Integer, Integer: v}})
		if err != nil {
			t.Fatal(err)
		}
		r.Push(ind, float64(v))
	}

	pairs, err := Results(profile, r)
	if err != nil {
		t.Fatalf("Results: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("len(pairs) = %d, want 2", len(pairs))
	}
	if pairs[0].Fitness != 1 || pairs[1].Fitness != 5 {
		t.Fatalf("pairs = %+v, want best-first [1, 5]", pairs)
	}
	if pairs[0].Display != "X=1" {
		t.Fatalf("pairs[0].Display = %q, want %q", pairs[0].Display, "X=1")
	}
}

func TestWriteResultsAndHistory(t *testing.T) {
	dir := t.TempDir()

	pairs := []ResultPair{{Display: "X=1", Fitness: 1}}
	resultsPath := filepath.Join(dir, "results.json")
	if err := WriteResults(resultsPath, pairs); err != nil {
		t.Fatalf("WriteResults: %v", err)
	}
	data, err := os.ReadFile(resultsPath)
	if err != nil {
		t.Fatalf("reading results: %v", err)
	}
	var roundTripped []ResultPair
	if err := json.Unmarshal(data, &roundTripped); err != nil {
		t.Fatalf("unmarshaling results: %v", err)
	}
	if len(roundTripped) != 1 || roundTripped[0] != pairs[0] {
		t.Fatalf("round-tripped results = %+v, want %+v", roundTripped, pairs)
	}

	history := []genetic.GenerationSummary{{CurrentBest: 1, CurrentWorst: 9}}
	historyPath := filepath.Join(dir, "results.history.json")
	if err := WriteHistory(historyPath, history); err != nil {
		t.Fatalf("WriteHistory: %v", err)
	}
	data, err = os.ReadFile(historyPath)
	if err != nil {
		t.Fatalf("reading history: %v", err)
	}
	var roundTrippedHistory []genetic.GenerationSummary
	if err := json.Unmarshal(data, &roundTrippedHistory); err != nil {
		t.Fatalf("unmarshaling history: %v", err)
	}
	if len(roundTrippedHistory) != 1 || roundTrippedHistory[0] != history[0] {
		t.Fatalf("round-tripped history = %+v, want %+v", roundTrippedHistory, history)
	}
}

func TestConvergencePlotRejectsEmptyHistory(t *testing.T) {
	dir := t.TempDir()
	err := ConvergencePlot(filepath.Join(dir, "convergence.png"), nil)
	if err == nil {
		t.Fatal("ConvergencePlot(nil history) should error")
	}
}
