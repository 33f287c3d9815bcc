package ranking

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/kerntune/kerntune/internal/eval"
	"github.com/kerntune/kerntune/internal/param"
	"github.com/kerntune/kerntune/internal/strategy/exhaustive"
)

func TestRankingRetainsTopK(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const n = 200
	const k = 10

	fitnesses := make([]float64, n)
	for i := range fitnesses {
		fitnesses[i] = rng.Float64() * 1000
	}

	for _, direction := range []Direction{Minimize, Maximize} {
		r := New[int](direction, k)
		for i, f := range fitnesses {
			r.Push(i, f)
		}
		if r.Len() != k {
			t.Fatalf("Len() = %d, want %d", r.Len(), k)
		}

		sorted := append([]float64(nil), fitnesses...)
		sort.Float64s(sorted)

		var wantBest float64
		var wantTopK []float64
		if direction == Minimize {
			wantBest = sorted[0]
			wantTopK = sorted[:k]
		} else {
			wantBest = sorted[len(sorted)-1]
			wantTopK = sorted[len(sorted)-k:]
		}

		best, ok := r.Best()
		if !ok || best.Fitness != wantBest {
			t.Fatalf("Best() = %v, %v, want %v", best, ok, wantBest)
		}

		gotTopK := make([]float64, 0, k)
		for _, e := range r.Entries() {
			gotTopK = append(gotTopK, e.Fitness)
		}
		sort.Float64s(gotTopK)
		for i := range wantTopK {
			if gotTopK[i] != wantTopK[i] {
				t.Fatalf("retained set = %v, want %v", gotTopK, wantTopK)
			}
		}
	}
}

// TestRankingExcludesHookInvalidatedS4 exercises spec.md §8's S4 scenario:
// a pre-hook invalidates every individual with X=true, which must surface
// as the criterion's Invalid sentinel and therefore never occupy a top-K
// slot under Minimize. The pre-hook itself is simulated directly (it is
// native code in the real pipeline; internal/eval's Evaluate wires the
// same substitution once a hook's Context.Result is Invalid) so this test
// isolates the property Ranking is responsible for.
func TestRankingExcludesHookInvalidatedS4(t *testing.T) {
	profile := param.NewProfile([]string{"X"}, []param.Specification{param.NewSwitch()})
	criterion := eval.Minimum

	it := exhaustive.New(profile)
	r := New[*param.Individual](Minimize, 1)
	for {
		ind, ok := it.Next()
		if !ok {
			break
		}
		x, _ := ind.Value("X")
		var fitness float64
		if x.Switch {
			fitness = criterion.Invalid()
		} else {
			fitness = 0
		}
		r.Push(ind, fitness)
	}

	for _, e := range r.Entries() {
		x, _ := e.Value.Value("X")
		if x.Switch {
			t.Fatalf("hook-invalidated individual %v survived in the top-K with fitness %v", e.Value, e.Fitness)
		}
	}
}

func TestRankingEntriesBestFirst(t *testing.T) {
	r := New[string](Maximize, 3)
	r.Push("a", 1)
	r.Push("b", 5)
	r.Push("c", 3)
	entries := r.Entries()
	if len(entries) != 3 || entries[0].Value != "b" {
		t.Fatalf("Entries() = %v, want best-first starting with b", entries)
	}
}
