// Package genetic implements spec.md §4.J: population initialization, the
// per-generation evaluate/rank/select/breed/replace/infuse loop, stochastic
// universal sampling, crossover and mutation, and the Exponential option
// schedulers.
//
// Grounded on original_source/src/bin/autotuner/main.rs's generation loop
// (hole/parent roulette construction, the `Direction`-dependent
// min/max-substitution formulas) and
// original_source/src/strategies/genetic/mod.rs (GenerationSummary,
// crossover/mutate, SUS), generalized to the richer `remain`/`delete`/
// `infuse`/scheduler surface spec.md §4.J and §6 add.
package genetic

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/kerntune/kerntune/internal/param"
	"github.com/kerntune/kerntune/internal/ranking"
	"gonum.org/v1/gonum/floats"
)

// Direction mirrors ranking.Direction; genetic re-exports it so callers
// configuring a strategy don't need to import internal/ranking directly.
type Direction = ranking.Direction

const (
	Minimize = ranking.Minimize
	Maximize = ranking.Maximize
)

// Evaluator is the subset of eval.Evaluator the genetic strategy depends
// on, narrowed to ease testing with a fake.
type Evaluator interface {
	Evaluate(individual *param.Individual) (float64, error)
}

// GenerationSummary records one generation's convergence snapshot, written
// to the optional history document (spec.md §4.N).
type GenerationSummary struct {
	Timestamp    uint64  `json:"timestamp"`
	BestDisplay  string  `json:"best_overall_display"`
	BestFitness  float64 `json:"best_overall_fitness"`
	CurrentBest  float64 `json:"current_best"`
	CurrentWorst float64 `json:"current_worst"`
}

// member is one population slot: an Individual and its cached fitness, if
// already known for the generation about to be evaluated.
type member struct {
	individual *param.Individual
	fitness    float64
	cached     bool
}

// State is the serializable position of an in-progress genetic search:
// generation and endurance counters, the current population, and the
// current (possibly-scheduled) option values. Per spec.md §4.M/§9, the
// accumulated Ranking and overall-best value are not preserved across a
// checkpoint resume.
type State struct {
	Generation int                        `json:"generation"`
	Endurance  int                        `json:"endurance"`
	Population []map[string]param.Value   `json:"population"`
	Options    Options                    `json:"options"`
}

// Engine runs the genetic strategy's generation loop against a fixed
// Profile and Evaluator.
type Engine struct {
	Profile   *param.Profile
	Direction Direction
	Evaluator Evaluator
	Ranking   *ranking.Ranking[*param.Individual]
	Rng       *rand.Rand

	options    Options
	generation int
	endurance  int
	population []member

	overallBest     float64
	haveOverallBest bool
}

// New builds an Engine and samples its initial population (spec.md §4.J
// "Initialization"). Options must already satisfy Options.Validate.
func New(profile *param.Profile, direction Direction, evaluator Evaluator, r *ranking.Ranking[*param.Individual], rng *rand.Rand, options Options) (*Engine, error) {
	e := &Engine{
		Profile:    profile,
		Direction:  direction,
		Evaluator:  evaluator,
		Ranking:    r,
		Rng:        rng,
		options:    options,
		generation: 1,
	}
	population := make([]member, 0, options.Initial)
	for len(population) < options.Initial {
		ind, err := param.Random(profile, rng)
		if err != nil {
			return nil, err
		}
		fitness, err := evaluator.Evaluate(ind)
		if err != nil {
			return nil, err
		}
		if math.IsInf(fitness, 0) {
			// spec.md §4.J step 1: resample infeasible initial members
			// without counting them as an evaluation.
			continue
		}
		population = append(population, member{individual: ind, fitness: fitness})
	}
	e.population = population
	return e, nil
}

// Resume rebuilds an Engine from a checkpointed State.
func Resume(profile *param.Profile, direction Direction, evaluator Evaluator, r *ranking.Ranking[*param.Individual], rng *rand.Rand, state State) (*Engine, error) {
	population := make([]member, len(state.Population))
	for i, values := range state.Population {
		ind, err := param.NewIndividual(profile, values)
		if err != nil {
			return nil, fmt.Errorf("genetic: resuming population member %d: %w", i, err)
		}
		population[i] = member{individual: ind}
	}
	return &Engine{
		Profile:    profile,
		Direction:  direction,
		Evaluator:  evaluator,
		Ranking:    r,
		Rng:        rng,
		options:    state.Options,
		generation: state.Generation,
		endurance:  state.Endurance,
		population: population,
	}, nil
}

// State returns the current, serializable position.
func (e *Engine) State() State {
	population := make([]map[string]param.Value, len(e.population))
	for i, m := range e.population {
		values := make(map[string]param.Value, len(e.Profile.Names()))
		for _, name := range e.Profile.Names() {
			v, _ := m.individual.Value(name)
			values[name] = v
		}
		population[i] = values
	}
	return State{
		Generation: e.generation,
		Endurance:  e.endurance,
		Population: population,
		Options:    e.options,
	}
}

// minMaxFeasible returns the numeric minimum and maximum fitness among
// non-infinite population members, or (+Inf, -Inf) if none are feasible —
// matching original_source/src/bin/autotuner/main.rs's fold defaults.
func minMaxFeasible(population []member) (min, max float64) {
	feasible := make([]float64, 0, len(population))
	for _, m := range population {
		if !math.IsInf(m.fitness, 0) {
			feasible = append(feasible, m.fitness)
		}
	}
	if len(feasible) == 0 {
		return math.Inf(1), math.Inf(-1)
	}
	return floats.Min(feasible), floats.Max(feasible)
}

// SafePoint brackets one evaluation's body the way control.Canceler.SafePoint
// does: run fn, then report whether a cancel is now pending. Step takes this
// as a parameter rather than importing internal/control directly, the same
// seam internal/eval's Affinity uses.
type SafePoint func(fn func()) bool

// noSafePoint never reports a pending cancel; used where a caller does not
// need cancellation granularity (tests, checkpoint-less callers).
func noSafePoint(fn func()) bool {
	fn()
	return false
}

// Step runs one full generation (spec.md §4.J, steps 1-11) and reports
// whether termination has been reached. safePoint brackets each individual
// evaluation (step 1) and each child's evaluation (step 8) separately, per
// spec.md §5's "safe points are the boundaries between one evaluation and
// the next and between one child and the next" — a cancellation reported
// mid-generation aborts Step immediately. A cancel during step 1 returns
// before the Ranking push; a cancel during step 8 returns after the Ranking
// push and the endurance/generation updates of steps 2-5. Either way it
// returns before the replace and infuse steps, so the caller's subsequent
// State() checkpoint holds the population as it stood at the top of this Step.
func (e *Engine) Step(safePoint SafePoint) (GenerationSummary, bool, bool, error) {
	// Step 1: evaluate every member not already cached from child
	// generation in the previous Step call.
	for i := range e.population {
		if e.population[i].cached {
			e.population[i].cached = false
			continue
		}
		var fitness float64
		var evalErr error
		cancelled := safePoint(func() {
			fitness, evalErr = e.Evaluator.Evaluate(e.population[i].individual)
		})
		if evalErr != nil {
			return GenerationSummary{}, false, false, evalErr
		}
		e.population[i].fitness = fitness
		if cancelled {
			return GenerationSummary{}, false, true, nil
		}
	}

	// Step 2: push into the global Ranking.
	for _, m := range e.population {
		e.Ranking.Push(m.individual, m.fitness)
	}

	// Step 3: boundaries and summary.
	min, max := minMaxFeasible(e.population)
	var currentBest, currentWorst float64
	if e.Direction == Minimize {
		currentBest, currentWorst = min, max
	} else {
		currentBest, currentWorst = max, min
	}
	best, hasBest := e.Ranking.Best()
	summary := GenerationSummary{Timestamp: uint64(time.Now().Unix()), CurrentBest: currentBest, CurrentWorst: currentWorst}
	if hasBest {
		display, _ := param.Display(e.Profile, best.Value)
		summary.BestDisplay = display
		summary.BestFitness = best.Fitness
	}

	// Step 4: endurance.
	improved := !e.haveOverallBest
	if e.haveOverallBest {
		if e.Direction == Minimize {
			improved = currentBest < e.overallBest
		} else {
			improved = currentBest > e.overallBest
		}
	}
	if improved {
		e.endurance = 0
		e.overallBest = currentBest
		e.haveOverallBest = true
	} else {
		e.endurance++
	}

	// Step 5: termination.
	if e.options.Terminate.Endure != nil && e.endurance >= *e.options.Terminate.Endure {
		return summary, true, false, nil
	}
	e.generation++
	if e.options.Terminate.Limit != nil && e.generation > *e.options.Terminate.Limit {
		return summary, true, false, nil
	}

	// Step 6: select holes.
	holes := e.selectHoles(min, max)

	// Step 7: select parents.
	parents := e.selectParents(min, max)

	// Step 8: generate children, retrying infeasible ones at the same
	// index without consuming a hole. Each child's evaluation is its own
	// safe point, whether or not it turns out feasible.
	generate := e.options.Generate.Int()
	children := make([]member, generate)
	for i := 0; i < generate; i++ {
		for {
			a := e.population[parents[2*i]].individual
			b := e.population[parents[2*i+1]].individual
			values := Crossover(e.Profile, a, b, e.Rng)
			Mutate(e.Profile, e.options.Mutate, values, e.Rng)
			child, err := param.NewIndividual(e.Profile, values)
			if err != nil {
				return GenerationSummary{}, false, false, err
			}
			var fitness float64
			var evalErr error
			cancelled := safePoint(func() {
				fitness, evalErr = e.Evaluator.Evaluate(child)
			})
			if evalErr != nil {
				return GenerationSummary{}, false, false, evalErr
			}
			if cancelled {
				return GenerationSummary{}, false, true, nil
			}
			if math.IsInf(fitness, 0) {
				continue
			}
			children[i] = member{individual: child, fitness: fitness, cached: true}
			break
		}
	}

	// Step 9: replace.
	n := len(children)
	if len(holes) < n {
		n = len(holes)
	}
	for i := 0; i < n; i++ {
		e.population[holes[i]] = children[i]
	}
	if len(children) > len(holes) {
		e.population = append(e.population, children[len(holes):]...)
	} else if len(holes) > len(children) {
		toDelete := make(map[int]bool, len(holes)-len(children))
		for _, h := range holes[len(children):] {
			toDelete[h] = true
		}
		kept := e.population[:0:0]
		for i, m := range e.population {
			if !toDelete[i] {
				kept = append(kept, m)
			}
		}
		e.population = kept
	}

	// Step 10: infuse.
	infuse := e.options.Infuse.Int()
	for i := 0; i < infuse; i++ {
		ind, err := param.Random(e.Profile, e.Rng)
		if err != nil {
			return GenerationSummary{}, false, false, err
		}
		e.population = append(e.population, member{individual: ind})
	}

	// Step 11: advance schedulers.
	e.options.Advance()

	return summary, false, false, nil
}

// selectHoles implements spec.md §4.J step 6.
func (e *Engine) selectHoles(min, max float64) []int {
	entries := make([]rouletteEntry, len(e.population))
	for i, m := range e.population {
		entries[i] = rouletteEntry{weight: m.fitness, index: i}
	}

	// Elitism: sort by direction (best first) on raw fitness and protect
	// the `remain` best from deletion.
	sorted := append([]rouletteEntry(nil), entries...)
	better := func(a, b float64) bool {
		if e.Direction == Minimize {
			return a < b
		}
		return a > b
	}
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && better(sorted[j].weight, sorted[j-1].weight); j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	remain := e.options.Remain
	if remain > len(sorted) {
		remain = len(sorted)
	}
	elite := make(map[int]bool, remain)
	for _, entry := range sorted[:remain] {
		elite[entry.index] = true
	}

	candidates := make([]rouletteEntry, 0, len(entries)-remain)
	total := 0.0
	for _, entry := range entries {
		if elite[entry.index] {
			continue
		}
		if math.IsInf(entry.weight, 0) {
			entry.weight = max
		} else if e.Direction == Maximize {
			entry.weight = max - entry.weight
		}
		total += entry.weight
		candidates = append(candidates, entry)
	}
	e.Rng.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })

	if len(candidates) == 0 || e.options.Delete.Int() == 0 {
		return nil
	}
	if !(total > 0) {
		// No candidate outweighs another: select uniformly.
		for i := range candidates {
			candidates[i].weight = 1
		}
	}
	return stochasticUniversalSampling(candidates, e.options.Delete.Int(), e.Rng)
}

// selectParents implements spec.md §4.J step 7.
func (e *Engine) selectParents(min, max float64) []int {
	candidates := make([]rouletteEntry, len(e.population))
	total := 0.0
	for i, m := range e.population {
		weight := m.fitness
		switch {
		case math.IsInf(weight, 0):
			weight = min
		case e.Direction == Minimize:
			weight = max - weight
		}
		total += weight
		candidates[i] = rouletteEntry{weight: weight, index: i}
	}
	if !(total > 0) {
		// No member outweighs another (e.g. equal fitness): select uniformly.
		for i := range candidates {
			candidates[i].weight = 1
		}
	}
	e.Rng.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
	return stochasticUniversalSampling(candidates, 2*e.options.Generate.Int(), e.Rng)
}
