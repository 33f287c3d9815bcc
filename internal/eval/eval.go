// Package eval implements spec.md §4.H's nine-step evaluate(individual,
// repetitions) pipeline: building a Context, running hooks, compiling and
// caching the per-individual shared object, invoking the runner, and
// reducing repeated measurements through a Criterion.
package eval

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/kerntune/kerntune/internal/abi"
	"github.com/kerntune/kerntune/internal/compiler"
	"github.com/kerntune/kerntune/internal/ffi"
	"github.com/kerntune/kerntune/internal/invoke"
	"github.com/kerntune/kerntune/internal/param"
)

// ErrHookInvalidated names the recovered (not fatal) case of a pre-hook
// setting the Context's result to Invalid before the runner executes.
// Evaluate does not return it: it reports that case as the criterion's
// Invalid sentinel with a nil error.
var ErrHookInvalidated = errors.New("eval: pre-hook invalidated the individual")

// ErrNaN reports a runner that produced NaN, which spec.md §7 always treats
// as fatal to the run.
var ErrNaN = errors.New("eval: runner produced NaN")

// Affinity, if set, runs fn with the evaluator's configured CPU affinity
// applied for its duration (spec.md §4.H step 5.b), restoring the previous
// affinity before returning. It is injected rather than imported directly
// so this package does not depend on internal/control.
type Affinity func(fn func())

// Invoker is the subset of *invoke.Invoker's API the evaluation pipeline
// depends on, narrowed the same way internal/strategy/genetic narrows
// eval.Evaluator to an interface: production code wires a real
// *invoke.Invoker; a test can substitute a fake that manipulates a Context
// directly instead of dlsym-resolving and calling a native function
// pointer.
type Invoker interface {
	CallHelperPre(lib invoke.Library, name string) error
	CallHelperPost(lib invoke.Library, name string) error
	CallHook(lib invoke.Library, name string, ctx *abi.Context) error
	CallRunner(lib invoke.Library, symbol string, ctx *abi.Context) error
}

// Evaluator owns everything spec.md §4.H's pipeline needs to turn an
// Individual into a fitness: the loaded helper and hook libraries, the
// compile driver's static inputs, and a cache of per-individual compiled
// shared objects.
type Evaluator struct {
	Profile *param.Profile
	Invoker Invoker

	HelperLibrary    invoke.Library // nil if no helper is configured
	HelperPreSymbol  string
	HelperPostSymbol string
	HookLibraries    []invoke.Library
	HookPreSymbols   []string
	HookPostSymbols  []string
	RunnerSymbol     string
	CompilerPath     string
	Sources          []string
	BaseCompilerArgs []string
	TempDir          string
	Criterion        Criterion
	Repetitions      int
	WithAffinity     Affinity // optional

	compiled map[string]invoke.Library // individual id -> loaded per-individual library
}

// New constructs an Evaluator. compiled individual libraries are cached for
// the Evaluator's lifetime; call Close on shutdown to dlclose them all.
func New(profile *param.Profile, inv Invoker) *Evaluator {
	return &Evaluator{
		Profile:     profile,
		Invoker:     inv,
		Repetitions: 1,
		compiled:    make(map[string]invoke.Library),
	}
}

// RunHelperPre invokes the configured helper's pre symbol once at startup.
func (e *Evaluator) RunHelperPre() error {
	if e.HelperLibrary == nil || e.HelperPreSymbol == "" {
		return nil
	}
	return e.Invoker.CallHelperPre(e.HelperLibrary, e.HelperPreSymbol)
}

// RunHelperPost invokes the configured helper's post symbol once at
// shutdown.
func (e *Evaluator) RunHelperPost() error {
	if e.HelperLibrary == nil || e.HelperPostSymbol == "" {
		return nil
	}
	return e.Invoker.CallHelperPost(e.HelperLibrary, e.HelperPostSymbol)
}

// Close dlcloses every compiled per-individual library this Evaluator has
// loaded.
func (e *Evaluator) Close() {
	for _, lib := range e.compiled {
		lib.Close()
	}
	e.compiled = make(map[string]invoke.Library)
}

// individualLibraryPath returns <tempdir>/individuals/<id>.so, spec.md
// §4.H step 3 and §9's "caching of compiled individuals."
func (e *Evaluator) individualLibraryPath(id string) string {
	return filepath.Join(e.TempDir, "individuals", id+".so")
}

func (e *Evaluator) resolveHookLibrary(name string) (invoke.Library, error) {
	for _, lib := range e.HookLibraries {
		if invoke.HasSymbol(lib, name) {
			return lib, nil
		}
	}
	return nil, fmt.Errorf("eval: no loaded library exports hook %q", name)
}

// Evaluate runs the full pipeline for individual and returns its
// representative fitness under e.Criterion.
func (e *Evaluator) Evaluate(individual *param.Individual) (float64, error) {
	// Step 1: fresh Context.
	ctx := abi.NewContext(e.Profile, individual, e.TempDir)
	defer ctx.Release()

	// Step 2: pre-hooks, in configured order.
	for _, name := range e.HookPreSymbols {
		lib, err := e.resolveHookLibrary(name)
		if err != nil {
			return 0, err
		}
		if err := e.Invoker.CallHook(lib, name, ctx); err != nil {
			return 0, err
		}
		if ctx.Result.State == abi.Invalid {
			return e.Criterion.Invalid(), nil
		}
	}

	// Step 3/4: resolve or compile the per-individual library, load it,
	// resolve the runner.
	lib, err := e.libraryFor(individual, ctx)
	if err != nil {
		return 0, err
	}
	if !lib.HasSymbol(e.RunnerSymbol) {
		return 0, fmt.Errorf("eval: runner symbol %q not found", e.RunnerSymbol)
	}

	// Step 5: repetitions.
	fitnesses := make([]float64, 0, e.Repetitions)
	for i := 0; i < e.Repetitions; i++ {
		ctx.Result = abi.Result{State: abi.Unknown}
		var callErr error
		call := func() { callErr = e.Invoker.CallRunner(lib, e.RunnerSymbol, ctx) }
		if e.WithAffinity != nil {
			e.WithAffinity(call)
		} else {
			call()
		}
		if callErr != nil {
			return 0, callErr
		}

		switch ctx.Result.State {
		case abi.Invalid:
			return e.Criterion.Invalid(), nil
		case abi.Unknown:
			return 0, fmt.Errorf("eval: runner %q returned without setting a result", e.RunnerSymbol)
		}
		if math.IsNaN(ctx.Result.Value) {
			return 0, fmt.Errorf("%w: individual %s", ErrNaN, individual.ID())
		}
		fitnesses = append(fitnesses, ctx.Result.Value)
	}

	// Step 6 is implicit: the per-individual library stays cached in
	// e.compiled rather than being dropped after every evaluation, since
	// spec.md §9 asks for idempotent recompilation within a run.

	// Step 7: reduce to the representative fitness.
	representative := e.Criterion.Representative(fitnesses)
	ctx.SetValidResult(representative)

	// Step 8: post-hooks, in configured order, may override Result.
	for _, name := range e.HookPostSymbols {
		hookLib, err := e.resolveHookLibrary(name)
		if err != nil {
			return 0, err
		}
		if err := e.Invoker.CallHook(hookLib, name, ctx); err != nil {
			return 0, err
		}
	}

	// Step 9.
	if ctx.Result.State == abi.Invalid {
		return e.Criterion.Invalid(), nil
	}
	return ctx.Result.Value, nil
}

func (e *Evaluator) libraryFor(individual *param.Individual, ctx *abi.Context) (invoke.Library, error) {
	id := individual.ID()
	if lib, ok := e.compiled[id]; ok {
		return lib, nil
	}

	path := e.individualLibraryPath(id)
	if _, err := os.Stat(path); err == nil {
		lib, err := ffi.Load(path)
		if err != nil {
			return nil, fmt.Errorf("eval: loading cached library for %s: %w", id, err)
		}
		e.compiled[id] = lib
		return lib, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("eval: preparing individuals directory: %w", err)
	}

	paramArgs, err := param.CompilerArguments(e.Profile, individual)
	if err != nil {
		return nil, fmt.Errorf("eval: projecting compiler arguments for %s: %w", id, err)
	}

	args := make([]string, 0, len(e.Sources)+len(e.BaseCompilerArgs)+len(ctx.Arguments)+len(paramArgs))
	args = append(args, e.Sources...)
	args = append(args, e.BaseCompilerArgs...)
	args = append(args, ctx.Arguments...)
	args = append(args, paramArgs...)

	lib, err := compiler.Compile(e.CompilerPath, path, args)
	if err != nil {
		return nil, err
	}
	e.compiled[id] = lib
	return lib, nil
}
