// kerntune searches a kernel's compile-time parameter space for the
// configuration that minimizes or maximizes a measured fitness, driving an
// exhaustive or genetic strategy over a native, dynamically-compiled
// runner (spec.md §4.K control plane).
//
// Flag surface grounded on loopy.go's flag block; repeatable options
// (--sources, --helper, --hook, --cores) use a flag.Value accumulator
// since the standard library has no built-in repeatable-flag type and no
// example repo in the pack imports a richer CLI flag library (pflag,
// cobra) to borrow one from — see DESIGN.md.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/kerntune/kerntune/internal/checkpoint"
	"github.com/kerntune/kerntune/internal/config"
	"github.com/kerntune/kerntune/internal/control"
	"github.com/kerntune/kerntune/internal/eval"
	"github.com/kerntune/kerntune/internal/ffi"
	"github.com/kerntune/kerntune/internal/invoke"
	"github.com/kerntune/kerntune/internal/output"
	"github.com/kerntune/kerntune/internal/param"
	"github.com/kerntune/kerntune/internal/ranking"
	"github.com/kerntune/kerntune/internal/strategy/exhaustive"
	"github.com/kerntune/kerntune/internal/strategy/genetic"
	"github.com/kerntune/kerntune/internal/workspace"
)

// stringList accumulates repeated occurrences of a flag into an ordered
// slice, e.g. --hook a.so --hook b.so.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// intList accumulates repeated --cores N flags.
type intList []int

func (l *intList) String() string {
	strs := make([]string, len(*l))
	for i, v := range *l {
		strs[i] = strconv.Itoa(v)
	}
	return strings.Join(strs, ",")
}
func (l *intList) Set(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid core index %q: %w", v, err)
	}
	*l = append(*l, n)
	return nil
}

var (
	sources stringList
	helpers stringList
	hooks   stringList
	cores   intList

	repsFlag     = flag.Int("r", 0, "repetitions per evaluation (0 or less keeps the default of 1)")
	candidates   = flag.Int("candidates", 0, "number of top results to keep; 0 keeps as many as the profile has individuals, or 4096 if that exceeds 2^20")
	continueFile = flag.String("continue", "", "resume from a checkpoint file written by an earlier cancelled run")
	outputFile   = flag.String("output", "results.json", "results document path")
	verbose      = flag.Bool("v", false, "verbose logging")
)

func init() {
	flag.Var(&sources, "sources", "kernel source file to compile per individual (repeatable)")
	flag.Var(&helpers, "helper", "path to a precompiled helper shared object (repeatable; only the first is loaded)")
	flag.Var(&hooks, "hook", "path to a precompiled hook shared object (repeatable)")
	flag.Var(&cores, "cores", "CPU core index to pin the runner to (repeatable)")
}

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: kerntune [flags] configuration-file")
		flag.PrintDefaults()
		os.Exit(2)
	}

	logger := log.New(os.Stderr, "kerntune: ", log.LstdFlags)
	if err := run(logger, flag.Arg(0)); err != nil {
		logger.Fatal(err)
	}
}

func run(logger *log.Logger, configPath string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("reading configuration: %w", err)
	}
	cfg, err := config.Load(data)
	if err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	tempDir, err := os.MkdirTemp("", "kerntune-")
	if err != nil {
		return fmt.Errorf("creating temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	ws := workspace.New()
	inv := invoke.New(ws)
	defer inv.Close()

	ev := eval.New(cfg.Profile, inv)
	ev.RunnerSymbol = cfg.Runner
	ev.CompilerPath = cfg.Compiler
	ev.Sources = sources
	ev.BaseCompilerArgs = cfg.CompilerArguments
	ev.TempDir = tempDir
	ev.Criterion = cfg.Criterion
	ev.Repetitions = 1
	if *repsFlag > 0 {
		ev.Repetitions = *repsFlag
	}
	if len(cores) > 0 {
		ev.WithAffinity = func(fn func()) { control.WithAffinity(cores, fn) }
	}
	defer ev.Close()

	if cfg.Helper.Pre != "" || cfg.Helper.Post != "" {
		if len(helpers) == 0 {
			return fmt.Errorf("configuration names a helper but no --helper library was given")
		}
		lib, err := ffi.Load(helpers[0])
		if err != nil {
			return fmt.Errorf("loading helper library: %w", err)
		}
		defer lib.Close()
		ev.HelperLibrary = lib
		ev.HelperPreSymbol = cfg.Helper.Pre
		ev.HelperPostSymbol = cfg.Helper.Post
	}
	for _, path := range hooks {
		lib, err := ffi.Load(path)
		if err != nil {
			return fmt.Errorf("loading hook library %s: %w", path, err)
		}
		defer lib.Close()
		ev.HookLibraries = append(ev.HookLibraries, lib)
	}
	ev.HookPreSymbols = cfg.Hooks.Pre
	ev.HookPostSymbols = cfg.Hooks.Post

	if err := ev.RunHelperPre(); err != nil {
		return fmt.Errorf("helper pre: %w", err)
	}
	defer func() {
		if err := ev.RunHelperPost(); err != nil {
			logger.Printf("helper post: %v", err)
		}
	}()

	canceler := control.NewCanceler()
	defer canceler.Stop()

	rankingCapacity := *candidates
	if rankingCapacity <= 0 {
		rankingCapacity = cfg.Profile.Len()
		if rankingCapacity <= 0 || rankingCapacity > 1<<20 {
			rankingCapacity = 1 << 12
		}
	}
	r := ranking.New[*param.Individual](cfg.Direction, rankingCapacity)

	var resumed checkpoint.Checkpoint
	haveResume := false
	if *continueFile != "" {
		data, err := os.ReadFile(*continueFile)
		if err != nil {
			return fmt.Errorf("reading checkpoint: %w", err)
		}
		resumed, err = checkpoint.Unmarshal(data)
		if err != nil {
			return fmt.Errorf("checkpoint invalid: %w", err)
		}
		haveResume = true
	}

	switch cfg.StrategyKind {
	case config.StrategyExhaustive:
		return runExhaustive(logger, cfg, ev, r, canceler, haveResume, resumed)
	case config.StrategyGenetic:
		return runGenetic(logger, cfg, ev, r, canceler, haveResume, resumed)
	default:
		return fmt.Errorf("unknown strategy kind %q", cfg.StrategyKind)
	}
}

func runExhaustive(logger *log.Logger, cfg *config.Config, ev *eval.Evaluator, r *ranking.Ranking[*param.Individual], canceler *control.Canceler, haveResume bool, resumed checkpoint.Checkpoint) error {
	var it *exhaustive.Iterator
	if haveResume {
		if resumed.Kind != checkpoint.KindExhaustive {
			return fmt.Errorf("checkpoint is not an exhaustive-strategy checkpoint")
		}
		var err error
		it, err = exhaustive.Resume(cfg.Profile, *resumed.Exhaustive)
		if err != nil {
			return fmt.Errorf("resuming exhaustive strategy: %w", err)
		}
	} else {
		it = exhaustive.New(cfg.Profile)
	}

	for {
		individual, ok := it.Next()
		if !ok {
			break
		}
		var fitness float64
		var evalErr error
		cancelled := canceler.SafePoint(func() {
			fitness, evalErr = ev.Evaluate(individual)
		})
		if evalErr != nil {
			return fmt.Errorf("evaluating individual: %w", evalErr)
		}
		r.Push(individual, fitness)
		if *verbose {
			display, _ := param.Display(cfg.Profile, individual)
			logger.Printf("%s -> %v", display, fitness)
		}
		if cancelled {
			return writeCheckpoint(checkpoint.FromExhaustive(it.State()))
		}
	}

	return writeResults(cfg, r)
}

func runGenetic(logger *log.Logger, cfg *config.Config, ev *eval.Evaluator, r *ranking.Ranking[*param.Individual], canceler *control.Canceler, haveResume bool, resumed checkpoint.Checkpoint) error {
	direction := cfg.Direction
	rng := rand.New(rand.NewSource(1))

	var engine *genetic.Engine
	var err error
	if haveResume {
		if resumed.Kind != checkpoint.KindGenetic {
			return fmt.Errorf("checkpoint is not a genetic-strategy checkpoint")
		}
		engine, err = genetic.Resume(cfg.Profile, direction, ev, r, rng, *resumed.Genetic)
	} else {
		engine, err = genetic.New(cfg.Profile, direction, ev, r, rng, cfg.GeneticOptions)
	}
	if err != nil {
		return fmt.Errorf("initializing genetic strategy: %w", err)
	}

	var history []genetic.GenerationSummary
	for {
		// engine.Step brackets each population member's evaluation and
		// each child's evaluation in its own canceler.SafePoint call, per
		// spec.md §5's safe-point granularity, rather than treating the
		// whole generation as a single safe point.
		summary, done, cancelled, err := engine.Step(canceler.SafePoint)
		if err != nil {
			return fmt.Errorf("stepping genetic strategy: %w", err)
		}
		history = append(history, summary)
		if *verbose {
			logger.Printf("generation best=%v worst=%v overall=%s(%v)", summary.CurrentBest, summary.CurrentWorst, summary.BestDisplay, summary.BestFitness)
		}
		if cancelled {
			return writeCheckpoint(checkpoint.FromGenetic(engine.State()))
		}
		if done {
			break
		}
	}

	if err := writeResults(cfg, r); err != nil {
		return err
	}
	base := strings.TrimSuffix(*outputFile, ".json")
	if err := output.WriteHistory(base+".history.json", history); err != nil {
		return err
	}
	if len(history) > 0 {
		if err := output.ConvergencePlot(base+".convergence.png", history); err != nil {
			logger.Printf("convergence plot: %v", err)
		}
	}
	return nil
}

func writeCheckpoint(c checkpoint.Checkpoint) error {
	data, err := checkpoint.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding checkpoint: %w", err)
	}
	return os.WriteFile("kerntune.checkpoint.json", data, 0o644)
}

func writeResults(cfg *config.Config, r *ranking.Ranking[*param.Individual]) error {
	pairs, err := output.Results(cfg.Profile, r)
	if err != nil {
		return fmt.Errorf("building results: %w", err)
	}
	if err := output.WriteResults(*outputFile, pairs); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	return nil
}
