// Package config implements spec.md §4.L: parsing the declarative
// configuration document into the runtime structs every other component
// consumes — a param.Profile, a ranking.Direction, an eval.Criterion, and
// either exhaustive or genetic strategy options.
//
// Grounded on loopy.go's flag-based CLI for the surrounding option surface
// (see cmd/kerntune) and on encoding/json's standard decode-into-struct
// idiom for the document itself; original_source has no analogous loader
// since the Rust binary took its configuration as compiled-in constants.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/kerntune/kerntune/internal/eval"
	"github.com/kerntune/kerntune/internal/param"
	"github.com/kerntune/kerntune/internal/ranking"
	"github.com/kerntune/kerntune/internal/strategy/genetic"
)

// StrategyKind discriminates the configured search strategy.
type StrategyKind string

const (
	StrategyExhaustive StrategyKind = "exhaustive"
	StrategyGenetic    StrategyKind = "genetic"
)

// Helper names the kernel's pre/post helper symbols (spec.md §6's
// `helper: {pre, post}`).
type Helper struct {
	Pre  string `json:"pre"`
	Post string `json:"post"`
}

// Hooks names the kernel's per-evaluation hook symbols, run in the
// configured order before and after the runner.
type Hooks struct {
	Pre  []string `json:"pre"`
	Post []string `json:"post"`
}

// Document is the on-disk configuration document's JSON shape, decoded
// verbatim before being resolved into runtime structs by Load.
type Document struct {
	Unit      string                          `json:"unit,omitempty"`
	Direction string                          `json:"direction"`
	Criterion string                          `json:"criterion"`
	Strategy  json.RawMessage                 `json:"strategy"`
	Profile   map[string]param.Specification `json:"profile"`

	Helper Helper `json:"helper"`
	Runner string `json:"runner"`
	Hooks  Hooks  `json:"hooks"`

	Compiler          string   `json:"compiler"`
	CompilerArguments []string `json:"compiler_arguments"`
}

// strategyEnvelope matches the tagged-union shape `{Exhaustive:{}} |
// {Genetic:{...}}` described in spec.md §6.
type strategyEnvelope struct {
	Exhaustive *struct{}       `json:"Exhaustive,omitempty"`
	Genetic    *genetic.Options `json:"Genetic,omitempty"`
}

// Config is the resolved, validated configuration: every runtime struct
// the control plane needs to build an Autotuner.
type Config struct {
	Unit      string
	Direction ranking.Direction
	Criterion eval.Criterion

	StrategyKind    StrategyKind
	GeneticOptions  genetic.Options // valid only when StrategyKind == StrategyGenetic

	Profile *param.Profile

	Helper Helper
	Runner string
	Hooks  Hooks

	Compiler          string
	CompilerArguments []string
}

// Load decodes and validates a configuration document from data, rejecting
// unknown fields the way a typo in a hand-written document should be
// caught rather than silently ignored.
func Load(data []byte) (*Config, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return resolve(doc)
}

func resolve(doc Document) (*Config, error) {
	direction, err := parseDirection(doc.Direction)
	if err != nil {
		return nil, err
	}
	criterion, err := eval.ParseCriterion(doc.Criterion)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	profile, err := buildProfile(doc.Profile)
	if err != nil {
		return nil, err
	}

	if doc.Runner == "" {
		return nil, fmt.Errorf("config: runner symbol name is required")
	}
	if doc.Compiler == "" {
		return nil, fmt.Errorf("config: compiler path is required")
	}

	kind, options, err := parseStrategy(doc.Strategy)
	if err != nil {
		return nil, err
	}

	return &Config{
		Unit:              doc.Unit,
		Direction:         direction,
		Criterion:         criterion,
		StrategyKind:      kind,
		GeneticOptions:    options,
		Profile:           profile,
		Helper:            doc.Helper,
		Runner:            doc.Runner,
		Hooks:             doc.Hooks,
		Compiler:          doc.Compiler,
		CompilerArguments: doc.CompilerArguments,
	}, nil
}

func parseDirection(s string) (ranking.Direction, error) {
	switch s {
	case "minimize":
		return ranking.Minimize, nil
	case "maximize":
		return ranking.Maximize, nil
	default:
		return 0, fmt.Errorf("config: unknown direction %q", s)
	}
}

// buildProfile resolves the document's name->Specification map into an
// ordered Profile. JSON object key order is not preserved by
// encoding/json, so names are sorted lexicographically: Profile order must
// be stable across a run and its checkpoints, and alphabetical order is
// the only deterministic choice available once the document has round
// tripped through a map.
func buildProfile(specs map[string]param.Specification) (*param.Profile, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("config: profile must declare at least one parameter")
	}
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)
	ordered := make([]param.Specification, len(names))
	for i, name := range names {
		ordered[i] = specs[name]
	}
	return param.NewProfile(names, ordered), nil
}

func parseStrategy(raw json.RawMessage) (StrategyKind, genetic.Options, error) {
	if len(raw) == 0 {
		return "", genetic.Options{}, fmt.Errorf("config: strategy is required")
	}
	var env strategyEnvelope
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&env); err != nil {
		return "", genetic.Options{}, fmt.Errorf("config: strategy: %w", err)
	}
	switch {
	case env.Exhaustive != nil && env.Genetic != nil:
		return "", genetic.Options{}, fmt.Errorf("config: strategy names both Exhaustive and Genetic")
	case env.Exhaustive != nil:
		return StrategyExhaustive, genetic.Options{}, nil
	case env.Genetic != nil:
		if err := env.Genetic.Validate(); err != nil {
			return "", genetic.Options{}, fmt.Errorf("config: %w", err)
		}
		return StrategyGenetic, *env.Genetic, nil
	default:
		return "", genetic.Options{}, fmt.Errorf("config: strategy names neither Exhaustive nor Genetic")
	}
}
