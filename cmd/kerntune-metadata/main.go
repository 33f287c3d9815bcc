// kerntune-metadata interactively builds a kerntune configuration document,
// the way original_source's generate-metadata.rs walks a user through a
// kernel's parameter profile before writing it out.
//
// original_source reaches for the `inquire` prompt library; no example
// repo in the pack imports an interactive-prompt dependency (promptui,
// survey, bubbletea), so this tool prompts over a plain bufio.Scanner on
// stdin instead — see DESIGN.md.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kerntune/kerntune/internal/config"
	"github.com/kerntune/kerntune/internal/param"
	"github.com/kerntune/kerntune/internal/strategy/genetic"
)

func main() {
	in := bufio.NewScanner(os.Stdin)
	if err := build(in); err != nil {
		fmt.Fprintln(os.Stderr, "kerntune-metadata:", err)
		os.Exit(1)
	}
}

func build(in *bufio.Scanner) error {
	names := make([]string, 0)
	specs := make(map[string]param.Specification)

	fmt.Println("Enter parameter definitions. Leave the name blank to finish.")
	for {
		name := ask(in, "Parameter name")
		if name == "" {
			break
		}
		typ := strings.ToLower(ask(in, "Type (integer/switch/keyword)"))
		switch typ {
		case "integer":
			lo := askInt(in, "Minimum")
			hi := askInt(in, "Maximum")
			transformer := ask(in, "Transformer expression (optional, use $x for the value)")
			specs[name] = param.NewIntegerSequence(int32(lo), int32(hi), transformer)
		case "switch":
			specs[name] = param.NewSwitch()
		case "keyword":
			words := strings.Fields(ask(in, "Keywords (space separated)"))
			specs[name] = param.NewKeyword(words)
		default:
			return fmt.Errorf("unknown parameter type %q", typ)
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return fmt.Errorf("at least one parameter is required")
	}

	direction := strings.ToLower(ask(in, "Direction (minimize/maximize)"))
	criterion := strings.ToLower(ask(in, "Criterion (minimum/maximum/median)"))

	strategyKind := strings.ToLower(ask(in, "Strategy (exhaustive/genetic)"))
	var strategy json.RawMessage
	switch strategyKind {
	case "exhaustive":
		strategy = json.RawMessage(`{"Exhaustive":{}}`)
	case "genetic":
		options := genetic.Options{
			Initial: askInt(in, "Initial population size"),
			Remain:  askInt(in, "Elites to retain each generation"),
			Generate: genetic.Constant(float64(askInt(in, "Children generated each generation"))),
			Delete:   genetic.Constant(float64(askInt(in, "Members deleted each generation"))),
			Infuse:   genetic.Constant(float64(askInt(in, "Fresh individuals infused each generation"))),
			Mutate:   genetic.DefaultMutationOptions(),
		}
		if limit := askInt(in, "Generation limit (0 for none)"); limit > 0 {
			options.Terminate.Limit = &limit
		}
		payload, err := json.Marshal(struct {
			Genetic genetic.Options `json:"Genetic"`
		}{options})
		if err != nil {
			return err
		}
		strategy = payload
	default:
		return fmt.Errorf("unknown strategy %q", strategyKind)
	}

	helper := config.Helper{
		Pre:  ask(in, "Helper pre-function symbol (optional)"),
		Post: ask(in, "Helper post-function symbol (optional)"),
	}
	runner := ask(in, "Runner symbol")
	hooks := config.Hooks{
		Pre:  strings.Fields(ask(in, "Pre-hook symbols (space separated, optional)")),
		Post: strings.Fields(ask(in, "Post-hook symbols (space separated, optional)")),
	}
	compiler := ask(in, "Compiler path")
	compilerArgs := strings.Fields(ask(in, "Base compiler arguments (space separated, optional)"))
	unit := ask(in, "Result unit (optional)")

	doc := struct {
		Unit              string                          `json:"unit,omitempty"`
		Direction         string                          `json:"direction"`
		Criterion         string                          `json:"criterion"`
		Strategy          json.RawMessage                 `json:"strategy"`
		Profile           map[string]param.Specification `json:"profile"`
		Helper            config.Helper                   `json:"helper"`
		Runner            string                          `json:"runner"`
		Hooks             config.Hooks                    `json:"hooks"`
		Compiler          string                          `json:"compiler"`
		CompilerArguments []string                        `json:"compiler_arguments"`
	}{
		Unit:              unit,
		Direction:         direction,
		Criterion:         criterion,
		Strategy:          strategy,
		Profile:           specs,
		Helper:            helper,
		Runner:            runner,
		Hooks:             hooks,
		Compiler:          compiler,
		CompilerArguments: compilerArgs,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	filename := ask(in, "Save as")
	if filename == "" {
		filename = "kernel.meta"
	}
	return os.WriteFile(filename, data, 0o644)
}

func ask(in *bufio.Scanner, prompt string) string {
	fmt.Printf("%s: ", prompt)
	if !in.Scan() {
		return ""
	}
	return strings.TrimSpace(in.Text())
}

func askInt(in *bufio.Scanner, prompt string) int {
	for {
		text := ask(in, prompt)
		if text == "" {
			return 0
		}
		n, err := strconv.Atoi(text)
		if err != nil {
			fmt.Println("please enter an integer")
			continue
		}
		return n
	}
}
