package config

import (
	"strings"
	"testing"

	"github.com/kerntune/kerntune/internal/ranking"
)

const exhaustiveDoc = `{
	"direction": "minimize",
	"criterion": "median",
	"strategy": {"Exhaustive": {}},
	"profile": {
		"threads": {"type": "integer", "space": {"variant": "sequence", "lo": 1, "hi": 8}},
		"vectorize": {"type": "switch"}
	},
	"helper": {"pre": "helper_pre", "post": "helper_post"},
	"runner": "run_kernel",
	"hooks": {"pre": [], "post": []},
	"compiler": "/usr/bin/cc",
	"compiler_arguments": ["-O3"]
}`

const geneticDoc = `{
	"direction": "maximize",
	"criterion": "maximum",
	"strategy": {"Genetic": {
		"initial": 32,
		"remain": 2,
		"generate": 8,
		"delete": 8,
		"infuse": 0,
		"terminate": {"limit": 50},
		"mutate": {"probability": 0.1, "variation": 0.1}
	}},
	"profile": {
		"threads": {"type": "integer", "space": {"variant": "sequence", "lo": 1, "hi": 8}}
	},
	"helper": {"pre": "", "post": ""},
	"runner": "run_kernel",
	"hooks": {"pre": [], "post": []},
	"compiler": "/usr/bin/cc",
	"compiler_arguments": []
}`

func TestLoadExhaustive(t *testing.T) {
	cfg, err := Load([]byte(exhaustiveDoc))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.StrategyKind != StrategyExhaustive {
		t.Fatalf("StrategyKind = %v, want Exhaustive", cfg.StrategyKind)
	}
	if cfg.Direction != ranking.Minimize {
		t.Fatalf("Direction = %v, want Minimize", cfg.Direction)
	}
	want := []string{"threads", "vectorize"}
	if got := cfg.Profile.Names(); len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("Profile.Names() = %v, want %v (sorted)", got, want)
	}
}

func TestLoadGenetic(t *testing.T) {
	cfg, err := Load([]byte(geneticDoc))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.StrategyKind != StrategyGenetic {
		t.Fatalf("StrategyKind = %v, want Genetic", cfg.StrategyKind)
	}
	if cfg.GeneticOptions.Initial != 32 {
		t.Fatalf("Initial = %d, want 32", cfg.GeneticOptions.Initial)
	}
}

func TestLoadRejectsInvalidGeneticOptions(t *testing.T) {
	bad := strings.Replace(geneticDoc, `"initial": 32`, `"initial": 1`, 1)
	if _, err := Load([]byte(bad)); err == nil {
		t.Fatal("Load should reject initial <= 1")
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	bad := strings.Replace(exhaustiveDoc, `"unit"`, `"unit"`, 1) // baseline has none
	bad = strings.Replace(bad, `"direction"`, `"bogus_field": true, "direction"`, 1)
	if _, err := Load([]byte(bad)); err == nil {
		t.Fatal("Load should reject unknown top-level fields")
	}
}

func TestLoadRejectsMissingStrategy(t *testing.T) {
	bad := strings.Replace(exhaustiveDoc, `"strategy": {"Exhaustive": {}},`, "", 1)
	if _, err := Load([]byte(bad)); err == nil {
		t.Fatal("Load should reject a document with no strategy")
	}
}

func TestLoadRejectsEmptyProfile(t *testing.T) {
	bad := strings.Replace(exhaustiveDoc, `"profile": {
		"threads": {"type": "integer", "space": {"variant": "sequence", "lo": 1, "hi": 8}},
		"vectorize": {"type": "switch"}
	},`, `"profile": {},`, 1)
	if _, err := Load([]byte(bad)); err == nil {
		t.Fatal("Load should reject an empty profile")
	}
}
