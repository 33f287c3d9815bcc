package genetic

import (
	"math/rand"
	"testing"

	"github.com/kerntune/kerntune/internal/param"
)

func richProfile() *param.Profile {
	return param.NewProfile(
		[]string{"Seq", "Cand", "Sw", "Kw"},
		[]param.Specification{
			param.NewIntegerSequence(0, 100, ""),
			param.NewIntegerCandidates([]int32{2, 4, 8, 16}, ""),
			param.NewSwitch(),
			param.NewKeyword([]string{"a", "b", "c"}),
		},
	)
}

func TestCrossoverStaysInDomain(t *testing.T) {
	profile := richProfile()
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		a, err := param.Random(profile, rng)
		if err != nil {
			t.Fatal(err)
		}
		b, err := param.Random(profile, rng)
		if err != nil {
			t.Fatal(err)
		}
		values := Crossover(profile, a, b, rng)
		child, err := param.NewIndividual(profile, values)
		if err != nil {
			t.Fatalf("crossover produced an out-of-domain individual: %v", err)
		}
		_ = child
	}
}

func TestMutationStaysInDomainAndClamps(t *testing.T) {
	profile := richProfile()
	rng := rand.New(rand.NewSource(2))
	options := MutationOptions{Probability: Constant(1.0), Variation: Constant(0.1)}
	for i := 0; i < 500; i++ {
		ind, err := param.Random(profile, rng)
		if err != nil {
			t.Fatal(err)
		}
		values := make(map[string]param.Value, len(profile.Names()))
		for _, name := range profile.Names() {
			v, _ := ind.Value(name)
			values[name] = v
		}
		Mutate(profile, options, values, rng)
		mutated, err := param.NewIndividual(profile, values)
		if err != nil {
			t.Fatalf("mutation produced an out-of-domain individual: %v", err)
		}
		v, _ := mutated.Value("Seq")
		if v.Integer < 0 || v.Integer > 100 {
			t.Fatalf("Seq mutated to %d, want within [0,100]", v.Integer)
		}
	}
}

func TestMutationZeroProbabilityIsIdentity(t *testing.T) {
	profile := richProfile()
	rng := rand.New(rand.NewSource(3))
	options := MutationOptions{Probability: Constant(0.0), Variation: Constant(0.5)}
	ind, err := param.Random(profile, rng)
	if err != nil {
		t.Fatal(err)
	}
	values := make(map[string]param.Value, len(profile.Names()))
	for _, name := range profile.Names() {
		v, _ := ind.Value(name)
		values[name] = v
	}
	Mutate(profile, options, values, rng)
	for _, name := range profile.Names() {
		v, _ := ind.Value(name)
		if values[name] != v {
			t.Fatalf("parameter %q changed despite zero mutation probability", name)
		}
	}
}
