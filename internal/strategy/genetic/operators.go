// Crossover and mutation operators, one per Specification Space variant,
// grounded verbatim on original_source/src/strategies/genetic/mod.rs's
// GeneticSpace impls for IntegerSpace/SwitchSpace/KeywordSpace.
package genetic

import (
	"math/rand"

	"github.com/kerntune/kerntune/internal/param"
)

// Crossover combines two Individuals over the same Profile into a new,
// unvalidated value map: one value per parameter, drawn from a's and b's
// values for that parameter according to its space's crossover rule.
// Callers pass the result through param.NewIndividual.
func Crossover(profile *param.Profile, a, b *param.Individual, rng *rand.Rand) map[string]param.Value {
	values := make(map[string]param.Value, len(profile.Names()))
	for _, name := range profile.Names() {
		spec, _ := profile.Get(name)
		va, _ := a.Value(name)
		vb, _ := b.Value(name)
		values[name] = crossoverValue(spec, va, vb, rng)
	}
	return values
}

func crossoverValue(spec param.Specification, a, b param.Value, rng *rand.Rand) param.Value {
	switch space := spec.Space.(type) {
	case param.SequenceSpace:
		return param.Value{Kind: param.Integer, Integer: (a.Integer + b.Integer) / 2}
	case param.CandidatesSpace:
		if a.Index == b.Index {
			return a
		}
		return space.Random(rng)
	case param.SwitchSpace:
		if a.Switch == b.Switch {
			return a
		}
		return space.Random(rng)
	case param.KeywordSpace:
		if a.Index == b.Index {
			return a
		}
		return space.Random(rng)
	default:
		return a
	}
}

// Mutate applies one mutation pass over values in place, per spec.md §4.J:
// each parameter independently rolls options.Probability and, on success,
// perturbs its value within its specification's space.
func Mutate(profile *param.Profile, options MutationOptions, values map[string]param.Value, rng *rand.Rand) {
	for name, v := range values {
		spec, ok := profile.Get(name)
		if !ok {
			continue
		}
		values[name] = mutateValue(spec, options, v, rng)
	}
}

func mutateValue(spec param.Specification, options MutationOptions, v param.Value, rng *rand.Rand) param.Value {
	if rng.Float64() >= options.Probability.Value {
		return v
	}
	switch space := spec.Space.(type) {
	case param.SequenceSpace:
		variation := int32(float64(space.Hi-space.Lo) * options.Variation.Value)
		if variation == 0 {
			variation = 1
		}
		delta := int32(rng.Intn(int(2*variation+1))) - variation
		n := v.Integer + delta
		if n < space.Lo {
			n = space.Lo
		} else if n > space.Hi {
			n = space.Hi
		}
		return param.Value{Kind: param.Integer, Integer: n}
	case param.CandidatesSpace:
		return param.Value{Kind: param.Integer, Index: rng.Intn(len(space.Candidates))}
	case param.SwitchSpace:
		return param.Value{Kind: param.Switch, Switch: !v.Switch}
	case param.KeywordSpace:
		return param.Value{Kind: param.Keyword, Index: rng.Intn(len(space.Keywords))}
	default:
		return v
	}
}
