package genetic

import (
	"encoding/json"
	"fmt"
	"math"
)

// Exponential scales a Schedulable's value by Factor at the end of every
// generation (spec.md §4.J, "Option schedulers").
type Exponential struct {
	Factor float64 `json:"exponential"`
}

// Schedulable is a count or rate that either stays constant across
// generations or decays/grows by an Exponential scaler. It decodes from
// either a bare JSON number (constant) or `{"value":n,"scaler":{"exponential":f}}`.
type Schedulable struct {
	Value  float64
	Scaler *Exponential
}

// Constant builds a Schedulable with no scaler.
func Constant(value float64) Schedulable { return Schedulable{Value: value} }

// Advance applies one generation's worth of scaling.
func (s *Schedulable) Advance() {
	if s.Scaler != nil {
		s.Value *= s.Scaler.Factor
	}
}

// Int rounds the current value to the nearest non-negative integer, for use
// as a population count.
func (s Schedulable) Int() int {
	n := int(math.Round(s.Value))
	if n < 0 {
		return 0
	}
	return n
}

type jsonSchedulable struct {
	Value  float64      `json:"value"`
	Scaler *Exponential `json:"scaler,omitempty"`
}

func (s Schedulable) MarshalJSON() ([]byte, error) {
	if s.Scaler == nil {
		return json.Marshal(s.Value)
	}
	return json.Marshal(jsonSchedulable{Value: s.Value, Scaler: s.Scaler})
}

func (s *Schedulable) UnmarshalJSON(data []byte) error {
	var bare float64
	if err := json.Unmarshal(data, &bare); err == nil {
		*s = Schedulable{Value: bare}
		return nil
	}
	var js jsonSchedulable
	if err := json.Unmarshal(data, &js); err != nil {
		return fmt.Errorf("genetic: invalid schedulable value: %w", err)
	}
	*s = Schedulable{Value: js.Value, Scaler: js.Scaler}
	return nil
}

// MutationOptions parameterizes crossover/mutate's per-generation behavior.
// The configuration surface (spec.md §6) nests this per parameter kind;
// kerntune collapses it to the single flat pair original_source's
// strategies/genetic/options.rs::MutationOptions used, since every literal
// scenario in spec.md §8 (S3) and the original engine apply one probability
// and variation uniformly across all parameters regardless of kind — see
// DESIGN.md for this Open-Question resolution.
type MutationOptions struct {
	Probability Schedulable `json:"probability"`
	Variation   Schedulable `json:"variation"`
}

// DefaultMutationOptions matches original_source's defaults.
func DefaultMutationOptions() MutationOptions {
	return MutationOptions{Probability: Constant(0.1), Variation: Constant(0.1)}
}

// TerminationOptions bounds the generation loop.
type TerminationOptions struct {
	Limit  *int `json:"limit,omitempty"`
	Endure *int `json:"endure,omitempty"`
}

// Options is the full Genetic strategy configuration (spec.md §4.J, §6).
type Options struct {
	Initial   int                 `json:"initial"`
	Remain    int                 `json:"remain"`
	Generate  Schedulable         `json:"generate"`
	Delete    Schedulable         `json:"delete"`
	Infuse    Schedulable         `json:"infuse"`
	Terminate TerminationOptions  `json:"terminate"`
	Mutate    MutationOptions     `json:"mutate"`
}

// Validate enforces spec.md §4.L's genetic preconditions.
func (o Options) Validate() error {
	if o.Initial <= 1 {
		return fmt.Errorf("genetic: initial population size must be greater than 1, got %d", o.Initial)
	}
	if o.Generate.Int() <= 0 {
		return fmt.Errorf("genetic: generate must be greater than 0, got %d", o.Generate.Int())
	}
	return nil
}

// Advance steps every scheduled option by one generation (spec.md §4.J
// step 11).
func (o *Options) Advance() {
	o.Generate.Advance()
	o.Delete.Advance()
	o.Infuse.Advance()
	o.Mutate.Probability.Advance()
	o.Mutate.Variation.Advance()
}
