// Package checkpoint implements spec.md §4.M: a tagged-union on-disk
// resume format, {Exhaustive(State) | Genetic(State)}, round-trippable via
// encoding/json.
package checkpoint

import (
	"encoding/json"
	"fmt"

	"github.com/kerntune/kerntune/internal/strategy/exhaustive"
	"github.com/kerntune/kerntune/internal/strategy/genetic"
)

// Kind discriminates which strategy a Checkpoint resumes.
type Kind string

const (
	KindExhaustive Kind = "exhaustive"
	KindGenetic    Kind = "genetic"
)

// Checkpoint is the tagged union persisted by `--continue` support: exactly
// one of Exhaustive or Genetic is populated, matching Kind.
type Checkpoint struct {
	Kind       Kind              `json:"kind"`
	Exhaustive *exhaustive.State `json:"exhaustive,omitempty"`
	Genetic    *genetic.State    `json:"genetic,omitempty"`
}

// FromExhaustive wraps an exhaustive.State as a Checkpoint.
func FromExhaustive(state exhaustive.State) Checkpoint {
	return Checkpoint{Kind: KindExhaustive, Exhaustive: &state}
}

// FromGenetic wraps a genetic.State as a Checkpoint.
func FromGenetic(state genetic.State) Checkpoint {
	return Checkpoint{Kind: KindGenetic, Genetic: &state}
}

// Validate reports whether the Checkpoint's Kind and payload are
// consistent, the check a `--continue` load performs before resuming
// (spec.md §7's CheckpointInvalid).
func (c Checkpoint) Validate() error {
	switch c.Kind {
	case KindExhaustive:
		if c.Exhaustive == nil {
			return fmt.Errorf("checkpoint: kind %q but no exhaustive state", c.Kind)
		}
	case KindGenetic:
		if c.Genetic == nil {
			return fmt.Errorf("checkpoint: kind %q but no genetic state", c.Kind)
		}
	default:
		return fmt.Errorf("checkpoint: unknown kind %q", c.Kind)
	}
	return nil
}

// Marshal encodes a Checkpoint for writing to the `--continue` file.
func Marshal(c Checkpoint) ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// Unmarshal decodes and validates a Checkpoint read from disk.
func Unmarshal(data []byte) (Checkpoint, error) {
	var c Checkpoint
	if err := json.Unmarshal(data, &c); err != nil {
		return Checkpoint{}, fmt.Errorf("checkpoint: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Checkpoint{}, err
	}
	return c, nil
}
