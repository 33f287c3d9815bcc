// Package exhaustive implements spec.md §4.I: a resumable lexicographic
// Cartesian iterator over a Profile's parameter space, the rightmost
// (last-declared) parameter varying fastest — the familiar odometer order.
//
// Grounded on original_source/src/strategies/exhaustive.rs's Iterator impl,
// re-expressed as an explicit State struct plus an Iterator that owns it,
// since Go has no native generator/coroutine equivalent of Rust's Iterator
// trait (spec.md §9, "coroutine-style control flow ... expressible as a
// plain lazy sequence + explicit loop").
package exhaustive

import (
	"fmt"

	"github.com/kerntune/kerntune/internal/param"
)

// State is the serializable position of an in-progress exhaustive search:
// the current value for every parameter (in profile order) and whether the
// sequence is exhausted. It contains everything spec.md §4.M requires a
// checkpoint to resume iteration exactly.
type State struct {
	Names  []string      `json:"names"`
	Values []param.Value `json:"values"`
	Done   bool          `json:"done"`
}

// Iterator walks every Individual in a Profile's Cartesian product exactly
// once, in lexicographic order.
type Iterator struct {
	profile *param.Profile
	state   State
}

// New builds an Iterator positioned at the first Individual of profile.
func New(profile *param.Profile) *Iterator {
	names := profile.Names()
	values := make([]param.Value, len(names))
	for i, name := range names {
		spec, _ := profile.Get(name)
		values[i] = spec.Space.First()
	}
	return &Iterator{profile: profile, state: State{
		Names:  names,
		Values: values,
		Done:   profile.Len() == 0,
	}}
}

// Resume rebuilds an Iterator from a previously saved State.
func Resume(profile *param.Profile, state State) (*Iterator, error) {
	if len(state.Names) != len(profile.Names()) {
		return nil, fmt.Errorf("exhaustive: checkpoint has %d parameters, profile has %d", len(state.Names), len(profile.Names()))
	}
	for i, name := range profile.Names() {
		if state.Names[i] != name {
			return nil, fmt.Errorf("exhaustive: checkpoint parameter order %v does not match profile order", state.Names)
		}
	}
	return &Iterator{profile: profile, state: state}, nil
}

// State returns the current, serializable position.
func (it *Iterator) State() State { return it.state }

// Next returns the next Individual in lexicographic order and true, or
// (nil, false) once every Individual has been yielded.
func (it *Iterator) Next() (*param.Individual, bool) {
	if it.state.Done {
		return nil, false
	}
	values := make(map[string]param.Value, len(it.state.Names))
	for i, name := range it.state.Names {
		values[name] = it.state.Values[i]
	}
	ind, err := param.NewIndividual(it.profile, values)
	if err != nil {
		// The Iterator only ever constructs values drawn from each
		// Specification's own Space, so this can only indicate a profile
		// that changed shape under a resumed checkpoint.
		panic(fmt.Sprintf("exhaustive: invalid state produced an invalid individual: %v", err))
	}
	it.advance()
	return ind, true
}

// advance increments the position like an odometer: the last parameter
// rolls fastest, carrying into earlier parameters on overflow.
func (it *Iterator) advance() {
	for i := len(it.state.Names) - 1; i >= 0; i-- {
		spec, _ := it.profile.Get(it.state.Names[i])
		if next, ok := spec.Space.Next(it.state.Values[i]); ok {
			it.state.Values[i] = next
			return
		}
		it.state.Values[i] = spec.Space.First()
	}
	it.state.Done = true
}
