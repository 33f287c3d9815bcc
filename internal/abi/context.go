package abi

import (
	"github.com/kerntune/kerntune/internal/param"
)

// ResultState is the per-evaluation Result's current state (spec.md §3's
// Context invariant: Unknown on construction, Valid or Invalid once the
// runner has returned, never observed as NaN).
type ResultState int

const (
	Unknown ResultState = iota
	Valid
	Invalid
)

// Result holds a runner's reported fitness, or its absence.
type Result struct {
	State ResultState
	Value float64
}

// Context is the per-evaluation, short-lived object passed by opaque handle
// through hooks and the runner. It never owns the Profile or Individual it
// references (spec.md §9, "Cyclic ownership"): both are held by the caller
// for the evaluation's duration, and Context only borrows them.
type Context struct {
	Individual *param.Individual
	Profile    *param.Profile
	TempDir    string
	Arguments  []string
	Result     Result

	natives nativeShadow
}

// NewContext builds a fresh Context in the Unknown result state and
// pre-stages the native-memory shadows (spec.md §4.E's "pointer to the
// underlying integer"/"static 0/1"/"interned keyword C string") that
// parameter_get_* resolves against.
func NewContext(profile *param.Profile, individual *param.Individual, tempDir string) *Context {
	ctx := &Context{
		Individual: individual,
		Profile:    profile,
		TempDir:    tempDir,
	}
	ctx.natives = newNativeShadow(profile, individual)
	return ctx
}

// Release frees every native allocation staged for this Context. Callers
// must call it exactly once, after the runner (and any hooks sharing this
// Context) have returned.
func (c *Context) Release() {
	c.natives.release()
}

// Invalidate sets Result to Invalid, the effect of the 0x01
// context_invalidate callback.
func (c *Context) Invalidate() { c.Result = Result{State: Invalid} }

// AppendArgument appends a compiler argument for this evaluation, the
// effect of the 0x02 context_append_argument callback.
func (c *Context) AppendArgument(arg string) { c.Arguments = append(c.Arguments, arg) }

// SetValidResult sets Result to Valid(value), the effect of the 0x30
// runner_result callback.
func (c *Context) SetValidResult(value float64) { c.Result = Result{State: Valid, Value: value} }
