package param

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/kerntune/kerntune/internal/interner"
)

// Individual (also called Instance in the original sources) is a fully
// determined assignment of values to every parameter of a Profile, with a
// content-addressed id. The id is a pure function of the ordered parameter
// map: two Individuals with equal parameters (in the same profile order)
// have equal id and are equal (spec.md §3).
type Individual struct {
	id     *string
	names  []string
	values map[string]Value
}

// NewIndividual validates values against profile's domain and returns a new
// Individual. It returns an error if a name from the profile is missing, an
// unexpected name is present, or a value falls outside its specification's
// space.
func NewIndividual(profile *Profile, values map[string]Value) (*Individual, error) {
	if len(values) != len(profile.names) {
		return nil, fmt.Errorf("param: individual has %d parameters, profile has %d", len(values), len(profile.names))
	}
	for _, name := range profile.names {
		v, ok := values[name]
		if !ok {
			return nil, fmt.Errorf("param: individual is missing parameter %q", name)
		}
		spec, _ := profile.Get(name)
		if !spec.InDomain(v) {
			return nil, fmt.Errorf("param: value for %q is out of its specification's domain", name)
		}
	}
	names := append([]string(nil), profile.names...)
	id := interner.Intern(canonicalID(names, values))
	return &Individual{id: id, names: names, values: values}, nil
}

// canonicalID renders the ordered parameter map into a canonical string and
// returns the hex-encoded SHA-256 digest of it, the instance id.
func canonicalID(names []string, values map[string]Value) string {
	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte(',')
		}
		v := values[name]
		b.WriteString(name)
		b.WriteByte('=')
		switch v.Kind {
		case Integer:
			b.WriteString("i:")
			b.WriteString(strconv.FormatInt(int64(v.Integer), 10))
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(v.Index))
		case Switch:
			b.WriteString("s:")
			b.WriteString(strconv.FormatBool(v.Switch))
		case Keyword:
			b.WriteString("k:")
			b.WriteString(strconv.Itoa(v.Index))
		}
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// ID returns the instance's content-addressed, interned id.
func (ind *Individual) ID() string { return *ind.id }

// Names returns the parameter names in profile order.
func (ind *Individual) Names() []string { return ind.names }

// Value returns the value assigned to name.
func (ind *Individual) Value(name string) (Value, bool) {
	v, ok := ind.values[name]
	return v, ok
}

// Equal reports whether two Individuals have the same id, which per the
// identity invariant means every value is equal in order.
func (ind *Individual) Equal(other *Individual) bool {
	if ind == nil || other == nil {
		return ind == other
	}
	return ind.id == other.id
}

// Random samples a fresh Individual by drawing each parameter uniformly
// from its space, in profile order.
func Random(profile *Profile, rng *rand.Rand) (*Individual, error) {
	values := make(map[string]Value, len(profile.names))
	for _, name := range profile.names {
		spec, _ := profile.Get(name)
		values[name] = spec.Space.Random(rng)
	}
	return NewIndividual(profile, values)
}

// CompilerArguments projects the individual into the ordered `-D...` flags
// described in spec.md §4.B.
func CompilerArguments(profile *Profile, ind *Individual) ([]string, error) {
	args := make([]string, 0, len(ind.names))
	for _, name := range ind.names {
		spec, ok := profile.Get(name)
		if !ok {
			return nil, fmt.Errorf("param: profile has no specification for %q", name)
		}
		v, _ := ind.Value(name)
		arg, err := spec.CompilerArgument(name, v)
		if err != nil {
			return nil, err
		}
		if arg != "" {
			args = append(args, arg)
		}
	}
	return args, nil
}

// Display projects the individual into the comma-separated NAME=value form
// described in spec.md §4.B.
func Display(profile *Profile, ind *Individual) (string, error) {
	parts := make([]string, 0, len(ind.names))
	for _, name := range ind.names {
		spec, ok := profile.Get(name)
		if !ok {
			return "", fmt.Errorf("param: profile has no specification for %q", name)
		}
		v, _ := ind.Value(name)
		s, err := spec.DisplayValue(v)
		if err != nil {
			return "", err
		}
		parts = append(parts, fmt.Sprintf("%s=%s", name, s))
	}
	return strings.Join(parts, ", "), nil
}
