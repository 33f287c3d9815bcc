package param

import (
	"encoding/json"
	"fmt"
)

// Profile is an ordered name->Specification mapping. Order is part of
// identity: it is preserved across serialization and both exhaustive
// enumeration and instance identity depend on it (spec.md §3).
type Profile struct {
	names []string
	specs map[string]Specification
}

// NewProfile builds a Profile from an ordered slice of names and a matching
// specification for each. It panics if len(names) != len(specs) or names
// contains a duplicate, both of which indicate a programmer error at the
// call site (the configuration loader builds names from a map's keys, so
// they are distinct; UnmarshalJSON passes decoded entries through unchecked).
func NewProfile(names []string, specs []Specification) *Profile {
	if len(names) != len(specs) {
		panic("param: NewProfile given mismatched names and specs")
	}
	p := &Profile{names: append([]string(nil), names...), specs: make(map[string]Specification, len(names))}
	for i, name := range names {
		if _, dup := p.specs[name]; dup {
			panic(fmt.Sprintf("param: NewProfile given duplicate name %q", name))
		}
		p.specs[name] = specs[i]
	}
	return p
}

// Names returns the parameter names in profile order.
func (p *Profile) Names() []string { return p.names }

// Get returns the Specification for name and whether it is present.
func (p *Profile) Get(name string) (Specification, bool) {
	s, ok := p.specs[name]
	return s, ok
}

// Len is the Cartesian product of every component space's length.
func (p *Profile) Len() int {
	n := 1
	for _, name := range p.names {
		n *= p.specs[name].Space.Len()
	}
	return n
}

type jsonProfileEntry struct {
	Name string        `json:"name"`
	Spec Specification `json:"spec"`
}

func (p *Profile) MarshalJSON() ([]byte, error) {
	entries := make([]jsonProfileEntry, len(p.names))
	for i, name := range p.names {
		entries[i] = jsonProfileEntry{Name: name, Spec: p.specs[name]}
	}
	return json.Marshal(entries)
}

func (p *Profile) UnmarshalJSON(data []byte) error {
	var entries []jsonProfileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	names := make([]string, len(entries))
	specs := make([]Specification, len(entries))
	for i, e := range entries {
		names[i] = e.Name
		specs[i] = e.Spec
	}
	*p = *NewProfile(names, specs)
	return nil
}
