package abi

/*
#include <stdlib.h>
#include <stdint.h>
*/
import "C"
import (
	"unsafe"

	"github.com/kerntune/kerntune/internal/param"
)

// Static 0/1 switch storage: spec.md §4.E says parameter_get_switch
// "returns a pointer to a static 0/1" rather than a per-context
// allocation, since a bool's two possible encodings never change.
var (
	switchFalse C.int32_t = 0
	switchTrue  C.int32_t = 1
)

// nativeShadow holds the C-heap-resident copies of a Context's integer and
// keyword parameter values that 0x10/0x12 return pointers into. Allocated
// once per Context (native values never change during an evaluation) and
// freed by release.
type nativeShadow struct {
	integers map[string]*C.int32_t
	keywords map[string]*C.char
	switches map[string]bool
}

func newNativeShadow(profile *param.Profile, individual *param.Individual) nativeShadow {
	ns := nativeShadow{
		integers: make(map[string]*C.int32_t),
		keywords: make(map[string]*C.char),
		switches: make(map[string]bool),
	}
	for _, name := range profile.Names() {
		spec, ok := profile.Get(name)
		if !ok {
			continue
		}
		v, ok := individual.Value(name)
		if !ok {
			continue
		}
		switch spec.Kind {
		case param.Integer:
			var raw int32
			switch space := spec.Space.(type) {
			case param.SequenceSpace:
				raw = v.Integer
			case param.CandidatesSpace:
				raw = space.Int(v)
			}
			ptr := (*C.int32_t)(C.malloc(C.size_t(unsafe.Sizeof(C.int32_t(0)))))
			*ptr = C.int32_t(raw)
			ns.integers[name] = ptr
		case param.Switch:
			ns.switches[name] = v.Switch
		case param.Keyword:
			keyword := spec.Space.(param.KeywordSpace).Keyword(v)
			ns.keywords[name] = C.CString(keyword)
		}
	}
	return ns
}

func (ns nativeShadow) release() {
	for _, ptr := range ns.integers {
		C.free(unsafe.Pointer(ptr))
	}
	for _, ptr := range ns.keywords {
		C.free(unsafe.Pointer(ptr))
	}
}

// integerPtr returns the native shadow pointer for an Integer parameter, or
// nil if name is absent or not of that kind.
func (c *Context) integerPtr(name string) *C.int32_t {
	return c.natives.integers[name]
}

// switchPtr returns a pointer to one of the two static 0/1 cells for a
// Switch parameter, or nil if name is absent or not of that kind.
func (c *Context) switchPtr(name string) *C.int32_t {
	v, ok := c.natives.switches[name]
	if !ok {
		return nil
	}
	if v {
		return &switchTrue
	}
	return &switchFalse
}

// keywordPtr returns this Context's C copy of the keyword for a Keyword
// parameter, or nil if name is absent or not of that kind. The copy is
// allocated per Context and freed by Release; it is not interned or shared
// across Contexts.
func (c *Context) keywordPtr(name string) *C.char {
	return c.natives.keywords[name]
}
