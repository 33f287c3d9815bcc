package param

import (
	"math/rand"
	"testing"
)

func visitAll(space Space) []Value {
	var seen []Value
	v := space.First()
	seen = append(seen, v)
	for {
		next, ok := space.Next(v)
		if !ok {
			break
		}
		seen = append(seen, next)
		v = next
	}
	return seen
}

func TestSpaceClosure(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	spaces := []Space{
		SequenceSpace{Lo: -2, Hi: 3},
		CandidatesSpace{Candidates: []int32{7, 11, 13}},
		SwitchSpace{},
		KeywordSpace{Keywords: []string{"a", "b", "c", "d"}},
	}
	for _, space := range spaces {
		first := space.First()
		if !inSpace(space, first) {
			t.Fatalf("%T: First() = %+v not in space", space, first)
		}
		for i := 0; i < 20; i++ {
			r := space.Random(rng)
			if !inSpace(space, r) {
				t.Fatalf("%T: Random() = %+v not in space", space, r)
			}
		}
		visited := visitAll(space)
		if len(visited) != space.Len() {
			t.Fatalf("%T: visited %d elements via Next, Len() = %d", space, len(visited), space.Len())
		}
	}
}

// inSpace mirrors Specification.InDomain for a bare Space, used only by
// this test to avoid constructing a full Specification per case.
func inSpace(space Space, v Value) bool {
	switch s := space.(type) {
	case SequenceSpace:
		return v.Kind == Integer && v.Integer >= s.Lo && v.Integer <= s.Hi
	case CandidatesSpace:
		return v.Kind == Integer && v.Index >= 0 && v.Index < len(s.Candidates)
	case SwitchSpace:
		return v.Kind == Switch
	case KeywordSpace:
		return v.Kind == Keyword && v.Index >= 0 && v.Index < len(s.Keywords)
	}
	return false
}
