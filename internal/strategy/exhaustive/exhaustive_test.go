package exhaustive

import (
	"encoding/json"
	"testing"

	"github.com/kerntune/kerntune/internal/param"
)

func s1Profile() *param.Profile {
	return param.NewProfile(
		[]string{"A", "B"},
		[]param.Specification{
			param.NewIntegerSequence(0, 2, ""),
			param.NewSwitch(),
		},
	)
}

func display(t *testing.T, profile *param.Profile, ind *param.Individual) string {
	t.Helper()
	s, err := param.Display(profile, ind)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestExhaustiveTotality(t *testing.T) {
	profile := s1Profile()
	it := New(profile)
	seen := map[string]bool{}
	count := 0
	for {
		ind, ok := it.Next()
		if !ok {
			break
		}
		seen[ind.ID()] = true
		count++
	}
	if count != profile.Len() {
		t.Fatalf("yielded %d individuals, want %d", count, profile.Len())
	}
	if len(seen) != count {
		t.Fatalf("yielded %d individuals but only %d distinct ids", count, len(seen))
	}
}

func TestExhaustiveOrderS1S2(t *testing.T) {
	profile := s1Profile()
	it := New(profile)
	want := []string{
		"A=0, B=false", "A=0, B=true",
		"A=1, B=false", "A=1, B=true",
		"A=2, B=false", "A=2, B=true",
	}
	var got []string
	for {
		ind, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, display(t, profile, ind))
	}
	if len(got) != len(want) {
		t.Fatalf("got %d individuals, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExhaustiveResumability(t *testing.T) {
	profile := s1Profile()
	it := New(profile)

	for i := 0; i < 3; i++ {
		if _, ok := it.Next(); !ok {
			t.Fatal("ran out of individuals before 3 evaluations")
		}
	}

	data, err := json.Marshal(it.State())
	if err != nil {
		t.Fatal(err)
	}
	var resumed State
	if err := json.Unmarshal(data, &resumed); err != nil {
		t.Fatal(err)
	}

	resumedIt, err := Resume(profile, resumed)
	if err != nil {
		t.Fatal(err)
	}
	ind, ok := resumedIt.Next()
	if !ok {
		t.Fatal("resumed iterator should yield a 4th individual")
	}
	if got := display(t, profile, ind); got != "A=1, B=true" {
		t.Fatalf("4th individual = %q, want %q", got, "A=1, B=true")
	}

	remaining := 1
	for {
		if _, ok := resumedIt.Next(); !ok {
			break
		}
		remaining++
	}
	if remaining != 3 {
		t.Fatalf("resumed iterator yielded %d individuals after checkpoint, want 3 (tuples 4,5,6)", remaining)
	}
}
