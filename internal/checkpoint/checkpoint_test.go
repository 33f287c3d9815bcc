package checkpoint

import (
	"testing"

	"github.com/kerntune/kerntune/internal/param"
	"github.com/kerntune/kerntune/internal/strategy/exhaustive"
)

func TestCheckpointExhaustiveRoundTrip(t *testing.T) {
	profile := param.NewProfile(
		[]string{"A", "B"},
		[]param.Specification{param.NewIntegerSequence(0, 2, ""), param.NewSwitch()},
	)
	it := exhaustive.New(profile)
	it.Next()
	it.Next()

	c := FromExhaustive(it.State())
	data, err := Marshal(c)
	if err != nil {
		t.Fatal(err)
	}
	back, err := Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if back.Kind != KindExhaustive || back.Exhaustive == nil {
		t.Fatalf("round-tripped checkpoint = %+v", back)
	}
	if back.Exhaustive.Done != it.State().Done {
		t.Fatal("Done flag did not round-trip")
	}
	resumed, err := exhaustive.Resume(profile, *back.Exhaustive)
	if err != nil {
		t.Fatal(err)
	}
	ind, ok := resumed.Next()
	if !ok {
		t.Fatal("resumed iterator should still have individuals left")
	}
	display, _ := param.Display(profile, ind)
	if display != "A=1, B=false" {
		t.Fatalf("resumed 3rd individual = %q, want %q", display, "A=1, B=false")
	}
}

func TestCheckpointRejectsMismatchedKind(t *testing.T) {
	c := Checkpoint{Kind: KindGenetic}
	if err := c.Validate(); err == nil {
		t.Fatal("Validate should reject a genetic kind with no genetic state")
	}
}
