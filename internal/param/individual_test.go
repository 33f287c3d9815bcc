package param

import "testing"

func testProfile() *Profile {
	return NewProfile(
		[]string{"A", "B"},
		[]Specification{
			NewIntegerSequence(0, 2, ""),
			NewSwitch(),
		},
	)
}

func TestIdentityDependsOnlyOnParameters(t *testing.T) {
	p := testProfile()
	values := map[string]Value{
		"A": {Kind: Integer, Integer: 1},
		"B": {Kind: Switch, Switch: true},
	}
	a, err := NewIndividual(p, values)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewIndividual(p, map[string]Value{
		"A": {Kind: Integer, Integer: 1},
		"B": {Kind: Switch, Switch: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	if a.ID() != b.ID() {
		t.Fatalf("equal parameter maps produced different ids: %s != %s", a.ID(), b.ID())
	}
	if !a.Equal(b) {
		t.Fatalf("Equal() = false for individuals with equal id")
	}

	c, err := NewIndividual(p, map[string]Value{
		"A": {Kind: Integer, Integer: 2},
		"B": {Kind: Switch, Switch: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	if a.ID() == c.ID() {
		t.Fatalf("distinct parameter maps produced the same id")
	}
}

func TestOutOfDomainRejected(t *testing.T) {
	p := testProfile()
	_, err := NewIndividual(p, map[string]Value{
		"A": {Kind: Integer, Integer: 5},
		"B": {Kind: Switch, Switch: true},
	})
	if err == nil {
		t.Fatal("expected an error for an out-of-domain value")
	}
}

func TestCompilerArgumentsAndDisplay(t *testing.T) {
	p := testProfile()
	ind, err := NewIndividual(p, map[string]Value{
		"A": {Kind: Integer, Integer: 2},
		"B": {Kind: Switch, Switch: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	args, err := CompilerArguments(p, ind)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"-DA=2", "-DB"}
	if len(args) != len(want) {
		t.Fatalf("CompilerArguments = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("CompilerArguments = %v, want %v", args, want)
		}
	}

	display, err := Display(p, ind)
	if err != nil {
		t.Fatal(err)
	}
	if display != "A=2, B=true" {
		t.Fatalf("Display() = %q, want %q", display, "A=2, B=true")
	}
}

func TestTransformedCandidatesRejected(t *testing.T) {
	spec := NewIntegerCandidates([]int32{10, 20}, "(float)$x")
	_, err := spec.CompilerArgument("X", Value{Kind: Integer, Index: 0})
	if err == nil {
		t.Fatal("expected ErrTransformedCandidates")
	}
}

func TestTransformer(t *testing.T) {
	spec := NewIntegerSequence(0, 10, "(float)$x")
	arg, err := spec.CompilerArgument("X", Value{Kind: Integer, Integer: 3})
	if err != nil {
		t.Fatal(err)
	}
	if arg != "-DX=((float)3)" {
		t.Fatalf("CompilerArgument = %q, want %q", arg, "-DX=((float)3)")
	}
}
