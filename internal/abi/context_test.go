package abi

import (
	"testing"
	"unsafe"

	"github.com/kerntune/kerntune/internal/param"
)

func testContext(t *testing.T) *Context {
	t.Helper()
	profile := param.NewProfile(
		[]string{"A", "B", "C"},
		[]param.Specification{
			param.NewIntegerSequence(0, 10, ""),
			param.NewSwitch(),
			param.NewKeyword([]string{"alpha", "beta"}),
		},
	)
	ind, err := param.NewIndividual(profile, map[string]param.Value{
		"A": {Kind: param.Integer, Integer: 7},
		"B": {Kind: param.Switch, Switch: true},
		"C": {Kind: param.Keyword, Index: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	return NewContext(profile, ind, "/tmp/kerntune-test")
}

func TestContextNativeShadowRoundTrips(t *testing.T) {
	ctx := testContext(t)
	defer ctx.Release()

	if p := ctx.integerPtr("A"); p == nil || int32(*p) != 7 {
		t.Fatalf("integerPtr(A) = %v, want pointer to 7", p)
	}
	if p := ctx.switchPtr("B"); p == nil || int32(*p) != 1 {
		t.Fatalf("switchPtr(B) = %v, want pointer to 1", p)
	}
	if p := ctx.keywordPtr("C"); p == nil {
		t.Fatal("keywordPtr(C) = nil")
	}
	if ctx.integerPtr("missing") != nil {
		t.Fatal("integerPtr for an absent name should be nil")
	}
}

func TestContextHandleRoundTrip(t *testing.T) {
	ctx := testContext(t)
	defer ctx.Release()

	h := NewContextHandle(ctx)
	defer h.Delete()

	back := contextFromC(unsafe.Pointer(uintptr(h)))
	if back != ctx {
		t.Fatal("contextFromC did not recover the registered Context")
	}
}

func TestInvalidateAndResult(t *testing.T) {
	ctx := testContext(t)
	defer ctx.Release()

	if ctx.Result.State != Unknown {
		t.Fatalf("fresh Context result state = %v, want Unknown", ctx.Result.State)
	}
	ctx.Invalidate()
	if ctx.Result.State != Invalid {
		t.Fatalf("result state after Invalidate = %v, want Invalid", ctx.Result.State)
	}

	ctx.SetValidResult(3.5)
	if ctx.Result.State != Valid || ctx.Result.Value != 3.5 {
		t.Fatalf("result after SetValidResult = %+v, want Valid(3.5)", ctx.Result)
	}
}

func TestAppendArgument(t *testing.T) {
	ctx := testContext(t)
	defer ctx.Release()

	ctx.AppendArgument("-DX=1")
	ctx.AppendArgument("-DY=2")
	if len(ctx.Arguments) != 2 || ctx.Arguments[0] != "-DX=1" || ctx.Arguments[1] != "-DY=2" {
		t.Fatalf("Arguments = %v", ctx.Arguments)
	}
}
