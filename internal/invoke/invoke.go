// Package invoke is the call-site half of spec.md §4.G: resolving helper,
// hook, and runner symbols out of a loaded ffi.Library and invoking them
// with the Context/Workspace handles internal/abi mints, through the
// trampolines internal/ffi exposes.
//
// Grounded on the same dispatch-table design as internal/abi; this package
// only adds the "look up a named symbol and call it" bookkeeping spec.md
// §4.G assigns to the invoker rather than to the dynamic loader itself.
package invoke

import (
	"fmt"
	"unsafe"

	"github.com/kerntune/kerntune/internal/abi"
	"github.com/kerntune/kerntune/internal/ffi"
	"github.com/kerntune/kerntune/internal/workspace"
)

// ErrSymbolNotFound reports a required symbol missing from a library.
type ErrSymbolNotFound struct {
	Symbol  string
	Library string
}

func (e *ErrSymbolNotFound) Error() string {
	return fmt.Sprintf("invoke: symbol %q not found in %q", e.Symbol, e.Library)
}

// Library is the subset of *ffi.Library the Invoker depends on, narrowed so
// a caller can substitute a fake in tests rather than a real dlopen'd
// shared object. *ffi.Library satisfies this without any change on its
// side.
type Library interface {
	HasSymbol(name string) bool
	Symbol(name string) (unsafe.Pointer, error)
	Path() string
	Close() error
}

// Invoker resolves and calls helper, hook, and runner symbols against a
// fixed Workspace for the Autotuner's lifetime.
type Invoker struct {
	ws       *workspace.Workspace
	wsHandle abi.Handle
	getFn    unsafe.Pointer
}

// New builds an Invoker bound to ws. The Workspace handle lives for the
// Invoker's lifetime; callers should call Close on shutdown.
func New(ws *workspace.Workspace) *Invoker {
	return &Invoker{
		ws:       ws,
		wsHandle: abi.NewWorkspaceHandle(ws),
		getFn:    abi.GetFnPointer(),
	}
}

// Close releases the Invoker's Workspace handle. It does not close any
// Library the caller resolved symbols from.
func (inv *Invoker) Close() {
	inv.wsHandle.Delete()
}

func (inv *Invoker) wsPtr() unsafe.Pointer {
	return unsafe.Pointer(uintptr(inv.wsHandle))
}

// CallHelperPre resolves and calls name's pre symbol, signature
// (Workspace*, get_fn). A missing symbol is not an error: helper_pre is
// optional (spec.md §4.G).
func (inv *Invoker) CallHelperPre(lib Library, name string) error {
	return inv.callHelper(lib, name)
}

// CallHelperPost resolves and calls name's post symbol, same signature as
// CallHelperPre.
func (inv *Invoker) CallHelperPost(lib Library, name string) error {
	return inv.callHelper(lib, name)
}

func (inv *Invoker) callHelper(lib Library, name string) error {
	if !lib.HasSymbol(name) {
		return nil
	}
	fn, err := lib.Symbol(name)
	if err != nil {
		return err
	}
	ffi.CallHelper(fn, inv.wsPtr(), inv.getFn)
	return nil
}

// HasSymbol reports whether lib exports name, used to decide whether an
// optional hook is present before paying for a Context handle.
func HasSymbol(lib Library, name string) bool {
	return lib.HasSymbol(name)
}

// CallHook resolves and calls the named hook against ctx, signature
// (Context*, Workspace*, get_fn). Returns ErrSymbolNotFound if absent;
// callers that treat a hook as optional should check HasSymbol first.
func (inv *Invoker) CallHook(lib Library, name string, ctx *abi.Context) error {
	return inv.callHookOrRunner(lib, name, ctx)
}

// CallRunner resolves and calls the runner symbol against ctx.
func (inv *Invoker) CallRunner(lib Library, symbol string, ctx *abi.Context) error {
	return inv.callHookOrRunner(lib, symbol, ctx)
}

func (inv *Invoker) callHookOrRunner(lib Library, name string, ctx *abi.Context) error {
	fn, err := lib.Symbol(name)
	if err != nil {
		return &ErrSymbolNotFound{Symbol: name, Library: lib.Path()}
	}
	h := abi.NewContextHandle(ctx)
	defer h.Delete()
	ctxPtr := unsafe.Pointer(uintptr(h))
	ffi.CallHookOrRunner(fn, ctxPtr, inv.wsPtr(), inv.getFn)
	return nil
}
