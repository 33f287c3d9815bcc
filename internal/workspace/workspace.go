// Package workspace implements the string->opaque-pointer map that lives
// across every evaluation, shared read/mutable by the helper library, hooks
// and the kernel runner via the C-ABI dispatch table (spec.md §3, §4.D).
//
// Grounded on original_source/src/workspace.rs's Workspace(FxHashMap<&str,
// *mut c_void>); Go expresses the raw pointer as unsafe.Pointer. Native code
// never holds a Go pointer to the Workspace itself: internal/abi passes it a
// runtime/cgo handle (as a uintptr) and resolves slots through that handle.
package workspace

import (
	"sync"
	"unsafe"
)

// Workspace owns the name->pointer table. The pointers address memory
// allocated by helper/kernel code and are opaque to the autotuner; the
// Workspace never dereferences them.
type Workspace struct {
	mu     sync.Mutex
	slots  map[string]unsafe.Pointer
	closed bool
}

// New returns an empty Workspace.
func New() *Workspace {
	return &Workspace{slots: make(map[string]unsafe.Pointer)}
}

// Set stores ptr under name. It is a Go-side call only: the C-ABI dispatch
// table has no entry that reaches it, so native code reads slots (0x20
// workspace_get_ptr) but cannot store them.
func (w *Workspace) Set(name string, ptr unsafe.Pointer) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.slots[name] = ptr
}

// Get returns the pointer stored under name, or nil if absent.
func (w *Workspace) Get(name string) unsafe.Pointer {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.slots[name]
}

// Close runs finalize (if non-nil) and empties the table, at most once:
// later calls do nothing. The caller supplies the actual native teardown
// call; Close only guards against running it twice. cmd/kerntune does not
// call Close; it runs the helper's post symbol through
// eval.Evaluator.RunHelperPost.
func (w *Workspace) Close(finalize func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	if finalize != nil {
		finalize()
	}
	w.slots = nil
}
