package abi

/*
#include <stdint.h>
#include <string.h>

typedef const void* (*kerntune_get_fn)(int);
extern const void* kerntuneGet(int id);
*/
import "C"
import (
	"runtime/cgo"
	"unsafe"

	"github.com/kerntune/kerntune/internal/workspace"
)

// Handle wraps a runtime/cgo.Handle so Context and Workspace values can be
// passed through native code as an opaque `void*`/`ctx`/`ws` argument
// without violating cgo's Go-pointer-passing rules: native code only ever
// holds the handle and passes it back into the callbacks below.
type Handle = cgo.Handle

// NewContextHandle registers ctx for the duration of one native call chain
// (a compile, a hook, a runner invocation). The caller must call Delete once
// the native code has returned.
func NewContextHandle(ctx *Context) Handle { return cgo.NewHandle(ctx) }

// NewWorkspaceHandle registers ws for the Autotuner's lifetime.
func NewWorkspaceHandle(ws *workspace.Workspace) Handle { return cgo.NewHandle(ws) }

func contextFromC(p unsafe.Pointer) *Context {
	if p == nil {
		return nil
	}
	h := Handle(uintptr(p))
	v, ok := h.Value().(*Context)
	if !ok {
		return nil
	}
	return v
}

func workspaceFromC(p unsafe.Pointer) *workspace.Workspace {
	if p == nil {
		return nil
	}
	h := Handle(uintptr(p))
	v, ok := h.Value().(*workspace.Workspace)
	if !ok {
		return nil
	}
	return v
}

//export kerntuneContextGetWorkingDirectory
func kerntuneContextGetWorkingDirectory(ctx unsafe.Pointer, buf *C.char, size C.size_t) {
	c := contextFromC(ctx)
	if c == nil || buf == nil || size == 0 {
		return
	}
	dir := []byte(c.TempDir)
	n := int(size) - 1
	if len(dir) < n {
		n = len(dir)
	}
	dst := unsafe.Slice((*byte)(unsafe.Pointer(buf)), int(size))
	copy(dst, dir[:n])
	dst[n] = 0
}

//export kerntuneContextInvalidate
func kerntuneContextInvalidate(ctx unsafe.Pointer) {
	if c := contextFromC(ctx); c != nil {
		c.Invalidate()
	}
}

//export kerntuneContextAppendArgument
func kerntuneContextAppendArgument(ctx unsafe.Pointer, arg *C.char) {
	c := contextFromC(ctx)
	if c == nil || arg == nil {
		return
	}
	c.AppendArgument(C.GoString(arg))
}

//export kerntuneParameterGetInteger
func kerntuneParameterGetInteger(ctx unsafe.Pointer, name *C.char) unsafe.Pointer {
	c := contextFromC(ctx)
	if c == nil || name == nil {
		return nil
	}
	return unsafe.Pointer(c.integerPtr(C.GoString(name)))
}

//export kerntuneParameterGetSwitch
func kerntuneParameterGetSwitch(ctx unsafe.Pointer, name *C.char) unsafe.Pointer {
	c := contextFromC(ctx)
	if c == nil || name == nil {
		return nil
	}
	return unsafe.Pointer(c.switchPtr(C.GoString(name)))
}

//export kerntuneParameterGetKeyword
func kerntuneParameterGetKeyword(ctx unsafe.Pointer, name *C.char) unsafe.Pointer {
	c := contextFromC(ctx)
	if c == nil || name == nil {
		return nil
	}
	return unsafe.Pointer(c.keywordPtr(C.GoString(name)))
}

//export kerntuneWorkspaceGetPtr
func kerntuneWorkspaceGetPtr(ws unsafe.Pointer, name *C.char) unsafe.Pointer {
	w := workspaceFromC(ws)
	if w == nil || name == nil {
		return nil
	}
	return w.Get(C.GoString(name))
}

//export kerntuneRunnerResult
func kerntuneRunnerResult(ctx unsafe.Pointer, value C.double) {
	c := contextFromC(ctx)
	if c == nil {
		return
	}
	c.SetValidResult(float64(value))
}

// Get implements the single exported `get(id) -> function pointer or null`
// entry point native code receives (spec.md §4.E), delegating to the
// get_table.c shim so Go and C callers resolve identical pointers.
func Get(id ID) unsafe.Pointer {
	return unsafe.Pointer(C.kerntuneGet(C.int(id)))
}

// GetFnPointer returns the address of the get dispatcher itself, the value
// handed to helper/hook/runner entry points as their `get_fn` argument.
func GetFnPointer() unsafe.Pointer {
	return unsafe.Pointer(C.kerntune_get_fn(C.kerntuneGet))
}
