// Package ffi dynamically loads shared objects and resolves/calls the
// extern "C" symbols defined by spec.md §6: helper_pre/helper_post,
// hook(Context*, Workspace*, get_fn), and runner(Context*, Workspace*,
// get_fn).
//
// Grounded on the cgo dlopen/dlsym interop style shown in
// other_examples/838ef0b8_shepherdscientific-optimized-sssp__wrappers-go-sssp.go.go,
// generalized from a build-time static link to a load-time dlopen of a path
// chosen at runtime (spec.md §4.G: the helper is compiled once at startup,
// hooks are compiled once, and the per-individual runner's shared object
// lives at <tempdir>/individuals/<id>.so). This is the idiomatic Go
// equivalent of the original's libloading crate
// (original_source/src/runner.rs).
package ffi

/*
#cgo LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdlib.h>
*/
import "C"
import (
	"fmt"
	"unsafe"
)

// Library is a loaded shared object.
type Library struct {
	path   string
	handle unsafe.Pointer
}

// Load dlopens path. Callers must call Close when the library is no longer
// needed.
func Load(path string) (*Library, error) {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	handle := C.dlopen(cpath, C.RTLD_NOW|C.RTLD_LOCAL)
	if handle == nil {
		return nil, fmt.Errorf("ffi: dlopen %q: %s", path, C.GoString(C.dlerror()))
	}
	return &Library{path: path, handle: unsafe.Pointer(handle)}, nil
}

// Symbol resolves name within the library.
func (l *Library) Symbol(name string) (unsafe.Pointer, error) {
	C.dlerror() // clear any pending error
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	sym := C.dlsym(l.handle, cname)
	if err := C.dlerror(); err != nil {
		return nil, fmt.Errorf("ffi: dlsym %q in %q: %s", name, l.path, C.GoString(err))
	}
	return unsafe.Pointer(sym), nil
}

// HasSymbol reports whether name resolves without treating its absence as
// an error, used for optional hooks.
func (l *Library) HasSymbol(name string) bool {
	_, err := l.Symbol(name)
	return err == nil
}

// Close dlcloses the library. Once a call has succeeded, later calls do
// nothing and return nil.
func (l *Library) Close() error {
	if l.handle == nil {
		return nil
	}
	if C.dlclose(l.handle) != 0 {
		return fmt.Errorf("ffi: dlclose %q: %s", l.path, C.GoString(C.dlerror()))
	}
	l.handle = nil
	return nil
}

// Path returns the filesystem path this Library was loaded from.
func (l *Library) Path() string { return l.path }
