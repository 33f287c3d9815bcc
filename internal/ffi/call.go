package ffi

/*
#include <stdint.h>
typedef const void *(*kerntune_get_fn)(int);
void kerntuneCallHelper(void *fn, const void *ws, kerntune_get_fn get);
void kerntuneCallHookRunner(void *fn, void *ctx, const void *ws, kerntune_get_fn get);
*/
import "C"
import "unsafe"

// CallHelper invokes a helper_pre/helper_post symbol with signature
// (Workspace*, get_fn).
func CallHelper(fn, ws, get unsafe.Pointer) {
	C.kerntuneCallHelper(fn, ws, (C.kerntune_get_fn)(get))
}

// CallHookOrRunner invokes a hook or runner symbol with signature
// (Context*, Workspace*, get_fn).
func CallHookOrRunner(fn, ctx, ws, get unsafe.Pointer) {
	C.kerntuneCallHookRunner(fn, ctx, ws, (C.kerntune_get_fn)(get))
}
