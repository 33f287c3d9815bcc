// Package abi defines the stable, integer-keyed C-ABI dispatch table that
// bridges user-supplied native code (helper, hooks, runner) to host state
// (spec.md §4.E). The host exposes exactly one exported `get(id)` symbol;
// native code resolves whichever callbacks it needs through it.
//
// Ids are pinned bit-exact against original_source/src/runner.rs's
// Interface enum (0x00 GetPtr, 0x10 Result) and generalized to the rest of
// spec.md's table, which that earlier revision had not yet grown. New ids
// must never reuse old numbers; deprecated ids return null from Get.
package abi

// ID identifies one host callback in the dispatch table. Values are part of
// the ABI and must never change once shipped.
type ID int32

const (
	ContextGetWorkingDirectory ID = 0x00
	ContextInvalidate          ID = 0x01
	ContextAppendArgument      ID = 0x02

	ParameterGetInteger ID = 0x10
	ParameterGetSwitch  ID = 0x11
	ParameterGetKeyword ID = 0x12

	WorkspaceGetPtr ID = 0x20

	RunnerResult ID = 0x30
)

// Known lists every id currently served by Get, for table tests and
// diagnostics.
var Known = []ID{
	ContextGetWorkingDirectory,
	ContextInvalidate,
	ContextAppendArgument,
	ParameterGetInteger,
	ParameterGetSwitch,
	ParameterGetKeyword,
	WorkspaceGetPtr,
	RunnerResult,
}
