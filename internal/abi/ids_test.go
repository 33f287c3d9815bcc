package abi

import "testing"

// TestIDsArePinned guards against accidental renumbering of the ABI: a
// future edit that changes one of these values would break every kernel
// compiled against the old table, silently.
func TestIDsArePinned(t *testing.T) {
	want := map[ID]int32{
		ContextGetWorkingDirectory: 0x00,
		ContextInvalidate:          0x01,
		ContextAppendArgument:      0x02,
		ParameterGetInteger:        0x10,
		ParameterGetSwitch:         0x11,
		ParameterGetKeyword:        0x12,
		WorkspaceGetPtr:            0x20,
		RunnerResult:               0x30,
	}
	for id, hex := range want {
		if int32(id) != hex {
			t.Fatalf("id %v = 0x%02x, want 0x%02x", id, int32(id), hex)
		}
	}
	if len(Known) != len(want) {
		t.Fatalf("Known has %d entries, want %d", len(Known), len(want))
	}
}
