// Package compiler implements spec.md §4.F: spawning the native compiler as
// a subprocess to build a kernel's per-individual shared object, and
// loading the result.
//
// Grounded on blasr/blasr.go's os/exec spawn-and-capture-stderr pattern
// (the teacher's own idiom for driving an external native tool), not on
// biogo/external's struct-tag argument builder — see DESIGN.md for why that
// dependency does not fit a dynamically-sized, per-individual argument
// list.
package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"

	"github.com/kerntune/kerntune/internal/ffi"
)

// ErrSpawn is returned when the compiler process could not be started or
// waited on.
var ErrSpawn = errors.New("compiler: failed to spawn compiler process")

// CompilationError wraps a non-zero compiler exit, carrying its stderr when
// available (spec.md §7: "rich enough to surface the compiler's own
// diagnostics").
type CompilationError struct {
	Diagnostics string // empty if stderr could not be captured
	HasOutput   bool
}

func (e *CompilationError) Error() string {
	if e.HasOutput {
		return fmt.Sprintf("compiler: compilation failed:\n%s", e.Diagnostics)
	}
	return "compiler: compilation failed"
}

// Compile spawns compilerPath with `-shared -o outputPath <args...>`,
// captures stderr on failure, and (on success) loads the resulting shared
// object.
func Compile(compilerPath, outputPath string, args []string) (*ffi.Library, error) {
	full := append([]string{"-shared", "-o", outputPath}, args...)
	cmd := exec.Command(compilerPath, full...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpawn, err)
	}
	err := cmd.Wait()
	if err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			return nil, fmt.Errorf("%w: %v", ErrSpawn, err)
		}
		return nil, &CompilationError{Diagnostics: stderr.String(), HasOutput: stderr.Len() > 0}
	}

	lib, err := ffi.Load(outputPath)
	if err != nil {
		return nil, fmt.Errorf("compiler: loading compiled output: %w", err)
	}
	return lib, nil
}
