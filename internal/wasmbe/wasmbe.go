// Package wasmbe is the WebAssembly back-end adapter.
package wasmbe

import (
	"github.com/lhaig/wabbitc/internal/backend"
	"github.com/lhaig/wabbitc/internal/checker"
	"github.com/lhaig/wabbitc/internal/ir"
)

// Backend emits WebAssembly. Its Emit must honor the back-end
// collaborator contract: structured control nesting maps directly
// onto wasm's own block/loop/br_if/br structure (IF/ENDIF becomes a
// block, LOOP/ENDLOOP becomes loop+block, CBREAK/CONTINUE become
// br_if out to the matching block/loop label), constants carry their
// Wabbit type through to the matching wasm value type (i32/f64),
// arithmetic picks the i32 or f64 opcode family per the IR
// instruction's own type suffix, PEEK/POKE map to wasm's typed
// load/store instructions at the matching width (4 bytes for int's
// i32, 8 for float's f64, 1 for char/bool), GROW
// maps to memory.grow, and __init must be called before main in the
// generated module's start section.
type Backend struct{}

var _ backend.Backend = Backend{}

func (Backend) Name() string { return "wasm" }

func (Backend) Emit(prog *ir.Program, symtab *checker.SymbolTable) ([]byte, error) {
	return nil, backend.ErrNotImplemented
}
