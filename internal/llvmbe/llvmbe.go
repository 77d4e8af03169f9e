// Package llvmbe is the native back-end adapter, targeting LLVM's
// textual IR.
package llvmbe

import (
	"github.com/lhaig/wabbitc/internal/backend"
	"github.com/lhaig/wabbitc/internal/checker"
	"github.com/lhaig/wabbitc/internal/ir"
)

// Backend emits LLVM IR. Its Emit must honor the back-end
// collaborator contract: structured control nesting (IF/ENDIF,
// LOOP/ENDLOOP) lowers to basic blocks and branch instructions,
// typed constants become typed LLVM constants (i32, double, i8, i1),
// type-suffixed arithmetic picks the matching LLVM instruction
// (add/fadd, icmp/fcmp, and so on), PEEK/POKE become typed load/store
// against a flat byte buffer global at the matching width, GROW
// resizes that buffer, and __init's instructions run inside a module
// constructor invoked before main.
type Backend struct{}

var _ backend.Backend = Backend{}

func (Backend) Name() string { return "llvm" }

func (Backend) Emit(prog *ir.Program, symtab *checker.SymbolTable) ([]byte, error) {
	return nil, backend.ErrNotImplemented
}
