// Package pybe is the transpiled-to-Python back-end adapter.
package pybe

import (
	"github.com/lhaig/wabbitc/internal/backend"
	"github.com/lhaig/wabbitc/internal/checker"
	"github.com/lhaig/wabbitc/internal/ir"
)

// Backend emits Python source. Its Emit must honor the back-end
// collaborator contract: structured control nesting (IF/ENDIF,
// LOOP/ENDLOOP) maps directly onto Python's own if/while statements
// since both are already structured, type-suffixed arithmetic
// collapses back onto Python's single numeric tower (the suffix only
// matters for picking int() vs float() coercions at cast sites),
// PEEK/POKE address a bytearray standing in for Wabbit's flat memory
// with struct.pack/unpack at the matching width, GROW extends that
// bytearray, and __init's statements are emitted before the call to
// main at module scope.
type Backend struct{}

var _ backend.Backend = Backend{}

func (Backend) Name() string { return "python" }

func (Backend) Emit(prog *ir.Program, symtab *checker.SymbolTable) ([]byte, error) {
	return nil, backend.ErrNotImplemented
}
