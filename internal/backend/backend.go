// Package backend defines the contract a Wabbit back-end must satisfy.
// Concrete byte-level encoding of any target is out of scope here;
// the adapters in internal/llvmbe, internal/wasmbe, and internal/pybe
// document what each target's encoder must honor and return
// ErrNotImplemented.
package backend

import (
	"errors"

	"github.com/lhaig/wabbitc/internal/checker"
	"github.com/lhaig/wabbitc/internal/ir"
)

// ErrNotImplemented is returned by every adapter's Emit: the
// compiler core stops at a validated, structured IR program and a
// symbol table, and hands both to whichever back-end the caller
// wants. Producing actual target bytes is outer-layer work.
var ErrNotImplemented = errors.New("backend: concrete emission not implemented")

// Backend turns a validated IR program plus its global symbol table
// into target bytes.
type Backend interface {
	Name() string
	Emit(prog *ir.Program, symtab *checker.SymbolTable) ([]byte, error)
}
