package checker

import "github.com/lhaig/wabbitc/internal/ast"

// Type aliases ast.Type so checker, ir, and backend code all share one
// definition of Wabbit's closed type set without checker importing a
// type system of its own (the set is small and fixed, so there's
// nothing checker-specific to add to it).
type Type = ast.Type

var (
	TypeInt   = ast.TypeInt
	TypeFloat = ast.TypeFloat
	TypeChar  = ast.TypeChar
	TypeBool  = ast.TypeBool
	TypeError = ast.TypeError
)

// Signature describes a function's parameter and return types, used
// for call-site arity/type checking and exported to back-ends via
// SymbolTable.
type Signature struct {
	Params     []*Type
	ReturnType *Type // nil for a function with no return value
	Imported   bool
}
