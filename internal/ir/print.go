package ir

import (
	"fmt"
	"strings"
)

// Print renders a program as a deterministic textual dump: one
// function header per function, one instruction per line underneath
// in `TAG arg1 arg2 ...` form. Two compiles of the same checked
// program produce byte-identical output, which is what makes this
// useful both for debugging and as a back-end hand-off format.
func Print(prog *Program) string {
	var b strings.Builder
	for _, fn := range prog.Functions {
		printFunction(&b, fn)
	}
	return b.String()
}

func printFunction(b *strings.Builder, fn *Function) {
	fmt.Fprintf(b, "func %s(%s)", fn.Name, strings.Join(fn.Params, ", "))
	if fn.ReturnType != "" {
		fmt.Fprintf(b, " %s", fn.ReturnType)
	}
	b.WriteString("\n")
	for _, ins := range fn.Body {
		b.WriteString("  ")
		b.WriteString(ins.String())
		b.WriteString("\n")
	}
}
