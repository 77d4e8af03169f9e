// Command wabbitc is the Wabbit compiler-core driver: lex, parse,
// check, lower, validate, and (for a named back end) emit.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lhaig/wabbitc/internal/backend"
	"github.com/lhaig/wabbitc/internal/compiler"
	"github.com/lhaig/wabbitc/internal/diagnostic"
	"github.com/lhaig/wabbitc/internal/formatter"
	"github.com/lhaig/wabbitc/internal/lexer"
	"github.com/lhaig/wabbitc/internal/linter"
	"github.com/lhaig/wabbitc/internal/llvmbe"
	"github.com/lhaig/wabbitc/internal/parser"
	"github.com/lhaig/wabbitc/internal/pybe"
	"github.com/lhaig/wabbitc/internal/wasmbe"
)

var version = "dev"

var backends = map[string]backend.Backend{
	"llvm":   llvmbe.Backend{},
	"wasm":   wasmbe.Backend{},
	"python": pybe.Backend{},
}

func main() {
	root := &cobra.Command{
		Use:     "wabbitc",
		Short:   "The Wabbit language compiler core",
		Version: version,
	}
	root.AddCommand(newCompileCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newFmtCmd())
	root.AddCommand(newLintCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newCompileCmd() *cobra.Command {
	var emitIR bool
	var backendName string

	cmd := &cobra.Command{
		Use:   "compile <file.wb>",
		Short: "Run the full pipeline over a source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := args[0]
			src, err := os.ReadFile(file)
			if err != nil {
				return err
			}

			opts := compiler.Options{EmitDebugIR: emitIR}
			if backendName != "" {
				be, ok := backends[backendName]
				if !ok {
					return fmt.Errorf("unknown backend %q (known: llvm, wasm, python)", backendName)
				}
				opts.Backend = be
			}

			res := compiler.Compile(file, string(src), opts)
			printDiagnostics(res.Diagnostics)
			if res.Diagnostics.HasErrors() {
				return fmt.Errorf("compilation failed")
			}

			if emitIR {
				fmt.Println(res.IR)
			}
			if opts.Backend != nil {
				if res.BackendErr != nil {
					return fmt.Errorf("backend %q: %w", res.BackendName, res.BackendErr)
				}
				os.Stdout.Write(res.BackendOutput)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&emitIR, "emit-ir", false, "print the lowered IR")
	cmd.Flags().StringVar(&backendName, "backend", "", "back end to emit through (llvm, wasm, python)")
	return cmd
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file.wb>",
		Short: "Parse and type-check only, reporting diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := args[0]
			src, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			diags := compiler.Check(file, string(src))
			printDiagnostics(diags)
			if diags.HasErrors() {
				return fmt.Errorf("check failed")
			}
			return nil
		},
	}
}

func newFmtCmd() *cobra.Command {
	var checkOnly bool
	cmd := &cobra.Command{
		Use:   "fmt <file.wb>",
		Short: "Format source to canonical style",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := args[0]
			src, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			tokens, lexDiags := lexer.Tokenize(file, string(src))
			if lexDiags.HasErrors() {
				printDiagnostics(lexDiags)
				return fmt.Errorf("format failed")
			}
			p := parser.New(file, tokens)
			prog := p.Parse()
			if p.Diagnostics().HasErrors() {
				printDiagnostics(p.Diagnostics())
				return fmt.Errorf("format failed")
			}

			formatted := formatter.Format(prog)
			if checkOnly {
				if formatted != string(src) {
					return fmt.Errorf("%s is not formatted", file)
				}
				return nil
			}
			return os.WriteFile(file, []byte(formatted), 0644)
		},
	}
	cmd.Flags().BoolVar(&checkOnly, "check", false, "exit with an error if the file is not already formatted")
	return cmd
}

func newLintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint <file.wb>",
		Short: "Run style and best-practice checks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := args[0]
			src, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			tokens, lexDiags := lexer.Tokenize(file, string(src))
			if lexDiags.HasErrors() {
				printDiagnostics(lexDiags)
				return fmt.Errorf("lint failed")
			}
			p := parser.New(file, tokens)
			prog := p.Parse()
			if p.Diagnostics().HasErrors() {
				printDiagnostics(p.Diagnostics())
				return fmt.Errorf("lint failed")
			}
			printDiagnostics(linter.Lint(file, prog))
			return nil
		},
	}
}

func printDiagnostics(diags *diagnostic.Diagnostics) {
	for _, d := range diags.All() {
		line := d.Format()
		switch d.Severity {
		case diagnostic.Error:
			color.New(color.FgRed, color.Bold).Fprintln(os.Stderr, line)
		case diagnostic.Warning:
			color.New(color.FgYellow).Fprintln(os.Stderr, line)
		default:
			fmt.Fprintln(os.Stderr, line)
		}
		if d.Hint != "" {
			color.New(color.Faint).Fprintf(os.Stderr, "  hint: %s\n", d.Hint)
		}
	}
}
