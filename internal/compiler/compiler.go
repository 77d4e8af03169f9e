// Package compiler orchestrates the pipeline stages -- lexer, parser,
// checker, IR lowering and validation, and an optional back-end --
// into single- and batch-file entry points.
package compiler

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/lhaig/wabbitc/internal/backend"
	"github.com/lhaig/wabbitc/internal/checker"
	"github.com/lhaig/wabbitc/internal/diagnostic"
	"github.com/lhaig/wabbitc/internal/ir"
	"github.com/lhaig/wabbitc/internal/lexer"
	"github.com/lhaig/wabbitc/internal/parser"
)

// Options controls how a source file moves through the pipeline.
type Options struct {
	// EmitDebugIR, when set, fills Result.IR with the flat-text dump
	// of the lowered and validated IR.
	EmitDebugIR bool

	// Backend, when set, is invoked on a successfully lowered and
	// validated program; its output is returned in Result.BackendOutput.
	Backend backend.Backend

	// Logger receives one structured entry per pipeline stage. A nil
	// Logger discards all output.
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Result is the outcome of compiling one file.
type Result struct {
	File          string
	Diagnostics   *diagnostic.Diagnostics
	Symbols       *checker.SymbolTable
	IR            string
	BackendName   string
	BackendOutput []byte
	BackendErr    error
}

// Compile runs the full pipeline for one source file: lex, parse,
// check, lower, validate, and (if configured) emit through a back
// end. Pipeline stages gate on one another -- lex errors stop before
// parsing, parse errors stop before checking, and so on -- since a
// later stage operating on a broken tree only produces noise.
func Compile(file, source string, opts Options) *Result {
	log := opts.logger().With("file", file)
	res := &Result{File: file}

	log.Debug("lexing")
	tokens, lexDiags := lexer.Tokenize(file, source)
	if lexDiags.HasErrors() {
		log.Warn("lex errors", "count", lexDiags.ErrorCount())
		res.Diagnostics = lexDiags
		return res
	}

	log.Debug("parsing")
	p := parser.New(file, tokens)
	prog := p.Parse()
	if p.Diagnostics().HasErrors() {
		log.Warn("parse errors", "count", p.Diagnostics().ErrorCount())
		res.Diagnostics = p.Diagnostics()
		return res
	}

	log.Debug("checking")
	checkResult := checker.Check(file, prog)
	res.Diagnostics = checkResult.Diagnostics
	res.Symbols = checkResult.Symbols
	if checkResult.Diagnostics.HasErrors() {
		log.Warn("check errors", "count", checkResult.Diagnostics.ErrorCount())
		return res
	}

	log.Debug("lowering")
	irProg := ir.Lower(prog)
	if errs := ir.Validate(irProg); len(errs) > 0 {
		for _, e := range errs {
			res.Diagnostics.Errorf(file, 0, 0, "internal: invalid IR: %s", e)
		}
		log.Error("IR failed validation", "errors", len(errs))
		return res
	}

	if opts.EmitDebugIR {
		res.IR = ir.Print(irProg)
	}

	if opts.Backend != nil {
		res.BackendName = opts.Backend.Name()
		log.Debug("emitting", "backend", res.BackendName)
		res.BackendOutput, res.BackendErr = opts.Backend.Emit(irProg, checkResult.Symbols)
		if res.BackendErr != nil {
			log.Warn("backend did not produce output", "backend", res.BackendName, "error", res.BackendErr)
		}
	}

	log.Debug("compiled successfully")
	return res
}

// Source pairs a file name with its contents for CompileBatch.
type Source struct {
	File string
	Text string
}

// CompileBatch compiles each source independently and concurrently,
// returning results in the same order as the input. One file's
// failure does not prevent the others from compiling.
func CompileBatch(ctx context.Context, sources []Source, opts Options) ([]*Result, error) {
	results := make([]*Result, len(sources))
	g, _ := errgroup.WithContext(ctx)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			results[i] = Compile(src.File, src.Text, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("compile batch: %w", err)
	}
	return results, nil
}

// Check runs the pipeline through semantic analysis only, skipping IR
// lowering and back-end emission. Useful for editor-style
// diagnostics where only error reporting matters.
func Check(file, source string) *diagnostic.Diagnostics {
	tokens, lexDiags := lexer.Tokenize(file, source)
	if lexDiags.HasErrors() {
		return lexDiags
	}
	p := parser.New(file, tokens)
	prog := p.Parse()
	if p.Diagnostics().HasErrors() {
		return p.Diagnostics()
	}
	return checker.Check(file, prog).Diagnostics
}
