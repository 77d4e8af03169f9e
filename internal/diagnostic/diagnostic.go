package diagnostic

import (
	"fmt"
	"strings"
)

// Severity represents the severity level of a diagnostic message.
type Severity int

const (
	Error Severity = iota
	Warning
	Info
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	default:
		return "unknown"
	}
}

// Diagnostic is a single compiler error, warning, or info message,
// positioned at a source file/line/column.
type Diagnostic struct {
	Severity Severity
	Message  string
	File     string
	Line     int
	Column   int
	Hint     string // optional suggestion, not part of the stable wire form
}

// Format renders a diagnostic in the stable wire form:
// <file>:<line>:<column>: <severity>: <message>
func (d Diagnostic) Format() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s", d.File, d.Line, d.Column, d.Severity, d.Message)
}

// Diagnostics is an append-only collection of diagnostics. The lexer,
// parser and checker each fill a collection of their own; a compile
// reports the collection of the last stage it ran, with IR validation
// errors appended to the checker's.
type Diagnostics struct {
	items []Diagnostic
}

// New creates a new empty Diagnostics collection.
func New() *Diagnostics {
	return &Diagnostics{}
}

// Errorf appends an error-severity diagnostic.
func (d *Diagnostics) Errorf(file string, line, col int, format string, args ...interface{}) {
	d.items = append(d.items, Diagnostic{
		Severity: Error,
		Message:  fmt.Sprintf(format, args...),
		File:     file,
		Line:     line,
		Column:   col,
	})
}

// Warningf appends a warning-severity diagnostic.
func (d *Diagnostics) Warningf(file string, line, col int, format string, args ...interface{}) {
	d.items = append(d.items, Diagnostic{
		Severity: Warning,
		Message:  fmt.Sprintf(format, args...),
		File:     file,
		Line:     line,
		Column:   col,
	})
}

// Infof appends an info-severity diagnostic.
func (d *Diagnostics) Infof(file string, line, col int, format string, args ...interface{}) {
	d.items = append(d.items, Diagnostic{
		Severity: Info,
		Message:  fmt.Sprintf(format, args...),
		File:     file,
		Line:     line,
		Column:   col,
	})
}

// ErrorWithHint appends an error diagnostic carrying a suggestion. The
// hint is CLI presentation only; it never appears in Format's wire form.
func (d *Diagnostics) ErrorWithHint(file string, line, col int, msg, hint string) {
	d.items = append(d.items, Diagnostic{
		Severity: Error,
		Message:  msg,
		File:     file,
		Line:     line,
		Column:   col,
		Hint:     hint,
	})
}

// Append merges another collection's items into this one, preserving
// order.
func (d *Diagnostics) Append(other *Diagnostics) {
	if other == nil {
		return
	}
	d.items = append(d.items, other.items...)
}

// HasErrors reports whether any error-severity diagnostic is present.
// A stage checks this on the prior stage's sink before running.
func (d *Diagnostics) HasErrors() bool {
	for _, item := range d.items {
		if item.Severity == Error {
			return true
		}
	}
	return false
}

// All returns every diagnostic in the order they were added.
func (d *Diagnostics) All() []Diagnostic {
	return d.items
}

// Count returns the total number of diagnostics.
func (d *Diagnostics) Count() int {
	return len(d.items)
}

// ErrorCount returns the number of error-level diagnostics.
func (d *Diagnostics) ErrorCount() int {
	count := 0
	for _, item := range d.items {
		if item.Severity == Error {
			count++
		}
	}
	return count
}

// WarningCount returns the number of warning-level diagnostics.
func (d *Diagnostics) WarningCount() int {
	count := 0
	for _, item := range d.items {
		if item.Severity == Warning {
			count++
		}
	}
	return count
}

// Format renders every diagnostic, one per line, in the stable wire
// form produced by Diagnostic.Format.
func (d *Diagnostics) Format() string {
	if len(d.items) == 0 {
		return ""
	}
	var b strings.Builder
	for i, item := range d.items {
		b.WriteString(item.Format())
		if i < len(d.items)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Clear removes all diagnostics from the collection.
func (d *Diagnostics) Clear() {
	d.items = nil
}
