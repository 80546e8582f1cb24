// Package diag implements the diagnostic sink ("context") the lexer and
// parser report into: a concurrency-safe collector of located, severity
// tagged messages.
package diag

import (
	"fmt"
	"sync"

	"github.com/kestrelscript/dmtree/location"
)

// Severity ranks a Diagnostic's importance.
type Severity int

const (
	Hint Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Hint:
		return "hint"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Kind classifies where a Diagnostic originated.
type Kind int

const (
	KindIO Kind = iota
	KindLexical
	KindSyntactic
	KindSemanticHint
	KindTree
)

// Diagnostic is a single located, severity-tagged report.
type Diagnostic struct {
	Location location.Location
	Severity Severity
	Kind     Kind
	Message  string
	Cause    error
}

func (d Diagnostic) String() string {
	if d.Cause != nil {
		return fmt.Sprintf("%s: %s: %s (%v)", d.Location, d.Severity, d.Message, d.Cause)
	}
	return fmt.Sprintf("%s: %s: %s", d.Location, d.Severity, d.Message)
}

// Context is the diagnostic sink shared by a lexer/parser pair, and safe
// for concurrent registration across multiple file parses.
type Context struct {
	mu    sync.Mutex
	diags []Diagnostic
}

// NewContext returns an empty diagnostic context.
func NewContext() *Context {
	return &Context{}
}

// RegisterError records d. Despite the name (kept for symmetry with the
// external contract described by the spec this package implements), d may
// carry any severity.
func (c *Context) RegisterError(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diags = append(c.diags, d)
}

// Report is a convenience wrapper around RegisterError.
func (c *Context) Report(loc location.Location, sev Severity, kind Kind, message string) {
	c.RegisterError(Diagnostic{Location: loc, Severity: sev, Kind: kind, Message: message})
}

// Reportf is Report with fmt.Sprintf-style formatting.
func (c *Context) Reportf(loc location.Location, sev Severity, kind Kind, format string, args ...any) {
	c.Report(loc, sev, kind, fmt.Sprintf(format, args...))
}

// Errors returns a snapshot of all diagnostics recorded so far, in the
// order they were registered.
func (c *Context) Errors() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.diags))
	copy(out, c.diags)
	return out
}

// AnyErrorSeverity reports whether any recorded diagnostic is at Error
// severity, the value callers pass as `sloppy` to objtree.Tree.Finalize.
func (c *Context) AnyErrorSeverity() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}
