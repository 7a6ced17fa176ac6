// Package diag defines the diagnostic value the core emits: a message tied
// to a source range, a severity level, and an optional fix-it suggestion.
// Pretty-printing (terminal colors, IDE squiggles) is a driver concern and
// lives outside this package.
package diag

import (
	"fmt"
	"sort"

	"github.com/basilisk-labs/sqlitec/ast"
)

// Level is a diagnostic's severity.
type Level uint8

const (
	Warning Level = iota
	Error
)

func (l Level) String() string {
	if l == Error {
		return "error"
	}
	return "warning"
}

// SuggestionKind distinguishes the shape of a fix-it suggestion.
type SuggestionKind uint8

const (
	NoSuggestion SuggestionKind = iota
	Replace
	Append
)

// Suggestion is an optional fix-it attached to a diagnostic.
type Suggestion struct {
	Kind SuggestionKind
	Text string
}

// Diagnostic is one problem found during compilation, anchored at a
// half-open byte range over the statement's original source.
type Diagnostic struct {
	Message    string
	Level      Level
	Range      ast.Range
	Suggestion Suggestion
	// File identifies the source file the range belongs to. Populated by
	// callers that compile more than one file in a session; empty for
	// single-statement use.
	File string
}

// Errorf builds an error-level diagnostic at r with no suggestion.
func Errorf(r ast.Range, format string, args ...any) Diagnostic {
	return Diagnostic{Message: fmt.Sprintf(format, args...), Level: Error, Range: r}
}

// Warnf builds a warning-level diagnostic at r with no suggestion.
func Warnf(r ast.Range, format string, args ...any) Diagnostic {
	return Diagnostic{Message: fmt.Sprintf(format, args...), Level: Warning, Range: r}
}

// WithReplace attaches a "replace the span with this text" suggestion.
func (d Diagnostic) WithReplace(text string) Diagnostic {
	d.Suggestion = Suggestion{Kind: Replace, Text: text}
	return d
}

// WithAppend attaches an "append this text after the span" suggestion.
func (d Diagnostic) WithAppend(text string) Diagnostic {
	d.Suggestion = Suggestion{Kind: Append, Text: text}
	return d
}

// HasErrors reports whether any diagnostic in the list is error-level.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Level == Error {
			return true
		}
	}
	return false
}

// SortByRange orders diagnostics ascending by source-range start, breaking
// ties by end so that a shorter range sorts before a longer one starting at
// the same position. Required for deterministic diagnostic emission.
func SortByRange(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		if diags[i].Range.Start != diags[j].Range.Start {
			return diags[i].Range.Start < diags[j].Range.Start
		}
		return diags[i].Range.End < diags[j].Range.End
	})
}
