// Package diagnostics formats findings about a CFG the way the front end
// this optimizer was lifted from formats source diagnostics: leveled,
// coded, and styled with fatih/color. The optimizer has no source text to
// quote, so a diagnostic's location is a function/block/instruction
// identity instead of a line:column.
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Level is a diagnostic's severity.
type Level string

const (
	Error Level = "error"
	Warn  Level = "warning"
	Note  Level = "note"
)

// Location pins a Diagnostic to a point in the CFG.
type Location struct {
	Function      string
	Block         string
	InstructionID int // -1 if the diagnostic isn't about one instruction
}

func (l Location) String() string {
	if l.InstructionID < 0 {
		return fmt.Sprintf("%s:%s", l.Function, l.Block)
	}
	return fmt.Sprintf("%s:%s#%d", l.Function, l.Block, l.InstructionID)
}

// Diagnostic is a single structured finding.
type Diagnostic struct {
	Level    Level
	Code     string
	Message  string
	Location Location
	Notes    []string
}

// Log accumulates diagnostics raised over the course of one Optimize run.
type Log struct {
	Diagnostics []Diagnostic
}

// Add appends a diagnostic to the log.
func (l *Log) Add(d Diagnostic) {
	l.Diagnostics = append(l.Diagnostics, d)
}

// HasErrors reports whether any accumulated diagnostic is at Error level.
func (l *Log) HasErrors() bool {
	for _, d := range l.Diagnostics {
		if d.Level == Error {
			return true
		}
	}
	return false
}

// Format renders every diagnostic in l in the reporter's Rust-like style,
// one after another.
func Format(log *Log) string {
	var out strings.Builder
	for _, d := range log.Diagnostics {
		out.WriteString(FormatOne(d))
	}
	return out.String()
}

// FormatOne renders a single diagnostic.
func FormatOne(d Diagnostic) string {
	var result strings.Builder

	levelColor := levelColor(d.Level)
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	if d.Code != "" {
		result.WriteString(fmt.Sprintf("%s[%s]: %s\n", levelColor(string(d.Level)), d.Code, bold(d.Message)))
	} else {
		result.WriteString(fmt.Sprintf("%s: %s\n", levelColor(string(d.Level)), bold(d.Message)))
	}

	result.WriteString(fmt.Sprintf("   %s %s\n", dim("-->"), d.Location))

	noteColor := color.New(color.FgBlue).SprintFunc()
	for _, note := range d.Notes {
		result.WriteString(fmt.Sprintf("   %s %s %s\n", dim("="), noteColor("note:"), note))
	}

	result.WriteString("\n")
	return result.String()
}

func levelColor(level Level) func(...interface{}) string {
	switch level {
	case Error:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case Warn:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	case Note:
		return color.New(color.FgBlue, color.Bold).SprintFunc()
	default:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	}
}
