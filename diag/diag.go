// Package diag implements the rustc-style diagnostic model used across the
// parser and transform pipeline: a collector accumulates Message values
// instead of failing fast, and Message.Format renders severity, headline,
// location, problem and hints on separate lines (no source snippet).
package diag

import (
	"fmt"
	"strings"

	"github.com/quarto-dev/quartomd-go/sourcemap"
)

// Severity classifies a diagnostic's importance, from Hint (lowest) to
// Error (highest). Collector.HasErrors checks for Error only.
type Severity int

const (
	Hint Severity = iota
	Info
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Hint:
		return "hint"
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Message is a single diagnostic: a headline, an optional longer problem
// description, zero or more remediation hints, and the source location
// it concerns. Built with NewBuilder rather than constructed directly.
type Message struct {
	Severity Severity
	Headline string
	Problem  string
	Hints    []string
	Location sourcemap.SourceInfo
}

// Format renders the message the way EnhancedError.Format does: a header
// line, the problem body if present, and each hint indented beneath it.
func (m Message) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n  --> %s\n", m.Severity, m.Headline, m.Location)
	if m.Problem != "" {
		fmt.Fprintf(&b, "  %s\n", m.Problem)
	}
	for _, h := range m.Hints {
		fmt.Fprintf(&b, "  hint: %s\n", h)
	}
	return b.String()
}

// Builder constructs a Message field by field, mirroring EnhancedError's
// WithAnnotation/WithSuggestion chain.
type Builder struct {
	msg Message
}

// NewBuilder starts a diagnostic at the given severity, headline and
// location. Call Problem/Hint any number of times, then Build.
func NewBuilder(sev Severity, headline string, loc sourcemap.SourceInfo) *Builder {
	return &Builder{msg: Message{Severity: sev, Headline: headline, Location: loc}}
}

// Problem attaches a longer description of what went wrong.
func (b *Builder) Problem(text string) *Builder {
	b.msg.Problem = text
	return b
}

// Hint appends one remediation suggestion.
func (b *Builder) Hint(text string) *Builder {
	b.msg.Hints = append(b.msg.Hints, text)
	return b
}

// Build finalizes the message.
func (b *Builder) Build() Message {
	return b.msg
}

// Collector accumulates diagnostics produced over the lifetime of a parse
// or transform run. It never returns an error on its own; callers decide
// what severity threshold constitutes pipeline failure.
type Collector struct {
	messages []Message
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Push appends one diagnostic.
func (c *Collector) Push(m Message) {
	c.messages = append(c.messages, m)
}

// Messages returns all collected diagnostics in emission order.
func (c *Collector) Messages() []Message {
	return c.messages
}

// HasErrors reports whether any collected message is at Error severity.
func (c *Collector) HasErrors() bool {
	for _, m := range c.messages {
		if m.Severity == Error {
			return true
		}
	}
	return false
}

// CountBySeverity tallies messages per severity, used by tests asserting
// "exactly one warning" style invariants.
func (c *Collector) CountBySeverity(sev Severity) int {
	n := 0
	for _, m := range c.messages {
		if m.Severity == sev {
			n++
		}
	}
	return n
}
