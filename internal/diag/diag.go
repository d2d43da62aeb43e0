// Package diag carries non-fatal parse problems from the extraction layer to
// the caller. Every warning is logged when recorded and kept on the collector
// so a batch can be flagged or failed on what accumulated.
package diag

import (
	"fmt"

	"github.com/rs/zerolog"

	"invoicefiler/internal/logger"
)

// Warning is one non-fatal issue found while building an invoice.
type Warning struct {
	Op      string `json:"op"`
	Field   string `json:"field,omitempty"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	s := w.Op + ": " + w.Message
	if w.Field != "" {
		s = w.Op + ": " + w.Field + ": " + w.Message
	}
	if w.Value != "" {
		s += fmt.Sprintf(" (value: %q)", w.Value)
	}
	return s
}

// Collector accumulates warnings. A nil *Collector is usable and only logs.
type Collector struct {
	warnings []Warning
	log      zerolog.Logger
}

// NewCollector returns a collector that logs through log.
func NewCollector(log zerolog.Logger) *Collector {
	return &Collector{log: log}
}

// Warn records a warning and logs it at warn level.
func (c *Collector) Warn(op, field, value, message string) {
	w := Warning{Op: op, Field: field, Value: value, Message: message}

	l := logger.WithComponent("diag")
	if c != nil {
		l = c.log
		c.warnings = append(c.warnings, w)
	}
	l.Warn().
		Str("op", op).
		Str("field", field).
		Str("value", value).
		Msg(message)
}

// Warnings returns a copy of the recorded warnings.
func (c *Collector) Warnings() []Warning {
	if c == nil {
		return nil
	}
	out := make([]Warning, len(c.warnings))
	copy(out, c.warnings)
	return out
}

// Strings renders the recorded warnings for reports.
func (c *Collector) Strings() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.warnings))
	for _, w := range c.warnings {
		out = append(out, w.String())
	}
	return out
}

// Len is the number of recorded warnings; zero for a nil collector.
func (c *Collector) Len() int {
	if c == nil {
		return 0
	}
	return len(c.warnings)
}

// HasWarnings reports whether any warning was recorded.
func (c *Collector) HasWarnings() bool {
	return c.Len() > 0
}
