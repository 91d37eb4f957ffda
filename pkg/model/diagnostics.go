package model

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Severity grades a Diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic reports a configuration problem found while synthesising a type.
// Property is empty for type-level problems.
type Diagnostic struct {
	Severity Severity
	Type     string
	Property string
	Message  string
}

func (d Diagnostic) Error() string {
	if d.Property == "" {
		return fmt.Sprintf("%s: %s: %s", d.Severity, d.Type, d.Message)
	}
	return fmt.Sprintf("%s: %s.%s: %s", d.Severity, d.Type, d.Property, d.Message)
}

// Errorf builds an error-severity diagnostic.
func Errorf(typeName, property, format string, args ...any) Diagnostic {
	return Diagnostic{
		Severity: SeverityError,
		Type:     typeName,
		Property: property,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Warnf builds a warning-severity diagnostic.
func Warnf(typeName, property, format string, args ...any) Diagnostic {
	d := Errorf(typeName, property, format, args...)
	d.Severity = SeverityWarning
	return d
}

// Diagnostics is an ordered list of diagnostics for one run.
type Diagnostics []Diagnostic

// HasErrors reports whether any diagnostic has error severity.
func (ds Diagnostics) HasErrors() bool {
	for _, d := range ds {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Err joins the error-severity diagnostics, or returns nil.
func (ds Diagnostics) Err() error {
	var errs []error
	for _, d := range ds {
		if d.Severity == SeverityError {
			errs = append(errs, d)
		}
	}
	return errors.Join(errs...)
}

// Sink receives diagnostics from concurrent runs.
type Sink interface {
	Report(d Diagnostic)
}

// LogSink writes diagnostics through a zerolog logger.
type LogSink struct {
	Logger zerolog.Logger
}

// Report logs d at warn or error level.
func (s LogSink) Report(d Diagnostic) {
	event := s.Logger.Warn()
	if d.Severity == SeverityError {
		event = s.Logger.Error()
	}
	event.
		Str("type", d.Type).
		Str("property", d.Property).
		Msg(d.Message)
}

// Collector is a Sink retaining every diagnostic. It is safe for concurrent
// use.
type Collector struct {
	mu    sync.Mutex
	items Diagnostics
}

// Report appends d.
func (c *Collector) Report(d Diagnostic) {
	c.mu.Lock()
	c.items = append(c.items, d)
	c.mu.Unlock()
}

// Diagnostics returns a copy of the collected diagnostics.
func (c *Collector) Diagnostics() Diagnostics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append(Diagnostics(nil), c.items...)
}

// MultiSink fans diagnostics out to several sinks.
type MultiSink []Sink

// Report forwards d to every sink.
func (m MultiSink) Report(d Diagnostic) {
	for _, s := range m {
		if s != nil {
			s.Report(d)
		}
	}
}
