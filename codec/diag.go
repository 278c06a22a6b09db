package codec

import (
	"fmt"
	"log/slog"
	"reflect"
)

// Warning is one non-fatal problem found during a conversion.
type Warning struct {
	Path    string
	Message string
}

func (w Warning) String() string {
	if w.Path == "" {
		return w.Message
	}
	return w.Path + ": " + w.Message
}

// Diagnostics accumulates the warnings of one top-level call. It is not
// safe for concurrent use and is never shared between calls.
type Diagnostics struct {
	warnings []Warning
}

func (d *Diagnostics) Warnf(path, format string, args ...any) {
	d.warnings = append(d.warnings, Warning{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (d *Diagnostics) Len() int {
	return len(d.warnings)
}

// Warnings returns a copy of the recorded warnings in order.
func (d *Diagnostics) Warnings() []Warning {
	return append([]Warning(nil), d.warnings...)
}

func (d *Diagnostics) Strings() []string {
	return warningStrings(d.warnings)
}

func (d *Diagnostics) Reset() {
	d.warnings = nil
}

// Flush logs the recorded warnings as a single record and clears them. It
// returns what was flushed; nothing is logged when there is nothing to flush.
func (d *Diagnostics) Flush(logger *slog.Logger, op string, t reflect.Type) []Warning {
	if len(d.warnings) == 0 {
		return nil
	}
	res := d.warnings
	d.warnings = nil
	if logger != nil {
		logger.Warn("conversion warnings",
			"op", op,
			"type", typeName(t),
			"count", len(res),
			"warnings", warningStrings(res))
	}
	return res
}

func warningStrings(ws []Warning) []string {
	res := make([]string, len(ws))
	for i, w := range ws {
		res[i] = w.String()
	}
	return res
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
