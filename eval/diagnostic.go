package eval

import "github.com/sirupsen/logrus"

// Importance mirrors the three-level importance scale a real build logger
// exposes, so a Diagnostic sink can decide what to surface at -v vs default
// verbosity.
type Importance int

const (
	ImportanceLow Importance = iota
	ImportanceNormal
	ImportanceHigh
)

func (i Importance) String() string {
	switch i {
	case ImportanceLow:
		return "low"
	case ImportanceNormal:
		return "normal"
	case ImportanceHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Diagnostic is the external logging-sink collaborator: logComment with an
// importance, a location, a resource key, and format args; no exceptions
// thrown across the boundary.
type Diagnostic interface {
	LogComment(importance Importance, loc Location, resourceKey string, args ...interface{})
}

// LogrusDiagnostic is a Diagnostic backed by a logrus.Entry: every
// comment becomes a structured log line with the location, resource key, and
// correlation id attached as fields, never a panic or error return across
// the boundary.
type LogrusDiagnostic struct {
	entry *logrus.Entry
}

// NewLogrusDiagnostic wraps logger, tagging every emitted line with
// correlationID so concurrent evaluations in the same process don't
// interleave unattributably.
func NewLogrusDiagnostic(logger *logrus.Logger, correlationID string) *LogrusDiagnostic {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogrusDiagnostic{entry: logger.WithField("eval_id", correlationID)}
}

func (d *LogrusDiagnostic) LogComment(importance Importance, loc Location, resourceKey string, args ...interface{}) {
	fields := logrus.Fields{
		"resource":   resourceKey,
		"location":   loc.String(),
		"importance": importance.String(),
	}
	entry := d.entry.WithFields(fields)
	switch importance {
	case ImportanceHigh:
		entry.Warnf(resourceKey, args...)
	case ImportanceLow:
		entry.Debugf(resourceKey, args...)
	default:
		entry.Infof(resourceKey, args...)
	}
}

// NopDiagnostic discards every comment; used by tests and by callers that
// don't want a logging dependency.
type NopDiagnostic struct{}

func (NopDiagnostic) LogComment(Importance, Location, string, ...interface{}) {}
