package eval

import (
	"context"

	"github.com/google/uuid"
	opentracing "github.com/opentracing/opentracing-go"
)

// Context threads the external collaborators and cancellation/tracing state
// through a single evaluation.
type Context struct {
	context.Context

	// ID correlates every Diagnostic emitted during one evaluation run; it
	// falls out of actually wiring a logging sink.
	ID string

	Properties  PropertyProvider
	Items       ItemProvider
	Metadata    MetadataTable
	Factory     ItemFactory
	Filesystem  FilesystemCollaborator
	PropertyFns PropertyFunctionEvaluator
	StringFns   StringMethodInvoker
	Conditions  ConditionEvaluator
	Diagnostic  Diagnostic
	Options     Options

	// Tracer, when non-nil, is the tracer StartSpan opens spans from; the
	// operation-list replay (eval/opexec) and the façade each open a span
	// through it. Those spans are not linked to one another as parent and
	// child.
	Tracer opentracing.Tracer
}

// NewContext builds a Context with a fresh correlation ID, a no-op
// Diagnostic, and DefaultOptions — callers typically override Properties,
// Items, Metadata, Factory, and Filesystem before use.
func NewContext(parent context.Context) *Context {
	if parent == nil {
		parent = context.Background()
	}
	return &Context{
		Context:    parent,
		ID:         uuid.NewString(),
		Diagnostic: NopDiagnostic{},
		Options:    DefaultOptions(),
	}
}

// Cancelled reports whether the underlying context.Context has been
// cancelled — a cooperative cancellation check made at fragment boundaries
// and before glob expansion.
func (c *Context) Cancelled() bool {
	select {
	case <-c.Done():
		return true
	default:
		return false
	}
}

// LogComment forwards to the configured Diagnostic sink, or is a no-op when
// none is set.
func (c *Context) LogComment(importance Importance, loc Location, resourceKey string, args ...interface{}) {
	if c.Diagnostic == nil {
		return
	}
	c.Diagnostic.LogComment(importance, loc, resourceKey, args...)
}

// StartSpan opens a new span named operation from c.Tracer, or a no-op
// span when no tracer is configured. The span carries no parent reference.
func (c *Context) StartSpan(operation string) opentracing.Span {
	tracer := c.Tracer
	if tracer == nil {
		tracer = opentracing.NoopTracer{}
	}
	return tracer.StartSpan(operation)
}
