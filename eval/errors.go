package eval

import "gopkg.in/src-d/go-errors.v1"

// Error kinds returned by every layer of the evaluator. All of them carry
// enough context (the offending text, plus whatever the caller attaches) to
// let an integrator report the error next to the originating project
// element. None of them are recovered from internally.
var (
	// ErrInvalidItemFunctionSyntax is returned when an item-vector transform
	// names an unknown function with a malformed argument list, or when a
	// function is called with the wrong arity.
	ErrInvalidItemFunctionSyntax = errors.NewKind("invalid item function syntax in %q: %s")

	// ErrCannotEvaluateItemMetadata is returned when a quoted transform
	// template or a %(...) reference cannot be resolved against the current
	// item (unknown custom metadata with no matching built-in modifier).
	ErrCannotEvaluateItemMetadata = errors.NewKind("cannot evaluate item metadata %q: %s")

	// ErrEmbeddedItemVectorCannotBeItemized is returned when an item vector
	// appears somewhere only a scalar property expression is allowed (e.g.
	// nested inside another item vector's non-quoted argument list).
	ErrEmbeddedItemVectorCannotBeItemized = errors.NewKind("the item list %q cannot be used in this context; only property references are valid here")

	// ErrQualifiedMetadataInTransformNotAllowed is returned when a quoted
	// transform template references metadata qualified with an item type,
	// e.g. %(Other.Tag), which only has meaning outside of a transform body.
	ErrQualifiedMetadataInTransformNotAllowed = errors.NewKind("the qualified metadata reference %q is not allowed inside a transform")

	// ErrItemReferencingSelfInTarget mirrors the classic MSBuild diagnostic
	// for an Update/Remove whose item-spec is a bare self-reference combined
	// with metadata matching that cannot be satisfied.
	ErrItemReferencingSelfInTarget = errors.NewKind("item %q referencing itself in a way that cannot be resolved: %s")

	// ErrUnterminatedExpression is returned by the scanner when a $(, @( or
	// %( is never closed.
	ErrUnterminatedExpression = errors.NewKind("unterminated expression starting at offset %d in %q")

	// ErrEmptyMetadataName is returned for %() or %(itemtype.).
	ErrEmptyMetadataName = errors.NewKind("metadata reference in %q has an empty name")

	// ErrUnknownItemFunction is returned when an item-vector transform names
	// a function that is neither an intrinsic nor a resolvable string method.
	ErrUnknownItemFunction = errors.NewKind("unknown item function %q")

	// ErrFilesystemFailure wraps an error returned by the filesystem
	// collaborator (Exists, Enumerate, NormalizePath) during expansion.
	ErrFilesystemFailure = errors.NewKind("filesystem operation %s failed for %q: %s")

	// ErrUnknownOperationKind guards the façade's element-to-operation
	// dispatch against an ItemElement whose Kind is something other than
	// Include/Remove/Update (OpExclude never appears standalone).
	ErrUnknownOperationKind = errors.NewKind("item element of kind %q cannot be compiled to an operation")
)

// InvalidProject is the single structured error kind surfaced to callers for
// every malformed-input condition this core detects. It always carries
// the element Location it was raised for, in addition to whatever *errors.Error
// produced it (one of the Err* kinds above).
type InvalidProject struct {
	Cause    error
	Location Location
}

func (e *InvalidProject) Error() string {
	if e.Location.IsEmpty() {
		return e.Cause.Error()
	}
	return e.Location.String() + ": " + e.Cause.Error()
}

func (e *InvalidProject) Unwrap() error {
	return e.Cause
}

// WrapInvalidProject attaches a location to a raw error produced by one of
// the Err* kinds, producing the InvalidProject shape external callers expect.
func WrapInvalidProject(cause error, loc Location) error {
	if cause == nil {
		return nil
	}
	return &InvalidProject{Cause: cause, Location: loc}
}
