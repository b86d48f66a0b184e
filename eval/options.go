package eval

// BuiltInMetadataNames is the fixed set of reserved, filesystem/path-derived
// metadata names every item implicitly carries.
var BuiltInMetadataNames = map[string]bool{
	"FullPath":                 true,
	"RootDir":                  true,
	"Filename":                 true,
	"Extension":                true,
	"RelativeDir":              true,
	"Directory":                true,
	"RecursiveDir":             true,
	"Identity":                 true,
	"ModifiedTime":             true,
	"CreatedTime":              true,
	"AccessedTime":             true,
	"DefiningProjectFullPath":  true,
	"DefiningProjectDirectory": true,
	"DefiningProjectName":      true,
	"DefiningProjectExtension": true,
}

// Options bundles every toggle the expanders and the Include operation
// consult, playing the role a plain config struct plays for a long-running
// engine.
type Options struct {
	// EnableBuiltInMetadata allows the fixed set of BuiltInMetadataNames to
	// resolve. When false, a %(FullPath) style reference is left as a
	// literal, unexpanded token.
	EnableBuiltInMetadata bool

	// EnableCustomMetadata allows non-built-in %(...) names to resolve
	// against an item's own metadata table.
	EnableCustomMetadata bool

	// Truncate shortens any single metadata substitution longer than 1024
	// characters to its first 1021 characters plus "...".
	Truncate bool

	// LogOnItemMetadataSelfReference emits a low-importance diagnostic when
	// a metadata table resolves a reference against the same item type it is
	// itself scoped to.
	LogOnItemMetadataSelfReference bool

	// BreakOnNotEmpty signals the property expander to stop early once
	// partial expansion has already produced non-empty output. The expander
	// then returns only the output produced so far; it returns no nil or
	// other sentinel value to mark the early exit.
	BreakOnNotEmpty bool

	// LeavePropertiesUnexpandedOnError suppresses property-function
	// invocation errors, leaving the literal $(...) reference in place
	// instead of propagating InvalidProject.
	LeavePropertiesUnexpandedOnError bool

	// LazyWildcardEvaluation re-expands a base item's include as a glob
	// against the project directory before pairing it for transforms,
	// instead of using its already-evaluated include verbatim.
	LazyWildcardEvaluation bool

	// IncludeNullEntries preserves (nil, baseItem) placeholders for
	// transforms that would otherwise drop empty strings, keeping
	// correlation with the base item list.
	IncludeNullEntries bool

	// LargeRemoveThreshold is the list length at or above which Remove
	// switches from a linear scan to building a normalized-path dictionary
	// and bulk-removing.
	LargeRemoveThreshold int

	// MaxMetadataValueLength is the soft limit enforced by Truncate.
	MaxMetadataValueLength int
}

// DefaultOptions mirrors the real evaluator's defaults: built-in metadata and
// custom metadata both enabled, truncation on, a 500-item threshold for the
// large-list Remove strategy switch, and a 1024-character truncation
// ceiling.
func DefaultOptions() Options {
	return Options{
		EnableBuiltInMetadata:            true,
		EnableCustomMetadata:             true,
		Truncate:                         true,
		LogOnItemMetadataSelfReference:   false,
		BreakOnNotEmpty:                  false,
		LeavePropertiesUnexpandedOnError: false,
		LazyWildcardEvaluation:           false,
		IncludeNullEntries:               false,
		LargeRemoveThreshold:             500,
		MaxMetadataValueLength:           1024,
	}
}
