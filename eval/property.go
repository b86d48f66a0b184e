package eval

// Property is a read-only name/value pair. Properties never mutate once
// constructed; redefinition within a project is modeled as the property
// provider returning a different Property for the same name on a later
// lookup, not as mutating an existing one.
type Property struct {
	Name  string
	Value string
}

// PropertyProvider is the external collaborator contract for a read-only,
// concurrency-safe property lookup surface.
type PropertyProvider interface {
	// Lookup returns the property named name, or ok=false if undefined.
	Lookup(name string) (Property, bool)
	// Enumerate yields every defined property; order is provider-defined.
	Enumerate() []Property
}

// ItemProvider is the external collaborator contract that resolves an
// item-type name to its current, deep-immutable item collection.
type ItemProvider interface {
	// Lookup returns every item currently visible for itemType. An unknown
	// type yields a nil/empty slice, never an error.
	Lookup(itemType string) []*Item
}

// MetadataTable is the external collaborator contract for %(...) resolution:
// a lookup from an optional item-type qualifier plus a metadata name to its
// escaped value.
type MetadataTable interface {
	// GetEscapedValue returns the escaped value for (itemType, name); itemType
	// is empty for an unqualified reference. Returns "" when absent.
	GetEscapedValue(itemType, name string) string
	// AssociatedItemType returns the item type this table is scoped to, and
	// whether it is scoped to one at all — used for the
	// LogOnItemMetadataSelfReference diagnostic.
	AssociatedItemType() (string, bool)
}

// ItemFactory is the external collaborator contract that builds new items
// and decorates existing ones with metadata.
type ItemFactory interface {
	// Create constructs a new item. includeBeforeWildcardExpansion carries
	// the originating glob text for items produced by wildcard expansion, or
	// equals include otherwise.
	Create(itemType, include, includeBeforeWildcardExpansion, definingProject string) *Item
}

// FilesystemCollaborator is the external collaborator contract through which
// wildcard/glob enumeration and path normalization happen; this core never
// touches a real filesystem directly. This interface is the seam a real
// implementation plugs into.
type FilesystemCollaborator interface {
	// FileOrDirectoryExists reports whether path exists, for the Exists()
	// intrinsic transform.
	FileOrDirectoryExists(path string) bool
	// Enumerate resolves an include glob under baseDir against excludes,
	// returning escaped matching paths.
	Enumerate(baseDir, includeGlob string, excludes []string) ([]string, error)
	// NormalizePath returns the canonical form of path used as a dictionary
	// key for bulk Remove / exclusion tests.
	NormalizePath(path string) string
	// CurrentWorkingDirectory returns the directory glob expansion is
	// relative to when no project directory is available.
	CurrentWorkingDirectory() string

	// ModifiedTime, CreatedTime, and AccessedTime back the three timestamp
	// built-in metadata names; they are filesystem probes and therefore live
	// on this external collaborator rather than in the core. ok is false
	// when path does not exist.
	ModifiedTime(path string) (value string, ok bool)
	CreatedTime(path string) (value string, ok bool)
	AccessedTime(path string) (value string, ok bool)
}

// PropertyFunctionEvaluator is the external collaborator contract for
// $(name.Method(args)) invocations. It is not this core's job to implement
// the method bodies; the core only shapes the call.
type PropertyFunctionEvaluator interface {
	// Invoke calls a method named function on receiver (of kind
	// receiverType) with the given raw, unexpanded argument text. usedSideEffect reports
	// whether anything was used that should be recorded as a side effect for
	// the properties-use tracker.
	Invoke(receiverType string, receiver interface{}, function string, args []string) (value interface{}, usedSideEffect bool, err error)
}

// StringMethodInvoker is the external collaborator contract for the
// string-method fallback of unknown item-vector transform function names
// (Substring, IndexOf, Replace, StartsWith, ...).
type StringMethodInvoker interface {
	// Invoke calls a string method named function on receiver with the given
	// raw argument text, returning its stringified result.
	Invoke(receiver string, function string, args []string) (string, error)
}

// ConditionEvaluator is the external collaborator contract for the boolean
// condition mini-language this core never evaluates itself. The façade does
// its own part of the job — property and item expansion of the raw
// Condition text, visible to the in-progress evaluation via a "this-type"
// expander — and hands the fully expanded string to Evaluate for the actual
// boolean grammar.
type ConditionEvaluator interface {
	// Evaluate parses and evaluates expanded (already property/item
	// expanded) as a condition expression, returning its truth value.
	Evaluate(expanded string) (bool, error)
}
