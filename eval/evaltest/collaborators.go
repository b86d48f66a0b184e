// Package evaltest provides in-memory fakes for the external collaborator
// contracts (property provider, metadata table, item factory, filesystem
// collaborator, condition evaluator, string-method and property-function
// invokers; there is no ItemProvider fake), so the evaluator
// façade, eval/opexec, and the three expanders all have a concrete,
// deterministic collaborator graph to run against in tests without pulling
// in real XML parsing or real disk I/O.
package evaltest

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustincampbell/msbuild-eval/eval"
)

// Properties is an in-memory eval.PropertyProvider backed by a plain map.
type Properties struct {
	values map[string]string
}

// NewProperties builds a Properties fake from an initial name -> value set.
func NewProperties(initial map[string]string) *Properties {
	p := &Properties{values: make(map[string]string, len(initial))}
	for k, v := range initial {
		p.Set(k, v)
	}
	return p
}

// Set assigns name, overwriting any earlier definition, mirroring the way a
// project's later <PropertyGroup> redefines an earlier one.
func (p *Properties) Set(name, value string) {
	if p.values == nil {
		p.values = make(map[string]string)
	}
	p.values[strings.ToLower(name)] = value
}

// Lookup implements eval.PropertyProvider.
func (p *Properties) Lookup(name string) (eval.Property, bool) {
	v, ok := p.values[strings.ToLower(name)]
	if !ok {
		return eval.Property{}, false
	}
	return eval.Property{Name: name, Value: v}, true
}

// Enumerate implements eval.PropertyProvider, in sorted-name order for
// deterministic test output.
func (p *Properties) Enumerate() []eval.Property {
	names := make([]string, 0, len(p.values))
	for k := range p.values {
		names = append(names, k)
	}
	sort.Strings(names)
	out := make([]eval.Property, len(names))
	for i, n := range names {
		out[i] = eval.Property{Name: n, Value: p.values[n]}
	}
	return out
}

// Factory is an in-memory eval.ItemFactory that just builds eval.Item
// values directly; it keeps no state of its own.
type Factory struct{}

// Create implements eval.ItemFactory.
func (Factory) Create(itemType, include, includeBeforeWildcardExpansion, definingProject string) *eval.Item {
	item := eval.NewItem(itemType, include, "", definingProject)
	item.UnevaluatedInclude = includeBeforeWildcardExpansion
	return item
}

// Filesystem is an in-memory eval.FilesystemCollaborator over a fixed set of
// paths, for exercising Include's glob fragments and the Exists transform
// without touching real disk.
type Filesystem struct {
	// Paths is the full set of paths Enumerate/FileOrDirectoryExists can
	// see, as they'd appear relative to (or joined with) a project
	// directory.
	Paths []string

	// Times supplies ModifiedTime/CreatedTime/AccessedTime results keyed by
	// path; a path absent from the map reports ok=false.
	Times map[string]FileTimes

	// WorkingDirectory is returned by CurrentWorkingDirectory.
	WorkingDirectory string
}

// FileTimes bundles the three timestamp strings a path can report.
type FileTimes struct {
	Modified, Created, Accessed string
}

// NewFilesystem returns a Filesystem fake seeded with paths.
func NewFilesystem(paths ...string) *Filesystem {
	return &Filesystem{Paths: append([]string(nil), paths...), Times: map[string]FileTimes{}}
}

// FileOrDirectoryExists implements eval.FilesystemCollaborator.
func (f *Filesystem) FileOrDirectoryExists(path string) bool {
	norm := f.NormalizePath(path)
	for _, p := range f.Paths {
		if f.NormalizePath(p) == norm {
			return true
		}
	}
	return false
}

// Enumerate implements eval.FilesystemCollaborator: a glob match against the
// fixed path set, excluding anything matched by excludes. Glob matching
// itself is out of this fake's concern — callers reach it through
// eval/glob, not here, so Enumerate does a direct filepath.Match per
// candidate rather than reimplementing wildcard semantics.
func (f *Filesystem) Enumerate(baseDir, includeGlob string, excludes []string) ([]string, error) {
	var matches []string
	for _, p := range f.Paths {
		candidate := p
		pattern := includeGlob
		if !filepath.IsAbs(pattern) && baseDir != "" {
			pattern = filepath.Join(baseDir, pattern)
		}
		ok, err := filepath.Match(pattern, candidate)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if f.excluded(candidate, excludes) {
			continue
		}
		matches = append(matches, candidate)
	}
	sort.Strings(matches)
	return matches, nil
}

func (f *Filesystem) excluded(candidate string, excludes []string) bool {
	for _, ex := range excludes {
		if ok, _ := filepath.Match(ex, candidate); ok {
			return true
		}
		// An exclude pattern with no directory separator of its own (the
		// common case for a bare "*.cs"-style glob) is matched against the
		// candidate's base name, mirroring the project-relative glob
		// semantics a real filesystem collaborator applies.
		if !strings.Contains(ex, "/") {
			if ok, _ := filepath.Match(ex, filepath.Base(candidate)); ok {
				return true
			}
		}
		if f.NormalizePath(ex) == f.NormalizePath(candidate) {
			return true
		}
	}
	return false
}

// NormalizePath implements eval.FilesystemCollaborator with a simple
// lowercase + slash-direction canonicalization, standing in for a real
// platform-specific path comparer.
func (f *Filesystem) NormalizePath(path string) string {
	return strings.ToLower(filepath.ToSlash(path))
}

// CurrentWorkingDirectory implements eval.FilesystemCollaborator.
func (f *Filesystem) CurrentWorkingDirectory() string {
	return f.WorkingDirectory
}

// ModifiedTime implements eval.FilesystemCollaborator.
func (f *Filesystem) ModifiedTime(path string) (string, bool) {
	t, ok := f.Times[path]
	return t.Modified, ok
}

// CreatedTime implements eval.FilesystemCollaborator.
func (f *Filesystem) CreatedTime(path string) (string, bool) {
	t, ok := f.Times[path]
	return t.Created, ok
}

// AccessedTime implements eval.FilesystemCollaborator.
func (f *Filesystem) AccessedTime(path string) (string, bool) {
	t, ok := f.Times[path]
	return t.Accessed, ok
}

// Conditions is an eval.ConditionEvaluator fake recognizing the literal
// strings "true"/"false" (case-insensitively) plus the MSBuild-ism that any
// other non-empty expanded text is truthy — enough to drive tests that
// exercise condition-false no-ops without implementing the real boolean
// grammar, which is not this core's job.
type Conditions struct{}

// Evaluate implements eval.ConditionEvaluator.
func (Conditions) Evaluate(expanded string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(expanded)) {
	case "true", "":
		return true, nil
	case "false":
		return false, nil
	default:
		return true, nil
	}
}

// StringMethods is an eval.StringMethodInvoker fake backing the handful of
// string methods the item-vector transform fallback reaches for.
type StringMethods struct{}

// Invoke implements eval.StringMethodInvoker.
func (StringMethods) Invoke(receiver, function string, args []string) (string, error) {
	switch function {
	case "ToUpper":
		return strings.ToUpper(receiver), nil
	case "ToLower":
		return strings.ToLower(receiver), nil
	case "Trim":
		return strings.TrimSpace(receiver), nil
	default:
		return "", eval.ErrUnknownItemFunction.New(function)
	}
}

// Metadata is an eval.MetadataTable fake over a plain (itemType, name) ->
// escaped value map, standing in for the per-item-type scoped table a real
// metadata expansion would build from an item's own Metadata plus whatever
// qualified %(Other.Tag) references it allows.
type Metadata struct {
	itemType string
	values   map[string]map[string]string
}

// NewMetadataTable returns a Metadata fake scoped to itemType (pass "" for
// an unscoped table).
func NewMetadataTable(itemType string) *Metadata {
	return &Metadata{itemType: itemType, values: map[string]map[string]string{}}
}

// Set records the escaped value for (itemType, name); itemType may be "" for
// the table's own unqualified entries.
func (m *Metadata) Set(itemType, name, value string) {
	key := strings.ToLower(itemType)
	if m.values[key] == nil {
		m.values[key] = map[string]string{}
	}
	m.values[key][strings.ToLower(name)] = value
}

// GetEscapedValue implements eval.MetadataTable.
func (m *Metadata) GetEscapedValue(itemType, name string) string {
	bucket, ok := m.values[strings.ToLower(itemType)]
	if !ok {
		return ""
	}
	return bucket[strings.ToLower(name)]
}

// AssociatedItemType implements eval.MetadataTable.
func (m *Metadata) AssociatedItemType() (string, bool) {
	return m.itemType, m.itemType != ""
}

// PropertyFunctions is an eval.PropertyFunctionEvaluator fake recognizing a
// handful of property-function calls exercised by tests of the $(...)
// expander's function-call grammar, without implementing the full
// static/instance method surface real MSBuild exposes.
type PropertyFunctions struct{}

// Invoke implements eval.PropertyFunctionEvaluator.
func (PropertyFunctions) Invoke(receiverType string, receiver interface{}, function string, args []string) (interface{}, bool, error) {
	switch function {
	case "ToUpper":
		return strings.ToUpper(asString(receiver)), false, nil
	case "ToLower":
		return strings.ToLower(asString(receiver)), false, nil
	case "Exists":
		return false, true, nil
	default:
		return nil, false, eval.ErrUnknownItemFunction.New(function)
	}
}

func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
