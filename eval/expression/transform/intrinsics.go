// Package transform implements the closed set of intrinsic item-vector
// transform functions (Count, DirectoryName, Metadata, Distinct, ...). It
// depends only on the base eval package, never on eval/expression, so that
// eval/expression can depend on it without an import cycle.
package transform

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/dustincampbell/msbuild-eval/eval"
)

// Func applies one intrinsic transform to pairs, given its raw argument
// list, and returns the resulting pair list.
type Func func(ctx *eval.Context, pairs []eval.Pair, args []string, loc eval.Location) ([]eval.Pair, error)

// registry is keyed by lower-cased function name: intrinsic functions are
// case-insensitive.
var registry = map[string]Func{
	"count":                        Count,
	"directoryname":                DirectoryName,
	"metadata":                     Metadata,
	"distinctwithcase":             DistinctWithCase,
	"distinct":                     Distinct,
	"reverse":                      Reverse,
	"anyhavemetadatavalue":         AnyHaveMetadataValue,
	"hasmetadata":                  HasMetadata,
	"withmetadatavalue":            WithMetadataValue,
	"withoutmetadatavalue":         WithoutMetadataValue,
	"clearmetadata":                ClearMetadata,
	"exists":                       Exists,
	"combine":                      Combine,
	"getpathsofalldirectoriesabove": GetPathsOfAllDirectoriesAbove,
}

// Lookup resolves name to an intrinsic Func, case-insensitively. ok is false
// for any name outside the closed set, including a built-in modifier name
// (those are handled one level up, by the item expander, since they share
// eval.BuiltInModifier with the metadata expander) and any unknown name that
// must fall through to the string-method collaborator.
func Lookup(name string) (Func, bool) {
	fn, ok := registry[strings.ToLower(name)]
	return fn, ok
}

// metadataValue resolves name against p's correlated base item, trying the
// built-in modifiers before custom metadata, exactly as the quoted-template
// substitution algorithm does. A pair with no base item (its correlation
// already severed by ClearMetadata) resolves to "".
func metadataValue(ctx *eval.Context, p eval.Pair, name string) string {
	if p.Base == nil {
		return ""
	}
	if v, ok := eval.BuiltInModifier(ctx.Filesystem, p.Current, p.Base.ProjectDirectory, eval.DefiningProjectOf(p.Base), name); ok {
		return v
	}
	return p.Base.GetMetadata(name)
}

// Count emits one pair holding the decimal count of pairs, severing
// correlation with any base item.
func Count(ctx *eval.Context, pairs []eval.Pair, args []string, loc eval.Location) ([]eval.Pair, error) {
	return []eval.Pair{eval.NewPair(strconv.Itoa(len(pairs)), nil)}, nil
}

// DirectoryName emits the directory portion of each pair's current path.
func DirectoryName(ctx *eval.Context, pairs []eval.Pair, args []string, loc eval.Location) ([]eval.Pair, error) {
	out := make([]eval.Pair, len(pairs))
	for i, p := range pairs {
		out[i] = eval.NewPair(filepath.Dir(p.Current), p.Base)
	}
	return out, nil
}

// Metadata emits the values of metadata arg0, splitting on unescaped ';' —
// one output pair per split segment.
func Metadata(ctx *eval.Context, pairs []eval.Pair, args []string, loc eval.Location) ([]eval.Pair, error) {
	if len(args) < 1 {
		return nil, eval.WrapInvalidProject(
			eval.ErrInvalidItemFunctionSyntax.New("Metadata()", "expects one argument"), loc)
	}
	var out []eval.Pair
	for _, p := range pairs {
		v := metadataValue(ctx, p, args[0])
		for _, seg := range eval.SplitSemicolons(v) {
			out = append(out, eval.NewPair(seg, p.Base))
		}
	}
	return out, nil
}

// DistinctWithCase deduplicates pairs by Current, case-sensitively,
// keeping first occurrence order.
func DistinctWithCase(ctx *eval.Context, pairs []eval.Pair, args []string, loc eval.Location) ([]eval.Pair, error) {
	seen := make(map[string]bool, len(pairs))
	out := make([]eval.Pair, 0, len(pairs))
	for _, p := range pairs {
		if seen[p.Current] {
			continue
		}
		seen[p.Current] = true
		out = append(out, p)
	}
	return out, nil
}

// Distinct deduplicates pairs by Current, case-insensitively.
func Distinct(ctx *eval.Context, pairs []eval.Pair, args []string, loc eval.Location) ([]eval.Pair, error) {
	seen := make(map[string]bool, len(pairs))
	out := make([]eval.Pair, 0, len(pairs))
	for _, p := range pairs {
		key := strings.ToLower(p.Current)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out, nil
}

// Reverse reverses pair order.
func Reverse(ctx *eval.Context, pairs []eval.Pair, args []string, loc eval.Location) ([]eval.Pair, error) {
	out := make([]eval.Pair, len(pairs))
	for i, p := range pairs {
		out[len(pairs)-1-i] = p
	}
	return out, nil
}

// AnyHaveMetadataValue emits a single (true, matching-item) pair at the
// first match, else a single (false, null) pair.
func AnyHaveMetadataValue(ctx *eval.Context, pairs []eval.Pair, args []string, loc eval.Location) ([]eval.Pair, error) {
	if len(args) < 2 {
		return nil, eval.WrapInvalidProject(
			eval.ErrInvalidItemFunctionSyntax.New("AnyHaveMetadataValue()", "expects two arguments"), loc)
	}
	name, want := args[0], args[1]
	for _, p := range pairs {
		if strings.EqualFold(metadataValue(ctx, p, name), want) {
			return []eval.Pair{eval.NewPair("true", p.Base)}, nil
		}
	}
	return []eval.Pair{eval.NewPair("false", nil)}, nil
}

// HasMetadata keeps pairs whose metadata arg0 is non-empty.
func HasMetadata(ctx *eval.Context, pairs []eval.Pair, args []string, loc eval.Location) ([]eval.Pair, error) {
	if len(args) < 1 {
		return nil, eval.WrapInvalidProject(
			eval.ErrInvalidItemFunctionSyntax.New("HasMetadata()", "expects one argument"), loc)
	}
	out := make([]eval.Pair, 0, len(pairs))
	for _, p := range pairs {
		if metadataValue(ctx, p, args[0]) != "" {
			out = append(out, p)
		}
	}
	return out, nil
}

// WithMetadataValue keeps pairs whose metadata arg0 equals arg1
// (case-insensitive).
func WithMetadataValue(ctx *eval.Context, pairs []eval.Pair, args []string, loc eval.Location) ([]eval.Pair, error) {
	if len(args) < 2 {
		return nil, eval.WrapInvalidProject(
			eval.ErrInvalidItemFunctionSyntax.New("WithMetadataValue()", "expects two arguments"), loc)
	}
	out := make([]eval.Pair, 0, len(pairs))
	for _, p := range pairs {
		if strings.EqualFold(metadataValue(ctx, p, args[0]), args[1]) {
			out = append(out, p)
		}
	}
	return out, nil
}

// WithoutMetadataValue keeps pairs whose metadata arg0 differs from arg1.
func WithoutMetadataValue(ctx *eval.Context, pairs []eval.Pair, args []string, loc eval.Location) ([]eval.Pair, error) {
	if len(args) < 2 {
		return nil, eval.WrapInvalidProject(
			eval.ErrInvalidItemFunctionSyntax.New("WithoutMetadataValue()", "expects two arguments"), loc)
	}
	out := make([]eval.Pair, 0, len(pairs))
	for _, p := range pairs {
		if !strings.EqualFold(metadataValue(ctx, p, args[0]), args[1]) {
			out = append(out, p)
		}
	}
	return out, nil
}

// ClearMetadata keeps each pair's current include but severs its
// correlation with the base item — the base item becomes null.
func ClearMetadata(ctx *eval.Context, pairs []eval.Pair, args []string, loc eval.Location) ([]eval.Pair, error) {
	out := make([]eval.Pair, len(pairs))
	for i, p := range pairs {
		out[i] = eval.NewPair(p.Current, nil)
	}
	return out, nil
}

// Exists keeps pairs whose resolved path exists, per the filesystem
// collaborator.
func Exists(ctx *eval.Context, pairs []eval.Pair, args []string, loc eval.Location) ([]eval.Pair, error) {
	if ctx.Filesystem == nil {
		return pairs, nil
	}
	out := make([]eval.Pair, 0, len(pairs))
	for _, p := range pairs {
		if ctx.Filesystem.FileOrDirectoryExists(p.Current) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Combine joins each pair's current path with arg0 via platform path
// composition.
func Combine(ctx *eval.Context, pairs []eval.Pair, args []string, loc eval.Location) ([]eval.Pair, error) {
	if len(args) < 1 {
		return nil, eval.WrapInvalidProject(
			eval.ErrInvalidItemFunctionSyntax.New("Combine()", "expects one argument"), loc)
	}
	out := make([]eval.Pair, len(pairs))
	for i, p := range pairs {
		out[i] = eval.NewPair(filepath.Join(p.Current, args[0]), p.Base)
	}
	return out, nil
}

// GetPathsOfAllDirectoriesAbove emits the closure of ancestor directories of
// every pair's current path, deduplicated and ordered by case-insensitive
// sort.
func GetPathsOfAllDirectoriesAbove(ctx *eval.Context, pairs []eval.Pair, args []string, loc eval.Location) ([]eval.Pair, error) {
	seen := make(map[string]bool)
	var dirs []string
	for _, p := range pairs {
		dir := filepath.Dir(p.Current)
		for {
			key := strings.ToLower(dir)
			if !seen[key] {
				seen[key] = true
				dirs = append(dirs, dir)
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}
	sort.Slice(dirs, func(i, j int) bool { return strings.ToLower(dirs[i]) < strings.ToLower(dirs[j]) })
	out := make([]eval.Pair, len(dirs))
	for i, d := range dirs {
		out[i] = eval.NewPair(d, nil)
	}
	return out, nil
}
