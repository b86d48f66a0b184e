package plan

import (
	"strings"

	"github.com/dustincampbell/msbuild-eval/eval"
	"github.com/dustincampbell/msbuild-eval/eval/expression"
	"github.com/dustincampbell/msbuild-eval/eval/glob"
)

// Remove is the item operation that filters items out of the accumulating
// list, propagating backward through globs-to-ignore.
type Remove struct {
	base

	spec            *expression.ItemSpec
	matchOnMetadata []string
}

// NewRemove builds a Remove operation.
func NewRemove(element *eval.ItemElement, spec *expression.ItemSpec, refs *eval.ReferencedItemLists, conditionResult bool, matchOnMetadata []string) *Remove {
	return &Remove{
		base:            base{element: element, refs: refs, conditionResult: conditionResult},
		spec:            spec,
		matchOnMetadata: matchOnMetadata,
	}
}

// Apply implements Operation.
func (op *Remove) Apply(ctx *eval.Context, list *eval.ItemList, ignore *eval.GlobSet) error {
	if !op.conditionResult {
		return nil
	}
	loc := op.element.Location

	if len(op.matchOnMetadata) == 0 && op.spec.IsBareSelfReference(op.element.ItemType) {
		list.Clear()
		return nil
	}

	if len(op.matchOnMetadata) > 0 {
		return op.applyMetadataMatch(ctx, list, loc)
	}

	paths, hasGlobs, err := op.specPathSet(ctx, loc)
	if err != nil {
		return err
	}

	// The large-list bulk strategy only covers the path-literal and
	// item-expression contributions to the spec; a spec with any glob
	// fragment always falls through to the linear scan below, since
	// building an explicit path set for an arbitrary glob would require
	// iterating the list anyway (see DESIGN.md).
	if !hasGlobs && list.Len() >= ctx.Options.LargeRemoveThreshold {
		list.RemoveByNormalizedPath(op.normalizer(ctx), paths)
		return nil
	}
	return op.applyLinear(ctx, list, paths, loc)
}

// RemovedGlobs implements Operation, overriding base's default. It is the
// participant in Remove-backpropagation: a metadata-matching Remove
// contributes nothing, since it can't be expressed as path globs, and a
// condition-false Remove contributes nothing, since it removes nothing.
func (op *Remove) RemovedGlobs() []string {
	if len(op.matchOnMetadata) > 0 || !op.conditionResult {
		return nil
	}
	var globs []string
	for _, frag := range op.spec.Fragments {
		if frag.Kind == expression.FragmentGlob {
			globs = append(globs, frag.Text)
		}
	}
	return globs
}

func (op *Remove) normalizer(ctx *eval.Context) func(string) string {
	if ctx.Filesystem == nil {
		return func(s string) string { return strings.ToLower(s) }
	}
	return ctx.Filesystem.NormalizePath
}

// specPathSet collects the normalized paths the spec's value and
// item-expression fragments contribute, for both the bulk dictionary
// strategy and (as a membership test) the linear scan.
func (op *Remove) specPathSet(ctx *eval.Context, loc eval.Location) (paths map[string]bool, hasGlobs bool, err error) {
	paths = map[string]bool{}
	normalize := op.normalizer(ctx)
	for _, frag := range op.spec.Fragments {
		switch frag.Kind {
		case expression.FragmentValue:
			paths[normalize(frag.Text)] = true
		case expression.FragmentGlob:
			hasGlobs = true
		case expression.FragmentItemExpression:
			pairs, perr := op.referencedPairs(ctx, frag.Vector, loc)
			if perr != nil {
				return nil, false, perr
			}
			for _, p := range pairs {
				if p.IsNull {
					continue
				}
				paths[normalize(p.Current)] = true
			}
		}
	}
	return paths, hasGlobs, nil
}

func (op *Remove) applyLinear(ctx *eval.Context, list *eval.ItemList, paths map[string]bool, loc eval.Location) error {
	normalize := op.normalizer(ctx)
	var globs []string
	for _, frag := range op.spec.Fragments {
		if frag.Kind == expression.FragmentGlob {
			globs = append(globs, frag.Text)
		}
	}

	toRemove := map[*eval.Item]bool{}
	for _, r := range list.Records() {
		key := normalize(r.Item.EvaluatedInclude)
		if paths[key] {
			toRemove[r.Item] = true
			continue
		}
		for _, g := range globs {
			if glob.Match(g, r.Item.EvaluatedInclude) {
				toRemove[r.Item] = true
				break
			}
		}
	}
	list.RemoveByIdentity(toRemove)
	return nil
}

// applyMetadataMatch implements the matching-on-metadata path: an item is
// removed when the tuple of its specified metadata values is found among
// the operation's expected tuples. A map keyed by the NUL-joined,
// lower-cased tuple stands in for a trie — both give O(1) membership tests;
// a trie's advantage (sharing common prefixes across many tuples) is a
// memory optimization this implementation elides, not a behavioral one.
func (op *Remove) applyMetadataMatch(ctx *eval.Context, list *eval.ItemList, loc eval.Location) error {
	expected, err := op.expectedTuples(ctx, loc)
	if err != nil {
		return err
	}
	toRemove := map[*eval.Item]bool{}
	for _, r := range list.Records() {
		if expected[op.tupleKey(r.Item)] {
			toRemove[r.Item] = true
		}
	}
	list.RemoveByIdentity(toRemove)
	return nil
}

func (op *Remove) expectedTuples(ctx *eval.Context, loc eval.Location) (map[string]bool, error) {
	tuples := map[string]bool{}
	for _, frag := range op.spec.Fragments {
		if frag.Kind != expression.FragmentItemExpression {
			continue
		}
		pairs, err := op.referencedPairs(ctx, frag.Vector, loc)
		if err != nil {
			return nil, err
		}
		for _, p := range pairs {
			if p.Base == nil {
				continue
			}
			tuples[op.tupleKey(p.Base)] = true
		}
	}
	return tuples, nil
}

func (op *Remove) tupleKey(item *eval.Item) string {
	parts := make([]string, len(op.matchOnMetadata))
	for i, name := range op.matchOnMetadata {
		parts[i] = strings.ToLower(item.GetMetadata(name))
	}
	return strings.Join(parts, "\x00")
}
