package plan

import (
	"strings"

	"github.com/dustincampbell/msbuild-eval/eval"
	"github.com/dustincampbell/msbuild-eval/eval/expression"
	"github.com/dustincampbell/msbuild-eval/eval/glob"
)

// Update is the item operation that clones and decorates matching items in
// place.
type Update struct {
	base

	spec *expression.ItemSpec

	// keepMetadata is the escape hatch (element.KeepMetadata) that
	// disables the hybrid matcher even when its preconditions otherwise
	// hold.
	keepMetadata bool
}

// NewUpdate builds an Update operation.
func NewUpdate(element *eval.ItemElement, spec *expression.ItemSpec, refs *eval.ReferencedItemLists, conditionResult bool, keepMetadata bool) *Update {
	return &Update{
		base:         base{element: element, refs: refs, conditionResult: conditionResult},
		spec:         spec,
		keepMetadata: keepMetadata,
	}
}

// match is one resolved target: the index of the record it matches, and
// (only for the hybrid matcher) the item-type -> matched-item mapping
// metadata expansion should consult for qualified references.
type match struct {
	index    int
	captured map[string]*eval.Item
}

// Apply implements Operation.
func (op *Update) Apply(ctx *eval.Context, list *eval.ItemList, ignore *eval.GlobSet) error {
	if !op.conditionResult {
		return nil
	}
	loc := op.element.Location

	matches, err := op.resolveMatches(ctx, list, loc)
	if err != nil {
		return err
	}

	for _, m := range matches {
		r := list.At(m.index)
		clone := r.Item.Clone()
		clone, err := op.decorate(ctx, clone, m.captured, loc)
		if err != nil {
			return err
		}
		list.SetAt(m.index, eval.Record{
			Item:            clone,
			Element:         r.Element,
			ElementOrder:    r.ElementOrder,
			ConditionResult: r.ConditionResult,
		})
	}
	return nil
}

// resolveMatches implements the three matching strategies: bare
// self-reference, hybrid item-expression-aware matching, and default
// fragment matching.
func (op *Update) resolveMatches(ctx *eval.Context, list *eval.ItemList, loc eval.Location) ([]match, error) {
	if op.spec.IsBareSelfReference(op.element.ItemType) {
		matches := make([]match, list.Len())
		for i := range matches {
			matches[i] = match{index: i}
		}
		return matches, nil
	}

	hasItemExpr := false
	for _, frag := range op.spec.Fragments {
		if frag.Kind == expression.FragmentItemExpression {
			hasItemExpr = true
			break
		}
	}
	if hasItemExpr && !op.keepMetadata && op.hasQualifiedMetadataRef(loc) {
		return op.resolveHybridMatches(ctx, list, loc)
	}
	return op.resolveDefaultMatches(ctx, list, loc)
}

func (op *Update) hasQualifiedMetadataRef(loc eval.Location) bool {
	for _, md := range op.element.Metadata {
		_, metas, err := expression.NamesAndMetadata(md.UnevaluatedValue, expression.NameScanOptions{MetadataOutsideTransforms: true}, loc)
		if err != nil {
			continue
		}
		for _, ref := range metas {
			if ref.ItemType != "" {
				return true
			}
		}
	}
	return false
}

func (op *Update) normalizer(ctx *eval.Context) func(string) string {
	if ctx.Filesystem == nil {
		return func(s string) string { return strings.ToLower(s) }
	}
	return ctx.Filesystem.NormalizePath
}

// BatchablePaths reports whether this Update is eligible for the no-wildcard
// update batch eval/opexec's forward replay builds up: every fragment must
// be pure text, with no wildcard and no expansion characters %, $, @. Value
// fragments reaching this point have already been through classifyFragment's
// wildcard test, so only the expansion-character check and the
// item-expression/glob exclusion remain. On success it returns the
// normalized full path each fragment contributes.
func (op *Update) BatchablePaths(ctx *eval.Context) (paths []string, ok bool) {
	if !op.conditionResult {
		return nil, false
	}
	normalize := op.normalizer(ctx)
	for _, frag := range op.spec.Fragments {
		if frag.Kind != expression.FragmentValue {
			return nil, false
		}
		if strings.ContainsAny(frag.Text, "%$@") {
			return nil, false
		}
		paths = append(paths, normalize(frag.Text))
	}
	if len(paths) == 0 {
		return nil, false
	}
	return paths, true
}

// ApplyToMatches decorates the records at the given indices as if they had
// matched this Update directly, applying the batched update by dictionary
// lookup against the current list, with no captured-items mapping since a
// batchable Update by definition has no item-expression fragments.
func (op *Update) ApplyToMatches(ctx *eval.Context, list *eval.ItemList, indices []int) error {
	for _, i := range indices {
		r := list.At(i)
		clone := r.Item.Clone()
		clone, err := op.decorate(ctx, clone, nil, op.element.Location)
		if err != nil {
			return err
		}
		list.SetAt(i, eval.Record{
			Item:            clone,
			Element:         r.Element,
			ElementOrder:    r.ElementOrder,
			ConditionResult: r.ConditionResult,
		})
	}
	return nil
}

// resolveDefaultMatches implements case 3: plain fragment-matching by
// evaluated-include, identical in shape to Remove's default path.
func (op *Update) resolveDefaultMatches(ctx *eval.Context, list *eval.ItemList, loc eval.Location) ([]match, error) {
	normalize := op.normalizer(ctx)
	paths := map[string]bool{}
	var globs []string

	for _, frag := range op.spec.Fragments {
		switch frag.Kind {
		case expression.FragmentValue:
			paths[normalize(frag.Text)] = true
		case expression.FragmentGlob:
			globs = append(globs, frag.Text)
		case expression.FragmentItemExpression:
			pairs, err := op.referencedPairs(ctx, frag.Vector, loc)
			if err != nil {
				return nil, err
			}
			for _, p := range pairs {
				if !p.IsNull {
					paths[normalize(p.Current)] = true
				}
			}
		}
	}

	var matches []match
	for i, r := range list.Records() {
		key := normalize(r.Item.EvaluatedInclude)
		if paths[key] {
			matches = append(matches, match{index: i})
			continue
		}
		for _, g := range globs {
			if glob.Match(g, r.Item.EvaluatedInclude) {
				matches = append(matches, match{index: i})
				break
			}
		}
	}
	return matches, nil
}

// resolveHybridMatches implements case 2: non-item-expression fragments
// match by evaluated-include as usual; item-expression fragments
// additionally record, per match, which referenced item produced it.
func (op *Update) resolveHybridMatches(ctx *eval.Context, list *eval.ItemList, loc eval.Location) ([]match, error) {
	normalize := op.normalizer(ctx)
	paths := map[string]bool{}
	var globs []string
	// byType[type][normalizedPath] = the referenced item that produced it.
	byType := map[string]map[string]*eval.Item{}

	for _, frag := range op.spec.Fragments {
		switch frag.Kind {
		case expression.FragmentValue:
			paths[normalize(frag.Text)] = true
		case expression.FragmentGlob:
			globs = append(globs, frag.Text)
		case expression.FragmentItemExpression:
			pairs, err := op.referencedPairs(ctx, frag.Vector, loc)
			if err != nil {
				return nil, err
			}
			set := byType[frag.Vector.ItemType]
			if set == nil {
				set = map[string]*eval.Item{}
				byType[frag.Vector.ItemType] = set
			}
			for _, p := range pairs {
				if p.IsNull || p.Base == nil {
					continue
				}
				set[normalize(p.Current)] = p.Base
			}
		}
	}

	var matches []match
	for i, r := range list.Records() {
		key := normalize(r.Item.EvaluatedInclude)

		matched := paths[key]
		captured := map[string]*eval.Item{}
		for itemType, set := range byType {
			if src, ok := set[key]; ok {
				matched = true
				captured[itemType] = src
			}
		}
		if !matched {
			for _, g := range globs {
				if glob.Match(g, r.Item.EvaluatedInclude) {
					matched = true
					break
				}
			}
		}
		if matched {
			matches = append(matches, match{index: i, captured: captured})
		}
	}
	return matches, nil
}

// decorate clones-and-assigns this element's metadata declarations in
// declaration order, consulting captured for any qualified %(Type.Name)
// reference the hybrid matcher recorded.
func (op *Update) decorate(ctx *eval.Context, item *eval.Item, captured map[string]*eval.Item, loc eval.Location) (*eval.Item, error) {
	for _, md := range op.element.Metadata {
		table := eval.NewItemMetadataTable(item, ctx.Filesystem, eval.DefiningProjectOf(item))
		table.Captured = captured
		val, err := expression.ExpandAll(ctx, md.UnevaluatedValue, table, loc, nil)
		if err != nil {
			return nil, err
		}
		item = item.WithMetadata(md.Name, val)
	}
	return item, nil
}
