package plan

import (
	"strings"

	"github.com/dustincampbell/msbuild-eval/eval"
	"github.com/dustincampbell/msbuild-eval/eval/expression"
	"github.com/dustincampbell/msbuild-eval/eval/glob"
)

// Include is the item operation that produces new items from an item-spec's
// value, glob, and item-expression fragments, skipping anything caught by
// the Exclude attribute.
type Include struct {
	base

	spec            *expression.ItemSpec
	unevaluatedExcl string
	projectDir      string
	definingProject string
}

// NewInclude builds an Include operation. spec is the already
// property-expanded item-spec; unevaluatedExclude is the element's raw
// Exclude attribute text, expanded fresh on every Apply
// since it may itself reference items produced by an operation constructed
// later in file order but evaluated earlier via a referenced-item-lists
// snapshot.
func NewInclude(element *eval.ItemElement, spec *expression.ItemSpec, unevaluatedExclude string, refs *eval.ReferencedItemLists, conditionResult bool, projectDir, definingProject string) *Include {
	return &Include{
		base:            base{element: element, refs: refs, conditionResult: conditionResult},
		spec:            spec,
		unevaluatedExcl: unevaluatedExclude,
		projectDir:      projectDir,
		definingProject: definingProject,
	}
}

// Apply implements Operation.
func (op *Include) Apply(ctx *eval.Context, list *eval.ItemList, ignore *eval.GlobSet) error {
	// A condition-false element's apply is an early no-op; nothing is
	// enumerated or appended, so the "would do a full drive/filesystem
	// scan" glob-safety concern never arises — there is no enumeration to
	// guard.
	if !op.conditionResult {
		return nil
	}

	loc := op.element.Location

	literalExcludes, globExcludes, err := op.partitionExcludes(ctx, loc)
	if err != nil {
		return err
	}
	if ignore == nil {
		ignore = eval.EmptyGlobSet
	}

	normalize := op.normalizer(ctx)
	excluded := func(candidate string) bool {
		if literalExcludes[normalize(candidate)] {
			return true
		}
		for _, g := range globExcludes {
			if glob.Match(g, candidate) {
				return true
			}
		}
		for _, g := range ignore.Patterns {
			if glob.Match(g, candidate) {
				return true
			}
		}
		return false
	}

	for _, frag := range op.spec.Fragments {
		if ctx.Cancelled() {
			return ctx.Err()
		}
		switch frag.Kind {
		case expression.FragmentItemExpression:
			if err := op.applyItemExpressionFragment(ctx, list, frag, excluded, loc); err != nil {
				return err
			}
		case expression.FragmentValue:
			if err := op.applyValueFragment(ctx, list, frag, excluded, loc); err != nil {
				return err
			}
		case expression.FragmentGlob:
			if err := op.applyGlobFragment(ctx, list, frag, literalExcludes, globExcludes, ignore, loc); err != nil {
				return err
			}
		}
	}
	return nil
}

func (op *Include) normalizer(ctx *eval.Context) func(string) string {
	if ctx.Filesystem == nil {
		return func(s string) string { return strings.ToLower(s) }
	}
	return ctx.Filesystem.NormalizePath
}

// partitionExcludes expands the Exclude attribute (property+item expansion,
// semicolon-split) into an exclude-pattern list, partitioning it into
// literal paths and glob patterns and normalizing the literal paths once.
func (op *Include) partitionExcludes(ctx *eval.Context, loc eval.Location) (literal map[string]bool, globs []string, err error) {
	literal = map[string]bool{}
	if op.unevaluatedExcl == "" {
		return literal, nil, nil
	}

	expanded, err := expression.ExpandPropertiesEscaped(ctx, op.unevaluatedExcl, loc, nil)
	if err != nil {
		return nil, nil, err
	}
	expanded, err = expression.ExpandItemVectors(ctx, expanded, loc)
	if err != nil {
		return nil, nil, err
	}

	normalize := op.normalizer(ctx)
	for _, seg := range eval.SplitSemicolons(expanded) {
		if glob.HasWildcard(seg) {
			globs = append(globs, seg)
		} else {
			literal[normalize(seg)] = true
		}
	}
	return literal, globs, nil
}

func (op *Include) applyValueFragment(ctx *eval.Context, list *eval.ItemList, frag expression.Fragment, excluded func(string) bool, loc eval.Location) error {
	if excluded(frag.Text) {
		return nil
	}
	item := ctx.Factory.Create(op.element.ItemType, frag.Text, frag.Text, op.definingProject)
	item, err := op.decorate(ctx, item, loc)
	if err != nil {
		return err
	}
	op.append(list, item)
	return nil
}

func (op *Include) applyGlobFragment(ctx *eval.Context, list *eval.ItemList, frag expression.Fragment, literalExcludes map[string]bool, globExcludes []string, ignore *eval.GlobSet, loc eval.Location) error {
	excludes := make([]string, 0, len(literalExcludes)+len(globExcludes)+len(ignore.Patterns))
	for k := range literalExcludes {
		excludes = append(excludes, k)
	}
	excludes = append(excludes, globExcludes...)
	excludes = append(excludes, ignore.Patterns...)

	paths, err := ctx.Filesystem.Enumerate(op.projectDir, frag.Text, excludes)
	if err != nil {
		return eval.WrapInvalidProject(eval.ErrFilesystemFailure.New("Enumerate", frag.Text, err.Error()), loc)
	}
	for _, p := range paths {
		item := ctx.Factory.Create(op.element.ItemType, p, frag.Raw, op.definingProject)
		item, err := op.decorate(ctx, item, loc)
		if err != nil {
			return err
		}
		op.append(list, item)
	}
	return nil
}

// applyItemExpressionFragment evaluates the referenced item list's captured
// snapshot, carrying over each source item's metadata onto the newly
// produced item — the well-established behavior of an Include whose spec
// is another item type's list, before this element's own metadata
// decoration runs.
func (op *Include) applyItemExpressionFragment(ctx *eval.Context, list *eval.ItemList, frag expression.Fragment, excluded func(string) bool, loc eval.Location) error {
	pairs, err := op.referencedPairs(ctx, frag.Vector, loc)
	if err != nil {
		return err
	}
	for _, p := range pairs {
		if p.IsNull || excluded(p.Current) {
			continue
		}
		item := ctx.Factory.Create(op.element.ItemType, p.Current, p.Current, op.definingProject)
		if p.Base != nil {
			for _, name := range p.Base.Metadata().Names() {
				item = item.WithMetadata(name, p.Base.GetMetadata(name))
			}
		}
		item, err := op.decorate(ctx, item, loc)
		if err != nil {
			return err
		}
		op.append(list, item)
	}
	return nil
}

// decorate expands and assigns this element's own child metadata
// declarations in order. Per-item-type batching by referenced-metadata-group
// (an O(groups) instead of O(items) expansion pass) is not implemented:
// this loop is semantically identical, just without the grouping fast path.
func (op *Include) decorate(ctx *eval.Context, item *eval.Item, loc eval.Location) (*eval.Item, error) {
	for _, md := range op.element.Metadata {
		table := eval.NewItemMetadataTable(item, ctx.Filesystem, op.definingProject)
		val, err := expression.ExpandAll(ctx, md.UnevaluatedValue, table, loc, nil)
		if err != nil {
			return nil, err
		}
		item = item.WithMetadata(md.Name, val)
	}
	return item, nil
}

func (op *Include) append(list *eval.ItemList, item *eval.Item) {
	list.Append(eval.Record{
		Item:            item,
		Element:         op.element,
		ElementOrder:    op.element.ElementOrder,
		ConditionResult: true,
	})
}
