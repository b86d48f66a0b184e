package expression

import (
	"strings"
	"sync"

	"github.com/dustincampbell/msbuild-eval/eval"
	"github.com/dustincampbell/msbuild-eval/eval/expression/transform"
)

// ExpandItemVectorToPairs runs the four-step item expander algorithm — fetch,
// pair, transform, {no separator step here — the caller decides whether it
// wants pairs or a joined string} — and returns the resulting
// (current-include, base-item) pairs, fetching base items from ctx.Items —
// the general expression-expansion collaborator, appropriate for an @(...)
// reference appearing in a metadata value, Exclude attribute, or condition.
func ExpandItemVectorToPairs(ctx *eval.Context, cap *ItemVectorCapture, loc eval.Location) ([]eval.Pair, error) {
	var items []*eval.Item
	if ctx.Items != nil {
		items = ctx.Items.Lookup(cap.ItemType)
	}
	return ExpandItemVectorToPairsFrom(ctx, items, cap, loc)
}

// ExpandItemVectorToPairsFrom runs the same algorithm as
// ExpandItemVectorToPairs, but over an explicitly supplied base item list
// instead of ctx.Items. The plan package uses this to evaluate an
// item-expression item-spec fragment against the frozen
// referenced-item-lists snapshot captured at construction time, rather than
// against whatever ctx.Items currently reports.
func ExpandItemVectorToPairsFrom(ctx *eval.Context, items []*eval.Item, cap *ItemVectorCapture, loc eval.Location) ([]eval.Pair, error) {
	pairs := pairItems(ctx, items)

	for _, t := range cap.Transforms {
		if ctx.Cancelled() {
			return nil, ctx.Err()
		}
		var err error
		pairs, err = applyTransform(ctx, pairs, t, loc)
		if err != nil {
			return nil, err
		}
	}
	return pairs, nil
}

// ExpandItemVectorJoined runs the full algorithm including the separator
// step, producing the single joined string a bare @(...) reference
// contributes when spliced into a larger expression. The default separator,
// when none is given, is ";" (the same character the semicolon tokenizer
// treats as the item-list delimiter elsewhere in the grammar).
func ExpandItemVectorJoined(ctx *eval.Context, cap *ItemVectorCapture, loc eval.Location) (string, error) {
	pairs, err := ExpandItemVectorToPairs(ctx, cap, loc)
	if err != nil {
		return "", err
	}
	sep := ";"
	if cap.HasSeparator {
		// cap.Separator has already had its metadata references expanded by
		// the metadata expander pass that runs before item expansion — inside
		// captures only the separator's metadata is expanded; nothing left
		// to do here but use it.
		sep = cap.Separator
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if p.IsNull {
			continue
		}
		parts = append(parts, p.Current)
	}
	return strings.Join(parts, sep), nil
}

// ExpandItemVectors replaces every @(...) reference in expr with its joined
// string — the outer expansion pass, run after property and metadata
// expansion. Output equals input (bytewise) returns expr unchanged,
// matching the other expanders' contract.
func ExpandItemVectors(ctx *eval.Context, expr string, loc eval.Location) (string, error) {
	if !HasItemVector(expr) {
		return expr, nil
	}

	var b strings.Builder
	pos := 0
	for {
		tok, ok := Next(expr, pos)
		for ok && tok.Kind != TokenItemVector {
			tok, ok = Next(expr, tok.Close+1)
		}
		if !ok {
			b.WriteString(expr[pos:])
			break
		}
		b.WriteString(expr[pos:tok.Start])

		cap, err := ParseItemVector(tok.Inner(expr), loc)
		if err != nil {
			return "", err
		}
		joined, err := ExpandItemVectorJoined(ctx, cap, loc)
		if err != nil {
			return "", err
		}
		b.WriteString(joined)
		pos = tok.Close + 1
	}

	out := b.String()
	if out == expr {
		return expr, nil
	}
	return out, nil
}

// pairItems implements the "pair" step, given the items the "fetch" step
// already resolved: lazy-wildcard-evaluation re-expands a glob base item
// against the project directory instead of using its already-evaluated
// include verbatim.
func pairItems(ctx *eval.Context, items []*eval.Item) []eval.Pair {
	pairs := make([]eval.Pair, 0, len(items))
	for _, it := range items {
		if ctx.Options.LazyWildcardEvaluation && ctx.Filesystem != nil && hasWildcardInclude(it) {
			matches, err := ctx.Filesystem.Enumerate(it.ProjectDirectory, it.UnevaluatedInclude, nil)
			if err != nil {
				// A failed re-expansion falls back to the evaluated include
				// rather than dropping the item; glob-expansion errors are
				// surfaced by the Include operation itself, not here.
				pairs = append(pairs, eval.NewPair(it.EvaluatedInclude, it))
				continue
			}
			for _, m := range matches {
				pairs = append(pairs, eval.NewPair(m, it))
			}
			continue
		}
		pairs = append(pairs, eval.NewPair(it.EvaluatedInclude, it))
	}
	return pairs
}

func hasWildcardInclude(it *eval.Item) bool {
	return strings.ContainsAny(it.UnevaluatedInclude, "*?")
}

// applyTransform dispatches one chained "->" step: a quoted template, an
// ItemSpecModifier called with no arguments, a closed-set intrinsic, or
// (falling through) a string-method invocation.
func applyTransform(ctx *eval.Context, pairs []eval.Pair, t TransformCapture, loc eval.Location) ([]eval.Pair, error) {
	if t.IsQuoted {
		return applyQuotedTemplate(ctx, pairs, t.Quoted, loc)
	}

	args := SplitArgs(t.RawArgs)
	if len(args) == 0 && eval.BuiltInMetadataNames[t.FunctionName] {
		return applyItemSpecModifier(ctx, pairs, t.FunctionName), nil
	}
	if fn, ok := transform.Lookup(t.FunctionName); ok {
		return fn(ctx, pairs, args, loc)
	}
	return applyStringMethod(ctx, pairs, t.FunctionName, args, loc)
}

// applyItemSpecModifier implements the "ItemSpecModifier" row of the
// intrinsic table: one entry per built-in modifier name, invoked with zero
// arguments and dispatched on the function name itself rather than on a
// literal function named "ItemSpecModifier".
func applyItemSpecModifier(ctx *eval.Context, pairs []eval.Pair, name string) []eval.Pair {
	out := make([]eval.Pair, len(pairs))
	for i, p := range pairs {
		var projectDir, definingProject string
		if p.Base != nil {
			projectDir = p.Base.ProjectDirectory
			definingProject = eval.DefiningProjectOf(p.Base)
		}
		val, _ := eval.BuiltInModifier(ctx.Filesystem, p.Current, projectDir, definingProject, name)
		out[i] = eval.NewPair(val, p.Base)
	}
	return out
}

func applyStringMethod(ctx *eval.Context, pairs []eval.Pair, name string, args []string, loc eval.Location) ([]eval.Pair, error) {
	if ctx.StringFns == nil {
		return nil, eval.WrapInvalidProject(eval.ErrUnknownItemFunction.New(name), loc)
	}
	out := make([]eval.Pair, len(pairs))
	for i, p := range pairs {
		v, err := ctx.StringFns.Invoke(p.Current, name, args)
		if err != nil {
			return nil, eval.WrapInvalidProject(eval.ErrUnknownItemFunction.New(name), loc)
		}
		out[i] = eval.NewPair(v, p.Base)
	}
	return out, nil
}

// applyQuotedTemplate implements the quoted-expression substitution
// algorithm, including the fast path and null-entry preservation: functions
// that drop empty strings may optionally keep (null, base-item)
// placeholders.
func applyQuotedTemplate(ctx *eval.Context, pairs []eval.Pair, template string, loc eval.Location) ([]eval.Pair, error) {
	out := make([]eval.Pair, 0, len(pairs))
	for _, p := range pairs {
		val, err := substituteTemplate(ctx, p, template, loc)
		if err != nil {
			return nil, err
		}
		if val == "" {
			if ctx.Options.IncludeNullEntries {
				out = append(out, eval.NullPair(p.Base))
			}
			continue
		}
		out = append(out, eval.NewPair(val, p.Base))
	}
	return out, nil
}

type cachedTemplateName struct {
	ref MetadataRef
	ok  bool
}

// singleNameTemplateCache memoizes the "is this template exactly one bare
// %(name)" classification of every template seen, keyed by the template
// text, so identical inputs are never re-parsed; entries are never evicted.
// A sync.Map
// tolerates concurrent evaluations of the same project sharing one process,
// which Context.Tracer's existence already implies is supported.
var singleNameTemplateCache sync.Map

func classifySingleNameTemplate(template string) (MetadataRef, bool) {
	if v, ok := singleNameTemplateCache.Load(template); ok {
		c := v.(cachedTemplateName)
		return c.ref, c.ok
	}
	ref, ok := computeSingleNameTemplate(template)
	singleNameTemplateCache.Store(template, cachedTemplateName{ref, ok})
	return ref, ok
}

func computeSingleNameTemplate(template string) (MetadataRef, bool) {
	tok, found := Next(template, 0)
	if !found || tok.Kind != TokenMetadata || tok.Start != 0 || tok.Close != len(template)-1 {
		return MetadataRef{}, false
	}
	ref, err := ParseMetadataRef(tok.Inner(template), eval.Location{})
	if err != nil {
		return MetadataRef{}, false
	}
	return ref, true
}

func substituteTemplate(ctx *eval.Context, p eval.Pair, template string, loc eval.Location) (string, error) {
	if !strings.Contains(template, "%(") {
		return template, nil
	}

	if ref, ok := classifySingleNameTemplate(template); ok {
		return resolveTemplateRef(ctx, p, ref, loc)
	}

	var b strings.Builder
	pos := 0
	for {
		tok, found := Next(template, pos)
		if !found {
			b.WriteString(template[pos:])
			break
		}
		b.WriteString(template[pos:tok.Start])

		if tok.Kind != TokenMetadata {
			b.WriteString(tok.Text(template))
			pos = tok.Close + 1
			continue
		}

		ref, err := ParseMetadataRef(tok.Inner(template), loc)
		if err != nil {
			return "", err
		}
		val, err := resolveTemplateRef(ctx, p, ref, loc)
		if err != nil {
			return "", err
		}
		b.WriteString(val)
		pos = tok.Close + 1
	}
	return b.String(), nil
}

// resolveTemplateRef looks up name as a built-in modifier first, then as
// custom metadata on the paired item. A qualified reference has no meaning
// inside a transform body and is rejected.
func resolveTemplateRef(ctx *eval.Context, p eval.Pair, ref MetadataRef, loc eval.Location) (string, error) {
	if ref.ItemType != "" {
		return "", eval.WrapInvalidProject(
			eval.ErrQualifiedMetadataInTransformNotAllowed.New(ref.ItemType+"."+ref.Name), loc)
	}
	if p.Base == nil {
		if v, ok := eval.BuiltInModifier(ctx.Filesystem, p.Current, "", "", ref.Name); ok {
			return v, nil
		}
		return "", nil
	}
	if v, ok := eval.BuiltInModifier(ctx.Filesystem, p.Current, p.Base.ProjectDirectory, eval.DefiningProjectOf(p.Base), ref.Name); ok {
		return v, nil
	}
	return p.Base.GetMetadata(ref.Name), nil
}
