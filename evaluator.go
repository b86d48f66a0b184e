// Package msbuildeval is the Evaluator façade: the single entry point a
// caller builds, feeds item elements into in source order, and finally asks
// for the resulting flattened, globally ordered item set.
package msbuildeval

import (
	"sort"

	"github.com/dustincampbell/msbuild-eval/eval"
	"github.com/dustincampbell/msbuild-eval/eval/expression"
	"github.com/dustincampbell/msbuild-eval/eval/opexec"
	"github.com/dustincampbell/msbuild-eval/eval/plan"
)

// Evaluator ingests ItemElements in source order and compiles each into an
// Include/Remove/Update operation appended to its item-type's operation
// list. It also implements eval.ItemProvider itself, so that
// ctx.Items resolves against its own in-progress map — the "this-type
// expander allowed to see the in-progress map" condition evaluation needs,
// and what every item-expression fragment ultimately bottoms out on.
type Evaluator struct {
	ctx *eval.Context

	projectDirectory string
	projectFullPath  string

	lists        map[string]*opexec.List
	elementOrder int
}

// NewEvaluator returns an empty Evaluator bound to ctx. ctx.Items is
// overwritten with the Evaluator itself: there is no external item source in
// this core, every item comes from a compiled operation.
// projectDirectory and projectFullPath stand in for the single project's
// root directory and originating file path; multi-project import/evaluation
// order is not this core's job.
func NewEvaluator(ctx *eval.Context, projectDirectory, projectFullPath string) *Evaluator {
	e := &Evaluator{
		ctx:              ctx,
		projectDirectory: projectDirectory,
		projectFullPath:  projectFullPath,
		lists:            make(map[string]*opexec.List),
	}
	ctx.Items = e
	return e
}

// Lookup implements eval.ItemProvider by evaluating itemType's operation
// list at its current full length with an empty globs-to-ignore set — the
// view any in-progress expansion (a condition, an Exclude, a metadata value
// on an element constructed later) sees of a type's items so far.
func (e *Evaluator) Lookup(itemType string) []*eval.Item {
	list := e.listFor(itemType)
	return list.Evaluate(e.ctx, list.Len(), eval.EmptyGlobSet)
}

func (e *Evaluator) listFor(itemType string) *opexec.List {
	list, ok := e.lists[itemType]
	if !ok {
		list = opexec.NewList(itemType)
		e.lists[itemType] = list
	}
	return list
}

// AddElement compiles one item element into an operation and appends it to
// its item-type's list, following four steps: parse the item-spec, snapshot
// referenced item lists, evaluate the condition, then construct and append
// the operation. An element with an empty item-spec (UnevaluatedSpec) is
// ignored — there is nothing to compile.
func (e *Evaluator) AddElement(el *eval.ItemElement) error {
	if el.UnevaluatedSpec == "" {
		return nil
	}
	loc := el.Location

	// Step 1: parse the item-spec against the outer, properties-only
	// expander; item references remain as fragments for the operation
	// itself to resolve later.
	expandedSpec, err := expression.ExpandPropertiesEscaped(e.ctx, el.UnevaluatedSpec, loc, nil)
	if err != nil {
		return err
	}
	spec, err := expression.ParseItemSpec(expandedSpec, loc)
	if err != nil {
		return err
	}

	// Step 2: build the referenced-item-lists snapshot, marking every
	// captured list's count as referenced so its cache retains the prefix.
	refs := eval.NewReferencedItemLists()
	for t := range e.referencedTypes(el, spec) {
		list := e.listFor(t)
		count := list.Len()
		list.MarkAsReferenced(count)
		refs.Set(t, eval.ItemListRef{List: list, Count: count})
	}

	// Step 3: evaluate the element's condition. A condition-false element
	// still produces an operation; only its apply becomes an early no-op.
	conditionResult := true
	if el.UnevaluatedCondition != "" {
		conditionResult, err = e.evaluateCondition(el.UnevaluatedCondition, loc)
		if err != nil {
			return err
		}
	}

	// Step 4: construct the specific operation and append it.
	e.elementOrder++
	el.ElementOrder = e.elementOrder

	op, err := e.compile(el, spec, refs, conditionResult)
	if err != nil {
		return err
	}
	e.listFor(el.ItemType).Append(op)
	return nil
}

func (e *Evaluator) compile(el *eval.ItemElement, spec *expression.ItemSpec, refs *eval.ReferencedItemLists, conditionResult bool) (plan.Operation, error) {
	switch el.Kind {
	case eval.OpInclude:
		return plan.NewInclude(el, spec, el.UnevaluatedExclude, refs, conditionResult, e.projectDirectory, e.projectFullPath), nil
	case eval.OpRemove:
		return plan.NewRemove(el, spec, refs, conditionResult, el.MatchOnMetadata), nil
	case eval.OpUpdate:
		return plan.NewUpdate(el, spec, refs, conditionResult, el.KeepMetadata), nil
	default:
		return nil, eval.WrapInvalidProject(eval.ErrUnknownOperationKind.New(el.Kind.String()), el.Location)
	}
}

// referencedTypes collects every item-type this element mentions directly
// or transitively: in the item-spec itself, in Exclude, and in any metadata
// value or the condition.
func (e *Evaluator) referencedTypes(el *eval.ItemElement, spec *expression.ItemSpec) map[string]bool {
	types := map[string]bool{}
	for _, f := range spec.Fragments {
		if f.Kind == expression.FragmentItemExpression {
			types[f.Vector.ItemType] = true
		}
	}

	scan := func(text string) {
		if text == "" {
			return
		}
		found, _, err := expression.NamesAndMetadata(text, expression.NameScanOptions{ItemTypes: true}, el.Location)
		if err != nil {
			return
		}
		for t := range found {
			types[t] = true
		}
	}
	scan(el.UnevaluatedExclude)
	scan(el.UnevaluatedCondition)
	for _, md := range el.Metadata {
		scan(md.UnevaluatedValue)
	}
	return types
}

// evaluateCondition does the façade's share of condition evaluation: expand
// properties and item vectors in raw (seeing the in-progress map via
// ctx.Items), then hand the fully expanded text to the external
// ConditionEvaluator collaborator for the boolean grammar itself, which is
// not this core's job. A nil ctx.Conditions treats every condition as true,
// matching an unconditional element.
func (e *Evaluator) evaluateCondition(raw string, loc eval.Location) (bool, error) {
	if e.ctx.Conditions == nil {
		return true, nil
	}
	expanded, err := expression.ExpandPropertiesEscaped(e.ctx, raw, loc, nil)
	if err != nil {
		return false, err
	}
	expanded, err = expression.ExpandItemVectors(e.ctx, expanded, loc)
	if err != nil {
		return false, err
	}
	return e.ctx.Conditions.Evaluate(expanded)
}

// orderedItem pairs a resolved item with the element-order of the operation
// that produced it, the sort key Evaluate uses to recover a single globally
// stable iteration order across every item-type's independently evaluated
// list.
type orderedItem struct {
	item  *eval.Item
	order int
}

// Evaluate enumerates every item-type's operation list at full length with
// an empty globs-to-ignore set, flattens them, and returns the result
// ordered by element-order. The first error any list recorded during that
// enumeration is returned; which list is reported is unspecified when more
// than one failed.
func (e *Evaluator) Evaluate() ([]*eval.Item, error) {
	span := e.ctx.StartSpan("msbuildeval.Evaluate")
	defer span.Finish()

	var all []orderedItem
	for _, list := range e.lists {
		snap := list.EvaluateList(e.ctx, list.Len(), eval.EmptyGlobSet)
		if err := list.Err(); err != nil {
			return nil, err
		}
		for _, r := range snap.Records() {
			all = append(all, orderedItem{item: r.Item, order: r.ElementOrder})
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].order < all[j].order })

	items := make([]*eval.Item, len(all))
	for i, oi := range all {
		items[i] = oi.item
	}
	return items, nil
}

// ItemsOfType is a convenience accessor for a single item-type's current,
// fully evaluated item set, bypassing the cross-type flatten Evaluate does.
func (e *Evaluator) ItemsOfType(itemType string) []*eval.Item {
	return e.Lookup(itemType)
}
