// Package plan implements the three item-element operations — Include,
// Remove, Update: each consumes a parsed item-spec plus the snapshot of
// referenced item lists captured at construction time, and applies itself
// against a shared, mutable eval.ItemList builder.
package plan

import (
	"github.com/dustincampbell/msbuild-eval/eval"
	"github.com/dustincampbell/msbuild-eval/eval/expression"
)

// Operation is the common shape every item element compiles to: each shares
// an item-element, item-spec, referenced-item-lists snapshot, and
// condition-result, and each implements one operation — apply against a
// list builder and a globs-to-ignore set. It is the unit eval/opexec's
// operation list and snapshot cache walk.
type Operation interface {
	// Apply mutates list in place, reading through refs for any
	// item-expression fragment it needs to resolve, and honoring ignore —
	// the inherited globs-to-ignore set Remove-propagation computed for
	// this position in the list. Only Include consults ignore directly;
	// Remove and Update ignore it (it exists purely to let an Include
	// upstream of a later Remove skip producing items that would just be
	// removed again).
	Apply(ctx *eval.Context, list *eval.ItemList, ignore *eval.GlobSet) error

	// Element returns the originating item element, for diagnostics and for
	// ElementOrder-based final ordering.
	Element() *eval.ItemElement

	// RemovedGlobs returns the glob-fragment texts this operation's spec
	// would remove — non-empty only for a condition-true Remove whose
	// item-spec contains glob fragments and that isn't matching on
	// metadata. Every other
	// operation kind returns nil; this is what Phase 1 of the
	// snapshot-cache algorithm (eval/opexec) unions into the
	// backward-propagated ignore set.
	RemovedGlobs() []string
}

// base holds the fields every operation shares.
type base struct {
	element         *eval.ItemElement
	refs            *eval.ReferencedItemLists
	conditionResult bool
}

// Element implements Operation.
func (b *base) Element() *eval.ItemElement { return b.element }

// RemovedGlobs implements Operation's default (non-Remove) case.
func (b *base) RemovedGlobs() []string { return nil }

// referencedPairs evaluates an item-expression item-spec fragment against
// the frozen referenced-item-lists snapshot captured at construction time,
// applying the vector's own transform chain over that frozen base list.
func (b *base) referencedPairs(ctx *eval.Context, cap *expression.ItemVectorCapture, loc eval.Location) ([]eval.Pair, error) {
	items := b.refs.Evaluate(ctx, cap.ItemType, eval.EmptyGlobSet)
	return expression.ExpandItemVectorToPairsFrom(ctx, items, cap, loc)
}
