// Package opexec implements the operation list and sparse snapshot cache
// that let a referenced item type's Include, Remove, and Update operations
// be replayed up to an arbitrary visible count without redoing the whole
// list on every reference, while still letting a Remove downstream of an
// Include suppress the items it would only go on to delete (backward
// Remove-propagation).
package opexec

import (
	"strconv"
	"sync"

	"github.com/dustincampbell/msbuild-eval/eval"
	"github.com/dustincampbell/msbuild-eval/eval/plan"
)

// cacheKey is a (visible-count, globs-to-ignore identity) pair. GlobSets are
// never interned by value equality (eval.GlobSet's doc comment), so the key
// embeds the pointer itself rather than any hash of its contents.
type cacheKey struct {
	count int
	globs *eval.GlobSet
}

// List is one item-type's ordered operation list plus its snapshot cache.
// Mutation (Append) and evaluation (Evaluate) are not goroutine-safe with
// respect to each other, matching the single-threaded-per-evaluator-instance
// model the rest of this core assumes; the mutex here only guards the cache
// and referenced-set maps against concurrent *readers* evaluating the same
// list from different goroutines, the one concurrency pattern a live tracer
// span implies must already be supported.
type List struct {
	mu sync.Mutex

	itemType string
	ops      []plan.Operation

	cache      map[cacheKey]*eval.ItemList
	referenced map[int]bool

	// err records the first InvalidProject an Apply call raised during the
	// most recent forward replay: an operation apply error propagates
	// upward to the evaluator façade, which does not catch it.
	// eval.OperationList.Evaluate has no error return of its own —
	// it is called from deep inside an arbitrary item-expression fragment's
	// expansion — so the façade's final enumeration is where this is
	// actually surfaced; see Err.
	err error
}

// NewList returns an empty operation list for itemType.
func NewList(itemType string) *List {
	return &List{
		itemType:   itemType,
		cache:      make(map[cacheKey]*eval.ItemList),
		referenced: make(map[int]bool),
	}
}

// ItemType returns the item type this list holds operations for.
func (l *List) ItemType() string { return l.itemType }

// Append adds op to the end of the list and returns its index, the
// element-order value assigned monotonically at Include construction time.
func (l *List) Append(op plan.Operation) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx := len(l.ops)
	l.ops = append(l.ops, op)
	return idx
}

// Len returns the number of operations appended so far.
func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.ops)
}

// Evaluate implements eval.OperationList: it is the entry point a
// referencing operation's ItemListRef calls, and also what the façade calls
// at query time with count equal to the full list length and an empty
// ignore set.
//
// The returned slice is read from a fresh clone of the cached snapshot:
// callers receive items, never the cached snapshot itself, so nothing a
// caller does downstream can corrupt the cache.
func (l *List) Evaluate(ctx *eval.Context, count int, ignore *eval.GlobSet) []*eval.Item {
	snapshot := l.evaluateSnapshot(ctx, count, ignore)
	records := snapshot.Records()
	items := make([]*eval.Item, len(records))
	for i, r := range records {
		items[i] = r.Item
	}
	return items
}

// EvaluateList is like Evaluate but returns the full eval.ItemList builder
// (Record, not just Item) rather than bare items, for callers — the façade's
// final flatten — that need Element/ElementOrder alongside each item.
func (l *List) EvaluateList(ctx *eval.Context, count int, ignore *eval.GlobSet) *eval.ItemList {
	return l.evaluateSnapshot(ctx, count, ignore)
}

// MarkAsReferenced records that count was requested by an external caller:
// only referenced counts are persisted in the cache, keeping it sparse. The
// façade calls this while
// building a ReferencedItemLists for a newly constructed operation, at the
// same moment it captures the ItemListRef.
func (l *List) MarkAsReferenced(count int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.referenced[count] = true
}

func (l *List) isReferenced(count int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.referenced[count]
}

func (l *List) cacheGet(key cacheKey) (*eval.ItemList, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	snap, ok := l.cache[key]
	return snap, ok
}

func (l *List) cachePut(key cacheKey, snap *eval.ItemList) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache[key] = snap
}

// Err returns the first error an operation's Apply raised during the most
// recent Evaluate/EvaluateList call, or nil. The façade checks this after
// its final enumeration pass over every item-type's list.
func (l *List) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

func (l *List) setErr(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err == nil {
		l.err = err
	}
}

// evaluateSnapshot runs the two-phase replay algorithm and returns a
// mutable builder: items are deep-immutable, so the returned ItemList can
// share them freely with whatever stays cached.
func (l *List) evaluateSnapshot(ctx *eval.Context, count int, ignore *eval.GlobSet) *eval.ItemList {
	l.mu.Lock()
	ops := l.ops
	l.err = nil
	l.mu.Unlock()

	if count > len(ops) {
		count = len(ops)
	}
	if ignore == nil {
		ignore = eval.EmptyGlobSet
	}

	span := ctx.StartSpan("opexec.evaluateSnapshot")
	span.SetTag("itemType", l.itemType)
	span.SetTag("count", count)
	defer span.Finish()

	start, seed, stack := l.backwardScan(ops, count, ignore)
	span.SetTag("replayFrom", start)
	if start > 0 {
		ctx.LogComment(eval.ImportanceLow, eval.Location{}, "cache hit for %s", debugKey(l.itemType, cacheKey{count: start, globs: ignore}))
	}

	list := eval.NewItemList()
	if seed != nil {
		list = seed.Clone()
	}

	l.forwardReplay(ctx, ops, list, start, count, ignore, stack)
	return list
}

// backwardScan is Phase 1 of the replay algorithm: walk indices count-1 ->
// 0, accumulating a stack of GlobSets representing "globs a later Remove
// will delete, so an earlier Include should not bother producing them",
// probing the cache at each step for an exact (i+1, current-globs) hit.
func (l *List) backwardScan(ops []plan.Operation, count int, ignore *eval.GlobSet) (start int, seed *eval.ItemList, stack []*eval.GlobSet) {
	start = 0
	current := ignore

	for i := count - 1; i >= 0; i-- {
		if snap, ok := l.cacheGet(cacheKey{count: i + 1, globs: current}); ok {
			return i + 1, snap, stack
		}
		if removed := ops[i].RemovedGlobs(); len(removed) > 0 {
			current = eval.UnionGlobs(current, removed)
			stack = append(stack, current)
		}
	}
	return 0, nil, stack
}

// forwardReplay is Phase 2 of the replay algorithm: walk indices start ->
// count-1, batching consecutive no-wildcard Updates, applying every other operation
// directly, popping the Remove-propagation stack as each glob-contributing
// Remove is reached, and persisting a snapshot at any index whose count was
// externally referenced. Once the stack is exhausted, the inherited ignore
// set applies.
func (l *List) forwardReplay(ctx *eval.Context, ops []plan.Operation, list *eval.ItemList, start, count int, ignore *eval.GlobSet, stack []*eval.GlobSet) {
	batch := newUpdateBatch()
	// stackPos mirrors the order backwardScan pushed entries in: since that
	// walk went count-1 -> 0, the last-pushed entry corresponds to the
	// earliest (lowest-index) Remove seen, i.e. the first one forwardReplay
	// will reach walking start -> count-1. So we consume from the end.
	stackPos := len(stack) - 1

	currentIgnore := func() *eval.GlobSet {
		if stackPos < 0 {
			return ignore
		}
		return stack[stackPos]
	}

	for i := start; i < count; i++ {
		op := ops[i]

		if u, ok := op.(*plan.Update); ok && batch.tryAdd(ctx, u) {
			// Deferred; flushed either by a non-batchable operation below or
			// at the end of the loop.
		} else {
			if err := batch.flush(ctx, list); err != nil {
				l.setErr(err)
				return
			}
			if err := op.Apply(ctx, list, currentIgnore()); err != nil {
				l.setErr(err)
				return
			}
			if len(op.RemovedGlobs()) > 0 && stackPos >= 0 {
				stackPos--
			}
		}

		if l.isReferenced(i + 1) {
			// Pending batched Updates belong to the first i+1 operations, so
			// they are applied before the snapshot is stored.
			if err := batch.flush(ctx, list); err != nil {
				l.setErr(err)
				return
			}
			key := cacheKey{count: i + 1, globs: currentIgnore()}
			l.cachePut(key, list.Clone())
		}
	}
	if err := batch.flush(ctx, list); err != nil {
		l.setErr(err)
	}
}

// debugKey renders a cacheKey for diagnostics: evaluateSnapshot passes it
// to the low-importance cache-hit message it logs through ctx.LogComment.
func debugKey(itemType string, k cacheKey) string {
	return itemType + "#" + strconv.Itoa(k.count)
}
