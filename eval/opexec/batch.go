package opexec

import (
	"strings"

	"github.com/dustincampbell/msbuild-eval/eval"
	"github.com/dustincampbell/msbuild-eval/eval/plan"
)

// updateBatch accumulates consecutive no-wildcard Updates during forward
// replay, so they can be flushed together as a single O(N) dictionary-lookup
// pass over the list instead of O(N) per update (O(N·U) overall).
type updateBatch struct {
	updates []*plan.Update
	paths   map[string]bool
}

func newUpdateBatch() *updateBatch {
	return &updateBatch{paths: make(map[string]bool)}
}

// tryAdd attempts to fold u into the batch. It fails — leaving the batch
// unchanged — when u isn't pure text, or when any of its normalized paths is
// already claimed by an update already in the batch.
func (b *updateBatch) tryAdd(ctx *eval.Context, u *plan.Update) bool {
	paths, ok := u.BatchablePaths(ctx)
	if !ok {
		return false
	}
	for _, p := range paths {
		if b.paths[p] {
			return false
		}
	}
	for _, p := range paths {
		b.paths[p] = true
	}
	b.updates = append(b.updates, u)
	return true
}

// flush applies every batched update in one dictionary-lookup pass over
// list, then clears the batch. A no-op when the batch is empty. The
// normalized-path -> indices dictionary is built once, in a single O(N)
// walk of the list, regardless of how many updates are in the batch: O(N)
// per flush instead of O(N·U).
func (b *updateBatch) flush(ctx *eval.Context, list *eval.ItemList) error {
	if len(b.updates) == 0 {
		return nil
	}

	normalize := normalizer(ctx)
	byPath := map[string][]int{}
	for i, r := range list.Records() {
		key := normalize(r.Item.EvaluatedInclude)
		byPath[key] = append(byPath[key], i)
	}

	for _, u := range b.updates {
		paths, _ := u.BatchablePaths(ctx)
		var indices []int
		for _, p := range paths {
			indices = append(indices, byPath[p]...)
		}
		if err := u.ApplyToMatches(ctx, list, indices); err != nil {
			return err
		}
	}
	b.updates = nil
	b.paths = make(map[string]bool)
	return nil
}

func normalizer(ctx *eval.Context) func(string) string {
	if ctx.Filesystem == nil {
		return func(s string) string { return strings.ToLower(s) }
	}
	return ctx.Filesystem.NormalizePath
}
