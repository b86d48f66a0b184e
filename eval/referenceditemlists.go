package eval

// OperationList is the capability eval/opexec.List exposes, declared here
// rather than there so that eval/plan can hold a reference to one without
// importing eval/opexec (which itself depends on eval/plan), avoiding an
// import cycle between the two packages.
type OperationList interface {
	// Evaluate returns the item snapshot visible after count operations
	// have been applied against inherited globs-to-ignore ignore.
	Evaluate(ctx *Context, count int, ignore *GlobSet) []*Item
}

// ItemListRef captures an item-type's operation list together with the
// visible count at the moment it was captured. All subsequent evaluation of
// that reference uses that count, so appending more operations to the
// referenced item type after this operation was constructed never affects
// what this operation sees.
type ItemListRef struct {
	List  OperationList
	Count int
}

// Evaluate resolves the captured snapshot against ignore.
func (r ItemListRef) Evaluate(ctx *Context, ignore *GlobSet) []*Item {
	if r.List == nil {
		return nil
	}
	return r.List.Evaluate(ctx, r.Count, ignore)
}

// ReferencedItemLists is the per-operation snapshot of every item type an
// Include/Remove/Update's item-spec, Exclude, MatchOnMetadata, or condition
// mentions, captured at element-construction time.
type ReferencedItemLists struct {
	refs map[string]ItemListRef
}

// NewReferencedItemLists returns an empty builder.
func NewReferencedItemLists() *ReferencedItemLists {
	return &ReferencedItemLists{refs: map[string]ItemListRef{}}
}

// Set records the captured reference for itemType.
func (r *ReferencedItemLists) Set(itemType string, ref ItemListRef) {
	r.refs[itemType] = ref
}

// Get returns the captured reference for itemType, if any was recorded.
func (r *ReferencedItemLists) Get(itemType string) (ItemListRef, bool) {
	if r == nil {
		return ItemListRef{}, false
	}
	ref, ok := r.refs[itemType]
	return ref, ok
}

// Evaluate is a convenience wrapper around Get + ItemListRef.Evaluate,
// returning nil for a type that was never referenced.
func (r *ReferencedItemLists) Evaluate(ctx *Context, itemType string, ignore *GlobSet) []*Item {
	ref, ok := r.Get(itemType)
	if !ok {
		return nil
	}
	return ref.Evaluate(ctx, ignore)
}
