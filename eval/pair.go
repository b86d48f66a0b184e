package eval

// Pair is the (current-include, base-item) tuple the item expander threads
// through a transform chain. Current is the string a transform currently
// sees for this row; Base is the originating item that row is still
// correlated with, or nil once a transform (Count, ClearMetadata, ...) has
// severed that correlation. IsNull marks a placeholder row kept only to
// preserve positional correlation with the base list when
// IncludeNullEntries is requested.
type Pair struct {
	Current string
	Base    *Item
	IsNull  bool
}

// NewPair builds a non-null pair.
func NewPair(current string, base *Item) Pair {
	return Pair{Current: current, Base: base}
}

// NullPair builds a placeholder pair correlated with base but carrying no
// current value.
func NullPair(base *Item) Pair {
	return Pair{Base: base, IsNull: true}
}
