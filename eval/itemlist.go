package eval

import "strings"

// Record is one entry of an ordered item data collection:
// an item paired with the element that produced it, that element's file
// order, and its condition result. NormalizedPath is computed lazily via
// Item.NormalizedPath and is not part of this struct — it's memoized on the
// Item itself so cloned snapshots sharing the same Item share the memo too.
type Record struct {
	Item            *Item
	Element         *ItemElement
	ElementOrder    int
	ConditionResult bool
}

// ItemList is the ordered item data collection: an
// insertion-ordered sequence of Records supporting indexed mutate-in-place
// (Include/Update decoration) and bulk removal by item identity or by
// normalized path (Remove). A dictionary-keyed side index on
// case-insensitive evaluated-include is maintained in lockstep with the
// slice so exclusion tests and bulk Remove stay O(1)/O(k) instead of O(n)
// per lookup.
type ItemList struct {
	records []Record
	byKey   map[string][]int // lowercase EvaluatedInclude -> indices into records
}

// NewItemList returns an empty list ready to append to.
func NewItemList() *ItemList {
	return &ItemList{byKey: make(map[string][]int)}
}

// Len returns the number of records.
func (l *ItemList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.records)
}

// At returns the record at index i.
func (l *ItemList) At(i int) Record {
	return l.records[i]
}

// Records returns the full backing slice. Callers must treat it as
// read-only; use Append/SetAt/Remove* to mutate.
func (l *ItemList) Records() []Record {
	return l.records
}

func (l *ItemList) key(r Record) string {
	return strings.ToLower(r.Item.EvaluatedInclude)
}

// Append adds r to the end of the list, updating the side index.
func (l *ItemList) Append(r Record) {
	idx := len(l.records)
	l.records = append(l.records, r)
	k := l.key(r)
	l.byKey[k] = append(l.byKey[k], idx)
}

// SetAt replaces the record at index i in place (used by Update to swap in a
// clone without disturbing surrounding order), keeping the side index in
// sync by removing the old key's entry and inserting the new one.
func (l *ItemList) SetAt(i int, r Record) {
	old := l.records[i]
	oldKey := l.key(old)
	l.removeIndexFromKey(oldKey, i)

	l.records[i] = r
	newKey := l.key(r)
	l.byKey[newKey] = append(l.byKey[newKey], i)
}

func (l *ItemList) removeIndexFromKey(key string, idx int) {
	ids := l.byKey[key]
	for j, id := range ids {
		if id == idx {
			l.byKey[key] = append(ids[:j], ids[j+1:]...)
			break
		}
	}
	if len(l.byKey[key]) == 0 {
		delete(l.byKey, key)
	}
}

// IndicesForInclude returns the (possibly empty) set of record indices whose
// EvaluatedInclude matches include case-insensitively.
func (l *ItemList) IndicesForInclude(include string) []int {
	return l.byKey[strings.ToLower(include)]
}

// RemoveByIdentity drops every record whose Item pointer is a member of ids,
// preserving relative order of survivors.
func (l *ItemList) RemoveByIdentity(ids map[*Item]bool) {
	if len(ids) == 0 {
		return
	}
	kept := l.records[:0:0]
	for _, r := range l.records {
		if ids[r.Item] {
			continue
		}
		kept = append(kept, r)
	}
	l.rebuild(kept)
}

// RemoveByNormalizedPath drops every record whose normalized path (computed
// via normalize) is a member of paths, preserving relative order of
// survivors. This is the bulk strategy a Remove switches to once its
// target list reaches the configured threshold.
func (l *ItemList) RemoveByNormalizedPath(normalize func(string) string, paths map[string]bool) {
	if len(paths) == 0 {
		return
	}
	kept := l.records[:0:0]
	for _, r := range l.records {
		if paths[r.Item.NormalizedPath(normalize)] {
			continue
		}
		kept = append(kept, r)
	}
	l.rebuild(kept)
}

func (l *ItemList) rebuild(records []Record) {
	l.records = records
	l.byKey = make(map[string][]int, len(records))
	for i, r := range records {
		k := l.key(r)
		l.byKey[k] = append(l.byKey[k], i)
	}
}

// Clear empties the list in place: a Remove whose spec is
// the bare self-reference @(self-type) clears the whole list.
func (l *ItemList) Clear() {
	l.records = nil
	l.byKey = make(map[string][]int)
}

// Clone returns an independent copy. Records are value-copied (cheap: each
// just holds pointers), so the clone and the original never alias each
// other's slice or index, while still sharing the deep-immutable *Item
// values themselves.
func (l *ItemList) Clone() *ItemList {
	clone := &ItemList{
		records: append([]Record(nil), l.records...),
		byKey:   make(map[string][]int, len(l.byKey)),
	}
	for k, v := range l.byKey {
		clone.byKey[k] = append([]int(nil), v...)
	}
	return clone
}
