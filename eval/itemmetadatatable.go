package eval

import "strings"

// ItemMetadataTable is the production MetadataTable for %(...) resolution
// against a single item's own row: a name first resolves
// against the item's custom metadata, then falls back to the built-in
// modifiers computed from the item's include path. There is no further
// fallback (no per-item-type default metadata): any other name resolves
// to "".
type ItemMetadataTable struct {
	Item            *Item
	Filesystem      FilesystemCollaborator
	DefiningProject string

	// Captured maps an item type to the specific item of that type that
	// caused an Update's hybrid matcher to match the row this table is
	// scoped to, forming a mapping itemtype -> matched-item consumed by
	// metadata expansion. Nil outside of that matcher; a qualified reference
	// whose type isn't Item's own and isn't present here resolves to "".
	Captured map[string]*Item
}

// NewItemMetadataTable builds a table scoped to item.
func NewItemMetadataTable(item *Item, fs FilesystemCollaborator, definingProject string) *ItemMetadataTable {
	return &ItemMetadataTable{Item: item, Filesystem: fs, DefiningProject: definingProject}
}

// GetEscapedValue implements MetadataTable.
func (t *ItemMetadataTable) GetEscapedValue(itemType, name string) string {
	if t.Item == nil {
		return ""
	}
	if itemType != "" && !strings.EqualFold(itemType, t.Item.ItemType) {
		for k, captured := range t.Captured {
			if strings.EqualFold(k, itemType) {
				return resolveAgainst(captured, t.Filesystem, t.DefiningProject, name)
			}
		}
		return ""
	}
	return resolveAgainst(t.Item, t.Filesystem, t.DefiningProject, name)
}

func resolveAgainst(item *Item, fs FilesystemCollaborator, definingProject, name string) string {
	if item == nil {
		return ""
	}
	if item.Metadata().Has(name) {
		return item.GetMetadata(name)
	}
	if v, ok := BuiltInModifier(fs, item.EvaluatedInclude, item.ProjectDirectory, definingProject, name); ok {
		return v
	}
	return ""
}

// AssociatedItemType implements MetadataTable.
func (t *ItemMetadataTable) AssociatedItemType() (string, bool) {
	if t.Item == nil {
		return "", false
	}
	return t.Item.ItemType, true
}
