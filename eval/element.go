package eval

// OperationKind identifies which of the four element operations an
// ItemElement carries.
type OperationKind int

const (
	// OpInclude adds items.
	OpInclude OperationKind = iota
	// OpExclude never appears as a standalone operation; it is an attribute
	// of an Include element. It is named here only so OperationKind has a
	// complete, self-documenting zero-to-N range alongside the other three
	// operations.
	OpExclude
	// OpRemove filters items, propagating backward through globs-to-ignore.
	OpRemove
	// OpUpdate clones and decorates matching items in place.
	OpUpdate
)

func (k OperationKind) String() string {
	switch k {
	case OpInclude:
		return "Include"
	case OpExclude:
		return "Exclude"
	case OpRemove:
		return "Remove"
	case OpUpdate:
		return "Update"
	default:
		return "Unknown"
	}
}

// MetadataElement is one child <Name>value</Name> declaration under an item
// element, unevaluated.
type MetadataElement struct {
	Name               string
	UnevaluatedValue   string
	Condition          string
}

// ItemElement is a node from the project description identifying one
// Include/Remove/Update operation. Parsing of the surrounding XML is not
// this core's job; an ItemElement is what that external parser hands to the
// evaluator.
type ItemElement struct {
	ItemType string
	Kind     OperationKind

	// UnevaluatedSpec is the raw Include/Remove/Update attribute text.
	UnevaluatedSpec string

	// UnevaluatedExclude is the raw Exclude attribute text (Include only).
	UnevaluatedExclude string

	// MatchOnMetadata names metadata keys an Update/Remove matches items by,
	// instead of by evaluated-include.
	MatchOnMetadata []string

	// KeepMetadata is an escape hatch mirrored from the element's own
	// attribute; it disables the hybrid matcher an Update otherwise uses
	// even when its preconditions hold.
	KeepMetadata bool

	Metadata []MetadataElement

	// UnevaluatedCondition is the element's Condition attribute text.
	// Evaluating it is not this core's job; the façade calls an external
	// collaborator and stores the boolean result on the Operation.
	UnevaluatedCondition string

	Location Location

	// ElementOrder is assigned by the façade at construction time and is
	// monotonically increasing across all elements in file order, used to
	// produce the final globally stable iteration order.
	ElementOrder int
}
