package expression

import (
	"strings"

	"github.com/dustincampbell/msbuild-eval/eval"
	"github.com/dustincampbell/msbuild-eval/eval/glob"
)

// FragmentKind identifies which of the three item-spec fragment shapes a
// given Fragment is.
type FragmentKind int

const (
	FragmentValue FragmentKind = iota
	FragmentGlob
	FragmentItemExpression
)

// Fragment is one element of a parsed item-spec. By the time an item-spec
// is parsed, properties have already been expanded by the outer
// property-only expander, so only item-vector references, globs, and
// literal text remain to classify.
type Fragment struct {
	Kind FragmentKind

	// Text is the literal or glob text for FragmentValue/FragmentGlob.
	Text string

	// Vector is set for FragmentItemExpression.
	Vector *ItemVectorCapture

	// Raw is the original segment text before classification, used as the
	// unevaluated-include-before-expansion for items created from a glob.
	Raw string
}

// ItemSpec is a parsed include/remove/update string.
type ItemSpec struct {
	Raw       string
	Fragments []Fragment
}

// ParseItemSpec decomposes raw (already property-expanded) into its ordered
// fragment sequence.
func ParseItemSpec(raw string, loc eval.Location) (*ItemSpec, error) {
	spec := &ItemSpec{Raw: raw}
	for _, seg := range eval.SplitSemicolons(raw) {
		frag, err := classifyFragment(seg, loc)
		if err != nil {
			return nil, err
		}
		spec.Fragments = append(spec.Fragments, frag)
	}
	return spec, nil
}

func classifyFragment(seg string, loc eval.Location) (Fragment, error) {
	trimmed := strings.TrimSpace(seg)
	if strings.HasPrefix(trimmed, "@(") && strings.HasSuffix(trimmed, ")") {
		if tok, ok := Next(trimmed, 0); ok && tok.Kind == TokenItemVector && tok.Start == 0 && tok.Close == len(trimmed)-1 {
			cap, err := ParseItemVector(tok.Inner(trimmed), loc)
			if err != nil {
				return Fragment{}, err
			}
			return Fragment{Kind: FragmentItemExpression, Vector: cap, Raw: seg}, nil
		}
	}
	if glob.HasWildcard(seg) {
		return Fragment{Kind: FragmentGlob, Text: seg, Raw: seg}, nil
	}
	return Fragment{Kind: FragmentValue, Text: seg, Raw: seg}, nil
}

// IsBareSelfReference reports whether spec is the single fragment "@(type)"
// with no transforms and no separator — the shape both Remove and Update
// special-case (Remove clears the whole list; Update matches every item
// unconditionally).
func (s *ItemSpec) IsBareSelfReference(itemType string) bool {
	if len(s.Fragments) != 1 {
		return false
	}
	f := s.Fragments[0]
	if f.Kind != FragmentItemExpression {
		return false
	}
	return strings.EqualFold(f.Vector.ItemType, itemType) &&
		len(f.Vector.Transforms) == 0 && !f.Vector.HasSeparator
}
