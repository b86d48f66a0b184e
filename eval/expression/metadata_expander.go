package expression

import (
	"strings"

	"github.com/dustincampbell/msbuild-eval/eval"
)

// ExpandMetadata replaces every in-scope %(...) reference in expr with its
// escaped value from table. If expr contains no item vector, a direct
// scan-and-replace fast path is used; otherwise item-vector captures are
// walked and only their separator's metadata is expanded here — the
// transform body itself is the item expander's job (eval/expression
// ItemExpander), not this function's.
//
// When the output equals the input bytewise, the original string is
// returned unchanged (Go strings are immutable, so bytewise equality is the
// only form of "unchanged" that applies).
func ExpandMetadata(ctx *eval.Context, expr string, table eval.MetadataTable, loc eval.Location) (string, error) {
	if !HasItemVector(expr) {
		return expandMetadataFlat(ctx, expr, table, loc)
	}

	var b strings.Builder
	pos := 0
	for {
		tok, ok := Next(expr, pos)
		for ok && tok.Kind != TokenItemVector {
			tok, ok = Next(expr, tok.Close+1)
		}
		if !ok {
			tail, err := expandMetadataFlat(ctx, expr[pos:], table, loc)
			if err != nil {
				return "", err
			}
			b.WriteString(tail)
			break
		}

		head, err := expandMetadataFlat(ctx, expr[pos:tok.Start], table, loc)
		if err != nil {
			return "", err
		}
		b.WriteString(head)

		cap, err := ParseItemVector(tok.Inner(expr), loc)
		if err != nil {
			return "", err
		}
		if cap.HasSeparator {
			sep, err := expandMetadataFlat(ctx, cap.Separator, table, loc)
			if err != nil {
				return "", err
			}
			b.WriteString(rebuildVectorWithSeparator(expr, tok, cap, sep))
		} else {
			b.WriteString(tok.Text(expr))
		}

		pos = tok.Close + 1
	}

	out := b.String()
	if out == expr {
		return expr, nil
	}
	return out, nil
}

// rebuildVectorWithSeparator re-emits an item vector's original text
// byte-for-byte, except for the interior of its separator's quoted literal,
// which is swapped for the metadata-expanded version.
func rebuildVectorWithSeparator(expr string, tok Token, cap *ItemVectorCapture, expandedSep string) string {
	inner := tok.Inner(expr)
	commaIdx := lastTopLevelComma(inner)
	quoteStart := skipSpace(inner, commaIdx+1) // index of the opening quote
	contentStart := quoteStart + 1
	contentEnd := contentStart + len(cap.Separator)

	var b strings.Builder
	b.WriteString("@(")
	b.WriteString(inner[:contentStart])
	b.WriteString(expandedSep)
	b.WriteString(inner[contentEnd:])
	b.WriteString(")")
	return b.String()
}

func lastTopLevelComma(inner string) int {
	depth := 0
	inQuote := false
	last := -1
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '\'':
			inQuote = !inQuote
		case '(':
			if !inQuote {
				depth++
			}
		case ')':
			if !inQuote {
				depth--
			}
		case ',':
			if depth == 0 && !inQuote {
				last = i
			}
		}
	}
	return last
}

// expandMetadataFlat replaces bare %(...) references in a span known to
// contain no item vector.
func expandMetadataFlat(ctx *eval.Context, span string, table eval.MetadataTable, loc eval.Location) (string, error) {
	if !strings.Contains(span, "%(") {
		return span, nil
	}

	var b strings.Builder
	pos := 0
	for {
		tok, ok := Next(span, pos)
		if !ok || tok.Kind != TokenMetadata {
			b.WriteString(span[pos:])
			break
		}
		b.WriteString(span[pos:tok.Start])

		ref, err := ParseMetadataRef(tok.Inner(span), loc)
		if err != nil {
			return "", err
		}

		value, resolved, err := resolveMetadataRef(ctx, ref, table, loc)
		if err != nil {
			return "", err
		}
		if !resolved {
			b.WriteString(tok.Text(span))
		} else {
			b.WriteString(value)
		}

		pos = tok.Close + 1
	}
	return b.String(), nil
}

func resolveMetadataRef(ctx *eval.Context, ref MetadataRef, table eval.MetadataTable, loc eval.Location) (value string, resolved bool, err error) {
	opts := ctx.Options
	isBuiltIn := eval.BuiltInMetadataNames[ref.Name]
	if isBuiltIn && !opts.EnableBuiltInMetadata {
		return "", false, nil
	}
	if !isBuiltIn && !opts.EnableCustomMetadata {
		return "", false, nil
	}

	if opts.LogOnItemMetadataSelfReference {
		if scoped, ok := table.AssociatedItemType(); ok {
			if ref.ItemType == "" || strings.EqualFold(ref.ItemType, scoped) {
				ctx.LogComment(eval.ImportanceLow, loc, "ItemReferencingSelfInTarget",
					ref.Name, scoped)
			}
		}
	}

	value = table.GetEscapedValue(ref.ItemType, ref.Name)
	if opts.Truncate && len(value) > opts.MaxMetadataValueLength {
		cut := opts.MaxMetadataValueLength - 3
		if cut < 0 {
			cut = 0
		}
		value = value[:cut] + "..."
	}
	return value, true, nil
}
