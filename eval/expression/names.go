package expression

import (
	"strings"

	"github.com/dustincampbell/msbuild-eval/eval"
)

// NameScanOptions controls the names-and-metadata collector.
type NameScanOptions struct {
	// ItemTypes, when true, collects item-vector type names.
	ItemTypes bool
	// MetadataOutsideTransforms, when true, collects %(...) references that
	// appear outside of any item vector's transform body (it always
	// collects the ones that appear in a separator).
	MetadataOutsideTransforms bool
}

// NamesAndMetadata collects every item-type referenced by an @(...) vector
// and every %(...) metadata reference reachable outside a transform's
// quoted body.
func NamesAndMetadata(expr string, opts NameScanOptions, loc eval.Location) (itemTypes map[string]bool, metadata map[string]MetadataRef, err error) {
	itemTypes = map[string]bool{}
	metadata = map[string]MetadataRef{}

	pos := 0
	for {
		tok, ok := Next(expr, pos)
		if !ok {
			// Scan any remaining metadata in the tail outside of item
			// vectors.
			if opts.MetadataOutsideTransforms {
				collectMetadataOutsideVectors(expr[pos:], metadata)
			}
			break
		}

		if opts.MetadataOutsideTransforms && tok.Kind != TokenItemVector {
			collectMetadataOutsideVectors(expr[pos:tok.Start], metadata)
		}

		switch tok.Kind {
		case TokenItemVector:
			if opts.ItemTypes || opts.MetadataOutsideTransforms {
				cap, perr := ParseItemVector(tok.Inner(expr), loc)
				if perr != nil {
					return nil, nil, perr
				}
				if opts.ItemTypes {
					itemTypes[cap.ItemType] = true
				}
				if opts.MetadataOutsideTransforms && cap.HasSeparator {
					collectMetadataOutsideVectors(cap.Separator, metadata)
				}
			}
		case TokenMetadata:
			if opts.MetadataOutsideTransforms {
				ref, perr := ParseMetadataRef(tok.Inner(expr), loc)
				if perr != nil {
					return nil, nil, perr
				}
				metadata[metadataKey(ref)] = ref
			}
		}

		pos = tok.Close + 1
	}

	return itemTypes, metadata, nil
}

func metadataKey(ref MetadataRef) string {
	if ref.ItemType == "" {
		return strings.ToLower(ref.Name)
	}
	return strings.ToLower(ref.ItemType) + "." + strings.ToLower(ref.Name)
}

// collectMetadataOutsideVectors scans a span known not to contain item
// vectors (or already stripped of them) for bare %(...) references.
func collectMetadataOutsideVectors(span string, out map[string]MetadataRef) {
	pos := 0
	for {
		tok, ok := Next(span, pos)
		if !ok {
			return
		}
		if tok.Kind == TokenMetadata {
			if ref, err := ParseMetadataRef(tok.Inner(span), eval.Location{}); err == nil {
				out[metadataKey(ref)] = ref
			}
		}
		pos = tok.Close + 1
	}
}
