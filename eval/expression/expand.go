package expression

import "github.com/dustincampbell/msbuild-eval/eval"

// ExpandAll runs the full string-expansion pipeline for a value destined to
// become plain text (a metadata value, an Exclude attribute, a condition
// operand): properties first ("leave escaped" mode), then metadata, then
// item vectors. Item-spec parsing runs its own, narrower pipeline —
// properties only, leaving item-expression fragments intact for the plan
// package to evaluate directly — and does not call this function.
func ExpandAll(ctx *eval.Context, expr string, table eval.MetadataTable, loc eval.Location, tracker *PropertyUseTracker) (string, error) {
	s, err := ExpandPropertiesEscaped(ctx, expr, loc, tracker)
	if err != nil {
		return "", err
	}
	s, err = ExpandMetadata(ctx, s, table, loc)
	if err != nil {
		return "", err
	}
	return ExpandItemVectors(ctx, s, loc)
}
