package opexec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dustincampbell/msbuild-eval/eval"
	"github.com/dustincampbell/msbuild-eval/eval/evaltest"
	"github.com/dustincampbell/msbuild-eval/eval/expression"
	"github.com/dustincampbell/msbuild-eval/eval/plan"
)

func newTestContext() *eval.Context {
	ctx := eval.NewContext(nil)
	ctx.Factory = evaltest.Factory{}
	ctx.Filesystem = evaltest.NewFilesystem()
	ctx.Conditions = evaltest.Conditions{}
	return ctx
}

func includeOp(t *testing.T, itemType, spec string, order int) plan.Operation {
	t.Helper()
	parsed, err := expression.ParseItemSpec(spec, eval.Location{})
	require.NoError(t, err)
	el := &eval.ItemElement{ItemType: itemType, Kind: eval.OpInclude, ElementOrder: order}
	return plan.NewInclude(el, parsed, "", eval.NewReferencedItemLists(), true, "/proj", "/proj/a.proj")
}

func removeOp(t *testing.T, itemType, spec string) plan.Operation {
	t.Helper()
	parsed, err := expression.ParseItemSpec(spec, eval.Location{})
	require.NoError(t, err)
	el := &eval.ItemElement{ItemType: itemType, Kind: eval.OpRemove}
	return plan.NewRemove(el, parsed, eval.NewReferencedItemLists(), true, nil)
}

func updateOp(t *testing.T, itemType, spec string, metadataName, metadataValue string) plan.Operation {
	t.Helper()
	parsed, err := expression.ParseItemSpec(spec, eval.Location{})
	require.NoError(t, err)
	el := &eval.ItemElement{
		ItemType: itemType,
		Kind:     eval.OpUpdate,
		Metadata: []eval.MetadataElement{{Name: metadataName, UnevaluatedValue: metadataValue}},
	}
	return plan.NewUpdate(el, parsed, eval.NewReferencedItemLists(), true, false)
}

func evaluatedIncludes(items []*eval.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.EvaluatedInclude
	}
	return out
}

func TestList_EvaluateAppliesOperationsInOrder(t *testing.T) {
	ctx := newTestContext()
	list := NewList("Compile")
	list.Append(includeOp(t, "Compile", "Foo.cs;Bar.cs", 1))
	list.Append(removeOp(t, "Compile", "Foo.cs"))

	items := list.Evaluate(ctx, list.Len(), eval.EmptyGlobSet)
	assert.Equal(t, []string{"Bar.cs"}, evaluatedIncludes(items))
}

func TestList_EvaluateAtPartialCountIgnoresLaterOperations(t *testing.T) {
	ctx := newTestContext()
	list := NewList("Compile")
	list.Append(includeOp(t, "Compile", "Foo.cs", 1))
	list.Append(includeOp(t, "Compile", "Bar.cs", 2))

	items := list.Evaluate(ctx, 1, eval.EmptyGlobSet)
	assert.Equal(t, []string{"Foo.cs"}, evaluatedIncludes(items))
}

func TestList_CacheHitReturnsSameLogicalSnapshot(t *testing.T) {
	ctx := newTestContext()
	list := NewList("Compile")
	list.Append(includeOp(t, "Compile", "Foo.cs;Bar.cs", 1))
	list.Append(removeOp(t, "Compile", "Bar.cs"))
	list.MarkAsReferenced(2)

	first := list.Evaluate(ctx, 2, eval.EmptyGlobSet)
	second := list.Evaluate(ctx, 2, eval.EmptyGlobSet)
	assert.Equal(t, evaluatedIncludes(first), evaluatedIncludes(second))
	assert.Equal(t, []string{"Foo.cs"}, evaluatedIncludes(second))
}

func TestList_BackwardRemovePropagationSuppressesIncludeOfRemovedGlob(t *testing.T) {
	ctx := newTestContext()
	fs := evaltest.NewFilesystem("/proj/Foo.cs", "/proj/Bar.cs")
	ctx.Filesystem = fs

	list := NewList("Compile")
	list.Append(includeOp(t, "Compile", "*.cs", 1))
	list.Append(removeOp(t, "Compile", "*.cs"))

	items := list.Evaluate(ctx, list.Len(), eval.EmptyGlobSet)
	assert.Empty(t, items)
}

func TestList_UpdateBatchAppliesToAllMatchingPaths(t *testing.T) {
	ctx := newTestContext()
	list := NewList("Compile")
	list.Append(includeOp(t, "Compile", "Foo.cs;Bar.cs;Baz.cs", 1))
	list.Append(updateOp(t, "Compile", "Foo.cs", "Kind", "A"))
	list.Append(updateOp(t, "Compile", "Baz.cs", "Kind", "B"))

	items := list.Evaluate(ctx, list.Len(), eval.EmptyGlobSet)
	require.Len(t, items, 3)
	assert.Equal(t, "A", items[0].GetMetadata("Kind"))
	assert.Equal(t, "", items[1].GetMetadata("Kind"))
	assert.Equal(t, "B", items[2].GetMetadata("Kind"))
}

func TestList_ErrSurfacesFilesystemFailure(t *testing.T) {
	ctx := newTestContext()
	ctx.Filesystem = failingFilesystem{evaltest.NewFilesystem()}

	list := NewList("Compile")
	list.Append(includeOp(t, "Compile", "*.cs", 1))

	items := list.Evaluate(ctx, list.Len(), eval.EmptyGlobSet)
	assert.Empty(t, items)
	require.Error(t, list.Err())
}

type failingFilesystem struct {
	*evaltest.Filesystem
}

func (failingFilesystem) Enumerate(baseDir, includeGlob string, excludes []string) ([]string, error) {
	return nil, assertError{}
}

type assertError struct{}

func (assertError) Error() string { return "enumerate failed" }
