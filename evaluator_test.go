package msbuildeval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dustincampbell/msbuild-eval/eval"
	"github.com/dustincampbell/msbuild-eval/eval/evaltest"
)

func includes(items []*eval.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.EvaluatedInclude
	}
	return out
}

func TestEvaluator_SimpleInclude(t *testing.T) {
	ctx := eval.NewContext(nil)
	ctx.Factory = evaltest.Factory{}
	ctx.Filesystem = evaltest.NewFilesystem()
	ctx.Conditions = evaltest.Conditions{}

	ev := NewEvaluator(ctx, "/proj", "/proj/a.proj")
	require.NoError(t, ev.AddElement(&eval.ItemElement{
		ItemType:        "Compile",
		Kind:            eval.OpInclude,
		UnevaluatedSpec: "Foo.cs;Bar.cs",
	}))

	items, err := ev.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, []string{"Foo.cs", "Bar.cs"}, includes(items))
}

func TestEvaluator_ExcludeFiltersValueFragments(t *testing.T) {
	ctx := eval.NewContext(nil)
	ctx.Factory = evaltest.Factory{}
	ctx.Filesystem = evaltest.NewFilesystem()
	ctx.Conditions = evaltest.Conditions{}

	ev := NewEvaluator(ctx, "/proj", "/proj/a.proj")
	require.NoError(t, ev.AddElement(&eval.ItemElement{
		ItemType:           "Compile",
		Kind:               eval.OpInclude,
		UnevaluatedSpec:    "Foo.cs;Bar.cs;Baz.cs",
		UnevaluatedExclude: "Bar.cs",
	}))

	items, err := ev.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, []string{"Foo.cs", "Baz.cs"}, includes(items))
}

func TestEvaluator_RemoveAfterInclude(t *testing.T) {
	ctx := eval.NewContext(nil)
	ctx.Factory = evaltest.Factory{}
	ctx.Filesystem = evaltest.NewFilesystem()
	ctx.Conditions = evaltest.Conditions{}

	ev := NewEvaluator(ctx, "/proj", "/proj/a.proj")
	require.NoError(t, ev.AddElement(&eval.ItemElement{
		ItemType:        "Compile",
		Kind:            eval.OpInclude,
		UnevaluatedSpec: "Foo.cs;Bar.cs",
	}))
	require.NoError(t, ev.AddElement(&eval.ItemElement{
		ItemType:        "Compile",
		Kind:            eval.OpRemove,
		UnevaluatedSpec: "Bar.cs",
	}))

	items, err := ev.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, []string{"Foo.cs"}, includes(items))
}

func TestEvaluator_UpdateDecoratesMatchingItems(t *testing.T) {
	ctx := eval.NewContext(nil)
	ctx.Factory = evaltest.Factory{}
	ctx.Filesystem = evaltest.NewFilesystem()
	ctx.Conditions = evaltest.Conditions{}

	ev := NewEvaluator(ctx, "/proj", "/proj/a.proj")
	require.NoError(t, ev.AddElement(&eval.ItemElement{
		ItemType:        "Compile",
		Kind:            eval.OpInclude,
		UnevaluatedSpec: "Foo.cs;Bar.cs",
	}))
	require.NoError(t, ev.AddElement(&eval.ItemElement{
		ItemType:        "Compile",
		Kind:            eval.OpUpdate,
		UnevaluatedSpec: "Bar.cs",
		Metadata: []eval.MetadataElement{
			{Name: "CopyToOutputDirectory", UnevaluatedValue: "PreserveNewest"},
		},
	}))

	items, err := ev.Evaluate()
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "", items[0].GetMetadata("CopyToOutputDirectory"))
	assert.Equal(t, "PreserveNewest", items[1].GetMetadata("CopyToOutputDirectory"))
}

func TestEvaluator_ConditionFalseSkipsOperation(t *testing.T) {
	ctx := eval.NewContext(nil)
	ctx.Factory = evaltest.Factory{}
	ctx.Filesystem = evaltest.NewFilesystem()
	ctx.Conditions = evaltest.Conditions{}

	ev := NewEvaluator(ctx, "/proj", "/proj/a.proj")
	require.NoError(t, ev.AddElement(&eval.ItemElement{
		ItemType:             "Compile",
		Kind:                 eval.OpInclude,
		UnevaluatedSpec:      "Foo.cs",
		UnevaluatedCondition: "false",
	}))

	items, err := ev.Evaluate()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestEvaluator_ItemExpressionReferencesEarlierType(t *testing.T) {
	ctx := eval.NewContext(nil)
	ctx.Factory = evaltest.Factory{}
	ctx.Filesystem = evaltest.NewFilesystem()
	ctx.Conditions = evaltest.Conditions{}

	ev := NewEvaluator(ctx, "/proj", "/proj/a.proj")
	require.NoError(t, ev.AddElement(&eval.ItemElement{
		ItemType:        "Compile",
		Kind:            eval.OpInclude,
		UnevaluatedSpec: "Foo.cs;Bar.cs",
	}))
	require.NoError(t, ev.AddElement(&eval.ItemElement{
		ItemType:        "EmbeddedResource",
		Kind:            eval.OpInclude,
		UnevaluatedSpec: "@(Compile)",
	}))

	resources := ev.ItemsOfType("EmbeddedResource")
	assert.Equal(t, []string{"Foo.cs", "Bar.cs"}, includes(resources))
}

func TestEvaluator_LaterAppendToReferencedTypeIsInvisible(t *testing.T) {
	ctx := eval.NewContext(nil)
	ctx.Factory = evaltest.Factory{}
	ctx.Filesystem = evaltest.NewFilesystem()
	ctx.Conditions = evaltest.Conditions{}

	ev := NewEvaluator(ctx, "/proj", "/proj/a.proj")
	require.NoError(t, ev.AddElement(&eval.ItemElement{
		ItemType:        "Compile",
		Kind:            eval.OpInclude,
		UnevaluatedSpec: "Foo.cs",
	}))
	require.NoError(t, ev.AddElement(&eval.ItemElement{
		ItemType:        "EmbeddedResource",
		Kind:            eval.OpInclude,
		UnevaluatedSpec: "@(Compile)",
	}))
	// Appended to Compile after EmbeddedResource captured its snapshot at
	// count=1; the reference must not see this one.
	require.NoError(t, ev.AddElement(&eval.ItemElement{
		ItemType:        "Compile",
		Kind:            eval.OpInclude,
		UnevaluatedSpec: "Bar.cs",
	}))

	resources := ev.ItemsOfType("EmbeddedResource")
	assert.Equal(t, []string{"Foo.cs"}, includes(resources))

	compiles := ev.ItemsOfType("Compile")
	assert.Equal(t, []string{"Foo.cs", "Bar.cs"}, includes(compiles))
}
