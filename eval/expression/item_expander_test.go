package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dustincampbell/msbuild-eval/eval"
	"github.com/dustincampbell/msbuild-eval/eval/evaltest"
)

type fakeItems struct {
	byType map[string][]*eval.Item
}

func (f fakeItems) Lookup(itemType string) []*eval.Item { return f.byType[itemType] }

func newVectorContext(itemType string, items ...*eval.Item) *eval.Context {
	ctx := eval.NewContext(nil)
	ctx.Items = fakeItems{byType: map[string][]*eval.Item{itemType: items}}
	ctx.Filesystem = evaltest.NewFilesystem()
	ctx.StringFns = evaltest.StringMethods{}
	return ctx
}

func mustParseVector(t *testing.T, raw string) *ItemVectorCapture {
	t.Helper()
	tok, ok := Next(raw, 0)
	require.True(t, ok)
	require.Equal(t, TokenItemVector, tok.Kind)
	cap, err := ParseItemVector(tok.Inner(raw), eval.Location{})
	require.NoError(t, err)
	return cap
}

func TestExpandItemVectorJoined_PlainFetch(t *testing.T) {
	foo := eval.NewItem("Compile", "Foo.cs", "/proj", "/proj/a.proj")
	bar := eval.NewItem("Compile", "Bar.cs", "/proj", "/proj/a.proj")
	ctx := newVectorContext("Compile", foo, bar)

	cap := mustParseVector(t, "@(Compile)")
	out, err := ExpandItemVectorJoined(ctx, cap, eval.Location{})
	require.NoError(t, err)
	assert.Equal(t, "Foo.cs;Bar.cs", out)
}

func TestExpandItemVectorJoined_CustomSeparator(t *testing.T) {
	foo := eval.NewItem("Compile", "Foo.cs", "/proj", "/proj/a.proj")
	bar := eval.NewItem("Compile", "Bar.cs", "/proj", "/proj/a.proj")
	ctx := newVectorContext("Compile", foo, bar)

	cap := mustParseVector(t, "@(Compile, ' ')")
	out, err := ExpandItemVectorJoined(ctx, cap, eval.Location{})
	require.NoError(t, err)
	assert.Equal(t, "Foo.cs Bar.cs", out)
}

func TestExpandItemVectorJoined_CountIntrinsic(t *testing.T) {
	foo := eval.NewItem("Compile", "Foo.cs", "/proj", "/proj/a.proj")
	bar := eval.NewItem("Compile", "Bar.cs", "/proj", "/proj/a.proj")
	ctx := newVectorContext("Compile", foo, bar)

	cap := mustParseVector(t, "@(Compile->Count())")
	out, err := ExpandItemVectorJoined(ctx, cap, eval.Location{})
	require.NoError(t, err)
	assert.Equal(t, "2", out)
}

func TestExpandItemVectorJoined_QuotedMetadataTemplate(t *testing.T) {
	foo := eval.NewItem("Compile", "Foo.cs", "/proj", "/proj/a.proj").WithMetadata("Kind", "A")
	ctx := newVectorContext("Compile", foo)

	cap := mustParseVector(t, "@(Compile->'%(Kind):%(Identity)')")
	out, err := ExpandItemVectorJoined(ctx, cap, eval.Location{})
	require.NoError(t, err)
	assert.Equal(t, "A:Foo.cs", out)
}

func TestExpandItemVectorJoined_UnknownTypeYieldsEmpty(t *testing.T) {
	ctx := newVectorContext("Compile")
	cap := mustParseVector(t, "@(None)")
	out, err := ExpandItemVectorJoined(ctx, cap, eval.Location{})
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestExpandItemVectors_EmbeddedInLargerString(t *testing.T) {
	foo := eval.NewItem("Compile", "Foo.cs", "/proj", "/proj/a.proj")
	ctx := newVectorContext("Compile", foo)

	out, err := ExpandItemVectors(ctx, "files: @(Compile)", eval.Location{})
	require.NoError(t, err)
	assert.Equal(t, "files: Foo.cs", out)
}
