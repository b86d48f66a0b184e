package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dustincampbell/msbuild-eval/eval"
	"github.com/dustincampbell/msbuild-eval/eval/evaltest"
)

func newExpanderContext(props map[string]string) *eval.Context {
	ctx := eval.NewContext(nil)
	ctx.Properties = evaltest.NewProperties(props)
	ctx.PropertyFns = evaltest.PropertyFunctions{}
	return ctx
}

func TestExpandPropertiesEscaped_Basic(t *testing.T) {
	ctx := newExpanderContext(map[string]string{"Foo": "bar"})
	out, err := ExpandPropertiesEscaped(ctx, "prefix-$(Foo)-suffix", eval.Location{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "prefix-bar-suffix", out)
}

func TestExpandPropertiesEscaped_UndefinedPropertyExpandsEmpty(t *testing.T) {
	ctx := newExpanderContext(nil)
	out, err := ExpandPropertiesEscaped(ctx, "x$(Missing)y", eval.Location{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "xy", out)
}

func TestExpandPropertiesEscaped_NoReferencesReturnsInputUnchanged(t *testing.T) {
	ctx := newExpanderContext(nil)
	out, err := ExpandPropertiesEscaped(ctx, "plain text", eval.Location{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "plain text", out)
}

func TestExpandPropertiesEscaped_RecordsUseInTracker(t *testing.T) {
	ctx := newExpanderContext(map[string]string{"Foo": "bar"})
	tracker := NewPropertyUseTracker()
	_, err := ExpandPropertiesEscaped(ctx, "$(Foo)", eval.Location{}, tracker)
	require.NoError(t, err)
	assert.True(t, tracker.WasUsed("Foo"))
	assert.False(t, tracker.WasUsed("Bar"))
}

func TestExpandPropertiesEscaped_MethodCall(t *testing.T) {
	ctx := newExpanderContext(map[string]string{"Foo": "bar"})
	out, err := ExpandPropertiesEscaped(ctx, "$(Foo.ToUpper())", eval.Location{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "BAR", out)
}

func TestExpandPropertiesEscaped_BreakOnNotEmptyStopsAtFirstNonEmpty(t *testing.T) {
	ctx := newExpanderContext(map[string]string{"Foo": "bar", "Baz": "qux"})
	ctx.Options.BreakOnNotEmpty = true
	out, err := ExpandPropertiesEscaped(ctx, "$(Foo)$(Baz)", eval.Location{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "bar", out)
}

func TestExpandPropertiesTyped_SingleTokenLeavesTyped(t *testing.T) {
	ctx := newExpanderContext(map[string]string{"Foo": "bar"})
	v, wasSingle, err := ExpandPropertiesTyped(ctx, "$(Foo)", eval.Location{}, nil)
	require.NoError(t, err)
	assert.True(t, wasSingle)
	assert.Equal(t, "bar", v)
}

func TestExpandPropertiesTyped_EmbeddedFallsBackToString(t *testing.T) {
	ctx := newExpanderContext(map[string]string{"Foo": "bar"})
	v, wasSingle, err := ExpandPropertiesTyped(ctx, "x$(Foo)", eval.Location{}, nil)
	require.NoError(t, err)
	assert.False(t, wasSingle)
	assert.Equal(t, "xbar", v)
}
