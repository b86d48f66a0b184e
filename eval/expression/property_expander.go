package expression

import (
	"strings"

	"github.com/dustincampbell/msbuild-eval/eval"
)

// PropertyUseTracker records every property name referenced during one
// expansion pass, so a caller can diagnose a property being redefined after
// it was already read.
type PropertyUseTracker struct {
	names map[string]bool
}

// NewPropertyUseTracker returns an empty tracker.
func NewPropertyUseTracker() *PropertyUseTracker {
	return &PropertyUseTracker{names: map[string]bool{}}
}

func (t *PropertyUseTracker) record(name string) {
	if t == nil {
		return
	}
	if t.names == nil {
		t.names = map[string]bool{}
	}
	t.names[strings.ToLower(name)] = true
}

// WasUsed reports whether name was referenced during expansion.
func (t *PropertyUseTracker) WasUsed(name string) bool {
	if t == nil {
		return false
	}
	return t.names[strings.ToLower(name)]
}

// PropertyCapture is a parsed $(name) or $(name.Method(args)) reference.
type PropertyCapture struct {
	Name       string
	MethodName string
	RawArgs    string
	HasMethod  bool
}

// ParsePropertyRef parses the interior of a $(...) token.
func ParsePropertyRef(inner string, loc eval.Location) (*PropertyCapture, error) {
	name, next := ScanName(inner, 0)
	if name == "" {
		return nil, eval.WrapInvalidProject(
			eval.ErrInvalidItemFunctionSyntax.New("$("+inner+")", "missing property name"), loc)
	}
	i := next
	if i >= len(inner) {
		return &PropertyCapture{Name: name}, nil
	}
	if inner[i] != '.' {
		return nil, eval.WrapInvalidProject(
			eval.ErrInvalidItemFunctionSyntax.New("$("+inner+")", "unexpected trailing text after property name"), loc)
	}
	i++
	method, next := ScanName(inner, i)
	if method == "" {
		return nil, eval.WrapInvalidProject(
			eval.ErrInvalidItemFunctionSyntax.New("$("+inner+")", "expected a method name after '.'"), loc)
	}
	i = next
	if i >= len(inner) || inner[i] != '(' {
		return nil, eval.WrapInvalidProject(
			eval.ErrInvalidItemFunctionSyntax.New("$("+inner+")", "expected '(' after method name "+method), loc)
	}
	close, ok := findBalancedClose(inner, i, true)
	if !ok || close != len(inner)-1 {
		return nil, eval.WrapInvalidProject(
			eval.ErrUnterminatedExpression.New(i, inner), loc)
	}
	return &PropertyCapture{Name: name, MethodName: method, RawArgs: inner[i+1 : close], HasMethod: true}, nil
}

// resolveProperty looks up and, if requested, invokes a property function
// for cap, recording the reference in tracker.
func resolveProperty(ctx *eval.Context, cap *PropertyCapture, loc eval.Location, tracker *PropertyUseTracker) (interface{}, error) {
	tracker.record(cap.Name)

	prop, ok := ctx.Properties.Lookup(cap.Name)
	var receiver interface{} = ""
	if ok {
		receiver = prop.Value
	}

	if !cap.HasMethod {
		return receiver, nil
	}
	if ctx.PropertyFns == nil {
		return nil, eval.WrapInvalidProject(
			eval.ErrInvalidItemFunctionSyntax.New(cap.Name+"."+cap.MethodName, "no property function evaluator configured"), loc)
	}
	args := SplitArgs(cap.RawArgs)
	value, _, err := ctx.PropertyFns.Invoke("property", receiver, cap.MethodName, args)
	if err != nil {
		return nil, eval.WrapInvalidProject(
			eval.ErrInvalidItemFunctionSyntax.New(cap.Name+"."+cap.MethodName, err.Error()), loc)
	}
	return value, nil
}

// ExpandPropertiesTyped expands every $(...) reference in expr. When expr is
// exactly one property token spanning the whole string, the raw,
// un-stringified value is returned with wasSingle=true ("leave typed") —
// useful for a condition-like caller that wants to keep a bool/number
// instead of its string form. Otherwise it falls back to
// ExpandPropertiesEscaped and returns its (string) result with
// wasSingle=false.
func ExpandPropertiesTyped(ctx *eval.Context, expr string, loc eval.Location, tracker *PropertyUseTracker) (value interface{}, wasSingle bool, err error) {
	if tok, ok := Next(expr, 0); ok && tok.Kind == TokenProperty && tok.Start == 0 && tok.Close == len(expr)-1 {
		cap, err := ParsePropertyRef(tok.Inner(expr), loc)
		if err != nil {
			if ctx.Options.LeavePropertiesUnexpandedOnError {
				return expr, true, nil
			}
			return nil, false, err
		}
		v, err := resolveProperty(ctx, cap, loc, tracker)
		if err != nil {
			if ctx.Options.LeavePropertiesUnexpandedOnError {
				return expr, true, nil
			}
			return nil, false, err
		}
		return v, true, nil
	}

	s, err := ExpandPropertiesEscaped(ctx, expr, loc, tracker)
	return s, false, err
}

// ExpandPropertiesEscaped expands every $(...) reference in expr, always
// returning an escaped string ("leave escaped").
//
// When ctx.Options.BreakOnNotEmpty is set, expansion stops as soon as the
// output accumulated so far becomes non-empty, and only that accumulated
// output is returned: any remaining $(...) references and trailing literal
// text are left out of the result. Since this function's contract is to always hand back a
// usable escaped string (callers splice it directly into a larger
// expression), the early exit is expressed by truncating the walk rather
// than by a sentinel nil, which would leave every caller needing its own
// null-check. See DESIGN.md for the full rationale.
func ExpandPropertiesEscaped(ctx *eval.Context, expr string, loc eval.Location, tracker *PropertyUseTracker) (string, error) {
	if !strings.Contains(expr, "$(") {
		return expr, nil
	}

	var b strings.Builder
	pos := 0
	for {
		tok, ok := Next(expr, pos)
		if !ok || tok.Kind != TokenProperty {
			b.WriteString(expr[pos:])
			break
		}
		b.WriteString(expr[pos:tok.Start])

		cap, err := ParsePropertyRef(tok.Inner(expr), loc)
		if err != nil {
			if ctx.Options.LeavePropertiesUnexpandedOnError {
				b.WriteString(tok.Text(expr))
				pos = tok.Close + 1
				continue
			}
			return "", err
		}

		v, err := resolveProperty(ctx, cap, loc, tracker)
		if err != nil {
			if ctx.Options.LeavePropertiesUnexpandedOnError {
				b.WriteString(tok.Text(expr))
				pos = tok.Close + 1
				continue
			}
			return "", err
		}

		b.WriteString(eval.Escape(stringifyPropertyValue(v)))
		pos = tok.Close + 1

		if ctx.Options.BreakOnNotEmpty && b.Len() > 0 {
			return b.String(), nil
		}
	}

	out := b.String()
	if out == expr {
		return expr, nil
	}
	return out, nil
}

func stringifyPropertyValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmtStringer:
		return t.String()
	default:
		return toStringFallback(v)
	}
}

type fmtStringer interface {
	String() string
}
