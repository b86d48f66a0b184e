package expression

import (
	"strings"

	"github.com/dustincampbell/msbuild-eval/eval"
)

// MetadataRef is a parsed %(name) or %(itemtype.name) reference.
type MetadataRef struct {
	// ItemType is empty for an unqualified reference.
	ItemType string
	Name     string
}

// ParseMetadataRef parses the interior of a %(...) token (i.e. Token.Inner).
func ParseMetadataRef(inner string, loc eval.Location) (MetadataRef, error) {
	inner = strings.TrimSpace(inner)
	if dot := strings.IndexByte(inner, '.'); dot != -1 {
		itemType := inner[:dot]
		name := inner[dot+1:]
		if itemType == "" || name == "" {
			return MetadataRef{}, eval.WrapInvalidProject(
				eval.ErrEmptyMetadataName.New("%("+inner+")"), loc)
		}
		return MetadataRef{ItemType: itemType, Name: name}, nil
	}
	if inner == "" {
		return MetadataRef{}, eval.WrapInvalidProject(
			eval.ErrEmptyMetadataName.New("%()"), loc)
	}
	return MetadataRef{Name: inner}, nil
}

// TransformCapture is one chained "->" step of an item vector: either a
// quoted substitution template, or an intrinsic/string-method function call.
type TransformCapture struct {
	IsQuoted bool

	// Quoted holds the raw (still-escaped) template text for a quoted
	// transform, without the surrounding single quotes.
	Quoted string

	// FunctionName and RawArgs describe a Function(args) transform; RawArgs
	// is the unparsed, comma-split-pending argument text.
	FunctionName string
	RawArgs      string
}

// ItemVectorCapture is a parsed @(type->transform...,'sep') reference.
type ItemVectorCapture struct {
	ItemType     string
	Transforms   []TransformCapture
	Separator    string
	HasSeparator bool
}

// ParseItemVector parses the interior of an @(...) token (i.e. Token.Inner).
func ParseItemVector(inner string, loc eval.Location) (*ItemVectorCapture, error) {
	i := 0
	name, next := ScanName(inner, i)
	if name == "" {
		return nil, eval.WrapInvalidProject(
			eval.ErrInvalidItemFunctionSyntax.New("@("+inner+")", "missing item type"), loc)
	}
	cap := &ItemVectorCapture{ItemType: name}
	i = next

	for {
		i = skipSpace(inner, i)
		if i >= len(inner) {
			break
		}
		if strings.HasPrefix(inner[i:], "->") {
			i += 2
			i = skipSpace(inner, i)
			t, consumed, err := parseTransform(inner, i, loc)
			if err != nil {
				return nil, err
			}
			cap.Transforms = append(cap.Transforms, t)
			i = consumed
			continue
		}
		if inner[i] == ',' {
			i++
			i = skipSpace(inner, i)
			sep, consumed, err := parseQuoted(inner, i, loc)
			if err != nil {
				return nil, err
			}
			cap.Separator = sep
			cap.HasSeparator = true
			i = consumed
			i = skipSpace(inner, i)
			break
		}
		return nil, eval.WrapInvalidProject(
			eval.ErrInvalidItemFunctionSyntax.New("@("+inner+")", "unexpected trailing text"), loc)
	}

	return cap, nil
}

func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}

// parseQuoted parses a 'quoted text' literal starting at i (which must be
// the opening quote), returning its contents and the index just past the
// closing quote.
func parseQuoted(s string, i int, loc eval.Location) (string, int, error) {
	if i >= len(s) || s[i] != '\'' {
		return "", i, eval.WrapInvalidProject(
			eval.ErrInvalidItemFunctionSyntax.New(s, "expected a quoted string"), loc)
	}
	j := i + 1
	for j < len(s) && s[j] != '\'' {
		j++
	}
	if j >= len(s) {
		return "", i, eval.WrapInvalidProject(
			eval.ErrUnterminatedExpression.New(i, s), loc)
	}
	return s[i+1 : j], j + 1, nil
}

// parseTransform parses one transform step starting at i: either a quoted
// template or a Function(args) call.
func parseTransform(s string, i int, loc eval.Location) (TransformCapture, int, error) {
	if i < len(s) && s[i] == '\'' {
		text, consumed, err := parseQuoted(s, i, loc)
		if err != nil {
			return TransformCapture{}, i, err
		}
		return TransformCapture{IsQuoted: true, Quoted: text}, consumed, nil
	}

	name, next := ScanName(s, i)
	if name == "" {
		return TransformCapture{}, i, eval.WrapInvalidProject(
			eval.ErrInvalidItemFunctionSyntax.New(s, "expected a function name or quoted template"), loc)
	}
	j := skipSpace(s, next)
	if j >= len(s) || s[j] != '(' {
		return TransformCapture{}, i, eval.WrapInvalidProject(
			eval.ErrInvalidItemFunctionSyntax.New(s, "expected '(' after function name "+name), loc)
	}
	close, ok := findBalancedClose(s, j, true)
	if !ok {
		return TransformCapture{}, i, eval.WrapInvalidProject(
			eval.ErrUnterminatedExpression.New(j, s), loc)
	}
	return TransformCapture{FunctionName: name, RawArgs: s[j+1 : close]}, close + 1, nil
}

// SplitArgs splits a function's raw, comma-separated argument text into
// individual argument strings, honoring single-quoted spans the same way
// the top-level scanner does.
func SplitArgs(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var args []string
	depth := 0
	inQuote := false
	start := 0
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
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
				args = append(args, strings.TrimSpace(trimQuotes(raw[start:i])))
				start = i + 1
			}
		}
	}
	args = append(args, strings.TrimSpace(trimQuotes(raw[start:])))
	return args
}

func trimQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1]
	}
	return s
}
