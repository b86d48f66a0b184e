package eval

import "fmt"

// Location identifies the source position of a project element, for
// attaching to diagnostics and InvalidProject errors. Parsing of the project
// XML is not this core's job; Location is produced by that external
// collaborator and threaded through unchanged.
type Location struct {
	File   string
	Line   int
	Column int
}

// IsEmpty reports whether the location carries no useful information, e.g.
// for synthetic elements created by tests.
func (l Location) IsEmpty() bool {
	return l.File == "" && l.Line == 0 && l.Column == 0
}

func (l Location) String() string {
	if l.IsEmpty() {
		return "<unknown>"
	}
	if l.Column == 0 {
		return fmt.Sprintf("%s(%d)", l.File, l.Line)
	}
	return fmt.Sprintf("%s(%d,%d)", l.File, l.Line, l.Column)
}
