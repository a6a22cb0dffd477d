package parser

import (
	"fmt"

	"brainfuck/interpreter-go/pkg/lang"
)

// ErrorKind discriminates the structural defects validation can find.
type ErrorKind int

const (
	// UnmatchedOpenBracket reports a '[' with no matching ']'.
	UnmatchedOpenBracket ErrorKind = iota
	// UnmatchedCloseBracket reports a ']' with no matching '['.
	UnmatchedCloseBracket
)

// ParseError is the first structural defect found in the source text. It
// carries the position of the offending bracket.
type ParseError struct {
	Kind ErrorKind
	Pos  lang.Position
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case UnmatchedCloseBracket:
		return fmt.Sprintf("parse error: %s: ']' has no matching '['", e.Pos)
	default:
		return fmt.Sprintf("parse error: %s: '[' has no matching ']'", e.Pos)
	}
}
