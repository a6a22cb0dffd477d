// Package parser validates raw brainfuck source and compiles it into an
// executable lang.Program. Validation is a single scan: every character
// advances the running source position, the eight command characters are
// retained with the position they were scanned at, and bracket pairs are
// matched with an explicit stack so the jump table can be built up front.
package parser

import (
	"brainfuck/interpreter-go/pkg/lang"
)

// Options controls how source text is scanned.
type Options struct {
	// Debug retains '?' as a debug instruction instead of treating it as
	// commentary. Disabled by default.
	Debug bool
}

// Parse validates source with default options.
func Parse(source string) (*lang.Program, error) {
	return ParseWithOptions(source, Options{})
}

// ParseWithOptions validates source and produces a program, or fails with a
// *ParseError describing the first structural defect found. It is a pure
// function of its inputs.
func ParseWithOptions(source string, opts Options) (*lang.Program, error) {
	var (
		commands []lang.Command
		jumps    []int
	)

	type openBracket struct {
		index int // index into commands, not raw source
		pos   lang.Position
	}
	var stack []openBracket

	pos := lang.Position{Line: 1, Column: 1}
	for _, r := range source {
		at := pos
		if r == '\n' {
			pos.Line++
			pos.Column = 1
		} else {
			pos.Column++
		}

		var op lang.Opcode
		switch r {
		case '>':
			op = lang.OpIncPointer
		case '<':
			op = lang.OpDecPointer
		case '+':
			op = lang.OpIncCell
		case '-':
			op = lang.OpDecCell
		case '.':
			op = lang.OpOutput
		case ',':
			op = lang.OpInput
		case '[':
			op = lang.OpLoopStart
		case ']':
			op = lang.OpLoopEnd
		case '?':
			if !opts.Debug {
				continue
			}
			op = lang.OpDebug
		default:
			// Everything else is commentary; it only advances the position.
			continue
		}

		index := len(commands)
		commands = append(commands, lang.Command{Op: op, Pos: at})
		jumps = append(jumps, -1)

		switch op {
		case lang.OpLoopStart:
			stack = append(stack, openBracket{index: index, pos: at})
		case lang.OpLoopEnd:
			if len(stack) == 0 {
				return nil, &ParseError{Kind: UnmatchedCloseBracket, Pos: at}
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			jumps[open.index] = index
			jumps[index] = open.index
		}
	}

	if len(stack) > 0 {
		// The outermost unmatched bracket is the earliest offending one and
		// gives the most useful diagnostic.
		return nil, &ParseError{Kind: UnmatchedOpenBracket, Pos: stack[0].pos}
	}

	return lang.NewProgram(commands, jumps), nil
}
