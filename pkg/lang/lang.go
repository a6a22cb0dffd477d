// Package lang defines the command-level representation of a brainfuck
// program: source positions, opcodes, and the validated Program with its
// bracket jump table.
package lang

import "fmt"

// Position locates a character in the original source text. Line and Column
// are 1-based; columns count runes, not bytes.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// Opcode identifies one of the primitive instructions.
type Opcode byte

const (
	OpIncPointer Opcode = iota // >
	OpDecPointer               // <
	OpIncCell                  // +
	OpDecCell                  // -
	OpOutput                   // .
	OpInput                    // ,
	OpLoopStart                // [
	OpLoopEnd                  // ]

	// OpDebug is only produced when the parser runs with Debug enabled.
	OpDebug // ?
)

// Rune returns the source character the opcode was scanned from.
func (op Opcode) Rune() rune {
	switch op {
	case OpIncPointer:
		return '>'
	case OpDecPointer:
		return '<'
	case OpIncCell:
		return '+'
	case OpDecCell:
		return '-'
	case OpOutput:
		return '.'
	case OpInput:
		return ','
	case OpLoopStart:
		return '['
	case OpLoopEnd:
		return ']'
	case OpDebug:
		return '?'
	default:
		return 0
	}
}

func (op Opcode) String() string {
	return string(op.Rune())
}

// Command pairs an opcode with the source position it was scanned from.
type Command struct {
	Op  Opcode
	Pos Position
}

// Program is a validated command sequence plus the bidirectional jump table
// built for its bracket pairs. It is immutable after validation and may be
// executed concurrently by independent machines.
type Program struct {
	commands []Command
	jumps    []int
}

// NewProgram assembles a program from a command sequence and its jump table.
// jumps must have the same length as commands, with jumps[i] holding the
// matching bracket index for bracket commands and -1 everywhere else.
func NewProgram(commands []Command, jumps []int) *Program {
	if len(commands) != len(jumps) {
		panic(fmt.Sprintf("lang: %d commands with %d jump entries", len(commands), len(jumps)))
	}
	return &Program{commands: commands, jumps: jumps}
}

// Len reports the number of commands in the program.
func (p *Program) Len() int {
	return len(p.commands)
}

// Command returns the command at index i.
func (p *Program) Command(i int) Command {
	return p.commands[i]
}

// Commands returns the full command sequence. Callers must not mutate it.
func (p *Program) Commands() []Command {
	return p.commands
}

// Match returns the index of the bracket matching the bracket at index i.
// It reports false when the command at i is not a bracket.
func (p *Program) Match(i int) (int, bool) {
	if i < 0 || i >= len(p.jumps) || p.jumps[i] < 0 {
		return 0, false
	}
	return p.jumps[i], true
}
