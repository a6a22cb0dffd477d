// Package interpreter executes validated brainfuck programs. Each run owns
// its machine state exclusively, so independent runs may proceed
// concurrently without coordination.
package interpreter

import (
	"context"
	"fmt"
	"unicode/utf8"

	"brainfuck/interpreter-go/pkg/lang"
	"brainfuck/interpreter-go/pkg/parser"
	"brainfuck/interpreter-go/pkg/runtime"
)

// Options bounds a run. Zero values impose no limit, preserving the default
// contract that a looping program runs until its caller cancels it.
type Options struct {
	// MaxSteps aborts the run with StepLimitExceeded once this many commands
	// have executed.
	MaxSteps int
	// MaxTapeCells aborts the run with TapeLimitExceeded when the tape would
	// grow past this many cells.
	MaxTapeCells int
}

// stepCheckInterval is how many steps pass between cancellation polls.
const stepCheckInterval = 4096

// Machine is the per-run execution state: instruction pointer, tape, input
// cursor, and output buffer. It is not safe for concurrent use; run each
// program on its own machine.
type Machine struct {
	program *lang.Program
	input   []byte
	opts    Options

	ip     int
	tape   *runtime.Tape
	cursor int
	output []byte
	steps  int
}

// NewMachine prepares a machine for one run of program. input may be nil.
func NewMachine(program *lang.Program, input []byte) *Machine {
	return NewMachineWithOptions(program, input, Options{})
}

// NewMachineWithOptions prepares a machine with explicit run limits.
func NewMachineWithOptions(program *lang.Program, input []byte, opts Options) *Machine {
	return &Machine{
		program: program,
		input:   input,
		opts:    opts,
		tape:    runtime.NewTape(),
	}
}

// Run executes the program to completion or first fault, returning the
// accumulated output. A failed run returns no partial output.
func (m *Machine) Run() (string, error) {
	return m.RunContext(context.Background())
}

// RunContext is Run with cooperative cancellation: ctx is polled every
// stepCheckInterval steps and its error is returned when it fires. This is
// the extension point for callers that need to bound otherwise unbounded
// programs.
func (m *Machine) RunContext(ctx context.Context) (string, error) {
	for m.ip < m.program.Len() {
		if m.steps%stepCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return "", err
			}
		}
		cmd := m.program.Command(m.ip)
		m.steps++
		if m.opts.MaxSteps > 0 && m.steps > m.opts.MaxSteps {
			return "", &RuntimeError{Kind: StepLimitExceeded, Pos: cmd.Pos}
		}

		switch cmd.Op {
		case lang.OpIncPointer:
			if !m.tape.MoveRight(m.opts.MaxTapeCells) {
				return "", &RuntimeError{Kind: TapeLimitExceeded, Pos: cmd.Pos}
			}
		case lang.OpDecPointer:
			if !m.tape.MoveLeft() {
				return "", &RuntimeError{Kind: PointerUnderflow, Pos: cmd.Pos}
			}
		case lang.OpIncCell:
			m.tape.IncCell()
		case lang.OpDecCell:
			m.tape.DecCell()
		case lang.OpOutput:
			m.output = append(m.output, m.tape.Cell())
		case lang.OpInput:
			if m.cursor >= len(m.input) {
				return "", &RuntimeError{Kind: InputExhausted, Pos: cmd.Pos}
			}
			m.tape.SetCell(m.input[m.cursor])
			m.cursor++
		case lang.OpLoopStart:
			if m.tape.Cell() == 0 {
				end, ok := m.program.Match(m.ip)
				if !ok {
					return "", fmt.Errorf("interpreter: loop start at %s has no jump entry", cmd.Pos)
				}
				// Skip the loop body entirely.
				m.ip = end + 1
				continue
			}
		case lang.OpLoopEnd:
			if m.tape.Cell() != 0 {
				start, ok := m.program.Match(m.ip)
				if !ok {
					return "", fmt.Errorf("interpreter: loop end at %s has no jump entry", cmd.Pos)
				}
				m.ip = start
				continue
			}
		case lang.OpDebug:
			m.output = append(m.output, fmt.Sprintf("[%d,%d]", m.tape.Pointer(), m.tape.Cell())...)
		}

		m.ip++
	}

	if !utf8.Valid(m.output) {
		pos := lang.Position{}
		if n := m.program.Len(); n > 0 {
			pos = m.program.Command(n - 1).Pos
		}
		return "", &RuntimeError{Kind: OutputNotUTF8, Pos: pos}
	}
	return string(m.output), nil
}

// Run executes a validated program with default options.
func Run(program *lang.Program, input []byte) (string, error) {
	return NewMachine(program, input).Run()
}

// Interpret validates source and runs it in one call, the whole pipeline
// from raw text to result. input may be nil for programs that read nothing.
func Interpret(source string, input []byte) (string, error) {
	return InterpretContext(context.Background(), source, input)
}

// InterpretContext is Interpret with cooperative cancellation.
func InterpretContext(ctx context.Context, source string, input []byte) (string, error) {
	program, err := parser.Parse(source)
	if err != nil {
		return "", err
	}
	return NewMachine(program, input).RunContext(ctx)
}
