package interpreter

import (
	"fmt"

	"brainfuck/interpreter-go/pkg/lang"
)

// FaultKind discriminates the runtime faults a program can raise.
type FaultKind int

const (
	// PointerUnderflow reports a '<' executed while the data pointer was 0.
	PointerUnderflow FaultKind = iota
	// InputExhausted reports a ',' executed with no input bytes left.
	InputExhausted
	// OutputNotUTF8 reports that the accumulated output bytes do not form
	// valid UTF-8 at successful termination.
	OutputNotUTF8
	// StepLimitExceeded reports that Options.MaxSteps was reached.
	StepLimitExceeded
	// TapeLimitExceeded reports that growing the tape would exceed
	// Options.MaxTapeCells.
	TapeLimitExceeded
)

// RuntimeError is the first fault raised during execution. Pos identifies
// the command being executed when the fault was raised; for OutputNotUTF8 it
// is the position of the last command in the program.
type RuntimeError struct {
	Kind FaultKind
	Pos  lang.Position
}

func (e *RuntimeError) Error() string {
	switch e.Kind {
	case PointerUnderflow:
		return fmt.Sprintf("runtime error: %s: data pointer moved below zero", e.Pos)
	case InputExhausted:
		return fmt.Sprintf("runtime error: %s: ',' executed with no input left", e.Pos)
	case OutputNotUTF8:
		return fmt.Sprintf("runtime error: %s: output is not valid UTF-8", e.Pos)
	case StepLimitExceeded:
		return fmt.Sprintf("runtime error: %s: step limit reached", e.Pos)
	case TapeLimitExceeded:
		return fmt.Sprintf("runtime error: %s: tape cell limit reached", e.Pos)
	default:
		return fmt.Sprintf("runtime error: %s: unknown fault", e.Pos)
	}
}
