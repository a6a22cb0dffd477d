package interpreter

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"brainfuck/interpreter-go/pkg/lang"
	"brainfuck/interpreter-go/pkg/parser"
)

func expectFault(t *testing.T, err error, kind FaultKind, pos lang.Position) {
	t.Helper()
	var runtimeErr *RuntimeError
	if !errors.As(err, &runtimeErr) {
		t.Fatalf("expected *RuntimeError, got %v", err)
	}
	if runtimeErr.Kind != kind {
		t.Fatalf("expected fault kind %v, got %v", kind, runtimeErr.Kind)
	}
	if runtimeErr.Pos != pos {
		t.Fatalf("expected fault at %v, got %v", pos, runtimeErr.Pos)
	}
}

func TestInterpretProducesLetterA(t *testing.T) {
	out, err := Interpret("++++++++[>++++++++++<-]>+++++++.", nil)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if out != "A" {
		t.Fatalf("expected %q, got %q", "A", out)
	}
}

func TestInterpretEchoesInput(t *testing.T) {
	out, err := Interpret(",.", []byte{88})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if out != "X" {
		t.Fatalf("expected %q, got %q", "X", out)
	}
}

func TestInputExhausted(t *testing.T) {
	_, err := Interpret(",.", nil)
	expectFault(t, err, InputExhausted, lang.Position{Line: 1, Column: 1})
}

func TestPointerUnderflow(t *testing.T) {
	_, err := Interpret("<", nil)
	expectFault(t, err, PointerUnderflow, lang.Position{Line: 1, Column: 1})
}

func TestPointerUnderflowAfterMoves(t *testing.T) {
	// The pointer returns to zero before the final '<' faults.
	_, err := Interpret(">><<\n<", nil)
	expectFault(t, err, PointerUnderflow, lang.Position{Line: 2, Column: 1})
}

func TestOutputNotUTF8(t *testing.T) {
	// A single 0xFF byte is not valid UTF-8.
	_, err := Interpret("-.", nil)
	expectFault(t, err, OutputNotUTF8, lang.Position{Line: 1, Column: 2})
}

func TestFailedRunReturnsNoPartialOutput(t *testing.T) {
	// The '.' runs before the fault; its output must not leak out.
	out, err := Interpret("+.<", nil)
	if err == nil {
		t.Fatalf("expected pointer underflow")
	}
	if out != "" {
		t.Fatalf("failed run must not return partial output, got %q", out)
	}
}

func TestLoopSkippedWhenCellZero(t *testing.T) {
	out, err := Interpret("[.]"+strings.Repeat("+", 48)+".", nil)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if out != "0" {
		t.Fatalf("expected loop body to be skipped, got %q", out)
	}
}

func TestIncrementWrapsAt256(t *testing.T) {
	// 256 increments wrap the cell back to zero.
	out, err := Interpret(strings.Repeat("+", 256)+".", nil)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if out != "\x00" {
		t.Fatalf("expected wrapped cell 0, got %q", out)
	}
}

func TestDecrementWrapsToTwoFiftyFive(t *testing.T) {
	// The debug command reports the cell value without emitting the raw
	// (non-UTF-8) byte.
	program, err := parser.ParseWithOptions("-?", parser.Options{Debug: true})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	out, runErr := Run(program, nil)
	if runErr != nil {
		t.Fatalf("run failed: %v", runErr)
	}
	if out != "[0,255]" {
		t.Fatalf("expected wrapped cell 255, got %q", out)
	}
}

func TestParseErrorSurfacesFromInterpret(t *testing.T) {
	_, err := Interpret("[", nil)
	var parseErr *parser.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *parser.ParseError, got %v", err)
	}
	if parseErr.Kind != parser.UnmatchedOpenBracket {
		t.Fatalf("expected UnmatchedOpenBracket, got %v", parseErr.Kind)
	}
	if parseErr.Pos != (lang.Position{Line: 1, Column: 1}) {
		t.Fatalf("unexpected position: %v", parseErr.Pos)
	}
}

func TestStepLimit(t *testing.T) {
	program, err := parser.Parse("+[]")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	machine := NewMachineWithOptions(program, nil, Options{MaxSteps: 100})
	_, runErr := machine.Run()
	var runtimeErr *RuntimeError
	if !errors.As(runErr, &runtimeErr) || runtimeErr.Kind != StepLimitExceeded {
		t.Fatalf("expected StepLimitExceeded, got %v", runErr)
	}
}

func TestTapeLimit(t *testing.T) {
	program, err := parser.Parse(">>>>")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	machine := NewMachineWithOptions(program, nil, Options{MaxTapeCells: 3})
	_, runErr := machine.Run()
	expectFault(t, runErr, TapeLimitExceeded, lang.Position{Line: 1, Column: 3})
}

func TestRunContextCancellation(t *testing.T) {
	program, err := parser.Parse("+[]")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, runErr := NewMachine(program, nil).RunContext(ctx)
	if !errors.Is(runErr, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", runErr)
	}
}

func TestDebugCommand(t *testing.T) {
	program, err := parser.ParseWithOptions("++>+?", parser.Options{Debug: true})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	out, runErr := Run(program, nil)
	if runErr != nil {
		t.Fatalf("run failed: %v", runErr)
	}
	if out != "[1,1]" {
		t.Fatalf("expected debug snapshot [1,1], got %q", out)
	}
}

func TestConcurrentRunsAreIndependent(t *testing.T) {
	program, err := parser.Parse(",[>+<-]>.")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(b byte) {
			defer wg.Done()
			out, runErr := Run(program, []byte{b})
			if runErr != nil {
				t.Errorf("run failed: %v", runErr)
				return
			}
			if len(out) != 1 || out[0] != b {
				t.Errorf("expected %d, got %q", b, out)
			}
		}(byte('a' + i))
	}
	wg.Wait()
}

func TestRuntimeErrorMessages(t *testing.T) {
	cases := []struct {
		err  *RuntimeError
		want string
	}{
		{&RuntimeError{Kind: PointerUnderflow, Pos: lang.Position{Line: 1, Column: 1}}, "runtime error: line 1, column 1: data pointer moved below zero"},
		{&RuntimeError{Kind: InputExhausted, Pos: lang.Position{Line: 2, Column: 5}}, "runtime error: line 2, column 5: ',' executed with no input left"},
		{&RuntimeError{Kind: OutputNotUTF8, Pos: lang.Position{Line: 1, Column: 2}}, "runtime error: line 1, column 2: output is not valid UTF-8"},
	}
	for _, tc := range cases {
		if got := tc.err.Error(); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}
