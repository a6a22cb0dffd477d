package lang

import "testing"

func TestPositionString(t *testing.T) {
	pos := Position{Line: 3, Column: 14}
	if got := pos.String(); got != "line 3, column 14" {
		t.Fatalf("unexpected position rendering: %q", got)
	}
}

func TestOpcodeRunes(t *testing.T) {
	cases := map[Opcode]rune{
		OpIncPointer: '>',
		OpDecPointer: '<',
		OpIncCell:    '+',
		OpDecCell:    '-',
		OpOutput:     '.',
		OpInput:      ',',
		OpLoopStart:  '[',
		OpLoopEnd:    ']',
		OpDebug:      '?',
	}
	for op, want := range cases {
		if got := op.Rune(); got != want {
			t.Fatalf("opcode %d: expected %q, got %q", op, want, got)
		}
	}
}

func TestProgramMatch(t *testing.T) {
	commands := []Command{
		{Op: OpLoopStart, Pos: Position{Line: 1, Column: 1}},
		{Op: OpDecCell, Pos: Position{Line: 1, Column: 2}},
		{Op: OpLoopEnd, Pos: Position{Line: 1, Column: 3}},
	}
	program := NewProgram(commands, []int{2, -1, 0})

	if match, ok := program.Match(0); !ok || match != 2 {
		t.Fatalf("expected 0 to match 2, got %d (ok=%v)", match, ok)
	}
	if match, ok := program.Match(2); !ok || match != 0 {
		t.Fatalf("expected 2 to match 0, got %d (ok=%v)", match, ok)
	}
	if _, ok := program.Match(1); ok {
		t.Fatalf("non-bracket command should have no match")
	}
	if _, ok := program.Match(7); ok {
		t.Fatalf("out-of-range index should have no match")
	}
}
