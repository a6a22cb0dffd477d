// Package runtime holds the mutable machine state of a brainfuck run.
package runtime

// Tape is the interpreter's addressable memory: a row of byte cells that
// grows to the right on demand. It starts as a single zero cell and the data
// pointer always references a valid cell. Cell arithmetic wraps modulo 256.
type Tape struct {
	cells   []byte
	pointer int
}

// NewTape returns a tape holding one zero cell with the pointer on it.
func NewTape() *Tape {
	return &Tape{cells: make([]byte, 1)}
}

// Cell returns the value of the currently pointed-to cell.
func (t *Tape) Cell() byte {
	return t.cells[t.pointer]
}

// SetCell overwrites the currently pointed-to cell.
func (t *Tape) SetCell(b byte) {
	t.cells[t.pointer] = b
}

// IncCell adds one to the current cell, wrapping 255 to 0.
func (t *Tape) IncCell() {
	t.cells[t.pointer]++
}

// DecCell subtracts one from the current cell, wrapping 0 to 255.
func (t *Tape) DecCell() {
	t.cells[t.pointer]--
}

// Pointer returns the data pointer.
func (t *Tape) Pointer() int {
	return t.pointer
}

// Len returns the number of cells currently allocated.
func (t *Tape) Len() int {
	return len(t.cells)
}

// MoveRight advances the pointer, appending a zero cell when it crosses the
// current right edge. It reports false, leaving the tape unchanged, when
// growing would exceed maxCells (maxCells <= 0 means unlimited).
func (t *Tape) MoveRight(maxCells int) bool {
	if t.pointer+1 < len(t.cells) {
		t.pointer++
		return true
	}
	if maxCells > 0 && len(t.cells) >= maxCells {
		return false
	}
	t.cells = append(t.cells, 0)
	t.pointer++
	return true
}

// MoveLeft retreats the pointer, reporting false at the left edge.
func (t *Tape) MoveLeft() bool {
	if t.pointer == 0 {
		return false
	}
	t.pointer--
	return true
}
