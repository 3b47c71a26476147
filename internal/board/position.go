// Package board implements chess rules on a mailbox 8x8 grid.
package board

import "fmt"

// Position is a square on the board.
// Row 0 is rank 8 and column 0 is file a, so a1 is (7, 0) and h8 is (0, 7).
// The zero value is a8.
type Position struct {
	row, col int8
}

// NewPosition returns the square at row, col.
func NewPosition(row, col int) (Position, error) {
	if row < 0 || row > 7 || col < 0 || col > 7 {
		return Position{}, fmt.Errorf("%w: row %d, col %d", ErrOutOfRange, row, col)
	}
	return Position{row: int8(row), col: int8(col)}, nil
}

// ParsePosition parses a square in algebraic notation (e.g., "e4").
func ParsePosition(s string) (Position, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return Position{}, fmt.Errorf("%w: %q", ErrInvalidNotation, s)
	}
	return Position{row: int8('8' - s[1]), col: int8(s[0] - 'a')}, nil
}

// MustParsePosition is like ParsePosition but panics on malformed input.
func MustParsePosition(s string) Position {
	p, err := ParsePosition(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Row returns the row index (0 = rank 8).
func (p Position) Row() int {
	return int(p.row)
}

// Col returns the column index (0 = file a).
func (p Position) Col() int {
	return int(p.col)
}

// File returns the file letter.
func (p Position) File() byte {
	return 'a' + byte(p.col)
}

// Rank returns the rank digit.
func (p Position) Rank() byte {
	return '8' - byte(p.row)
}

// Offset returns the square dRow rows and dCol columns away.
// ok is false when that square is off the board.
func (p Position) Offset(dRow, dCol int) (Position, bool) {
	r, c := int(p.row)+dRow, int(p.col)+dCol
	if r < 0 || r > 7 || c < 0 || c > 7 {
		return Position{}, false
	}
	return Position{row: int8(r), col: int8(c)}, true
}

// String returns the algebraic name of the square.
func (p Position) String() string {
	return string([]byte{p.File(), p.Rank()})
}

// MarshalText implements encoding.TextMarshaler.
func (p Position) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Position) UnmarshalText(text []byte) error {
	parsed, err := ParsePosition(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
