package board

import "fmt"

// Color represents the color of a piece or player.
type Color uint8

const (
	White Color = iota
	Black
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

// String returns the color name.
func (c Color) String() string {
	if c == White {
		return "White"
	}
	return "Black"
}

// ParseColor accepts "white", "black", "w" or "b".
func ParseColor(s string) (Color, error) {
	switch s {
	case "white", "White", "w":
		return White, nil
	case "black", "Black", "b":
		return Black, nil
	}
	return White, fmt.Errorf("invalid color: %q", s)
}

// forward is the row delta of a pawn step. White advances toward row 0.
func (c Color) forward() int {
	if c == White {
		return -1
	}
	return 1
}

func (c Color) homeRow() int {
	if c == White {
		return 7
	}
	return 0
}

func (c Color) pawnRow() int {
	if c == White {
		return 6
	}
	return 1
}

func (c Color) promotionRow() int {
	if c == White {
		return 0
	}
	return 7
}

// Kind is the type of a chess piece. The zero value means no piece.
type Kind uint8

const (
	NoKind Kind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// String returns the piece type name.
func (k Kind) String() string {
	switch k {
	case Pawn:
		return "Pawn"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Rook:
		return "Rook"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return "None"
	}
}

// Letter returns the uppercase notation letter ('P', 'N', ...).
func (k Kind) Letter() byte {
	const letters = " PNBRQK"
	if int(k) >= len(letters) {
		return ' '
	}
	return letters[k]
}

// kindFromLetter maps a notation letter of either case to a Kind.
func kindFromLetter(c byte) (Kind, bool) {
	switch c {
	case 'P', 'p':
		return Pawn, true
	case 'N', 'n':
		return Knight, true
	case 'B', 'b':
		return Bishop, true
	case 'R', 'r':
		return Rook, true
	case 'Q', 'q':
		return Queen, true
	case 'K', 'k':
		return King, true
	}
	return NoKind, false
}

// canPromoteTo reports whether a pawn may become k.
func canPromoteTo(k Kind) bool {
	return k == Knight || k == Bishop || k == Rook || k == Queen
}

type vector struct{ dr, dc int }

var (
	knightVectors = []vector{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
	bishopVectors = []vector{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	rookVectors   = []vector{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	queenVectors  = []vector{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}, {-1, 0}, {1, 0}, {0, -1}, {0, 1}}
)

// movement returns the direction table of k and whether it slides
// along each direction until blocked. Pawns have no table.
func (k Kind) movement() ([]vector, bool) {
	switch k {
	case Knight:
		return knightVectors, false
	case Bishop:
		return bishopVectors, true
	case Rook:
		return rookVectors, true
	case Queen:
		return queenVectors, true
	case King:
		return queenVectors, false
	}
	return nil, false
}

// Piece is a colored chess piece together with the square it stands on.
// The zero value (Kind == NoKind) is the absence of a piece.
type Piece struct {
	Kind  Kind
	Color Color
	Pos   Position
	Moved bool
}

// IsZero reports whether p is the absence of a piece.
func (p Piece) IsZero() bool {
	return p.Kind == NoKind
}

// Letter returns the FEN character: uppercase for White, lowercase for Black.
func (p Piece) Letter() byte {
	c := p.Kind.Letter()
	if p.Color == Black && c != ' ' {
		c += 'a' - 'A'
	}
	return c
}

// String returns e.g. "White Knight on f3".
func (p Piece) String() string {
	if p.IsZero() {
		return "None"
	}
	return fmt.Sprintf("%s %s on %s", p.Color, p.Kind, p.Pos)
}

// pieceFromLetter decodes a FEN piece character.
func pieceFromLetter(c byte) (Piece, bool) {
	k, ok := kindFromLetter(c)
	if !ok {
		return Piece{}, false
	}
	color := White
	if c >= 'a' {
		color = Black
	}
	return Piece{Kind: k, Color: color}, true
}
