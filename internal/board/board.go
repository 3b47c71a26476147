package board

import (
	"fmt"
	"slices"
	"strings"
)

var backRank = [8]Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// Board is a complete game state: the grid, whose turn it is, castling
// rights, the en passant target, move counters, history and captures.
//
// Board is not safe for concurrent use. Clone it to hand a copy to another
// goroutine.
type Board struct {
	grid      [8][8]Piece
	turn      Color
	castling  CastlingRights
	enPassant Position
	epSet     bool
	halfmove  int
	fullmove  int
	history   []Move
	// captured is indexed by the color that made the capture.
	captured [2][]Piece
}

// NewBoard returns a board set up for the start of a game.
func NewBoard() *Board {
	b := &Board{castling: AllCastling, fullmove: 1}
	for col := int8(0); col < 8; col++ {
		b.place(Piece{Kind: backRank[col], Color: Black}, Position{row: 0, col: col})
		b.place(Piece{Kind: Pawn, Color: Black}, Position{row: 1, col: col})
		b.place(Piece{Kind: Pawn, Color: White}, Position{row: 6, col: col})
		b.place(Piece{Kind: backRank[col], Color: White}, Position{row: 7, col: col})
	}
	return b
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	c := *b
	c.history = slices.Clone(b.history)
	c.captured[White] = slices.Clone(b.captured[White])
	c.captured[Black] = slices.Clone(b.captured[Black])
	return &c
}

// At returns the piece on p, if any.
func (b *Board) At(p Position) (Piece, bool) {
	pc := b.at(p)
	return pc, !pc.IsZero()
}

// Turn returns the side to move.
func (b *Board) Turn() Color {
	return b.turn
}

// Castling returns the castling rights still held.
func (b *Board) Castling() CastlingRights {
	return b.castling
}

// EnPassantTarget returns the square a pawn just skipped over, if any.
func (b *Board) EnPassantTarget() (Position, bool) {
	return b.enPassant, b.epSet
}

// HalfmoveClock returns the number of plies since the last capture or pawn move.
func (b *Board) HalfmoveClock() int {
	return b.halfmove
}

// FullmoveNumber starts at 1 and increments after each Black move.
func (b *Board) FullmoveNumber() int {
	return b.fullmove
}

// History returns the moves played on this board, oldest first.
func (b *Board) History() []Move {
	return slices.Clone(b.history)
}

// HistorySAN returns History in standard algebraic notation.
func (b *Board) HistorySAN() []string {
	out := make([]string, len(b.history))
	for i, m := range b.history {
		out[i] = m.String()
	}
	return out
}

// LastMove returns the most recent move, if any.
func (b *Board) LastMove() (Move, bool) {
	if len(b.history) == 0 {
		return Move{}, false
	}
	return b.history[len(b.history)-1], true
}

// Captured returns the pieces taken by color by, in capture order.
func (b *Board) Captured(by Color) []Piece {
	return slices.Clone(b.captured[by])
}

// Pieces returns every piece of color c, scanning from a8 to h1.
func (b *Board) Pieces(c Color) []Piece {
	var out []Piece
	for r := range b.grid {
		for _, pc := range b.grid[r] {
			if !pc.IsZero() && pc.Color == c {
				out = append(out, pc)
			}
		}
	}
	return out
}

// King returns the square of c's king.
func (b *Board) King(c Color) (Position, bool) {
	for r := range b.grid {
		for _, pc := range b.grid[r] {
			if pc.Kind == King && pc.Color == c {
				return pc.Pos, true
			}
		}
	}
	return Position{}, false
}

func (b *Board) at(p Position) Piece {
	return b.grid[p.row][p.col]
}

func (b *Board) place(pc Piece, p Position) {
	pc.Pos = p
	b.grid[p.row][p.col] = pc
}

func (b *Board) clear(p Position) {
	b.grid[p.row][p.col] = Piece{}
}

// relocate moves the piece on from to to, overwriting whatever stood there.
func (b *Board) relocate(from, to Position) {
	pc := b.at(from)
	pc.Moved = true
	b.clear(from)
	b.place(pc, to)
}

// String returns an ASCII diagram of the board, rank 8 at the top.
func (b *Board) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	for r := range b.grid {
		fmt.Fprintf(&sb, "%d  ", 8-r)
		for _, pc := range b.grid[r] {
			if pc.IsZero() {
				sb.WriteString(". ")
			} else {
				sb.WriteByte(pc.Letter())
				sb.WriteByte(' ')
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", b.turn)
	fmt.Fprintf(&sb, "Castling: %s\n", b.castling)
	if b.epSet {
		fmt.Fprintf(&sb, "En passant: %s\n", b.enPassant)
	} else {
		sb.WriteString("En passant: -\n")
	}
	fmt.Fprintf(&sb, "Half-move clock: %d\n", b.halfmove)
	fmt.Fprintf(&sb, "Full move: %d\n", b.fullmove)
	return sb.String()
}
