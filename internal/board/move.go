package board

import "fmt"

// MoveType tags the kind of move so the board knows which grid changes to make.
type MoveType uint8

const (
	Normal MoveType = iota
	CastleKingside
	CastleQueenside
	EnPassant
	Promotion
)

// String returns the move type name.
func (t MoveType) String() string {
	switch t {
	case CastleKingside:
		return "CastleKingside"
	case CastleQueenside:
		return "CastleQueenside"
	case EnPassant:
		return "EnPassant"
	case Promotion:
		return "Promotion"
	default:
		return "Normal"
	}
}

// IsCastle returns true for either castling type.
func (t MoveType) IsCastle() bool {
	return t == CastleKingside || t == CastleQueenside
}

// Move is a single move as played or proposed on a Board.
// For castling, From and To are the king's squares.
type Move struct {
	From, To Position
	// Piece is the mover as it stood on From before the move.
	Piece Piece
	// Captured is the piece taken, zero when the move captures nothing.
	// For en passant it is the pawn beside the mover, not the piece on To.
	Captured  Piece
	Type      MoveType
	PromoteTo Kind

	// Set by the board once the move has been played.
	Check     bool
	Checkmate bool
	SAN       string
}

// Capture returns the captured piece, if any.
func (m Move) Capture() (Piece, bool) {
	return m.Captured, !m.Captured.IsZero()
}

// IsCapture returns true if this move captures a piece.
func (m Move) IsCapture() bool {
	return !m.Captured.IsZero()
}

// LongAlgebraic returns the UCI form of the move (e.g., "e2e4", "e7e8q").
func (m Move) LongAlgebraic() string {
	s := m.From.String() + m.To.String()
	if m.Type == Promotion {
		s += string(m.PromoteTo.Letter() + ('a' - 'A'))
	}
	return s
}

// String returns SAN for played moves and long algebraic otherwise.
func (m Move) String() string {
	if m.SAN != "" {
		return m.SAN
	}
	return m.LongAlgebraic()
}

// ParseMove resolves a UCI move string (e.g., "e2e4", "e7e8q") against b.
// The result carries the piece, capture and move type as found on b.
// It is not checked for legality; see Board.IsValidMove.
func (b *Board) ParseMove(s string) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return Move{}, fmt.Errorf("%w: %q", ErrInvalidMove, s)
	}
	from, err := ParsePosition(s[0:2])
	if err != nil {
		return Move{}, fmt.Errorf("%w %q: %w", ErrInvalidMove, s, err)
	}
	to, err := ParsePosition(s[2:4])
	if err != nil {
		return Move{}, fmt.Errorf("%w %q: %w", ErrInvalidMove, s, err)
	}

	promo := NoKind
	if len(s) == 5 {
		k, ok := kindFromLetter(s[4])
		if !ok || !canPromoteTo(k) {
			return Move{}, fmt.Errorf("%w %q: bad promotion piece", ErrInvalidMove, s)
		}
		promo = k
	}

	m, ok := b.MoveFor(from, to, promo)
	if !ok {
		return Move{}, fmt.Errorf("%w %q: no piece on %s", ErrInvalidMove, s, from)
	}
	if promo != NoKind && m.Type != Promotion {
		return Move{}, fmt.Errorf("%w %q: not a promotion", ErrInvalidMove, s)
	}
	return m, nil
}

// MoveFor builds the move of the piece on from to to, classifying it as
// castling, en passant or promotion from the board. promo selects the
// promotion piece and defaults to Queen. ok is false if from is empty.
func (b *Board) MoveFor(from, to Position, promo Kind) (Move, bool) {
	pc := b.at(from)
	if pc.IsZero() {
		return Move{}, false
	}
	return b.buildMove(pc, to, promo), true
}

func (b *Board) buildMove(pc Piece, to Position, promo Kind) Move {
	m := Move{From: pc.Pos, To: to, Piece: pc, Captured: b.at(to), Type: Normal}
	switch pc.Kind {
	case King:
		if d := to.col - pc.Pos.col; to.row == pc.Pos.row && (d == 2 || d == -2) {
			m.Type = CastleKingside
			if d < 0 {
				m.Type = CastleQueenside
			}
		}
	case Pawn:
		switch {
		case int(to.row) == pc.Color.promotionRow():
			if promo == NoKind {
				promo = Queen
			}
			m.Type = Promotion
			m.PromoteTo = promo
		case to.col != pc.Pos.col && m.Captured.IsZero() && b.epSet && to == b.enPassant:
			m.Type = EnPassant
			m.Captured = b.at(Position{row: pc.Pos.row, col: to.col})
		}
	}
	return m
}

// normalize refreshes the piece and capture fields of m from the grid and
// strips any annotation, keeping the caller's type and promotion choice.
func (b *Board) normalize(m Move) Move {
	m.Piece = b.at(m.From)
	switch {
	case m.Type.IsCastle():
		m.Captured = Piece{}
	case m.Type == EnPassant:
		m.Captured = b.at(Position{row: m.From.row, col: m.To.col})
	default:
		m.Captured = b.at(m.To)
	}
	if m.Type != Promotion {
		m.PromoteTo = NoKind
	}
	m.Check, m.Checkmate, m.SAN = false, false, ""
	return m
}
