package board

// Outcome is the state of the game as seen by the side to move.
type Outcome uint8

const (
	Ongoing Outcome = iota
	// CheckmateWhite means White delivered mate.
	CheckmateWhite
	// CheckmateBlack means Black delivered mate.
	CheckmateBlack
	Stalemate
	Draw
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case CheckmateWhite:
		return "CheckmateWhite"
	case CheckmateBlack:
		return "CheckmateBlack"
	case Stalemate:
		return "Stalemate"
	case Draw:
		return "Draw"
	default:
		return "Ongoing"
	}
}

// IsOver returns true for every outcome except Ongoing.
func (o Outcome) IsOver() bool {
	return o != Ongoing
}

// Winner returns the side that delivered mate.
func (o Outcome) Winner() (Color, bool) {
	switch o {
	case CheckmateWhite:
		return White, true
	case CheckmateBlack:
		return Black, true
	}
	return White, false
}

// DrawReason says why Status reported Draw.
type DrawReason uint8

const (
	NoDraw DrawReason = iota
	FiftyMoveRule
	InsufficientMaterial
)

// String returns the draw reason name.
func (r DrawReason) String() string {
	switch r {
	case FiftyMoveRule:
		return "FiftyMoveRule"
	case InsufficientMaterial:
		return "InsufficientMaterial"
	default:
		return "None"
	}
}

// IsCheckmate reports whether c is in check with no legal move.
func (b *Board) IsCheckmate(c Color) bool {
	return b.IsInCheck(c) && !b.HasAnyLegalMove(c)
}

// IsStalemate reports whether c is not in check but has no legal move.
func (b *Board) IsStalemate(c Color) bool {
	return !b.IsInCheck(c) && !b.HasAnyLegalMove(c)
}

// Status evaluates the side to move. Checkmate is reported before
// stalemate, and both before the draw rules.
func (b *Board) Status() Outcome {
	side := b.turn
	if !b.HasAnyLegalMove(side) {
		if !b.IsInCheck(side) {
			return Stalemate
		}
		if side == White {
			return CheckmateBlack
		}
		return CheckmateWhite
	}
	if b.DrawReason() != NoDraw {
		return Draw
	}
	return Ongoing
}

// DrawReason returns the rule that makes the position a draw, ignoring
// checkmate and stalemate.
func (b *Board) DrawReason() DrawReason {
	if b.halfmove >= 50 {
		return FiftyMoveRule
	}
	if b.insufficientMaterial() {
		return InsufficientMaterial
	}
	return NoDraw
}

// insufficientMaterial is true for bare kings, or a king and one bishop or
// knight against a bare king. Bishop square colors are not considered.
func (b *Board) insufficientMaterial() bool {
	var count [2]int
	for r := range b.grid {
		for _, pc := range b.grid[r] {
			switch pc.Kind {
			case NoKind:
				continue
			case Pawn, Rook, Queen:
				return false
			}
			count[pc.Color]++
		}
	}
	w, k := count[White], count[Black]
	return (w == 1 && k == 1) || (w == 2 && k == 1) || (w == 1 && k == 2)
}
