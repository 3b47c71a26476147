package board

import "slices"

// ValidMoves returns the legal destinations of the piece on p: its
// pseudo-legal moves minus any that would leave its own king attacked.
// Castling destinations also require an unattacked king path.
func (b *Board) ValidMoves(p Position) []Position {
	pc := b.at(p)
	if pc.IsZero() {
		return nil
	}
	return b.legalTargets(pc, false)
}

// legalTargets filters the pseudo-legal moves of pc. With first set it
// stops after one legal destination.
func (b *Board) legalTargets(pc Piece, first bool) []Position {
	var out []Position
	for _, to := range b.possibleMoves(pc) {
		m := b.buildMove(pc, to, Queen)
		if m.Type.IsCastle() && !b.castleAllowed(pc, m.Type) {
			continue
		}
		if b.leavesKingSafe(m) {
			out = append(out, to)
			if first {
				break
			}
		}
	}
	return out
}

// LegalMoves returns every legal move for the side to move. A pawn reaching
// the last rank yields one move per promotion piece.
func (b *Board) LegalMoves() []Move {
	var out []Move
	for _, pc := range b.Pieces(b.turn) {
		for _, to := range b.legalTargets(pc, false) {
			m := b.buildMove(pc, to, Queen)
			if m.Type != Promotion {
				out = append(out, m)
				continue
			}
			for _, k := range [4]Kind{Queen, Rook, Bishop, Knight} {
				m.PromoteTo = k
				out = append(out, m)
			}
		}
	}
	return out
}

// HasAnyLegalMove reports whether color c has at least one legal move.
func (b *Board) HasAnyLegalMove(c Color) bool {
	for _, pc := range b.Pieces(c) {
		if len(b.legalTargets(pc, true)) > 0 {
			return true
		}
	}
	return false
}

// IsInCheck reports whether c's king is attacked. A side without a king is
// never in check.
func (b *Board) IsInCheck(c Color) bool {
	k, ok := b.King(c)
	return ok && b.isAttacked(k, c.Other())
}

// IsValidMove reports whether m is legal on b. The board's own piece on
// m.From must match m.Piece, and m.Type must agree with the geometry of the
// move. Captured and annotation fields are ignored.
func (b *Board) IsValidMove(m Move) bool {
	if m.Piece.IsZero() || m.From == m.To {
		return false
	}
	pc := b.at(m.From)
	if pc.Kind != m.Piece.Kind || pc.Color != m.Piece.Color {
		return false
	}
	if pc.Color != b.turn {
		return false
	}
	if dst := b.at(m.To); !dst.IsZero() && dst.Color == pc.Color {
		return false
	}
	if !slices.Contains(b.possibleMoves(pc), m.To) {
		return false
	}

	want := b.buildMove(pc, m.To, m.PromoteTo)
	if want.Type != m.Type {
		return false
	}
	switch m.Type {
	case CastleKingside, CastleQueenside:
		if !b.castleAllowed(pc, m.Type) {
			return false
		}
	case Promotion:
		if !canPromoteTo(m.PromoteTo) {
			return false
		}
	case EnPassant:
		if !b.enPassantFor(pc, m.To) {
			return false
		}
	}
	return b.leavesKingSafe(want)
}

// MakeMove validates m and, if legal, plays it. It returns false and leaves
// the board untouched otherwise.
func (b *Board) MakeMove(m Move) bool {
	if !b.IsValidMove(m) {
		return false
	}
	b.ApplyMove(m)
	return true
}

// ApplyMove plays m without checking legality. Piece and capture fields are
// refreshed from the grid; Type and PromoteTo are trusted. The recorded move
// is annotated with check, checkmate and SAN.
func (b *Board) ApplyMove(m Move) {
	m = b.normalize(m)
	m.SAN = b.sanBody(m)
	b.apply(m)

	opp := m.Piece.Color.Other()
	last := &b.history[len(b.history)-1]
	last.Check = b.IsInCheck(opp)
	last.Checkmate = last.Check && !b.HasAnyLegalMove(opp)
	switch {
	case last.Checkmate:
		last.SAN += "#"
	case last.Check:
		last.SAN += "+"
	}
}

// leavesKingSafe plays m on a scratch copy and reports whether the mover's
// king is unattacked afterwards.
func (b *Board) leavesKingSafe(m Move) bool {
	sim := *b
	sim.history = nil
	sim.captured = [2][]Piece{}
	sim.apply(m)
	return !sim.IsInCheck(m.Piece.Color)
}

// apply performs the state transition for a normalized move.
func (b *Board) apply(m Move) {
	mover := m.Piece.Color
	if m.IsCapture() {
		b.captured[mover] = append(b.captured[mover], m.Captured)
	}
	b.history = append(b.history, m)

	if m.IsCapture() || m.Piece.Kind == Pawn {
		b.halfmove = 0
	} else {
		b.halfmove++
	}

	switch m.Type {
	case CastleKingside, CastleQueenside:
		g := castleSquares(mover, m.Type)
		b.relocate(g.kingFrom, g.kingTo)
		b.relocate(g.rookFrom, g.rookTo)
	case EnPassant:
		b.relocate(m.From, m.To)
		b.clear(Position{row: m.From.row, col: m.To.col})
	case Promotion:
		b.clear(m.From)
		b.place(Piece{Kind: m.PromoteTo, Color: mover, Moved: true}, m.To)
	default:
		b.relocate(m.From, m.To)
	}

	switch m.Piece.Kind {
	case King:
		b.castling &^= colorRights(mover)
	case Rook:
		b.castling &^= rookRight(mover, m.From)
	}
	if m.Captured.Kind == Rook {
		b.castling &^= rookRight(m.Captured.Color, m.Captured.Pos)
	}

	b.enPassant, b.epSet = Position{}, false
	if m.Piece.Kind == Pawn && (m.To.row-m.From.row == 2 || m.From.row-m.To.row == 2) {
		b.enPassant = Position{row: (m.From.row + m.To.row) / 2, col: m.From.col}
		b.epSet = true
	}

	b.turn = b.turn.Other()
	if mover == Black {
		b.fullmove++
	}
}
