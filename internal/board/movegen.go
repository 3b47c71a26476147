package board

import "slices"

// PossibleMoves returns the pseudo-legal destinations of the piece on p:
// squares it could reach by its movement rules, ignoring whether its own
// king would be left in check. Castling destinations are included when the
// right is held and the path is empty. An empty square yields nil.
func (b *Board) PossibleMoves(p Position) []Position {
	pc := b.at(p)
	if pc.IsZero() {
		return nil
	}
	return b.possibleMoves(pc)
}

// AttackMoves returns the squares the piece on p attacks. Pawns attack both
// forward diagonals whether or not anything stands there; kings never
// include castling.
func (b *Board) AttackMoves(p Position) []Position {
	pc := b.at(p)
	if pc.IsZero() {
		return nil
	}
	return b.attackMoves(pc)
}

func (b *Board) possibleMoves(pc Piece) []Position {
	switch pc.Kind {
	case Pawn:
		return b.pawnMoves(pc)
	case King:
		moves := b.reach(pc)
		for _, t := range [2]MoveType{CastleKingside, CastleQueenside} {
			if b.castlePathClear(pc, t) {
				moves = append(moves, castleSquares(pc.Color, t).kingTo)
			}
		}
		return moves
	}
	return b.reach(pc)
}

func (b *Board) attackMoves(pc Piece) []Position {
	if pc.Kind == Pawn {
		return pawnAttacks(pc)
	}
	return b.reach(pc)
}

// reach walks the direction table of a non-pawn piece. Each ray stops at
// the first occupied square, which is included when it holds an enemy.
func (b *Board) reach(pc Piece) []Position {
	vectors, slides := pc.Kind.movement()
	var out []Position
	for _, v := range vectors {
		cur := pc.Pos
		for {
			next, ok := cur.Offset(v.dr, v.dc)
			if !ok {
				break
			}
			occ := b.at(next)
			if !occ.IsZero() {
				if occ.Color != pc.Color {
					out = append(out, next)
				}
				break
			}
			out = append(out, next)
			if !slides {
				break
			}
			cur = next
		}
	}
	return out
}

func (b *Board) pawnMoves(pc Piece) []Position {
	var out []Position
	dir := pc.Color.forward()
	if one, ok := pc.Pos.Offset(dir, 0); ok && b.at(one).IsZero() {
		out = append(out, one)
		if int(pc.Pos.row) == pc.Color.pawnRow() {
			if two, ok := pc.Pos.Offset(2*dir, 0); ok && b.at(two).IsZero() {
				out = append(out, two)
			}
		}
	}
	for _, to := range pawnAttacks(pc) {
		occ := b.at(to)
		if (!occ.IsZero() && occ.Color != pc.Color) || b.enPassantFor(pc, to) {
			out = append(out, to)
		}
	}
	return out
}

func pawnAttacks(pc Piece) []Position {
	out := make([]Position, 0, 2)
	for _, dc := range [2]int{-1, 1} {
		if to, ok := pc.Pos.Offset(pc.Color.forward(), dc); ok {
			out = append(out, to)
		}
	}
	return out
}

// enPassantFor reports whether pawn pc may capture en passant onto to.
// Only the side to move may use the target, and the pawn that made the
// double step must still stand beside pc.
func (b *Board) enPassantFor(pc Piece, to Position) bool {
	if !b.epSet || to != b.enPassant || pc.Color != b.turn {
		return false
	}
	victim := b.at(Position{row: pc.Pos.row, col: to.col})
	return victim.Kind == Pawn && victim.Color != pc.Color
}

// isAttacked reports whether any piece of color by attacks sq.
func (b *Board) isAttacked(sq Position, by Color) bool {
	for r := range b.grid {
		for _, pc := range b.grid[r] {
			if pc.IsZero() || pc.Color != by {
				continue
			}
			if slices.Contains(b.attackMoves(pc), sq) {
				return true
			}
		}
	}
	return false
}
