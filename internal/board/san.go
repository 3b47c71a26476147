package board

import (
	"fmt"
	"strings"
)

// SAN returns the Standard Algebraic Notation of m on b, including the
// check or mate suffix. m is not validated.
func (b *Board) SAN(m Move) string {
	c := b.Clone()
	c.ApplyMove(m)
	last, _ := c.LastMove()
	return last.SAN
}

// sanBody renders m without the check suffix. It must be called before m
// is applied.
func (b *Board) sanBody(m Move) string {
	switch m.Type {
	case CastleKingside:
		return "O-O"
	case CastleQueenside:
		return "O-O-O"
	}

	var sb strings.Builder
	pt := m.Piece.Kind

	// Piece letter and disambiguation (not for pawns)
	if pt != Pawn {
		sb.WriteByte(pt.Letter())
		sb.WriteString(b.disambiguation(m))
	}

	// Capture marker
	if m.IsCapture() {
		if pt == Pawn {
			sb.WriteByte(m.From.File())
		}
		sb.WriteByte('x')
	}

	sb.WriteString(m.To.String())

	if m.Type == Promotion {
		sb.WriteByte('=')
		sb.WriteByte(m.PromoteTo.Letter())
	}
	return sb.String()
}

// disambiguation returns the origin file, rank or square needed to tell m
// apart from other pieces of the same kind that can reach m.To.
func (b *Board) disambiguation(m Move) string {
	var rivals []Position
	for _, pc := range b.Pieces(m.Piece.Color) {
		if pc.Kind != m.Piece.Kind || pc.Pos == m.From {
			continue
		}
		for _, to := range b.legalTargets(pc, false) {
			if to == m.To {
				rivals = append(rivals, pc.Pos)
				break
			}
		}
	}

	if len(rivals) == 0 {
		return ""
	}

	sameFile, sameRank := false, false
	for _, p := range rivals {
		if p.col == m.From.col {
			sameFile = true
		}
		if p.row == m.From.row {
			sameRank = true
		}
	}

	if !sameFile {
		return string(m.From.File())
	}
	if !sameRank {
		return string(m.From.Rank())
	}
	return m.From.String()
}

// ParseSAN resolves a SAN string (e.g., "Nf3", "exd5", "e8=Q+", "O-O")
// to the matching legal move for the side to move.
func (b *Board) ParseSAN(s string) (Move, error) {
	orig := s
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, "+#!?")

	switch s {
	case "O-O", "0-0":
		return b.matchCastle(CastleKingside, orig)
	case "O-O-O", "0-0-0":
		return b.matchCastle(CastleQueenside, orig)
	}

	// Promotion suffix
	promo := NoKind
	if idx := strings.IndexByte(s, '='); idx >= 0 {
		if idx+1 >= len(s) {
			return Move{}, fmt.Errorf("%w: %q", ErrInvalidMove, orig)
		}
		k, ok := kindFromLetter(s[idx+1])
		if !ok || !canPromoteTo(k) {
			return Move{}, fmt.Errorf("%w: %q", ErrInvalidMove, orig)
		}
		promo = k
		s = s[:idx]
	}

	isCapture := strings.Contains(s, "x")
	s = strings.ReplaceAll(s, "x", "")

	pt := Pawn
	if len(s) > 0 && s[0] >= 'A' && s[0] <= 'Z' {
		k, ok := kindFromLetter(s[0])
		if !ok {
			return Move{}, fmt.Errorf("%w: %q", ErrInvalidMove, orig)
		}
		pt = k
		s = s[1:]
	}

	if len(s) < 2 {
		return Move{}, fmt.Errorf("%w: %q", ErrInvalidMove, orig)
	}
	dest, err := ParsePosition(s[len(s)-2:])
	if err != nil {
		return Move{}, fmt.Errorf("%w %q: %w", ErrInvalidMove, orig, err)
	}
	s = s[:len(s)-2]

	fileHint, rankHint := -1, -1
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= 'a' && c <= 'h':
			fileHint = int(c - 'a')
		case c >= '1' && c <= '8':
			rankHint = int('8' - c)
		default:
			return Move{}, fmt.Errorf("%w: %q", ErrInvalidMove, orig)
		}
	}

	for _, m := range b.LegalMoves() {
		if m.To != dest || m.Piece.Kind != pt || m.Type.IsCastle() {
			continue
		}
		if fileHint >= 0 && m.From.Col() != fileHint {
			continue
		}
		if rankHint >= 0 && m.From.Row() != rankHint {
			continue
		}
		if isCapture && !m.IsCapture() {
			continue
		}
		if promo != NoKind && (m.Type != Promotion || m.PromoteTo != promo) {
			continue
		}
		return m, nil
	}

	return Move{}, fmt.Errorf("%w: no legal move matches %q", ErrInvalidMove, orig)
}

func (b *Board) matchCastle(t MoveType, orig string) (Move, error) {
	for _, m := range b.LegalMoves() {
		if m.Type == t {
			return m, nil
		}
	}
	return Move{}, fmt.Errorf("%w: cannot castle with %q", ErrInvalidMove, orig)
}
