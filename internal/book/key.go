package book

import "github.com/hailam/chessrules/internal/board"

// Offsets into random64.
const (
	castleOffset    = 768
	enPassantOffset = 772
	turnOffset      = 780
)

// pieceKind is the Polyglot piece index: black pawn 0, white pawn 1,
// black knight 2 and so on up to white king 11.
func pieceKind(pc board.Piece) int {
	k := 2 * (int(pc.Kind) - int(board.Pawn))
	if pc.Color == board.White {
		k++
	}
	return k
}

// square maps a position to 0..63 with a1 = 0 and h8 = 63.
func square(p board.Position) int {
	return (7-p.Row())*8 + p.Col()
}

// Key returns the Polyglot key of the position on b: placement, castling
// rights, the en passant file when a pawn of the side to move can take
// there, and the side to move.
func Key(b *board.Board) uint64 {
	var key uint64
	for _, c := range []board.Color{board.White, board.Black} {
		for _, pc := range b.Pieces(c) {
			key ^= random64[64*pieceKind(pc)+square(pc.Pos)]
		}
	}

	cr := b.Castling()
	for i, right := range []board.CastlingRights{
		board.WhiteKingSideCastle, board.WhiteQueenSideCastle,
		board.BlackKingSideCastle, board.BlackQueenSideCastle,
	} {
		if cr&right != 0 {
			key ^= random64[castleOffset+i]
		}
	}

	if ep, ok := b.EnPassantTarget(); ok && epCapturable(b, ep) {
		key ^= random64[enPassantOffset+ep.Col()]
	}

	if b.Turn() == board.White {
		key ^= random64[turnOffset]
	}
	return key
}

// epCapturable reports whether a pawn of the side to move stands beside
// the pawn that just passed over ep.
func epCapturable(b *board.Board, ep board.Position) bool {
	turn := b.Turn()
	row := ep.Row() + 1
	if turn == board.Black {
		row = ep.Row() - 1
	}
	for _, dc := range []int{-1, 1} {
		p, err := board.NewPosition(row, ep.Col()+dc)
		if err != nil {
			continue
		}
		if pc, ok := b.At(p); ok && pc.Kind == board.Pawn && pc.Color == turn {
			return true
		}
	}
	return false
}
