package board

// CastlingRights is the set of castling options still available.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling field, "-" when empty.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	s := ""
	if cr&WhiteKingSideCastle != 0 {
		s += "K"
	}
	if cr&WhiteQueenSideCastle != 0 {
		s += "Q"
	}
	if cr&BlackKingSideCastle != 0 {
		s += "k"
	}
	if cr&BlackQueenSideCastle != 0 {
		s += "q"
	}
	return s
}

// CanCastle returns true if the right for c on the given side is held.
func (cr CastlingRights) CanCastle(c Color, kingSide bool) bool {
	t := CastleQueenside
	if kingSide {
		t = CastleKingside
	}
	return cr&castleRight(c, t) != 0
}

func castleRight(c Color, t MoveType) CastlingRights {
	switch {
	case c == White && t == CastleKingside:
		return WhiteKingSideCastle
	case c == White && t == CastleQueenside:
		return WhiteQueenSideCastle
	case c == Black && t == CastleKingside:
		return BlackKingSideCastle
	case c == Black && t == CastleQueenside:
		return BlackQueenSideCastle
	}
	return NoCastling
}

func colorRights(c Color) CastlingRights {
	return castleRight(c, CastleKingside) | castleRight(c, CastleQueenside)
}

// rookRight returns the right tied to a rook of color c standing on p,
// or NoCastling if p is not one of that side's corners.
func rookRight(c Color, p Position) CastlingRights {
	if int(p.row) != c.homeRow() {
		return NoCastling
	}
	switch p.col {
	case 7:
		return castleRight(c, CastleKingside)
	case 0:
		return castleRight(c, CastleQueenside)
	}
	return NoCastling
}

// castle describes the squares involved in one castling move.
type castle struct {
	kingFrom, kingTo Position
	rookFrom, rookTo Position
	// between must be empty; kingPath must not be attacked.
	between  []Position
	kingPath []Position
}

func castleSquares(c Color, t MoveType) castle {
	row := int8(c.homeRow())
	sq := func(col int8) Position { return Position{row: row, col: col} }
	if t == CastleKingside {
		return castle{
			kingFrom: sq(4), kingTo: sq(6),
			rookFrom: sq(7), rookTo: sq(5),
			between:  []Position{sq(5), sq(6)},
			kingPath: []Position{sq(4), sq(5), sq(6)},
		}
	}
	return castle{
		kingFrom: sq(4), kingTo: sq(2),
		rookFrom: sq(0), rookTo: sq(3),
		between:  []Position{sq(1), sq(2), sq(3)},
		kingPath: []Position{sq(4), sq(3), sq(2)},
	}
}

// castlePathClear checks the non-attack conditions for castling: the right
// is held, king and rook are home, and nothing stands between them.
func (b *Board) castlePathClear(king Piece, t MoveType) bool {
	if b.castling&castleRight(king.Color, t) == 0 {
		return false
	}
	g := castleSquares(king.Color, t)
	if king.Pos != g.kingFrom {
		return false
	}
	rook := b.at(g.rookFrom)
	if rook.Kind != Rook || rook.Color != king.Color {
		return false
	}
	for _, p := range g.between {
		if !b.at(p).IsZero() {
			return false
		}
	}
	return true
}

// castleAllowed also requires that no square on the king's path, including
// its start, is attacked.
func (b *Board) castleAllowed(king Piece, t MoveType) bool {
	if !b.castlePathClear(king, t) {
		return false
	}
	for _, p := range castleSquares(king.Color, t).kingPath {
		if b.isAttacked(p, king.Color.Other()) {
			return false
		}
	}
	return true
}
