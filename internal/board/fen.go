package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses a six-field FEN string into a Board with empty history.
// Castling rights and counters are taken as given; kings are not required.
// All errors wrap ErrInvalidFEN.
func ParseFEN(fen string) (*Board, error) {
	parts := strings.Fields(fen)
	if len(parts) != 6 {
		return nil, fenError("need 6 fields, got %d", len(parts))
	}

	b := &Board{fullmove: 1}

	// Piece placement (field 0)
	if err := parsePiecePlacement(b, parts[0]); err != nil {
		return nil, err
	}

	// Side to move (field 1)
	switch parts[1] {
	case "w":
		b.turn = White
	case "b":
		b.turn = Black
	default:
		return nil, fenError("invalid side to move: %s", parts[1])
	}

	// Castling rights (field 2)
	cr, err := parseCastlingRights(parts[2])
	if err != nil {
		return nil, err
	}
	b.castling = cr

	// En passant square (field 3)
	if parts[3] != "-" {
		sq, err := ParsePosition(parts[3])
		if err != nil {
			return nil, fenError("invalid en passant square: %s", parts[3])
		}
		// The target sits behind a pawn of the side that just moved.
		wantRow := int8(5)
		if b.turn == White {
			wantRow = 2
		}
		if sq.row != wantRow {
			return nil, fenError("en passant square %s impossible with %s to move", sq, b.turn)
		}
		b.enPassant, b.epSet = sq, true
	}

	// Half-move clock (field 4)
	if b.halfmove, err = parseCounter(parts[4], 0); err != nil {
		return nil, fenError("invalid half-move clock: %s", parts[4])
	}

	// Full-move number (field 5)
	if b.fullmove, err = parseCounter(parts[5], 1); err != nil {
		return nil, fenError("invalid full-move number: %s", parts[5])
	}

	return b, nil
}

func fenError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidFEN, fmt.Sprintf(format, args...))
}

// parsePiecePlacement fills the grid from the first FEN field.
func parsePiecePlacement(b *Board, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fenError("need 8 ranks, got %d", len(ranks))
	}

	for row, rankStr := range ranks {
		col := 0
		prevDigit := false
		for i := 0; i < len(rankStr); i++ {
			c := rankStr[i]
			if c >= '1' && c <= '8' {
				if prevDigit {
					return fenError("consecutive digits in rank %d", 8-row)
				}
				col += int(c - '0')
				prevDigit = true
				if col > 8 {
					return fenError("too many squares in rank %d", 8-row)
				}
				continue
			}

			pc, ok := pieceFromLetter(c)
			if !ok {
				return fenError("invalid piece character: %c", c)
			}
			if col > 7 {
				return fenError("too many squares in rank %d", 8-row)
			}
			b.place(pc, Position{row: int8(row), col: int8(col)})
			col++
			prevDigit = false
		}

		if col != 8 {
			return fenError("invalid number of squares in rank %d: got %d", 8-row, col)
		}
	}

	return nil
}

// parseCastlingRights accepts "-" or a subset of "KQkq" in that order.
func parseCastlingRights(castling string) (CastlingRights, error) {
	if castling == "-" {
		return NoCastling, nil
	}

	const order = "KQkq"
	rights := [4]CastlingRights{WhiteKingSideCastle, WhiteQueenSideCastle, BlackKingSideCastle, BlackQueenSideCastle}
	var cr CastlingRights
	next := 0
	for i := 0; i < len(castling); i++ {
		idx := strings.IndexByte(order[next:], castling[i])
		if idx < 0 {
			return NoCastling, fenError("invalid castling field: %s", castling)
		}
		cr |= rights[next+idx]
		next += idx + 1
	}
	return cr, nil
}

// parseCounter parses a plain decimal without sign or leading zeros.
func parseCounter(s string, min int) (int, error) {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return 0, strconv.ErrSyntax
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < min {
		return 0, strconv.ErrRange
	}
	return n, nil
}

// FEN returns the FEN representation of the board.
func (b *Board) FEN() string {
	var sb strings.Builder

	// Piece placement
	for row := range b.grid {
		empty := 0
		for _, pc := range b.grid[row] {
			if pc.IsZero() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteByte(pc.Letter())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if row < 7 {
			sb.WriteByte('/')
		}
	}

	// Side to move
	sb.WriteByte(' ')
	if b.turn == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	// Castling rights
	sb.WriteByte(' ')
	sb.WriteString(b.castling.String())

	// En passant
	sb.WriteByte(' ')
	if b.epSet {
		sb.WriteString(b.enPassant.String())
	} else {
		sb.WriteByte('-')
	}

	// Half-move clock and full-move number
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(b.halfmove))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(b.fullmove))

	return sb.String()
}
