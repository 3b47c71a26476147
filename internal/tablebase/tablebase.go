// Package tablebase looks up endgame positions in an online tablebase and
// turns the result into a move suggestion.
package tablebase

import (
	"context"
	"errors"
	"fmt"

	"github.com/hailam/chessrules/internal/board"
)

// MaxPieces is the largest piece count, kings included, that the tablebase covers.
const MaxPieces = 7

// ErrTooManyPieces is returned for positions outside the tablebase.
var ErrTooManyPieces = errors.New("too many pieces for tablebase")

// WDL represents a Win/Draw/Loss result from the side to move's point of view.
type WDL int

const (
	WDLLoss        WDL = -2
	WDLBlessedLoss WDL = -1 // Loss that the fifty-move rule turns into a draw
	WDLDraw        WDL = 0
	WDLCursedWin   WDL = 1 // Win that the fifty-move rule turns into a draw
	WDLWin         WDL = 2
)

// String returns the tablebase category name.
func (w WDL) String() string {
	switch w {
	case WDLLoss:
		return "loss"
	case WDLBlessedLoss:
		return "blessed-loss"
	case WDLCursedWin:
		return "cursed-win"
	case WDLWin:
		return "win"
	default:
		return "draw"
	}
}

// MoveResult is the evaluation of one legal move.
type MoveResult struct {
	UCI string
	WDL WDL
	DTZ int
}

// Result is the outcome of a tablebase probe. Moves are ordered best first.
type Result struct {
	WDL   WDL
	DTZ   int
	Moves []MoveResult
}

// Prober looks up a position given as FEN.
type Prober interface {
	Probe(ctx context.Context, fen string) (Result, error)
}

// Suggest returns the best move of r in long algebraic notation, or "" when
// the position has no legal move.
func (r Result) Suggest() string {
	if len(r.Moves) == 0 {
		return ""
	}
	return r.Moves[0].UCI
}

// CountPieces returns the number of pieces in fen.
func CountPieces(fen string) (int, error) {
	b, err := board.ParseFEN(fen)
	if err != nil {
		return 0, err
	}
	return len(b.Pieces(board.White)) + len(b.Pieces(board.Black)), nil
}

// checkPieces returns ErrTooManyPieces when fen is outside the tablebase.
func checkPieces(fen string) error {
	n, err := CountPieces(fen)
	if err != nil {
		return err
	}
	if n > MaxPieces {
		return fmt.Errorf("%w: %d", ErrTooManyPieces, n)
	}
	return nil
}

func categoryToWDL(category string) WDL {
	switch category {
	case "win":
		return WDLWin
	case "cursed-win", "maybe-win":
		return WDLCursedWin
	case "blessed-loss", "maybe-loss":
		return WDLBlessedLoss
	case "loss":
		return WDLLoss
	default:
		return WDLDraw
	}
}
