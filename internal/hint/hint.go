// Package hint asks external move suggesters for the best move of a game
// and admits an answer only if it is legal on the board.
package hint

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"

	"github.com/hailam/chessrules/internal/board"
)

var (
	// ErrNoSuggestion is returned when no suggester produced a usable move.
	ErrNoSuggestion = errors.New("no suggestion available")
	// ErrNoMove is returned when a suggester reports that the side to move
	// has no move at all.
	ErrNoMove = errors.New("position has no move")
)

// Suggester proposes a move for a FEN position in long algebraic notation.
// An empty move with a nil error means the position has no legal move.
type Suggester interface {
	Suggest(ctx context.Context, fen string) (string, error)
}

// Named attaches a name to a Suggester for logging.
type Named struct {
	Name string
	Suggester
}

// Service consults its suggesters in order.
type Service struct {
	suggesters []Named
	logger     *log.Logger
}

// New creates a Service. Suggesters are tried in the order given.
func New(logger *log.Logger, suggesters ...Named) *Service {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Service{suggesters: suggesters, logger: logger}
}

// Enabled reports whether any suggester is configured.
func (s *Service) Enabled() bool {
	return len(s.suggesters) > 0
}

// Hint returns a legal move for the side to move on b, annotated with SAN.
// b is cloned first and never modified.
func (s *Service) Hint(ctx context.Context, b *board.Board) (board.Move, error) {
	if !s.Enabled() {
		return board.Move{}, ErrNoSuggestion
	}

	snapshot := b.Clone()
	fen := snapshot.FEN()

	for _, sg := range s.suggesters {
		text, err := sg.Suggest(ctx, fen)
		if err != nil {
			if ctx.Err() != nil {
				return board.Move{}, ctx.Err()
			}
			s.logger.Debug("suggester declined", "suggester", sg.Name, "fen", fen, "err", err)
			continue
		}
		if text == "" {
			return board.Move{}, ErrNoMove
		}

		m, err := snapshot.ParseMove(text)
		if err != nil || !snapshot.IsValidMove(m) {
			s.logger.Warn("illegal suggestion", "suggester", sg.Name, "fen", fen, "move", text)
			continue
		}
		m.SAN = snapshot.SAN(m)
		s.logger.Info("hint", "suggester", sg.Name, "move", text, "san", m.SAN)
		return m, nil
	}
	return board.Move{}, ErrNoSuggestion
}
