package hint

import (
	"context"
	"errors"
	"fmt"

	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/uci"
)

// ErrNoEvaluator is returned by Analyze when no configured suggester can
// report a search.
var ErrNoEvaluator = errors.New("no evaluating suggester configured")

// Evaluator is a suggester that also reports the search behind its answer.
type Evaluator interface {
	Search(ctx context.Context, fen string) (uci.Result, error)
}

// Analysis compares a candidate move with an evaluator's best move.
// Scores are from the point of view of the side to move.
type Analysis struct {
	Played board.Move
	Best   board.Move
	IsBest bool
	// ScoreCP is in centipawns. Mate is moves to mate, negative when the
	// side to move is mated, zero when no mate was found.
	ScoreCP int
	Mate    int
	Depth   int
	// PV is the principal variation in long algebraic notation.
	PV []string
}

// evaluator returns the first suggester that can report a search.
func (s *Service) evaluator() (Named, Evaluator, bool) {
	for _, sg := range s.suggesters {
		if ev, ok := sg.Suggester.(Evaluator); ok {
			return sg, ev, true
		}
	}
	return Named{}, nil, false
}

// Analyze asks the evaluator for the best move on b and compares it with
// played, which must be legal on b. b is cloned first and never modified.
func (s *Service) Analyze(ctx context.Context, b *board.Board, played board.Move) (Analysis, error) {
	snapshot := b.Clone()
	if !snapshot.IsValidMove(played) {
		return Analysis{}, fmt.Errorf("%w: %s", board.ErrInvalidMove, played.LongAlgebraic())
	}
	played.SAN = snapshot.SAN(played)

	sg, ev, ok := s.evaluator()
	if !ok {
		return Analysis{}, ErrNoEvaluator
	}

	fen := snapshot.FEN()
	r, err := ev.Search(ctx, fen)
	if err != nil {
		return Analysis{}, err
	}
	if r.BestMove == "" {
		return Analysis{}, ErrNoMove
	}

	best, err := snapshot.ParseMove(r.BestMove)
	if err != nil || !snapshot.IsValidMove(best) {
		s.logger.Warn("illegal analysis move", "suggester", sg.Name, "fen", fen, "move", r.BestMove)
		return Analysis{}, ErrNoSuggestion
	}
	best.SAN = snapshot.SAN(best)

	a := Analysis{
		Played:  played,
		Best:    best,
		IsBest:  best.LongAlgebraic() == played.LongAlgebraic(),
		ScoreCP: r.Info.ScoreCP,
		Mate:    r.Info.Mate,
		Depth:   r.Info.Depth,
		PV:      r.Info.PV,
	}
	s.logger.Info("analysis", "suggester", sg.Name, "played", played.SAN, "best", best.SAN, "cp", a.ScoreCP, "mate", a.Mate)
	return a, nil
}
