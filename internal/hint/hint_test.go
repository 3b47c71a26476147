package hint

import (
	"context"
	"errors"
	"testing"

	"github.com/hailam/chessrules/internal/board"
)

type fixed struct {
	move  string
	err   error
	calls int
	fen   string
}

func (f *fixed) Suggest(ctx context.Context, fen string) (string, error) {
	f.calls++
	f.fen = fen
	return f.move, f.err
}

func TestHint(t *testing.T) {
	engine := &fixed{move: "g1f3"}
	svc := New(nil, Named{"engine", engine})

	b := board.NewBoard()
	before := b.FEN()
	m, err := svc.Hint(context.Background(), b)
	if err != nil {
		t.Fatalf("Hint: %v", err)
	}
	if m.LongAlgebraic() != "g1f3" || m.SAN != "Nf3" {
		t.Errorf("hint = %s (%s), want g1f3 (Nf3)", m.LongAlgebraic(), m.SAN)
	}
	if engine.fen != before {
		t.Errorf("suggester saw %q, want %q", engine.fen, before)
	}
	if b.FEN() != before || len(b.History()) != 0 {
		t.Error("Hint modified the board")
	}
}

func TestHintFallsThrough(t *testing.T) {
	tb := &fixed{err: errors.New("too many pieces")}
	bad := &fixed{move: "e2e5"}
	good := &fixed{move: "d2d4"}
	svc := New(nil, Named{"tablebase", tb}, Named{"bad", bad}, Named{"engine", good})

	m, err := svc.Hint(context.Background(), board.NewBoard())
	if err != nil {
		t.Fatalf("Hint: %v", err)
	}
	if m.LongAlgebraic() != "d2d4" {
		t.Errorf("hint = %s, want d2d4", m.LongAlgebraic())
	}
	if tb.calls != 1 || bad.calls != 1 || good.calls != 1 {
		t.Errorf("calls = %d %d %d", tb.calls, bad.calls, good.calls)
	}
}

func TestHintFirstWins(t *testing.T) {
	first := &fixed{move: "e2e4"}
	second := &fixed{move: "d2d4"}
	svc := New(nil, Named{"a", first}, Named{"b", second})
	if _, err := svc.Hint(context.Background(), board.NewBoard()); err != nil {
		t.Fatal(err)
	}
	if second.calls != 0 {
		t.Error("second suggester consulted after a legal answer")
	}
}

func TestHintNoMove(t *testing.T) {
	b, err := board.ParseFEN("8/8/8/8/8/1qk5/8/K7 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	svc := New(nil, Named{"engine", &fixed{}})
	if _, err := svc.Hint(context.Background(), b); !errors.Is(err, ErrNoMove) {
		t.Errorf("error = %v, want ErrNoMove", err)
	}
}

func TestHintUnavailable(t *testing.T) {
	if _, err := New(nil).Hint(context.Background(), board.NewBoard()); !errors.Is(err, ErrNoSuggestion) {
		t.Errorf("error = %v, want ErrNoSuggestion", err)
	}
	svc := New(nil, Named{"illegal", &fixed{move: "e1e2"}})
	if _, err := svc.Hint(context.Background(), board.NewBoard()); !errors.Is(err, ErrNoSuggestion) {
		t.Errorf("error = %v, want ErrNoSuggestion", err)
	}
}

func TestHintCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := New(nil, Named{"engine", &fixed{err: context.Canceled}}, Named{"other", &fixed{move: "e2e4"}})
	if _, err := svc.Hint(ctx, board.NewBoard()); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestHintPromotion(t *testing.T) {
	b, err := board.ParseFEN("8/P6k/8/8/8/8/8/K7 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	svc := New(nil, Named{"engine", &fixed{move: "a7a8n"}})
	m, err := svc.Hint(context.Background(), b)
	if err != nil {
		t.Fatal(err)
	}
	if m.Type != board.Promotion || m.PromoteTo != board.Knight || m.SAN != "a8=N" {
		t.Errorf("hint = %+v", m)
	}
}
