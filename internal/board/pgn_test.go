package board

import (
	"errors"
	"strings"
	"testing"

	"github.com/notnil/chess"
)

func TestFormatPGN(t *testing.T) {
	h := PGNHeader{Event: "Club \"night\"", Date: "2026.10.19", White: "Ann", Black: "Bo"}
	got, err := FormatPGN(h, "", []string{"f3", "e5", "g4", "Qh4"})
	if err != nil {
		t.Fatalf("FormatPGN: %v", err)
	}
	want := `[Event "Club \"night\""]
[Site "?"]
[Date "2026.10.19"]
[Round "?"]
[White "Ann"]
[Black "Bo"]
[Result "0-1"]

1. f3 e5 2. g4 Qh4# 0-1
`
	if got != want {
		t.Errorf("FormatPGN =\n%s\nwant\n%s", got, want)
	}
}

func TestFormatPGNFromPosition(t *testing.T) {
	fen := "4k3/8/8/8/8/8/4P3/4K3 b - - 0 12"
	got, err := FormatPGN(PGNHeader{Result: ResultOngoing}, fen, []string{"Kd7", "e4", "Kc6"})
	if err != nil {
		t.Fatalf("FormatPGN: %v", err)
	}
	for _, want := range []string{
		`[Date "????.??.??"]`,
		`[SetUp "1"]`,
		`[FEN "` + fen + `"]`,
		"12... Kd7 13. e4 Kc6 *\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("PGN missing %q:\n%s", want, got)
		}
	}
}

func TestFormatPGNErrors(t *testing.T) {
	if _, err := FormatPGN(PGNHeader{}, "", []string{"e4", "e4"}); !errors.Is(err, ErrInvalidMove) {
		t.Errorf("illegal history: error = %v", err)
	}
	if _, err := FormatPGN(PGNHeader{}, "bad fen", nil); !errors.Is(err, ErrInvalidFEN) {
		t.Errorf("bad start: error = %v", err)
	}
}

func TestFormatPGNReadable(t *testing.T) {
	// A long game wraps across lines and must still parse elsewhere.
	b := NewBoard()
	moves := []string{
		"e2e4", "e7e5", "g1f3", "b8c6", "f1b5", "a7a6", "b5a4", "g8f6", "e1g1", "f8e7",
		"f1e1", "b7b5", "a4b3", "d7d6", "c2c3", "e8g8", "h2h3", "c6b8", "d2d4", "b8d7",
	}
	play(t, b, moves...)

	text, err := FormatPGN(PGNHeader{}, "", b.HistorySAN())
	if err != nil {
		t.Fatalf("FormatPGN: %v", err)
	}
	for _, line := range strings.Split(text, "\n") {
		if len(line) > pgnLineWidth {
			t.Errorf("line longer than %d: %q", pgnLineWidth, line)
		}
	}

	opt, err := chess.PGN(strings.NewReader(text))
	if err != nil {
		t.Fatalf("notnil/chess rejected PGN: %v\n%s", err, text)
	}
	game := chess.NewGame(opt)
	if len(game.Moves()) != len(moves) {
		t.Fatalf("parsed %d moves, want %d", len(game.Moves()), len(moves))
	}
	placement := strings.Fields(game.Position().String())[0]
	if want := strings.Fields(b.FEN())[0]; placement != want {
		t.Errorf("final placement = %s, want %s", placement, want)
	}
}

func TestPGNResult(t *testing.T) {
	tests := map[Outcome]string{
		Ongoing:        "*",
		CheckmateWhite: "1-0",
		CheckmateBlack: "0-1",
		Stalemate:      "1/2-1/2",
		Draw:           "1/2-1/2",
	}
	for o, want := range tests {
		if got := o.PGNResult(); got != want {
			t.Errorf("%v.PGNResult() = %q, want %q", o, got, want)
		}
	}
}
