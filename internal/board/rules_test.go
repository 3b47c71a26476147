package board

import (
	"slices"
	"sort"
	"testing"
)

func mustFEN(t *testing.T, fen string) *Board {
	t.Helper()
	b, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return b
}

// play makes each UCI move in turn and fails the test if one is rejected.
func play(t *testing.T, b *Board, moves ...string) {
	t.Helper()
	for _, s := range moves {
		m, err := b.ParseMove(s)
		if err != nil {
			t.Fatalf("ParseMove(%q): %v", s, err)
		}
		if !b.MakeMove(m) {
			t.Fatalf("move %s rejected in %s", s, b.FEN())
		}
	}
}

// rejects asserts that the UCI move is refused and the board is unchanged.
func rejects(t *testing.T, b *Board, s string) {
	t.Helper()
	m, err := b.ParseMove(s)
	if err != nil {
		return
	}
	before := b.FEN()
	if b.IsValidMove(m) {
		t.Errorf("move %s should be illegal in %s", s, before)
	}
	if b.MakeMove(m) {
		t.Errorf("MakeMove(%s) accepted in %s", s, before)
	}
	if b.FEN() != before {
		t.Errorf("rejected move changed the board: %s -> %s", before, b.FEN())
	}
}

func squares(ps []Position) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.String()
	}
	sort.Strings(out)
	return out
}

func TestPawnOpening(t *testing.T) {
	b := NewBoard()
	if got, want := squares(b.ValidMoves(MustParsePosition("e2"))), []string{"e3", "e4"}; !slices.Equal(got, want) {
		t.Errorf("ValidMoves(e2) = %v, want %v", got, want)
	}
	play(t, b, "e2e4")

	if _, ok := b.At(MustParsePosition("e2")); ok {
		t.Error("e2 should be empty")
	}
	pc, ok := b.At(MustParsePosition("e4"))
	if !ok || pc.Kind != Pawn || pc.Color != White || !pc.Moved {
		t.Errorf("At(e4) = %v", pc)
	}
	if b.Turn() != Black {
		t.Errorf("turn = %v, want Black", b.Turn())
	}
	if ep, ok := b.EnPassantTarget(); !ok || ep.String() != "e3" {
		t.Errorf("en passant = %v, %v; want e3", ep, ok)
	}
	if b.FullmoveNumber() != 1 {
		t.Errorf("fullmove = %d, want 1", b.FullmoveNumber())
	}

	play(t, b, "e7e5")
	if b.FullmoveNumber() != 2 {
		t.Errorf("fullmove = %d, want 2", b.FullmoveNumber())
	}
	if ep, _ := b.EnPassantTarget(); ep.String() != "e6" {
		t.Errorf("en passant = %v, want e6", ep)
	}
}

func TestKnightOpening(t *testing.T) {
	b := NewBoard()
	got := squares(b.ValidMoves(MustParsePosition("g1")))
	if want := []string{"f3", "h3"}; !slices.Equal(got, want) {
		t.Errorf("ValidMoves(g1) = %v, want %v", got, want)
	}
	if moves := b.ValidMoves(MustParsePosition("e4")); moves != nil {
		t.Errorf("ValidMoves(empty) = %v, want nil", moves)
	}
	if n := len(b.LegalMoves()); n != 20 {
		t.Errorf("LegalMoves = %d, want 20", n)
	}
}

func TestRejectedMoves(t *testing.T) {
	b := NewBoard()
	rejects(t, b, "e7e5") // wrong side
	rejects(t, b, "e2e5") // three squares
	rejects(t, b, "d1d3") // blocked queen
	rejects(t, b, "a1a2") // own piece
	rejects(t, b, "g1g3") // not a knight move

	e2 := MustParsePosition("e2")
	e4 := MustParsePosition("e4")
	m, _ := b.MoveFor(e2, e4, NoKind)
	m.Piece.Kind = Queen
	if b.IsValidMove(m) {
		t.Error("move with mismatched piece accepted")
	}
	same, _ := b.MoveFor(e2, e2, NoKind)
	if b.IsValidMove(same) {
		t.Error("null move accepted")
	}
	if b.IsValidMove(Move{From: e2, To: e4}) {
		t.Error("move without a piece accepted")
	}
	m, _ = b.MoveFor(e2, e4, NoKind)
	m.Type = EnPassant
	if b.IsValidMove(m) {
		t.Error("move with wrong type accepted")
	}
}

func TestTurnAlternationAndKingSafety(t *testing.T) {
	b := NewBoard()
	seq := []string{"e2e4", "e7e5", "g1f3", "b8c6", "f1b5", "a7a6", "b5c6", "d7c6", "e1g1", "f7f6"}
	for _, s := range seq {
		mover := b.Turn()
		play(t, b, s)
		if b.Turn() != mover.Other() {
			t.Fatalf("after %s turn = %v", s, b.Turn())
		}
		if b.IsInCheck(mover) {
			t.Fatalf("after %s mover is in check", s)
		}
	}
	if got := len(b.History()); got != len(seq) {
		t.Errorf("history length = %d, want %d", got, len(seq))
	}
	if got := b.Captured(Black); len(got) != 1 || got[0].Kind != Bishop || got[0].Color != White {
		t.Errorf("captured by Black = %v", got)
	}
	if got := b.Captured(White); len(got) != 1 || got[0].Kind != Knight {
		t.Errorf("captured by White = %v", got)
	}
}

func TestPinnedPieceCannotMove(t *testing.T) {
	// The e2 knight shields its king from the e8 rook.
	b := mustFEN(t, "4r1k1/8/8/8/8/8/4N3/4K3 w - - 0 1")
	if moves := b.ValidMoves(MustParsePosition("e2")); len(moves) != 0 {
		t.Errorf("pinned knight has moves %v", squares(moves))
	}
	if moves := b.PossibleMoves(MustParsePosition("e2")); len(moves) == 0 {
		t.Error("pinned knight should still have pseudo-legal moves")
	}
}

func TestMustAnswerCheck(t *testing.T) {
	b := mustFEN(t, "4k3/8/8/8/8/8/3P1P2/r3K3 w - - 0 1")
	if !b.IsInCheck(White) {
		t.Fatal("white should be in check")
	}
	rejects(t, b, "d2d3")
	rejects(t, b, "e1f1")
	moves := b.LegalMoves()
	if len(moves) != 1 || moves[0].LongAlgebraic() != "e1e2" {
		t.Errorf("legal moves = %v, want [e1e2]", moves)
	}
	for _, m := range moves {
		if m.Piece.Kind != King {
			t.Errorf("non-king move %s while the only defence is a king move", m.LongAlgebraic())
		}
	}
}

func TestEnPassant(t *testing.T) {
	b := mustFEN(t, "4k3/5p2/8/4P3/8/8/8/4K3 b - - 0 1")
	play(t, b, "f7f5")
	if ep, ok := b.EnPassantTarget(); !ok || ep.String() != "f6" {
		t.Fatalf("en passant = %v, %v; want f6", ep, ok)
	}

	m, err := b.ParseMove("e5f6")
	if err != nil {
		t.Fatal(err)
	}
	if m.Type != EnPassant {
		t.Fatalf("type = %v, want EnPassant", m.Type)
	}
	if c, ok := m.Capture(); !ok || c.Pos.String() != "f5" {
		t.Fatalf("capture = %v, %v; want pawn on f5", c, ok)
	}
	play(t, b, "e5f6")

	if _, ok := b.At(MustParsePosition("f5")); ok {
		t.Error("captured pawn still on f5")
	}
	if pc, ok := b.At(MustParsePosition("f6")); !ok || pc.Kind != Pawn || pc.Color != White {
		t.Errorf("At(f6) = %v", pc)
	}
	if got := b.Captured(White); len(got) != 1 || got[0].Kind != Pawn {
		t.Errorf("captured by White = %v", got)
	}
	if b.HalfmoveClock() != 0 {
		t.Errorf("halfmove = %d, want 0", b.HalfmoveClock())
	}
	if last, _ := b.LastMove(); last.SAN != "exf6" {
		t.Errorf("SAN = %q, want exf6", last.SAN)
	}
}

func TestEnPassantExpires(t *testing.T) {
	b := mustFEN(t, "4k3/5p2/8/4P3/8/8/8/4K3 b - - 0 1")
	play(t, b, "f7f5", "e1d1", "e8d8")
	rejects(t, b, "e5f6")
}

func TestPromotion(t *testing.T) {
	b := mustFEN(t, "8/P6k/8/8/8/8/8/K7 w - - 0 1")
	a7, a8 := MustParsePosition("a7"), MustParsePosition("a8")

	m, _ := b.MoveFor(a7, a8, NoKind)
	if m.Type != Promotion || m.PromoteTo != Queen {
		t.Errorf("MoveFor default = %v %v, want Promotion to Queen", m.Type, m.PromoteTo)
	}
	m.PromoteTo = NoKind
	if b.IsValidMove(m) {
		t.Error("promotion without a piece accepted")
	}
	m.PromoteTo = King
	if b.IsValidMove(m) {
		t.Error("promotion to king accepted")
	}

	knight, _ := b.MoveFor(a7, a8, Knight)
	if !b.MakeMove(knight) {
		t.Fatal("promotion to knight rejected")
	}
	pc, ok := b.At(a8)
	if !ok || pc.Kind != Knight || pc.Color != White {
		t.Errorf("At(a8) = %v", pc)
	}
	if last, _ := b.LastMove(); last.SAN != "a8=N" {
		t.Errorf("SAN = %q, want a8=N", last.SAN)
	}
	if len(mustFEN(t, "8/P6k/8/8/8/8/8/K7 w - - 0 1").LegalMoves()) != 4+3 {
		t.Error("expected four promotions and three king moves")
	}
}

func TestCastling(t *testing.T) {
	b := mustFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	got := squares(b.ValidMoves(MustParsePosition("e1")))
	want := []string{"c1", "d1", "d2", "e2", "f1", "f2", "g1"}
	if !slices.Equal(got, want) {
		t.Errorf("king moves = %v, want %v", got, want)
	}

	play(t, b, "e1g1")
	if pc, _ := b.At(MustParsePosition("g1")); pc.Kind != King {
		t.Errorf("g1 = %v, want king", pc)
	}
	if pc, _ := b.At(MustParsePosition("f1")); pc.Kind != Rook {
		t.Errorf("f1 = %v, want rook", pc)
	}
	if _, ok := b.At(MustParsePosition("h1")); ok {
		t.Error("h1 should be empty")
	}
	if b.Castling() != BlackKingSideCastle|BlackQueenSideCastle {
		t.Errorf("castling = %v, want kq", b.Castling())
	}

	play(t, b, "e8c8")
	if pc, _ := b.At(MustParsePosition("d8")); pc.Kind != Rook {
		t.Errorf("d8 = %v, want rook", pc)
	}
	if b.Castling() != NoCastling {
		t.Errorf("castling = %v, want -", b.Castling())
	}
	want2 := []string{"O-O", "O-O-O"}
	if got := b.HistorySAN(); !slices.Equal(got, want2) {
		t.Errorf("history = %v, want %v", got, want2)
	}
}

func TestCastlingBlockedByAttack(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		king string
	}{
		{"through check", "4kr2/8/8/8/8/8/8/R3K2R w KQ - 0 1", "e1g1"},
		{"into check", "4k1r1/8/8/8/8/8/8/R3K2R w KQ - 0 1", "e1g1"},
		{"out of check", "4r1k1/8/8/8/8/8/8/R3K2R w KQ - 0 1", "e1c1"},
		{"blocked", "4k3/8/8/8/8/8/8/RN2K2R w KQ - 0 1", "e1c1"},
		{"no rook", "4k3/8/8/8/8/8/8/4K2R w KQ - 0 1", "e1c1"},
		{"no right", "4k3/8/8/8/8/8/8/R3K2R w Q - 0 1", "e1g1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rejects(t, mustFEN(t, tt.fen), tt.king)
		})
	}

	// b1 may be attacked when castling queenside.
	b := mustFEN(t, "1r2k3/8/8/8/8/8/8/R3K2R w KQ - 0 1")
	play(t, b, "e1c1")
}

func TestCastlingRightsArePermanent(t *testing.T) {
	b := mustFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	play(t, b, "e1f1", "e8e7", "f1e1", "e7e8")
	if b.Castling().CanCastle(White, true) || b.Castling().CanCastle(White, false) {
		t.Errorf("white rights survived a king trip: %v", b.Castling())
	}
	rejects(t, b, "e1g1")
	rejects(t, b, "e1c1")

	b = mustFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	play(t, b, "h1h2", "a8a7", "h2h1", "a7a8")
	if b.Castling() != WhiteQueenSideCastle|BlackKingSideCastle {
		t.Errorf("castling = %v, want Qk", b.Castling())
	}
	rejects(t, b, "e1g1")
	play(t, b, "e1c1")
}

func TestCapturingRookClearsRight(t *testing.T) {
	b := mustFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	play(t, b, "a1a8")
	if b.Castling() != WhiteKingSideCastle|BlackKingSideCastle {
		t.Errorf("castling = %v, want Kk", b.Castling())
	}
}

func TestHalfmoveClock(t *testing.T) {
	b := NewBoard()
	play(t, b, "g1f3", "g8f6", "f3g1")
	if b.HalfmoveClock() != 3 {
		t.Errorf("halfmove = %d, want 3", b.HalfmoveClock())
	}
	play(t, b, "e7e5")
	if b.HalfmoveClock() != 0 {
		t.Errorf("halfmove = %d, want 0", b.HalfmoveClock())
	}
}

func TestCloneIsIndependent(t *testing.T) {
	b := NewBoard()
	play(t, b, "e2e4", "d7d5", "e4d5")
	c := b.Clone()
	play(t, c, "d8d5")

	if len(b.History()) != 3 || len(c.History()) != 4 {
		t.Errorf("history lengths = %d, %d", len(b.History()), len(c.History()))
	}
	if len(b.Captured(Black)) != 0 {
		t.Errorf("clone capture leaked: %v", b.Captured(Black))
	}
	if b.FEN() == c.FEN() {
		t.Error("boards should differ")
	}
}

func TestParseMoveErrors(t *testing.T) {
	b := NewBoard()
	for _, s := range []string{"", "e2", "e2e", "e2e4qq", "z2e4", "e2z4", "e3e4", "e2e4x", "e2e4q"} {
		if _, err := b.ParseMove(s); err == nil {
			t.Errorf("ParseMove(%q) succeeded", s)
		}
	}
}
