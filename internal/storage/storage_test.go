package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/hailam/chessrules/internal/board"
)

func openTest(t *testing.T) *Storage {
	t.Helper()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoadGame(t *testing.T) {
	s := openTest(t)

	b := board.NewBoard()
	for _, uci := range []string{"e2e4", "e7e5", "g1f3"} {
		m, err := b.ParseMove(uci)
		if err != nil {
			t.Fatal(err)
		}
		if !b.MakeMove(m) {
			t.Fatalf("move %s rejected", uci)
		}
	}

	rec := &SaveRecord{
		Name:    " italian ",
		FEN:     b.FEN(),
		History: b.HistorySAN(),
		Status:  b.Status().String(),
	}
	if err := s.SaveGame(rec); err != nil {
		t.Fatalf("SaveGame: %v", err)
	}
	if rec.Name != "italian" || rec.SavedAt.IsZero() {
		t.Errorf("record after save = %+v", rec)
	}

	got, err := s.LoadGame(" italian\t")
	if err != nil {
		t.Fatalf("LoadGame: %v", err)
	}
	if got.FEN != b.FEN() || len(got.History) != 3 || got.History[2] != "Nf3" {
		t.Errorf("loaded %+v", got)
	}

	restored, err := got.Board()
	if err != nil {
		t.Fatal(err)
	}
	if restored.FEN() != b.FEN() {
		t.Errorf("restored FEN = %s, want %s", restored.FEN(), b.FEN())
	}
	if len(restored.History()) != 0 {
		t.Error("restored board should start with empty history")
	}
}

func TestSaveGameValidation(t *testing.T) {
	s := openTest(t)
	if err := s.SaveGame(&SaveRecord{Name: "  ", FEN: board.StartFEN}); !errors.Is(err, ErrInvalidName) {
		t.Errorf("error = %v, want ErrInvalidName", err)
	}
	if err := s.SaveGame(&SaveRecord{Name: "bad", FEN: "nope"}); !errors.Is(err, board.ErrInvalidFEN) {
		t.Errorf("error = %v, want ErrInvalidFEN", err)
	}
	if _, err := s.LoadGame(" "); !errors.Is(err, ErrInvalidName) {
		t.Errorf("LoadGame blank error = %v, want ErrInvalidName", err)
	}
	if err := s.DeleteGame(""); !errors.Is(err, ErrInvalidName) {
		t.Errorf("DeleteGame blank error = %v, want ErrInvalidName", err)
	}
}

func TestListAndDeleteGames(t *testing.T) {
	s := openTest(t)
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := s.SaveGame(&SaveRecord{Name: name, FEN: board.StartFEN}); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.SaveStats(&GameStats{GamesFinished: 1}); err != nil {
		t.Fatal(err)
	}

	list, err := s.ListGames()
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, r := range list {
		names = append(names, r.Name)
	}
	if len(names) != 3 || names[0] != "alpha" || names[1] != "mid" || names[2] != "zeta" {
		t.Errorf("ListGames names = %v", names)
	}

	if err := s.DeleteGame(" mid "); err != nil {
		t.Fatalf("DeleteGame: %v", err)
	}
	if _, err := s.LoadGame("mid"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadGame after delete error = %v", err)
	}
	if err := s.DeleteGame("mid"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteGame error = %v", err)
	}
}

func TestRecordGame(t *testing.T) {
	s := openTest(t)

	stats, err := s.LoadStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.GamesFinished != 0 || stats.DrawsByReason == nil {
		t.Errorf("empty stats = %+v", stats)
	}

	results := []GameResult{
		{Outcome: board.CheckmateWhite},
		{Outcome: board.CheckmateBlack},
		{Outcome: board.Stalemate},
		{Outcome: board.Draw, Reason: board.FiftyMoveRule},
		{Resigned: true, Winner: board.Black},
	}
	for _, r := range results {
		if err := s.RecordGame(r); err != nil {
			t.Fatal(err)
		}
	}

	stats, err = s.LoadStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.GamesFinished != 5 || stats.WhiteWins != 1 || stats.BlackWins != 2 || stats.Draws != 2 || stats.Resignations != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.DrawsByReason["stalemate"] != 1 || stats.DrawsByReason["fifty_move_rule"] != 1 {
		t.Errorf("draws by reason = %v", stats.DrawsByReason)
	}
}

func TestRecordGameConcurrent(t *testing.T) {
	s := openTest(t)

	const games = 50
	var wg sync.WaitGroup
	errs := make(chan error, games)
	for i := range games {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := GameResult{Outcome: board.CheckmateWhite}
			if i%2 == 1 {
				r = GameResult{Resigned: true, Winner: board.Black}
			}
			errs <- s.RecordGame(r)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("RecordGame: %v", err)
		}
	}

	stats, err := s.LoadStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.GamesFinished != games || stats.WhiteWins != games/2 || stats.BlackWins != games/2 {
		t.Errorf("stats = %+v, want %d games split evenly", stats, games)
	}
}

func TestOpenOnDisk(t *testing.T) {
	dir, err := GetDatabaseDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.SaveGame(&SaveRecord{Name: "disk", FEN: board.StartFEN}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, err := s.LoadGame("disk"); err != nil {
		t.Errorf("LoadGame after reopen: %v", err)
	}
}

func TestDataPaths(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("APPDATA", t.TempDir())

	dataDir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir failed: %v", err)
	}
	if filepath.Base(dataDir) != appName {
		t.Errorf("GetDataDir = %s", dataDir)
	}
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		t.Errorf("Data directory was not created: %s", dataDir)
	}
}

func TestSaveRecordPGN(t *testing.T) {
	s := openTest(t)
	rec := &SaveRecord{
		Name:     "endgame",
		FEN:      "8/3K1k2/8/8/8/8/8/8 b - - 11 6",
		StartFEN: "4k3/8/8/8/8/8/8/4K3 w - - 0 1",
		History:  []string{"Kd2", "Kf8", "Kd3", "Ke8", "Kd4", "Kf8", "Kd5", "Ke8", "Kd6", "Kf7", "Kd7"},
		Result:   board.ResultDraw,
	}
	if err := s.SaveGame(rec); err != nil {
		t.Fatal(err)
	}
	got, err := s.LoadGame("endgame")
	if err != nil {
		t.Fatal(err)
	}

	pgn, err := got.PGN()
	if err != nil {
		t.Fatalf("PGN: %v", err)
	}
	for _, want := range []string{
		`[Event "endgame"]`,
		`[Date "` + got.SavedAt.Format(board.PGNDate) + `"]`,
		`[Result "1/2-1/2"]`,
		`[FEN "4k3/8/8/8/8/8/8/4K3 w - - 0 1"]`,
		"1. Kd2 Kf8 2. Kd3",
		"6. Kd7 1/2-1/2",
	} {
		if !strings.Contains(pgn, want) {
			t.Errorf("PGN missing %q:\n%s", want, pgn)
		}
	}

	got.History = []string{"Qh5"}
	if _, err := got.PGN(); !errors.Is(err, board.ErrInvalidMove) {
		t.Errorf("PGN of bad history: error = %v", err)
	}
}
