package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

const (
	mateFEN = "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3"
	kqkFEN  = "4k3/8/8/8/8/8/8/4K2Q w - - 0 1"
)

// fakeEngine answers the protocol over pipes. With hold set it only
// answers "go" once "stop" arrives. With late set as well, that answer
// comes only after the next command.
type fakeEngine struct {
	hold bool
	late bool

	mu       sync.Mutex
	commands []string
}

func (f *fakeEngine) run(in io.Reader, out io.WriteCloser) {
	defer out.Close()
	var (
		fen       string
		searching bool
		pending   bool
	)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		f.mu.Lock()
		f.commands = append(f.commands, line)
		late := f.late
		f.mu.Unlock()

		owed := pending
		switch {
		case line == "uci":
			fmt.Fprintln(out, "id name Fake 1.0")
			fmt.Fprintln(out, "id author nobody")
			fmt.Fprintln(out, "uciok")
		case line == "isready":
			fmt.Fprintln(out, "readyok")
		case strings.HasPrefix(line, "position fen "):
			fen = strings.TrimPrefix(line, "position fen ")
		case strings.HasPrefix(line, "go"):
			f.mu.Lock()
			hold := f.hold
			f.mu.Unlock()
			if hold {
				searching = true
				continue
			}
			if fen == mateFEN {
				fmt.Fprintln(out, "info depth 0 score mate 0")
				fmt.Fprintln(out, "bestmove (none)")
				continue
			}
			fmt.Fprintln(out, "info depth 3 score cp 12 nodes 400 pv g1f3 d7d5")
			fmt.Fprintln(out, "info string thinking")
			fmt.Fprintln(out, "info depth 5 score cp 31 nodes 9000 pv e2e4 e7e5 g1f3")
			fmt.Fprintln(out, "bestmove e2e4 ponder e7e5")
		case line == "stop":
			if searching {
				searching = false
				if late {
					pending = true
					continue
				}
				fmt.Fprintln(out, "bestmove a2a3")
			}
		case line == "quit":
			return
		}
		if owed {
			fmt.Fprintln(out, "bestmove a2a3")
			pending = false
		}
	}
}

func (f *fakeEngine) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.commands...)
}

func connect(t *testing.T, f *fakeEngine, opts GoOptions) *Engine {
	t.Helper()
	toEngine, engineIn := io.Pipe()
	fromEngine, engineOut := io.Pipe()
	go f.run(toEngine, engineOut)
	t.Cleanup(func() { engineIn.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	e, err := New(ctx, fromEngine, engineIn, opts, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func TestHandshake(t *testing.T) {
	f := &fakeEngine{}
	e := connect(t, f, GoOptions{})
	if e.Name != "Fake 1.0" {
		t.Errorf("Name = %q, want Fake 1.0", e.Name)
	}
	sent := f.sent()
	if len(sent) < 2 || sent[0] != "uci" || sent[1] != "isready" {
		t.Errorf("commands = %v", sent)
	}
}

func TestSearch(t *testing.T) {
	f := &fakeEngine{}
	e := connect(t, f, GoOptions{MoveTime: 250 * time.Millisecond})

	fen := "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	r, err := e.Search(context.Background(), fen)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if r.BestMove != "e2e4" || r.Ponder != "e7e5" {
		t.Errorf("result = %+v", r)
	}
	if r.Info.Depth != 5 || r.Info.ScoreCP != 31 || r.Info.Nodes != 9000 {
		t.Errorf("info = %+v", r.Info)
	}
	if len(r.Info.PV) != 3 || r.Info.PV[0] != "e2e4" {
		t.Errorf("pv = %v", r.Info.PV)
	}

	sent := f.sent()
	if !contains(sent, "position fen "+fen) {
		t.Errorf("position not sent: %v", sent)
	}
	if !contains(sent, "go movetime 250") {
		t.Errorf("go not sent: %v", sent)
	}
}

func TestSuggestNoMove(t *testing.T) {
	e := connect(t, &fakeEngine{}, GoOptions{})
	move, err := e.Suggest(context.Background(), mateFEN)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if move != "" {
		t.Errorf("Suggest = %q, want empty for a mated position", move)
	}
}

func TestSearchCancel(t *testing.T) {
	f := &fakeEngine{hold: true}
	e := connect(t, f, GoOptions{Depth: 30})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := e.Search(ctx, mateFEN)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want deadline exceeded", err)
	}
	if !contains(f.sent(), "stop") {
		t.Error("stop not sent after cancel")
	}

	// The engine is usable again once the stale answer is drained.
	f.mu.Lock()
	f.hold = false
	f.mu.Unlock()
	if _, err := e.Search(context.Background(), kqkFEN); err != nil {
		t.Errorf("Search after cancel: %v", err)
	}
}

func TestSearchAfterSlowStop(t *testing.T) {
	f := &fakeEngine{hold: true, late: true}
	e := connect(t, f, GoOptions{Depth: 30})
	e.grace = 20 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := e.Search(ctx, kqkFEN); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want deadline exceeded", err)
	}

	f.mu.Lock()
	f.hold = false
	f.mu.Unlock()

	// The late answer to the stopped search must not be taken as the
	// answer to this one.
	ctx2, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	r, err := e.Search(ctx2, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if r.BestMove != "e2e4" {
		t.Errorf("BestMove = %q, want e2e4", r.BestMove)
	}
}

func TestEngineGone(t *testing.T) {
	toEngine, engineIn := io.Pipe()
	fromEngine, engineOut := io.Pipe()
	go func() {
		io.Copy(io.Discard, toEngine)
	}()
	engineOut.Close()
	defer engineIn.Close()

	_, err := New(context.Background(), fromEngine, engineIn, GoOptions{}, nil)
	if !errors.Is(err, ErrHandshake) || !errors.Is(err, ErrNoEngine) {
		t.Errorf("error = %v, want handshake failure", err)
	}
}

func TestGoOptions(t *testing.T) {
	tests := []struct {
		opts GoOptions
		want string
	}{
		{GoOptions{}, "go movetime 1000"},
		{GoOptions{MoveTime: 500 * time.Millisecond}, "go movetime 500"},
		{GoOptions{Depth: 12}, "go depth 12"},
		{GoOptions{Depth: 8, Nodes: 1000}, "go depth 8 nodes 1000"},
	}
	for _, tc := range tests {
		if got := tc.opts.String(); got != tc.want {
			t.Errorf("%+v.String() = %q, want %q", tc.opts, got, tc.want)
		}
	}
}

func TestParseBestMove(t *testing.T) {
	tests := []struct {
		line         string
		move, ponder string
	}{
		{"bestmove e2e4", "e2e4", ""},
		{"bestmove e7e8q ponder a2a1", "e7e8q", "a2a1"},
		{"bestmove (none)", "", ""},
		{"bestmove 0000", "", ""},
	}
	for _, tc := range tests {
		r := parseBestMove(tc.line)
		if r.BestMove != tc.move || r.Ponder != tc.ponder {
			t.Errorf("parseBestMove(%q) = %+v", tc.line, r)
		}
	}
}


func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
