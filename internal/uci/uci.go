// Package uci drives an external chess engine over the Universal Chess
// Interface protocol and exposes it as a move suggester.
package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	// ErrNoEngine is returned when the engine process is gone.
	ErrNoEngine = errors.New("uci engine not running")
	// ErrHandshake is returned when the engine does not answer "uci" with "uciok".
	ErrHandshake = errors.New("uci handshake failed")
)

// stopGrace bounds the wait for "bestmove" after "stop" is sent.
const stopGrace = 2 * time.Second

// GoOptions are the search limits sent with "go".
type GoOptions struct {
	Depth    int
	Nodes    uint64
	MoveTime time.Duration
}

// String renders the "go" command.
func (o GoOptions) String() string {
	parts := []string{"go"}
	if o.Depth > 0 {
		parts = append(parts, "depth", strconv.Itoa(o.Depth))
	}
	if o.Nodes > 0 {
		parts = append(parts, "nodes", strconv.FormatUint(o.Nodes, 10))
	}
	if o.MoveTime > 0 {
		parts = append(parts, "movetime", strconv.FormatInt(o.MoveTime.Milliseconds(), 10))
	}
	if len(parts) == 1 {
		parts = append(parts, "movetime", "1000")
	}
	return strings.Join(parts, " ")
}

// Info is the last search report of an engine.
type Info struct {
	Depth   int
	ScoreCP int
	Mate    int
	Nodes   uint64
	PV      []string
}

// Result is the answer to a search.
type Result struct {
	// BestMove is in long algebraic notation, empty when the position has
	// no legal move.
	BestMove string
	Ponder   string
	Info     Info
}

// Engine is a connection to a UCI engine. It is safe for concurrent use;
// searches are serialized.
type Engine struct {
	Name string

	opts   GoOptions
	logger *log.Logger

	mu    sync.Mutex
	w     io.Writer
	lines chan string
	close func() error
	// grace bounds the wait for "bestmove" after "stop".
	grace time.Duration
	// stale is set when a stopped search's "bestmove" has not been read yet.
	stale bool
}

// Start launches the engine binary at path and performs the handshake.
func Start(ctx context.Context, path string, opts GoOptions, logger *log.Logger) (*Engine, error) {
	cmd := exec.Command(path)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", path, err)
	}

	e := newEngine(stdout, stdin, opts, logger)
	e.close = func() error {
		fmt.Fprintln(stdin, "quit")
		stdin.Close()
		done := make(chan error, 1)
		go func() { done <- cmd.Wait() }()
		select {
		case err := <-done:
			return err
		case <-time.After(stopGrace):
			cmd.Process.Kill()
			return <-done
		}
	}
	if err := e.handshake(ctx); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

// New wraps an engine already connected through r and w and performs the
// handshake.
func New(ctx context.Context, r io.Reader, w io.Writer, opts GoOptions, logger *log.Logger) (*Engine, error) {
	e := newEngine(r, w, opts, logger)
	if err := e.handshake(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

func newEngine(r io.Reader, w io.Writer, opts GoOptions, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	e := &Engine{
		opts:   opts,
		logger: logger,
		w:      w,
		lines:  make(chan string, 64),
		grace:  stopGrace,
	}
	go e.readLoop(r)
	return e
}

// readLoop forwards engine output line by line until EOF.
func (e *Engine) readLoop(r io.Reader) {
	defer close(e.lines)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		e.lines <- line
	}
}

func (e *Engine) send(cmd string) error {
	e.logger.Debug("uci send", "cmd", cmd)
	if _, err := fmt.Fprintln(e.w, cmd); err != nil {
		return fmt.Errorf("%w: %w", ErrNoEngine, err)
	}
	return nil
}

// waitFor reads lines until one starts with token, passing every line to
// seen when it is not nil.
func (e *Engine) waitFor(ctx context.Context, token string, seen func(string)) (string, error) {
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case line, ok := <-e.lines:
			if !ok {
				return "", ErrNoEngine
			}
			if seen != nil {
				seen(line)
			}
			if line == token || strings.HasPrefix(line, token+" ") {
				return line, nil
			}
		}
	}
}

func (e *Engine) handshake(ctx context.Context) error {
	if err := e.send("uci"); err != nil {
		return err
	}
	_, err := e.waitFor(ctx, "uciok", func(line string) {
		if name, ok := strings.CutPrefix(line, "id name "); ok {
			e.Name = name
		}
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrHandshake, err)
	}
	return e.ready(ctx)
}

func (e *Engine) ready(ctx context.Context) error {
	if err := e.send("isready"); err != nil {
		return err
	}
	_, err := e.waitFor(ctx, "readyok", nil)
	return err
}

// Search asks the engine for the best move in fen. If ctx ends first the
// engine is told to stop and its answer is discarded.
func (e *Engine) Search(ctx context.Context, fen string) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stale {
		if err := e.drain(ctx); err != nil {
			return Result{}, err
		}
	}
	if err := e.ready(ctx); err != nil {
		return Result{}, err
	}
	if err := e.send("position fen " + fen); err != nil {
		return Result{}, err
	}
	if err := e.send(e.opts.String()); err != nil {
		return Result{}, err
	}

	start := time.Now()
	var info Info
	collect := func(line string) {
		if rest, ok := strings.CutPrefix(line, "info "); ok {
			parseInfo(strings.Fields(rest), &info)
		}
	}

	line, err := e.waitFor(ctx, "bestmove", collect)
	if err != nil {
		if ctx.Err() != nil {
			e.stale = true
			dctx, cancel := context.WithTimeout(context.Background(), e.grace)
			defer cancel()
			if e.drain(dctx) != nil {
				e.logger.Warn("uci engine slow to stop", "fen", fen)
			}
		}
		return Result{}, err
	}

	result := parseBestMove(line)
	result.Info = info
	e.logger.Debug("uci search", "fen", fen, "bestmove", result.BestMove, "depth", info.Depth, "took", time.Since(start))
	return result, nil
}

// drain stops a search whose answer is still outstanding and discards
// its "bestmove". The engine stays stale if ctx ends first.
func (e *Engine) drain(ctx context.Context) error {
	if err := e.send("stop"); err != nil {
		return err
	}
	if _, err := e.waitFor(ctx, "bestmove", nil); err != nil {
		return err
	}
	e.stale = false
	return nil
}

// Suggest returns the engine's best move for fen, or "" when there is none.
func (e *Engine) Suggest(ctx context.Context, fen string) (string, error) {
	r, err := e.Search(ctx, fen)
	if err != nil {
		return "", err
	}
	return r.BestMove, nil
}

// Close shuts the engine down.
func (e *Engine) Close() error {
	if e.close == nil {
		return nil
	}
	return e.close()
}

// parseBestMove parses "bestmove e2e4 ponder e7e5". Engines report a
// position without moves as "(none)" or "0000".
func parseBestMove(line string) Result {
	fields := strings.Fields(line)
	var r Result
	if len(fields) > 1 && fields[1] != "(none)" && fields[1] != "0000" {
		r.BestMove = fields[1]
	}
	if len(fields) > 3 && fields[2] == "ponder" {
		r.Ponder = fields[3]
	}
	return r
}

// parseInfo folds the fields of an "info" line into info.
func parseInfo(args []string, info *Info) {
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			if i+1 < len(args) {
				info.Depth, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "nodes":
			if i+1 < len(args) {
				info.Nodes, _ = strconv.ParseUint(args[i+1], 10, 64)
				i++
			}
		case "score":
			if i+2 < len(args) {
				n, _ := strconv.Atoi(args[i+2])
				switch args[i+1] {
				case "cp":
					info.ScoreCP, info.Mate = n, 0
				case "mate":
					info.Mate = n
				}
				i += 2
			}
		case "pv":
			info.PV = append([]string(nil), args[i+1:]...)
			return
		case "string":
			return
		}
	}
}
