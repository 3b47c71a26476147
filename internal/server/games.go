package server

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/storage"
)

var (
	// ErrGameNotFound is returned for an unknown game ID.
	ErrGameNotFound = errors.New("game not found")
	// ErrGameOver is returned when a finished game is asked to move or resign.
	ErrGameOver = errors.New("game is over")
	// ErrIllegalMove is returned when a submitted move cannot be parsed or played.
	ErrIllegalMove = errors.New("illegal move")
)

// Game is one authoritative board plus the session state around it.
// All access to the board goes through the game's mutex.
type Game struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	board    *board.Board
	startFEN string
	resigned bool
	loser    board.Color
	recorded bool
}

func newGame(b *board.Board) *Game {
	return &Game{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		board:     b,
		startFEN:  b.FEN(),
	}
}

// finished reports whether no further moves are accepted. Caller holds g.mu.
func (g *Game) finished() bool {
	return g.resigned || g.board.Status().IsOver()
}

// Snapshot returns a copy of the board.
func (g *Game) Snapshot() *board.Board {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.board.Clone()
}

// State renders the current state.
func (g *Game) State() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stateLocked()
}

// Play parses text as long algebraic, or as SAN when san is set, and
// makes the move. It returns ErrIllegalMove and leaves the board unchanged
// when the move is not legal. done is true the first time the game ends.
func (g *Game) Play(text string, san bool) (state GameState, done bool, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.finished() {
		return GameState{}, false, ErrGameOver
	}

	m, err := parseMove(g.board, text, san)
	if err != nil {
		return GameState{}, false, err
	}
	if !g.board.MakeMove(m) {
		return GameState{}, false, ErrIllegalMove
	}

	return g.stateLocked(), g.markRecorded(), nil
}

// parseMove reads text as long algebraic, or as SAN when san is set.
func parseMove(b *board.Board, text string, san bool) (board.Move, error) {
	var (
		m   board.Move
		err error
	)
	if san {
		m, err = b.ParseSAN(text)
	} else {
		m, err = b.ParseMove(text)
	}
	if err != nil {
		return board.Move{}, fmt.Errorf("%w: %w", ErrIllegalMove, err)
	}
	return m, nil
}

// Candidate parses a move for the side to move without playing it.
// It returns ErrIllegalMove when the move is not legal.
func (g *Game) Candidate(text string, san bool) (board.Move, *board.Board, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	m, err := parseMove(g.board, text, san)
	if err != nil {
		return board.Move{}, nil, err
	}
	if !g.board.IsValidMove(m) {
		return board.Move{}, nil, ErrIllegalMove
	}
	return m, g.board.Clone(), nil
}

// Resign ends the game with c as the loser.
func (g *Game) Resign(c board.Color) (GameState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.finished() {
		return GameState{}, ErrGameOver
	}
	g.resigned = true
	g.loser = c
	g.markRecorded()
	return g.stateLocked(), nil
}

// Result describes how the game ended.
func (g *Game) Result() storage.GameResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.resultLocked()
}

// PGNResult returns the game's PGN result token.
func (g *Game) PGNResult() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pgnResultLocked()
}

func (g *Game) pgnResultLocked() string {
	if !g.resigned {
		return g.board.Status().PGNResult()
	}
	if g.loser == board.White {
		return board.ResultBlackWins
	}
	return board.ResultWhiteWins
}

// PGN renders the game from its starting position.
func (g *Game) PGN() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	h := board.PGNHeader{
		Event:  "Casual game",
		Site:   "chessd",
		Date:   g.CreatedAt.Format(board.PGNDate),
		Round:  "-",
		White:  "White",
		Black:  "Black",
		Result: g.pgnResultLocked(),
	}
	return board.FormatPGN(h, g.startFEN, g.board.HistorySAN())
}

// StartFEN returns the position the game began from.
func (g *Game) StartFEN() string {
	return g.startFEN
}

// markRecorded returns true once, when a finished game is first noticed.
func (g *Game) markRecorded() bool {
	if g.recorded || !g.finished() {
		return false
	}
	g.recorded = true
	return true
}

// Manager keeps the games in play, keyed by ID.
type Manager struct {
	games map[string]*Game
	mu    sync.RWMutex
}

// NewManager returns an empty registry.
func NewManager() *Manager {
	return &Manager{games: make(map[string]*Game)}
}

// Create registers a new game around b.
func (gm *Manager) Create(b *board.Board) *Game {
	g := newGame(b)
	gm.mu.Lock()
	gm.games[g.ID] = g
	gm.mu.Unlock()
	return g
}

// Get returns the game with the given ID.
func (gm *Manager) Get(id string) (*Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	g, ok := gm.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	return g, nil
}

// Delete forgets a game.
func (gm *Manager) Delete(id string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	if _, ok := gm.games[id]; !ok {
		return ErrGameNotFound
	}
	delete(gm.games, id)
	return nil
}

// Len returns the number of games in play.
func (gm *Manager) Len() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return len(gm.games)
}
