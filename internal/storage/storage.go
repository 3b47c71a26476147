package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/hailam/chessrules/internal/board"
)

// Storage keys
const (
	keySavePrefix = "save/"
	keyStats      = "stats"
)

var (
	// ErrNotFound is returned when no save record has the requested name.
	ErrNotFound = errors.New("save not found")
	// ErrInvalidName is returned for empty save names.
	ErrInvalidName = errors.New("invalid save name")
)

// SaveRecord is a saved game. Only FEN is needed to resume; History is
// kept for display and PGN export and is not replayed on load.
type SaveRecord struct {
	Name string `json:"name"`
	FEN  string `json:"fen"`
	// StartFEN is the position History was played from, empty for the
	// standard start.
	StartFEN string    `json:"start_fen,omitempty"`
	History  []string  `json:"history"`
	Status   string    `json:"status"`
	Result   string    `json:"result,omitempty"`
	SavedAt  time.Time `json:"saved_at"`
}

// PGN renders the record's history as a PGN game.
func (r *SaveRecord) PGN() (string, error) {
	h := board.PGNHeader{
		Event:  r.Name,
		Site:   appName,
		Round:  "-",
		Result: r.Result,
	}
	if !r.SavedAt.IsZero() {
		h.Date = r.SavedAt.Format(board.PGNDate)
	}
	return board.FormatPGN(h, r.StartFEN, r.History)
}

// Board rebuilds a board from the record's FEN. Its history is empty.
func (r *SaveRecord) Board() (*board.Board, error) {
	return board.ParseFEN(r.FEN)
}

// GameStats tallies finished games.
type GameStats struct {
	GamesFinished int            `json:"games_finished"`
	WhiteWins     int            `json:"white_wins"`
	BlackWins     int            `json:"black_wins"`
	Draws         int            `json:"draws"`
	Resignations  int            `json:"resignations"`
	DrawsByReason map[string]int `json:"draws_by_reason"`
}

// NewGameStats returns empty game statistics
func NewGameStats() *GameStats {
	return &GameStats{DrawsByReason: make(map[string]int)}
}

// GameResult describes how a game ended.
type GameResult struct {
	Outcome board.Outcome
	Reason  board.DrawReason
	// Resigned is set when Winner won by resignation.
	Resigned bool
	Winner   board.Color
}

// maxConflictRetries bounds the retries of a stats update that lost a
// transaction conflict.
const maxConflictRetries = 10

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
	// statsMu serializes stats updates made through this Storage.
	statsMu sync.Mutex
}

// Open opens the database in dir.
func Open(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", dir, err)
	}
	return &Storage{db: db}, nil
}

// OpenInMemory opens a database that lives only as long as the process.
func OpenInMemory() (*Storage, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func saveKey(name string) []byte {
	return []byte(keySavePrefix + name)
}

// cleanName trims name and rejects it when nothing is left.
func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidName
	}
	return name, nil
}

// SaveGame stores rec under rec.Name, replacing any earlier record of that
// name. SavedAt is set to the current time.
func (s *Storage) SaveGame(rec *SaveRecord) error {
	name, err := cleanName(rec.Name)
	if err != nil {
		return err
	}
	rec.Name = name
	if _, err := board.ParseFEN(rec.FEN); err != nil {
		return err
	}
	rec.SavedAt = time.Now().UTC()

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(saveKey(rec.Name), data)
	})
}

// LoadGame returns the record saved under name.
func (s *Storage) LoadGame(name string) (*SaveRecord, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	rec := &SaveRecord{}

	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(saveKey(name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, rec)
		})
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListGames returns every save record ordered by name.
func (s *Storage) ListGames() ([]SaveRecord, error) {
	var out []SaveRecord

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(keySavePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec SaveRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	})

	return out, err
}

// DeleteGame removes the record saved under name.
func (s *Storage) DeleteGame(name string) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(saveKey(name)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", ErrNotFound, name)
			}
			return err
		}
		return txn.Delete(saveKey(name))
	})
}

// SaveStats saves game statistics
func (s *Storage) SaveStats(stats *GameStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyStats), data)
	})
}

// LoadStats loads game statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*GameStats, error) {
	var stats *GameStats
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		stats, err = readStats(txn)
		return err
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func readStats(txn *badger.Txn) (*GameStats, error) {
	stats := NewGameStats()
	item, err := txn.Get([]byte(keyStats))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return stats, nil // Use empty stats
	}
	if err != nil {
		return nil, err
	}

	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, stats)
	})
	if stats.DrawsByReason == nil {
		stats.DrawsByReason = make(map[string]int)
	}
	return stats, err
}

// RecordGame records a finished game and updates statistics. The read and
// the write happen in one transaction, retried when another writer
// committed the stats first.
func (s *Storage) RecordGame(result GameResult) error {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()

	var err error
	for range maxConflictRetries {
		err = s.db.Update(func(txn *badger.Txn) error {
			stats, err := readStats(txn)
			if err != nil {
				return err
			}
			stats.tally(result)

			data, err := json.Marshal(stats)
			if err != nil {
				return err
			}
			return txn.Set([]byte(keyStats), data)
		})
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("record game: %w", err)
}

// tally adds one finished game.
func (st *GameStats) tally(result GameResult) {
	st.GamesFinished++
	switch {
	case result.Resigned:
		st.Resignations++
		if result.Winner == board.White {
			st.WhiteWins++
		} else {
			st.BlackWins++
		}
	case result.Outcome == board.CheckmateWhite:
		st.WhiteWins++
	case result.Outcome == board.CheckmateBlack:
		st.BlackWins++
	case result.Outcome == board.Stalemate:
		st.Draws++
		st.DrawsByReason["stalemate"]++
	default:
		st.Draws++
		st.DrawsByReason[drawKey(result.Reason)]++
	}
}

func drawKey(r board.DrawReason) string {
	switch r {
	case board.FiftyMoveRule:
		return "fifty_move_rule"
	case board.InsufficientMaterial:
		return "insufficient_material"
	default:
		return "other"
	}
}
