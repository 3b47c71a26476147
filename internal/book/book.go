// Package book reads Polyglot opening books and suggests book moves.
package book

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"sort"

	"github.com/hailam/chessrules/internal/board"
)

// ErrNotInBook is returned when the book has no move for a position.
var ErrNotInBook = errors.New("position not in book")

// Entry is one book move for a position.
type Entry struct {
	Move   string // long algebraic, e.g. "e2e4"
	Weight uint16
}

// Book maps position keys to weighted moves.
type Book struct {
	entries map[uint64][]Entry
}

// New creates an empty book.
func New() *Book {
	return &Book{entries: make(map[uint64][]Entry)}
}

// Load reads a Polyglot book file.
func Load(path string) (*Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	b, err := LoadReader(f)
	if err != nil {
		return nil, fmt.Errorf("read book %s: %w", path, err)
	}
	return b, nil
}

// LoadReader reads Polyglot entries from r. Each entry is 16 bytes:
// key (8), move (2), weight (2) and learn data (4, ignored), big-endian.
func LoadReader(r io.Reader) (*Book, error) {
	b := New()
	var rec [16]byte
	for {
		_, err := io.ReadFull(r, rec[:])
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		key := binary.BigEndian.Uint64(rec[0:8])
		move, ok := decodeMove(binary.BigEndian.Uint16(rec[8:10]))
		if !ok {
			continue
		}
		b.Add(key, Entry{Move: move, Weight: binary.BigEndian.Uint16(rec[10:12])})
	}
	b.sort()
	return b, nil
}

// Add records a move for key.
func (b *Book) Add(key uint64, e Entry) {
	b.entries[key] = append(b.entries[key], e)
}

// sort orders every position's moves by weight, highest first.
func (b *Book) sort() {
	for _, list := range b.entries {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Weight > list[j].Weight
		})
	}
}

// decodeMove turns a Polyglot move into long algebraic. Bits 0-5 are the
// destination, 6-11 the origin (file then rank, three bits each) and
// 12-14 the promotion piece. Castling is encoded as king takes rook.
func decodeMove(data uint16) (string, bool) {
	toFile, toRank := int(data&7), int(data>>3&7)
	fromFile, fromRank := int(data>>6&7), int(data>>9&7)
	promo := int(data >> 12 & 7)

	if fromFile == 4 && (fromRank == 0 || fromRank == 7) && toRank == fromRank {
		switch toFile {
		case 7:
			toFile = 6
		case 0:
			toFile = 2
		}
	}
	if data == 0 || promo > 4 {
		return "", false
	}

	s := []byte{
		byte('a' + fromFile), byte('1' + fromRank),
		byte('a' + toFile), byte('1' + toRank),
	}
	if promo > 0 {
		s = append(s, " nbrq"[promo])
	}
	return string(s), true
}

// Probe returns the legal book moves for the position on b, highest weight
// first. Entries that are not legal on b are skipped.
func (b *Book) Probe(bd *board.Board) []Entry {
	if b == nil {
		return nil
	}
	var out []Entry
	for _, e := range b.entries[Key(bd)] {
		m, err := bd.ParseMove(e.Move)
		if err != nil || !bd.IsValidMove(m) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Pick chooses a book move at random in proportion to its weight.
func (b *Book) Pick(bd *board.Board, r *rand.Rand) (string, bool) {
	entries := b.Probe(bd)
	if len(entries) == 0 {
		return "", false
	}

	var total uint32
	for _, e := range entries {
		total += uint32(e.Weight)
	}
	if total == 0 {
		return entries[0].Move, true
	}

	n := r.Uint32N(total)
	for _, e := range entries {
		if n < uint32(e.Weight) {
			return e.Move, true
		}
		n -= uint32(e.Weight)
	}
	return entries[0].Move, true
}

// Suggest returns the highest weighted book move for fen.
func (b *Book) Suggest(ctx context.Context, fen string) (string, error) {
	bd, err := board.ParseFEN(fen)
	if err != nil {
		return "", err
	}
	entries := b.Probe(bd)
	if len(entries) == 0 {
		return "", ErrNotInBook
	}
	return entries[0].Move, nil
}

// Size returns the number of positions in the book.
func (b *Book) Size() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}
