package board

import "errors"

var (
	// ErrOutOfRange is returned when a coordinate falls outside the 8x8 grid.
	ErrOutOfRange = errors.New("position out of range")
	// ErrInvalidNotation is returned for malformed square names such as "i9".
	ErrInvalidNotation = errors.New("invalid square notation")
	// ErrInvalidFEN is returned for any FEN string that fails to parse.
	ErrInvalidFEN = errors.New("invalid FEN")
	// ErrInvalidMove is returned when move text cannot be resolved on a board.
	ErrInvalidMove = errors.New("invalid move")
)
