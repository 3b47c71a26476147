package server

import (
	"strings"

	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/storage"
)

// GameState is the JSON view of a game.
type GameState struct {
	ID         string   `json:"id"`
	FEN        string   `json:"fen"`
	Turn       string   `json:"turn"`
	Check      bool     `json:"check"`
	Status     string   `json:"status"`
	DrawReason string   `json:"drawReason,omitempty"`
	Winner     string   `json:"winner,omitempty"`
	History    []string `json:"history"`
	Captured   Captured `json:"captured"`
	EnPassant  string   `json:"enPassant,omitempty"`
	Halfmove   int      `json:"halfmove"`
	Fullmove   int      `json:"fullmove"`
}

// Captured lists taken pieces by the color that took them, as FEN letters.
type Captured struct {
	White []string `json:"white"`
	Black []string `json:"black"`
}

// MoveView is a legal move offered to the client.
type MoveView struct {
	From string `json:"from"`
	To   string `json:"to"`
	UCI  string `json:"uci"`
	SAN  string `json:"san"`
}

type createRequest struct {
	FEN string `json:"fen"`
}

type moveRequest struct {
	Move string `json:"move"`
	SAN  string `json:"san"`
}

type resignRequest struct {
	Color string `json:"color"`
}

type saveRequest struct {
	Name string `json:"name"`
}

type hintResponse struct {
	Move string `json:"move"`
	SAN  string `json:"san"`
}

// analysisResponse compares a candidate move with the engine's choice.
type analysisResponse struct {
	Move    string   `json:"move"`
	SAN     string   `json:"san"`
	Best    string   `json:"best"`
	BestSAN string   `json:"bestSan"`
	IsBest  bool     `json:"isBest"`
	ScoreCP int      `json:"scoreCp"`
	Mate    int      `json:"mate,omitempty"`
	Depth   int      `json:"depth"`
	PV      []string `json:"pv"`
}

// pgnContentType is the media type of PGN responses.
const pgnContentType = "application/x-chess-pgn"

type gameResponse struct {
	ID    string    `json:"id"`
	State GameState `json:"state"`
}

func colorName(c board.Color) string {
	return strings.ToLower(c.String())
}

func pieceLetters(pieces []board.Piece) []string {
	out := make([]string, len(pieces))
	for i, p := range pieces {
		out[i] = string(p.Letter())
	}
	return out
}

// stateLocked builds the state of g. Caller holds g.mu.
func (g *Game) stateLocked() GameState {
	b := g.board
	st := GameState{
		ID:       g.ID,
		FEN:      b.FEN(),
		Turn:     colorName(b.Turn()),
		Check:    b.IsInCheck(b.Turn()),
		History:  b.HistorySAN(),
		Halfmove: b.HalfmoveClock(),
		Fullmove: b.FullmoveNumber(),
		Captured: Captured{
			White: pieceLetters(b.Captured(board.White)),
			Black: pieceLetters(b.Captured(board.Black)),
		},
	}
	if ep, ok := b.EnPassantTarget(); ok {
		st.EnPassant = ep.String()
	}

	if g.resigned {
		st.Status = "Resigned"
		st.Winner = colorName(g.loser.Other())
		return st
	}
	outcome := b.Status()
	st.Status = outcome.String()
	if w, ok := outcome.Winner(); ok {
		st.Winner = colorName(w)
	}
	if outcome == board.Draw {
		st.DrawReason = b.DrawReason().String()
	}
	return st
}

// result describes a finished game for the statistics store. Caller holds g.mu.
func (g *Game) resultLocked() storage.GameResult {
	if g.resigned {
		return storage.GameResult{Resigned: true, Winner: g.loser.Other()}
	}
	return storage.GameResult{Outcome: g.board.Status(), Reason: g.board.DrawReason()}
}
