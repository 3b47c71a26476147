package board

import (
	"fmt"
	"strconv"
	"strings"
)

// PGN result tokens.
const (
	ResultWhiteWins = "1-0"
	ResultBlackWins = "0-1"
	ResultDraw      = "1/2-1/2"
	ResultOngoing   = "*"
)

// PGNDate is the time layout of the Date tag.
const PGNDate = "2006.01.02"

// pgnLineWidth is the longest movetext line written.
const pgnLineWidth = 79

// PGNResult returns the PGN result token for o.
func (o Outcome) PGNResult() string {
	switch o {
	case CheckmateWhite:
		return ResultWhiteWins
	case CheckmateBlack:
		return ResultBlackWins
	case Stalemate, Draw:
		return ResultDraw
	}
	return ResultOngoing
}

// PGNHeader holds the Seven Tag Roster. Empty tags are written as "?".
// An empty Result is taken from the final position.
type PGNHeader struct {
	Event  string
	Site   string
	Date   string // YYYY.MM.DD
	Round  string
	White  string
	Black  string
	Result string
}

// FormatPGN renders moves, given in SAN and played from startFEN, as a
// PGN game. An empty startFEN means the standard start. The moves are
// replayed, so the movetext is numbered from the start position and
// carries canonical SAN.
func FormatPGN(h PGNHeader, startFEN string, moves []string) (string, error) {
	if startFEN == "" {
		startFEN = StartFEN
	}
	b, err := ParseFEN(startFEN)
	if err != nil {
		return "", err
	}

	tokens := make([]string, 0, len(moves)*3/2+1)
	for i, san := range moves {
		switch {
		case b.Turn() == White:
			tokens = append(tokens, strconv.Itoa(b.FullmoveNumber())+".")
		case i == 0:
			tokens = append(tokens, strconv.Itoa(b.FullmoveNumber())+"...")
		}
		m, err := b.ParseSAN(san)
		if err != nil {
			return "", fmt.Errorf("move %d: %w", i+1, err)
		}
		if !b.MakeMove(m) {
			return "", fmt.Errorf("move %d: %w: %q", i+1, ErrInvalidMove, san)
		}
		last, _ := b.LastMove()
		tokens = append(tokens, last.SAN)
	}

	if h.Result == "" {
		h.Result = b.Status().PGNResult()
	}
	tokens = append(tokens, h.Result)

	var sb strings.Builder
	for _, tag := range [][2]string{
		{"Event", h.Event}, {"Site", h.Site}, {"Date", h.Date}, {"Round", h.Round},
		{"White", h.White}, {"Black", h.Black}, {"Result", h.Result},
	} {
		writeTag(&sb, tag[0], tag[1])
	}
	if startFEN != StartFEN {
		writeTag(&sb, "SetUp", "1")
		writeTag(&sb, "FEN", startFEN)
	}
	sb.WriteByte('\n')

	width := 0
	for _, tok := range tokens {
		if width > 0 && width+1+len(tok) > pgnLineWidth {
			sb.WriteByte('\n')
			width = 0
		}
		if width > 0 {
			sb.WriteByte(' ')
			width++
		}
		sb.WriteString(tok)
		width += len(tok)
	}
	sb.WriteByte('\n')
	return sb.String(), nil
}

func writeTag(sb *strings.Builder, name, value string) {
	if value == "" {
		value = "?"
		if name == "Date" {
			value = "????.??.??"
		}
	}
	value = strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(value)
	fmt.Fprintf(sb, "[%s \"%s\"]\n", name, value)
}
