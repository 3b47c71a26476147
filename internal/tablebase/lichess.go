package tablebase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultLichessURL is the public Lichess tablebase endpoint.
const DefaultLichessURL = "https://tablebase.lichess.ovh"

// LichessProber uses the Lichess tablebase API for online lookups.
// Note: This requires network access and has rate limits.
type LichessProber struct {
	client  *http.Client
	baseURL string
	logger  *log.Logger
}

// NewLichessProber creates a prober for the API at baseURL.
// An empty baseURL selects DefaultLichessURL.
func NewLichessProber(baseURL string, logger *log.Logger) *LichessProber {
	if baseURL == "" {
		baseURL = DefaultLichessURL
	}
	return &LichessProber{
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// Lichess API response structure
type lichessResponse struct {
	Category string `json:"category"` // "win", "draw", "cursed-win", "blessed-loss", "loss"
	DTZ      int    `json:"dtz"`
	Moves    []struct {
		UCI      string `json:"uci"`
		Category string `json:"category"`
		DTZ      int    `json:"dtz"`
	} `json:"moves"`
}

// Probe looks up fen. Positions with more than MaxPieces pieces return
// ErrTooManyPieces without a request.
func (lp *LichessProber) Probe(ctx context.Context, fen string) (Result, error) {
	if err := checkPieces(fen); err != nil {
		return Result{}, err
	}

	// Lichess accepts underscores in place of spaces
	url := fmt.Sprintf("%s/standard?fen=%s", lp.baseURL, strings.ReplaceAll(fen, " ", "_"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	resp, err := lp.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("tablebase request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("tablebase request: status %d", resp.StatusCode)
	}

	var body lichessResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Result{}, fmt.Errorf("tablebase response: %w", err)
	}

	result := Result{
		WDL:   categoryToWDL(body.Category),
		DTZ:   body.DTZ,
		Moves: make([]MoveResult, 0, len(body.Moves)),
	}
	for _, m := range body.Moves {
		// Move categories are from the opponent's point of view
		result.Moves = append(result.Moves, MoveResult{UCI: m.UCI, WDL: -categoryToWDL(m.Category), DTZ: m.DTZ})
	}

	if lp.logger != nil {
		lp.logger.Debug("tablebase probe", "fen", fen, "category", body.Category, "moves", len(body.Moves), "took", time.Since(start))
	}
	return result, nil
}

// Suggest returns the tablebase's best move for fen in long algebraic
// notation, or "" when the position has no legal move.
func (lp *LichessProber) Suggest(ctx context.Context, fen string) (string, error) {
	r, err := lp.Probe(ctx, fen)
	if err != nil {
		return "", err
	}
	return r.Suggest(), nil
}
