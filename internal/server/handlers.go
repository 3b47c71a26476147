package server

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/hint"
	"github.com/hailam/chessrules/internal/storage"
)

// parseBody decodes an optional JSON body into v.
func parseBody(c *fiber.Ctx, v any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed request body")
	}
	return nil
}

func (s *Server) game(c *fiber.Ctx) (*Game, error) {
	return s.games.Get(c.Params("id"))
}

func (s *Server) createGame(c *fiber.Ctx) error {
	var req createRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	b := board.NewBoard()
	if fen := strings.TrimSpace(req.FEN); fen != "" {
		var err error
		if b, err = board.ParseFEN(fen); err != nil {
			return err
		}
	}

	g := s.games.Create(b)
	s.logger.Info("game created", "id", g.ID, "fen", b.FEN())
	return c.Status(fiber.StatusCreated).JSON(gameResponse{ID: g.ID, State: g.State()})
}

func (s *Server) getGame(c *fiber.Ctx) error {
	g, err := s.game(c)
	if err != nil {
		return err
	}
	return c.JSON(g.State())
}

func (s *Server) deleteGame(c *fiber.Ctx) error {
	if err := s.games.Delete(c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) listMoves(c *fiber.Ctx) error {
	g, err := s.game(c)
	if err != nil {
		return err
	}

	var from *board.Position
	if q := c.Query("from"); q != "" {
		p, err := board.ParsePosition(q)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		from = &p
	}

	b := g.Snapshot()
	moves := []MoveView{}
	for _, m := range b.LegalMoves() {
		if from != nil && m.From != *from {
			continue
		}
		moves = append(moves, MoveView{
			From: m.From.String(),
			To:   m.To.String(),
			UCI:  m.LongAlgebraic(),
			SAN:  b.SAN(m),
		})
	}
	return c.JSON(moves)
}

// moveText reads a {"move"} or {"san"} body.
func moveText(c *fiber.Ctx) (text string, san bool, err error) {
	var req moveRequest
	if err := parseBody(c, &req); err != nil {
		return "", false, err
	}
	if req.Move != "" {
		return req.Move, false, nil
	}
	if req.SAN != "" {
		return req.SAN, true, nil
	}
	return "", false, fiber.NewError(fiber.StatusBadRequest, "move or san is required")
}

func (s *Server) makeMove(c *fiber.Ctx) error {
	g, err := s.game(c)
	if err != nil {
		return err
	}

	text, san, err := moveText(c)
	if err != nil {
		return err
	}

	state, done, err := g.Play(text, san)
	if err != nil {
		return err
	}
	s.logger.Debug("move", "id", g.ID, "move", text, "fen", state.FEN)
	if done {
		s.recordResult(g)
	}
	return c.JSON(state)
}

func (s *Server) resign(c *fiber.Ctx) error {
	g, err := s.game(c)
	if err != nil {
		return err
	}

	var req resignRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	color, err := board.ParseColor(req.Color)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	state, err := g.Resign(color)
	if err != nil {
		return err
	}
	s.logger.Info("resignation", "id", g.ID, "color", color)
	s.recordResult(g)
	return c.JSON(state)
}

// recordResult stores the outcome of a finished game in the statistics.
func (s *Server) recordResult(g *Game) {
	result := g.Result()
	s.logger.Info("game over", "id", g.ID, "outcome", result.Outcome, "resigned", result.Resigned)
	if s.store == nil {
		return
	}
	if err := s.store.RecordGame(result); err != nil {
		s.logger.Error("record result", "id", g.ID, "err", err)
	}
}

func (s *Server) hint(c *fiber.Ctx) error {
	g, err := s.game(c)
	if err != nil {
		return err
	}
	if !s.hints.Enabled() {
		return ErrUnavailable
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), s.cfg.HintTimeout)
	defer cancel()

	m, err := s.hints.Hint(ctx, g.Snapshot())
	if errors.Is(err, hint.ErrNoMove) {
		return c.SendStatus(fiber.StatusNoContent)
	}
	if err != nil {
		return err
	}
	return c.JSON(hintResponse{Move: m.LongAlgebraic(), SAN: m.SAN})
}

func (s *Server) analyze(c *fiber.Ctx) error {
	g, err := s.game(c)
	if err != nil {
		return err
	}
	text, san, err := moveText(c)
	if err != nil {
		return err
	}
	m, snapshot, err := g.Candidate(text, san)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), s.cfg.HintTimeout)
	defer cancel()

	a, err := s.hints.Analyze(ctx, snapshot, m)
	if errors.Is(err, hint.ErrNoMove) {
		return c.SendStatus(fiber.StatusNoContent)
	}
	if err != nil {
		return err
	}
	return c.JSON(analysisResponse{
		Move:    a.Played.LongAlgebraic(),
		SAN:     a.Played.SAN,
		Best:    a.Best.LongAlgebraic(),
		BestSAN: a.Best.SAN,
		IsBest:  a.IsBest,
		ScoreCP: a.ScoreCP,
		Mate:    a.Mate,
		Depth:   a.Depth,
		PV:      a.PV,
	})
}

func (s *Server) gamePGN(c *fiber.Ctx) error {
	g, err := s.game(c)
	if err != nil {
		return err
	}
	pgn, err := g.PGN()
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, pgnContentType)
	return c.SendString(pgn)
}

func (s *Server) requireStore() error {
	if s.store == nil {
		return ErrUnavailable
	}
	return nil
}

func (s *Server) saveGame(c *fiber.Ctx) error {
	if err := s.requireStore(); err != nil {
		return err
	}
	g, err := s.game(c)
	if err != nil {
		return err
	}

	var req saveRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	st := g.State()
	rec := &storage.SaveRecord{
		Name:     req.Name,
		FEN:      st.FEN,
		StartFEN: g.StartFEN(),
		History:  st.History,
		Status:   st.Status,
		Result:   g.PGNResult(),
	}
	if err := s.store.SaveGame(rec); err != nil {
		return err
	}
	s.logger.Info("game saved", "id", g.ID, "name", rec.Name)
	return c.Status(fiber.StatusCreated).JSON(rec)
}

func (s *Server) listSaves(c *fiber.Ctx) error {
	if err := s.requireStore(); err != nil {
		return err
	}
	list, err := s.store.ListGames()
	if err != nil {
		return err
	}
	if list == nil {
		list = []storage.SaveRecord{}
	}
	return c.JSON(list)
}

func (s *Server) getSave(c *fiber.Ctx) error {
	if err := s.requireStore(); err != nil {
		return err
	}
	rec, err := s.store.LoadGame(c.Params("name"))
	if err != nil {
		return err
	}
	return c.JSON(rec)
}

func (s *Server) savePGN(c *fiber.Ctx) error {
	if err := s.requireStore(); err != nil {
		return err
	}
	rec, err := s.store.LoadGame(c.Params("name"))
	if err != nil {
		return err
	}
	pgn, err := rec.PGN()
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, pgnContentType)
	return c.SendString(pgn)
}

func (s *Server) loadSave(c *fiber.Ctx) error {
	if err := s.requireStore(); err != nil {
		return err
	}
	rec, err := s.store.LoadGame(c.Params("name"))
	if err != nil {
		return err
	}
	b, err := rec.Board()
	if err != nil {
		return err
	}

	g := s.games.Create(b)
	s.logger.Info("game loaded", "id", g.ID, "name", rec.Name)
	return c.Status(fiber.StatusCreated).JSON(gameResponse{ID: g.ID, State: g.State()})
}

func (s *Server) deleteSave(c *fiber.Ctx) error {
	if err := s.requireStore(); err != nil {
		return err
	}
	if err := s.store.DeleteGame(c.Params("name")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) stats(c *fiber.Ctx) error {
	if err := s.requireStore(); err != nil {
		return err
	}
	st, err := s.store.LoadStats()
	if err != nil {
		return err
	}
	return c.JSON(st)
}
