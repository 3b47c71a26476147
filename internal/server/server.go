// Package server exposes games over an HTTP JSON API.
package server

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/hint"
	"github.com/hailam/chessrules/internal/storage"
)

// ErrUnavailable is returned when a feature's backing service is not configured.
var ErrUnavailable = errors.New("service unavailable")

// Config holds server settings.
type Config struct {
	AppName     string
	CORSOrigins string
	HintTimeout time.Duration
}

// Server routes HTTP requests to games.
type Server struct {
	app    *fiber.App
	cfg    Config
	games  *Manager
	store  *storage.Storage
	hints  *hint.Service
	logger *log.Logger
}

// New builds the server. store and hints may be nil, which disables saves
// and hints respectively.
func New(cfg Config, store *storage.Storage, hints *hint.Service, logger *log.Logger) *Server {
	if cfg.AppName == "" {
		cfg.AppName = "chessd"
	}
	if cfg.CORSOrigins == "" {
		cfg.CORSOrigins = "*"
	}
	if cfg.HintTimeout <= 0 {
		cfg.HintTimeout = 5 * time.Second
	}
	if hints == nil {
		hints = hint.New(logger)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	s := &Server{
		cfg:    cfg,
		games:  NewManager(),
		store:  store,
		hints:  hints,
		logger: logger,
	}
	s.app = fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		ErrorHandler:          s.handleError,
		DisableStartupMessage: true,
	})
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Use(recover.New())
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: s.cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))
	s.app.Use(s.logRequests)

	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	api := s.app.Group("/api")

	games := api.Group("/games")
	games.Post("/", s.createGame)
	games.Get("/:id", s.getGame)
	games.Delete("/:id", s.deleteGame)
	games.Get("/:id/moves", s.listMoves)
	games.Post("/:id/moves", s.makeMove)
	games.Post("/:id/resign", s.resign)
	games.Get("/:id/hint", s.hint)
	games.Post("/:id/analyze", s.analyze)
	games.Get("/:id/pgn", s.gamePGN)
	games.Post("/:id/save", s.saveGame)

	saves := api.Group("/saves")
	saves.Get("/", s.listSaves)
	saves.Get("/:name", s.getSave)
	saves.Get("/:name/pgn", s.savePGN)
	saves.Post("/:name/load", s.loadSave)
	saves.Delete("/:name", s.deleteSave)

	api.Get("/stats", s.stats)
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.logger.Debug("request", "method", c.Method(), "path", c.Path(), "took", time.Since(start), "err", err)
	return err
}

// handleError maps domain errors to status codes and a JSON body.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.Is(err, ErrGameNotFound), errors.Is(err, storage.ErrNotFound):
		code = fiber.StatusNotFound
	case errors.Is(err, ErrGameOver):
		code = fiber.StatusConflict
	case errors.Is(err, ErrIllegalMove), errors.Is(err, board.ErrInvalidMove):
		code = fiber.StatusUnprocessableEntity
	case errors.Is(err, board.ErrInvalidFEN), errors.Is(err, storage.ErrInvalidName):
		code = fiber.StatusBadRequest
	case errors.Is(err, ErrUnavailable), errors.Is(err, hint.ErrNoSuggestion), errors.Is(err, hint.ErrNoEvaluator):
		code = fiber.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		code = fiber.StatusGatewayTimeout
	}

	if code >= fiber.StatusInternalServerError {
		s.logger.Error("request failed", "method", c.Method(), "path", c.Path(), "status", code, "err", err)
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Games returns the game registry.
func (s *Server) Games() *Manager {
	return s.games
}

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.logger.Info("listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for open requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
