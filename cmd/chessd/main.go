package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/chessrules/internal/book"
	"github.com/hailam/chessrules/internal/hint"
	"github.com/hailam/chessrules/internal/server"
	"github.com/hailam/chessrules/internal/storage"
	"github.com/hailam/chessrules/internal/tablebase"
	"github.com/hailam/chessrules/internal/uci"
)

const (
	shutdownTimeout = 10 * time.Second
	// tablebaseCacheSize is the number of probe results kept in memory.
	tablebaseCacheSize = 10_000
)

var (
	addr        = flag.String("addr", "", "listen address (CHESSD_ADDR, default :3000)")
	dataDir     = flag.String("data", "", "data directory (CHESSD_DATA, default platform data dir)")
	bookPath    = flag.String("book", "", "path to a Polyglot opening book used for hints (CHESSD_BOOK)")
	enginePath  = flag.String("engine", "", "path to a UCI engine used for hints (CHESSD_ENGINE)")
	moveTime    = flag.Duration("movetime", 0, "engine think time per hint (CHESSD_MOVETIME, default 500ms)")
	useTB       = flag.Bool("tablebase", false, "consult the Lichess tablebase for hints (CHESSD_TABLEBASE)")
	logLevel    = flag.String("log-level", "", "debug, info, warn or error (CHESSD_LOG_LEVEL, default info)")
	corsOrigins = flag.String("cors-origins", "", "allowed CORS origins (CHESSD_CORS_ORIGINS, default *)")
)

// setting returns the flag value, then the environment variable, then def.
func setting(flagValue, env, def string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	return def
}

func main() {
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "chessd",
	})
	level, err := log.ParseLevel(setting(*logLevel, "CHESSD_LOG_LEVEL", "info"))
	if err != nil {
		logger.Fatal("invalid log level", "err", err)
	}
	logger.SetLevel(level)

	if err := run(logger); err != nil {
		logger.Fatal("exit", "err", err)
	}
}

func run(logger *log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbDir, err := storage.GetDatabaseDir(setting(*dataDir, "CHESSD_DATA", ""))
	if err != nil {
		return err
	}
	store, err := storage.Open(dbDir)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info("storage opened", "dir", dbDir)

	suggesters, cleanup, err := buildSuggesters(ctx, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := server.New(server.Config{
		CORSOrigins: setting(*corsOrigins, "CHESSD_CORS_ORIGINS", "*"),
	}, store, hint.New(logger.WithPrefix("hint"), suggesters...), logger.WithPrefix("http"))

	listen := setting(*addr, "CHESSD_ADDR", ":3000")
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Listen(listen)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

// buildSuggesters assembles the hint sources in the order they are asked:
// opening book, tablebase, engine.
func buildSuggesters(ctx context.Context, logger *log.Logger) ([]hint.Named, func(), error) {
	var (
		suggesters []hint.Named
		closers    []func()
	)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if path := setting(*bookPath, "CHESSD_BOOK", ""); path != "" {
		bk, err := book.Load(path)
		if err != nil {
			return nil, nil, err
		}
		suggesters = append(suggesters, hint.Named{Name: "book", Suggester: bk})
		logger.Info("opening book loaded", "path", path, "positions", bk.Size())
	}

	tbEnabled := *useTB
	if !tbEnabled {
		tbEnabled, _ = strconv.ParseBool(os.Getenv("CHESSD_TABLEBASE"))
	}
	if tbEnabled {
		tbLogger := logger.WithPrefix("tablebase")
		cached, err := tablebase.NewCachedProber(tablebase.NewLichessProber("", tbLogger), tablebaseCacheSize)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() {
			tbLogger.Debug("cache closed", "hit_rate", cached.HitRate())
			cached.Close()
		})
		suggesters = append(suggesters, hint.Named{Name: "tablebase", Suggester: cached})
		logger.Info("tablebase hints enabled", "url", tablebase.DefaultLichessURL)
	}

	if path := setting(*enginePath, "CHESSD_ENGINE", ""); path != "" {
		mt := *moveTime
		if mt == 0 {
			var err error
			if mt, err = time.ParseDuration(setting("", "CHESSD_MOVETIME", "500ms")); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("invalid CHESSD_MOVETIME: %w", err)
			}
		}

		hctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		eng, err := uci.Start(hctx, path, uci.GoOptions{MoveTime: mt}, logger.WithPrefix("engine"))
		cancel()
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, func() { eng.Close() })
		name := eng.Name
		if name == "" {
			name = "engine"
		}
		suggesters = append(suggesters, hint.Named{Name: name, Suggester: eng})
		logger.Info("engine hints enabled", "engine", eng.Name, "movetime", mt)
	}

	if len(suggesters) == 0 {
		logger.Warn("no hint source configured, hints disabled")
	}
	return suggesters, cleanup, nil
}
