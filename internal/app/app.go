package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/jonboulle/clockwork"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"go.uber.org/fx"

	"github.com/orgball2608/stories-engine/internal/media"
	"github.com/orgball2608/stories-engine/internal/media/mediaimpl"
	_ "github.com/orgball2608/stories-engine/internal/migrations"
	"github.com/orgball2608/stories-engine/internal/navigator"
	"github.com/orgball2608/stories-engine/internal/navigator/navigatorimpl"
	"github.com/orgball2608/stories-engine/internal/player"
	"github.com/orgball2608/stories-engine/internal/recorder"
	"github.com/orgball2608/stories-engine/internal/recorder/recorderimpl"
	"github.com/orgball2608/stories-engine/internal/reels"
	"github.com/orgball2608/stories-engine/internal/reels/reelsimpl"
	repositories "github.com/orgball2608/stories-engine/internal/repositories/fx"
	"github.com/orgball2608/stories-engine/pkg/config"
	"github.com/orgball2608/stories-engine/pkg/logger"
	"github.com/orgball2608/stories-engine/pkg/pgx"
)

var Module = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
		pgx.New,
		clockwork.NewRealClock,
	),
	fx.Provide(
		fx.Annotate(
			reelsimpl.New,
			fx.As(new(reels.Client)),
		),
		fx.Annotate(
			recorderimpl.New,
			fx.As(new(recorder.Client)),
		),
		fx.Annotate(
			mediaimpl.New,
			fx.As(new(media.Resolver)),
		),
		fx.Annotate(
			navigatorimpl.New,
			fx.As(new(navigator.Client)),
		),
		player.New,
	),
	repositories.Module,
	fx.Invoke(runMigrations),
	fx.Invoke(run),
)

func runMigrations(cfg *config.Config) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	// Migrations are registered Go functions; the directory argument only
	// anchors goose's version bookkeeping.
	return goose.Up(db, ".")
}

func run(lc fx.Lifecycle, log logger.Logger, cfg *config.Config, reelsClient reels.Client, _ navigator.Client) {
	sweepCtx, cancelSweep := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go startHttpServer(log, cfg)

			if err := reelsClient.ScheduleExpirySweep(sweepCtx); err != nil {
				log.Error("Failed to schedule expiry sweep", "error", err)
				return err
			}

			return nil
		},
		OnStop: func(context.Context) error {
			cancelSweep()
			return nil
		},
	})
}

func startHttpServer(log logger.Logger, cfg *config.Config) {
	http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		healthCheckHandler(w, r, log)
	})

	log.Info(fmt.Sprintf("Starting server on :%d", cfg.App.Port))

	if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.App.Port), nil); err != nil {
		log.Error("Server failed to start", "error", err)
	}
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request, log logger.Logger) {
	log.Debug("Health check request received", "method", r.Method, "url", r.URL.String())
	w.Header().Set("Content-Type", "text/plain")
	if _, err := w.Write([]byte("ok")); err != nil {
		log.Error("Failed to write response", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
