package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"syllabuscal/internal/bootstrap/config"
	"syllabuscal/internal/bootstrap/database"
	"syllabuscal/internal/bootstrap/logging"
	"syllabuscal/internal/errs"
	cacheinfra "syllabuscal/internal/infrastructure/cache"
	"syllabuscal/internal/infrastructure/doctext"
	"syllabuscal/internal/infrastructure/fetch"
	sqliterepo "syllabuscal/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "syllabuscal/internal/infrastructure/persistence/sqlite/uow"
	"syllabuscal/internal/infrastructure/understanding"
	"syllabuscal/internal/ports"
	"syllabuscal/internal/usecase/syllabus"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(sqliterepo.NewEventRepository),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			cacheinfra.NewSQLiteCache,
			fx.As(new(ports.Cache)),
		),
	),
	fx.Provide(provideFetcher),
	fx.Provide(provideTextExtractor),
	fx.Provide(provideUnderstander),
	fx.Provide(provideSyllabusService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(lc fx.Lifecycle, cfg config.Config, db *gorm.DB) *App {
	app := &App{
		Config: cfg,
		DB:     db,
	}
	if cfg.Database.AutoMigrate {
		lc.Append(fx.Hook{
			OnStart: app.InitSchema,
		})
	}
	return app
}

func provideFetcher(cfg config.Config) ports.DocumentFetcher {
	return fetch.NewHTTPFetcher(cfg.Fetch.Timeout, cfg.Fetch.MaxBytes)
}

// LocalDocuments lets the fetcher read file:// references. Commands that take
// a local path opt in; the HTTP server never does.
var LocalDocuments = fx.Decorate(func(_ ports.DocumentFetcher, cfg config.Config) ports.DocumentFetcher {
	return fetch.NewHTTPFetcher(cfg.Fetch.Timeout, cfg.Fetch.MaxBytes, fetch.WithLocalFiles())
})

func provideTextExtractor(cfg config.Config) ports.TextExtractor {
	return doctext.NewExtractor(cfg.Extraction.MinTextRunes)
}

// provideUnderstander never fails: commands that only read or delete events
// must work without extraction credentials.
func provideUnderstander(ctx context.Context, cfg config.Config) ports.Understander {
	understander, err := understanding.New(understanding.Options{
		Provider:    cfg.Extraction.Provider,
		APIKey:      cfg.Extraction.APIKey,
		BaseURL:     cfg.Extraction.BaseURL,
		Model:       cfg.Extraction.Model,
		PromptFile:  cfg.Extraction.PromptFile,
		FixtureFile: cfg.Extraction.FixtureFile,
	})
	if err != nil {
		logging.Warn(
			logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx")),
			"extraction disabled",
			slog.Any("err", errs.Loggable(err)),
		)
		return understanding.Unavailable(err)
	}
	return understander
}

type serviceParams struct {
	fx.In

	Config       config.Config
	Repo         *sqliterepo.EventRepository
	UnitOfWork   ports.UnitOfWork
	Cache        ports.Cache
	Fetcher      ports.DocumentFetcher
	Text         ports.TextExtractor
	Understander ports.Understander
}

func provideSyllabusService(p serviceParams) *syllabus.Service {
	return syllabus.NewService(syllabus.Dependencies{
		Events:       p.Repo,
		Uploads:      p.Repo,
		UnitOfWork:   p.UnitOfWork,
		Cache:        p.Cache,
		Fetcher:      p.Fetcher,
		Text:         p.Text,
		Understander: p.Understander,
	}, syllabus.Options{
		ExtractionTimeout: p.Config.Extraction.Timeout,
		CacheTTL:          p.Config.Extraction.CacheTTL,
		MinTextRunes:      p.Config.Extraction.MinTextRunes,
		MaxMarks:          p.Config.Calendar.MaxMarks,
	})
}
