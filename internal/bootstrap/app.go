package bootstrap

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"syllabuscal/internal/bootstrap/config"
	"syllabuscal/internal/bootstrap/logging"
	"syllabuscal/internal/errs"
	"syllabuscal/internal/infrastructure/persistence/sqlite/model"
)

// App is the resolved configuration plus the open database handle. The fx
// lifecycle owns closing the handle.
type App struct {
	Config config.Config
	DB     *gorm.DB
}

// InitSchema creates or upgrades the events, uploads and kv tables.
func (a *App) InitSchema(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if a.DB == nil {
		return errors.New("database is not open")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.app"))
	models := model.All()
	logging.Debug(logCtx, "start schema migration", slog.Int("tables", len(models)))

	if err := a.DB.WithContext(ctx).AutoMigrate(models...); err != nil {
		return errs.Wrap(err, "auto migrate schema")
	}

	logging.Info(logCtx, "schema migration completed", slog.String("dsn", a.Config.Database.DSN))
	return nil
}
