package uow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"syllabuscal/internal/bootstrap/logging"
	"syllabuscal/internal/ports"
)

// UnitOfWork opens gorm transactions and hands them to repositories through
// the context.
type UnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// WithTx commits when fn returns nil. If ctx already carries a transaction,
// fn joins it and the outer call decides commit or rollback.
func (u *UnitOfWork) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if fn == nil {
		return errors.New("transaction func is required")
	}
	if tx := ports.TxFromContext(ctx); tx != nil {
		if _, ok := tx.(*gorm.DB); !ok {
			return fmt.Errorf("invalid tx in context: %T", tx)
		}
		return fn(ctx)
	}

	started := time.Now()
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ports.WithTxContext(ctx, tx))
	})
	if err != nil {
		logging.Debug(
			logging.WithAttrs(ctx, slog.String("component", "sqlite.uow")),
			"transaction rolled back",
			slog.Duration("elapsed", time.Since(started)),
		)
		return err
	}
	return nil
}
