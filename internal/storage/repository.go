// Package storage is the SQLite-backed repository for savings and
// transactions.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"nabungemas/internal/core"
	"nabungemas/internal/log"
	"nabungemas/internal/ports"

	_ "modernc.org/sqlite"
)

// ErrNotFound is the shared not-found sentinel.
var ErrNotFound = ports.ErrNotFound

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	logger  *slog.Logger
}

var _ ports.Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer keeps SQLite from returning SQLITE_BUSY inside transactions.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		logger:  slog.Default().With(log.FieldComponent, log.ComponentStorage),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) ListSavings(ctx context.Context) ([]core.Saving, error) {
	rows, err := r.queries.ListSavings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list savings: %w", err)
	}
	out := make([]core.Saving, 0, len(rows))
	for _, s := range rows {
		out = append(out, core.Saving{
			Category:    s.Category,
			Target:      core.Rupiah(s.Target),
			TotalSaving: core.Rupiah(s.TotalSaving),
		})
	}
	return out, nil
}

func (r *SQLiteRepository) UpsertSaving(ctx context.Context, s core.Saving) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("upsert saving: %w", err)
	}
	if err := r.queries.UpsertSavingTarget(ctx, s.Category, int64(s.Target)); err != nil {
		return fmt.Errorf("upsert saving %q: %w", s.Category, err)
	}
	r.logger.InfoContext(ctx, "Saving stored",
		log.FieldSavingCategory, s.Category,
		log.FieldTarget, int64(s.Target))
	return nil
}

func (r *SQLiteRepository) DeleteSaving(ctx context.Context, category string) error {
	n, err := r.queries.DeleteSaving(ctx, category)
	if err != nil {
		return fmt.Errorf("delete saving %q: %w", category, err)
	}
	if n == 0 {
		return fmt.Errorf("delete saving %q: %w", category, ErrNotFound)
	}
	r.logger.InfoContext(ctx, "Saving deleted", log.FieldSavingCategory, category)
	return nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := toCore(row)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return toCore(row)
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}

	var id int64
	err := r.inTx(ctx, func(q *Queries) error {
		var err error
		id, err = q.CreateTransaction(ctx, CreateTransactionParams{
			Time:           t.Time,
			SavingCategory: t.SavingCategory,
			GoldPrice:      int64(t.GoldPrice),
			GoldQuantity:   t.GoldQuantity.String(),
			Product:        t.Product,
		})
		if err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		if err := q.AddToSavingTotal(ctx, t.SavingCategory, int64(t.Value())); err != nil {
			return fmt.Errorf("update saving total: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}

	r.logger.InfoContext(ctx, "Transaction saved",
		log.NewFields().
			WithTransaction(id, t.SavingCategory, t.GoldPrice.String(), t.GoldQuantity.String(), t.Product).
			ToSlice()...)
	return id, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	err := r.inTx(ctx, func(q *Queries) error {
		row, err := q.GetTransaction(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		t, err := toCore(row)
		if err != nil {
			return err
		}
		if err := q.DeleteTransaction(ctx, id); err != nil {
			return err
		}
		return q.SubtractFromSavingTotal(ctx, t.SavingCategory, int64(t.Value()))
	})
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	r.logger.InfoContext(ctx, "Transaction deleted", log.FieldTransactionID, id)
	return nil
}

func (r *SQLiteRepository) inTx(ctx context.Context, fn func(*Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(r.queries.WithTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func toCore(row Transaction) (core.Transaction, error) {
	qty, err := core.ParseGrams(row.GoldQuantity)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: stored quantity %q: %w", row.ID, row.GoldQuantity, err)
	}
	return core.Transaction{
		ID:             row.ID,
		Time:           row.Time,
		SavingCategory: row.SavingCategory,
		GoldPrice:      core.Rupiah(row.GoldPrice),
		GoldQuantity:   qty,
		Product:        row.Product,
	}, nil
}
