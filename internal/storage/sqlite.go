package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"budget/internal/analytics"
	"budget/internal/core"
	applog "budget/internal/log"

	_ "modernc.org/sqlite"
)

// SQLiteArchive mirrors the JSON store into a SQLite database so the history
// can be queried with ordinary SQL tools. The JSON file stays authoritative.
type SQLiteArchive struct {
	db     *sql.DB
	logger *applog.Logger
}

func NewSQLiteArchive(dbPath string, logger *applog.Logger) (*SQLiteArchive, error) {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteArchive{
		db:     db,
		logger: logger.WithComponent(applog.ComponentArchive),
	}, nil
}

func (a *SQLiteArchive) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// Replace swaps the archived rows for expenses in one transaction.
func (a *SQLiteArchive) Replace(ctx context.Context, expenses []core.Expense) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM expenses`); err != nil {
		return fmt.Errorf("clear expenses: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO expenses (position, amount, category, expense_date) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range expenses {
		if _, err := stmt.ExecContext(ctx, i, e.Amount.String(), string(e.Category), e.Date.String()); err != nil {
			return fmt.Errorf("insert expense %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	a.logger.InfoContext(ctx, "Expenses archived",
		applog.NewFields().WithCount(len(expenses)).WithOperation(applog.OpExport).ToSlice()...)
	return nil
}

// List returns the archived expenses in their original order.
func (a *SQLiteArchive) List(ctx context.Context) ([]core.Expense, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT amount, category, expense_date FROM expenses ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	expenses := []core.Expense{}
	for rows.Next() {
		var amount, category, date string
		if err := rows.Scan(&amount, &category, &date); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		// Rows hold the store's text as is; text that is not a number or a
		// date reads back as zero.
		d, err := decimal.NewFromString(amount)
		if err != nil {
			d = decimal.Zero
		}
		parsed, err := core.ParseDate(date)
		if err != nil {
			parsed = core.Date{}
		}
		expenses = append(expenses, core.Expense{
			Amount:   core.NewAmount(d),
			Category: core.Category(category),
			Date:     parsed,
		})
	}
	return expenses, rows.Err()
}

// Count returns the number of archived rows.
func (a *SQLiteArchive) Count(ctx context.Context) (int, error) {
	var n int
	if err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM expenses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count expenses: %w", err)
	}
	return n, nil
}

// CategoryTotals aggregates the archived rows per category. Amounts are
// stored as text, so the sum is done in decimal rather than by SQLite.
func (a *SQLiteArchive) CategoryTotals(ctx context.Context) ([]core.CategoryTotal, error) {
	expenses, err := a.List(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.TotalsByCategory(expenses), nil
}
