package worker

import (
	"context"
	"fmt"

	"budget/internal/amqp"
	"budget/internal/core"
	applog "budget/internal/log"
	"budget/internal/storage"
)

// Source is where the authoritative history is read from. storage.Store
// satisfies it.
type Source interface {
	Load(ctx context.Context) (storage.Snapshot, error)
}

// Archive receives full copies of the history. storage.SQLiteArchive
// satisfies it.
type Archive interface {
	Replace(ctx context.Context, expenses []core.Expense) error
	Count(ctx context.Context) (int, error)
}

// ArchiveWorker keeps an archive in step with the JSON store. Every sync is a
// full replace, matching how the store itself is written.
type ArchiveWorker struct {
	source  Source
	archive Archive
	logger  *applog.Logger
}

func NewArchiveWorker(source Source, archive Archive, logger *applog.Logger) *ArchiveWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &ArchiveWorker{
		source:  source,
		archive: archive,
		logger:  logger.WithComponent(applog.ComponentArchive),
	}
}

// Sync replaces the archive with the current store content and returns the
// number of archived rows.
func (w *ArchiveWorker) Sync(ctx context.Context) (int, error) {
	snap, err := w.source.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load expenses: %w", err)
	}
	if snap.Warning != nil {
		w.logger.WarnContext(ctx, "Archiving after store reset",
			applog.NewFields().WithError(snap.Warning).WithOperation(applog.OpExport).ToSlice()...)
	}

	if err := w.archive.Replace(ctx, snap.Expenses); err != nil {
		return 0, fmt.Errorf("replace archive: %w", err)
	}
	n, err := w.archive.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n != len(snap.Expenses) {
		return n, fmt.Errorf("archive holds %d rows, store has %d", n, len(snap.Expenses))
	}
	return n, nil
}

// HandleExpenseAdded processes a single expense.added message from AMQP.
// The message only signals that the store changed; the store is re-read so
// the archive never drifts from it.
func (w *ArchiveWorker) HandleExpenseAdded(ctx context.Context, msg *amqp.ExpenseAddedMessage) error {
	e := msg.Expense()
	w.logger.InfoContext(ctx, "Processing expense event",
		applog.NewFields().
			WithExpense(e.Amount.String(), e.Category.String(), e.Date.String()).
			WithOperation(applog.OpConsume).
			ToSlice()...)

	n, err := w.Sync(ctx)
	if err != nil {
		return fmt.Errorf("sync archive: %w", err)
	}
	w.logger.DebugContext(ctx, "Archive refreshed", applog.NewFields().WithCount(n).ToSlice()...)
	return nil
}

// StartupSyncCheck brings the archive up to date when it has fallen behind,
// which happens when events were missed while the worker was down.
func (w *ArchiveWorker) StartupSyncCheck(ctx context.Context) error {
	snap, err := w.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load expenses for startup check: %w", err)
	}
	archived, err := w.archive.Count(ctx)
	if err != nil {
		return fmt.Errorf("count archived expenses: %w", err)
	}

	if archived == len(snap.Expenses) {
		w.logger.InfoContext(ctx, "Archive up to date on startup", applog.NewFields().WithCount(archived).ToSlice()...)
		return nil
	}

	w.logger.InfoContext(ctx, "Archive out of date on startup, syncing",
		"archived", archived,
		"stored", len(snap.Expenses))
	_, err = w.Sync(ctx)
	return err
}
