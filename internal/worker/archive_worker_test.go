package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budget/internal/amqp"
	"budget/internal/core"
	applog "budget/internal/log"
	"budget/internal/storage"
)

type fakeSource struct {
	snap storage.Snapshot
	err  error
}

func (f *fakeSource) Load(context.Context) (storage.Snapshot, error) { return f.snap, f.err }

type fakeArchive struct {
	rows       []core.Expense
	replaces   int
	replaceErr error
}

func (f *fakeArchive) Replace(_ context.Context, expenses []core.Expense) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.replaces++
	f.rows = append([]core.Expense(nil), expenses...)
	return nil
}

func (f *fakeArchive) Count(context.Context) (int, error) { return len(f.rows), nil }

func expenses(n int) []core.Expense {
	out := make([]core.Expense, n)
	for i := range out {
		out[i] = core.Expense{Amount: core.AmountFromFloat(float64(i + 1)), Category: core.Food, Date: core.NewDate(2024, 1, i+1)}
	}
	return out
}

func TestArchiveWorker_Sync(t *testing.T) {
	src := &fakeSource{snap: storage.Snapshot{Expenses: expenses(3)}}
	arc := &fakeArchive{rows: expenses(10)}
	w := NewArchiveWorker(src, arc, applog.Discard())

	n, err := w.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Len(t, arc.rows, 3)
}

func TestArchiveWorker_SyncErrors(t *testing.T) {
	t.Run("load", func(t *testing.T) {
		w := NewArchiveWorker(&fakeSource{err: errors.New("disk")}, &fakeArchive{}, applog.Discard())
		_, err := w.Sync(context.Background())
		assert.ErrorContains(t, err, "load expenses")
	})
	t.Run("replace", func(t *testing.T) {
		arc := &fakeArchive{replaceErr: errors.New("locked")}
		w := NewArchiveWorker(&fakeSource{snap: storage.Snapshot{Expenses: expenses(1)}}, arc, applog.Discard())
		_, err := w.Sync(context.Background())
		assert.ErrorContains(t, err, "replace archive")
	})
}

func TestArchiveWorker_SyncAfterReset(t *testing.T) {
	src := &fakeSource{snap: storage.Snapshot{
		Expenses: []core.Expense{},
		Warning:  fmt.Errorf("%w: bad json", storage.ErrCorrupt),
	}}
	arc := &fakeArchive{rows: expenses(2)}
	w := NewArchiveWorker(src, arc, applog.Discard())

	n, err := w.Sync(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestArchiveWorker_HandleExpenseAdded(t *testing.T) {
	src := &fakeSource{snap: storage.Snapshot{Expenses: expenses(2)}}
	arc := &fakeArchive{}
	w := NewArchiveWorker(src, arc, applog.Discard())

	msg := amqp.NewExpenseAddedMessage(expenses(2)[1])
	require.NoError(t, w.HandleExpenseAdded(context.Background(), msg))
	assert.Equal(t, 1, arc.replaces)
	assert.Len(t, arc.rows, 2)
}

func TestArchiveWorker_StartupSyncCheck(t *testing.T) {
	t.Run("up to date", func(t *testing.T) {
		arc := &fakeArchive{rows: expenses(2)}
		w := NewArchiveWorker(&fakeSource{snap: storage.Snapshot{Expenses: expenses(2)}}, arc, applog.Discard())
		require.NoError(t, w.StartupSyncCheck(context.Background()))
		assert.Zero(t, arc.replaces)
	})
	t.Run("behind", func(t *testing.T) {
		arc := &fakeArchive{rows: expenses(1)}
		w := NewArchiveWorker(&fakeSource{snap: storage.Snapshot{Expenses: expenses(4)}}, arc, applog.Discard())
		require.NoError(t, w.StartupSyncCheck(context.Background()))
		assert.Equal(t, 1, arc.replaces)
		assert.Len(t, arc.rows, 4)
	})
}
