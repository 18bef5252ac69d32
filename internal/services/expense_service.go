package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"budget/internal/analytics"
	"budget/internal/core"
	applog "budget/internal/log"
	"budget/internal/metrics"
	"budget/internal/storage"
)

// Repository is the persistence the service needs. storage.Store satisfies it.
type Repository interface {
	Load(ctx context.Context) (storage.Snapshot, error)
	Save(ctx context.Context, expenses []core.Expense) error
}

// Publisher announces appended expenses. It is optional.
type Publisher interface {
	PublishExpenseAdded(ctx context.Context, e core.Expense) error
}

// Listing is the expense history view.
type Listing struct {
	Expenses []core.Expense
	Table    core.Table
	Warning  error
}

// Report is the analytics view, optionally restricted to one month.
type Report struct {
	Summary core.Summary
	Month   *time.Time
	Warning error
}

// ExpenseService validates and appends expenses and derives views from the
// store. It reloads the store on every call and keeps no state between calls.
type ExpenseService struct {
	repo      Repository
	publisher Publisher
	logger    *applog.Logger

	// mu is held across load, append and save so concurrent adds in one
	// process are never lost.
	mu sync.Mutex
}

func NewExpenseService(repo Repository, publisher Publisher, logger *applog.Logger) *ExpenseService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &ExpenseService{
		repo:      repo,
		publisher: publisher,
		logger:    logger.WithComponent(applog.ComponentExpense),
	}
}

// Add validates the input and, only if it is valid, appends it to the store.
func (s *ExpenseService) Add(ctx context.Context, amount core.Amount, category core.Category, date core.Date) (core.Expense, error) {
	e := core.Expense{Amount: amount, Category: category, Date: date}
	if err := e.Validate(); err != nil {
		metrics.ExpensesRejected.WithLabelValues(rejectReason(err)).Inc()
		return core.Expense{}, err
	}

	expenses, err := s.appendLocked(ctx, e)
	if err != nil {
		return core.Expense{}, err
	}
	metrics.ExpensesAdded.Inc()

	s.logger.InfoContext(ctx, "Expense added",
		applog.NewFields().
			WithExpense(e.Amount.String(), e.Category.String(), e.Date.String()).
			WithCount(len(expenses)).
			WithOperation(applog.OpAppend).
			ToSlice()...)

	s.publish(ctx, e)
	return e, nil
}

func (s *ExpenseService) appendLocked(ctx context.Context, e core.Expense) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}

	expenses := append(snap.Expenses, e)
	if err := s.repo.Save(ctx, expenses); err != nil {
		return nil, fmt.Errorf("save expense: %w", err)
	}
	return expenses, nil
}

func (s *ExpenseService) publish(ctx context.Context, e core.Expense) {
	if s.publisher == nil {
		return
	}
	// The expense is already stored; a failed notification is logged only.
	if err := s.publisher.PublishExpenseAdded(ctx, e); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish expense event",
			applog.NewFields().WithError(err).WithOperation(applog.OpPublish).ToSlice()...)
	}
}

// List returns the full history in entry order.
func (s *ExpenseService) List(ctx context.Context) (Listing, error) {
	snap, err := s.repo.Load(ctx)
	if err != nil {
		return Listing{}, fmt.Errorf("load expenses: %w", err)
	}
	return Listing{
		Expenses: snap.Expenses,
		Table:    analytics.AsTable(snap.Expenses),
		Warning:  snap.Warning,
	}, nil
}

// Summary computes the dashboard analytics. A non-nil month restricts the
// input to that calendar month.
func (s *ExpenseService) Summary(ctx context.Context, month *time.Time) (Report, error) {
	snap, err := s.repo.Load(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("load expenses: %w", err)
	}
	expenses := snap.Expenses
	if month != nil {
		expenses = analytics.ForMonth(expenses, *month)
	}
	return Report{
		Summary: analytics.Summarize(expenses),
		Month:   month,
		Warning: snap.Warning,
	}, nil
}

// Close releases the publisher if it holds resources.
func (s *ExpenseService) Close() error {
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close publisher: %w", err)
		}
	}
	return nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		return "amount"
	case errors.Is(err, core.ErrInvalidCategory):
		return "category"
	case errors.Is(err, core.ErrInvalidDate):
		return "date"
	default:
		return "other"
	}
}
