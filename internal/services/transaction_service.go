// Package services orchestrates the transaction store, the query pipeline,
// and event publishing behind a single API the handlers call.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"moneywise/internal/amqp"
	"moneywise/internal/core"
	"moneywise/internal/log"
	"moneywise/internal/store"
)

// EventPublisher pushes mutation events to the broker. *amqp.Client satisfies
// it; a nil publisher disables events.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event *amqp.TransactionEvent) error
	Close() error
}

// Report is the dashboard payload for one period.
type Report struct {
	Period     core.Period               `json:"period"`
	Summary    core.Summary              `json:"summary"`
	Month      core.Summary              `json:"month"`
	Categories []core.CategoryStat       `json:"categories"`
	Months     map[string]core.MonthStat `json:"months"`
	Trend      core.TrendReport          `json:"trend"`
	Recent     []core.Transaction        `json:"recent"`
	Top        []core.Transaction        `json:"top"`
}

// TransactionService orchestrates transaction operations across the store
// and AMQP.
type TransactionService struct {
	store     *store.Store
	publisher EventPublisher
}

func NewTransactionService(store *store.Store, publisher EventPublisher) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
	}
}

// List runs the query pipeline over the current snapshot.
func (s *TransactionService) List(q core.Query) core.Page {
	return q.Apply(s.store.GetAll())
}

// Get returns a single transaction by ID.
func (s *TransactionService) Get(id string) (core.Transaction, error) {
	return s.store.GetByID(id)
}

// Create stores a new transaction and publishes a created event. A persist
// failure is passed through alongside the record so the caller can decide
// whether to surface it as a warning.
func (s *TransactionService) Create(ctx context.Context, d core.Draft) (core.Transaction, error) {
	txn, err := s.store.Create(ctx, d)
	if err != nil && txn.ID == "" {
		return core.Transaction{}, err
	}

	s.publish(ctx, amqp.ActionCreated, txn)
	return txn, err
}

// Update patches an existing transaction and publishes an updated event.
func (s *TransactionService) Update(ctx context.Context, id string, p core.Patch) (core.Transaction, error) {
	txn, err := s.store.Update(ctx, id, p)
	if err != nil && txn.ID == "" {
		return core.Transaction{}, err
	}

	s.publish(ctx, amqp.ActionUpdated, txn)
	return txn, err
}

// Delete removes a transaction and publishes a deleted event.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	txn, err := s.store.GetByID(id)
	if err != nil {
		return err
	}
	err = s.store.Delete(ctx, id)
	if err != nil && !errors.Is(err, store.ErrPersist) {
		return err
	}

	s.publish(ctx, amqp.ActionDeleted, txn)
	return err
}

// Dashboard assembles the aggregate report for the named period. The summary
// and breakdowns cover the period window; the trend always compares the
// reference month against the month before it.
func (s *TransactionService) Dashboard(period core.Period, ref core.Date) (Report, error) {
	if !period.Valid() {
		return Report{}, fmt.Errorf("unknown period %q", period)
	}
	if period == "" {
		period = core.PeriodAll
	}

	all := s.store.GetAll()
	scoped := core.FilterByPeriod(all, period, ref)

	previousMonth := core.NewDate(ref.Year(), int(ref.Month()), 1)
	previousMonth = core.Date{Time: previousMonth.AddDate(0, -1, 0)}

	return Report{
		Period:     period,
		Summary:    core.Summarize(scoped),
		Month:      core.MonthSummary(all, ref),
		Categories: core.CategoryBreakdown(scoped),
		Months:     core.MonthlyBreakdown(all),
		Trend: core.Trend(
			core.MonthSummary(all, ref),
			core.MonthSummary(all, previousMonth),
		),
		Recent: core.RecentTransactions(scoped, 5),
		Top:    core.TopTransactions(scoped, 5),
	}, nil
}

// Categories lists the allowed category names per transaction type.
func (s *TransactionService) Categories() map[core.Type][]string {
	return map[core.Type][]string{
		core.Income:  core.CategoriesFor(core.Income),
		core.Expense: core.CategoriesFor(core.Expense),
	}
}

// Reset restores the demo seed dataset.
func (s *TransactionService) Reset(ctx context.Context) error {
	return s.store.Reset(ctx)
}

// Clear removes every transaction and the persisted payload.
func (s *TransactionService) Clear(ctx context.Context) error {
	return s.store.Clear(ctx)
}

// All returns a snapshot of every transaction, newest first by creation.
func (s *TransactionService) All() []core.Transaction {
	return s.store.GetAll()
}

func (s *TransactionService) publish(ctx context.Context, action string, txn core.Transaction) {
	if s.publisher == nil {
		return
	}
	event := amqp.NewTransactionEvent(action, txn)
	if err := s.publisher.PublishEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event", log.NewFields().
			WithComponent(log.ComponentService).
			WithOperation(action).
			WithTransaction(txn.ID, txn.Title, txn.Amount.Cents, string(txn.Type), txn.Category).
			WithError(err).
			ToSlice()...)
		// Don't fail the request - the mutation is already applied
	}
}

// Close closes the AMQP connection.
func (s *TransactionService) Close() error {
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			return fmt.Errorf("close publisher: %w", err)
		}
	}
	return nil
}
