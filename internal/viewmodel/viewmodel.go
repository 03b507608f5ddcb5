// Package viewmodel owns the savings and transaction lists shown by the UI.
// Screens subscribe to snapshots and never poll; every mutation goes through
// the repository and is followed by a refresh that pushes new snapshots.
package viewmodel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"nabungemas/internal/core"
	"nabungemas/internal/form"
	"nabungemas/internal/log"
	"nabungemas/internal/ports"
)

const refreshKey = "refresh"

type ViewModel struct {
	repo   ports.Repository
	logger *log.Logger
	now    func() time.Time

	savings      *broadcaster[[]core.Saving]
	transactions *broadcaster[[]core.Transaction]
	flight       singleflight.Group
	loadMu       sync.Mutex // one read-and-publish at a time, so publishes stay in order
}

func New(repo ports.Repository, logger *log.Logger) *ViewModel {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ViewModel{
		repo:         repo,
		logger:       logger.WithComponent(log.ComponentViewModel),
		now:          time.Now,
		savings:      newBroadcaster[[]core.Saving](),
		transactions: newBroadcaster[[]core.Transaction](),
	}
}

// SetClock replaces the clock used to date transactions saved without a date.
func (vm *ViewModel) SetClock(now func() time.Time) {
	vm.now = now
}

// ObserveSavings streams saving snapshots, starting with the current one.
// Snapshots are shared and must not be modified.
func (vm *ViewModel) ObserveSavings(ctx context.Context) <-chan []core.Saving {
	ch, had := vm.savings.subscribe(ctx)
	if !had {
		go vm.refreshInBackground(ctx)
	}
	return ch
}

// ObserveTransactions streams transaction snapshots, newest transaction
// first, starting with the current one.
func (vm *ViewModel) ObserveTransactions(ctx context.Context) <-chan []core.Transaction {
	ch, had := vm.transactions.subscribe(ctx)
	if !had {
		go vm.refreshInBackground(ctx)
	}
	return ch
}

// Savings returns the current saving snapshot, loading it on first use.
func (vm *ViewModel) Savings(ctx context.Context) ([]core.Saving, error) {
	if s, ok := vm.savings.snapshot(); ok {
		return s, nil
	}
	if err := vm.Refresh(ctx); err != nil {
		return nil, err
	}
	s, _ := vm.savings.snapshot()
	return s, nil
}

// Transactions returns the current transaction snapshot, loading it on first
// use.
func (vm *ViewModel) Transactions(ctx context.Context) ([]core.Transaction, error) {
	if t, ok := vm.transactions.snapshot(); ok {
		return t, nil
	}
	if err := vm.Refresh(ctx); err != nil {
		return nil, err
	}
	t, _ := vm.transactions.snapshot()
	return t, nil
}

// Refresh reloads both lists concurrently and publishes them. Calls that
// overlap an in-flight refresh share its result.
func (vm *ViewModel) Refresh(ctx context.Context) error {
	_, err, shared := vm.flight.Do(refreshKey, func() (any, error) {
		return nil, vm.load(context.WithoutCancel(ctx))
	})
	if shared {
		vm.logger.DebugContext(ctx, "Refresh coalesced")
	}
	return err
}

// reloadAfterWrite starts a fresh refresh so a flight begun before the write
// cannot hand back pre-write data.
func (vm *ViewModel) reloadAfterWrite(ctx context.Context) {
	vm.flight.Forget(refreshKey)
	if err := vm.Refresh(ctx); err != nil {
		vm.logger.LogError(ctx, "Refresh after write failed", err, log.OpRefresh, nil)
	}
}

func (vm *ViewModel) load(ctx context.Context) error {
	vm.loadMu.Lock()
	defer vm.loadMu.Unlock()

	var (
		savings []core.Saving
		txs     []core.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		savings, err = vm.repo.ListSavings(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		txs, err = vm.repo.ListTransactions(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("refresh: %w", err)
	}

	vm.savings.publish(savings)
	vm.transactions.publish(txs)
	vm.logger.DebugContext(ctx, "Snapshots published",
		"savings", len(savings), "transactions", len(txs))
	return nil
}

func (vm *ViewModel) refreshInBackground(ctx context.Context) {
	if err := vm.Refresh(ctx); err != nil {
		vm.logger.LogError(ctx, "Initial load failed", err, log.OpRefresh, nil)
	}
}

// AddTransaction persists a valid draft. An empty date becomes today.
func (vm *ViewModel) AddTransaction(ctx context.Context, d form.Draft) (int64, error) {
	t, err := d.ToTransaction(vm.now())
	if err != nil {
		return 0, err
	}
	id, err := vm.repo.CreateTransaction(ctx, t)
	if err != nil {
		return 0, err
	}
	vm.logger.InfoContext(ctx, "Transaction added", log.NewFields().
		WithOperation(log.OpCreate).
		WithTransaction(id, t.SavingCategory, t.GoldPrice.String(), t.GoldQuantity.String(), t.Product).
		ToSlice()...)
	vm.reloadAfterWrite(ctx)
	return id, nil
}

// AddSaving creates a goal or changes the target of an existing one.
func (vm *ViewModel) AddSaving(ctx context.Context, d form.SavingDraft) error {
	s, err := d.ToSaving()
	if err != nil {
		return err
	}
	if err := vm.repo.UpsertSaving(ctx, s); err != nil {
		return err
	}
	vm.logger.InfoContext(ctx, "Saving stored", log.NewFields().
		WithOperation(log.OpUpdate).
		WithSaving(s.Category, s.Target.String()).
		ToSlice()...)
	vm.reloadAfterWrite(ctx)
	return nil
}

func (vm *ViewModel) DeleteSaving(ctx context.Context, s core.Saving) error {
	if err := vm.repo.DeleteSaving(ctx, s.Category); err != nil {
		return err
	}
	vm.logger.InfoContext(ctx, "Saving deleted",
		log.FieldOperation, log.OpDelete, log.FieldSavingCategory, s.Category)
	vm.reloadAfterWrite(ctx)
	return nil
}

func (vm *ViewModel) DeleteTransaction(ctx context.Context, t core.Transaction) error {
	if err := vm.repo.DeleteTransaction(ctx, t.ID); err != nil {
		return err
	}
	vm.logger.InfoContext(ctx, "Transaction deleted",
		log.FieldOperation, log.OpDelete, log.FieldTransactionID, t.ID)
	vm.reloadAfterWrite(ctx)
	return nil
}

// Ping reports whether the repository is reachable.
func (vm *ViewModel) Ping(ctx context.Context) error {
	return vm.repo.Ping(ctx)
}
