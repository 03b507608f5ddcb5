// Package memory is a process-local repository. Nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"sync"

	"nabungemas/internal/core"
	"nabungemas/internal/ports"
)

type Store struct {
	mu       sync.Mutex
	savings  []core.Saving // insertion order
	txs      []core.Transaction
	nextTxID int64
}

var _ ports.Repository = (*Store)(nil)

func New() *Store {
	return &Store{nextTxID: 1}
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) ListSavings(_ context.Context) ([]core.Saving, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Saving(nil), s.savings...), nil
}

func (s *Store) UpsertSaving(_ context.Context, in core.Saving) error {
	if err := in.Validate(); err != nil {
		return fmt.Errorf("upsert saving: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.savingIndex(in.Category); i >= 0 {
		s.savings[i].Target = in.Target
		return nil
	}
	s.savings = append(s.savings, core.Saving{Category: in.Category, Target: in.Target})
	return nil
}

func (s *Store) DeleteSaving(_ context.Context, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.savingIndex(category)
	if i < 0 {
		return fmt.Errorf("delete saving %q: %w", category, ports.ErrNotFound)
	}
	s.savings = append(s.savings[:i], s.savings[i+1:]...)
	return nil
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0, len(s.txs))
	for i := len(s.txs) - 1; i >= 0; i-- {
		out = append(out, s.txs[i])
	}
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.txIndex(id); i >= 0 {
		return s.txs[i], nil
	}
	return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, ports.ErrNotFound)
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = s.nextTxID
	s.nextTxID++
	s.txs = append(s.txs, t)

	if i := s.savingIndex(t.SavingCategory); i >= 0 {
		s.savings[i].TotalSaving += t.Value()
	} else {
		s.savings = append(s.savings, core.Saving{Category: t.SavingCategory, TotalSaving: t.Value()})
	}
	return t.ID, nil
}

func (s *Store) DeleteTransaction(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.txIndex(id)
	if i < 0 {
		return fmt.Errorf("delete transaction %d: %w", id, ports.ErrNotFound)
	}
	t := s.txs[i]
	s.txs = append(s.txs[:i], s.txs[i+1:]...)

	if j := s.savingIndex(t.SavingCategory); j >= 0 {
		total := s.savings[j].TotalSaving - t.Value()
		if total < 0 {
			total = 0
		}
		s.savings[j].TotalSaving = total
	}
	return nil
}

func (s *Store) savingIndex(category string) int {
	for i, sv := range s.savings {
		if sv.Category == category {
			return i
		}
	}
	return -1
}

func (s *Store) txIndex(id int64) int {
	for i, t := range s.txs {
		if t.ID == id {
			return i
		}
	}
	return -1
}
