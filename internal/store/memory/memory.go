// Package memory holds an in-process debt store with the same contract as
// the SQLite repository. Used as the dev backend and as a test double.
package memory

import (
	"context"
	"log/slog"
	"sync"

	"deudas/internal/core"
	applog "deudas/internal/log"
	"deudas/internal/store"
)

type Store struct {
	mu     sync.Mutex
	debts  []core.Debt
	nextID int64
}

func New() *Store {
	return &Store{nextID: 1}
}

// Append assigns the next id and stores the debt with a fresh, unpaid state.
func (s *Store) Append(_ context.Context, d core.Debt) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d.ID = s.nextID
	d.History = []core.PaymentRecord{}
	d.Settled = false
	s.nextID++
	s.debts = append(s.debts, d)
	return d.ID, nil
}

// ListAll returns a copy of the snapshot in insertion order.
func (s *Store) ListAll(_ context.Context) ([]core.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Debt, len(s.debts))
	copy(out, s.debts)
	return out, nil
}

// Patch merges the given fields into the record with the matching id.
// An unknown id is logged and ignored.
func (s *Store) Patch(ctx context.Context, id int64, p store.DebtPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.debts {
		if s.debts[i].ID == id {
			p.Apply(&s.debts[i])
			return nil
		}
	}
	slog.WarnContext(ctx, "Patch for unknown debt id ignored", applog.FieldDebtID, id)
	return nil
}
