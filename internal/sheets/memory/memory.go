package memory

import (
	"context"
	"fmt"
	"sync"

	ports "ledger/internal/sheets"
)

// Store keeps exported rows in memory. It backs the worker when no
// spreadsheet is configured and the worker tests.
type Store struct {
	mu    sync.Mutex
	items []ports.Row
}

var (
	_ ports.TransactionWriter = (*Store)(nil)
	_ ports.TransactionLister = (*Store)(nil)
)

func New() *Store {
	return &Store{}
}

// Append stores the row and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, r ports.Row) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, r)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// List returns the rows of flow dated in the given month, in append order.
func (s *Store) List(_ context.Context, flow ports.Flow, year int, month int) ([]ports.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []ports.Row{}
	for _, r := range s.items {
		if r.Flow == flow && r.Date.Year() == year && r.Date.Month() == month {
			out = append(out, r)
		}
	}
	return out, nil
}

// Rows returns a copy of everything appended so far.
func (s *Store) Rows() []ports.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.Row(nil), s.items...)
}
