package memory

import (
	"context"
	"sync"

	"cloudfiles/internal/domain/repositories"
)

type txKey struct{}

// tx journals the inverse of every write made through its context
type tx struct {
	mu        sync.Mutex
	undo      []func()
	holdsTree bool
}

func (t *tx) record(undo func()) {
	t.mu.Lock()
	t.undo = append(t.undo, undo)
	t.mu.Unlock()
}

func txFromContext(ctx context.Context) *tx {
	t, _ := ctx.Value(txKey{}).(*tx)
	return t
}

// TransactionManager implements repositories.TransactionManager on a Store
type TransactionManager struct {
	store *Store
}

// NewTransactionManager creates a transaction manager for the store
func NewTransactionManager(store *Store) repositories.TransactionManager {
	return &TransactionManager{store: store}
}

// ExecTx runs fn with a journaling context. When fn fails its writes are
// undone in reverse order. Nested calls join the outer transaction.
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	t := &tx{}
	defer func() {
		if t.holdsTree {
			tm.store.tree.Unlock()
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, t)); err != nil {
		tm.rollback(t)
		return err
	}
	return nil
}

func (tm *TransactionManager) rollback(t *tx) {
	tm.store.mu.Lock()
	defer tm.store.mu.Unlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}
