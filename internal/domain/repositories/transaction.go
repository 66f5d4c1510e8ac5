package repositories

import "context"

// TxFn is a unit of work. Repository calls made with the ctx it receives
// join the surrounding transaction.
type TxFn func(ctx context.Context) error

// TransactionManager runs units of work atomically.
//
// Returning an error from fn rolls back every write made through ctx. An
// ExecTx nested inside a running one joins the outer transaction, and locks
// taken inside fn (FolderRepository.LockTree) are held until the outermost
// ExecTx returns.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}
