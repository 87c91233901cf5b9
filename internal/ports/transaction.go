package ports

import "context"

// TransactionManager runs fn inside a single relational transaction,
// exactly as the teacher's internal/adapters/postgres/transaction_manager.go
// does. Nested calls join the outer transaction rather than starting a
// new one.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
