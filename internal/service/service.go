package service

import "context"

// TxManager runs fn inside a database transaction. Nested calls join
// the transaction already carried by the context.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
