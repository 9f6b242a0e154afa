// Package store is the document-store boundary: a product collection, a
// transaction collection and a user collection, with atomic batch writes
// and live snapshot subscriptions. Two backends exist: SQLite for
// durable state and go-memdb for ephemeral/test runs.
package store

import (
	"context"
	"errors"

	"warungpos/internal/domain"
	"warungpos/internal/observe"
)

var (
	ErrNotFound          = errors.New("document not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmailTaken        = errors.New("email already registered")
)

// Op is a single entry of an atomic batch write. A batch either applies
// every op or none of them.
type Op interface{ op() }

// IncrementStock adjusts a product's stock by Delta (negative at
// checkout, positive at cancellation). The op fails if the product does
// not exist or the resulting stock would be negative.
type IncrementStock struct {
	ProductID string
	Delta     int
}

// PutTransaction inserts one transaction record with its line items.
type PutTransaction struct {
	Tx domain.Transaction
}

// DeleteTransaction removes a transaction by id; it fails if the id is
// unknown, so cancelling twice is rejected rather than repeated.
type DeleteTransaction struct {
	ID string
}

func (IncrementStock) op()    {}
func (PutTransaction) op()    {}
func (DeleteTransaction) op() {}

type Store interface {
	// Products
	AddProduct(ctx context.Context, p domain.Product) (string, error)
	SetProduct(ctx context.Context, p domain.Product) error
	DeleteProduct(ctx context.Context, id string) error
	GetProduct(ctx context.Context, id string) (domain.Product, error)

	// Transactions
	GetTransaction(ctx context.Context, id string) (domain.Transaction, error)

	// Commit applies the ops as one all-or-nothing batch.
	Commit(ctx context.Context, ops []Op) error

	// WatchProducts delivers the full product snapshot for a user,
	// re-delivered after every change. WatchTransactions does the same
	// for transactions, ordered newest first. The cancel func releases
	// the subscription.
	WatchProducts(ctx context.Context, userID string) (*observe.Value[[]domain.Product], func(), error)
	WatchTransactions(ctx context.Context, userID string) (*observe.Value[[]domain.Transaction], func(), error)

	// Users (identity provider backing)
	CreateUser(ctx context.Context, u domain.User) error
	UserByEmail(ctx context.Context, email string) (domain.User, error)

	Close() error
}
