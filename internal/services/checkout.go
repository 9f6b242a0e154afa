package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"warungpos/internal/domain"
	"warungpos/internal/store"
)

var (
	ErrNotSignedIn = errors.New("no signed-in user")
	ErrEmptyCart   = errors.New("cart is empty")
)

// CheckoutService turns a cart snapshot into one atomic batch: a stock
// decrement per line plus a single transaction insert. Cancellation is
// the exact inverse batch. Atomicity is the store's job; this service
// only assembles the ops.
type CheckoutService struct {
	Store store.Store
}

func NewCheckoutService(st store.Store) *CheckoutService {
	return &CheckoutService{Store: st}
}

// Checkout commits the batch and returns the created transaction. On
// failure nothing is written. Clearing the cart afterwards is the
// caller's responsibility.
func (s *CheckoutService) Checkout(ctx context.Context, userID string, items []domain.CartItem, total float64) (domain.Transaction, error) {
	if userID == "" {
		return domain.Transaction{}, ErrNotSignedIn
	}
	if len(items) == 0 {
		return domain.Transaction{}, ErrEmptyCart
	}

	lines := make([]domain.TransactionItem, 0, len(items))
	ops := make([]store.Op, 0, len(items)+1)
	for _, it := range items {
		ops = append(ops, store.IncrementStock{ProductID: it.Product.ID, Delta: -it.Quantity})
		lines = append(lines, domain.TransactionItem{
			ProductID:   it.Product.ID,
			ProductName: it.Product.Name,
			Price:       it.Product.Price,
			Quantity:    it.Quantity,
		})
	}
	tx := domain.Transaction{
		ID:        uuid.NewString(),
		UserID:    userID,
		Items:     lines,
		Total:     total,
		CreatedAt: time.Now().UTC(),
	}
	ops = append(ops, store.PutTransaction{Tx: tx})

	if err := s.Store.Commit(ctx, ops); err != nil {
		return domain.Transaction{}, err
	}
	return tx, nil
}

// Cancel restores every line's stock and deletes the transaction as one
// batch. A line whose product has since been deleted fails the whole
// cancellation; the transaction record stays. Cancelling an already
// deleted transaction fails the same way.
func (s *CheckoutService) Cancel(ctx context.Context, tx domain.Transaction) error {
	ops := make([]store.Op, 0, len(tx.Items)+1)
	for _, it := range tx.Items {
		ops = append(ops, store.IncrementStock{ProductID: it.ProductID, Delta: it.Quantity})
	}
	ops = append(ops, store.DeleteTransaction{ID: tx.ID})
	return s.Store.Commit(ctx, ops)
}
