package services

import (
	"context"
	"errors"

	"warungpos/internal/domain"
	"warungpos/internal/store"
)

var (
	ErrInvalidPrice = errors.New("price must be a positive number")
	ErrInvalidStock = errors.New("stock must be a non-negative integer")
	ErrEmptyName    = errors.New("product name is required")
)

// ProductService owns catalog writes. Reads go through the session's
// CatalogCache.
type ProductService struct {
	Store store.Store
}

func NewProductService(st store.Store) *ProductService {
	return &ProductService{Store: st}
}

func (s *ProductService) Add(ctx context.Context, userID, name string, price float64, stock int) (string, error) {
	if err := checkProduct(name, price, stock); err != nil {
		return "", err
	}
	return s.Store.AddProduct(ctx, domain.Product{Name: name, Price: price, Stock: stock, UserID: userID})
}

func (s *ProductService) Update(ctx context.Context, p domain.Product) error {
	if err := checkProduct(p.Name, p.Price, p.Stock); err != nil {
		return err
	}
	return s.Store.SetProduct(ctx, p)
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	return s.Store.DeleteProduct(ctx, id)
}

func checkProduct(name string, price float64, stock int) error {
	if name == "" {
		return ErrEmptyName
	}
	if price <= 0 {
		return ErrInvalidPrice
	}
	if stock < 0 {
		return ErrInvalidStock
	}
	return nil
}
