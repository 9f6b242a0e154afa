package domain

import "time"

type Product struct {
	ID     string  `db:"id" json:"id"`
	Name   string  `db:"name" json:"name"`
	Price  float64 `db:"price" json:"price"`
	Stock  int     `db:"stock" json:"stock"`
	UserID string  `db:"user_id" json:"userId"`
}

// CartItem pairs a product snapshot (taken at add time, not a live
// reference) with a quantity that is always >= 1.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

func (ci CartItem) Subtotal() float64 {
	return ci.Product.Price * float64(ci.Quantity)
}

// TransactionItem is a line item with the product's name and price
// snapshotted at checkout. Later edits or deletion of the product do
// not alter historical transactions.
type TransactionItem struct {
	ProductID   string  `db:"product_id" json:"productId"`
	ProductName string  `db:"product_name" json:"productName"`
	Price       float64 `db:"price" json:"price"`
	Quantity    int     `db:"qty" json:"quantity"`
}

type Transaction struct {
	ID        string            `db:"id" json:"id"`
	UserID    string            `db:"user_id" json:"userId"`
	Items     []TransactionItem `json:"items"`
	Total     float64           `db:"total" json:"totalAmount"`
	CreatedAt time.Time         `db:"created_at" json:"timestamp"`
}

type BestSeller struct {
	ProductName string `json:"productName"`
	Quantity    int64  `json:"quantity"`
}

// ReportData is derived and never persisted.
type ReportData struct {
	TotalRevenue     float64      `json:"totalRevenue"`
	TransactionCount int          `json:"transactionCount"`
	BestSellers      []BestSeller `json:"bestSellingProducts"`
}
