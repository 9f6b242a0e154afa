package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"warungpos/internal/domain"
	"warungpos/internal/observe"
)

// SQLite is the durable backend. Batch writes map to one SQL
// transaction, which is what guarantees checkout/cancellation
// atomicity.
type SQLite struct {
	db       *sqlx.DB
	products *hub[[]domain.Product]
	txs      *hub[[]domain.Transaction]
}

func OpenSQLite(dsn string) (*SQLite, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return &SQLite{
		db:       db,
		products: newHub[[]domain.Product](),
		txs:      newHub[[]domain.Transaction](),
	}, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

-- user_id is an opaque identity-provider id, deliberately without a
-- foreign key: identities live outside this store.
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  price NUMERIC NOT NULL CHECK (price >= 0),
  stock INTEGER NOT NULL CHECK (stock >= 0),
  user_id TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_products_user ON products(user_id);
CREATE INDEX IF NOT EXISTS idx_products_name ON products(LOWER(name));

CREATE TABLE IF NOT EXISTS transactions(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  total NUMERIC NOT NULL,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transactions_user_time ON transactions(user_id, created_at);

CREATE TABLE IF NOT EXISTS transaction_items(
  transaction_id TEXT NOT NULL REFERENCES transactions(id) ON DELETE CASCADE,
  seq INTEGER NOT NULL,
  product_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  price NUMERIC NOT NULL,
  qty INTEGER NOT NULL CHECK (qty >= 1),
  PRIMARY KEY (transaction_id, seq)
);
`
	_, err := db.Exec(schema)
	return err
}

func (s *SQLite) Close() error { return s.db.Close() }

// Fixed-width timestamp format so ORDER BY on the text column matches
// chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// ---------- products ----------

func (s *SQLite) AddProduct(ctx context.Context, p domain.Product) (string, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
	  INSERT INTO products(id, name, price, stock, user_id) VALUES(?,?,?,?,?)
	`, p.ID, p.Name, p.Price, p.Stock, p.UserID)
	if err != nil {
		return "", err
	}
	s.notifyProducts()
	return p.ID, nil
}

func (s *SQLite) SetProduct(ctx context.Context, p domain.Product) error {
	_, err := s.db.ExecContext(ctx, `
	  INSERT INTO products(id, name, price, stock, user_id) VALUES(?,?,?,?,?)
	  ON CONFLICT(id) DO UPDATE SET
	    name = excluded.name, price = excluded.price,
	    stock = excluded.stock, user_id = excluded.user_id
	`, p.ID, p.Name, p.Price, p.Stock, p.UserID)
	if err != nil {
		return err
	}
	s.notifyProducts()
	return nil
}

func (s *SQLite) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	s.notifyProducts()
	return nil
}

func (s *SQLite) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := s.db.GetContext(ctx, &p, `
	  SELECT id, name, price, stock, user_id FROM products WHERE id = ?
	`, id)
	if err == sql.ErrNoRows {
		return domain.Product{}, ErrNotFound
	}
	return p, err
}

func (s *SQLite) productsByUser(userID string) ([]domain.Product, error) {
	out := []domain.Product{}
	err := s.db.Select(&out, `
	  SELECT id, name, price, stock, user_id FROM products
	  WHERE user_id = ? ORDER BY LOWER(name)
	`, userID)
	return out, err
}

// ---------- transactions ----------

type txHeaderRow struct {
	ID        string  `db:"id"`
	UserID    string  `db:"user_id"`
	Total     float64 `db:"total"`
	CreatedAt string  `db:"created_at"`
}

func (s *SQLite) GetTransaction(ctx context.Context, id string) (domain.Transaction, error) {
	var h txHeaderRow
	err := s.db.GetContext(ctx, &h, `
	  SELECT id, user_id, total, created_at FROM transactions WHERE id = ?
	`, id)
	if err == sql.ErrNoRows {
		return domain.Transaction{}, ErrNotFound
	}
	if err != nil {
		return domain.Transaction{}, err
	}
	items, err := s.itemsFor(ctx, id)
	if err != nil {
		return domain.Transaction{}, err
	}
	return h.toDomain(items), nil
}

func (h txHeaderRow) toDomain(items []domain.TransactionItem) domain.Transaction {
	ts, _ := time.Parse(timeLayout, h.CreatedAt)
	return domain.Transaction{ID: h.ID, UserID: h.UserID, Items: items, Total: h.Total, CreatedAt: ts}
}

func (s *SQLite) itemsFor(ctx context.Context, txID string) ([]domain.TransactionItem, error) {
	items := []domain.TransactionItem{}
	err := s.db.SelectContext(ctx, &items, `
	  SELECT product_id, product_name, price, qty
	  FROM transaction_items WHERE transaction_id = ? ORDER BY seq
	`, txID)
	return items, err
}

func (s *SQLite) transactionsByUser(userID string) ([]domain.Transaction, error) {
	var heads []txHeaderRow
	err := s.db.Select(&heads, `
	  SELECT id, user_id, total, created_at FROM transactions
	  WHERE user_id = ? ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Transaction, 0, len(heads))
	for _, h := range heads {
		items, err := s.itemsFor(context.Background(), h.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, h.toDomain(items))
	}
	return out, nil
}

// ---------- atomic batch ----------

func (s *SQLite) Commit(ctx context.Context, ops []Op) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, op := range ops {
		if err := applyOp(ctx, tx, op); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.notifyProducts()
	s.notifyTransactions()
	return nil
}

func applyOp(ctx context.Context, tx *sqlx.Tx, op Op) error {
	switch o := op.(type) {
	case IncrementStock:
		var stock int
		err := tx.GetContext(ctx, &stock, `SELECT stock FROM products WHERE id = ?`, o.ProductID)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if stock+o.Delta < 0 {
			return ErrInsufficientStock
		}
		_, err = tx.ExecContext(ctx, `UPDATE products SET stock = stock + ? WHERE id = ?`, o.Delta, o.ProductID)
		return err

	case PutTransaction:
		t := o.Tx
		_, err := tx.ExecContext(ctx, `
		  INSERT INTO transactions(id, user_id, total, created_at) VALUES(?,?,?,?)
		`, t.ID, t.UserID, t.Total, t.CreatedAt.UTC().Format(timeLayout))
		if err != nil {
			return err
		}
		for i, it := range t.Items {
			_, err := tx.ExecContext(ctx, `
			  INSERT INTO transaction_items(transaction_id, seq, product_id, product_name, price, qty)
			  VALUES(?,?,?,?,?,?)
			`, t.ID, i, it.ProductID, it.ProductName, it.Price, it.Quantity)
			if err != nil {
				return err
			}
		}
		return nil

	case DeleteTransaction:
		res, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, o.ID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	}
	return nil
}

// ---------- subscriptions ----------

func (s *SQLite) WatchProducts(ctx context.Context, userID string) (*observe.Value[[]domain.Product], func(), error) {
	snap, err := s.productsByUser(userID)
	if err != nil {
		return nil, nil, err
	}
	val, cancel := s.products.add(userID, snap)
	return val, cancel, nil
}

func (s *SQLite) WatchTransactions(ctx context.Context, userID string) (*observe.Value[[]domain.Transaction], func(), error) {
	snap, err := s.transactionsByUser(userID)
	if err != nil {
		return nil, nil, err
	}
	val, cancel := s.txs.add(userID, snap)
	return val, cancel, nil
}

func (s *SQLite) notifyProducts() {
	s.products.broadcast(s.productsByUser)
}

func (s *SQLite) notifyTransactions() {
	s.txs.broadcast(s.transactionsByUser)
}

// ---------- users ----------

func (s *SQLite) CreateUser(ctx context.Context, u domain.User) error {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users WHERE LOWER(email)=LOWER(?)`, u.Email); err != nil {
		return err
	}
	if n > 0 {
		return ErrEmailTaken
	}
	_, err := s.db.ExecContext(ctx, `
	  INSERT INTO users(id, email, password_hash) VALUES(?,?,?)
	`, u.ID, u.Email, u.Hash)
	return err
}

func (s *SQLite) UserByEmail(ctx context.Context, email string) (domain.User, error) {
	var u domain.User
	err := s.db.GetContext(ctx, &u, `
	  SELECT id, email, password_hash FROM users WHERE LOWER(email)=LOWER(?)
	`, email)
	if err == sql.ErrNoRows {
		return domain.User{}, ErrNotFound
	}
	return u, err
}
