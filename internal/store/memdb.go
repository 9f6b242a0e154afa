package store

import (
	"context"
	"sort"

	"github.com/google/uuid"
	memdb "github.com/hashicorp/go-memdb"

	"warungpos/internal/domain"
	"warungpos/internal/observe"
)

// Mem is the ephemeral backend over go-memdb. Its MVCC write
// transactions give batch commits the same all-or-nothing behavior as
// the SQLite backend, which makes it a faithful stand-in for tests.
type Mem struct {
	db       *memdb.MemDB
	products *hub[[]domain.Product]
	txs      *hub[[]domain.Transaction]
}

func OpenMem() (*Mem, error) {
	schema := &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			"products": {
				Name: "products",
				Indexes: map[string]*memdb.IndexSchema{
					"id":   {Name: "id", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "ID"}},
					"user": {Name: "user", Indexer: &memdb.StringFieldIndex{Field: "UserID"}},
				},
			},
			"transactions": {
				Name: "transactions",
				Indexes: map[string]*memdb.IndexSchema{
					"id":   {Name: "id", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "ID"}},
					"user": {Name: "user", Indexer: &memdb.StringFieldIndex{Field: "UserID"}},
				},
			},
			"users": {
				Name: "users",
				Indexes: map[string]*memdb.IndexSchema{
					"id":    {Name: "id", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "ID"}},
					"email": {Name: "email", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "Email", Lowercase: true}},
				},
			},
		},
	}
	db, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, err
	}
	return &Mem{
		db:       db,
		products: newHub[[]domain.Product](),
		txs:      newHub[[]domain.Transaction](),
	}, nil
}

func (s *Mem) Close() error { return nil }

// ---------- products ----------

func (s *Mem) AddProduct(ctx context.Context, p domain.Product) (string, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	txn := s.db.Txn(true)
	if err := txn.Insert("products", &p); err != nil {
		txn.Abort()
		return "", err
	}
	txn.Commit()
	s.notifyProducts()
	return p.ID, nil
}

func (s *Mem) SetProduct(ctx context.Context, p domain.Product) error {
	txn := s.db.Txn(true)
	if err := txn.Insert("products", &p); err != nil {
		txn.Abort()
		return err
	}
	txn.Commit()
	s.notifyProducts()
	return nil
}

func (s *Mem) DeleteProduct(ctx context.Context, id string) error {
	txn := s.db.Txn(true)
	raw, err := txn.First("products", "id", id)
	if err != nil {
		txn.Abort()
		return err
	}
	if raw == nil {
		txn.Abort()
		return ErrNotFound
	}
	if err := txn.Delete("products", raw); err != nil {
		txn.Abort()
		return err
	}
	txn.Commit()
	s.notifyProducts()
	return nil
}

func (s *Mem) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()
	raw, err := txn.First("products", "id", id)
	if err != nil {
		return domain.Product{}, err
	}
	if raw == nil {
		return domain.Product{}, ErrNotFound
	}
	return *raw.(*domain.Product), nil
}

func (s *Mem) productsByUser(userID string) ([]domain.Product, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()
	it, err := txn.Get("products", "user", userID)
	if err != nil {
		return nil, err
	}
	out := []domain.Product{}
	for raw := it.Next(); raw != nil; raw = it.Next() {
		out = append(out, *raw.(*domain.Product))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ---------- transactions ----------

func (s *Mem) GetTransaction(ctx context.Context, id string) (domain.Transaction, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()
	raw, err := txn.First("transactions", "id", id)
	if err != nil {
		return domain.Transaction{}, err
	}
	if raw == nil {
		return domain.Transaction{}, ErrNotFound
	}
	return *raw.(*domain.Transaction), nil
}

func (s *Mem) transactionsByUser(userID string) ([]domain.Transaction, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()
	it, err := txn.Get("transactions", "user", userID)
	if err != nil {
		return nil, err
	}
	out := []domain.Transaction{}
	for raw := it.Next(); raw != nil; raw = it.Next() {
		out = append(out, *raw.(*domain.Transaction))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ---------- atomic batch ----------

func (s *Mem) Commit(ctx context.Context, ops []Op) error {
	txn := s.db.Txn(true)
	for _, op := range ops {
		if err := applyMemOp(txn, op); err != nil {
			txn.Abort()
			return err
		}
	}
	txn.Commit()
	s.notifyProducts()
	s.notifyTransactions()
	return nil
}

func applyMemOp(txn *memdb.Txn, op Op) error {
	switch o := op.(type) {
	case IncrementStock:
		raw, err := txn.First("products", "id", o.ProductID)
		if err != nil {
			return err
		}
		if raw == nil {
			return ErrNotFound
		}
		p := *raw.(*domain.Product)
		if p.Stock+o.Delta < 0 {
			return ErrInsufficientStock
		}
		p.Stock += o.Delta
		return txn.Insert("products", &p)

	case PutTransaction:
		t := o.Tx
		return txn.Insert("transactions", &t)

	case DeleteTransaction:
		raw, err := txn.First("transactions", "id", o.ID)
		if err != nil {
			return err
		}
		if raw == nil {
			return ErrNotFound
		}
		return txn.Delete("transactions", raw)
	}
	return nil
}

// ---------- subscriptions ----------

func (s *Mem) WatchProducts(ctx context.Context, userID string) (*observe.Value[[]domain.Product], func(), error) {
	snap, err := s.productsByUser(userID)
	if err != nil {
		return nil, nil, err
	}
	val, cancel := s.products.add(userID, snap)
	return val, cancel, nil
}

func (s *Mem) WatchTransactions(ctx context.Context, userID string) (*observe.Value[[]domain.Transaction], func(), error) {
	snap, err := s.transactionsByUser(userID)
	if err != nil {
		return nil, nil, err
	}
	val, cancel := s.txs.add(userID, snap)
	return val, cancel, nil
}

func (s *Mem) notifyProducts() {
	s.products.broadcast(s.productsByUser)
}

func (s *Mem) notifyTransactions() {
	s.txs.broadcast(s.transactionsByUser)
}

// ---------- users ----------

func (s *Mem) CreateUser(ctx context.Context, u domain.User) error {
	txn := s.db.Txn(true)
	raw, err := txn.First("users", "email", u.Email)
	if err != nil {
		txn.Abort()
		return err
	}
	if raw != nil {
		txn.Abort()
		return ErrEmailTaken
	}
	if err := txn.Insert("users", &u); err != nil {
		txn.Abort()
		return err
	}
	txn.Commit()
	return nil
}

func (s *Mem) UserByEmail(ctx context.Context, email string) (domain.User, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()
	raw, err := txn.First("users", "email", email)
	if err != nil {
		return domain.User{}, err
	}
	if raw == nil {
		return domain.User{}, ErrNotFound
	}
	return *raw.(*domain.User), nil
}
