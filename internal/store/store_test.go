package store_test

import (
	"context"
	"reflect"
	"testing"
	"time"

	"warungpos/internal/domain"
	"warungpos/internal/store"
)

// Both backends must satisfy the same contract; every test below runs
// against each.
func backends(t *testing.T) map[string]store.Store {
	t.Helper()
	sq, err := store.OpenSQLite(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	mem, err := store.OpenMem()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = sq.Close() })
	return map[string]store.Store{"sqlite": sq, "memdb": mem}
}

func seedProducts(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()
	for _, p := range []domain.Product{
		{ID: "p1", Name: "Kopi", Price: 1500, Stock: 10, UserID: "u1"},
		{ID: "p2", Name: "Teh", Price: 5000, Stock: 4, UserID: "u1"},
	} {
		if _, err := s.AddProduct(ctx, p); err != nil {
			t.Fatal(err)
		}
	}
}

func TestProductCRUD(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seedProducts(t, s)

			p, err := s.GetProduct(ctx, "p1")
			if err != nil {
				t.Fatal(err)
			}
			if p.Name != "Kopi" || p.Stock != 10 {
				t.Fatalf("bad product: %+v", p)
			}

			// id assigned on add when empty
			id, err := s.AddProduct(ctx, domain.Product{Name: "Roti", Price: 14000, Stock: 2, UserID: "u1"})
			if err != nil {
				t.Fatal(err)
			}
			if id == "" {
				t.Fatal("no id assigned")
			}

			p.Price = 1750
			if err := s.SetProduct(ctx, p); err != nil {
				t.Fatal(err)
			}
			p2, _ := s.GetProduct(ctx, "p1")
			if p2.Price != 1750 {
				t.Fatalf("update lost: %+v", p2)
			}

			if err := s.DeleteProduct(ctx, "p2"); err != nil {
				t.Fatal(err)
			}
			if _, err := s.GetProduct(ctx, "p2"); err != store.ErrNotFound {
				t.Fatalf("want ErrNotFound, got %v", err)
			}
			if err := s.DeleteProduct(ctx, "p2"); err != store.ErrNotFound {
				t.Fatalf("want ErrNotFound on double delete, got %v", err)
			}
		})
	}
}

func TestCommitAppliesBatchAtomically(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seedProducts(t, s)

			tx := domain.Transaction{
				ID:     "t1",
				UserID: "u1",
				Items: []domain.TransactionItem{
					{ProductID: "p1", ProductName: "Kopi", Price: 1500, Quantity: 3},
				},
				Total:     4500,
				CreatedAt: time.Now().UTC(),
			}
			err := s.Commit(ctx, []store.Op{
				store.IncrementStock{ProductID: "p1", Delta: -3},
				store.PutTransaction{Tx: tx},
			})
			if err != nil {
				t.Fatal(err)
			}

			p, _ := s.GetProduct(ctx, "p1")
			if p.Stock != 7 {
				t.Fatalf("want stock 7, got %d", p.Stock)
			}
			got, err := s.GetTransaction(ctx, "t1")
			if err != nil {
				t.Fatal(err)
			}
			if got.Total != 4500 || len(got.Items) != 1 || got.Items[0].Quantity != 3 {
				t.Fatalf("bad transaction: %+v", got)
			}
		})
	}
}

func TestCommitFailureLeavesStoreUnchanged(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seedProducts(t, s)
			before1, _ := s.GetProduct(ctx, "p1")
			before2, _ := s.GetProduct(ctx, "p2")

			tx := domain.Transaction{ID: "t1", UserID: "u1", Total: 1, CreatedAt: time.Now().UTC()}
			err := s.Commit(ctx, []store.Op{
				store.IncrementStock{ProductID: "p1", Delta: -2},
				store.IncrementStock{ProductID: "p2", Delta: -99}, // fails
				store.PutTransaction{Tx: tx},
			})
			if err != store.ErrInsufficientStock {
				t.Fatalf("want ErrInsufficientStock, got %v", err)
			}

			after1, _ := s.GetProduct(ctx, "p1")
			after2, _ := s.GetProduct(ctx, "p2")
			if !reflect.DeepEqual(before1, after1) || !reflect.DeepEqual(before2, after2) {
				t.Fatalf("stock mutated on failed batch: %+v %+v", after1, after2)
			}
			if _, err := s.GetTransaction(ctx, "t1"); err != store.ErrNotFound {
				t.Fatalf("transaction leaked from failed batch: %v", err)
			}

			// missing increment target fails the batch too
			err = s.Commit(ctx, []store.Op{store.IncrementStock{ProductID: "ghost", Delta: 1}})
			if err != store.ErrNotFound {
				t.Fatalf("want ErrNotFound, got %v", err)
			}
		})
	}
}

func TestDeleteTransactionTwiceRejected(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			tx := domain.Transaction{ID: "t1", UserID: "u1", Total: 5, CreatedAt: time.Now().UTC()}
			if err := s.Commit(ctx, []store.Op{store.PutTransaction{Tx: tx}}); err != nil {
				t.Fatal(err)
			}
			if err := s.Commit(ctx, []store.Op{store.DeleteTransaction{ID: "t1"}}); err != nil {
				t.Fatal(err)
			}
			if err := s.Commit(ctx, []store.Op{store.DeleteTransaction{ID: "t1"}}); err != store.ErrNotFound {
				t.Fatalf("want ErrNotFound on second delete, got %v", err)
			}
		})
	}
}

func TestWatchTransactionsNewestFirst(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Date(2025, time.April, 1, 10, 0, 0, 0, time.UTC)
			for i, id := range []string{"old", "mid", "new"} {
				tx := domain.Transaction{ID: id, UserID: "u1", Total: 1, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
				if err := s.Commit(ctx, []store.Op{store.PutTransaction{Tx: tx}}); err != nil {
					t.Fatal(err)
				}
			}

			val, cancel, err := s.WatchTransactions(ctx, "u1")
			if err != nil {
				t.Fatal(err)
			}
			defer cancel()

			snap := val.Get()
			if len(snap) != 3 || snap[0].ID != "new" || snap[2].ID != "old" {
				t.Fatalf("bad order: %+v", snap)
			}
		})
	}
}

func TestWatchProductsDeliversSnapshotsOnChange(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seedProducts(t, s)

			val, cancel, err := s.WatchProducts(ctx, "u1")
			if err != nil {
				t.Fatal(err)
			}
			defer cancel()
			if len(val.Get()) != 2 {
				t.Fatalf("bad initial snapshot: %+v", val.Get())
			}

			ch, unsub := val.Subscribe()
			defer unsub()
			<-ch

			if err := s.DeleteProduct(ctx, "p1"); err != nil {
				t.Fatal(err)
			}
			select {
			case snap := <-ch:
				if len(snap) != 1 || snap[0].ID != "p2" {
					t.Fatalf("bad snapshot after delete: %+v", snap)
				}
			case <-time.After(time.Second):
				t.Fatal("no snapshot delivered")
			}

			// other users' changes do not leak into this watch
			if _, err := s.AddProduct(ctx, domain.Product{ID: "px", Name: "X", Price: 1, Stock: 1, UserID: "u2"}); err != nil {
				t.Fatal(err)
			}
			if len(val.Get()) != 1 {
				t.Fatalf("foreign product leaked: %+v", val.Get())
			}

			cancel()
			if err := s.DeleteProduct(ctx, "p2"); err != nil {
				t.Fatal(err)
			}
			if len(val.Get()) != 1 {
				t.Fatal("cancelled watch still updating")
			}
		})
	}
}

func TestUsers(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			u := domain.User{ID: "u1", Email: "Ibu@Warung.test", Hash: "$2a$fake"}
			if err := s.CreateUser(ctx, u); err != nil {
				t.Fatal(err)
			}
			// email lookup is case-insensitive
			got, err := s.UserByEmail(ctx, "ibu@warung.test")
			if err != nil {
				t.Fatal(err)
			}
			if got.ID != "u1" {
				t.Fatalf("bad user: %+v", got)
			}
			if err := s.CreateUser(ctx, domain.User{ID: "u2", Email: "ibu@warung.test"}); err != store.ErrEmailTaken {
				t.Fatalf("want ErrEmailTaken, got %v", err)
			}
			if _, err := s.UserByEmail(ctx, "nobody@warung.test"); err != store.ErrNotFound {
				t.Fatalf("want ErrNotFound, got %v", err)
			}
		})
	}
}

func TestSeedDemoIsIdempotent(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.SeedDemo(ctx, s); err != nil {
				t.Fatal(err)
			}
			if err := store.SeedDemo(ctx, s); err != nil {
				t.Fatal(err)
			}
			val, cancel, err := s.WatchProducts(ctx, "u-demo")
			if err != nil {
				t.Fatal(err)
			}
			defer cancel()
			if len(val.Get()) != 4 {
				t.Fatalf("want 4 seeded products, got %d", len(val.Get()))
			}
		})
	}
}
