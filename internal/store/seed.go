package store

import (
	"context"
	"errors"
	"log"

	"golang.org/x/crypto/bcrypt"

	"warungpos/internal/domain"
)

const demoEmail = "demo@warung.test"

// SeedDemo inserts a demo shopkeeper with a starter catalog. Skipped
// when the demo account already exists, so it is safe on every start.
func SeedDemo(ctx context.Context, s Store) error {
	if _, err := s.UserByEmail(ctx, demoEmail); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	log.Println("[seed] inserting demo shopkeeper and catalog")

	hash, err := bcrypt.GenerateFromPassword([]byte("Passw0rd!"), 12)
	if err != nil {
		return err
	}
	if err := s.CreateUser(ctx, domain.User{ID: "u-demo", Email: demoEmail, Hash: string(hash)}); err != nil {
		return err
	}

	catalog := []domain.Product{
		{ID: "p-kopi", Name: "Kopi Sachet", Price: 1500, Stock: 120, UserID: "u-demo"},
		{ID: "p-indomie", Name: "Indomie Goreng", Price: 3500, Stock: 100, UserID: "u-demo"},
		{ID: "p-tehbotol", Name: "Teh Botol", Price: 5000, Stock: 48, UserID: "u-demo"},
		{ID: "p-roti", Name: "Roti Tawar", Price: 14000, Stock: 12, UserID: "u-demo"},
	}
	for _, p := range catalog {
		if _, err := s.AddProduct(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
