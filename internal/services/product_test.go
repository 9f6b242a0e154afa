package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"warungpos/internal/services"
	"warungpos/internal/store"
)

func TestProductServiceValidatesBeforeStore(t *testing.T) {
	st, err := store.OpenMem()
	require.NoError(t, err)
	svc := services.NewProductService(st)
	ctx := context.Background()

	_, err = svc.Add(ctx, "u1", "", 10, 1)
	require.ErrorIs(t, err, services.ErrEmptyName)
	_, err = svc.Add(ctx, "u1", "Kopi", 0, 1)
	require.ErrorIs(t, err, services.ErrInvalidPrice)
	_, err = svc.Add(ctx, "u1", "Kopi", 10, -1)
	require.ErrorIs(t, err, services.ErrInvalidStock)

	id, err := svc.Add(ctx, "u1", "Kopi", 1500, 10)
	require.NoError(t, err)

	p, err := st.GetProduct(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Kopi", p.Name)

	p.Price = 1750
	require.NoError(t, svc.Update(ctx, p))

	require.NoError(t, svc.Delete(ctx, id))
	require.ErrorIs(t, svc.Delete(ctx, id), store.ErrNotFound)
}
