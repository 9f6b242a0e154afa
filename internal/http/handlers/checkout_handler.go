package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "warungpos/internal/log"
	"warungpos/internal/services"
	"warungpos/internal/store"
)

type CheckoutHandler struct {
	Checkout *services.CheckoutService
	Sessions *services.SessionManager
}

// Place commits the cart as one atomic batch. The cart is cleared only
// after the commit succeeds.
func (h *CheckoutHandler) Place(c *fiber.Ctx) error {
	sess := session(c)
	items, total := sess.Cart.Snapshot()

	tx, err := h.Checkout.Checkout(c.Context(), sess.UserID, items, total)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyCart):
			return fail(c, fiber.StatusBadRequest, "cart is empty")
		case errors.Is(err, store.ErrInsufficientStock):
			return fail(c, fiber.StatusConflict, "insufficient stock")
		case errors.Is(err, store.ErrNotFound):
			return fail(c, fiber.StatusConflict, "a product in the cart no longer exists")
		}
		applog.Error(c, "checkout.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "checkout failed")
	}
	sess.Cart.Clear()

	applog.Audit(c, "checkout.success", map[string]any{"transaction": tx.ID, "total": tx.Total})
	return c.Status(fiber.StatusCreated).JSON(tx)
}
