package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "warungpos/internal/log"
	"warungpos/internal/services"
	"warungpos/internal/store"
	"warungpos/internal/validate"
)

type TransactionHandler struct {
	Checkout *services.CheckoutService
	Sessions *services.SessionManager
}

// History serves the live transaction mirror, newest first.
func (h *TransactionHandler) History(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"transactions": session(c).Transactions()})
}

// Cancel rolls a transaction back: stock restored, record deleted, as
// one batch. A transaction referencing a deleted product cannot be
// cancelled; cancelling twice is rejected.
func (h *TransactionHandler) Cancel(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid transaction id")
	}
	sess := session(c)

	tx, err := h.Checkout.Store.GetTransaction(c.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fail(c, fiber.StatusNotFound, "transaction not found")
		}
		applog.Error(c, "transaction.load", err, map[string]any{"id": id})
		return fail(c, fiber.StatusInternalServerError, "cancellation failed")
	}
	if tx.UserID != sess.UserID {
		applog.Security(c, "transaction.cancel.denied", map[string]any{"id": id})
		return fail(c, fiber.StatusNotFound, "transaction not found")
	}

	if err := h.Checkout.Cancel(c.Context(), tx); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fail(c, fiber.StatusConflict, "a product in this transaction no longer exists")
		}
		applog.Error(c, "transaction.cancel", err, map[string]any{"id": id})
		return fail(c, fiber.StatusInternalServerError, "cancellation failed")
	}
	applog.Audit(c, "transaction.cancel", map[string]any{"id": id})
	return c.JSON(fiber.Map{"ok": true})
}

// ExportCSV streams the history in the legacy CSV format.
func (h *TransactionHandler) ExportCSV(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="riwayat_transaksi.csv"`)
	if err := services.ExportCSV(c.Response().BodyWriter(), session(c).Transactions()); err != nil {
		applog.Error(c, "transaction.export", err, nil)
		return fail(c, fiber.StatusInternalServerError, "export failed")
	}
	return nil
}
