package handlers

import (
	"github.com/gofiber/fiber/v2"

	"warungpos/internal/services"
	"warungpos/internal/validate"
)

type CartHandler struct {
	Sessions *services.SessionManager
}

func cartView(c *fiber.Ctx) error {
	sess := session(c)
	return c.JSON(fiber.Map{
		"items": sess.Cart.Items(),
		"total": sess.Cart.Total(),
	})
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	return cartView(c)
}

// Add puts one unit of the product in the cart, bounded by the stock
// known to the catalog cache right now.
func (h *CartHandler) Add(c *fiber.Ctx) error {
	var body struct {
		ProductID string `json:"productId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "malformed body")
	}
	id, ok := validate.ID(body.ProductID)
	if !ok {
		return fail(c, fiber.StatusBadRequest, "missing productId")
	}
	sess := session(c)
	p, found := sess.Catalog.GetProductByID(id)
	if !found {
		return fail(c, fiber.StatusNotFound, "product not found")
	}
	sess.Cart.Add(p)
	return cartView(c)
}

func (h *CartHandler) Increase(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid product id")
	}
	session(c).Cart.Increase(id)
	return cartView(c)
}

func (h *CartHandler) Decrease(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid product id")
	}
	session(c).Cart.Decrease(id)
	return cartView(c)
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid product id")
	}
	session(c).Cart.Remove(id)
	return cartView(c)
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	session(c).Cart.Clear()
	return cartView(c)
}
