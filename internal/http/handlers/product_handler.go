package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"warungpos/internal/domain"
	applog "warungpos/internal/log"
	"warungpos/internal/services"
	"warungpos/internal/store"
	"warungpos/internal/validate"
)

type ProductHandler struct {
	Products *services.ProductService
	Sessions *services.SessionManager
}

type productBody struct {
	Name  string `json:"name"`
	Price string `json:"price"`
	Stock string `json:"stock"`
}

// parse validates the loosely-typed form fields before any store call.
func (b productBody) parse() (name string, price float64, stock int, ok bool) {
	if name, ok = validate.Name(b.Name); !ok {
		return
	}
	if price, ok = validate.Price(b.Price); !ok {
		return
	}
	stock, ok = validate.Stock(b.Stock)
	return
}

// List serves the session's catalog cache filtered by ?q=.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	sess := session(c)
	sess.Catalog.SetFilter(c.Query("q"))
	return c.JSON(fiber.Map{"products": sess.Catalog.Products()})
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid product id")
	}
	p, found := session(c).Catalog.GetProductByID(id)
	if !found {
		return fail(c, fiber.StatusNotFound, "product not found")
	}
	return c.JSON(p)
}

func (h *ProductHandler) Add(c *fiber.Ctx) error {
	var body productBody
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "malformed body")
	}
	name, price, stock, ok := body.parse()
	if !ok {
		return fail(c, fiber.StatusBadRequest, "name, positive price and non-negative stock are required")
	}
	uid := c.Locals("uid").(string)
	id, err := h.Products.Add(c.Context(), uid, name, price, stock)
	if err != nil {
		applog.Error(c, "product.add", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not save product")
	}
	applog.Audit(c, "product.add", map[string]any{"id": id, "name": name})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

// owned loads the product and confirms it belongs to the caller. A
// foreign product reads as not found, never as forbidden.
func (h *ProductHandler) owned(c *fiber.Ctx, id string) (domain.Product, bool) {
	uid := c.Locals("uid").(string)
	p, err := h.Products.Store.GetProduct(c.Context(), id)
	if err != nil {
		return domain.Product{}, false
	}
	if p.UserID != uid {
		applog.Security(c, "product.access.denied", map[string]any{"id": id})
		return domain.Product{}, false
	}
	return p, true
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid product id")
	}
	if _, ok := h.owned(c, id); !ok {
		return fail(c, fiber.StatusNotFound, "product not found")
	}
	var body productBody
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "malformed body")
	}
	name, price, stock, ok := body.parse()
	if !ok {
		return fail(c, fiber.StatusBadRequest, "name, positive price and non-negative stock are required")
	}
	uid := c.Locals("uid").(string)
	p := domain.Product{ID: id, Name: name, Price: price, Stock: stock, UserID: uid}
	if err := h.Products.Update(c.Context(), p); err != nil {
		applog.Error(c, "product.update", err, map[string]any{"id": id})
		return fail(c, fiber.StatusInternalServerError, "could not save product")
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid product id")
	}
	if _, ok := h.owned(c, id); !ok {
		return fail(c, fiber.StatusNotFound, "product not found")
	}
	if err := h.Products.Delete(c.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fail(c, fiber.StatusNotFound, "product not found")
		}
		applog.Error(c, "product.delete", err, map[string]any{"id": id})
		return fail(c, fiber.StatusInternalServerError, "could not delete product")
	}
	applog.Audit(c, "product.delete", map[string]any{"id": id})
	return c.JSON(fiber.Map{"ok": true})
}
