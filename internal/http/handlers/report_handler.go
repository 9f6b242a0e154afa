package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"warungpos/internal/services"
	"warungpos/internal/validate"
)

type ReportHandler struct {
	Report   *services.ReportService
	Sessions *services.SessionManager
}

// Generate aggregates the session's transaction mirror over
// ?start=YYYY-MM-DD&end=YYYY-MM-DD. The end date covers its whole
// calendar day.
func (h *ReportHandler) Generate(c *fiber.Ctx) error {
	start, err := time.ParseInLocation(validate.DateLayout, c.Query("start"), time.UTC)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid start date, want YYYY-MM-DD")
	}
	end, err := time.ParseInLocation(validate.DateLayout, c.Query("end"), time.UTC)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid end date, want YYYY-MM-DD")
	}
	if end.Before(start) {
		return fail(c, fiber.StatusBadRequest, "end date before start date")
	}

	r := h.Report.Generate(session(c).Transactions(), start, services.EndOfDay(end))
	return c.JSON(r)
}
