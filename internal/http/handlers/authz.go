package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "warungpos/internal/log"
	"warungpos/internal/services"
)

// RequireUser resolves the sid cookie to a signed-in user and attaches
// the user's session state. Requests without one get 401.
func RequireUser(auth *services.AuthService, sessions *services.SessionManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return fail(c, fiber.StatusUnauthorized, "sign in required")
		}
		uid, ok := auth.CurrentUser(sid)
		if !ok {
			applog.Security(c, "access.denied", map[string]any{"sid": sid})
			return fail(c, fiber.StatusUnauthorized, "sign in required")
		}
		sess, err := sessions.OnSessionStart(c.Context(), uid)
		if err != nil {
			applog.Error(c, "session.start", err, nil)
			return fail(c, fiber.StatusInternalServerError, "could not load session")
		}
		c.Locals("uid", uid)
		c.Locals("session", sess)
		return c.Next()
	}
}

func session(c *fiber.Ctx) *services.Session {
	return c.Locals("session").(*services.Session)
}
