package middlewares

import (
	"net/url"
	"strings"

	"note-sage/cmd/server/handlers/auth"
	"note-sage/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	loginPath     = "/login"
	dashboardPath = "/dashboard"
)

// authPages are pages that only make sense for signed-out visitors.
var authPages = map[string]bool{
	"/":       true,
	"/login":  true,
	"/signup": true,
}

// PageGate gates browser page navigation on the session cookie: visitors
// without a valid session are sent to the login page with a redirectedFrom
// parameter, and signed-in visitors landing on the auth pages are sent to
// the dashboard. API routes are never touched; they answer 401 themselves.
func PageGate(cfg config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/ws/") {
			return c.Next()
		}

		signedIn := hasValidSession(c, cfg)

		if strings.HasPrefix(path, dashboardPath) && !signedIn {
			return c.Redirect(loginPath+"?redirectedFrom="+url.QueryEscape(path), fiber.StatusFound)
		}
		if authPages[path] && signedIn {
			return c.Redirect(dashboardPath, fiber.StatusFound)
		}

		return c.Next()
	}
}

// hasValidSession verifies the session cookie's signature and expiry.
func hasValidSession(c *fiber.Ctx, cfg config.Config) bool {
	raw := c.Cookies(auth.SessionCookie)
	if raw == "" {
		return false
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(cfg.JWTSecret), nil
	})
	return err == nil && token.Valid
}
