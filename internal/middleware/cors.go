package middleware

import (
	"net/http"
	"strings"

	"github.com/calbook/booking-engine/internal/repository"
	"github.com/labstack/echo/v4"
)

// CalendarCORS applies the per-calendar origin allow-list to public
// booking routes. An empty list allows every origin. OPTIONS requests
// are answered here and never reach the handler.
func CalendarCORS(calendars repository.CalendarRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			origin := c.Request().Header.Get(echo.HeaderOrigin)

			var allowed []string
			if id := c.Param("calendar"); id != "" {
				if calendar, err := calendars.Get(c.Request().Context(), id); err == nil {
					allowed = calendar.AllowedOrigins
				}
			}

			if origin != "" && OriginAllowed(origin, allowed) {
				h := c.Response().Header()
				h.Set(echo.HeaderAccessControlAllowOrigin, origin)
				h.Set(echo.HeaderAccessControlAllowMethods, "GET, POST, OPTIONS")
				h.Set(echo.HeaderAccessControlAllowHeaders, "Content-Type")
				h.Set("Access-Control-Max-Age", "86400")
				h.Set(echo.HeaderVary, echo.HeaderOrigin)
			}

			if c.Request().Method == http.MethodOptions {
				return c.NoContent(http.StatusNoContent)
			}
			return next(c)
		}
	}
}

// OriginAllowed reports whether an origin passes the allow-list. The
// comparison is case-insensitive and ignores a trailing slash; an empty
// list means allow all.
func OriginAllowed(origin string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	normalized := normalizeOrigin(origin)
	for _, a := range allowed {
		if normalizeOrigin(a) == normalized {
			return true
		}
	}
	return false
}

func normalizeOrigin(origin string) string {
	return strings.TrimSuffix(strings.ToLower(origin), "/")
}
