package serverutils

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// SessionHeader lets non-browser clients pass the session id explicitly.
	SessionHeader = "X-Session-ID"
	sessionLocal  = "session_id"
	// MaxSessionIDLength bounds client-supplied ids, which become part of cache keys.
	MaxSessionIDLength = 64
)

// ValidSessionID accepts 1..MaxSessionIDLength characters from [A-Za-z0-9_-]. Issued uuids pass.
func ValidSessionID(sid string) bool {
	if sid == "" || len(sid) > MaxSessionIDLength {
		return false
	}
	for _, r := range sid {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// SessionMiddleware makes sure every request carries a session id. A new uuid is issued and set
// as a cookie on first contact. Malformed ids from the cookie or header are rejected with 400.
func SessionMiddleware(cookieName string) fiber.Handler {
	if cookieName == "" {
		cookieName = "session_id"
	}
	return func(ctx *fiber.Ctx) error {
		sid := ctx.Cookies(cookieName)
		if sid == "" {
			sid = ctx.Get(SessionHeader)
		}
		if sid != "" && !ValidSessionID(sid) {
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(400, "Invalid session id"))
		}
		if sid == "" {
			sid = uuid.NewString()
			ctx.Cookie(&fiber.Cookie{
				Name:     cookieName,
				Value:    sid,
				Path:     "/",
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
				Expires:  time.Now().Add(24 * time.Hour),
			})
		}
		ctx.Set(SessionHeader, sid)
		ctx.Locals(sessionLocal, sid)
		return ctx.Next()
	}
}

// SessionID returns the id attached by SessionMiddleware, or "" when it did not run.
func SessionID(ctx *fiber.Ctx) string {
	sid, _ := ctx.Locals(sessionLocal).(string)
	return sid
}
