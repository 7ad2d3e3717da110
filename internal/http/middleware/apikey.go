package middleware

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"docvault/internal/auth"
)

// APIKeyHeader is the header carrying the client credential.
const APIKeyHeader = "X-API-Key"

// APIKey gates a route on the allow-list keyring. The credential check runs
// before any other validation or store access; a missing or unknown key ends
// the request with 401. Rejected attempts are logged for audit with the
// request coordinates only — no part of the presented key is ever written out.
func APIKey(keyring *auth.Keyring) fiber.Handler {
	return APIKeyWithWriter(keyring, os.Stdout, time.UTC)
}

// APIKeyWithWriter is APIKey with an explicit audit log destination, mainly
// for tests.
func APIKeyWithWriter(keyring *auth.Keyring, w io.Writer, loc *time.Location) fiber.Handler {
	enc := json.NewEncoder(w)

	return func(c *fiber.Ctx) error {
		if keyring.Authenticate(c.Get(APIKeyHeader)) {
			return c.Next()
		}

		rid, _ := c.Locals(RequestIDLocalKey).(string)
		_ = enc.Encode(map[string]any{
			"ts":         time.Now().In(loc).Format(time.RFC3339Nano),
			"level":      "warn",
			"msg":        "unauthorized_request",
			"request_id": rid,
			"method":     c.Method(),
			"path":       c.Path(),
		})

		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"request_id": rid,
			"error": fiber.Map{
				"code":    "UNAUTHORIZED",
				"message": "missing or invalid api key",
			},
		})
	}
}
