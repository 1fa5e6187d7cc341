package auth

import (
	"strings"

	"pulse-lab/contract"
	"pulse-lab/domain"

	"github.com/gofiber/fiber/v2"
)

const identityKey = "identity"

// TokenFromRequest reads "Authorization: Bearer <token>" and falls back to the
// "token" query parameter, which browsers need for websocket handshakes.
func TokenFromRequest(c *fiber.Ctx) string {
	if header := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Query("token")
}

// RequireBearer rejects requests without a valid token and exposes the identity to handlers.
func RequireBearer(verifier contract.ITokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := TokenFromRequest(c)
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authorization token is missing")
		}
		identity, err := verifier.Verify(token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}
		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// IdentityFrom returns the identity stored by RequireBearer.
func IdentityFrom(c *fiber.Ctx) (domain.Identity, bool) {
	identity, ok := c.Locals(identityKey).(domain.Identity)
	return identity, ok
}
