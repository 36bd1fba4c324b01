package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/TaniaLee11/opsflow-circle-sub004/pkg/util"
)

// RequireSchedulerSecret guards the follow-up trigger route with a shared
// bearer secret. An empty configured secret disables the route entirely
// rather than leaving it open.
func RequireSchedulerSecret(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if secret == "" {
			return apperrors.NewUnauthorized("scheduler secret not configured")
		}

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return apperrors.NewUnauthorized("missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return apperrors.NewUnauthorized("invalid authorization header")
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(secret)) != 1 {
			return apperrors.NewUnauthorized("invalid scheduler secret")
		}

		return c.Next()
	}
}
