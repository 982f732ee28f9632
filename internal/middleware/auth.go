package middleware

import (
	"strings"

	"github.com/VtlBz/foodgram-project/internal/models"
	"github.com/VtlBz/foodgram-project/internal/services"
	"github.com/VtlBz/foodgram-project/internal/types"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	userKey   = "user"
	claimsKey = "token"
)

// NotAuthenticatedMessage is returned when a route needs a user and the
// request carries no credentials.
const NotAuthenticatedMessage = "Учетные данные не были предоставлены."

// Authenticate resolves the "Authorization: Token <token>" header (Bearer is
// accepted too) and stores the user and token claims in the context.
// Requests without the header continue anonymously; an invalid token fails
// with 401.
func Authenticate(db *gorm.DB, tokens *services.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractToken(c)
		if token == "" {
			return c.Next()
		}

		user, claims, err := services.ResolveToken(c.UserContext(), db, tokens, token)
		if err != nil {
			return err
		}

		c.Locals(userKey, user)
		c.Locals(claimsKey, claims)
		return c.Next()
	}
}

// RequireUser rejects anonymous requests.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentUser(c) == nil {
			return types.Unauthorized(NotAuthenticatedMessage)
		}
		return c.Next()
	}
}

// CurrentUser returns the authenticated user or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}

// CurrentToken returns the claims of the token the request was authenticated with.
func CurrentToken(c *fiber.Ctx) *services.TokenClaims {
	claims, _ := c.Locals(claimsKey).(*services.TokenClaims)
	return claims
}

func extractToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return ""
	}
	switch parts[0] {
	case "Token", "Bearer":
		return parts[1]
	}
	return ""
}
