package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/apartrent/apartment-service/internal/services"
)

func bearerToken(ctx *fiber.Ctx) string {
	// 1) try cookie first
	token := strings.TrimSpace(ctx.Cookies("access_token"))

	// 2) fallback to Authorization header
	if token == "" {
		token = strings.TrimSpace(ctx.Get("Authorization"))
	}
	return token
}

func AuthMiddleware(userSvc services.UserService) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		user, err := userSvc.Authenticate(ctx.UserContext(), bearerToken(ctx))
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}

		ctx.Locals("user", user)
		return ctx.Next()
	}
}

// OptionalAuth loads the user when a valid credential is present and carries
// on anonymously otherwise. Public listing endpoints use it to widen
// visibility for admins.
func OptionalAuth(userSvc services.UserService) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if token := bearerToken(ctx); token != "" {
			if user, err := userSvc.Authenticate(ctx.UserContext(), token); err == nil {
				ctx.Locals("user", user)
			}
		}
		return ctx.Next()
	}
}

func AdminOnly() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		user, ok := currentUser(ctx)
		if !ok {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}

		if !user.IsAdmin {
			return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "admin only",
			})
		}

		return ctx.Next()
	}
}
