package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/apartrent/apartment-service/internal/domain"
)

func currentUser(ctx *fiber.Ctx) (*domain.User, bool) {
	user, ok := ctx.Locals("user").(*domain.User)
	return user, ok && user != nil
}

// CurrentUser returns the authenticated user, or nil on anonymous requests.
func CurrentUser(ctx *fiber.Ctx) *domain.User {
	user, ok := currentUser(ctx)
	if !ok {
		return nil
	}
	return user
}
