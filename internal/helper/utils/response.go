package utils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/apartrent/apartment-service/internal/repository"
)

func ResponseError(ctx *fiber.Ctx, status int, msg string) error {
	return ctx.Status(status).JSON(fiber.Map{
		"error": msg,
	})
}

// create a generic response function for success
func ResponseSuccess(ctx *fiber.Ctx, status int, data interface{}) error {
	return ctx.Status(status).JSON(fiber.Map{"data": data})
}

// ResponseStoreError maps the repository sentinel errors onto HTTP statuses.
func ResponseStoreError(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ResponseError(ctx, fiber.StatusNotFound, "not found")
	case errors.Is(err, repository.ErrDuplicateKey):
		return ResponseError(ctx, fiber.StatusConflict, "already exists")
	case errors.Is(err, repository.ErrBackendUnavailable):
		return ResponseError(ctx, fiber.StatusServiceUnavailable, "storage unavailable")
	default:
		return ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}
}
