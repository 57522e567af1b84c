package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/apartrent/apartment-service/internal/api/rest/middleware"
	"github.com/apartrent/apartment-service/internal/dto"
	"github.com/apartrent/apartment-service/internal/helper/utils"
	"github.com/apartrent/apartment-service/internal/services"
)

type AdminHandler struct {
	userSvc services.UserService
	aptSvc  services.ApartmentService
}

func NewAdminHandler(userSvc services.UserService, aptSvc services.ApartmentService) *AdminHandler {
	return &AdminHandler{userSvc: userSvc, aptSvc: aptSvc}
}

func (h *AdminHandler) SetupRoutes(app *fiber.App) {
	admin := app.Group("/api/admin",
		middleware.AuthMiddleware(h.userSvc),
		middleware.AdminOnly())

	admin.Get("/stats", h.Stats)
	admin.Get("/stats/city-distribution", h.CityDistribution)
	admin.Get("/users", h.ListUsers)
	admin.Post("/users/:id/toggle-status", h.ToggleUserStatus)
	admin.Get("/apartments/pending", h.PendingApartments)
	admin.Post("/apartments/:id/moderate", h.ModerateApartment)
	admin.Patch("/apartments/:id/features", h.UpdateFeatures)
	admin.Patch("/locations/:id/coordinates", h.SetLocationCoordinates)
}

func (h *AdminHandler) Stats(ctx *fiber.Ctx) error {
	stats, err := h.aptSvc.Stats(ctx.UserContext())
	if err != nil {
		return utils.ResponseStoreError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, stats)
}

func (h *AdminHandler) CityDistribution(ctx *fiber.Ctx) error {
	distribution, err := h.aptSvc.CityDistribution(ctx.UserContext())
	if err != nil {
		return utils.ResponseStoreError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, distribution)
}

func (h *AdminHandler) ListUsers(ctx *fiber.Ctx) error {
	users, err := h.userSvc.ListUsers(ctx.UserContext())
	if err != nil {
		return utils.ResponseStoreError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, users)
}

func (h *AdminHandler) ToggleUserStatus(ctx *fiber.Ctx) error {
	user, err := h.userSvc.ToggleActive(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return utils.ResponseStoreError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, user)
}

func (h *AdminHandler) PendingApartments(ctx *fiber.Ctx) error {
	apartments, err := h.aptSvc.Pending(ctx.UserContext())
	if err != nil {
		return utils.ResponseStoreError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, apartments)
}

func (h *AdminHandler) ModerateApartment(ctx *fiber.Ctx) error {
	moderator := middleware.CurrentUser(ctx)
	if moderator == nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	var requestBody dto.ModerateRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	apt, err := h.aptSvc.Moderate(ctx.UserContext(), ctx.Params("id"), requestBody.Status, moderator.ID)
	if err != nil {
		if errors.Is(err, services.ErrInvalidStatus) {
			return utils.ResponseError(ctx, fiber.StatusBadRequest, err.Error())
		}
		if errors.Is(err, services.ErrForbidden) {
			return utils.ResponseError(ctx, fiber.StatusForbidden, err.Error())
		}
		return utils.ResponseStoreError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, apt)
}

func (h *AdminHandler) SetLocationCoordinates(ctx *fiber.Ctx) error {
	var requestBody dto.CoordinatesInput
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	err := h.aptSvc.SetLocationCoordinates(ctx.UserContext(), ctx.Params("id"),
		requestBody.Lat, requestBody.Lon)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			return utils.ResponseError(ctx, fiber.StatusBadRequest, err.Error())
		}
		return utils.ResponseStoreError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{"updated": true})
}

func (h *AdminHandler) UpdateFeatures(ctx *fiber.Ctx) error {
	var requestBody dto.FeaturesUpdate
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	if err := h.aptSvc.UpdateFeatures(ctx.UserContext(), ctx.Params("id"), requestBody.Features); err != nil {
		return utils.ResponseStoreError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{"updated": true})
}
