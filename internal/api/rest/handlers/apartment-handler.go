package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/apartrent/apartment-service/internal/api/rest/middleware"
	"github.com/apartrent/apartment-service/internal/dto"
	"github.com/apartrent/apartment-service/internal/helper/utils"
	"github.com/apartrent/apartment-service/internal/services"
)

type ApartmentHandler struct {
	svc     services.ApartmentService
	userSvc services.UserService
}

func NewApartmentHandler(svc services.ApartmentService, userSvc services.UserService) *ApartmentHandler {
	return &ApartmentHandler{svc: svc, userSvc: userSvc}
}

func (h *ApartmentHandler) SetupRoutes(app *fiber.App) {
	apartments := app.Group("/api/apartments")

	optional := middleware.OptionalAuth(h.userSvc)
	auth := middleware.AuthMiddleware(h.userSvc)

	apartments.Get("/", optional, h.List)
	apartments.Get("/search", optional, h.Search)
	apartments.Get("/nearby", h.Nearby)
	apartments.Post("/", auth, h.Create)
	apartments.Get("/:id", optional, h.Get)
	apartments.Put("/:id", auth, h.Update)
	apartments.Delete("/:id", auth, h.Delete)
	apartments.Post("/:id/observe", auth, h.Observe)
	apartments.Delete("/:id/observe", auth, h.Unobserve)
}

func (h *ApartmentHandler) List(ctx *fiber.Ctx) error {
	actor := middleware.CurrentUser(ctx)
	limit := ctx.QueryInt("limit", 100)
	offset := ctx.QueryInt("offset", 0)

	apartments, err := h.svc.List(ctx.UserContext(), actor, limit, offset)
	if err != nil {
		return utils.ResponseStoreError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, apartments)
}

func (h *ApartmentHandler) Search(ctx *fiber.Ctx) error {
	actor := middleware.CurrentUser(ctx)

	filter := dto.SearchFilter{
		Query:  ctx.Query("query"),
		City:   ctx.Query("city"),
		SortBy: ctx.Query("sort_by"),
		Limit:  ctx.QueryInt("limit", 100),
		Offset: ctx.QueryInt("offset", 0),
	}
	if raw := ctx.Query("min_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid min_price")
		}
		filter.MinPrice = &v
	}
	if raw := ctx.Query("max_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid max_price")
		}
		filter.MaxPrice = &v
	}

	apartments, err := h.svc.Search(ctx.UserContext(), actor, filter)
	if err != nil {
		return utils.ResponseStoreError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, apartments)
}

func (h *ApartmentHandler) Nearby(ctx *fiber.Ctx) error {
	lat, err := strconv.ParseFloat(ctx.Query("lat"), 64)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid lat")
	}
	lon, err := strconv.ParseFloat(ctx.Query("lon"), 64)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid lon")
	}
	radius, err := strconv.ParseFloat(ctx.Query("radius_km", "10"), 64)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid radius_km")
	}

	apartments, err := h.svc.Nearby(ctx.UserContext(), lat, lon, radius)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			return utils.ResponseError(ctx, fiber.StatusBadRequest, err.Error())
		}
		return utils.ResponseStoreError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, apartments)
}

func (h *ApartmentHandler) Create(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)
	if user == nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	var requestBody dto.ApartmentCreate
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	apt, err := h.svc.Create(ctx.UserContext(), user.ID, requestBody)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			return utils.ResponseError(ctx, fiber.StatusBadRequest, err.Error())
		}
		return utils.ResponseStoreError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, apt)
}

func (h *ApartmentHandler) Get(ctx *fiber.Ctx) error {
	apt, err := h.svc.Get(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return utils.ResponseStoreError(ctx, err)
	}

	actor := middleware.CurrentUser(ctx)
	isOwner := actor != nil && actor.ID == apt.OwnerID
	isObserved := false
	if actor != nil {
		isObserved, _ = h.svc.IsObserved(ctx.UserContext(), actor.ID, apt.ID)
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{
		"apartment":   apt,
		"is_owner":    isOwner,
		"is_observed": isObserved,
	})
}

// Update and Delete enforce ownership here at the web boundary; the
// repository itself is deliberately ownership-agnostic.
func (h *ApartmentHandler) Update(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)
	if user == nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	apt, err := h.svc.Get(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return utils.ResponseStoreError(ctx, err)
	}
	if apt.OwnerID != user.ID && !user.IsAdmin {
		return utils.ResponseError(ctx, fiber.StatusForbidden, "not the owner")
	}

	var patch dto.ApartmentUpdate
	if err := ctx.BodyParser(&patch); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	updated, err := h.svc.Update(ctx.UserContext(), apt.ID, patch)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			return utils.ResponseError(ctx, fiber.StatusBadRequest, err.Error())
		}
		return utils.ResponseStoreError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, updated)
}

func (h *ApartmentHandler) Delete(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)
	if user == nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	apt, err := h.svc.Get(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return utils.ResponseStoreError(ctx, err)
	}
	if apt.OwnerID != user.ID && !user.IsAdmin {
		return utils.ResponseError(ctx, fiber.StatusForbidden, "not the owner")
	}

	if err := h.svc.Delete(ctx.UserContext(), apt.ID); err != nil {
		return utils.ResponseStoreError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{"deleted": true})
}

func (h *ApartmentHandler) Observe(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)
	if user == nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	if err := h.svc.Observe(ctx.UserContext(), user.ID, ctx.Params("id")); err != nil {
		return utils.ResponseStoreError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{"observed": true})
}

func (h *ApartmentHandler) Unobserve(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)
	if user == nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	if err := h.svc.Unobserve(ctx.UserContext(), user.ID, ctx.Params("id")); err != nil {
		return utils.ResponseStoreError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{"observed": false})
}
