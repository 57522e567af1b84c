package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/apartrent/apartment-service/internal/api/rest/middleware"
	"github.com/apartrent/apartment-service/internal/dto"
	"github.com/apartrent/apartment-service/internal/helper/utils"
	"github.com/apartrent/apartment-service/internal/repository"
	"github.com/apartrent/apartment-service/internal/services"
)

type UserHandler struct {
	svc    services.UserService
	aptSvc services.ApartmentService
}

func NewUserHandler(svc services.UserService, aptSvc services.ApartmentService) *UserHandler {
	return &UserHandler{svc: svc, aptSvc: aptSvc}
}

func (h *UserHandler) SetupRoutes(app *fiber.App) {
	user := app.Group("/api/user")

	// Auth
	user.Post("/register", h.Register)
	user.Post("/login", h.Login)
	user.Post("/logout", h.Logout)

	// Profile
	auth := middleware.AuthMiddleware(h.svc)
	user.Get("/me", auth, h.Me)
	user.Get("/observations", auth, h.Observations)
}

func (h *UserHandler) Register(ctx *fiber.Ctx) error {
	var requestBody dto.UserSignup

	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	user, err := h.svc.Register(ctx.UserContext(), requestBody)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			return utils.ResponseError(ctx, fiber.StatusBadRequest, err.Error())
		}
		if errors.Is(err, repository.ErrDuplicateKey) {
			return utils.ResponseError(ctx, fiber.StatusConflict, "email already exists")
		}
		return utils.ResponseStoreError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, user)
}

func (h *UserHandler) Login(ctx *fiber.Ctx) error {
	var requestBody dto.UserLogin
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "email and password are required")
	}

	user, token, err := h.svc.Login(ctx.UserContext(), requestBody)
	if err != nil {
		if errors.Is(err, services.ErrAccountDisabled) {
			return utils.ResponseError(ctx, fiber.StatusForbidden, err.Error())
		}
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "Invalid email or password")
	}

	ctx.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    token,
		HTTPOnly: true,
		Expires:  time.Now().Add(24 * time.Hour),
	})

	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{
		"token": token,
		"user":  user,
	})
}

func (h *UserHandler) Logout(ctx *fiber.Ctx) error {
	ctx.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    "",
		HTTPOnly: true,
		Expires:  time.Now().Add(-time.Hour),
	})
	return utils.ResponseSuccess(ctx, fiber.StatusOK, "logged out")
}

func (h *UserHandler) Me(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)
	if user == nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	apartments, err := h.aptSvc.ListByOwner(ctx.UserContext(), user.ID)
	if err != nil {
		return utils.ResponseStoreError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{
		"user":       user,
		"apartments": apartments,
	})
}

func (h *UserHandler) Observations(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)
	if user == nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	apartments, err := h.aptSvc.Observations(ctx.UserContext(), user.ID)
	if err != nil {
		return utils.ResponseStoreError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, apartments)
}
