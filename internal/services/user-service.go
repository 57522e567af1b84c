package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/apartrent/apartment-service/internal/domain"
	"github.com/apartrent/apartment-service/internal/dto"
	"github.com/apartrent/apartment-service/internal/helper"
	"github.com/apartrent/apartment-service/internal/interfaces"
	"github.com/apartrent/apartment-service/internal/repository"
)

type UserService interface {
	Register(ctx context.Context, input dto.UserSignup) (*domain.User, error)
	Login(ctx context.Context, input dto.UserLogin) (*domain.User, string, error)
	Authenticate(ctx context.Context, token string) (*domain.User, error)
	GetProfile(ctx context.Context, userID string) (*domain.User, error)
	ToggleActive(ctx context.Context, userID string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
}

type userService struct {
	store    repository.Store
	auth     helper.Auth
	producer interfaces.ProducerHandler
}

func NewUserService(store repository.Store, auth helper.Auth, producer interfaces.ProducerHandler) UserService {
	return &userService{
		store:    store,
		auth:     auth,
		producer: producer,
	}
}

func (u *userService) Register(ctx context.Context, input dto.UserSignup) (*domain.User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	phone := strings.TrimSpace(input.Phone)

	if email == "" || strings.TrimSpace(input.Password) == "" || firstName == "" || lastName == "" {
		return nil, ErrInvalidInput
	}
	if !strings.Contains(email, "@") {
		return nil, ErrInvalidInput
	}
	if len(input.Password) < 6 {
		return nil, ErrInvalidInput
	}

	hashed, err := u.auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	newUser := &domain.User{
		Email:        email,
		PasswordHash: hashed,
		FirstName:    firstName,
		LastName:     lastName,
		Phone:        phone,
		IsAdmin:      false,
		IsActive:     true,
	}

	usr, err := u.store.CreateUser(ctx, newUser)
	if err != nil {
		return nil, err
	}

	u.publish(dto.EventUserRegistered, dto.UserEvent{UserID: usr.ID, Email: usr.Email})
	return usr, nil
}

func (u *userService) Login(ctx context.Context, input dto.UserLogin) (*domain.User, string, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := strings.TrimSpace(input.Password)

	if email == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	user, err := u.store.FindUserByEmail(ctx, email)
	if err != nil || user == nil {
		return nil, "", ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, "", ErrAccountDisabled
	}
	if err := u.auth.VerifyPassword(password, user.PasswordHash); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := u.store.TouchLastLogin(ctx, user.ID); err != nil {
		return nil, "", err
	}

	token, err := u.auth.GenerateToken(user.Email)
	if err != nil {
		return nil, "", err
	}

	u.publish(dto.EventUserLoggedIn, dto.UserEvent{UserID: user.ID, Email: user.Email})
	return user, token, nil
}

// Authenticate maps a bearer credential to a user, or ErrUnauthorized. The
// token only carries the email; the record is re-fetched and the active flag
// re-checked, so deactivation and deletion invalidate live tokens
// immediately.
func (u *userService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := u.auth.VerifyToken(token)
	if err != nil {
		return nil, ErrUnauthorized
	}
	user, err := u.store.FindUserByEmail(ctx, claims.Email)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	return user, nil
}

func (u *userService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return u.store.FindUserByID(ctx, userID)
}

func (u *userService) ToggleActive(ctx context.Context, userID string) (*domain.User, error) {
	user, err := u.store.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	active := !user.IsActive
	if err := u.store.SetUserActive(ctx, userID, active); err != nil {
		return nil, err
	}
	user.IsActive = active

	u.publish(dto.EventUserStatusSet, dto.UserEvent{UserID: user.ID, Email: user.Email, Active: &active})
	return user, nil
}

func (u *userService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return u.store.AllUsers(ctx)
}

func (u *userService) publish(key string, event dto.UserEvent) {
	if u.producer == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	_ = u.producer.PublishMessage([]byte(key), payload)
}
