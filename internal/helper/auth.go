package helper

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/apartrent/apartment-service/internal/domain"
	"github.com/apartrent/apartment-service/internal/dto"
)

type Auth struct {
	Secret string
}

func SetupAuth(s string) Auth {
	return Auth{
		Secret: s,
	}
}

// GenerateToken issues the session credential: an HS256 token whose subject
// claim is the user's email.
func (a Auth) GenerateToken(email string) (string, error) {
	if email == "" {
		return "", errors.New("required inputs are missing to generate token")
	}

	now := time.Now().Unix()
	exp := time.Now().Add(24 * time.Hour).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": email,
		"iat": now,
		"exp": exp,
	})

	tokenStr, err := token.SignedString([]byte(a.Secret))
	if err != nil {
		return "", errors.New("unable to sign the token")
	}

	return tokenStr, nil
}

func (a Auth) VerifyToken(tokenString string) (dto.AuthClaims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return dto.AuthClaims{}, errors.New("missing token")
	}

	// support both:
	// - "Bearer <token>"
	// - "<token>"
	if strings.HasPrefix(strings.ToLower(tokenString), "bearer ") {
		parts := strings.SplitN(tokenString, " ", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
			return dto.AuthClaims{}, errors.New("invalid token format")
		}
		tokenString = strings.TrimSpace(parts[1])
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(a.Secret), nil
	})
	if err != nil {
		return dto.AuthClaims{}, errors.New("token parse error")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return dto.AuthClaims{}, errors.New("invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return dto.AuthClaims{}, errors.New("missing subject")
	}

	expAny, ok := claims["exp"]
	if !ok {
		return dto.AuthClaims{}, errors.New("missing expiry")
	}
	expFloat, ok := expAny.(float64)
	if !ok {
		return dto.AuthClaims{}, errors.New("invalid expiry type")
	}
	if float64(time.Now().Unix()) > expFloat {
		return dto.AuthClaims{}, errors.New("token expired")
	}

	return dto.AuthClaims{
		Email:  sub,
		Expiry: expFloat,
	}, nil
}

// GetCurrentUser returns the user loaded by the auth middleware, or an error
// when the request carried no valid credential.
func (a Auth) GetCurrentUser(ctx *fiber.Ctx) (*domain.User, error) {
	u := ctx.Locals("user")
	user, ok := u.(*domain.User)
	if !ok || user == nil {
		return nil, errors.New("missing auth user in context")
	}
	return user, nil
}

func (a Auth) HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.New("failed to hash password")
	}
	return string(hashed), nil
}

func (a Auth) VerifyPassword(plain, hashed string) error {
	if err := bcrypt.CompareHashAndPassword(
		[]byte(hashed),
		[]byte(plain),
	); err != nil {
		return errors.New("invalid email or password")
	}
	return nil
}
