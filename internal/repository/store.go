package repository

import (
	"context"

	"github.com/apartrent/apartment-service/internal/domain"
	"github.com/apartrent/apartment-service/internal/dto"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindUserByID(ctx context.Context, id string) (*domain.User, error)
	SetUserActive(ctx context.Context, id string, active bool) error
	TouchLastLogin(ctx context.Context, id string) error
	AllUsers(ctx context.Context) ([]domain.User, error)
}

type LocationRepository interface {
	// FindOrCreateLocation resolves by the (city, street, house_number) dedup
	// key and only inserts when no exact match exists.
	FindOrCreateLocation(ctx context.Context, loc domain.Location) (*domain.Location, error)
	// CreateLocation always inserts, duplicates included. Used by the
	// plain-copy migration mode.
	CreateLocation(ctx context.Context, loc domain.Location) (*domain.Location, error)
	FindLocationByID(ctx context.Context, id string) (*domain.Location, error)
	UpdateLocation(ctx context.Context, loc domain.Location) error
	SetLocationCoordinates(ctx context.Context, id string, lat, lon float64) error
	AllLocations(ctx context.Context) ([]domain.Location, error)
}

type ApartmentRepository interface {
	CreateApartment(ctx context.Context, apt *domain.Apartment) (*domain.Apartment, error)
	FindApartmentByID(ctx context.Context, id string) (*domain.Apartment, error)
	UpdateApartment(ctx context.Context, id string, patch dto.ApartmentUpdate) (*domain.Apartment, error)
	DeleteApartment(ctx context.Context, id string) error

	// ListVisible returns every listing for admins; for everyone else it
	// returns only approved listings owned by active users.
	ListVisible(ctx context.Context, actor *domain.User, limit, offset int) ([]domain.Apartment, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Apartment, error)
	ListPending(ctx context.Context) ([]domain.Apartment, error)
	AllApartments(ctx context.Context) ([]domain.Apartment, error)

	// ModerateApartment sets status, moderated_by and moderated_at. Status
	// semantics are validated by the service layer, not here.
	ModerateApartment(ctx context.Context, id, status, moderatorID string) (*domain.Apartment, error)

	SearchApartments(ctx context.Context, filter dto.SearchFilter) ([]domain.Apartment, error)
	UpdateApartmentFeatures(ctx context.Context, id string, features map[string]string) error
	SystemStats(ctx context.Context) (*dto.SystemStats, error)
	CityDistribution(ctx context.Context) ([]dto.CityStats, error)
}

type ObservationRepository interface {
	AddObservation(ctx context.Context, userID, apartmentID string) error
	RemoveObservation(ctx context.Context, userID, apartmentID string) error
	IsObserved(ctx context.Context, userID, apartmentID string) (bool, error)
	ObservedApartments(ctx context.Context, userID string) ([]domain.Apartment, error)
}

// Store is the full capability set one backing engine provides. The service
// layer and the migration utility only ever see this interface.
type Store interface {
	UserRepository
	LocationRepository
	ApartmentRepository
	ObservationRepository

	EnsureSchema(ctx context.Context) error
	EnsureIndexes(ctx context.Context) error
	Close(ctx context.Context) error
}
