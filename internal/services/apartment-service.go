package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"

	"github.com/apartrent/apartment-service/internal/domain"
	"github.com/apartrent/apartment-service/internal/dto"
	"github.com/apartrent/apartment-service/internal/interfaces"
	"github.com/apartrent/apartment-service/internal/repository"
)

type ApartmentService interface {
	Create(ctx context.Context, actorID string, input dto.ApartmentCreate) (*domain.Apartment, error)
	Get(ctx context.Context, id string) (*domain.Apartment, error)
	Update(ctx context.Context, id string, patch dto.ApartmentUpdate) (*domain.Apartment, error)
	Delete(ctx context.Context, id string) error

	List(ctx context.Context, actor *domain.User, limit, offset int) ([]domain.Apartment, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Apartment, error)
	Pending(ctx context.Context) ([]domain.Apartment, error)
	Search(ctx context.Context, actor *domain.User, filter dto.SearchFilter) ([]domain.Apartment, error)
	Nearby(ctx context.Context, lat, lon, radiusKm float64) ([]domain.Apartment, error)

	SetLocationCoordinates(ctx context.Context, locationID string, lat, lon float64) error

	Moderate(ctx context.Context, id, status, moderatorID string) (*domain.Apartment, error)
	UpdateFeatures(ctx context.Context, id string, features map[string]string) error

	Stats(ctx context.Context) (*dto.SystemStats, error)
	CityDistribution(ctx context.Context) ([]dto.CityStats, error)

	Observe(ctx context.Context, userID, apartmentID string) error
	Unobserve(ctx context.Context, userID, apartmentID string) error
	IsObserved(ctx context.Context, userID, apartmentID string) (bool, error)
	Observations(ctx context.Context, userID string) ([]domain.Apartment, error)
}

type apartmentService struct {
	store    repository.Store
	producer interfaces.ProducerHandler
}

func NewApartmentService(store repository.Store, producer interfaces.ProducerHandler) ApartmentService {
	return &apartmentService{
		store:    store,
		producer: producer,
	}
}

// Create resolves the location through the dedup key and derives the initial
// status from the actor: admin listings go live immediately, everything else
// waits for moderation.
func (a *apartmentService) Create(ctx context.Context, actorID string, input dto.ApartmentCreate) (*domain.Apartment, error) {
	if strings.TrimSpace(input.Title) == "" || input.Price <= 0 {
		return nil, ErrInvalidInput
	}
	if strings.TrimSpace(input.Location.City) == "" || strings.TrimSpace(input.Location.Street) == "" {
		return nil, ErrInvalidInput
	}

	actor, err := a.store.FindUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	loc, err := a.store.FindOrCreateLocation(ctx, domain.Location{
		City:        strings.TrimSpace(input.Location.City),
		Street:      strings.TrimSpace(input.Location.Street),
		HouseNumber: strings.TrimSpace(input.Location.HouseNumber),
	})
	if err != nil {
		return nil, err
	}

	status := domain.StatusPending
	if actor.IsAdmin {
		status = domain.StatusApproved
	}

	apt, err := a.store.CreateApartment(ctx, &domain.Apartment{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Price:       input.Price,
		OwnerID:     actor.ID,
		Location:    *loc,
		Status:      status,
	})
	if err != nil {
		return nil, err
	}

	a.publish(dto.EventListingSubmitted, dto.ListingEvent{
		ApartmentID: apt.ID,
		OwnerID:     apt.OwnerID,
		Status:      apt.Status,
	})
	return apt, nil
}

func (a *apartmentService) Get(ctx context.Context, id string) (*domain.Apartment, error) {
	return a.store.FindApartmentByID(ctx, id)
}

func (a *apartmentService) Update(ctx context.Context, id string, patch dto.ApartmentUpdate) (*domain.Apartment, error) {
	if patch.Price != nil && *patch.Price <= 0 {
		return nil, ErrInvalidInput
	}
	return a.store.UpdateApartment(ctx, id, patch)
}

func (a *apartmentService) Delete(ctx context.Context, id string) error {
	return a.store.DeleteApartment(ctx, id)
}

func (a *apartmentService) List(ctx context.Context, actor *domain.User, limit, offset int) ([]domain.Apartment, error) {
	return a.store.ListVisible(ctx, actor, limit, offset)
}

func (a *apartmentService) ListByOwner(ctx context.Context, ownerID string) ([]domain.Apartment, error) {
	return a.store.ListByOwner(ctx, ownerID)
}

func (a *apartmentService) Pending(ctx context.Context) ([]domain.Apartment, error) {
	return a.store.ListPending(ctx)
}

func (a *apartmentService) Search(ctx context.Context, actor *domain.User, filter dto.SearchFilter) ([]domain.Apartment, error) {
	filter.IncludeUnmoderated = actor != nil && actor.IsAdmin
	return a.store.SearchApartments(ctx, filter)
}

// Nearby returns publicly visible listings within radiusKm of the given
// point. Listings whose location has no coordinates are never matched; the
// distance filter runs here so both storage adapters share one geometry.
func (a *apartmentService) Nearby(ctx context.Context, lat, lon, radiusKm float64) ([]domain.Apartment, error) {
	if radiusKm <= 0 || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, ErrInvalidInput
	}

	visible, err := a.store.ListVisible(ctx, nil, 0, 0)
	if err != nil {
		return nil, err
	}

	nearby := make([]domain.Apartment, 0, len(visible))
	for _, apt := range visible {
		pt := apt.Location.Coordinates
		if pt == nil {
			continue
		}
		if haversineKm(lat, lon, pt.Lat, pt.Lon) <= radiusKm {
			nearby = append(nearby, apt)
		}
	}
	return nearby, nil
}

func (a *apartmentService) SetLocationCoordinates(ctx context.Context, locationID string, lat, lon float64) error {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return ErrInvalidInput
	}
	return a.store.SetLocationCoordinates(ctx, locationID, lat, lon)
}

const earthRadiusKm = 6371.0

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// Moderate is the only path out of pending. The repository applies whatever
// it is told; the status vocabulary and the admin requirement are enforced
// here.
func (a *apartmentService) Moderate(ctx context.Context, id, status, moderatorID string) (*domain.Apartment, error) {
	if !domain.ValidModerationStatus(status) {
		return nil, ErrInvalidStatus
	}

	moderator, err := a.store.FindUserByID(ctx, moderatorID)
	if err != nil {
		return nil, err
	}
	if !moderator.IsAdmin {
		return nil, ErrForbidden
	}

	apt, err := a.store.ModerateApartment(ctx, id, status, moderatorID)
	if err != nil {
		return nil, err
	}

	a.publish(dto.EventListingModerated, dto.ListingEvent{
		ApartmentID: apt.ID,
		OwnerID:     apt.OwnerID,
		Status:      apt.Status,
		ModeratorID: moderatorID,
	})
	return apt, nil
}

func (a *apartmentService) UpdateFeatures(ctx context.Context, id string, features map[string]string) error {
	return a.store.UpdateApartmentFeatures(ctx, id, features)
}

func (a *apartmentService) Stats(ctx context.Context) (*dto.SystemStats, error) {
	return a.store.SystemStats(ctx)
}

func (a *apartmentService) CityDistribution(ctx context.Context) ([]dto.CityStats, error) {
	return a.store.CityDistribution(ctx)
}

// Observe is idempotent: saving an already saved listing is not an error.
func (a *apartmentService) Observe(ctx context.Context, userID, apartmentID string) error {
	if _, err := a.store.FindApartmentByID(ctx, apartmentID); err != nil {
		return err
	}
	err := a.store.AddObservation(ctx, userID, apartmentID)
	if errors.Is(err, repository.ErrDuplicateKey) {
		return nil
	}
	return err
}

func (a *apartmentService) Unobserve(ctx context.Context, userID, apartmentID string) error {
	return a.store.RemoveObservation(ctx, userID, apartmentID)
}

func (a *apartmentService) IsObserved(ctx context.Context, userID, apartmentID string) (bool, error) {
	return a.store.IsObserved(ctx, userID, apartmentID)
}

func (a *apartmentService) Observations(ctx context.Context, userID string) ([]domain.Apartment, error) {
	return a.store.ObservedApartments(ctx, userID)
}

func (a *apartmentService) publish(key string, event dto.ListingEvent) {
	if a.producer == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	_ = a.producer.PublishMessage([]byte(key), payload)
}
