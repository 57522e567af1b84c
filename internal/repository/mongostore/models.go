package mongostore

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/apartrent/apartment-service/internal/domain"
	"github.com/apartrent/apartment-service/internal/repository"
)

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	FirstName    string             `bson:"first_name"`
	LastName     string             `bson:"last_name"`
	Phone        string             `bson:"phone"`
	IsAdmin      bool               `bson:"is_admin"`
	IsActive     bool               `bson:"is_active"`
	CreatedAt    time.Time          `bson:"created_at"`
	LastLogin    *time.Time         `bson:"last_login"`
}

type geoDoc struct {
	Lat float64 `bson:"lat"`
	Lon float64 `bson:"lon"`
}

type locationDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	City        string             `bson:"city"`
	Street      string             `bson:"street"`
	HouseNumber string             `bson:"house_number"`
	Coordinates *geoDoc            `bson:"coordinates,omitempty"`
}

// apartmentDoc embeds its location; the locations collection still holds the
// canonical copy, and owner/moderator references are string-typed ObjectID
// hex values.
type apartmentDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Price       float64            `bson:"price"`
	OwnerID     string             `bson:"owner_id"`
	Location    locationDoc        `bson:"location"`
	Status      string             `bson:"status"`
	Features    map[string]string  `bson:"features,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
	ModeratedBy *string            `bson:"moderated_by"`
	ModeratedAt *time.Time         `bson:"moderated_at"`
}

type observationDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      string             `bson:"user_id"`
	ApartmentID string             `bson:"apartment_id"`
	CreatedAt   time.Time          `bson:"created_at"`
}

func parseOID(s string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, repository.ErrNotFound
	}
	return oid, nil
}

func (d *userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Phone:        d.Phone,
		IsAdmin:      d.IsAdmin,
		IsActive:     d.IsActive,
		CreatedAt:    d.CreatedAt,
		LastLogin:    d.LastLogin,
	}
}

func userFromDomain(u *domain.User) *userDoc {
	doc := &userDoc{
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Phone:        u.Phone,
		IsAdmin:      u.IsAdmin,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		LastLogin:    u.LastLogin,
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	return doc
}

func (d *locationDoc) toDomain() *domain.Location {
	loc := &domain.Location{
		ID:          d.ID.Hex(),
		City:        d.City,
		Street:      d.Street,
		HouseNumber: d.HouseNumber,
	}
	if d.Coordinates != nil {
		loc.Coordinates = &domain.GeoPoint{Lat: d.Coordinates.Lat, Lon: d.Coordinates.Lon}
	}
	return loc
}

func locationFromDomain(l *domain.Location) *locationDoc {
	doc := &locationDoc{
		City:        l.City,
		Street:      l.Street,
		HouseNumber: l.HouseNumber,
	}
	if l.Coordinates != nil {
		doc.Coordinates = &geoDoc{Lat: l.Coordinates.Lat, Lon: l.Coordinates.Lon}
	}
	return doc
}

func (d *apartmentDoc) toDomain() *domain.Apartment {
	return &domain.Apartment{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Price:       d.Price,
		OwnerID:     d.OwnerID,
		Location:    *d.Location.toDomain(),
		Status:      d.Status,
		Features:    d.Features,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		ModeratedBy: d.ModeratedBy,
		ModeratedAt: d.ModeratedAt,
	}
}

func docsToApartments(docs []apartmentDoc) []domain.Apartment {
	apts := make([]domain.Apartment, 0, len(docs))
	for i := range docs {
		apts = append(apts, *docs[i].toDomain())
	}
	return apts
}
