package gormstore

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/apartrent/apartment-service/internal/domain"
	"github.com/apartrent/apartment-service/internal/repository"
)

// Row types are private to this package; everything crossing the repository
// boundary is a domain entity with string IDs.

type userRow struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:100;not null"`
	FirstName    string `gorm:"size:100"`
	LastName     string `gorm:"size:100"`
	Phone        string `gorm:"size:20"`
	IsAdmin      bool   `gorm:"not null;default:false"`
	IsActive     bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	LastLogin    *time.Time
}

func (userRow) TableName() string { return "users" }

type locationRow struct {
	ID          uint    `gorm:"primaryKey"`
	City        string  `gorm:"size:100;not null;index:idx_locations_address"`
	Street      string  `gorm:"size:100;not null;index:idx_locations_address"`
	HouseNumber string  `gorm:"size:20;not null;index:idx_locations_address"`
	Coordinates *string `gorm:"type:jsonb"`
}

func (locationRow) TableName() string { return "locations" }

type apartmentRow struct {
	ID          uint         `gorm:"primaryKey"`
	Title       string       `gorm:"size:100;not null"`
	Description string       `gorm:"size:1000"`
	Price       float64      `gorm:"not null"`
	OwnerID     uint         `gorm:"not null;index"`
	Owner       *userRow     `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	LocationID  *uint        `gorm:"index"`
	Location    *locationRow `gorm:"foreignKey:LocationID;constraint:OnDelete:SET NULL"`
	Status      string       `gorm:"size:20;not null;default:pending;index"`
	Features    string       `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ModeratedBy *uint
	ModeratedAt *time.Time
}

func (apartmentRow) TableName() string { return "apartments" }

type observationRow struct {
	ID          uint `gorm:"primaryKey"`
	UserID      uint `gorm:"not null;uniqueIndex:uidx_observations_user_apartment"`
	ApartmentID uint `gorm:"not null;uniqueIndex:uidx_observations_user_apartment"`
	CreatedAt   time.Time
}

func (observationRow) TableName() string { return "apartment_observations" }

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// parseID treats a malformed identifier as a lookup miss, the same answer the
// caller would get for a well-formed id that does not exist.
func parseID(s string) (uint, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, repository.ErrNotFound
	}
	return uint(n), nil
}

func (r *userRow) toDomain() *domain.User {
	return &domain.User{
		ID:           formatID(r.ID),
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Phone:        r.Phone,
		IsAdmin:      r.IsAdmin,
		IsActive:     r.IsActive,
		CreatedAt:    r.CreatedAt,
		LastLogin:    r.LastLogin,
	}
}

func userFromDomain(u *domain.User) *userRow {
	return &userRow{
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
}

func (r *locationRow) toDomain() *domain.Location {
	loc := &domain.Location{
		ID:          formatID(r.ID),
		City:        r.City,
		Street:      r.Street,
		HouseNumber: r.HouseNumber,
	}
	if r.Coordinates != nil && *r.Coordinates != "" {
		var pt domain.GeoPoint
		if err := json.Unmarshal([]byte(*r.Coordinates), &pt); err == nil {
			loc.Coordinates = &pt
		}
	}
	return loc
}

func locationFromDomain(l *domain.Location) *locationRow {
	row := &locationRow{
		City:        l.City,
		Street:      l.Street,
		HouseNumber: l.HouseNumber,
	}
	if l.Coordinates != nil {
		if raw, err := json.Marshal(l.Coordinates); err == nil {
			s := string(raw)
			row.Coordinates = &s
		}
	}
	return row
}

func (r *apartmentRow) toDomain() *domain.Apartment {
	apt := &domain.Apartment{
		ID:          formatID(r.ID),
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		OwnerID:     formatID(r.OwnerID),
		Status:      r.Status,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		ModeratedAt: r.ModeratedAt,
	}
	if r.Location != nil {
		apt.Location = *r.Location.toDomain()
	}
	if r.ModeratedBy != nil {
		id := formatID(*r.ModeratedBy)
		apt.ModeratedBy = &id
	}
	if r.Features != "" && r.Features != "{}" {
		var features map[string]string
		if err := json.Unmarshal([]byte(r.Features), &features); err == nil {
			apt.Features = features
		}
	}
	return apt
}

func rowsToApartments(rows []apartmentRow) []domain.Apartment {
	apts := make([]domain.Apartment, 0, len(rows))
	for i := range rows {
		apts = append(apts, *rows[i].toDomain())
	}
	return apts
}

func marshalFeatures(features map[string]string) string {
	if len(features) == 0 {
		return "{}"
	}
	raw, err := json.Marshal(features)
	if err != nil {
		return "{}"
	}
	return string(raw)
}
