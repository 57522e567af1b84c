package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/apartrent/apartment-service/internal/domain"
	"github.com/apartrent/apartment-service/internal/repository"
)

func (s *Store) FindOrCreateLocation(ctx context.Context, loc domain.Location) (*domain.Location, error) {
	row := &locationRow{}
	err := s.db.WithContext(ctx).
		Where("city = ? AND street = ? AND house_number = ?", loc.City, loc.Street, loc.HouseNumber).
		First(row).Error
	if err == nil {
		return row.toDomain(), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, translate(err)
	}
	return s.CreateLocation(ctx, loc)
}

func (s *Store) CreateLocation(ctx context.Context, loc domain.Location) (*domain.Location, error) {
	row := locationFromDomain(&loc)
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		log.Printf("create location error: %v", err)
		return nil, translate(err)
	}
	return row.toDomain(), nil
}

func (s *Store) FindLocationByID(ctx context.Context, id string) (*domain.Location, error) {
	lid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	row := &locationRow{}
	if err := s.db.WithContext(ctx).First(row, lid).Error; err != nil {
		return nil, translate(err)
	}
	return row.toDomain(), nil
}

func (s *Store) UpdateLocation(ctx context.Context, loc domain.Location) error {
	lid, err := parseID(loc.ID)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&locationRow{}).Where("id = ?", lid).
		Updates(map[string]interface{}{
			"city":         loc.City,
			"street":       loc.Street,
			"house_number": loc.HouseNumber,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) SetLocationCoordinates(ctx context.Context, id string, lat, lon float64) error {
	lid, err := parseID(id)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(domain.GeoPoint{Lat: lat, Lon: lon})
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&locationRow{}).Where("id = ?", lid).
		Update("coordinates", string(raw))
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) AllLocations(ctx context.Context) ([]domain.Location, error) {
	var rows []locationRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	locations := make([]domain.Location, 0, len(rows))
	for i := range rows {
		locations = append(locations, *rows[i].toDomain())
	}
	return locations, nil
}
