package gormstore

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/apartrent/apartment-service/internal/domain"
	"github.com/apartrent/apartment-service/internal/dto"
	"github.com/apartrent/apartment-service/internal/repository"
)

// CreateApartment inserts a listing. The location must already be resolved:
// apt.Location.ID has to reference an existing row.
func (s *Store) CreateApartment(ctx context.Context, apt *domain.Apartment) (*domain.Apartment, error) {
	ownerID, err := parseID(apt.OwnerID)
	if err != nil {
		return nil, err
	}
	locationID, err := parseID(apt.Location.ID)
	if err != nil {
		return nil, err
	}

	status := apt.Status
	if status == "" {
		status = domain.StatusPending
	}

	row := &apartmentRow{
		Title:       apt.Title,
		Description: apt.Description,
		Price:       apt.Price,
		OwnerID:     ownerID,
		LocationID:  &locationID,
		Status:      status,
		Features:    marshalFeatures(apt.Features),
		CreatedAt:   apt.CreatedAt,
		UpdatedAt:   apt.UpdatedAt,
		ModeratedAt: apt.ModeratedAt,
	}
	if row.CreatedAt.IsZero() {
		now := time.Now().UTC()
		row.CreatedAt = now
		row.UpdatedAt = now
	}
	if apt.ModeratedBy != nil {
		if modID, err := parseID(*apt.ModeratedBy); err == nil {
			row.ModeratedBy = &modID
		}
	}

	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		log.Printf("create apartment error: %v", err)
		return nil, translate(err)
	}
	return s.FindApartmentByID(ctx, formatID(row.ID))
}

func (s *Store) FindApartmentByID(ctx context.Context, id string) (*domain.Apartment, error) {
	aid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	row := &apartmentRow{}
	if err := s.db.WithContext(ctx).Preload("Location").First(row, aid).Error; err != nil {
		return nil, translate(err)
	}
	return row.toDomain(), nil
}

// UpdateApartment applies a partial patch. A supplied location updates the
// listing's existing location row in place rather than creating a new one.
func (s *Store) UpdateApartment(ctx context.Context, id string, patch dto.ApartmentUpdate) (*domain.Apartment, error) {
	aid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	row := &apartmentRow{}
	if err := s.db.WithContext(ctx).First(row, aid).Error; err != nil {
		return nil, translate(err)
	}

	updates := map[string]interface{}{"updated_at": time.Now().UTC()}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Price != nil {
		updates["price"] = *patch.Price
	}
	if err := s.db.WithContext(ctx).Model(row).Updates(updates).Error; err != nil {
		return nil, translate(err)
	}

	if patch.Location != nil && row.LocationID != nil {
		err := s.UpdateLocation(ctx, domain.Location{
			ID:          formatID(*row.LocationID),
			City:        patch.Location.City,
			Street:      patch.Location.Street,
			HouseNumber: patch.Location.HouseNumber,
		})
		if err != nil {
			return nil, err
		}
	}

	return s.FindApartmentByID(ctx, id)
}

func (s *Store) DeleteApartment(ctx context.Context, id string) error {
	aid, err := parseID(id)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Delete(&apartmentRow{}, aid)
	if res.Error != nil {
		log.Printf("delete apartment error: %v", res.Error)
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) ListVisible(ctx context.Context, actor *domain.User, limit, offset int) ([]domain.Apartment, error) {
	q := s.db.WithContext(ctx).Model(&apartmentRow{}).Preload("Location")
	if actor == nil || !actor.IsAdmin {
		q = q.Where("status = ?", domain.StatusApproved).
			Where("owner_id IN (?)", s.db.Model(&userRow{}).Select("id").Where("is_active = ?", true))
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}

	var rows []apartmentRow
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	return rowsToApartments(rows), nil
}

func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]domain.Apartment, error) {
	uid, err := parseID(ownerID)
	if err != nil {
		return nil, err
	}
	var rows []apartmentRow
	if err := s.db.WithContext(ctx).Preload("Location").
		Where("owner_id = ?", uid).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	return rowsToApartments(rows), nil
}

func (s *Store) ListPending(ctx context.Context) ([]domain.Apartment, error) {
	var rows []apartmentRow
	if err := s.db.WithContext(ctx).Preload("Location").
		Where("status = ?", domain.StatusPending).Order("created_at").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	return rowsToApartments(rows), nil
}

func (s *Store) AllApartments(ctx context.Context) ([]domain.Apartment, error) {
	var rows []apartmentRow
	if err := s.db.WithContext(ctx).Preload("Location").Order("id").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	return rowsToApartments(rows), nil
}

func (s *Store) ModerateApartment(ctx context.Context, id, status, moderatorID string) (*domain.Apartment, error) {
	aid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	modID, err := parseID(moderatorID)
	if err != nil {
		return nil, err
	}

	res := s.db.WithContext(ctx).Model(&apartmentRow{}).Where("id = ?", aid).
		Updates(map[string]interface{}{
			"status":       status,
			"moderated_by": modID,
			"moderated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		log.Printf("moderate apartment error: %v", res.Error)
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, repository.ErrNotFound
	}
	return s.FindApartmentByID(ctx, id)
}

func (s *Store) SearchApartments(ctx context.Context, filter dto.SearchFilter) ([]domain.Apartment, error) {
	q := s.db.WithContext(ctx).Model(&apartmentRow{}).Preload("Location")

	if !filter.IncludeUnmoderated {
		q = q.Where("status = ?", domain.StatusApproved)
	}
	if filter.Query != "" {
		if s.db.Dialector.Name() == "postgres" {
			q = q.Where("search_vector @@ plainto_tsquery('english', ?)", filter.Query)
		} else {
			pattern := "%" + filter.Query + "%"
			q = q.Where("title LIKE ? OR description LIKE ?", pattern, pattern)
		}
	}
	if filter.MinPrice != nil {
		q = q.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.City != "" {
		q = q.Where("location_id IN (?)",
			s.db.Model(&locationRow{}).Select("id").Where("city LIKE ?", "%"+filter.City+"%"))
	}

	switch filter.SortBy {
	case "price_asc":
		q = q.Order("price ASC")
	case "price_desc":
		q = q.Order("price DESC")
	case "oldest":
		q = q.Order("created_at ASC")
	default:
		q = q.Order("created_at DESC")
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var rows []apartmentRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	return rowsToApartments(rows), nil
}

// UpdateApartmentFeatures merges the given keys into the stored feature map.
func (s *Store) UpdateApartmentFeatures(ctx context.Context, id string, features map[string]string) error {
	aid, err := parseID(id)
	if err != nil {
		return err
	}
	row := &apartmentRow{}
	if err := s.db.WithContext(ctx).First(row, aid).Error; err != nil {
		return translate(err)
	}

	merged := map[string]string{}
	if row.Features != "" {
		_ = json.Unmarshal([]byte(row.Features), &merged)
	}
	for k, v := range features {
		merged[k] = v
	}
	return translate(s.db.WithContext(ctx).Model(row).
		Update("features", marshalFeatures(merged)).Error)
}

func (s *Store) SystemStats(ctx context.Context) (*dto.SystemStats, error) {
	db := s.db.WithContext(ctx)
	stats := &dto.SystemStats{}

	if err := db.Model(&userRow{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, translate(err)
	}
	if err := db.Model(&userRow{}).Where("is_active = ?", true).Count(&stats.ActiveUsers).Error; err != nil {
		return nil, translate(err)
	}
	if err := db.Model(&apartmentRow{}).Count(&stats.TotalApartments).Error; err != nil {
		return nil, translate(err)
	}
	statusCounts := map[string]*int64{
		domain.StatusPending:  &stats.PendingApartments,
		domain.StatusApproved: &stats.ApprovedApartments,
		domain.StatusRejected: &stats.RejectedApartments,
	}
	for status, dst := range statusCounts {
		if err := db.Model(&apartmentRow{}).Where("status = ?", status).Count(dst).Error; err != nil {
			return nil, translate(err)
		}
	}
	if err := db.Model(&apartmentRow{}).Where("status = ?", domain.StatusApproved).
		Select("COALESCE(AVG(price), 0)").Scan(&stats.AveragePrice).Error; err != nil {
		return nil, translate(err)
	}
	if err := db.Model(&apartmentRow{}).
		Select("COUNT(DISTINCT owner_id)").Scan(&stats.TotalOwners).Error; err != nil {
		return nil, translate(err)
	}
	return stats, nil
}

func (s *Store) CityDistribution(ctx context.Context) ([]dto.CityStats, error) {
	var result []dto.CityStats
	err := s.db.WithContext(ctx).Model(&apartmentRow{}).
		Select("locations.city AS city, COUNT(*) AS count, AVG(apartments.price) AS avg_price").
		Joins("JOIN locations ON locations.id = apartments.location_id").
		Where("apartments.status = ?", domain.StatusApproved).
		Group("locations.city").
		Order("count DESC").
		Scan(&result).Error
	if err != nil {
		return nil, translate(err)
	}
	return result, nil
}
