package gormstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/apartrent/apartment-service/internal/domain"
	"github.com/apartrent/apartment-service/internal/repository"
)

func (s *Store) AddObservation(ctx context.Context, userID, apartmentID string) error {
	uid, err := parseID(userID)
	if err != nil {
		return err
	}
	aid, err := parseID(apartmentID)
	if err != nil {
		return err
	}
	row := &observationRow{UserID: uid, ApartmentID: aid, CreatedAt: time.Now().UTC()}
	return translate(s.db.WithContext(ctx).Create(row).Error)
}

func (s *Store) RemoveObservation(ctx context.Context, userID, apartmentID string) error {
	uid, err := parseID(userID)
	if err != nil {
		return err
	}
	aid, err := parseID(apartmentID)
	if err != nil {
		return err
	}
	return translate(s.db.WithContext(ctx).
		Where("user_id = ? AND apartment_id = ?", uid, aid).
		Delete(&observationRow{}).Error)
}

func (s *Store) IsObserved(ctx context.Context, userID, apartmentID string) (bool, error) {
	uid, err := parseID(userID)
	if err != nil {
		return false, err
	}
	aid, err := parseID(apartmentID)
	if err != nil {
		return false, err
	}
	row := &observationRow{}
	err = s.db.WithContext(ctx).
		Where("user_id = ? AND apartment_id = ?", uid, aid).First(row).Error
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, translate(err)
}

func (s *Store) ObservedApartments(ctx context.Context, userID string) ([]domain.Apartment, error) {
	uid, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	var rows []apartmentRow
	err = s.db.WithContext(ctx).Model(&apartmentRow{}).Preload("Location").
		Joins("JOIN apartment_observations ON apartment_observations.apartment_id = apartments.id").
		Where("apartment_observations.user_id = ?", uid).
		Order("apartment_observations.created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	return rowsToApartments(rows), nil
}

var _ repository.Store = (*Store)(nil)
