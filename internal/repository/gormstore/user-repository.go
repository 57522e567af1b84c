package gormstore

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/apartrent/apartment-service/internal/domain"
	"github.com/apartrent/apartment-service/internal/repository"
)

func (s *Store) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("nil user")
	}

	row := userFromDomain(user)
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		log.Printf("create user error: %v", err)
		return nil, translate(err)
	}
	return row.toDomain(), nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := &userRow{}
	if err := s.db.WithContext(ctx).First(row, "email = ?", email).Error; err != nil {
		return nil, translate(err)
	}
	return row.toDomain(), nil
}

func (s *Store) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	row := &userRow{}
	if err := s.db.WithContext(ctx).First(row, uid).Error; err != nil {
		return nil, translate(err)
	}
	return row.toDomain(), nil
}

func (s *Store) SetUserActive(ctx context.Context, id string, active bool) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&userRow{}).Where("id = ?", uid).
		Update("is_active", active)
	if res.Error != nil {
		log.Printf("set user active error: %v", res.Error)
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) TouchLastLogin(ctx context.Context, id string) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	return translate(s.db.WithContext(ctx).Model(&userRow{}).Where("id = ?", uid).
		Update("last_login", &now).Error)
}

func (s *Store) AllUsers(ctx context.Context) ([]domain.User, error) {
	var rows []userRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	users := make([]domain.User, 0, len(rows))
	for i := range rows {
		users = append(users, *rows[i].toDomain())
	}
	return users, nil
}
