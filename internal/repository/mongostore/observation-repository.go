package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/apartrent/apartment-service/internal/domain"
	"github.com/apartrent/apartment-service/internal/repository"
)

func observationFilter(userID, apartmentID string) bson.M {
	return bson.M{"user_id": userID, "apartment_id": apartmentID}
}

func (s *Store) AddObservation(ctx context.Context, userID, apartmentID string) error {
	doc := &observationDoc{
		UserID:      userID,
		ApartmentID: apartmentID,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := s.observations().InsertOne(ctx, doc)
	return translate(err)
}

func (s *Store) RemoveObservation(ctx context.Context, userID, apartmentID string) error {
	_, err := s.observations().DeleteOne(ctx, observationFilter(userID, apartmentID))
	return translate(err)
}

func (s *Store) IsObserved(ctx context.Context, userID, apartmentID string) (bool, error) {
	count, err := s.observations().CountDocuments(ctx, observationFilter(userID, apartmentID))
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

func (s *Store) ObservedApartments(ctx context.Context, userID string) ([]domain.Apartment, error) {
	cursor, err := s.observations().Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, translate(err)
	}
	defer cursor.Close(ctx)

	var observations []observationDoc
	if err := cursor.All(ctx, &observations); err != nil {
		return nil, translate(err)
	}

	apartments := make([]domain.Apartment, 0, len(observations))
	for _, obs := range observations {
		apt, err := s.FindApartmentByID(ctx, obs.ApartmentID)
		if err != nil {
			// the listing may have been deleted since it was saved
			continue
		}
		apartments = append(apartments, *apt)
	}
	return apartments, nil
}

var _ repository.Store = (*Store)(nil)
