package mongostore

import (
	"context"
	"errors"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/apartrent/apartment-service/internal/domain"
	"github.com/apartrent/apartment-service/internal/repository"
)

func addressFilter(loc domain.Location) bson.M {
	return bson.M{
		"city":         loc.City,
		"street":       loc.Street,
		"house_number": loc.HouseNumber,
	}
}

func (s *Store) FindOrCreateLocation(ctx context.Context, loc domain.Location) (*domain.Location, error) {
	doc := &locationDoc{}
	err := s.locations().FindOne(ctx, addressFilter(loc)).Decode(doc)
	if err == nil {
		return doc.toDomain(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, translate(err)
	}
	return s.CreateLocation(ctx, loc)
}

func (s *Store) CreateLocation(ctx context.Context, loc domain.Location) (*domain.Location, error) {
	doc := locationFromDomain(&loc)
	res, err := s.locations().InsertOne(ctx, doc)
	if err != nil {
		log.Printf("create location error: %v", err)
		return nil, translate(err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (s *Store) FindLocationByID(ctx context.Context, id string) (*domain.Location, error) {
	oid, err := parseOID(id)
	if err != nil {
		return nil, err
	}
	doc := &locationDoc{}
	if err := s.locations().FindOne(ctx, bson.M{"_id": oid}).Decode(doc); err != nil {
		return nil, translate(err)
	}
	return doc.toDomain(), nil
}

// UpdateLocation rewrites the canonical document and every embedded copy held
// by apartments referencing it.
func (s *Store) UpdateLocation(ctx context.Context, loc domain.Location) error {
	oid, err := parseOID(loc.ID)
	if err != nil {
		return err
	}

	fields := addressFilter(loc)
	res, err := s.locations().UpdateByID(ctx, oid, bson.M{"$set": fields})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}

	_, err = s.apartments().UpdateMany(ctx,
		bson.M{"location._id": oid},
		bson.M{"$set": bson.M{
			"location.city":         loc.City,
			"location.street":       loc.Street,
			"location.house_number": loc.HouseNumber,
		}})
	return translate(err)
}

func (s *Store) SetLocationCoordinates(ctx context.Context, id string, lat, lon float64) error {
	oid, err := parseOID(id)
	if err != nil {
		return err
	}
	pt := geoDoc{Lat: lat, Lon: lon}
	res, err := s.locations().UpdateByID(ctx, oid, bson.M{"$set": bson.M{"coordinates": pt}})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	_, err = s.apartments().UpdateMany(ctx,
		bson.M{"location._id": oid},
		bson.M{"$set": bson.M{"location.coordinates": pt}})
	return translate(err)
}

func (s *Store) AllLocations(ctx context.Context) ([]domain.Location, error) {
	cursor, err := s.locations().Find(ctx, bson.M{})
	if err != nil {
		return nil, translate(err)
	}
	defer cursor.Close(ctx)

	var docs []locationDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, translate(err)
	}
	locations := make([]domain.Location, 0, len(docs))
	for i := range docs {
		locations = append(locations, *docs[i].toDomain())
	}
	return locations, nil
}
