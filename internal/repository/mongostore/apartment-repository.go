package mongostore

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/apartrent/apartment-service/internal/domain"
	"github.com/apartrent/apartment-service/internal/dto"
	"github.com/apartrent/apartment-service/internal/repository"
)

func (s *Store) CreateApartment(ctx context.Context, apt *domain.Apartment) (*domain.Apartment, error) {
	locOID, err := parseOID(apt.Location.ID)
	if err != nil {
		return nil, err
	}
	embedded := &locationDoc{}
	if err := s.locations().FindOne(ctx, bson.M{"_id": locOID}).Decode(embedded); err != nil {
		return nil, translate(err)
	}

	status := apt.Status
	if status == "" {
		status = domain.StatusPending
	}
	now := time.Now().UTC()
	doc := &apartmentDoc{
		Title:       apt.Title,
		Description: apt.Description,
		Price:       apt.Price,
		OwnerID:     apt.OwnerID,
		Location:    *embedded,
		Status:      status,
		Features:    apt.Features,
		CreatedAt:   apt.CreatedAt,
		UpdatedAt:   apt.UpdatedAt,
		ModeratedBy: apt.ModeratedBy,
		ModeratedAt: apt.ModeratedAt,
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
		doc.UpdatedAt = now
	}

	res, err := s.apartments().InsertOne(ctx, doc)
	if err != nil {
		log.Printf("create apartment error: %v", err)
		return nil, translate(err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (s *Store) FindApartmentByID(ctx context.Context, id string) (*domain.Apartment, error) {
	oid, err := parseOID(id)
	if err != nil {
		return nil, err
	}
	doc := &apartmentDoc{}
	if err := s.apartments().FindOne(ctx, bson.M{"_id": oid}).Decode(doc); err != nil {
		return nil, translate(err)
	}
	return doc.toDomain(), nil
}

func (s *Store) UpdateApartment(ctx context.Context, id string, patch dto.ApartmentUpdate) (*domain.Apartment, error) {
	oid, err := parseOID(id)
	if err != nil {
		return nil, err
	}

	current := &apartmentDoc{}
	if err := s.apartments().FindOne(ctx, bson.M{"_id": oid}).Decode(current); err != nil {
		return nil, translate(err)
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if _, err := s.apartments().UpdateByID(ctx, oid, bson.M{"$set": set}); err != nil {
		return nil, translate(err)
	}

	if patch.Location != nil {
		err := s.UpdateLocation(ctx, domain.Location{
			ID:          current.Location.ID.Hex(),
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
	oid, err := parseOID(id)
	if err != nil {
		return err
	}
	res, err := s.apartments().DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		log.Printf("delete apartment error: %v", err)
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) ListVisible(ctx context.Context, actor *domain.User, limit, offset int) ([]domain.Apartment, error) {
	filter := bson.M{}
	if actor == nil || !actor.IsAdmin {
		active, err := s.activeUserIDs(ctx)
		if err != nil {
			return nil, err
		}
		filter["status"] = domain.StatusApproved
		filter["owner_id"] = bson.M{"$in": active}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	return s.findApartments(ctx, filter, opts)
}

func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]domain.Apartment, error) {
	return s.findApartments(ctx, bson.M{"owner_id": ownerID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

func (s *Store) ListPending(ctx context.Context) ([]domain.Apartment, error) {
	return s.findApartments(ctx, bson.M{"status": domain.StatusPending},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
}

func (s *Store) AllApartments(ctx context.Context) ([]domain.Apartment, error) {
	return s.findApartments(ctx, bson.M{}, options.Find())
}

func (s *Store) findApartments(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Apartment, error) {
	cursor, err := s.apartments().Find(ctx, filter, opts)
	if err != nil {
		return nil, translate(err)
	}
	defer cursor.Close(ctx)

	var docs []apartmentDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, translate(err)
	}
	return docsToApartments(docs), nil
}

func (s *Store) ModerateApartment(ctx context.Context, id, status, moderatorID string) (*domain.Apartment, error) {
	oid, err := parseOID(id)
	if err != nil {
		return nil, err
	}
	res, err := s.apartments().UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"status":       status,
		"moderated_by": moderatorID,
		"moderated_at": time.Now().UTC(),
	}})
	if err != nil {
		log.Printf("moderate apartment error: %v", err)
		return nil, translate(err)
	}
	if res.MatchedCount == 0 {
		return nil, repository.ErrNotFound
	}
	return s.FindApartmentByID(ctx, id)
}

func (s *Store) SearchApartments(ctx context.Context, filter dto.SearchFilter) ([]domain.Apartment, error) {
	query := bson.M{}
	if !filter.IncludeUnmoderated {
		query["status"] = domain.StatusApproved
	}
	if filter.Query != "" {
		query["$text"] = bson.M{"$search": filter.Query}
	}
	price := bson.M{}
	if filter.MinPrice != nil {
		price["$gte"] = *filter.MinPrice
	}
	if filter.MaxPrice != nil {
		price["$lte"] = *filter.MaxPrice
	}
	if len(price) > 0 {
		query["price"] = price
	}
	if filter.City != "" {
		query["location.city"] = primitive.Regex{Pattern: filter.City, Options: "i"}
	}

	opts := options.Find()
	switch filter.SortBy {
	case "price_asc":
		opts.SetSort(bson.D{{Key: "price", Value: 1}})
	case "price_desc":
		opts.SetSort(bson.D{{Key: "price", Value: -1}})
	case "oldest":
		opts.SetSort(bson.D{{Key: "created_at", Value: 1}})
	default:
		opts.SetSort(bson.D{{Key: "created_at", Value: -1}})
	}
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	if filter.Offset > 0 {
		opts.SetSkip(int64(filter.Offset))
	}
	return s.findApartments(ctx, query, opts)
}

func (s *Store) UpdateApartmentFeatures(ctx context.Context, id string, features map[string]string) error {
	oid, err := parseOID(id)
	if err != nil {
		return err
	}
	set := bson.M{}
	for k, v := range features {
		set["features."+k] = v
	}
	if len(set) == 0 {
		return nil
	}
	res, err := s.apartments().UpdateByID(ctx, oid, bson.M{"$set": set})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) SystemStats(ctx context.Context) (*dto.SystemStats, error) {
	stats := &dto.SystemStats{}
	var err error

	if stats.TotalUsers, err = s.users().CountDocuments(ctx, bson.M{}); err != nil {
		return nil, translate(err)
	}
	if stats.ActiveUsers, err = s.users().CountDocuments(ctx, bson.M{"is_active": true}); err != nil {
		return nil, translate(err)
	}
	if stats.TotalApartments, err = s.apartments().CountDocuments(ctx, bson.M{}); err != nil {
		return nil, translate(err)
	}
	statusCounts := map[string]*int64{
		domain.StatusPending:  &stats.PendingApartments,
		domain.StatusApproved: &stats.ApprovedApartments,
		domain.StatusRejected: &stats.RejectedApartments,
	}
	for status, dst := range statusCounts {
		if *dst, err = s.apartments().CountDocuments(ctx, bson.M{"status": status}); err != nil {
			return nil, translate(err)
		}
	}

	pipeline := []bson.M{
		{"$match": bson.M{"status": domain.StatusApproved}},
		{"$group": bson.M{"_id": nil, "average": bson.M{"$avg": "$price"}}},
	}
	cursor, err := s.apartments().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, translate(err)
	}
	var avgResult []struct {
		Average float64 `bson:"average"`
	}
	if err := cursor.All(ctx, &avgResult); err != nil {
		return nil, translate(err)
	}
	if len(avgResult) > 0 {
		stats.AveragePrice = avgResult[0].Average
	}

	owners, err := s.apartments().Distinct(ctx, "owner_id", bson.M{})
	if err != nil {
		return nil, translate(err)
	}
	stats.TotalOwners = int64(len(owners))
	return stats, nil
}

func (s *Store) CityDistribution(ctx context.Context) ([]dto.CityStats, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"status": domain.StatusApproved}},
		{"$group": bson.M{
			"_id":       "$location.city",
			"count":     bson.M{"$sum": 1},
			"avg_price": bson.M{"$avg": "$price"},
		}},
		{"$sort": bson.M{"count": -1}},
	}
	cursor, err := s.apartments().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, translate(err)
	}
	var raw []struct {
		City     string  `bson:"_id"`
		Count    int64   `bson:"count"`
		AvgPrice float64 `bson:"avg_price"`
	}
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, translate(err)
	}
	result := make([]dto.CityStats, 0, len(raw))
	for _, r := range raw {
		result = append(result, dto.CityStats{City: r.City, Count: r.Count, AvgPrice: r.AvgPrice})
	}
	return result, nil
}
