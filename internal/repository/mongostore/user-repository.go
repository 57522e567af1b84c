package mongostore

import (
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/apartrent/apartment-service/internal/domain"
	"github.com/apartrent/apartment-service/internal/repository"
)

func (s *Store) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("nil user")
	}

	doc := userFromDomain(user)
	res, err := s.users().InsertOne(ctx, doc)
	if err != nil {
		log.Printf("create user error: %v", err)
		return nil, translate(err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	doc := &userDoc{}
	if err := s.users().FindOne(ctx, bson.M{"email": email}).Decode(doc); err != nil {
		return nil, translate(err)
	}
	return doc.toDomain(), nil
}

func (s *Store) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := parseOID(id)
	if err != nil {
		return nil, err
	}
	doc := &userDoc{}
	if err := s.users().FindOne(ctx, bson.M{"_id": oid}).Decode(doc); err != nil {
		return nil, translate(err)
	}
	return doc.toDomain(), nil
}

func (s *Store) SetUserActive(ctx context.Context, id string, active bool) error {
	oid, err := parseOID(id)
	if err != nil {
		return err
	}
	res, err := s.users().UpdateByID(ctx, oid, bson.M{"$set": bson.M{"is_active": active}})
	if err != nil {
		log.Printf("set user active error: %v", err)
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) TouchLastLogin(ctx context.Context, id string) error {
	oid, err := parseOID(id)
	if err != nil {
		return err
	}
	_, err = s.users().UpdateByID(ctx, oid,
		bson.M{"$set": bson.M{"last_login": time.Now().UTC()}})
	return translate(err)
}

func (s *Store) AllUsers(ctx context.Context) ([]domain.User, error) {
	cursor, err := s.users().Find(ctx, bson.M{})
	if err != nil {
		return nil, translate(err)
	}
	defer cursor.Close(ctx)

	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, translate(err)
	}
	users := make([]domain.User, 0, len(docs))
	for i := range docs {
		users = append(users, *docs[i].toDomain())
	}
	return users, nil
}

// activeUserIDs backs the public-listing visibility rule: listings owned by
// deactivated accounts are hidden from non-admins.
func (s *Store) activeUserIDs(ctx context.Context) ([]string, error) {
	cursor, err := s.users().Find(ctx, bson.M{"is_active": true})
	if err != nil {
		return nil, translate(err)
	}
	defer cursor.Close(ctx)

	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, translate(err)
	}
	ids := make([]string, 0, len(docs))
	for i := range docs {
		ids = append(ids, docs[i].ID.Hex())
	}
	return ids, nil
}
