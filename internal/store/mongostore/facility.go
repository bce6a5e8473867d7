package mongostore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"swachh-scan-api-server/internal/models"
	"swachh-scan-api-server/internal/store"
)

func (s *Store) CreateFacility(ctx context.Context, f *models.Facility) error {
	count, err := s.facilities.CountDocuments(ctx, bson.M{"code": f.Code})
	if err != nil {
		return err
	}
	if count > 0 {
		return store.ErrDuplicate
	}

	result, err := s.facilities.InsertOne(ctx, f)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrDuplicate
		}
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		f.ID = oid
	}
	return nil
}

func (s *Store) GetFacilityByCode(ctx context.Context, code string) (*models.Facility, error) {
	var f models.Facility
	if err := s.facilities.FindOne(ctx, bson.M{"code": code}).Decode(&f); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}
