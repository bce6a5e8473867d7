package mongostore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"swachh-scan-api-server/internal/models"
	"swachh-scan-api-server/internal/store"
)

func (s *Store) InsertFeedback(ctx context.Context, f *models.Feedback) error {
	result, err := s.feedback.InsertOne(ctx, f)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		f.ID = oid
	}
	return nil
}

// literal keeps client-supplied strings such as "$comment" from being read as
// field paths inside an update pipeline.
func literal(v string) bson.M {
	return bson.M{"$literal": v}
}

// updateStage renders upd as the $set stage of an update pipeline. A pipeline
// is needed so "started_at only if unset" is decided by the server in the
// same operation.
func updateStage(upd store.FeedbackUpdate) bson.M {
	set := bson.M{"updated_at": upd.UpdatedAt}
	if upd.Status != "" {
		set["status"] = literal(string(upd.Status))
	}
	if upd.AssignedTo != nil {
		set["assigned_to"] = literal(*upd.AssignedTo)
	}
	if upd.BeforePhotoURL != nil {
		set["before_photo_url"] = literal(*upd.BeforePhotoURL)
	}
	if upd.StaffStartLat != nil {
		set["staff_start_lat"] = *upd.StaffStartLat
	}
	if upd.StaffStartLng != nil {
		set["staff_start_lng"] = *upd.StaffStartLng
	}
	if upd.AfterPhotoURL != nil {
		set["after_photo_url"] = literal(*upd.AfterPhotoURL)
	}
	if upd.StaffCompleteLat != nil {
		set["staff_complete_lat"] = *upd.StaffCompleteLat
	}
	if upd.StaffCompleteLng != nil {
		set["staff_complete_lng"] = *upd.StaffCompleteLng
	}
	switch {
	case upd.StartedAt != nil:
		set["started_at"] = *upd.StartedAt
	case upd.StartedAtIfUnset != nil:
		set["started_at"] = bson.M{"$ifNull": bson.A{"$started_at", *upd.StartedAtIfUnset}}
	}
	if upd.ResolvedAt != nil {
		set["resolved_at"] = *upd.ResolvedAt
	}
	return set
}

func (s *Store) UpdateFeedback(ctx context.Context, id string, upd store.FeedbackUpdate) (*models.Feedback, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrNotFound
	}

	pipeline := mongo.Pipeline{{{Key: "$set", Value: updateStage(upd)}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Feedback
	if err := s.feedback.FindOneAndUpdate(ctx, bson.M{"_id": oid}, pipeline, opts).Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}

func feedbackQuery(filter store.FeedbackFilter) bson.M {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.FacilityCode != "" {
		query["facility_code"] = filter.FacilityCode
	}
	if filter.AssignedTo != "" {
		query["assigned_to"] = filter.AssignedTo
	}
	return query
}

func (s *Store) ListFeedback(ctx context.Context, filter store.FeedbackFilter) ([]models.Feedback, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := s.feedback.Find(ctx, feedbackQuery(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []models.Feedback{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountFeedback(ctx context.Context, status models.FeedbackStatus) (int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return s.feedback.CountDocuments(ctx, filter)
}

func (s *Store) ResolvedCountsByStaff(ctx context.Context, limit int) ([]store.StaffResolvedCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": models.StatusResolved, "assigned_to": bson.M{"$ne": nil}}}},
		{{Key: "$group", Value: bson.M{
			"_id":            "$assigned_to",
			"resolved_count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "resolved_count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}

	cursor, err := s.feedback.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	rows := []store.StaffResolvedCount{}
	for cursor.Next(ctx) {
		var row struct {
			StaffID       string `bson:"_id"`
			ResolvedCount int64  `bson:"resolved_count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		rows = append(rows, store.StaffResolvedCount{StaffID: row.StaffID, ResolvedCount: row.ResolvedCount})
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}
