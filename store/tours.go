package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/YashRana03/natours/models"
)

// Tours is the MongoDB repository for tour documents. Secret tours are
// filtered out of every read, including aggregations.
type Tours struct {
	col *mongo.Collection
}

// NewTours wraps the tours collection.
func NewTours(db *mongo.Database) *Tours {
	return &Tours{col: db.Collection("tours")}
}

// hideSecret layers the secret-tour exclusion on top of a caller filter.
func hideSecret(filter bson.M) bson.M {
	notSecret := bson.M{"secret": bson.M{"$ne": true}}
	if len(filter) == 0 {
		return notSecret
	}
	return bson.M{"$and": bson.A{filter, notSecret}}
}

// Find executes a built query against the collection.
func (s *Tours) Find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Tour, error) {
	cursor, err := s.col.Find(ctx, hideSecret(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tours := []models.Tour{}
	if err := cursor.All(ctx, &tours); err != nil {
		return nil, err
	}
	return tours, nil
}

// Count returns how many non-secret documents match the filter.
func (s *Tours) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.col.CountDocuments(ctx, hideSecret(filter))
}

// FindByID fetches a single tour. Malformed IDs are not found.
func (s *Tours) FindByID(ctx context.Context, id string) (*models.Tour, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var t models.Tour
	err = s.col.FindOne(ctx, hideSecret(bson.M{"_id": oid})).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Insert stores a new tour and fills in its generated ID.
func (s *Tours) Insert(ctx context.Context, t *models.Tour) error {
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	_, err := s.col.InsertOne(ctx, t)
	return err
}

// UpdateByID applies a partial update and returns the updated document.
func (s *Tours) UpdateByID(ctx context.Context, id string, set bson.M) (*models.Tour, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var t models.Tour
	err = s.col.FindOneAndUpdate(ctx, hideSecret(bson.M{"_id": oid}), bson.M{"$set": set}, opts).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteByID removes a tour. Secret tours are invisible here too, so the
// delete reports not found for them just like the reads do.
func (s *Tours) DeleteByID(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := s.col.DeleteOne(ctx, hideSecret(bson.M{"_id": oid}))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// TourStats is one group row of the stats aggregation.
type TourStats struct {
	Difficulty string  `bson:"_id" json:"difficulty"`
	NumTours   int     `bson:"numTours" json:"num_tours"`
	NumRatings int     `bson:"numRatings" json:"num_ratings"`
	AvgRating  float64 `bson:"avgRating" json:"avg_rating"`
	AvgPrice   float64 `bson:"avgPrice" json:"avg_price"`
	MinPrice   float64 `bson:"minPrice" json:"min_price"`
	MaxPrice   float64 `bson:"maxPrice" json:"max_price"`
}

// Stats aggregates well-rated tours grouped by difficulty.
func (s *Tours) Stats(ctx context.Context) ([]TourStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "secret", Value: bson.D{{Key: "$ne", Value: true}}}}}},
		{{Key: "$match", Value: bson.D{{Key: "ratingsAverage", Value: bson.D{{Key: "$gte", Value: 4.5}}}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$toUpper", Value: "$difficulty"}}},
			{Key: "numTours", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "numRatings", Value: bson.D{{Key: "$sum", Value: "$ratingsQuantity"}}},
			{Key: "avgRating", Value: bson.D{{Key: "$avg", Value: "$ratingsAverage"}}},
			{Key: "avgPrice", Value: bson.D{{Key: "$avg", Value: "$price"}}},
			{Key: "minPrice", Value: bson.D{{Key: "$min", Value: "$price"}}},
			{Key: "maxPrice", Value: bson.D{{Key: "$max", Value: "$price"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "avgPrice", Value: 1}}}},
	}

	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	stats := []TourStats{}
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}
