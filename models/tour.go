package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tour difficulties.
const (
	DifficultyEasy      = "easy"
	DifficultyMedium    = "medium"
	DifficultyDifficult = "difficult"
)

var (
	ErrTourNameRequired   = errors.New("a tour must have a name")
	ErrTourNameLength     = errors.New("a tour name must have between 10 and 40 characters")
	ErrTourDuration       = errors.New("a tour must have a duration")
	ErrTourGroupSize      = errors.New("a tour must have a group size")
	ErrTourDifficulty     = errors.New("difficulty must be easy, medium or difficult")
	ErrTourRatingRange    = errors.New("rating must be between 1.0 and 5.0")
	ErrTourPriceRequired  = errors.New("a tour must have a price")
	ErrTourDiscountAbove  = errors.New("the discount price should be less than the price")
	ErrTourSummaryMissing = errors.New("a tour must have a summary")
)

// Tour is a bookable tour document. Secret tours are hidden from every
// public read.
type Tour struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"`
	Slug            string             `bson:"slug,omitempty" json:"slug,omitempty"`
	Secret          bool               `bson:"secret,omitempty" json:"-"`
	Duration        int                `bson:"duration" json:"duration"`
	MaxGroupSize    int                `bson:"maxGroupSize" json:"max_group_size"`
	Difficulty      string             `bson:"difficulty" json:"difficulty"`
	RatingsAverage  float64            `bson:"ratingsAverage" json:"ratings_average"`
	RatingsQuantity int                `bson:"ratingsQuantity" json:"ratings_quantity"`
	Price           float64            `bson:"price" json:"price"`
	PriceDiscount   float64            `bson:"priceDiscount,omitempty" json:"price_discount,omitempty"`
	Summary         string             `bson:"summary" json:"summary"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	ImageCover      string             `bson:"imageCover,omitempty" json:"image_cover,omitempty"`
	Images          []string           `bson:"images,omitempty" json:"images,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt,omitempty" json:"created_at,omitempty"`
	StartDates      []time.Time        `bson:"startDates,omitempty" json:"start_dates,omitempty"`
}

// DefaultRating is applied when a new tour has no rating yet.
const DefaultRating = 4.5

// Validate checks the document before it is persisted.
func (t *Tour) Validate() error {
	if t.Name == "" {
		return ErrTourNameRequired
	}
	if len(t.Name) < 10 || len(t.Name) > 40 {
		return ErrTourNameLength
	}
	if t.Duration <= 0 {
		return ErrTourDuration
	}
	if t.MaxGroupSize <= 0 {
		return ErrTourGroupSize
	}
	if !ValidDifficulty(t.Difficulty) {
		return ErrTourDifficulty
	}
	if t.RatingsAverage < 1.0 || t.RatingsAverage > 5.0 {
		return ErrTourRatingRange
	}
	if t.Price <= 0 {
		return ErrTourPriceRequired
	}
	if t.PriceDiscount != 0 && t.PriceDiscount >= t.Price {
		return ErrTourDiscountAbove
	}
	if t.Summary == "" {
		return ErrTourSummaryMissing
	}
	return nil
}

// ValidDifficulty reports whether d is one of the known difficulties.
func ValidDifficulty(d string) bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyDifficult:
		return true
	}
	return false
}
