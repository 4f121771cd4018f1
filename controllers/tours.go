package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/YashRana03/natours/models"
	"github.com/YashRana03/natours/store"
	"github.com/YashRana03/natours/utils"
)

// TourStore is what the tour handlers need from the repository.
type TourStore interface {
	Find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Tour, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
	FindByID(ctx context.Context, id string) (*models.Tour, error)
	Insert(ctx context.Context, t *models.Tour) error
	UpdateByID(ctx context.Context, id string, set bson.M) (*models.Tour, error)
	DeleteByID(ctx context.Context, id string) error
	Stats(ctx context.Context) ([]store.TourStats, error)
}

// Tours bundles the tour CRUD and stats handlers.
type Tours struct {
	store TourStore
}

// NewTours creates the tour handler set.
func NewTours(s TourStore) *Tours {
	return &Tours{store: s}
}

// GetAllTours lists tours, driven by the filter/sort/fields/page/limit query
// parameters. Requesting a page beyond the matching data is a 404.
func (t *Tours) GetAllTours(c *gin.Context) {
	features := utils.NewAPIFeatures(c.Request.URL.Query()).
		Filter().
		Sort().
		LimitFields().
		Paginate()

	ctx, cancel := requestContext(c)
	defer cancel()

	if features.PageRequested() {
		total, err := t.store.Count(ctx, features.Query())
		if err != nil {
			abortWith(c, err)
			return
		}
		if features.Skip() >= total {
			abortWith(c, utils.NewAppError("This page does not exist", http.StatusNotFound))
			return
		}
	}

	tours, err := t.store.Find(ctx, features.Query(), features.FindOptions())
	if err != nil {
		abortWith(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"results": len(tours),
		"data":    gin.H{"tours": tours},
	})
}

// GetTour fetches a single tour by ID.
func (t *Tours) GetTour(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	tour, err := t.store.FindByID(ctx, c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		abortWith(c, utils.NewAppError("No tour found with that ID", http.StatusNotFound))
		return
	}
	if err != nil {
		abortWith(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   gin.H{"tour": tour},
	})
}

// CreateTour validates and stores a new tour.
func (t *Tours) CreateTour(c *gin.Context) {
	var tour models.Tour
	if err := c.ShouldBindJSON(&tour); err != nil {
		abortWith(c, utils.NewAppError(err.Error(), http.StatusBadRequest))
		return
	}

	if tour.RatingsAverage == 0 {
		tour.RatingsAverage = models.DefaultRating
	}

	if err := tour.Validate(); err != nil {
		abortWith(c, utils.NewAppError(err.Error(), http.StatusBadRequest))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := t.store.Insert(ctx, &tour); err != nil {
		abortWith(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": "success",
		"data":   gin.H{"tour": &tour},
	})
}

// UpdateTourInput allows partial updates; only non-nil fields are written.
type UpdateTourInput struct {
	Name           *string      `json:"name"`
	Duration       *int         `json:"duration"`
	MaxGroupSize   *int         `json:"max_group_size"`
	Difficulty     *string      `json:"difficulty"`
	RatingsAverage *float64     `json:"ratings_average"`
	Price          *float64     `json:"price"`
	PriceDiscount  *float64     `json:"price_discount"`
	Summary        *string      `json:"summary"`
	Description    *string      `json:"description"`
	ImageCover     *string      `json:"image_cover"`
	Images         *[]string    `json:"images"`
	StartDates     *[]time.Time `json:"start_dates"`
}

func (in *UpdateTourInput) validate() error {
	if in.Name != nil && (len(*in.Name) < 10 || len(*in.Name) > 40) {
		return models.ErrTourNameLength
	}
	if in.Duration != nil && *in.Duration <= 0 {
		return models.ErrTourDuration
	}
	if in.MaxGroupSize != nil && *in.MaxGroupSize <= 0 {
		return models.ErrTourGroupSize
	}
	if in.Difficulty != nil && !models.ValidDifficulty(*in.Difficulty) {
		return models.ErrTourDifficulty
	}
	if in.RatingsAverage != nil && (*in.RatingsAverage < 1.0 || *in.RatingsAverage > 5.0) {
		return models.ErrTourRatingRange
	}
	if in.Price != nil && *in.Price <= 0 {
		return models.ErrTourPriceRequired
	}
	if in.Summary != nil && *in.Summary == "" {
		return models.ErrTourSummaryMissing
	}
	return nil
}

func (in *UpdateTourInput) changes() bson.M {
	set := bson.M{}
	if in.Name != nil {
		set["name"] = *in.Name
	}
	if in.Duration != nil {
		set["duration"] = *in.Duration
	}
	if in.MaxGroupSize != nil {
		set["maxGroupSize"] = *in.MaxGroupSize
	}
	if in.Difficulty != nil {
		set["difficulty"] = *in.Difficulty
	}
	if in.RatingsAverage != nil {
		set["ratingsAverage"] = *in.RatingsAverage
	}
	if in.Price != nil {
		set["price"] = *in.Price
	}
	if in.PriceDiscount != nil {
		set["priceDiscount"] = *in.PriceDiscount
	}
	if in.Summary != nil {
		set["summary"] = *in.Summary
	}
	if in.Description != nil {
		set["description"] = *in.Description
	}
	if in.ImageCover != nil {
		set["imageCover"] = *in.ImageCover
	}
	if in.Images != nil {
		set["images"] = *in.Images
	}
	if in.StartDates != nil {
		set["startDates"] = *in.StartDates
	}
	return set
}

// UpdateTour applies a partial update and returns the updated document.
func (t *Tours) UpdateTour(c *gin.Context) {
	var input UpdateTourInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWith(c, utils.NewAppError(err.Error(), http.StatusBadRequest))
		return
	}

	if err := input.validate(); err != nil {
		abortWith(c, utils.NewAppError(err.Error(), http.StatusBadRequest))
		return
	}

	set := input.changes()
	if len(set) == 0 {
		abortWith(c, utils.NewAppError("No fields to update", http.StatusBadRequest))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	tour, err := t.store.UpdateByID(ctx, c.Param("id"), set)
	if errors.Is(err, store.ErrNotFound) {
		abortWith(c, utils.NewAppError("No tour found with that ID", http.StatusNotFound))
		return
	}
	if err != nil {
		abortWith(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   gin.H{"tour": tour},
	})
}

// DeleteTour removes a tour and answers with an empty 204.
func (t *Tours) DeleteTour(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	err := t.store.DeleteByID(ctx, c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		abortWith(c, utils.NewAppError("No tour found with that ID", http.StatusNotFound))
		return
	}
	if err != nil {
		abortWith(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetTourStats returns the per-difficulty aggregation summary.
func (t *Tours) GetTourStats(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	stats, err := t.store.Stats(ctx)
	if err != nil {
		abortWith(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   gin.H{"stats": stats},
	})
}
