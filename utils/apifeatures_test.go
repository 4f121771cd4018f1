package utils

import (
	"math"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestFilterStripsReservedKeys(t *testing.T) {
	params := url.Values{
		"page":     {"2"},
		"sort":     {"-price"},
		"limit":    {"10"},
		"fields":   {"name,price"},
		"duration": {"5"},
	}

	f := NewAPIFeatures(params).Filter()

	query := f.Query()
	require.Len(t, query, 1)
	assert.Equal(t, int64(5), query["duration"])
	for _, reserved := range []string{"page", "sort", "limit", "fields"} {
		assert.NotContains(t, query, reserved)
	}
}

func TestFilterStripsBracketedReservedKeys(t *testing.T) {
	params := url.Values{"page[gte]": {"2"}, "price[gte]": {"500"}}

	query := NewAPIFeatures(params).Filter().Query()

	require.Len(t, query, 1)
	assert.Contains(t, query, "price")
}

func TestFilterRewritesComparisonOperators(t *testing.T) {
	params := url.Values{
		"price[gte]": {"500"},
		"price[lte]": {"1500"},
	}

	query := NewAPIFeatures(params).Filter().Query()

	assert.Equal(t, bson.M{"$gte": int64(500), "$lte": int64(1500)}, query["price"])
}

func TestFilterLeavesUnknownSuffixAlone(t *testing.T) {
	params := url.Values{"name[regex]": {"forest"}}

	query := NewAPIFeatures(params).Filter().Query()

	assert.Equal(t, bson.M{"regex": "forest"}, query["name"])
}

func TestFilterCastsValues(t *testing.T) {
	params := url.Values{
		"duration":            {"5"},
		"ratingsAverage[gte]": {"4.5"},
		"difficulty":          {"easy"},
	}

	query := NewAPIFeatures(params).Filter().Query()

	assert.Equal(t, int64(5), query["duration"])
	assert.Equal(t, bson.M{"$gte": 4.5}, query["ratingsAverage"])
	assert.Equal(t, "easy", query["difficulty"])
}

func TestFilterRepeatedKeyBecomesIn(t *testing.T) {
	params := url.Values{"difficulty": {"easy", "medium"}}

	query := NewAPIFeatures(params).Filter().Query()

	assert.Equal(t, bson.M{"$in": []interface{}{"easy", "medium"}}, query["difficulty"])
}

func TestSortParsesCommaList(t *testing.T) {
	params := url.Values{"sort": {"-price,name"}}

	f := NewAPIFeatures(params).Sort()

	want := bson.D{
		{Key: "price", Value: -1},
		{Key: "name", Value: 1},
	}
	assert.Equal(t, want, f.SortSpec())
}

func TestSortDefaultsToRatingDescending(t *testing.T) {
	f := NewAPIFeatures(url.Values{}).Sort()

	assert.Equal(t, bson.D{{Key: "ratingsAverage", Value: -1}}, f.SortSpec())
}

func TestLimitFieldsBuildsProjection(t *testing.T) {
	params := url.Values{"fields": {"name,price,-description"}}

	f := NewAPIFeatures(params).LimitFields()

	want := bson.D{
		{Key: "name", Value: 1},
		{Key: "price", Value: 1},
		{Key: "description", Value: 0},
	}
	assert.Equal(t, want, f.ProjectionSpec())
}

func TestLimitFieldsDefaultHidesCreatedAt(t *testing.T) {
	f := NewAPIFeatures(url.Values{}).LimitFields()

	assert.Equal(t, bson.D{{Key: "createdAt", Value: 0}}, f.ProjectionSpec())
}

func TestPaginateComputesWindow(t *testing.T) {
	tests := []struct {
		name      string
		page      string
		limit     string
		wantSkip  int64
		wantLimit int64
	}{
		{"second page", "2", "10", 10, 10},
		{"third page", "3", "10", 20, 10},
		{"defaults", "", "", 0, DefaultLimit},
		{"junk page", "abc", "10", 0, 10},
		{"zero page", "0", "10", 0, 10},
		{"negative limit", "2", "-5", DefaultLimit, DefaultLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := url.Values{}
			if tt.page != "" {
				params.Set("page", tt.page)
			}
			if tt.limit != "" {
				params.Set("limit", tt.limit)
			}

			f := NewAPIFeatures(params).Paginate()

			assert.Equal(t, tt.wantSkip, f.Skip())
			assert.Equal(t, tt.wantLimit, f.Limit())
		})
	}
}

func TestSkipClampsInsteadOfOverflowing(t *testing.T) {
	params := url.Values{
		"page":  {"92233720368547758"},
		"limit": {"1000"},
	}

	f := NewAPIFeatures(params).Paginate()

	assert.Equal(t, int64(math.MaxInt64), f.Skip())
	assert.GreaterOrEqual(t, f.Skip(), int64(0), "skip never goes negative")
}

func TestPageRequested(t *testing.T) {
	assert.False(t, NewAPIFeatures(url.Values{}).PageRequested())
	assert.True(t, NewAPIFeatures(url.Values{"page": {"3"}}).PageRequested())
}

func TestChainingOrderDoesNotChangePredicate(t *testing.T) {
	params := url.Values{
		"price[gte]": {"500"},
		"sort":       {"-price"},
		"page":       {"2"},
		"limit":      {"10"},
	}

	a := NewAPIFeatures(params).Filter().Sort().LimitFields().Paginate()
	b := NewAPIFeatures(params).Paginate().LimitFields().Sort().Filter()

	assert.Equal(t, a.Query(), b.Query())
	assert.Equal(t, a.Skip(), b.Skip())
	assert.Equal(t, a.SortSpec(), b.SortSpec())
}
