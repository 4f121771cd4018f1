package utils

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Pagination defaults applied when the client sends nothing usable.
const (
	DefaultPage  int64 = 1
	DefaultLimit int64 = 100
)

const (
	defaultSortField     = "ratingsAverage"
	defaultExcludedField = "createdAt"
)

// Reserved parameter names carry pagination, sorting and projection
// directives and never become filter predicates.
var reservedKeys = map[string]bool{
	"page":   true,
	"sort":   true,
	"limit":  true,
	"fields": true,
}

var comparisonOps = map[string]bool{
	"gte": true,
	"gt":  true,
	"lte": true,
	"lt":  true,
}

// APIFeatures builds a MongoDB query out of raw request query parameters by
// successive refinement: Filter, Sort, LimitFields, Paginate. The methods
// chain and perform no I/O; the caller executes the final query with Query
// and FindOptions.
type APIFeatures struct {
	params     url.Values
	filter     bson.M
	sort       bson.D
	projection bson.D
	page       int64
	limit      int64
}

// NewAPIFeatures wraps the request parameters with the default sort,
// projection and pagination window.
func NewAPIFeatures(params url.Values) *APIFeatures {
	return &APIFeatures{
		params:     params,
		filter:     bson.M{},
		sort:       bson.D{{Key: defaultSortField, Value: -1}},
		projection: bson.D{{Key: defaultExcludedField, Value: 0}},
		page:       DefaultPage,
		limit:      DefaultLimit,
	}
}

// Filter turns every non-reserved parameter into a predicate. Keys of the
// form field[op] with op in gte/gt/lte/lt are rewritten into the Mongo
// operator syntax; other bracket suffixes pass through untouched. Repeated
// plain keys collapse into an $in clause.
func (f *APIFeatures) Filter() *APIFeatures {
	for key, values := range f.params {
		if reservedKeys[key] || len(values) == 0 {
			continue
		}

		if field, op, ok := splitOperator(key); ok {
			if reservedKeys[field] {
				continue
			}
			cond, _ := f.filter[field].(bson.M)
			if cond == nil {
				cond = bson.M{}
			}
			cond[op] = castValue(values[0])
			f.filter[field] = cond
			continue
		}

		if len(values) > 1 {
			in := make([]interface{}, len(values))
			for i, v := range values {
				in[i] = castValue(v)
			}
			f.filter[key] = bson.M{"$in": in}
			continue
		}

		f.filter[key] = castValue(values[0])
	}
	return f
}

// Sort applies the comma-separated sort parameter, a leading "-" meaning
// descending. Without a sort parameter results come back ranked by rating,
// highest first.
func (f *APIFeatures) Sort() *APIFeatures {
	raw := f.params.Get("sort")
	if raw == "" {
		return f
	}

	sort := bson.D{}
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		order := 1
		if strings.HasPrefix(field, "-") {
			order = -1
			field = field[1:]
		}
		if field == "" {
			continue
		}
		sort = append(sort, bson.E{Key: field, Value: order})
	}
	if len(sort) > 0 {
		f.sort = sort
	}
	return f
}

// LimitFields restricts the projection to the comma-separated fields
// parameter ("-" prefixed names are excluded instead). Without one, only the
// internal createdAt field is hidden.
func (f *APIFeatures) LimitFields() *APIFeatures {
	raw := f.params.Get("fields")
	if raw == "" {
		return f
	}

	proj := bson.D{}
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		include := 1
		if strings.HasPrefix(field, "-") {
			include = 0
			field = field[1:]
		}
		if field == "" {
			continue
		}
		proj = append(proj, bson.E{Key: field, Value: include})
	}
	if len(proj) > 0 {
		f.projection = proj
	}
	return f
}

// Paginate computes the skip/limit window. Non-numeric or non-positive
// page and limit values coerce to the defaults.
func (f *APIFeatures) Paginate() *APIFeatures {
	f.page = positiveInt(f.params.Get("page"), DefaultPage)
	f.limit = positiveInt(f.params.Get("limit"), DefaultLimit)
	return f
}

// Query returns the accumulated filter document.
func (f *APIFeatures) Query() bson.M { return f.filter }

// Skip returns the number of documents in front of the requested window.
// A page so large that (page-1)*limit would overflow clamps to MaxInt64, so
// it lands in the caller's page-overflow check instead of reaching the
// driver as a negative skip.
func (f *APIFeatures) Skip() int64 {
	if f.page > 1 && f.limit > math.MaxInt64/(f.page-1) {
		return math.MaxInt64
	}
	return (f.page - 1) * f.limit
}

// Limit returns the window size.
func (f *APIFeatures) Limit() int64 { return f.limit }

// Page returns the resolved page number.
func (f *APIFeatures) Page() int64 { return f.page }

// PageRequested reports whether the client asked for an explicit page, which
// is when the caller should enforce the page-overflow check.
func (f *APIFeatures) PageRequested() bool { return f.params.Get("page") != "" }

// SortSpec returns the resolved sort document.
func (f *APIFeatures) SortSpec() bson.D { return f.sort }

// ProjectionSpec returns the resolved projection document.
func (f *APIFeatures) ProjectionSpec() bson.D { return f.projection }

// FindOptions assembles the driver options for executing the query.
func (f *APIFeatures) FindOptions() *options.FindOptions {
	return options.Find().
		SetSort(f.sort).
		SetProjection(f.projection).
		SetSkip(f.Skip()).
		SetLimit(f.limit)
}

// splitOperator parses a field[op] key. The bool is false for plain keys.
// Known comparison suffixes come back prefixed as Mongo operators; anything
// else keeps its name.
func splitOperator(key string) (field, op string, ok bool) {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return "", "", false
	}
	field = key[:open]
	op = key[open+1 : len(key)-1]
	if op == "" {
		return "", "", false
	}
	if comparisonOps[op] {
		op = "$" + op
	}
	return field, op, true
}

// castValue maps a query-string value onto the closest Mongo scalar, since
// comparisons against numeric fields need numeric operands.
func castValue(s string) interface{} {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if fl, err := strconv.ParseFloat(s, 64); err == nil {
		return fl
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

func positiveInt(s string, fallback int64) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
