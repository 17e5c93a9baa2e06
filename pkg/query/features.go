// Package query builds MongoDB filters and find options from URL query
// strings, powering list endpoints:
//
//	GET /api/v1/products?keyword=widget&category=Toys&price[gte]=10&page=2
//
//	f := query.New(r.URL.Query()).Search("name").Filter().Paginate(10)
//	var products []models.Product
//	err := f.Find(ctx, col, &products)
package query

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/S-KABILAN/ECOMMERCE/pkg/cache"
)

// Finder is the subset of *mongo.Collection that Features needs.
type Finder interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

// reserved params never become filter conditions.
var reserved = map[string]bool{"keyword": true, "page": true, "limit": true}

// opSuffixRE matches bracketed operator suffixes: price[gte], stock[lt], ...
var opSuffixRE = regexp.MustCompile(`^(.+)\[(gte|gt|lte|lt)\]$`)

// Features accumulates query-string driven search, filter and pagination
// clauses and produces a bson.M filter plus find options.
type Features struct {
	values url.Values
	base   bson.M

	searchField string
	filter      bool
	perPage     int64
	paginate    bool

	cacheKey string
	cacheTTL time.Duration
}

// New creates a Features over the request query string.
func New(values url.Values) *Features {
	return &Features{values: values, base: bson.M{}}
}

// Where adds fixed conditions that apply regardless of the query string
// (e.g. scoping orders to the authenticated user).
func (f *Features) Where(conditions bson.M) *Features {
	for k, v := range conditions {
		f.base[k] = v
	}
	return f
}

// Search enables keyword matching: ?keyword=widget becomes a case-insensitive
// regex condition on the given field.
func (f *Features) Search(field string) *Features {
	f.searchField = field
	return f
}

// Filter enables pass-through conditions from the remaining query params.
// Plain params match by equality; bracketed params map to range operators:
//
//	?category=Toys          → {"category": "Toys"}
//	?price[gte]=10&price[lte]=50 → {"price": {"$gte": 10, "$lte": 50}}
//
// Unknown params flow into the filter as-is; params matching nothing simply
// yield empty results.
func (f *Features) Filter() *Features {
	f.filter = true
	return f
}

// Paginate enables skip/limit paging: ?page=2 with perPage 10 skips the
// first 10 documents. ?limit= overrides perPage when present.
func (f *Features) Paginate(perPage int64) *Features {
	if perPage <= 0 {
		perPage = 10
	}
	f.perPage = perPage
	f.paginate = true
	return f
}

// Cache serves Find results from Redis under key for ttl, falling back to
// the database on a miss. No-op when Redis is unavailable.
func (f *Features) Cache(key string, ttl time.Duration) *Features {
	f.cacheKey = key
	f.cacheTTL = ttl
	return f
}

// Build computes the final filter document and find options.
func (f *Features) Build() (bson.M, *options.FindOptions) {
	filter := bson.M{}
	for k, v := range f.base {
		filter[k] = v
	}

	if f.searchField != "" {
		if kw := strings.TrimSpace(f.values.Get("keyword")); kw != "" {
			filter[f.searchField] = bson.M{"$regex": regexp.QuoteMeta(kw), "$options": "i"}
		}
	}

	if f.filter {
		for key, vals := range f.values {
			if reserved[key] || len(vals) == 0 || vals[0] == "" {
				continue
			}
			if m := opSuffixRE.FindStringSubmatch(key); m != nil {
				field, op := m[1], "$"+m[2]
				cond, ok := filter[field].(bson.M)
				if !ok {
					cond = bson.M{}
					filter[field] = cond
				}
				cond[op] = coerce(vals[0])
				continue
			}
			if _, taken := filter[key]; taken {
				continue // base conditions and keyword search win
			}
			filter[key] = coerce(vals[0])
		}
	}

	opts := options.Find()
	if f.paginate {
		perPage := f.perPage
		if limit := parsePositive(f.values.Get("limit")); limit > 0 {
			perPage = limit
		}
		page := parsePositive(f.values.Get("page"))
		if page <= 0 {
			page = 1
		}
		opts.SetLimit(perPage).SetSkip(perPage * (page - 1))
	}

	return filter, opts
}

// Find executes the query and decodes all results into dest
// (a pointer to a slice).
func (f *Features) Find(ctx context.Context, col Finder, dest interface{}) error {
	if f.cacheKey != "" && cache.Get(f.cacheKey, dest) {
		return nil
	}

	filter, opts := f.Build()
	cur, err := col.Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	if err := cur.All(ctx, dest); err != nil {
		return err
	}

	if f.cacheKey != "" {
		_ = cache.Set(f.cacheKey, dest, f.cacheTTL)
	}
	return nil
}

// Count returns the number of documents matching the filter, ignoring
// pagination.
func (f *Features) Count(ctx context.Context, col Finder) (int64, error) {
	filter, _ := f.Build()
	return col.CountDocuments(ctx, filter)
}

// coerce converts a query-string value to the type Mongo should compare
// with: numbers stay numeric, booleans stay boolean, everything else is a
// string.
func coerce(s string) interface{} {
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

func parsePositive(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
