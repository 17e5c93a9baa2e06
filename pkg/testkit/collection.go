// Package testkit provides an in-memory stand-in for a MongoDB collection so
// repositories, services and controllers can be tested without a running
// database. Results are produced through the driver's own SingleResult and
// Cursor constructors, so decode behaviour matches the real thing.
package testkit

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is an in-memory mongo collection. It implements the interfaces
// the application queries against (factory.Collection, query.Finder).
type Collection struct {
	mu     sync.Mutex
	docs   []bson.M
	unique []string // field names enforced as unique indexes
}

// NewCollection creates an empty in-memory collection.
func NewCollection() *Collection {
	return &Collection{}
}

// Unique declares unique single-field indexes; violating inserts fail with a
// duplicate key write error (code 11000), just like the real server.
func (c *Collection) Unique(fields ...string) *Collection {
	c.unique = append(c.unique, fields...)
	return c
}

// Count returns the number of stored documents. Test helper.
func (c *Collection) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.docs)
}

var duplicateKeyErr = mongo.WriteException{
	WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}},
}

// ─── Write path ───────────────────────────────────────────────────────────────

func (c *Collection) InsertOne(_ context.Context, document interface{}, _ ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	doc, err := toBsonM(document)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, field := range c.unique {
		val, ok := doc[field]
		if !ok {
			continue
		}
		for _, existing := range c.docs {
			if valuesEqual(existing[field], val) {
				return nil, duplicateKeyErr
			}
		}
	}

	c.docs = append(c.docs, doc)
	return &mongo.InsertOneResult{InsertedID: doc["_id"]}, nil
}

func (c *Collection) UpdateOne(_ context.Context, filter, update interface{}, _ ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	f, err := toBsonM(filter)
	if err != nil {
		return nil, err
	}
	u, err := toBsonM(update)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i, doc := range c.docs {
		if matches(doc, f) {
			c.docs[i] = applyUpdate(doc, u)
			return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
		}
	}
	return &mongo.UpdateResult{}, nil
}

func (c *Collection) FindOneAndUpdate(_ context.Context, filter, update interface{}, _ ...*options.FindOneAndUpdateOptions) *mongo.SingleResult {
	f, err := toBsonM(filter)
	if err != nil {
		return mongo.NewSingleResultFromDocument(bson.D{}, err, nil)
	}
	u, err := toBsonM(update)
	if err != nil {
		return mongo.NewSingleResultFromDocument(bson.D{}, err, nil)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i, doc := range c.docs {
		if matches(doc, f) {
			updated := applyUpdate(doc, u)
			for _, field := range c.unique {
				val, ok := updated[field]
				if !ok {
					continue
				}
				for j, other := range c.docs {
					if j != i && valuesEqual(other[field], val) {
						return mongo.NewSingleResultFromDocument(bson.D{}, duplicateKeyErr, nil)
					}
				}
			}
			c.docs[i] = updated
			// ReturnDocument(After) semantics: hand back the updated doc.
			return mongo.NewSingleResultFromDocument(updated, nil, nil)
		}
	}
	return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
}

func (c *Collection) FindOneAndDelete(_ context.Context, filter interface{}, _ ...*options.FindOneAndDeleteOptions) *mongo.SingleResult {
	f, err := toBsonM(filter)
	if err != nil {
		return mongo.NewSingleResultFromDocument(bson.D{}, err, nil)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i, doc := range c.docs {
		if matches(doc, f) {
			c.docs = append(c.docs[:i], c.docs[i+1:]...)
			return mongo.NewSingleResultFromDocument(doc, nil, nil)
		}
	}
	return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
}

// ─── Read path ────────────────────────────────────────────────────────────────

func (c *Collection) FindOne(_ context.Context, filter interface{}, _ ...*options.FindOneOptions) *mongo.SingleResult {
	f, err := toBsonM(filter)
	if err != nil {
		return mongo.NewSingleResultFromDocument(bson.D{}, err, nil)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, doc := range c.docs {
		if matches(doc, f) {
			return mongo.NewSingleResultFromDocument(doc, nil, nil)
		}
	}
	return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
}

func (c *Collection) Find(_ context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	f, err := toBsonM(filter)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	matched := make([]interface{}, 0)
	for _, doc := range c.docs {
		if matches(doc, f) {
			matched = append(matched, doc)
		}
	}
	c.mu.Unlock()

	var skip, limit int64 = 0, -1
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if opt.Skip != nil {
			skip = *opt.Skip
		}
		if opt.Limit != nil {
			limit = *opt.Limit
		}
	}
	if skip > int64(len(matched)) {
		skip = int64(len(matched))
	}
	matched = matched[skip:]
	if limit >= 0 && limit < int64(len(matched)) {
		matched = matched[:limit]
	}

	return mongo.NewCursorFromDocuments(matched, nil, nil)
}

func (c *Collection) CountDocuments(_ context.Context, filter interface{}, _ ...*options.CountOptions) (int64, error) {
	f, err := toBsonM(filter)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var n int64
	for _, doc := range c.docs {
		if matches(doc, f) {
			n++
		}
	}
	return n, nil
}

// ─── Filter matching ──────────────────────────────────────────────────────────

func matches(doc, filter bson.M) bool {
	for field, cond := range filter {
		val := doc[field]
		if ops, ok := cond.(bson.M); ok && isOperatorDoc(ops) {
			if !matchOps(val, ops) {
				return false
			}
			continue
		}
		if !valuesEqual(val, cond) {
			return false
		}
	}
	return true
}

func isOperatorDoc(m bson.M) bool {
	for k := range m {
		if strings.HasPrefix(k, "$") {
			return true
		}
	}
	return false
}

func matchOps(val interface{}, ops bson.M) bool {
	for op, arg := range ops {
		switch op {
		case "$regex":
			s, ok := val.(string)
			if !ok {
				return false
			}
			pattern, _ := arg.(string)
			pattern = strings.ReplaceAll(pattern, `\`, "") // patterns here are quoted literals
			if opts, _ := ops["$options"].(string); strings.Contains(opts, "i") {
				if !strings.Contains(strings.ToLower(s), strings.ToLower(pattern)) {
					return false
				}
			} else if !strings.Contains(s, pattern) {
				return false
			}
		case "$options":
			// handled together with $regex
		case "$gt", "$gte", "$lt", "$lte":
			a, aok := asFloat(val)
			b, bok := asFloat(arg)
			if !aok || !bok {
				// fall back to time comparison
				ta, taok := asTime(val)
				tb, tbok := asTime(arg)
				if !taok || !tbok {
					return false
				}
				a, b = float64(ta.UnixNano()), float64(tb.UnixNano())
			}
			switch op {
			case "$gt":
				if !(a > b) {
					return false
				}
			case "$gte":
				if !(a >= b) {
					return false
				}
			case "$lt":
				if !(a < b) {
					return false
				}
			case "$lte":
				if !(a <= b) {
					return false
				}
			}
		default:
			return false
		}
	}
	return true
}

func valuesEqual(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if oa, ok := asObjectID(a); ok {
		ob, ok := asObjectID(b)
		return ok && oa == ob
	}
	if fa, ok := asFloat(a); ok {
		fb, ok := asFloat(b)
		return ok && fa == fb
	}
	if ta, ok := asTime(a); ok {
		tb, ok := asTime(b)
		return ok && ta.Equal(tb)
	}
	return a == b
}

func asObjectID(v interface{}) (primitive.ObjectID, bool) {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t, true
	default:
		return primitive.ObjectID{}, false
	}
}

func asFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	default:
		return 0, false
	}
}

func asTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case primitive.DateTime:
		return t.Time(), true
	default:
		return time.Time{}, false
	}
}

// ─── Updates ──────────────────────────────────────────────────────────────────

func applyUpdate(doc, update bson.M) bson.M {
	out := bson.M{}
	for k, v := range doc {
		out[k] = v
	}

	if set, ok := update["$set"].(bson.M); ok {
		for k, v := range set {
			out[k] = normalize(v)
		}
	}
	if unset, ok := update["$unset"].(bson.M); ok {
		for k := range unset {
			delete(out, k)
		}
	}
	if inc, ok := update["$inc"].(bson.M); ok {
		for k, v := range inc {
			cur, _ := asFloat(out[k])
			delta, _ := asFloat(v)
			out[k] = cur + delta
		}
	}
	return out
}

// normalize deep-converts structs and maps to the BSON primitive shapes the
// driver would store, so later reads decode consistently.
func normalize(v interface{}) interface{} {
	switch v.(type) {
	case nil, string, bool, int, int32, int64, float32, float64,
		primitive.ObjectID, primitive.DateTime, time.Time:
		return v
	}
	raw, err := bson.Marshal(bson.M{"v": v})
	if err != nil {
		return v
	}
	var wrapped bson.M
	if err := bson.Unmarshal(raw, &wrapped); err != nil {
		return v
	}
	return wrapped["v"]
}

func toBsonM(v interface{}) (bson.M, error) {
	if m, ok := v.(bson.M); ok {
		// Re-marshal so stored documents use primitive types throughout.
		raw, err := bson.Marshal(m)
		if err != nil {
			return nil, err
		}
		var out bson.M
		if err := bson.Unmarshal(raw, &out); err != nil {
			return nil, err
		}
		// Keep operator arguments untouched: marshalling already preserved
		// them as bson.M values.
		return out, nil
	}

	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out bson.M
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
