// Package factory provides generic CRUD operations shared by every resource.
// Controllers for products, orders and users all route through the same
// Model[T] so lookup, validation and error semantics stay uniform.
package factory

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/S-KABILAN/ECOMMERCE/pkg/apperror"
	"github.com/S-KABILAN/ECOMMERCE/pkg/query"
	"github.com/S-KABILAN/ECOMMERCE/pkg/validate"
)

// Collection is the subset of *mongo.Collection the factory needs. An
// in-memory implementation backs the test suite.
type Collection interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	FindOneAndUpdate(ctx context.Context, filter, update interface{}, opts ...*options.FindOneAndUpdateOptions) *mongo.SingleResult
	FindOneAndDelete(ctx context.Context, filter interface{}, opts ...*options.FindOneAndDeleteOptions) *mongo.SingleResult
	UpdateOne(ctx context.Context, filter, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

// Identifiable is implemented by documents that receive a generated ID on
// insert.
type Identifiable interface {
	SetID(primitive.ObjectID)
}

// Timestamped is implemented by documents that record their creation time.
type Timestamped interface {
	SetCreated(time.Time)
}

// Model wraps a collection with uniform CRUD semantics for one document type.
type Model[T any] struct {
	name string // resource name used in error messages, e.g. "Product"
	col  Collection
}

// NewModel creates a Model for the named resource backed by col.
func NewModel[T any](name string, col Collection) *Model[T] {
	return &Model[T]{name: name, col: col}
}

// Collection exposes the underlying handle for queries the generic API does
// not cover (list features, atomic $inc updates).
func (m *Model[T]) Collection() Collection { return m.col }

// Find returns a lazy list query scoped by criteria (nil means every
// document). Nothing executes until the returned Features runs against the
// model's collection:
//
//	var orders []models.Order
//	err := m.Find(bson.M{"user": uid}).Find(ctx, m.Collection(), &orders)
func (m *Model[T]) Find(criteria bson.M) *query.Features {
	return query.New(nil).Where(criteria)
}

// Create validates doc against its schema tags and inserts it. Every violated
// field is reported at once. A generated ID and creation timestamp are
// assigned when the document supports them.
func (m *Model[T]) Create(ctx context.Context, doc *T) error {
	if errs := validate.Struct(doc); validate.HasErrors(errs) {
		return apperror.NewValidation(errs)
	}

	var any interface{} = doc
	if ident, ok := any.(Identifiable); ok {
		ident.SetID(primitive.NewObjectID())
	}
	if ts, ok := any.(Timestamped); ok {
		ts.SetCreated(time.Now())
	}

	if _, err := m.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.NewDuplicate("Duplicate field value entered")
		}
		return apperror.Wrap(err)
	}
	return nil
}

// FindByID looks a document up by its hex ID.
//   - malformed ID      → cast error (400)
//   - no such document  → not found (404)
func (m *Model[T]) FindByID(ctx context.Context, id string) (*T, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperror.NewCast(fmt.Sprintf("Cast to ObjectId failed for value %q", id))
	}

	var doc T
	if err := m.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperror.NewNotFound(m.name + " not found")
		}
		return nil, apperror.Wrap(err)
	}
	return &doc, nil
}

// UpdateByID applies the patch fields to the identified document and returns
// the document as stored after the update. The merged result is validated
// against the schema before anything is written, so a patch can never leave
// an invalid document behind.
func (m *Model[T]) UpdateByID(ctx context.Context, id string, patch bson.M) (*T, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperror.NewCast(fmt.Sprintf("Cast to ObjectId failed for value %q", id))
	}

	current, err := m.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	merged, err := mergeInto(current, patch)
	if err != nil {
		return nil, apperror.Wrap(err)
	}
	if errs := validate.Struct(merged); validate.HasErrors(errs) {
		return nil, apperror.NewValidation(errs)
	}

	after := options.After
	res := m.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": patch},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	)

	var updated T
	if err := res.Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperror.NewNotFound(m.name + " not found")
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperror.NewDuplicate("Duplicate field value entered")
		}
		return nil, apperror.Wrap(err)
	}
	return &updated, nil
}

// DeleteByID removes the identified document and returns it.
func (m *Model[T]) DeleteByID(ctx context.Context, id string) (*T, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperror.NewCast(fmt.Sprintf("Cast to ObjectId failed for value %q", id))
	}

	var doc T
	if err := m.col.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperror.NewNotFound(m.name + " not found")
		}
		return nil, apperror.Wrap(err)
	}
	return &doc, nil
}

// mergeInto overlays patch onto a BSON projection of current and decodes the
// result back into the document type, mirroring what the stored document
// will look like after a $set.
func mergeInto[T any](current *T, patch bson.M) (*T, error) {
	raw, err := bson.Marshal(current)
	if err != nil {
		return nil, err
	}

	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	for k, v := range patch {
		doc[k] = v
	}

	rawMerged, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}

	var merged T
	if err := bson.Unmarshal(rawMerged, &merged); err != nil {
		return nil, err
	}
	return &merged, nil
}
