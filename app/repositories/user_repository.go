// Package repositories holds the lookups that fall outside the generic
// by-ID accessor: credential and reset-token queries on users.
package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/S-KABILAN/ECOMMERCE/app/models"
	"github.com/S-KABILAN/ECOMMERCE/pkg/apperror"
	"github.com/S-KABILAN/ECOMMERCE/pkg/factory"
)

// UserRepository performs user lookups by secondary keys.
type UserRepository struct {
	col factory.Collection
}

func NewUserRepository(col factory.Collection) *UserRepository {
	return &UserRepository{col: col}
}

// FindByEmail returns the user with the given email, or (nil, nil) when no
// account exists — callers decide whether absence is an error.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Wrap(err)
	}
	return &user, nil
}

// FindByResetToken returns the user holding the hashed reset token, provided
// the token has not expired at now. Expired or unknown tokens yield
// (nil, nil).
func (r *UserRepository) FindByResetToken(ctx context.Context, hashedToken string, now time.Time) (*models.User, error) {
	var user models.User
	err := r.col.FindOne(ctx, bson.M{
		"resetPasswordToken":  hashedToken,
		"resetPasswordExpire": bson.M{"$gt": now},
	}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Wrap(err)
	}
	return &user, nil
}
