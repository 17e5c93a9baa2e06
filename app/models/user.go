package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/S-KABILAN/ECOMMERCE/pkg/crypt"
)

// Role values stored on User.Role.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// resetTokenTTL is how long a password-reset token stays usable.
const resetTokenTTL = 30 * time.Minute

// User is a customer or administrator account. The password is a bcrypt
// hash and never serialises to JSON; the reset token is stored hashed.
type User struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                string             `bson:"name" json:"name" validate:"required,max=30"`
	Email               string             `bson:"email" json:"email" validate:"required,email"`
	Password            string             `bson:"password" json:"-" validate:"required,min=8"`
	Avatar              string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Role                string             `bson:"role" json:"role" validate:"required,in=user,admin"`
	ResetPasswordToken  string             `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetPasswordExpire time.Time          `bson:"resetPasswordExpire,omitempty" json:"-"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
}

func (u *User) SetID(id primitive.ObjectID) { u.ID = id }
func (u *User) SetCreated(t time.Time)      { u.CreatedAt = t }

// IdentityID / IdentityRole satisfy middleware.Identity.
func (u *User) IdentityID() string   { return u.ID.Hex() }
func (u *User) IdentityRole() string { return u.Role }

// NewResetToken generates a fresh reset token, stores its SHA-256 digest and
// expiry on the user, and returns the plain token for the email link.
func (u *User) NewResetToken() (string, error) {
	plain, err := crypt.RandomToken(20)
	if err != nil {
		return "", err
	}
	u.ResetPasswordToken = crypt.Hash(plain)
	u.ResetPasswordExpire = time.Now().Add(resetTokenTTL)
	return plain, nil
}

// ClearResetToken removes any outstanding reset token.
func (u *User) ClearResetToken() {
	u.ResetPasswordToken = ""
	u.ResetPasswordExpire = time.Time{}
}
