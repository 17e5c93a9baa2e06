// Package services holds the business logic between controllers and the
// data layer.
package services

import (
	"context"
	"fmt"
	"path"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/S-KABILAN/ECOMMERCE/app/models"
	"github.com/S-KABILAN/ECOMMERCE/app/repositories"
	"github.com/S-KABILAN/ECOMMERCE/pkg/apperror"
	"github.com/S-KABILAN/ECOMMERCE/pkg/auth"
	"github.com/S-KABILAN/ECOMMERCE/pkg/crypt"
	"github.com/S-KABILAN/ECOMMERCE/pkg/factory"
	"github.com/S-KABILAN/ECOMMERCE/pkg/logger"
	"github.com/S-KABILAN/ECOMMERCE/pkg/mail"
	"github.com/S-KABILAN/ECOMMERCE/pkg/storage"
)

// MailFunc delivers one email. Injectable so tests run without SMTP.
type MailFunc func(to, subject, body string) error

// AuthService implements account lifecycle: registration, login, password
// recovery and profile management.
type AuthService struct {
	Users *factory.Model[models.User]
	Repo  *repositories.UserRepository
	Mail  MailFunc
}

// NewAuthService wires an AuthService over the users collection with the
// SMTP mailer.
func NewAuthService(col factory.Collection) *AuthService {
	return &AuthService{
		Users: factory.NewModel[models.User]("User", col),
		Repo:  repositories.NewUserRepository(col),
		Mail: func(to, subject, body string) error {
			return mail.To(to).Subject(subject).Text(body).Send()
		},
	}
}

// Register creates a new customer account with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperror.Wrap(err)
	}

	user := models.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     models.RoleUser,
	}
	if err := s.Users.Create(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login verifies credentials. Unknown email and wrong password return the
// same generic error so the response never reveals which half failed.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.Repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.CheckPassword(user.Password, password) {
		return nil, apperror.NewToken("Invalid email or password")
	}
	return user, nil
}

// ForgotPassword generates a single-use reset token, emails the reset URL,
// and persists only the token's digest. If the email cannot be sent the
// stored token is rolled back so the account holds no dangling credential.
func (s *AuthService) ForgotPassword(ctx context.Context, email, resetURLBase string) error {
	user, err := s.Repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.NewNotFound("User not found with this email")
	}

	plain, err := user.NewResetToken()
	if err != nil {
		return apperror.Wrap(err)
	}

	if _, err := s.Users.UpdateByID(ctx, user.ID.Hex(), bson.M{
		"resetPasswordToken":  user.ResetPasswordToken,
		"resetPasswordExpire": user.ResetPasswordExpire,
	}); err != nil {
		return err
	}

	resetURL := resetURLBase + "/" + plain
	body := fmt.Sprintf(
		"Your password reset token is as follows:\n\n%s\n\nIf you have not requested this email, then ignore it.",
		resetURL,
	)

	if err := s.Mail(user.Email, "Password Recovery", body); err != nil {
		logger.WithCtx(ctx).Error("reset mail failed", "email", user.Email, "error", err.Error())
		// Roll the token back; the account must not keep an unusable token.
		_, _ = s.Users.UpdateByID(ctx, user.ID.Hex(), bson.M{
			"resetPasswordToken":  "",
			"resetPasswordExpire": time.Time{},
		})
		return apperror.Wrap(err)
	}
	return nil
}

// ResetPassword redeems a reset token. Expired or unknown tokens fail
// without touching the stored credential.
func (s *AuthService) ResetPassword(ctx context.Context, token, password, confirm string) (*models.User, error) {
	user, err := s.Repo.FindByResetToken(ctx, crypt.Hash(token), time.Now())
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewBadRequest("Password reset token is invalid or has been expired")
	}
	if password != confirm {
		return nil, apperror.NewBadRequest("Password does not match")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperror.Wrap(err)
	}
	return s.Users.UpdateByID(ctx, user.ID.Hex(), bson.M{
		"password":            hash,
		"resetPasswordToken":  "",
		"resetPasswordExpire": time.Time{},
	})
}

// ChangePassword replaces the password after verifying the old one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.Password, oldPassword) {
		return apperror.NewBadRequest("Old password is incorrect")
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return apperror.Wrap(err)
	}
	_, err = s.Users.UpdateByID(ctx, userID, bson.M{"password": hash})
	return err
}

// UpdateProfile updates the name/email whitelist on the user's own account.
func (s *AuthService) UpdateProfile(ctx context.Context, userID, name, email string) (*models.User, error) {
	return s.Users.UpdateByID(ctx, userID, bson.M{"name": name, "email": email})
}

// UploadAvatar stores the image on the configured disk and records its
// public URL on the user.
func (s *AuthService) UploadAvatar(ctx context.Context, userID, filename string, data []byte) (string, error) {
	key := "avatars/" + userID + path.Ext(filename)
	if err := storage.Put(key, data); err != nil {
		return "", apperror.Wrap(err)
	}

	url := storage.URL(key)
	if _, err := s.Users.UpdateByID(ctx, userID, bson.M{"avatar": url}); err != nil {
		return "", err
	}
	return url, nil
}
