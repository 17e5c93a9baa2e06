package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/S-KABILAN/ECOMMERCE/app/models"
	"github.com/S-KABILAN/ECOMMERCE/app/services"
	"github.com/S-KABILAN/ECOMMERCE/pkg/apperror"
	"github.com/S-KABILAN/ECOMMERCE/pkg/crypt"
	"github.com/S-KABILAN/ECOMMERCE/pkg/testkit"
)

// capturedMail records the last delivery instead of talking to SMTP.
type capturedMail struct {
	to      string
	subject string
	body    string
	fail    bool
}

func (m *capturedMail) send(to, subject, body string) error {
	if m.fail {
		return assert.AnError
	}
	m.to, m.subject, m.body = to, subject, body
	return nil
}

// resetToken digs the plain token out of the mailed reset URL.
func (m *capturedMail) resetToken(t *testing.T) string {
	t.Helper()
	for _, line := range strings.Split(m.body, "\n") {
		if strings.HasPrefix(line, "http") {
			parts := strings.Split(line, "/")
			return parts[len(parts)-1]
		}
	}
	t.Fatalf("no reset URL in mail body: %q", m.body)
	return ""
}

func newAuthService() (*services.AuthService, *capturedMail) {
	mail := &capturedMail{}
	svc := services.NewAuthService(testkit.NewCollection().Unique("email"))
	svc.Mail = mail.send
	return svc, mail
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthService()

	user, err := svc.Register(context.Background(), "Ada", "ada@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "hunter2hunter2", user.Password, "password must be stored hashed")

	got, err := svc.Login(context.Background(), "ada@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestLoginNeverRevealsWhichHalfFailed(t *testing.T) {
	svc, _ := newAuthService()

	_, err := svc.Register(context.Background(), "Ada", "ada@example.com", "hunter2hunter2")
	require.NoError(t, err)

	_, wrongPass := svc.Login(context.Background(), "ada@example.com", "wrong-password")
	_, unknownEmail := svc.Login(context.Background(), "nobody@example.com", "hunter2hunter2")

	require.Error(t, wrongPass)
	require.Error(t, unknownEmail)
	assert.Equal(t, wrongPass.Error(), unknownEmail.Error())
	assert.True(t, apperror.IsKind(wrongPass, apperror.KindToken))
	assert.True(t, apperror.IsKind(unknownEmail, apperror.KindToken))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthService()

	_, err := svc.Register(context.Background(), "Ada", "ada@example.com", "hunter2hunter2")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "Imposter", "ada@example.com", "hunter2hunter2")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindDuplicate))
}

func TestForgotAndResetPassword(t *testing.T) {
	svc, mail := newAuthService()

	user, err := svc.Register(context.Background(), "Ada", "ada@example.com", "hunter2hunter2")
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(context.Background(), "ada@example.com", "http://localhost/api/v1/password/reset"))
	assert.Equal(t, "ada@example.com", mail.to)
	assert.Equal(t, "Password Recovery", mail.subject)

	plain := mail.resetToken(t)

	// Only the digest is persisted.
	stored, err := svc.Users.FindByID(context.Background(), user.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, crypt.Hash(plain), stored.ResetPasswordToken)
	assert.NotEqual(t, plain, stored.ResetPasswordToken)

	_, err = svc.ResetPassword(context.Background(), plain, "newpassword99", "newpassword99")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "ada@example.com", "hunter2hunter2")
	require.Error(t, err, "old password must stop working")
	_, err = svc.Login(context.Background(), "ada@example.com", "newpassword99")
	require.NoError(t, err)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	svc, _ := newAuthService()

	err := svc.ForgotPassword(context.Background(), "nobody@example.com", "http://localhost/api/v1/password/reset")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestForgotPasswordRollsBackTokenOnMailFailure(t *testing.T) {
	svc, mail := newAuthService()
	mail.fail = true

	user, err := svc.Register(context.Background(), "Ada", "ada@example.com", "hunter2hunter2")
	require.NoError(t, err)

	err = svc.ForgotPassword(context.Background(), "ada@example.com", "http://localhost/api/v1/password/reset")
	require.Error(t, err)

	stored, err := svc.Users.FindByID(context.Background(), user.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, stored.ResetPasswordToken, "undeliverable token must not linger")
}

func TestResetPasswordExpiredToken(t *testing.T) {
	svc, mail := newAuthService()

	_, err := svc.Register(context.Background(), "Ada", "ada@example.com", "hunter2hunter2")
	require.NoError(t, err)
	require.NoError(t, svc.ForgotPassword(context.Background(), "ada@example.com", "http://localhost/api/v1/password/reset"))
	plain := mail.resetToken(t)

	// Age the token past its window.
	stored, err := svc.Repo.FindByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	_, err = svc.Users.UpdateByID(context.Background(), stored.ID.Hex(), bson.M{
		"resetPasswordExpire": time.Now().Add(-time.Minute),
	})
	require.NoError(t, err)

	_, err = svc.ResetPassword(context.Background(), plain, "newpassword99", "newpassword99")
	require.Error(t, err)
	assert.Equal(t, "Password reset token is invalid or has been expired", err.Error())

	// The credential is untouched.
	_, err = svc.Login(context.Background(), "ada@example.com", "hunter2hunter2")
	require.NoError(t, err)
}

func TestResetPasswordConfirmationMismatch(t *testing.T) {
	svc, mail := newAuthService()

	_, err := svc.Register(context.Background(), "Ada", "ada@example.com", "hunter2hunter2")
	require.NoError(t, err)
	require.NoError(t, svc.ForgotPassword(context.Background(), "ada@example.com", "http://localhost/api/v1/password/reset"))

	_, err = svc.ResetPassword(context.Background(), mail.resetToken(t), "newpassword99", "different99")
	require.Error(t, err)
	assert.Equal(t, "Password does not match", err.Error())
}

func TestChangePassword(t *testing.T) {
	svc, _ := newAuthService()

	user, err := svc.Register(context.Background(), "Ada", "ada@example.com", "hunter2hunter2")
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), user.ID.Hex(), "wrong-old", "newpassword99")
	require.Error(t, err)
	assert.Equal(t, "Old password is incorrect", err.Error())

	require.NoError(t, svc.ChangePassword(context.Background(), user.ID.Hex(), "hunter2hunter2", "newpassword99"))
	_, err = svc.Login(context.Background(), "ada@example.com", "newpassword99")
	require.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newAuthService()

	user, err := svc.Register(context.Background(), "Ada", "ada@example.com", "hunter2hunter2")
	require.NoError(t, err)

	got, err := svc.UpdateProfile(context.Background(), user.ID.Hex(), "Ada Lovelace", "lovelace@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", got.Name)
	assert.Equal(t, "lovelace@example.com", got.Email)
}
