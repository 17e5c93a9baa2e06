// Package controllers maps HTTP requests onto the service layer. Handlers
// stay thin: bind, delegate, respond.
package controllers

import (
	"io"
	"net/http"

	"github.com/S-KABILAN/ECOMMERCE/app/models"
	"github.com/S-KABILAN/ECOMMERCE/app/services"
	"github.com/S-KABILAN/ECOMMERCE/pkg/apperror"
	"github.com/S-KABILAN/ECOMMERCE/pkg/auth"
	"github.com/S-KABILAN/ECOMMERCE/pkg/ctx"
	"github.com/S-KABILAN/ECOMMERCE/pkg/response"
)

// AuthController serves registration, sessions and password recovery.
type AuthController struct {
	Auth *services.AuthService
}

func NewAuthController(svc *services.AuthService) *AuthController {
	return &AuthController{Auth: svc}
}

// sendToken issues a JWT for user, sets the HTTP-only session cookie and
// returns both token and user in the body.
func sendToken(c *ctx.Context, status int, user *models.User) {
	token, err := auth.GenerateToken(user.ID.Hex())
	if err != nil {
		c.Fail(apperror.Wrap(err))
		return
	}

	c.SetCookie(auth.Cookie(token))
	c.JSON(status, response.Envelope{
		Success: true,
		Data:    map[string]interface{}{"token": token, "user": user},
	})
}

// currentUser returns the authenticated user's ID, or fails the request when
// the token's subject could not be resolved.
func currentUser(c *ctx.Context) (string, bool) {
	identity := c.Identity()
	if identity == nil {
		c.Fail(apperror.NewToken("Login first to access this resource"))
		return "", false
	}
	return identity.IdentityID(), true
}

type registerInput struct {
	Name     string `json:"name" validate:"required,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// Register creates an account and logs it straight in.
func (ac *AuthController) Register(c *ctx.Context) {
	var in registerInput
	if !c.BindJSON(&in) {
		return
	}

	user, err := ac.Auth.Register(c.Context(), in.Name, in.Email, in.Password)
	if err != nil {
		c.Fail(err)
		return
	}
	sendToken(c, http.StatusCreated, user)
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login verifies credentials and issues a session.
func (ac *AuthController) Login(c *ctx.Context) {
	var in loginInput
	if !c.BindJSON(&in) {
		return
	}

	user, err := ac.Auth.Login(c.Context(), in.Email, in.Password)
	if err != nil {
		c.Fail(err)
		return
	}
	sendToken(c, http.StatusOK, user)
}

// Logout clears the session cookie.
func (ac *AuthController) Logout(c *ctx.Context) {
	c.SetCookie(auth.ExpiredCookie())
	c.OK("Logged out", nil)
}

type forgotInput struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword mails a single-use reset link to the account holder.
func (ac *AuthController) ForgotPassword(c *ctx.Context) {
	var in forgotInput
	if !c.BindJSON(&in) {
		return
	}

	scheme := "http"
	if c.R.TLS != nil {
		scheme = "https"
	}
	resetURLBase := scheme + "://" + c.R.Host + "/api/v1/password/reset"

	if err := ac.Auth.ForgotPassword(c.Context(), in.Email, resetURLBase); err != nil {
		c.Fail(err)
		return
	}
	c.OK("Email sent to: "+in.Email, nil)
}

type resetInput struct {
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required"`
}

// ResetPassword redeems the emailed token and signs the user in.
func (ac *AuthController) ResetPassword(c *ctx.Context) {
	var in resetInput
	if !c.BindJSON(&in) {
		return
	}

	user, err := ac.Auth.ResetPassword(c.Context(), c.Param("token"), in.Password, in.PasswordConfirmation)
	if err != nil {
		c.Fail(err)
		return
	}
	sendToken(c, http.StatusOK, user)
}

// GetProfile returns the authenticated user's own document.
func (ac *AuthController) GetProfile(c *ctx.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := ac.Auth.Users.FindByID(c.Context(), userID)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK("", map[string]interface{}{"user": user})
}

type updateProfileInput struct {
	Name  string `json:"name" validate:"required,max=30"`
	Email string `json:"email" validate:"required,email"`
}

// UpdateProfile changes the caller's name and email. Other fields are
// ignored; role changes are admin-only.
func (ac *AuthController) UpdateProfile(c *ctx.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var in updateProfileInput
	if !c.BindJSON(&in) {
		return
	}

	user, err := ac.Auth.UpdateProfile(c.Context(), userID, in.Name, in.Email)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK("", map[string]interface{}{"user": user})
}

type changePasswordInput struct {
	OldPassword string `json:"old_password" validate:"required"`
	Password    string `json:"password" validate:"required,min=8"`
}

// ChangePassword swaps the caller's password after checking the old one,
// then re-issues the session.
func (ac *AuthController) ChangePassword(c *ctx.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var in changePasswordInput
	if !c.BindJSON(&in) {
		return
	}

	if err := ac.Auth.ChangePassword(c.Context(), userID, in.OldPassword, in.Password); err != nil {
		c.Fail(err)
		return
	}

	user, err := ac.Auth.Users.FindByID(c.Context(), userID)
	if err != nil {
		c.Fail(err)
		return
	}
	sendToken(c, http.StatusOK, user)
}

// maxAvatarBytes caps avatar uploads at 2 MB.
const maxAvatarBytes = 2 << 20

// UploadAvatar stores the multipart "avatar" file on the configured disk
// and saves its public URL on the caller's account.
func (ac *AuthController) UploadAvatar(c *ctx.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := c.R.ParseMultipartForm(maxAvatarBytes); err != nil {
		c.Fail(apperror.NewBadRequest("Avatar upload must be multipart form data"))
		return
	}
	file, header, err := c.R.FormFile("avatar")
	if err != nil {
		c.Fail(apperror.NewBadRequest("The avatar file is required."))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAvatarBytes))
	if err != nil {
		c.Fail(apperror.Wrap(err))
		return
	}

	url, err := ac.Auth.UploadAvatar(c.Context(), userID, header.Filename, data)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK("", map[string]interface{}{"avatar": url})
}
