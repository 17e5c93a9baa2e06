package controllers

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/S-KABILAN/ECOMMERCE/app/models"
	"github.com/S-KABILAN/ECOMMERCE/pkg/apperror"
	"github.com/S-KABILAN/ECOMMERCE/pkg/ctx"
	"github.com/S-KABILAN/ECOMMERCE/pkg/factory"
)

// UserController serves the admin user-management endpoints.
type UserController struct {
	Users *factory.Model[models.User]
}

func NewUserController(col factory.Collection) *UserController {
	return &UserController{Users: factory.NewModel[models.User]("User", col)}
}

// List returns all accounts (admin only).
func (uc *UserController) List(c *ctx.Context) {
	users := []models.User{}
	if err := uc.Users.Find(nil).Find(c.Context(), uc.Users.Collection(), &users); err != nil {
		c.Fail(apperror.Wrap(err))
		return
	}
	c.OK("", map[string]interface{}{"users": users})
}

// Get returns one account by ID (admin only).
func (uc *UserController) Get(c *ctx.Context) {
	user, err := uc.Users.FindByID(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK("", map[string]interface{}{"user": user})
}

type adminUserInput struct {
	Name  string `json:"name" validate:"required,max=30"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,in=user,admin"`
}

// Update sets name, email and role on an account (admin only). Passwords
// are never writable through this endpoint.
func (uc *UserController) Update(c *ctx.Context) {
	var in adminUserInput
	if !c.BindJSON(&in) {
		return
	}

	user, err := uc.Users.UpdateByID(c.Context(), c.Param("id"), bson.M{
		"name":  in.Name,
		"email": in.Email,
		"role":  in.Role,
	})
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK("", map[string]interface{}{"user": user})
}

// Delete removes an account (admin only). The user's orders are left in
// place; order history survives account deletion.
func (uc *UserController) Delete(c *ctx.Context) {
	if _, err := uc.Users.DeleteByID(c.Context(), c.Param("id")); err != nil {
		c.Fail(err)
		return
	}
	c.OK("User is deleted", nil)
}
