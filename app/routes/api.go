// Package routes declares the public HTTP surface.
package routes

import (
	"context"

	"github.com/S-KABILAN/ECOMMERCE/app/controllers"
	"github.com/S-KABILAN/ECOMMERCE/app/services"
	"github.com/S-KABILAN/ECOMMERCE/pkg/apperror"
	"github.com/S-KABILAN/ECOMMERCE/pkg/ctx"
	"github.com/S-KABILAN/ECOMMERCE/pkg/factory"
	"github.com/S-KABILAN/ECOMMERCE/pkg/middleware"
	"github.com/S-KABILAN/ECOMMERCE/pkg/router"
)

// API bundles the controllers behind /api/v1 together with the session
// resolver that backs the auth middleware.
type API struct {
	Auth     *controllers.AuthController
	Products *controllers.ProductController
	Orders   *controllers.OrderController
	Users    *controllers.UserController

	// OrderSvc is exposed so the server can drain its worker pool on
	// shutdown.
	OrderSvc *services.OrderService

	resolve middleware.IdentityResolver
}

// NewAPI wires the full controller graph over the given collections.
func NewAPI(users, products, orders factory.Collection) *API {
	authSvc := services.NewAuthService(users)
	orderSvc := services.NewOrderService(orders, products)

	return &API{
		Auth:     controllers.NewAuthController(authSvc),
		Products: controllers.NewProductController(products),
		Orders:   controllers.NewOrderController(orderSvc),
		Users:    controllers.NewUserController(users),
		OrderSvc: orderSvc,
		resolve: func(c context.Context, userID string) (middleware.Identity, error) {
			user, err := authSvc.Users.FindByID(c, userID)
			if err != nil {
				// A vanished subject is not a request error; the role
				// checks downstream reject it.
				if apperror.IsKind(err, apperror.KindNotFound) {
					return nil, nil
				}
				return nil, err
			}
			return user, nil
		},
	}
}

// Register mounts every route under /api/v1.
func (a *API) Register(r *router.Router) {
	auth := middleware.Authenticate(a.resolve)
	admin := middleware.AuthorizeRoles("admin")

	api := r.Group("/api/v1")

	// Accounts and sessions.
	api.Post("/register", "auth.register", ctx.Wrap(a.Auth.Register))
	api.Post("/login", "auth.login", ctx.Wrap(a.Auth.Login))
	api.Get("/logout", "auth.logout", ctx.Wrap(a.Auth.Logout))
	api.Post("/password/forgot", "auth.password.forgot", ctx.Wrap(a.Auth.ForgotPassword))
	api.Post("/password/reset/{token}", "auth.password.reset", ctx.Wrap(a.Auth.ResetPassword))

	me := api.Group("", auth)
	me.Get("/getprofile", "auth.profile", ctx.Wrap(a.Auth.GetProfile))
	me.Put("/update", "auth.profile.update", ctx.Wrap(a.Auth.UpdateProfile))
	me.Put("/password/change", "auth.password.change", ctx.Wrap(a.Auth.ChangePassword))
	me.Post("/avatar", "auth.avatar", ctx.Wrap(a.Auth.UploadAvatar))

	// Catalogue. Listing requires a session; single-product reads and the
	// write endpoints are open, admin creation excepted.
	api.Get("/products", "products.list", ctx.Wrap(a.Products.List), auth)
	api.Post("/product/new", "products.create", ctx.Wrap(a.Products.Create), auth, admin)
	api.Get("/product/{id}", "products.show", ctx.Wrap(a.Products.Get))
	api.Put("/product/{id}", "products.update", ctx.Wrap(a.Products.Update))
	api.Delete("/product/{id}", "products.delete", ctx.Wrap(a.Products.Delete))

	// Orders. Status updates and deletion are admin operations on the same
	// /order/{id} path the owner reads from.
	api.Post("/order/new", "orders.create", ctx.Wrap(a.Orders.Create), auth)
	api.Get("/order/{id}", "orders.show", ctx.Wrap(a.Orders.Get), auth)
	api.Get("/myorders", "orders.mine", ctx.Wrap(a.Orders.MyOrders), auth)
	api.Get("/orders", "orders.list", ctx.Wrap(a.Orders.AdminList), auth, admin)
	api.Put("/order/{id}", "orders.update", ctx.Wrap(a.Orders.UpdateStatus), auth, admin)
	api.Delete("/order/{id}", "orders.delete", ctx.Wrap(a.Orders.Delete), auth, admin)

	// Admin user management.
	adm := api.Group("/admin", auth, admin)
	adm.Get("/users", "admin.users.list", ctx.Wrap(a.Users.List))
	adm.Get("/user/{id}", "admin.users.show", ctx.Wrap(a.Users.Get))
	adm.Put("/user/{id}", "admin.users.update", ctx.Wrap(a.Users.Update))
	adm.Delete("/user/{id}", "admin.users.delete", ctx.Wrap(a.Users.Delete))
}
