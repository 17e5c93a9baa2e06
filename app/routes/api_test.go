package routes_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/S-KABILAN/ECOMMERCE/app/models"
	"github.com/S-KABILAN/ECOMMERCE/app/routes"
	"github.com/S-KABILAN/ECOMMERCE/pkg/auth"
	"github.com/S-KABILAN/ECOMMERCE/pkg/router"
	"github.com/S-KABILAN/ECOMMERCE/pkg/testkit"
)

type mailbox struct {
	to   string
	body string
}

func newTestAPI(t *testing.T) (http.Handler, *routes.API, *mailbox) {
	t.Helper()

	api := routes.NewAPI(
		testkit.NewCollection().Unique("email"),
		testkit.NewCollection(),
		testkit.NewCollection(),
	)
	t.Cleanup(api.OrderSvc.Shutdown)

	box := &mailbox{}
	api.Auth.Auth.Mail = func(to, _, body string) error {
		box.to, box.body = to, body
		return nil
	}

	r := router.New()
	api.Register(r)
	return r.Handler(), api, box
}

// call sends a request with an optional session cookie and decodes the
// envelope.
func call(t *testing.T, h http.Handler, method, path, body, session string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != "" {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: session})
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), "body: %s", rec.Body.String())
	return rec, envelope
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c.Value
		}
	}
	t.Fatal("no session cookie in response")
	return ""
}

func registerUser(t *testing.T, h http.Handler, name, email, password string) string {
	t.Helper()
	rec, _ := call(t, h, http.MethodPost, "/api/v1/register",
		`{"name":"`+name+`","email":"`+email+`","password":"`+password+`"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	return sessionCookie(t, rec)
}

// seedAdmin creates an admin account directly and logs it in.
func seedAdmin(t *testing.T, h http.Handler, api *routes.API) string {
	t.Helper()
	hash, err := auth.HashPassword("adminpass123")
	require.NoError(t, err)
	admin := models.User{Name: "Admin", Email: "admin@example.com", Password: hash, Role: models.RoleAdmin}
	require.NoError(t, api.Auth.Auth.Users.Create(context.Background(), &admin))

	rec, _ := call(t, h, http.MethodPost, "/api/v1/login",
		`{"email":"admin@example.com","password":"adminpass123"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	return sessionCookie(t, rec)
}

func TestRegisterIssuesSession(t *testing.T) {
	h, _, _ := newTestAPI(t)

	rec, envelope := call(t, h, http.MethodPost, "/api/v1/register",
		`{"name":"Ada","email":"ada@example.com","password":"hunter2hunter2"}`, "")

	require.Equal(t, http.StatusCreated, rec.Code)
	data := envelope["data"].(map[string]interface{})
	assert.NotEmpty(t, data["token"])

	user := data["user"].(map[string]interface{})
	assert.Equal(t, "ada@example.com", user["email"])
	assert.NotContains(t, user, "password", "password hash must never serialise")

	session := sessionCookie(t, rec)
	rec, envelope = call(t, h, http.MethodGet, "/api/v1/getprofile", "", session)
	require.Equal(t, http.StatusOK, rec.Code)
	me := envelope["data"].(map[string]interface{})["user"].(map[string]interface{})
	assert.Equal(t, "Ada", me["name"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	h, _, _ := newTestAPI(t)
	registerUser(t, h, "Ada", "ada@example.com", "hunter2hunter2")

	rec, envelope := call(t, h, http.MethodPost, "/api/v1/login",
		`{"email":"ada@example.com","password":"wrong-password"}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", envelope["message"])

	rec, envelope = call(t, h, http.MethodPost, "/api/v1/login",
		`{"email":"nobody@example.com","password":"hunter2hunter2"}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", envelope["message"])
}

func TestProductListRequiresSession(t *testing.T) {
	h, _, _ := newTestAPI(t)

	rec, envelope := call(t, h, http.MethodGet, "/api/v1/products", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Login first to access this resource", envelope["message"])

	session := registerUser(t, h, "Ada", "ada@example.com", "hunter2hunter2")
	rec, _ = call(t, h, http.MethodGet, "/api/v1/products", "", session)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProductCreateIsAdminOnly(t *testing.T) {
	h, api, _ := newTestAPI(t)
	session := registerUser(t, h, "Ada", "ada@example.com", "hunter2hunter2")

	body := `{"name":"Widget","description":"A widget","price":9.99,"category":"Toys","stock":10}`

	rec, envelope := call(t, h, http.MethodPost, "/api/v1/product/new", body, session)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Role (user) is not allowed to access this resource", envelope["message"])

	adminSession := seedAdmin(t, h, api)
	rec, _ = call(t, h, http.MethodPost, "/api/v1/product/new", body, adminSession)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestLogoutExpiresSession(t *testing.T) {
	h, _, _ := newTestAPI(t)

	rec, _ := call(t, h, http.MethodGet, "/api/v1/logout", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			assert.Empty(t, c.Value)
			assert.Equal(t, -1, c.MaxAge)
			return
		}
	}
	t.Fatal("logout must rewrite the session cookie")
}

func TestPasswordResetFlow(t *testing.T) {
	h, _, box := newTestAPI(t)
	registerUser(t, h, "Ada", "ada@example.com", "hunter2hunter2")

	rec, envelope := call(t, h, http.MethodPost, "/api/v1/password/forgot",
		`{"email":"ada@example.com"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Email sent to: ada@example.com", envelope["message"])
	require.Equal(t, "ada@example.com", box.to)

	var token string
	for _, line := range strings.Split(box.body, "\n") {
		if strings.HasPrefix(line, "http") {
			parts := strings.Split(line, "/")
			token = parts[len(parts)-1]
		}
	}
	require.NotEmpty(t, token, "mail must carry the reset link")

	rec, _ = call(t, h, http.MethodPost, "/api/v1/password/reset/"+token,
		`{"password":"newpassword99","password_confirmation":"newpassword99"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = call(t, h, http.MethodPost, "/api/v1/login",
		`{"email":"ada@example.com","password":"newpassword99"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOrderLifecycle(t *testing.T) {
	h, api, _ := newTestAPI(t)
	adminSession := seedAdmin(t, h, api)
	session := registerUser(t, h, "Ada", "ada@example.com", "hunter2hunter2")

	rec, envelope := call(t, h, http.MethodPost, "/api/v1/product/new",
		`{"name":"Widget","description":"A widget","price":9.99,"category":"Toys","stock":10}`, adminSession)
	require.Equal(t, http.StatusCreated, rec.Code)
	productID := envelope["data"].(map[string]interface{})["product"].(map[string]interface{})["id"].(string)

	orderBody := `{
		"shippingInfo":{"address":"1 Main St","city":"Springfield","phoneNo":"555-0100","postalCode":"12345","country":"US"},
		"orderItems":[{"name":"Widget","quantity":3,"price":9.99,"product":"` + productID + `"}],
		"itemsPrice":29.97,"taxPrice":0,"shippingPrice":0,"totalPrice":29.97
	}`
	rec, envelope = call(t, h, http.MethodPost, "/api/v1/order/new", orderBody, session)
	require.Equal(t, http.StatusCreated, rec.Code)
	order := envelope["data"].(map[string]interface{})["order"].(map[string]interface{})
	orderID := order["id"].(string)
	assert.Equal(t, "Processing", order["orderStatus"])

	rec, envelope = call(t, h, http.MethodGet, "/api/v1/myorders", "", session)
	require.Equal(t, http.StatusOK, rec.Code)
	mine := envelope["data"].(map[string]interface{})["orders"].([]interface{})
	assert.Len(t, mine, 1)

	// Only admins advance orders.
	rec, _ = call(t, h, http.MethodPut, "/api/v1/order/"+orderID,
		`{"status":"Delivered"}`, session)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec, envelope = call(t, h, http.MethodPut, "/api/v1/order/"+orderID,
		`{"status":"Delivered"}`, adminSession)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Delivered", envelope["data"].(map[string]interface{})["order"].(map[string]interface{})["orderStatus"])

	// Delivering consumed the ordered stock.
	rec, envelope = call(t, h, http.MethodGet, "/api/v1/product/"+productID, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	product := envelope["data"].(map[string]interface{})["product"].(map[string]interface{})
	assert.Equal(t, float64(7), product["stock"])

	// Revenue totals on the admin listing.
	rec, envelope = call(t, h, http.MethodGet, "/api/v1/orders", "", adminSession)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 29.97, envelope["data"].(map[string]interface{})["totalAmount"])
}
