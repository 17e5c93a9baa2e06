package validate_test

import (
	"testing"

	"github.com/S-KABILAN/ECOMMERCE/pkg/validate"
)

type registerInput struct {
	Name                 string  `json:"name"                  validate:"required,max=30"`
	Email                string  `json:"email"                 validate:"required,email"`
	Password             string  `json:"password"              validate:"required,min=8"`
	PasswordConfirmation string  `json:"password_confirmation" validate:"confirmed"`
	Role                 string  `json:"role"                  validate:"nullable,in=user,admin"`
	Price                float64 `json:"price"                 validate:"required,gte=0"`
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(registerInput{
		Name:                 "John Doe",
		Email:                "john@example.com",
		Password:             "secret123",
		PasswordConfirmation: "secret123",
		Role:                 "", // nullable — allowed to be empty
		Price:                9.99,
	})
	if validate.HasErrors(errs) {
		t.Errorf("expected no errors, got: %v", errs)
	}
}

func TestRequiredReportsEveryField(t *testing.T) {
	errs := validate.Struct(registerInput{})
	if !validate.HasErrors(errs) {
		t.Fatal("expected required errors")
	}
	for _, field := range []string{"name", "email", "password"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("expected %s to be required", field)
		}
	}
}

func TestEmailRule(t *testing.T) {
	type in struct {
		Email string `json:"email" validate:"required,email"`
	}
	errs := validate.Struct(in{Email: "not-an-email"})
	if _, ok := errs["email"]; !ok {
		t.Error("expected email validation error")
	}
	errs = validate.Struct(in{Email: "valid@example.com"})
	if validate.HasErrors(errs) {
		t.Errorf("expected valid email to pass, got: %v", errs)
	}
}

func TestNumericBounds(t *testing.T) {
	type in struct {
		Stock int `json:"stock" validate:"gte=0,lte=9999"`
	}
	if errs := validate.Struct(in{Stock: -1}); !validate.HasErrors(errs) {
		t.Error("expected negative stock to fail")
	}
	if errs := validate.Struct(in{Stock: 25}); validate.HasErrors(errs) {
		t.Errorf("expected stock 25 to pass, got: %v", errs)
	}
}

func TestInRule(t *testing.T) {
	type in struct {
		Role string `json:"role" validate:"required,in=user,admin"`
	}
	if errs := validate.Struct(in{Role: "superadmin"}); !validate.HasErrors(errs) {
		t.Error("expected invalid role to fail")
	}
	if errs := validate.Struct(in{Role: "admin"}); validate.HasErrors(errs) {
		t.Errorf("expected admin to pass: %v", errs)
	}
}

func TestInRuleFollowedByAnotherRule(t *testing.T) {
	type in struct {
		Status string `json:"status" validate:"required,in=Processing,Shipped,Delivered,max=20"`
	}
	if errs := validate.Struct(in{Status: "Shipped"}); validate.HasErrors(errs) {
		t.Errorf("expected Shipped to pass: %v", errs)
	}
	if errs := validate.Struct(in{Status: "Cancelled"}); !validate.HasErrors(errs) {
		t.Error("expected Cancelled to fail")
	}
}

func TestConfirmedRule(t *testing.T) {
	type in struct {
		Password             string `json:"password"              validate:"required,min=8"`
		PasswordConfirmation string `json:"password_confirmation" validate:"confirmed"`
	}
	if errs := validate.Struct(in{Password: "secret123", PasswordConfirmation: "wrong"}); !validate.HasErrors(errs) {
		t.Error("expected confirmation mismatch to fail")
	}
	if errs := validate.Struct(in{Password: "secret123", PasswordConfirmation: "secret123"}); validate.HasErrors(errs) {
		t.Errorf("expected matching confirmation to pass: %v", errs)
	}
}

func TestNullableSkipsRules(t *testing.T) {
	type in struct {
		Avatar string `json:"avatar" validate:"nullable,url"`
	}
	// Empty string — nullable, should pass even though it's not a URL
	if errs := validate.Struct(in{Avatar: ""}); validate.HasErrors(errs) {
		t.Errorf("expected empty nullable to pass: %v", errs)
	}
	// Non-empty but invalid URL — should fail
	if errs := validate.Struct(in{Avatar: "not-a-url"}); !validate.HasErrors(errs) {
		t.Error("expected invalid URL to fail")
	}
}

func TestNestedStructsValidatedByDottedPath(t *testing.T) {
	type address struct {
		Street string `json:"street" validate:"required"`
		City   string `json:"city"   validate:"required"`
	}
	type item struct {
		Quantity int `json:"quantity" validate:"required,gte=1"`
	}
	type order struct {
		Shipping address `json:"shipping"`
		Items    []item  `json:"items" validate:"required"`
	}

	errs := validate.Struct(order{Items: []item{{Quantity: 1}, {Quantity: 0}}})
	for _, field := range []string{"shipping.street", "shipping.city", "items.1.quantity"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("expected nested error for %s, got: %v", field, errs)
		}
	}
	if _, ok := errs["items.0.quantity"]; ok {
		t.Errorf("valid element must not error: %v", errs)
	}
}

func TestBsonTagFieldName(t *testing.T) {
	type in struct {
		Price float64 `bson:"price" validate:"required,gte=0"`
	}
	errs := validate.Struct(in{})
	if _, ok := errs["price"]; !ok {
		t.Errorf("expected error keyed by bson field name, got: %v", errs)
	}
}
