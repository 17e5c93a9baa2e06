package controllers

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/S-KABILAN/ECOMMERCE/app/models"
	"github.com/S-KABILAN/ECOMMERCE/app/services"
	"github.com/S-KABILAN/ECOMMERCE/pkg/apperror"
	"github.com/S-KABILAN/ECOMMERCE/pkg/ctx"
)

// OrderController serves order placement and lifecycle endpoints.
type OrderController struct {
	Orders *services.OrderService
}

func NewOrderController(svc *services.OrderService) *OrderController {
	return &OrderController{Orders: svc}
}

type orderInput struct {
	ShippingInfo  models.ShippingInfo `json:"shippingInfo"`
	OrderItems    []models.OrderItem  `json:"orderItems" validate:"required"`
	PaymentInfo   models.PaymentInfo  `json:"paymentInfo"`
	ItemsPrice    float64             `json:"itemsPrice" validate:"gte=0"`
	TaxPrice      float64             `json:"taxPrice" validate:"gte=0"`
	ShippingPrice float64             `json:"shippingPrice" validate:"gte=0"`
	TotalPrice    float64             `json:"totalPrice" validate:"gte=0"`
}

// Create places a new order for the authenticated user.
func (oc *OrderController) Create(c *ctx.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var in orderInput
	if !c.BindJSON(&in) {
		return
	}

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		c.Fail(apperror.NewCast("Cast to ObjectId failed for value " + userID))
		return
	}

	order := models.Order{
		ShippingInfo:  in.ShippingInfo,
		OrderItems:    in.OrderItems,
		PaymentInfo:   in.PaymentInfo,
		ItemsPrice:    in.ItemsPrice,
		TaxPrice:      in.TaxPrice,
		ShippingPrice: in.ShippingPrice,
		TotalPrice:    in.TotalPrice,
	}
	if err := oc.Orders.Create(c.Context(), &order, oid); err != nil {
		c.Fail(err)
		return
	}
	c.Created("", map[string]interface{}{"order": order})
}

// Get returns one order by ID.
func (oc *OrderController) Get(c *ctx.Context) {
	order, err := oc.Orders.Orders.FindByID(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK("", map[string]interface{}{"order": order})
}

// MyOrders lists the authenticated user's own orders.
func (oc *OrderController) MyOrders(c *ctx.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		c.Fail(apperror.NewCast("Cast to ObjectId failed for value " + userID))
		return
	}

	orders, err := oc.Orders.MyOrders(c.Context(), oid)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK("", map[string]interface{}{"orders": orders})
}

// AdminList returns every order plus the revenue total (admin only).
func (oc *OrderController) AdminList(c *ctx.Context) {
	orders, totalAmount, err := oc.Orders.AdminList(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK("", map[string]interface{}{
		"totalAmount": totalAmount,
		"orders":      orders,
	})
}

type orderStatusInput struct {
	Status string `json:"status" validate:"required,in=Processing,Shipped,Delivered"`
}

// UpdateStatus advances an order's status (admin only). Delivered orders are
// final; every transition decrements product stock for the ordered items.
func (oc *OrderController) UpdateStatus(c *ctx.Context) {
	var in orderStatusInput
	if !c.BindJSON(&in) {
		return
	}

	order, err := oc.Orders.UpdateStatus(c.Context(), c.Param("id"), in.Status)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK("", map[string]interface{}{"order": order})
}

// Delete removes an order (admin only).
func (oc *OrderController) Delete(c *ctx.Context) {
	if _, err := oc.Orders.Orders.DeleteByID(c.Context(), c.Param("id")); err != nil {
		c.Fail(err)
		return
	}
	c.OK("Order is deleted", nil)
}
