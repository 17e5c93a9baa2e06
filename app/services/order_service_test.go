package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/S-KABILAN/ECOMMERCE/app/models"
	"github.com/S-KABILAN/ECOMMERCE/app/services"
	"github.com/S-KABILAN/ECOMMERCE/pkg/apperror"
	"github.com/S-KABILAN/ECOMMERCE/pkg/testkit"
)

func newOrderService(t *testing.T) *services.OrderService {
	t.Helper()
	svc := services.NewOrderService(testkit.NewCollection(), testkit.NewCollection())
	t.Cleanup(svc.Shutdown)
	return svc
}

func shipping() models.ShippingInfo {
	return models.ShippingInfo{
		Address: "1 Infinite Loop",
		City:    "Cupertino",
		Phone:   "555-0100",
		Postal:  "95014",
		Country: "US",
	}
}

func placeOrder(t *testing.T, svc *services.OrderService, user primitive.ObjectID, items []models.OrderItem, total float64) *models.Order {
	t.Helper()
	order := models.Order{
		ShippingInfo: shipping(),
		OrderItems:   items,
		ItemsPrice:   total,
		TotalPrice:   total,
	}
	require.NoError(t, svc.Create(context.Background(), &order, user))
	return &order
}

func TestCreateSetsOrderDefaults(t *testing.T) {
	svc := newOrderService(t)
	user := primitive.NewObjectID()

	items := []models.OrderItem{{Name: "Widget", Quantity: 2, Price: 9.99, Product: primitive.NewObjectID()}}
	order := placeOrder(t, svc, user, items, 19.98)

	assert.Equal(t, models.StatusProcessing, order.OrderStatus)
	assert.Equal(t, user, order.User)
	assert.False(t, order.PaidAt.IsZero(), "payment is recorded at placement")

	got, err := svc.Orders.FindByID(context.Background(), order.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, got.OrderStatus)
	assert.Len(t, got.OrderItems, 1)
}

func seedProduct(t *testing.T, svc *services.OrderService, stock int) *models.Product {
	t.Helper()
	product := models.Product{
		Name:        "Widget",
		Description: "A widget",
		Price:       9.99,
		Category:    "Toys",
		Stock:       stock,
	}
	require.NoError(t, svc.Products.Create(context.Background(), &product))
	return &product
}

func TestDeliveredDecrementsStock(t *testing.T) {
	svc := newOrderService(t)
	product := seedProduct(t, svc, 10)

	items := []models.OrderItem{{Name: "Widget", Quantity: 3, Price: 9.99, Product: product.ID}}
	order := placeOrder(t, svc, primitive.NewObjectID(), items, 29.97)

	updated, err := svc.UpdateStatus(context.Background(), order.ID.Hex(), models.StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, updated.OrderStatus)
	assert.False(t, updated.DeliveredAt.IsZero())

	got, err := svc.Products.FindByID(context.Background(), product.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 7, got.Stock)
}

func TestDeliveredOrderIsFinal(t *testing.T) {
	svc := newOrderService(t)
	product := seedProduct(t, svc, 10)

	items := []models.OrderItem{{Name: "Widget", Quantity: 1, Price: 9.99, Product: product.ID}}
	order := placeOrder(t, svc, primitive.NewObjectID(), items, 9.99)

	_, err := svc.UpdateStatus(context.Background(), order.ID.Hex(), models.StatusDelivered)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), order.ID.Hex(), models.StatusShipped)
	require.Error(t, err)
	assert.Equal(t, "You have already delivered this order", err.Error())
}

func TestEveryTransitionDecrementsStock(t *testing.T) {
	svc := newOrderService(t)
	product := seedProduct(t, svc, 10)

	items := []models.OrderItem{{Name: "Widget", Quantity: 3, Price: 9.99, Product: product.ID}}
	order := placeOrder(t, svc, primitive.NewObjectID(), items, 29.97)

	shipped, err := svc.UpdateStatus(context.Background(), order.ID.Hex(), models.StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, models.StatusShipped, shipped.OrderStatus)
	assert.False(t, shipped.DeliveredAt.IsZero(), "deliveredAt is stamped on every transition")

	got, err := svc.Products.FindByID(context.Background(), product.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 7, got.Stock)

	// Shipped → Delivered decrements the same items again.
	_, err = svc.UpdateStatus(context.Background(), order.ID.Hex(), models.StatusDelivered)
	require.NoError(t, err)

	got, err = svc.Products.FindByID(context.Background(), product.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 4, got.Stock)
}

func TestUpdateStatusFailsWhenProductMissing(t *testing.T) {
	svc := newOrderService(t)
	product := seedProduct(t, svc, 10)

	items := []models.OrderItem{{Name: "Widget", Quantity: 3, Price: 9.99, Product: product.ID}}
	order := placeOrder(t, svc, primitive.NewObjectID(), items, 29.97)

	_, err := svc.Products.DeleteByID(context.Background(), product.ID.Hex())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), order.ID.Hex(), models.StatusShipped)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	// The failed stock write aborts the transition before the status is saved.
	got, err := svc.Orders.FindByID(context.Background(), order.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, got.OrderStatus)
}

func TestMyOrdersScopesToUser(t *testing.T) {
	svc := newOrderService(t)
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()

	items := []models.OrderItem{{Name: "Widget", Quantity: 1, Price: 5, Product: primitive.NewObjectID()}}
	placeOrder(t, svc, alice, items, 5)
	placeOrder(t, svc, alice, items, 5)
	placeOrder(t, svc, bob, items, 5)

	mine, err := svc.MyOrders(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, o := range mine {
		assert.Equal(t, alice, o.User)
	}
}

func TestAdminListSumsRevenue(t *testing.T) {
	svc := newOrderService(t)

	items := []models.OrderItem{{Name: "Widget", Quantity: 1, Price: 5, Product: primitive.NewObjectID()}}
	placeOrder(t, svc, primitive.NewObjectID(), items, 10.5)
	placeOrder(t, svc, primitive.NewObjectID(), items, 4.5)

	orders, total, err := svc.AdminList(context.Background())
	require.NoError(t, err)
	assert.Len(t, orders, 2)
	assert.Equal(t, 15.0, total)
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	svc := newOrderService(t)

	_, err := svc.UpdateStatus(context.Background(), primitive.NewObjectID().Hex(), models.StatusShipped)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}
