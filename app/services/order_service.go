package services

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/S-KABILAN/ECOMMERCE/app/models"
	"github.com/S-KABILAN/ECOMMERCE/pkg/apperror"
	"github.com/S-KABILAN/ECOMMERCE/pkg/factory"
	"github.com/S-KABILAN/ECOMMERCE/pkg/logger"
	"github.com/S-KABILAN/ECOMMERCE/pkg/metrics"
	"github.com/S-KABILAN/ECOMMERCE/pkg/workerpool"
)

// OrderService implements order placement and lifecycle transitions.
type OrderService struct {
	Orders   *factory.Model[models.Order]
	Products *factory.Model[models.Product]
	pool     *workerpool.Pool
}

// NewOrderService wires an OrderService over the orders and products
// collections. The worker pool bounds the concurrency of per-item stock
// updates during fulfilment.
func NewOrderService(orders, products factory.Collection) *OrderService {
	return &OrderService{
		Orders:   factory.NewModel[models.Order]("Order", orders),
		Products: factory.NewModel[models.Product]("Product", products),
		pool:     workerpool.New(8),
	}
}

// Shutdown drains the stock-update worker pool.
func (s *OrderService) Shutdown() { s.pool.Shutdown() }

// Create places a new order for userID. Payment is recorded as settled at
// placement time.
func (s *OrderService) Create(ctx context.Context, order *models.Order, userID primitive.ObjectID) error {
	order.User = userID
	order.OrderStatus = models.StatusProcessing
	order.PaidAt = time.Now()
	return s.Orders.Create(ctx, order)
}

// MyOrders lists the orders placed by userID.
func (s *OrderService) MyOrders(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	orders := []models.Order{}
	f := s.Orders.Find(bson.M{"user": userID})
	if err := f.Find(ctx, s.Orders.Collection(), &orders); err != nil {
		return nil, apperror.Wrap(err)
	}
	return orders, nil
}

// AdminList returns every order plus the grand total of their totalPrice.
func (s *OrderService) AdminList(ctx context.Context) ([]models.Order, float64, error) {
	orders := []models.Order{}
	if err := s.Orders.Find(nil).Find(ctx, s.Orders.Collection(), &orders); err != nil {
		return nil, 0, apperror.Wrap(err)
	}

	var totalAmount float64
	for _, o := range orders {
		totalAmount += o.TotalPrice
	}
	return orders, totalAmount, nil
}

// UpdateStatus moves an order to the given status. A Delivered order is
// final and rejects further updates. Every transition decrements the stock
// of each ordered product and stamps deliveredAt, so moving an order through
// Shipped and then Delivered decrements its items twice. A failed stock
// write aborts the transition before the status is saved, but decrements
// that already landed are not rolled back.
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (*models.Order, error) {
	order, err := s.Orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.OrderStatus == models.StatusDelivered {
		return nil, apperror.NewBadRequest("You have already delivered this order")
	}

	if err := s.decrementStock(ctx, order.OrderItems); err != nil {
		return nil, err
	}

	return s.Orders.UpdateByID(ctx, id, bson.M{
		"orderStatus": status,
		"deliveredAt": time.Now(),
	})
}

// decrementStock applies one atomic $inc per order item through the worker
// pool, waits for all of them and returns the first failure. Stock updates
// bypass document validation, so stock can go negative under oversell.
func (s *OrderService) decrementStock(ctx context.Context, items []models.OrderItem) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for _, item := range items {
		item := item
		wg.Add(1)
		task := func() {
			defer wg.Done()
			if err := s.decrementOne(ctx, item); err != nil {
				logger.WithCtx(ctx).Error("stock update failed",
					"product", item.Product.Hex(),
					"quantity", item.Quantity,
					"error", err.Error(),
				)
				metrics.RecordStockUpdate("failed")
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			metrics.RecordStockUpdate("success")
		}
		if err := s.pool.SubmitWait(task); err != nil {
			// Pool is shutting down; run inline so the decrement still lands.
			task()
		}
	}
	wg.Wait()
	return firstErr
}

func (s *OrderService) decrementOne(ctx context.Context, item models.OrderItem) error {
	res, err := s.Products.Collection().UpdateOne(ctx,
		bson.M{"_id": item.Product},
		bson.M{"$inc": bson.M{"stock": -item.Quantity}},
	)
	if err != nil {
		return apperror.Wrap(err)
	}
	if res.MatchedCount == 0 {
		return apperror.NewNotFound("Product not found with id: " + item.Product.Hex())
	}
	return nil
}
