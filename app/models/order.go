package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order status lifecycle values.
const (
	StatusProcessing = "Processing"
	StatusShipped    = "Shipped"
	StatusDelivered  = "Delivered"
)

// OrderItem is one line of an order, denormalised from the product at
// purchase time so later catalogue edits do not rewrite history.
type OrderItem struct {
	Name     string             `bson:"name" json:"name" validate:"required"`
	Quantity int                `bson:"quantity" json:"quantity" validate:"required,gte=1"`
	Price    float64            `bson:"price" json:"price" validate:"required,gte=0"`
	Product  primitive.ObjectID `bson:"product" json:"product"`
}

// ShippingInfo is the delivery address.
type ShippingInfo struct {
	Address string `bson:"address" json:"address" validate:"required"`
	City    string `bson:"city" json:"city" validate:"required"`
	Phone   string `bson:"phoneNo" json:"phoneNo" validate:"required"`
	Postal  string `bson:"postalCode" json:"postalCode" validate:"required"`
	Country string `bson:"country" json:"country" validate:"required"`
}

// PaymentInfo records the upstream payment reference.
type PaymentInfo struct {
	ID     string `bson:"id" json:"id"`
	Status string `bson:"status" json:"status"`
}

// Order is a placed order. Status moves Processing → Shipped → Delivered;
// once Delivered it is immutable.
type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ShippingInfo  ShippingInfo       `bson:"shippingInfo" json:"shippingInfo"`
	OrderItems    []OrderItem        `bson:"orderItems" json:"orderItems" validate:"required"`
	PaymentInfo   PaymentInfo        `bson:"paymentInfo" json:"paymentInfo"`
	ItemsPrice    float64            `bson:"itemsPrice" json:"itemsPrice" validate:"gte=0"`
	TaxPrice      float64            `bson:"taxPrice" json:"taxPrice" validate:"gte=0"`
	ShippingPrice float64            `bson:"shippingPrice" json:"shippingPrice" validate:"gte=0"`
	TotalPrice    float64            `bson:"totalPrice" json:"totalPrice" validate:"gte=0"`
	OrderStatus   string             `bson:"orderStatus" json:"orderStatus" validate:"required,in=Processing,Shipped,Delivered"`
	User          primitive.ObjectID `bson:"user" json:"user"`
	PaidAt        time.Time          `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	DeliveredAt   time.Time          `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}

func (o *Order) SetID(id primitive.ObjectID) { o.ID = id }
func (o *Order) SetCreated(t time.Time)      { o.CreatedAt = t }
