package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a catalogue item. Stock is decremented (never guarded below
// zero) when an order ships.
type Product struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name" validate:"required,max=100"`
	Description  string             `bson:"description" json:"description" validate:"required"`
	Price        float64            `bson:"price" json:"price" validate:"required,gte=0"`
	Category     string             `bson:"category" json:"category" validate:"required"`
	Stock        int                `bson:"stock" json:"stock" validate:"gte=0,lte=9999"`
	Ratings      float64            `bson:"ratings" json:"ratings"`
	NumOfReviews int                `bson:"numOfReviews" json:"numOfReviews"`
	User         primitive.ObjectID `bson:"user,omitempty" json:"user,omitempty"` // admin who created it
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

func (p *Product) SetID(id primitive.ObjectID) { p.ID = id }
func (p *Product) SetCreated(t time.Time)      { p.CreatedAt = t }
