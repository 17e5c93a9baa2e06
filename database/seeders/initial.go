package seeders

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/S-KABILAN/ECOMMERCE/app/models"
	"github.com/S-KABILAN/ECOMMERCE/config"
	"github.com/S-KABILAN/ECOMMERCE/pkg/auth"
)

func init() {
	Register("admin_user", seedAdminUser)
	Register("catalogue", seedCatalogue)
}

// seedAdminUser creates the bootstrap admin account unless one with the
// configured email already exists. Override the defaults via ADMIN_EMAIL
// and ADMIN_PASSWORD.
func seedAdminUser(ctx context.Context, db *mongo.Database) error {
	email := config.Get("ADMIN_EMAIL", "admin@ecommerce.local")

	n, err := db.Collection("users").CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	hash, err := auth.HashPassword(config.Get("ADMIN_PASSWORD", "changeme123"))
	if err != nil {
		return err
	}

	_, err = db.Collection("users").InsertOne(ctx, models.User{
		Name:      "Admin",
		Email:     email,
		Password:  hash,
		Role:      models.RoleAdmin,
		CreatedAt: time.Now(),
	})
	return err
}

// seedCatalogue inserts a small demo catalogue into an empty products
// collection.
func seedCatalogue(ctx context.Context, db *mongo.Database) error {
	col := db.Collection("products")

	n, err := col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	now := time.Now()
	demo := []interface{}{
		models.Product{Name: "Wireless Mouse", Description: "2.4 GHz wireless mouse with silent clicks", Price: 19.99, Category: "Electronics", Stock: 120, CreatedAt: now},
		models.Product{Name: "Mechanical Keyboard", Description: "Tenkeyless board with hot-swappable switches", Price: 89.5, Category: "Electronics", Stock: 45, CreatedAt: now},
		models.Product{Name: "Ceramic Mug", Description: "350 ml stoneware mug, dishwasher safe", Price: 7.25, Category: "Home", Stock: 300, CreatedAt: now},
		models.Product{Name: "Yoga Mat", Description: "6 mm non-slip exercise mat", Price: 24.0, Category: "Sports", Stock: 80, CreatedAt: now},
	}

	_, err = col.InsertMany(ctx, demo)
	return err
}
