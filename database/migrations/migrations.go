// Package migrations contains the MongoDB index migrations. Each migration
// file registers itself via init(); the CLI imports this package so every
// migration is known at startup.
package migrations

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
)

// MigrateFunc applies one migration against the database.
type MigrateFunc func(ctx context.Context, db *mongo.Database) error

type entry struct {
	name string
	fn   MigrateFunc
}

var (
	mu      sync.Mutex
	entries []entry
)

// Register adds a migration to the global registry. Call from init().
func Register(name string, fn MigrateFunc) {
	mu.Lock()
	defer mu.Unlock()
	entries = append(entries, entry{name: name, fn: fn})
}

// RunAll executes every registered migration in registration order. Index
// creation is idempotent in Mongo, so re-running is safe. It stops on the
// first error.
func RunAll(ctx context.Context, db *mongo.Database) error {
	mu.Lock()
	current := make([]entry, len(entries))
	copy(current, entries)
	mu.Unlock()

	if len(current) == 0 {
		fmt.Println("  (no migrations registered)")
		return nil
	}

	for _, e := range current {
		fmt.Printf("  • Running migration: %s … ", e.name)
		if err := e.fn(ctx, db); err != nil {
			fmt.Println("FAILED")
			return fmt.Errorf("migration %q: %w", e.name, err)
		}
		fmt.Println("done")
	}
	return nil
}
