package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/S-KABILAN/ECOMMERCE/app/routes"
	"github.com/S-KABILAN/ECOMMERCE/config"
	"github.com/S-KABILAN/ECOMMERCE/database/seeders"
	"github.com/S-KABILAN/ECOMMERCE/internal/server"
	"github.com/S-KABILAN/ECOMMERCE/pkg/database"
	"github.com/S-KABILAN/ECOMMERCE/pkg/router"

	// Import migrations so their init() funcs run and register themselves.
	"github.com/S-KABILAN/ECOMMERCE/database/migrations"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ecommerce",
	Short: "ECOMMERCE — store backend CLI",
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(routeListCmd)
}

// bootDB loads config and opens the Mongo connection.
func bootDB() (context.Context, context.CancelFunc, error) {
	if err := config.Load(); err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Connect(ctx); err != nil {
		cancel()
		return nil, nil, err
	}
	return ctx, cancel, nil
}

// ecommerce serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start()
	},
}

// ecommerce migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the MongoDB indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel, err := bootDB()
		if err != nil {
			return err
		}
		defer cancel()
		defer database.Disconnect(ctx)

		fmt.Println("Running migrations…")
		return migrations.RunAll(ctx, database.DB())
	},
}

// ecommerce seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run all database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel, err := bootDB()
		if err != nil {
			return err
		}
		defer cancel()
		defer database.Disconnect(ctx)

		fmt.Println("Running seeders…")
		return seeders.RunAll(ctx, database.DB())
	},
}

// ecommerce route:list — print all registered named routes.
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		r := router.New()
		routes.NewAPI(nil, nil, nil).Register(r)

		infos := r.Routes()
		if len(infos) == 0 {
			fmt.Println("No named routes registered.")
			return nil
		}

		names := make([]string, 0, len(infos))
		for name := range infos {
			names = append(names, name)
		}
		sort.Strings(names)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "NAME\tPATH")
		fmt.Fprintln(w, "----\t----")
		for _, name := range names {
			fmt.Fprintf(w, "%s\t%s\n", name, infos[name])
		}
		return w.Flush()
	},
}
