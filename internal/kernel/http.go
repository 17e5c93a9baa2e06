// Package kernel assembles the HTTP handler: global middleware, the
// metrics endpoint and the API routes.
package kernel

import (
	"net/http"
	"time"

	"github.com/S-KABILAN/ECOMMERCE/app/routes"
	"github.com/S-KABILAN/ECOMMERCE/pkg/metrics"
	"github.com/S-KABILAN/ECOMMERCE/pkg/middleware"
	"github.com/S-KABILAN/ECOMMERCE/pkg/reqid"
	"github.com/S-KABILAN/ECOMMERCE/pkg/router"
)

// NewHandler builds the root handler around api.
//
// Middleware order (outermost first):
//  1. Prometheus metrics — outermost for accurate total latency
//  2. Request ID         — inject unique ID before anything logs
//  3. Recovery           — catches panics before they kill the goroutine
//  4. Logger             — logs request_id from context
//  5. CORS
//  6. Rate limiter       — reject abusers early
func NewHandler(api *routes.API) http.Handler {
	r := router.New()

	r.Use(metrics.Middleware())
	r.Use(reqid.Middleware())
	r.Use(middleware.Recovery)
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(middleware.RateLimit(200, time.Minute))

	// Prometheus endpoint, outside /api/v1 and unauthenticated.
	r.Handle("/metrics", metrics.Handler())

	api.Register(r)

	return r.Handler()
}
