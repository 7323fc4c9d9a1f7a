package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"pawshearts/internal/http/handlers"
	"pawshearts/internal/middleware"
)

// Options configures the cross-cutting middleware.
type Options struct {
	Logger          zerolog.Logger
	AllowedOrigins  []string
	RateLimitPerMin int
	CountryLookup   middleware.CountryLookup
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(opts.Logger),
		chimw.Recoverer,
		middleware.CORS(opts.AllowedOrigins),
		middleware.Geo(opts.CountryLookup),
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"route not found","code":"not_found"}` + "\n"))
	})

	// Health and docs stay outside the rate limit.
	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)

	admin := middleware.AdminOnly(app.AdminSecret)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))

		r.Route("/v1", func(r chi.Router) {
			r.Get("/products", app.ProductsList)
			r.Get("/products/featured", app.ProductsFeatured)
			r.Get("/seo/keywords", app.SEOKeywords)

			r.Route("/receipts", func(r chi.Router) {
				r.Get("/", app.ReceiptsGet)
				r.Get("/stats", app.ReceiptsStats)
				r.Get("/export", app.ReceiptsExport)
				r.With(admin).Post("/", app.ReceiptsAdd)
				r.With(admin).Put("/goal", app.ReceiptsSetGoal)
			})

			r.Route("/commissions", func(r chi.Router) {
				r.Use(admin)
				r.Get("/", app.CommissionsList)
				r.Post("/", app.CommissionsTrack)
			})

			r.Route("/pins", func(r chi.Router) {
				r.Use(admin)
				r.Get("/", app.PinsList)
				r.Post("/", app.PinsCreate)
				r.Post("/bulk", app.PinsBulk)
				r.Get("/{id}", app.PinsGet)
			})
		})

		// Legacy serverless endpoints used by the storefront.
		r.Route("/api", func(r chi.Router) {
			r.HandleFunc("/receipt-tracker", app.ReceiptTracker)
			r.Get("/product-finder", app.ProductsList)
			r.Get("/seo-keywords", app.SEOKeywords)
			r.With(admin).Post("/track-commission", app.CommissionsTrack)
			r.With(admin).Post("/pinterest-share", app.PinsCreate)
			r.With(admin).Post("/pinterest-share/bulk", app.PinsBulk)
		})
	})

	return r
}
