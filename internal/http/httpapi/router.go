package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/Shree2124/NGOStream/internal/http/handlers"
	"github.com/Shree2124/NGOStream/internal/middleware"
)

// Options configures the router middleware.
type Options struct {
	Logger          zerolog.Logger
	AllowedOrigins  []string
	RateLimitPerMin int
	Metrics         http.Handler
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
	)

	r.Get("/", app.Root)
	r.Get("/v1/healthz", app.Health)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))

		r.Get("/train-model", app.TrainModel)
		r.Get("/fundraising-metrics", app.FundraisingMetrics)
		r.Get("/donation-trends", app.DonationTrends)
		r.Post("/analyze", app.Analyze)
		r.Post("/train-feedback-model", app.TrainFeedbackModel)
	})

	return r
}
