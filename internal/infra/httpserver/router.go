package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	appai "github.com/bryanwahyu/inspecta/internal/application/ai"
	appinspections "github.com/bryanwahyu/inspecta/internal/application/inspections"
	appsettings "github.com/bryanwahyu/inspecta/internal/application/settings"
	appuploads "github.com/bryanwahyu/inspecta/internal/application/uploads"
	"github.com/bryanwahyu/inspecta/internal/middleware"
)

// Deps is everything the HTTP layer needs. Metrics, Health and Ready are
// optional.
type Deps struct {
	Inspections *appinspections.Service
	Settings    *appsettings.Service
	Uploads     *appuploads.Service
	AI          *appai.Service

	Metrics *middleware.Metrics
	Health  map[string]middleware.HealthChecker
	Ready   middleware.HealthChecker

	CORSOrigins    []string
	RateLimit      float64
	RateBurst      int
	MaxUploadBytes int64
}

type Router struct {
	inspections *appinspections.Service
	settings    *appsettings.Service
	uploads     *appuploads.Service
	ai          *appai.Service
	maxUpload   int64
}

func NewRouter(d Deps) http.Handler {
	r := &Router{
		inspections: d.Inspections,
		settings:    d.Settings,
		uploads:     d.Uploads,
		ai:          d.AI,
		maxUpload:   d.MaxUploadBytes,
	}
	if r.maxUpload <= 0 {
		r.maxUpload = 20 << 20
	}

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.RealIP)
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(chimw.Recoverer)
	if d.Metrics != nil {
		mux.Use(d.Metrics.Middleware)
	}
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins(d.CORSOrigins),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	mux.Get("/health", middleware.HealthHandler(d.Health))
	mux.Get("/livez", middleware.LivenessHandler)
	if d.Ready != nil {
		mux.Get("/readyz", middleware.ReadinessHandler(d.Ready))
	} else {
		mux.Get("/readyz", middleware.LivenessHandler)
	}
	if d.Metrics != nil {
		mux.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	limited := middleware.RateLimitMiddleware(d.RateLimit, d.RateBurst)

	mux.Post("/inspections", r.wrap(r.handleCreateInspection))
	mux.Get("/inspections", r.wrap(r.handleListInspections))
	mux.With(limited).Post("/inspections/{id}/enrich", r.wrap(r.handleEnrichInspection))
	mux.Post("/findings", r.wrap(r.handleCreateFinding))
	mux.Get("/findings", r.wrap(r.handleListFindings))
	mux.With(limited).Post("/ai", r.wrap(r.handleAI))
	mux.Get("/config", r.wrap(r.handleGetConfig))
	mux.Put("/config", r.wrap(r.handlePutConfig))
	mux.Post("/upload", r.wrap(r.handleUpload))
	mux.Delete("/admin", r.wrap(r.handleReset))
	mux.Get("/migrate", r.wrap(r.handleMigrate))

	return mux
}

func origins(list []string) []string {
	if len(list) == 0 {
		return []string{"*"}
	}
	return list
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			status, msg := classify(err)
			logError(req, status, err)
			writeJSON(w, status, errorBody{Error: msg})
		}
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(req *http.Request, v any) error {
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		return invalidBody(err)
	}
	return nil
}
