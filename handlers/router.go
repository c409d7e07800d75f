package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"recipebox/store"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	Logger         zerolog.Logger
	Gatherer       prometheus.Gatherer // served on /metrics when set
	AllowedOrigins []string
}

// NewRouter wires the recipe endpoints to s.
func NewRouter(s *store.RecipeStore, opts RouterOptions) http.Handler {
	r := mux.NewRouter()
	r.Use(hlog.NewHandler(opts.Logger), hlog.AccessHandler(accessLog))

	r.HandleFunc("/recipes", func(w http.ResponseWriter, r *http.Request) {
		GetRecipes(s, w, r)
	}).Methods("GET")

	r.HandleFunc("/recipes/count", func(w http.ResponseWriter, r *http.Request) {
		CountRecipes(s, w, r)
	}).Methods("GET")

	r.HandleFunc("/recipes", func(w http.ResponseWriter, r *http.Request) {
		ClearRecipes(s, w, r)
	}).Methods("DELETE")

	r.HandleFunc("/recipe", func(w http.ResponseWriter, r *http.Request) {
		GetRecipe(s, w, r)
	}).Methods("GET")

	r.HandleFunc("/recipe", func(w http.ResponseWriter, r *http.Request) {
		CreateRecipe(s, w, r)
	}).Methods("POST")

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}).Methods("GET")

	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	return otelhttp.NewHandler(c.Handler(r), "recipebox")
}

// accessLog logs each request once it is served.
func accessLog(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Debug().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request served")
}
