package api

import (
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// RouterConfig holds settings for the API router.
type RouterConfig struct {
	// APIKey must be sent in X-API-Key or Authorization: Bearer <key>.
	// Empty disables auth.
	APIKey string

	// CORSOrigins is a comma-separated list of allowed origins, "*" when empty.
	CORSOrigins string

	Log zerolog.Logger
}

func NewRouter(h *Handler, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(cfg.Log))
	r.Use(middleware.Recoverer)

	// Учетные данные только для явно перечисленных источников
	origins := splitOrigins(cfg.CORSOrigins)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		AllowCredentials: !slices.Contains(origins, "*"),
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Group(func(r chi.Router) {
			if cfg.APIKey != "" {
				r.Use(APIKeyAuth(cfg.APIKey))
			}
			r.Post("/generate-video", h.GenerateVideo)
			r.Get("/download/{filename}", h.Download)
			r.Get("/videos", h.ListVideos)
			r.Post("/cleanup", h.Cleanup)
		})
	})

	return r
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
