package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"cardforge-backend/internal/handlers"
	"cardforge-backend/internal/middleware"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	generateHandler *handlers.GenerateHandler,
	deckHandler *handlers.DeckHandler,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Generation is the expensive path, keep its own limit
	generateLimiter := middleware.NewRateLimiter(20, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		// ──── Generation Routes (public) ────
		r.Route("/generate", func(r chi.Router) {
			r.Use(generateLimiter.Middleware)
			r.Post("/", generateHandler.Generate)
			r.Post("/topic", generateHandler.GenerateFromTopic)
			r.Post("/files", generateHandler.GenerateFromFiles)
		})

		// ──── Deck Routes ────
		r.Route("/decks", func(r chi.Router) {
			// Save accepts anonymous callers and answers with a
			// local-storage acknowledgment for them.
			r.With(jwtAuth.OptionalMiddleware).Post("/", deckHandler.Save)

			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Get("/", deckHandler.List)
				r.Get("/{id}", deckHandler.Get)
				r.Delete("/{id}", deckHandler.Delete)
				r.Post("/{id}/study", deckHandler.Study)
				r.Get("/{id}/pdf", deckHandler.ExportPDF)
			})
		})
	})

	return r
}
