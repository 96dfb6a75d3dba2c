package api

import (
	"net/http"
	"time"

	"pecunia-backend/internal/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// RouterDependencies holds all the dependencies required by the router setup,
// primarily handlers and HTTP settings.
type RouterDependencies struct {
	SessionHandler    *handlers.SessionHandlers
	InsightHandler    *handlers.InsightHandlers
	TranscriptHandler *handlers.TranscriptHandlers
	ClassifyHandler   *handlers.ClassifyHandler

	AllowedOrigins []string
	RequestTimeout time.Duration
	Logger         *zap.Logger
}

// NewRouter creates and configures the main Chi router for the application.
func NewRouter(deps RouterDependencies) *chi.Mux {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	r := chi.NewRouter()

	// --- Base Middleware Stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/v1", func(r chi.Router) {
		if deps.SessionHandler != nil {
			r.Route("/sessions", func(r chi.Router) {
				// The event stream outlives the request timeout.
				r.Get("/{sessionID}/events", deps.SessionHandler.HandleEvents)

				r.Group(func(r chi.Router) {
					r.Use(middleware.Timeout(timeout))

					r.Post("/", deps.SessionHandler.HandleCreateSession)
					r.Get("/{sessionID}", deps.SessionHandler.HandleGetSession)
					r.Delete("/{sessionID}", deps.SessionHandler.HandleDeleteSession)
					r.Get("/{sessionID}/messages", deps.SessionHandler.HandleListMessages)
					r.Post("/{sessionID}/messages", deps.SessionHandler.HandleSendMessage)

					if deps.InsightHandler != nil {
						r.Patch("/{sessionID}/profile", deps.InsightHandler.HandlePatchProfile)
						r.Get("/{sessionID}/insights/{category}", deps.InsightHandler.HandleGetInsight)
						r.Post("/{sessionID}/plan", deps.InsightHandler.HandleAutomatedPlan)
						r.Post("/{sessionID}/goals/strategy", deps.InsightHandler.HandleGoalStrategy)
						r.Post("/{sessionID}/spending-analysis", deps.InsightHandler.HandleSpendingAnalysis)
						r.Get("/{sessionID}/suggestions", deps.InsightHandler.HandleSuggestions)
					} else {
						logger.Warn("InsightHandler dependency is nil, skipping insight routes")
					}
				})
			})
		} else {
			logger.Warn("SessionHandler dependency is nil, skipping /v1/sessions routes")
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(timeout))

			if deps.TranscriptHandler != nil {
				r.Route("/transcripts", func(r chi.Router) {
					r.Get("/", deps.TranscriptHandler.HandleListTranscripts)
					r.Get("/{sessionID}", deps.TranscriptHandler.HandleGetTranscript)
				})
			} else {
				logger.Warn("TranscriptHandler dependency is nil, skipping /v1/transcripts routes")
			}

			if deps.ClassifyHandler != nil {
				r.Post("/classify", deps.ClassifyHandler.HandleClassify)
			}
		})
	})

	return r
}
