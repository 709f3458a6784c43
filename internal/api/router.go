package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/voicebridge/internal/api/handlers"
	"github.com/nikhilbhutani/voicebridge/internal/api/middleware"
	"github.com/nikhilbhutani/voicebridge/internal/config"
	"github.com/nikhilbhutani/voicebridge/internal/history"
	"github.com/nikhilbhutani/voicebridge/internal/multimodal/stt"
	"github.com/nikhilbhutani/voicebridge/internal/speech"
	"github.com/nikhilbhutani/voicebridge/internal/storage"
	"github.com/nikhilbhutani/voicebridge/internal/translate"
)

// Services are the collaborators the HTTP layer dispatches to. Redis and
// Storage may be nil.
type Services struct {
	Redis      *redis.Client
	Probe      *speech.Probe
	Synth      handlers.Synthesizer
	Translator translate.Translator
	STT        stt.STTProvider
	History    *history.Store
	Storage    storage.Storage
	Premium    handlers.PremiumCredentials
}

type Router struct {
	mux *chi.Mux
	cfg *config.Config
	svc Services
}

func NewRouter(cfg *config.Config, svc Services) *Router {
	return &Router{
		mux: chi.NewRouter(),
		cfg: cfg,
		svc: svc,
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	health := handlers.NewHealthHandler(rt.svc.Redis, rt.svc.Probe)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	defaultQuality, _ := speech.ParseQuality(rt.cfg.Speech.DefaultQuality, speech.QualityPremium)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(rt.cfg.RateLimit.RequestsPerMinute))
		if rt.cfg.Server.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(time.Duration(rt.cfg.Server.RequestTimeout) * time.Second))
		}

		speechH := handlers.NewSpeechHandler(rt.svc.Synth, rt.svc.Translator, rt.svc.STT, rt.svc.History, rt.svc.Storage, defaultQuality)
		r.Post("/translate", speechH.Translate)
		r.Post("/transcribe", speechH.Transcribe)
		r.Post("/speech", speechH.Speak)

		historyH := handlers.NewHistoryHandler(rt.svc.History)
		r.Route("/history", func(r chi.Router) {
			r.Get("/", historyH.List)
			r.Delete("/", historyH.Clear)
		})

		settingsH := handlers.NewSettingsHandler(rt.svc.Premium, rt.cfg.Server.EnvFile)
		r.Route("/settings", func(r chi.Router) {
			r.Get("/", settingsH.Get)
			r.Put("/", settingsH.Update)
		})

		r.Get("/languages", handlers.Languages)
	})

	return r
}
