package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/declafisc/declarations/internal/config"
	"github.com/declafisc/declarations/internal/entry"
	httpmiddleware "github.com/declafisc/declarations/internal/http/middleware"
	"github.com/declafisc/declarations/internal/service"
	"github.com/declafisc/declarations/internal/settings"
)

// Stores agrupa os backends concretos escolhidos no boot (Postgres ou
// arquivos JSON).
type Stores struct {
	Users    service.UserStore
	Entries  entry.Store
	Settings settings.Store
}

// Handler agrega os serviços usados pelas rotas.
type Handler struct {
	cfg           *config.Config
	pool          *pgxpool.Pool
	redis         *redis.Client
	authService   *service.AuthService
	users         *service.UserService
	entries       *entry.Service
	settings      *settings.Service
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
}

// NewRouter devolve roteador configurado. pool pode ser nil quando o
// driver de armazenamento é json.
func NewRouter(cfg *config.Config, pool *pgxpool.Pool, redisClient *redis.Client, authService *service.AuthService, st Stores) (http.Handler, error) {
	settingsService := settings.NewService(st.Settings, redisClient)
	entryService := entry.NewService(st.Entries, settingsService)
	userService := service.NewUserService(st.Users)

	h := &Handler{
		cfg:           cfg,
		pool:          pool,
		redis:         redisClient,
		authService:   authService,
		users:         userService,
		entries:       entryService,
		settings:      settingsService,
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Get("/health", h.Health)
		public.Get("/ready", h.Ready)

		public.Post("/api/register", h.Register)
		public.Post("/api/login", h.Login)
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(authService.JWT()))
		private.Use(httpmiddleware.SubjectRateLimit(h.authLimiter))

		private.Get("/api/me", h.Me)
		private.Get("/api/config", h.ReadConfig)

		private.Route("/api/admin", func(admin chi.Router) {
			admin.Get("/users", h.ListUsers)
			admin.Put("/users/{username}/role", h.SetUserRole)
			admin.Put("/config", h.WriteConfig)
		})

		private.Get("/api/data/{category}/{username}", h.ListEntries)
		private.Get("/api/data/{category}/{username}/{year}", h.GetEntry)
		private.Put("/api/data/{category}/{username}/{year}", h.PutEntry)
		private.Delete("/api/data/{category}/{username}/{year}", h.DeleteEntry)

		private.Get("/api/export", h.Export)
		private.Post("/api/import", h.Import)
	})

	return r, nil
}

// Health responde status simples.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready valida as dependências ativas (Postgres quando configurado, Redis).
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	var dbErr, redisErr error
	if h.pool != nil {
		dbErr = h.pool.Ping(ctx)
	}
	if h.redis != nil {
		redisErr = h.redis.Ping(ctx).Err()
	}

	if dbErr != nil || redisErr != nil {
		WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "dependências indisponíveis", map[string]any{
			"db":    errorString(dbErr),
			"redis": errorString(redisErr),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"ready": true})
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
