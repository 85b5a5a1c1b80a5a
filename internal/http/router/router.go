package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/cfp-backend/internal/config"
	"github.com/ignatzorin/cfp-backend/internal/http/handlers"
	"github.com/ignatzorin/cfp-backend/internal/http/middleware"
	"github.com/ignatzorin/cfp-backend/internal/metrics"
	"github.com/ignatzorin/cfp-backend/internal/models"
)

// Handlers набор HTTP хэндлеров приложения.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Users     *handlers.UserHandler
	Formats   *handlers.FormatHandler
	Proposals *handlers.ProposalHandler
	Comments  *handlers.CommentHandler
	Rates     *handlers.RateHandler
	Schedule  *handlers.ScheduleHandler
	Sessions  *handlers.AdminSessionHandler
	WS        *handlers.WSHandler
	Health    *handlers.HealthHandler
}

func SetupRouter(
	cfg *config.Config,
	h Handlers,
	tokens middleware.AccessParser,
	users middleware.UserResolver,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.StaticFS("/media", http.Dir(cfg.MediaStoragePath))

	api := r.Group("/api")
	api.Use(middleware.EventResolver(cfg.DefaultEventID), middleware.LocaleResolver(cfg.DefaultLocale))

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware("cfp_auth", cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
		authGroup.POST("/logout", h.Auth.Logout)
	}

	// Публичные маршруты
	api.GET("/formats", h.Formats.List)
	api.GET("/ws", h.WS.Handle)

	authn := middleware.AuthMiddleware(tokens, users)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(authn)
	{
		protected.GET("/auth/sessions", h.Auth.ListSessions)

		protected.GET("/users/me", h.Users.Me)
		protected.PUT("/users/me", h.Users.UpdateMe)
		protected.POST("/users/me/photo", h.Users.UploadPhoto)

		protected.GET("/proposals", h.Proposals.List)
		protected.POST("/proposals", h.Proposals.Create)
		protected.GET("/proposals/:id", middleware.IDValidator("id"), h.Proposals.Get)
		protected.PUT("/proposals/:id", middleware.IDValidator("id"), h.Proposals.Update)
		protected.DELETE("/proposals/:id", middleware.IDValidator("id"), h.Proposals.Delete)

		protected.GET("/proposals/:id/comments", middleware.IDValidator("id"), h.Comments.List)
		protected.POST("/proposals/:id/comments", middleware.IDValidator("id"), h.Comments.Create)
		protected.PUT("/proposals/:id/comments/:commentId", middleware.IDValidator("id", "commentId"), h.Comments.Update)
		protected.DELETE("/proposals/:id/comments/:commentId", middleware.IDValidator("id", "commentId"), h.Comments.Delete)

		protected.GET("/proposals/:id/rates", middleware.IDValidator("id"), h.Rates.List)
		protected.GET("/proposals/:id/rates/me", middleware.IDValidator("id"), h.Rates.Mine)
		protected.POST("/proposals/:id/rates", middleware.IDValidator("id"), h.Rates.Create)
		protected.PUT("/rates/:id", middleware.IDValidator("id"), h.Rates.Update)
		protected.DELETE("/rates/:id", middleware.IDValidator("id"), h.Rates.Delete)
	}

	// Ревьюеры
	review := api.Group("/admin")
	review.Use(authn, middleware.RequireRole(models.RoleReviewer))
	{
		review.GET("/proposals/stats", h.Proposals.Stats)

		review.GET("/sessions", h.Sessions.Sessions)
		review.GET("/sessions/ordered", h.Sessions.Ordered)
		review.GET("/drafts", h.Sessions.Drafts)
		review.GET("/sessions/:added", h.Sessions.Get)
		review.DELETE("/sessions/:added", h.Sessions.Delete)
		review.POST("/sessions/viewed/:added", h.Sessions.MarkViewed)
	}

	// Администраторы
	admin := api.Group("/admin")
	admin.Use(authn, middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/users", h.Users.List)
		admin.PUT("/users/:id/roles", middleware.IDValidator("id"), h.Users.SetRoles)

		admin.POST("/formats", h.Formats.Create)
		admin.PUT("/formats/:id", middleware.IDValidator("id"), h.Formats.Update)
		admin.DELETE("/formats/:id", middleware.IDValidator("id"), h.Formats.Delete)

		admin.PUT("/proposals/:id/state", middleware.IDValidator("id"), h.Proposals.SetState)

		admin.GET("/scheduledtalks/:state", h.Schedule.List)
		admin.GET("/scheduledtalks/:state/speakers", h.Schedule.Speakers)
		admin.PUT("/scheduledtalks", h.Schedule.Update)
		admin.POST("/scheduledtalks/notification", h.Schedule.Notify)

		admin.POST("/sessions/sync", h.Sessions.Sync)
	}

	return r
}
