package router

import (
	"github.com/gin-gonic/gin"

	"github.com/thorzos/handyhub-backend/internal/config"
	"github.com/thorzos/handyhub-backend/internal/http/handlers"
	"github.com/thorzos/handyhub-backend/internal/http/middleware"
	"github.com/thorzos/handyhub-backend/internal/models"
	"github.com/thorzos/handyhub-backend/internal/service"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth        *handlers.AuthHandler
	Users       *handlers.UserHandler
	Jobs        *handlers.JobHandler
	JobImages   *handlers.JobImageHandler
	Offers      *handlers.OfferHandler
	Alerts      *handlers.SearchAlertHandler
	Ratings     *handlers.RatingHandler
	Properties  *handlers.PropertyHandler
	Licenses    *handlers.LicenseHandler
	Reports     *handlers.ReportHandler
	Push        *handlers.PushHandler
	Chats       *handlers.ChatHandler
	WS          *handlers.WSHandler
	Health      *handlers.HealthHandler
}

func SetupRouter(cfg *config.Config, h Handlers, tokenManager *service.TokenManager) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
	}

	api.GET("/ws", h.WS.Handle)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		// Profiles.
		protected.GET("/users/me", h.Users.GetMe)
		protected.PUT("/users/me", h.Users.UpdateMe)
		protected.GET("/users/:id", middleware.UUIDValidator("id"), h.Users.GetPublic)
		protected.DELETE("/users/:id", middleware.UUIDValidator("id"), h.Users.Delete)
		protected.GET("/users/:id/ratings", middleware.UUIDValidator("id"), h.Ratings.Latest)
		protected.GET("/users/:id/ratings/stats", middleware.UUIDValidator("id"), h.Ratings.Stats)

		// Jobs, customer side.
		customer := protected.Group("/")
		customer.Use(middleware.RequireRole(models.RoleCustomer))
		{
			customer.POST("/jobs", h.Jobs.Create)
			customer.GET("/jobs", h.Jobs.ListOwn)
			customer.GET("/jobs/search", h.Jobs.SearchOwn)
			customer.PUT("/jobs/:id", middleware.UUIDValidator("id"), h.Jobs.Update)
			customer.POST("/jobs/:id/done", middleware.UUIDValidator("id"), h.Jobs.MarkDone)
			customer.POST("/jobs/:id/images", middleware.UUIDValidator("id"), h.JobImages.Upload)
			customer.GET("/offers/received", h.Offers.ListReceived)
			customer.POST("/offers/:id/accept", middleware.UUIDValidator("id"), h.Offers.Accept)

			customer.POST("/properties", h.Properties.Create)
			customer.GET("/properties", h.Properties.List)
			customer.GET("/properties/:id", middleware.UUIDValidator("id"), h.Properties.Get)
			customer.PUT("/properties/:id", middleware.UUIDValidator("id"), h.Properties.Update)
			customer.DELETE("/properties/:id", middleware.UUIDValidator("id"), h.Properties.Delete)
		}

		// Jobs, worker side.
		worker := protected.Group("/")
		worker.Use(middleware.RequireRole(models.RoleWorker))
		{
			worker.GET("/jobs/open", h.Jobs.ListOpen)
			worker.GET("/jobs/open/search", h.Jobs.SearchOpen)
			worker.POST("/offers", h.Offers.Create)
			worker.GET("/offers/sent", h.Offers.ListSent)
			worker.PUT("/offers/:id", middleware.UUIDValidator("id"), h.Offers.Update)
			worker.POST("/offers/:id/withdraw", middleware.UUIDValidator("id"), h.Offers.Withdraw)
			worker.DELETE("/offers/:id", middleware.UUIDValidator("id"), h.Offers.Delete)

			worker.POST("/alerts", h.Alerts.Create)
			worker.GET("/alerts", h.Alerts.List)
			worker.PATCH("/alerts/:id/active", middleware.UUIDValidator("id"), h.Alerts.SetActive)
			worker.POST("/alerts/:id/reset", middleware.UUIDValidator("id"), h.Alerts.ResetCount)
			worker.DELETE("/alerts/:id", middleware.UUIDValidator("id"), h.Alerts.Delete)

			worker.POST("/licenses", h.Licenses.Submit)
			worker.GET("/licenses", h.Licenses.ListOwn)
			worker.DELETE("/licenses/:id", middleware.UUIDValidator("id"), h.Licenses.Delete)
		}

		// Shared, visibility enforced in the services.
		protected.GET("/jobs/:id", middleware.UUIDValidator("id"), h.Jobs.Get)
		// Owning customer or admin; the service checks which.
		protected.DELETE("/jobs/:id", middleware.UUIDValidator("id"), h.Jobs.Delete)
		protected.GET("/jobs/:id/lowest-price", middleware.UUIDValidator("id"), h.Jobs.LowestPrice)
		protected.GET("/jobs/:id/images", middleware.UUIDValidator("id"), h.JobImages.List)
		protected.GET("/images/:id", middleware.UUIDValidator("id"), h.JobImages.Download)
		protected.DELETE("/images/:id", middleware.UUIDValidator("id"), h.JobImages.Delete)

		protected.POST("/jobs/:id/rating", middleware.UUIDValidator("id"), h.Ratings.Create)
		protected.PUT("/jobs/:id/rating", middleware.UUIDValidator("id"), h.Ratings.Update)
		protected.GET("/jobs/:id/rating", middleware.UUIDValidator("id"), h.Ratings.GetOwn)

		protected.POST("/reports", h.Reports.File)

		protected.POST("/push/subscriptions", h.Push.Subscribe)
		protected.GET("/push/subscriptions", h.Push.List)
		protected.DELETE("/push/subscriptions", h.Push.Unsubscribe)

		protected.GET("/chats", h.Chats.List)
		protected.GET("/chats/:id/messages", middleware.UUIDValidator("id"), h.Chats.Messages)

		// Admin.
		admin := protected.Group("/admin")
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			admin.GET("/licenses", h.Licenses.ListPending)
			admin.POST("/licenses/:id/review", middleware.UUIDValidator("id"), h.Licenses.Review)
			admin.GET("/reports", h.Reports.ListOpen)
			admin.POST("/reports/:id/close", middleware.UUIDValidator("id"), h.Reports.Close)
			admin.PATCH("/users/:id/ban", middleware.UUIDValidator("id"), h.Users.SetBanned)
		}
	}

	return r
}
