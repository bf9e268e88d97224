package httpserver

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Auth         *AuthHandler
	Project      *ProjectHandler
	Cost         *CostHandler
	Document     *DocumentHandler
	Event        *EventHandler
	Comment      *CommentHandler
	Notification *NotificationHandler
	Preference   *PreferenceHandler
	Security     *SecurityHandler
	EmailLog     *EmailLogHandler
}

// NewRouter builds the gin engine. Everything except registration, login,
// unsubscribe, metrics and health requires a bearer token.
func NewRouter(h Handlers, jwtSecret string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(MetricsMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/register", h.Auth.Register)
	r.POST("/login", h.Auth.Login)
	r.GET("/unsubscribe", h.Preference.Unsubscribe)

	api := r.Group("/")
	api.Use(AuthMiddleware(jwtSecret))
	{
		api.POST("/projects", h.Project.Create)
		api.GET("/projects", h.Project.List)
		api.GET("/projects/:id", h.Project.Get)
		api.POST("/projects/:id/invite", h.Project.Invite)
		api.GET("/projects/:id/backup", h.Project.Backup)
		api.POST("/invitations/:id/accept", h.Project.AcceptInvite)

		api.POST("/projects/:id/costs", h.Cost.Create)
		api.GET("/projects/:id/costs", h.Cost.List)
		api.POST("/projects/:id/documents", h.Document.Create)
		api.GET("/projects/:id/documents", h.Document.List)
		api.POST("/projects/:id/events", h.Event.Create)
		api.GET("/projects/:id/events", h.Event.List)
		api.POST("/projects/:id/comments", h.Comment.Create)
		api.GET("/projects/:id/comments", h.Comment.List)

		api.GET("/notifications", h.Notification.List)
		api.POST("/notifications/:id/read", h.Notification.MarkRead)
		api.POST("/notifications/read-all", h.Notification.MarkAllRead)

		api.GET("/preferences", h.Preference.Get)
		api.PUT("/preferences", h.Preference.Update)

		api.GET("/security/events", h.Security.ListEvents)
		api.GET("/emails", h.EmailLog.List)
	}

	return r
}
