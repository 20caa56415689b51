package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/council-portal-api/internal/handler"
	"github.com/noah-isme/council-portal-api/internal/middleware"
	"github.com/noah-isme/council-portal-api/internal/models"
	"github.com/noah-isme/council-portal-api/internal/service"
	"github.com/noah-isme/council-portal-api/pkg/config"
	appErrors "github.com/noah-isme/council-portal-api/pkg/errors"
	"github.com/noah-isme/council-portal-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/council-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/council-portal-api/pkg/middleware/requestid"
	"github.com/noah-isme/council-portal-api/pkg/ratelimit"
	"github.com/noah-isme/council-portal-api/pkg/response"
)

type routerDeps struct {
	cfg           *config.Config
	logger        *zap.Logger
	metrics       *service.MetricsService
	auth          middleware.Authenticator
	limiter       ratelimit.Limiter
	auditRepo     middleware.AuditWriter
	publicAppeals *handler.PublicAppealHandler
	appeals       *handler.AppealHandler
	downloads     *handler.AttachmentHandler
	settings      *handler.NotificationSettingsHandler
	content       *handler.ContentHandler
	directions    *handler.DirectionHandler
	roles         *handler.RoleHandler
	stats         *handler.StatsHandler
	ops           *handler.MetricsHandler
}

func newRouter(d routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(d.logger, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(d.cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(d.metrics, "/metrics"))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", d.ops.Health)
	r.GET("/ready", d.ops.Ready)
	r.GET("/metrics", d.ops.Prometheus)

	if d.cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(d.cfg.APIPrefix)
	rl := d.cfg.RateLimit

	api.GET("/directions", d.directions.List)
	api.GET("/content", d.content.ListPublished)
	api.GET("/content/:slug", d.content.GetPublished)
	api.GET("/attachments/download", d.downloads.Download)

	public := api.Group("/public/appeals")
	public.POST("", middleware.RateLimit(d.limiter, d.metrics, "submit", rl.SubmitLimit, rl.SubmitWindow, d.logger), d.publicAppeals.Submit)
	status := public.Group("/status/:token", middleware.RateLimit(d.limiter, d.metrics, "status", rl.StatusLimit, rl.StatusWindow, d.logger))
	status.GET("", d.publicAppeals.Status)
	status.POST("/attachments", d.publicAppeals.UploadAttachment)

	secured := api.Group("", middleware.JWT(d.auth))

	me := secured.Group("/me")
	me.GET("/notification-settings", d.settings.Get)
	me.PUT("/notification-settings", d.settings.Update)
	me.GET("/notification-logs", d.settings.Logs)

	staff := secured.Group("", middleware.RequireAnyGrant())
	appeals := staff.Group("/appeals")
	appeals.GET("", d.appeals.List)
	appeals.GET("/:id", d.appeals.Get)
	appeals.GET("/:id/history", d.appeals.History)
	appeals.PATCH("/:id/status", d.appeals.ChangeStatus)
	appeals.PATCH("/:id/assignee", d.appeals.Assign)
	appeals.PATCH("/:id/priority", d.appeals.SetPriority)
	appeals.PATCH("/:id/deadline", d.appeals.SetDeadline)
	appeals.POST("/:id/comments", d.appeals.AddComment)
	appeals.GET("/:id/attachments", d.appeals.ListAttachments)
	appeals.GET("/:id/attachments/:attachmentId/url", middleware.Audit(d.auditRepo, models.AuditActionAttachmentLink, "appeal_attachment"), d.appeals.AttachmentURL)

	stats := staff.Group("/stats")
	stats.GET("/overview", d.stats.Overview)
	stats.GET("/report.pdf", d.stats.Report)

	admin := secured.Group("", middleware.RequireRoles(models.RoleBoard, models.RoleStaff))
	admin.GET("/manage/content", d.content.ListAll)
	admin.POST("/content", d.content.Create)
	admin.PUT("/content/:id", d.content.Update)
	admin.DELETE("/content/:id", d.content.Delete)
	admin.POST("/directions", d.directions.Create)
	admin.GET("/roles", d.roles.List)
	admin.POST("/roles", d.roles.Grant)
	admin.DELETE("/roles/:id", d.roles.Revoke)
	admin.GET("/system/metrics", d.ops.Summary)

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "route not found"))
	})

	return r
}
