package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.Use(middleware.RequestID())
	e.Use(NewEchoLogger(s.logger))
	e.Use(middleware.Recover())
	e.Use(otelecho.Middleware("monjez-api", otelecho.WithSkipper(skipper)))

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	e.GET("/api/health", s.healthHandler)

	e.GET("/api/websocket", s.websocketHandler, s.AuthMiddleware)

	var authGroup = e.Group("/api/v1/auth")
	authGroup.POST("/login", s.Login)
	authGroup.POST("/register", s.RegisterUser)

	var userGroup = e.Group("/api/v1/users")
	userGroup.GET("", s.ListUsers, s.AuthMiddleware)
	userGroup.POST("", s.CreateUser, s.AuthMiddleware, s.AdminMiddleware)
	userGroup.GET("/me", s.GetMe, s.AuthMiddleware)
	userGroup.GET("/:id", s.GetUserByID, s.AuthMiddleware)
	userGroup.PUT("/:id", s.UpdateUser, s.AuthMiddleware, s.AdminMiddleware)
	userGroup.DELETE("/:id", s.DeleteUser, s.AuthMiddleware, s.AdminMiddleware)

	var trackGroup = e.Group("/api/v1/tracks")
	trackGroup.GET("", s.ListTracks, s.AuthMiddleware)
	trackGroup.POST("", s.CreateTrack, s.AuthMiddleware)
	trackGroup.GET("/:id", s.GetTrackByID, s.AuthMiddleware)
	trackGroup.PUT("/:id", s.UpdateTrack, s.AuthMiddleware)
	trackGroup.DELETE("/:id", s.DeleteTrack, s.AuthMiddleware, s.AdminMiddleware)

	var taskGroup = e.Group("/api/v1/tasks")
	taskGroup.GET("", s.ListTasks, s.AuthMiddleware)
	taskGroup.POST("", s.CreateTask, s.AuthMiddleware)
	taskGroup.GET("/:id", s.GetTaskByID, s.AuthMiddleware)
	taskGroup.PUT("/:id", s.UpdateTask, s.AuthMiddleware)
	taskGroup.DELETE("/:id", s.DeleteTask, s.AuthMiddleware)
	taskGroup.POST("/:id/assignments", s.AssignTaskUser, s.AuthMiddleware)
	taskGroup.DELETE("/:id/assignments", s.UnassignTaskUser, s.AuthMiddleware)

	var updateGroup = e.Group("/api/v1/updates")
	updateGroup.GET("", s.ListDailyUpdates, s.AuthMiddleware)
	updateGroup.POST("", s.CreateDailyUpdate, s.AuthMiddleware)
	updateGroup.GET("/:id", s.GetDailyUpdateByID, s.AuthMiddleware)
	updateGroup.PUT("/:id", s.UpdateDailyUpdate, s.AuthMiddleware)
	updateGroup.DELETE("/:id", s.DeleteDailyUpdate, s.AuthMiddleware)
	updateGroup.POST("/:id/read", s.MarkDailyUpdateRead, s.AuthMiddleware)

	var notiGroup = e.Group("/api/v1/notifications")
	notiGroup.GET("", s.ListNotifications, s.AuthMiddleware)
	notiGroup.GET("/stream", s.StreamNotifications, s.AuthMiddleware)
	notiGroup.PATCH("/read", s.ReadAllNotifications, s.AuthMiddleware)
	notiGroup.PATCH("/:id/read", s.ReadNotification, s.AuthMiddleware)

	e.GET("/api/v1/dashboard/summary", s.GetDashboardSummary, s.AuthMiddleware)

	e.GET("/api/v1/audit-logs", s.ListAuditLogs, s.AuthMiddleware, s.AdminMiddleware)

	var fileGroup = e.Group("/api/v1/files")
	fileGroup.GET("/upload-url", s.GetTempUploadURL, s.AuthMiddleware)
	if s.local != nil {
		// Object names carry user/timestamp prefixes with slashes, so a
		// single :name segment can't bind them.
		fileGroup.PUT("/temp/*", s.UploadTempFile, s.AuthMiddleware)
		e.Static("/files", s.local.PublicRoot())
	}

	return e
}
