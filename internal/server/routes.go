package server

import (
	"github.com/fablemap/fablemap/internal/server/middleware"
	"github.com/fablemap/fablemap/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Knowledge graph routes
	apiRoutes.GET("/graph", routes.GetGraphHandler)

	// Source document routes
	apiRoutes.GET("/sources", routes.GetSourcesHandler)
	apiRoutes.POST("/sources", routes.UploadSourcesHandler)

	// Owner data reset
	apiRoutes.POST("/reset", routes.ResetHandler)
}
