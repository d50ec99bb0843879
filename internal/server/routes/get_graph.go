package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fablemap/fablemap/internal/server/middleware"
)

func GetGraphHandler(c echo.Context) error {
	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	graph, err := app.Store.LoadGraph(ctx, user.OwnerID)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, graph)
}
