package routes

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fablemap/fablemap/internal/server/middleware"
	"github.com/fablemap/fablemap/internal/storage"
	"github.com/fablemap/fablemap/pkg/logger"
)

// ResetHandler deletes everything the owner has: the knowledge graph,
// all source records, and the uploaded documents in S3. The body must
// carry an explicit confirmation.
func ResetHandler(c echo.Context) error {
	type resetBody struct {
		Confirm bool `json:"confirm" validate:"required"`
	}

	type resetResponse struct {
		Message string `json:"message"`
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, resetResponse{Message: "Unauthorized"})
	}

	data := new(resetBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, resetResponse{Message: "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, resetResponse{Message: "Reset requires confirmation"})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	if err := app.Store.ResetOwner(ctx, user.OwnerID); err != nil {
		logger.Error("Failed to reset owner data", "owner", user.OwnerID, "err", err)
		return c.JSON(http.StatusInternalServerError, resetResponse{Message: "Internal server error"})
	}

	prefix := fmt.Sprintf("uploads/%s/", user.OwnerID)
	if err := storage.DeletePrefix(ctx, app.S3, app.S3Bucket, prefix); err != nil {
		// Graph and records are gone; orphaned uploads are only a
		// storage leak, not a consistency problem.
		logger.Warn("Failed to delete uploaded files", "owner", user.OwnerID, "err", err)
	}

	logger.Info("Owner data reset", "owner", user.OwnerID)
	return c.JSON(http.StatusOK, resetResponse{Message: "All data deleted"})
}
