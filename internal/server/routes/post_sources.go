package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/fablemap/fablemap/internal/queue"
	"github.com/fablemap/fablemap/internal/server/middleware"
	"github.com/fablemap/fablemap/internal/storage"
	"github.com/fablemap/fablemap/pkg/loader"
	"github.com/fablemap/fablemap/pkg/logger"
	"github.com/fablemap/fablemap/pkg/lore"
)

var supportedExtensions = []string{"txt", "md", "html", "htm", "epub", "docx"}

// UploadSourcesHandler accepts source documents as multipart/form-data,
// stores them in S3, registers pending source records and queues the
// batch for ingestion. The analysis itself runs on the worker; the
// response only confirms acceptance.
func UploadSourcesHandler(c echo.Context) error {
	type uploadResponse struct {
		Message string              `json:"message"`
		Sources []lore.SourceRecord `json:"sources,omitempty"`
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, uploadResponse{Message: "Unauthorized"})
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, uploadResponse{Message: "Invalid request body"})
	}
	uploads := form.File["files"]
	if len(uploads) == 0 {
		return c.JSON(http.StatusBadRequest, uploadResponse{Message: "No files provided"})
	}

	for _, file := range uploads {
		if !slices.Contains(supportedExtensions, loader.Ext(file.Filename)) {
			return c.JSON(http.StatusBadRequest, uploadResponse{
				Message: fmt.Sprintf("Unsupported file type: %s", file.Filename),
			})
		}
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	records := make([]lore.SourceRecord, 0, len(uploads))
	files := make([]queue.IngestFile, 0, len(uploads))
	for _, file := range uploads {
		recordID, err := gonanoid.New()
		if err != nil {
			logger.Error("Failed to generate source record ID", "err", err)
			return c.JSON(http.StatusInternalServerError, uploadResponse{Message: "Internal server error"})
		}

		src, err := file.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, uploadResponse{Message: "Invalid request body"})
		}

		key := fmt.Sprintf("uploads/%s/%s-%s", user.OwnerID, recordID, file.Filename)
		err = storage.PutFile(ctx, app.S3, app.S3Bucket, key, file.Filename, src)
		src.Close()
		if err != nil {
			logger.Error("Failed to upload file", "file", file.Filename, "err", err)
			return c.JSON(http.StatusInternalServerError, uploadResponse{Message: "Internal server error"})
		}

		contentType := file.Header.Get("Content-Type")
		records = append(records, lore.SourceRecord{
			ID:          recordID,
			Name:        file.Filename,
			ContentType: contentType,
			Status:      lore.SourceStatusPending,
			CreatedAt:   time.Now(),
		})
		files = append(files, queue.IngestFile{
			RecordID:    recordID,
			Name:        file.Filename,
			Key:         key,
			ContentType: contentType,
		})
	}

	if err := app.Store.AppendSourceRecords(ctx, user.OwnerID, records); err != nil {
		logger.Error("Failed to register source records", "err", err)
		return c.JSON(http.StatusInternalServerError, uploadResponse{Message: "Internal server error"})
	}

	msg, err := json.Marshal(queue.IngestMsg{OwnerID: user.OwnerID, Files: files})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, uploadResponse{Message: "Internal server error"})
	}
	if err := queue.PublishFIFO(app.Queue, queue.IngestQueue, msg); err != nil {
		logger.Error("Failed to queue ingest message", "err", err)
		return c.JSON(http.StatusInternalServerError, uploadResponse{Message: "Internal server error"})
	}

	return c.JSON(http.StatusAccepted, uploadResponse{
		Message: "Files accepted for analysis",
		Sources: records,
	})
}
