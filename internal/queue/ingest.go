package queue

import (
	"context"
	"encoding/json"
	"time"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rabbitmq/amqp091-go"

	storepgx "github.com/fablemap/fablemap/internal/store/pgx"
	"github.com/fablemap/fablemap/internal/util"
	"github.com/fablemap/fablemap/pkg/ai"
	"github.com/fablemap/fablemap/pkg/graph"
	"github.com/fablemap/fablemap/pkg/loader"
	"github.com/fablemap/fablemap/pkg/loader/doc"
	"github.com/fablemap/fablemap/pkg/loader/epub"
	"github.com/fablemap/fablemap/pkg/loader/html"
	"github.com/fablemap/fablemap/pkg/loader/s3"
	"github.com/fablemap/fablemap/pkg/logger"
)

// IngestFile identifies one uploaded document inside an ingest message.
type IngestFile struct {
	RecordID    string `json:"record_id"`
	Name        string `json:"name"`
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
}

// IngestMsg is the payload published to the ingest queue when an owner
// uploads documents.
type IngestMsg struct {
	OwnerID string       `json:"owner_id"`
	Files   []IngestFile `json:"files"`
}

// ProgressMsg is broadcast on the pubsub exchange while an ingestion
// run moves along.
type ProgressMsg struct {
	OwnerID   string    `json:"owner_id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ProcessIngestMessage runs the ingestion pipeline for one upload
// batch. Documents are fetched from S3 with a loader matching their
// file type, extracted and folded into the owner's knowledge graph.
// Progress updates are broadcast as "progress.<owner>".
//
// A partial run is not an error: the graph was saved and failed source
// records are marked in the store, so redelivering the message would
// only duplicate work.
func ProcessIngestMessage(
	ctx context.Context,
	s3Client *awss3.Client,
	aiClient ai.Client,
	ch *amqp091.Channel,
	conn *pgxpool.Pool,
	msg string,
) error {
	data := new(IngestMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return err
	}

	s3Bucket := util.GetEnvString("AWS_BUCKET", "fablemap")
	rawLoader := s3.NewS3Loader(s3Client, s3Bucket)
	docs := make([]loader.Document, 0, len(data.Files))
	for _, f := range data.Files {
		docs = append(docs, loader.Document{
			ID:          f.RecordID,
			Name:        f.Name,
			ContentType: f.ContentType,
			Key:         f.Key,
			Loader:      loaderForFile(f.Name, rawLoader),
		})
	}

	engine := graph.NewEngine(graph.NewEngineParams{
		Client:      aiClient,
		ChunkSize:   int(util.GetEnvNumeric("CHUNK_SIZE", 40000)),
		Concurrency: int(util.GetEnvNumeric("PARALLEL_AI_REQUESTS", 5)),
		MaxRetries:  int(util.GetEnvNumeric("MAX_RETRIES", 3)),
	})

	progress := func(message string) {
		logger.Info("[Queue][Ingest] "+message, "owner", data.OwnerID)
		body, err := json.Marshal(ProgressMsg{
			OwnerID:   data.OwnerID,
			Message:   message,
			Timestamp: time.Now(),
		})
		if err != nil {
			return
		}
		if err := PublishTopic(ch, "progress."+data.OwnerID, body); err != nil {
			logger.Warn("[Queue][Ingest] Failed to publish progress", "owner", data.OwnerID, "err", err)
		}
	}

	store := storepgx.NewLoreStore(conn)
	report, err := engine.Run(ctx, store, data.OwnerID, docs, progress)
	if err != nil {
		return err
	}

	if report.Status == graph.RunPartial {
		logger.Warn(
			"[Queue][Ingest] Run finished with failures",
			"owner", data.OwnerID,
			"failed_units", report.FailedUnits,
			"failed_documents", len(report.FailedDocuments),
		)
	}
	return nil
}

// loaderForFile picks the text loader matching the file type. Unknown
// extensions are read as plain text.
func loaderForFile(name string, raw loader.DocumentLoader) loader.DocumentLoader {
	switch loader.Ext(name) {
	case "epub":
		return epub.NewEpubLoader(raw)
	case "html", "htm":
		return html.NewHTMLLoader(raw)
	case "docx":
		return doc.NewDocLoader(raw)
	default:
		return raw
	}
}
