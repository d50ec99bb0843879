package middleware

import (
	"github.com/MicahParks/keyfunc/v3"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/fablemap/fablemap/internal/store"
	storepgx "github.com/fablemap/fablemap/internal/store/pgx"
)

// AppUser is the authenticated caller. OwnerID keys everything: each
// owner has their own knowledge graph and source records.
type AppUser struct {
	OwnerID string
}

type App struct {
	DBConn        *pgxpool.Pool
	Store         store.Store
	Queue         *amqp091.Channel
	Key           *keyfunc.Keyfunc
	S3            *s3.Client
	S3Bucket      string
	MasterAPIKey  string
	MasterOwnerID string
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

func AppContextMiddleware(
	db *pgxpool.Pool,
	queue *amqp091.Channel,
	key *keyfunc.Keyfunc,
	s3Client *s3.Client,
	s3Bucket string,
	masterAPIKey string,
	masterOwnerID string,
) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			app := &App{
				DBConn:        db,
				Store:         storepgx.NewLoreStore(db),
				Queue:         queue,
				Key:           key,
				S3:            s3Client,
				S3Bucket:      s3Bucket,
				MasterAPIKey:  masterAPIKey,
				MasterOwnerID: masterOwnerID,
			}
			cc := &AppContext{c, app, nil}
			return next(cc)
		}
	}
}
