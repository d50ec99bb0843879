package pgx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fablemap/fablemap/internal/store"
	"github.com/fablemap/fablemap/pkg/logger"
	"github.com/fablemap/fablemap/pkg/lore"
)

var _ store.Store = (*LoreStore)(nil)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	Begin(ctx context.Context) (pgxv5.Tx, error)
}

// LoreStore implements the storage interface on PostgreSQL. Graphs are
// stored as one JSONB document per owner, source records as rows.
type LoreStore struct {
	conn pgxIConn
}

// NewLoreStore creates a LoreStore using an existing database
// connection or pool.
func NewLoreStore(conn pgxIConn) *LoreStore {
	return &LoreStore{conn: conn}
}

func (s *LoreStore) LoadGraph(ctx context.Context, ownerID string) (*lore.Graph, error) {
	var data []byte
	err := s.conn.QueryRow(ctx,
		`SELECT data FROM graphs WHERE owner_id = $1`,
		ownerID,
	).Scan(&data)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return lore.NewGraph(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load graph: %w", err)
	}

	g := lore.NewGraph()
	if err := json.Unmarshal(data, g); err != nil {
		return nil, fmt.Errorf("failed to decode graph: %w", err)
	}
	g.Normalize()
	return g, nil
}

func (s *LoreStore) SaveGraph(ctx context.Context, ownerID string, g *lore.Graph) error {
	g.Normalize()
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to encode graph: %w", err)
	}

	logger.Debug("[Store][SaveGraph] Upserting graph", "owner", ownerID, "entities", g.Len())
	_, err = s.conn.Exec(ctx,
		`INSERT INTO graphs (owner_id, data, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (owner_id)
		 DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		ownerID, data,
	)
	if err != nil {
		return fmt.Errorf("failed to save graph: %w", err)
	}
	return nil
}

func (s *LoreStore) AppendSourceRecords(ctx context.Context, ownerID string, records []lore.SourceRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, r := range records {
		_, err := tx.Exec(ctx,
			`INSERT INTO source_records (id, owner_id, name, content_type, status, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			r.ID, ownerID, r.Name, r.ContentType, r.Status, r.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert source record %s: %w", r.ID, err)
		}
	}
	return tx.Commit(ctx)
}

func (s *LoreStore) ListSourceRecords(ctx context.Context, ownerID string) ([]lore.SourceRecord, error) {
	rows, err := s.conn.Query(ctx,
		`SELECT id, name, content_type, status, created_at
		 FROM source_records
		 WHERE owner_id = $1
		 ORDER BY created_at, id`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list source records: %w", err)
	}
	defer rows.Close()

	records := make([]lore.SourceRecord, 0)
	for rows.Next() {
		var r lore.SourceRecord
		if err := rows.Scan(&r.ID, &r.Name, &r.ContentType, &r.Status, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *LoreStore) UpdateSourceRecordStatus(ctx context.Context, ownerID, recordID string, status lore.SourceStatus) error {
	tag, err := s.conn.Exec(ctx,
		`UPDATE source_records SET status = $1 WHERE id = $2 AND owner_id = $3`,
		status, recordID, ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update source record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("source record %s not found", recordID)
	}
	return nil
}

func (s *LoreStore) ResetOwner(ctx context.Context, ownerID string) error {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM graphs WHERE owner_id = $1`, ownerID); err != nil {
		return fmt.Errorf("failed to delete graph: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM source_records WHERE owner_id = $1`, ownerID); err != nil {
		return fmt.Errorf("failed to delete source records: %w", err)
	}
	return tx.Commit(ctx)
}
