package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/simon020286/go-flow/models"
)

// SQLiteStore keeps each integration as a JSON document row.
//
// It expects an *sql.DB using a SQLite driver, for example:
//
//	import _ "modernc.org/sqlite"
//
// The store owns db and closes it on Close
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore initializes the schema in db
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS integrations (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			document TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
	)
	return err
}

func (s *SQLiteStore) UpdateOrCreate(ctx context.Context, integration *models.Integration) (*models.Integration, error) {
	res, err := prepare(integration)
	if err != nil {
		return nil, err
	}
	doc, err := encode(res)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO integrations (id, name, document, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			document = excluded.document,
			updated_at = excluded.updated_at`,
		res.ID,
		res.Name,
		string(doc),
		time.Now().UnixMilli(),
	)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*models.Integration, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM integrations WHERE id = ?`, id,
	).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrIntegrationNotFound
		}
		return nil, err
	}
	return decode([]byte(doc))
}

func (s *SQLiteStore) List(ctx context.Context) ([]*models.Integration, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT document FROM integrations ORDER BY name, id`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	res := []*models.Integration{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		integration, err := decode([]byte(doc))
		if err != nil {
			return nil, err
		}
		res = append(res, integration)
	}
	return res, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM integrations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrIntegrationNotFound
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
