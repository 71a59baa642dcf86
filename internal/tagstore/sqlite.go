package tagstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// SQLiteStore persists the tag hierarchy in a SQLite database. Folder and
// tag rows are keyed by (provider, path); the UNIQUE constraint is what
// turns a lost race with an external writer into DuplicateEntityError.
type SQLiteStore struct {
	db       *sql.DB
	provider string
}

// OpenSQLite opens or creates the database at dbPath and initializes the
// schema. All operations are scoped to the given provider namespace.
func OpenSQLite(dbPath, provider string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &SQLiteStore{db: db, provider: provider}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS folders (
		folder_id INTEGER PRIMARY KEY AUTOINCREMENT,
		provider TEXT NOT NULL,
		path TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(provider, path)
	);

	CREATE TABLE IF NOT EXISTS tags (
		tag_id INTEGER PRIMARY KEY AUTOINCREMENT,
		provider TEXT NOT NULL,
		path TEXT NOT NULL,
		source TEXT NOT NULL,
		data_type TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(provider, path)
	);

	CREATE INDEX IF NOT EXISTS idx_folders_path ON folders(provider, path);
	CREATE INDEX IF NOT EXISTS idx_tags_path ON tags(provider, path);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Exists(ctx context.Context, path string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM (
			SELECT 1 FROM folders WHERE provider = ? AND path = ?
			UNION ALL
			SELECT 1 FROM tags WHERE provider = ? AND path = ?
		)
	`, s.provider, path, s.provider, path).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check existence of %s: %w", path, err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) Snapshot(ctx context.Context, root string) (*Snapshot, error) {
	snap := NewSnapshot()

	collect := func(table string, into map[string]struct{}) error {
		rows, err := s.db.QueryContext(ctx,
			`SELECT path FROM `+table+` WHERE provider = ? AND (path = ? OR path LIKE ? || '/%')`,
			s.provider, root, root)
		if err != nil {
			return fmt.Errorf("failed to snapshot %s: %w", table, err)
		}
		defer rows.Close()

		for rows.Next() {
			var p string
			if err := rows.Scan(&p); err != nil {
				return fmt.Errorf("failed to scan %s path: %w", table, err)
			}
			into[p] = struct{}{}
		}
		return rows.Err()
	}

	if err := collect("folders", snap.Folders); err != nil {
		return nil, err
	}
	if err := collect("tags", snap.Tags); err != nil {
		return nil, err
	}

	logrus.Debugf("Snapshot under %q: %d folders, %d tags", root, len(snap.Folders), len(snap.Tags))
	return snap, nil
}

func (s *SQLiteStore) CreateFolders(ctx context.Context, paths []string) ([]ItemResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin folder batch: %w", err)
	}

	results := make([]ItemResult, 0, len(paths))
	for _, p := range paths {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO folders (provider, path) VALUES (?, ?)`,
			s.provider, p)
		results = append(results, ItemResult{Path: p, Err: mapInsertErr(p, err)})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit folder batch: %w", err)
	}
	return results, nil
}

func (s *SQLiteStore) CreateTags(ctx context.Context, tags []TagConfig) ([]ItemResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tag batch: %w", err)
	}

	results := make([]ItemResult, 0, len(tags))
	for _, t := range tags {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO tags (provider, path, source, data_type) VALUES (?, ?, ?, ?)`,
			s.provider, t.Path, t.Source, t.DataType)
		results = append(results, ItemResult{Path: t.Path, Err: mapInsertErr(t.Path, err)})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit tag batch: %w", err)
	}
	return results, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func mapInsertErr(path string, err error) error {
	if err == nil {
		return nil
	}
	var serr sqlite3.Error
	if errors.As(err, &serr) && serr.Code == sqlite3.ErrConstraint {
		return &DuplicateEntityError{Path: path}
	}
	return fmt.Errorf("failed to create %s: %w", path, err)
}
