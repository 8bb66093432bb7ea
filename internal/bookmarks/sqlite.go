package bookmarks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/MrSnakeDoc/tabsaver/internal/domain"
)

const currentSchemaVersion = 1

// SQLiteStore implements Store on a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Option customises a SQLiteStore.
type Option func(*SQLiteStore)

// WithClock overrides the clock used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *SQLiteStore) { s.now = now }
}

// NewSQLiteStore opens (and migrates) the database at path.
func NewSQLiteStore(path string, opts ...Option) (*SQLiteStore, error) {
	// Ensure directory exists
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	// One connection: pragmas stay applied and writes are serialized.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	s := &SQLiteStore{db: db, path: path, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate store: %w", err)
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	return nil
}

// migrateV1 creates the node tree and seeds the default root folder.
func (s *SQLiteStore) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS nodes (
			id TEXT PRIMARY KEY NOT NULL,
			parent_id TEXT,
			type TEXT NOT NULL CHECK (type IN ('folder', 'bookmark')),
			title TEXT NOT NULL,
			url TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			FOREIGN KEY (parent_id) REFERENCES nodes(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_nodes_parent_id ON nodes(parent_id);
		CREATE INDEX IF NOT EXISTS idx_nodes_title ON nodes(title);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	if _, err := s.db.Exec(
		`INSERT OR IGNORE INTO nodes (id, parent_id, type, title, url, created_at)
		 VALUES (?, NULL, 'folder', 'Other Bookmarks', '', ?)`,
		RootID, s.now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return err
	}

	_, err := s.db.Exec("INSERT OR REPLACE INTO schema_version (version) VALUES (?)", currentSchemaVersion)
	return err
}

const nodeColumns = "id, parent_id, type, title, url, created_at"

// Search returns nodes whose title matches exactly, in insertion order.
// The root folder is never returned.
func (s *SQLiteStore) Search(ctx context.Context, title string) ([]domain.Node, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+nodeColumns+`
		FROM nodes
		WHERE title = ? AND id != ?
		ORDER BY rowid
	`, title, RootID)
	if err != nil {
		return nil, fmt.Errorf("failed to search bookmarks: %w", err)
	}
	return scanNodes(rows)
}

// Get returns the node with the given id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (domain.Node, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+nodeColumns+` FROM nodes WHERE id = ?`, id)
	n, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Node{}, fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Node{}, fmt.Errorf("failed to get node: %w", err)
	}
	return n, nil
}

// Children returns the direct children of parentID in insertion order.
func (s *SQLiteStore) Children(ctx context.Context, parentID string) ([]domain.Node, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+nodeColumns+`
		FROM nodes
		WHERE parent_id = ?
		ORDER BY rowid
	`, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	return scanNodes(rows)
}

// Create inserts a folder or bookmark entry under its parent.
func (s *SQLiteStore) Create(ctx context.Context, params CreateParams) (domain.Node, error) {
	nodeType := params.Type
	if nodeType == "" {
		nodeType = domain.NodeBookmark
		if params.URL == "" {
			nodeType = domain.NodeFolder
		}
	}
	if nodeType == domain.NodeBookmark && params.URL == "" {
		return domain.Node{}, errors.New("bookmark entries require a url")
	}

	parentID := params.ParentID
	if parentID == "" {
		parentID = RootID
	}

	n := domain.Node{
		ID:        uuid.New().String(),
		ParentID:  parentID,
		Type:      nodeType,
		Title:     params.Title,
		URL:       params.URL,
		CreatedAt: s.now().UTC(),
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO nodes (`+nodeColumns+`)
		SELECT ?, ?, ?, ?, ?, ?
		WHERE EXISTS (SELECT 1 FROM nodes WHERE id = ? AND type = 'folder')
	`, n.ID, n.ParentID, string(n.Type), n.Title, n.URL, n.CreatedAt.Format(time.RFC3339Nano), parentID)
	if err != nil {
		return domain.Node{}, fmt.Errorf("failed to create %s: %w", nodeType, err)
	}

	// The guarded insert writes nothing when the parent folder is missing.
	if affected, err := res.RowsAffected(); err != nil || affected == 0 {
		return domain.Node{}, fmt.Errorf("parent folder %s: %w", parentID, domain.ErrNotFound)
	}

	return n, nil
}

// RemoveTree deletes a node; foreign keys cascade the delete to its subtree.
func (s *SQLiteStore) RemoveTree(ctx context.Context, id string) error {
	if id == RootID {
		return ErrRootFolder
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM nodes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to remove tree: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to remove tree: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNode(row rowScanner) (domain.Node, error) {
	var n domain.Node
	var parentID sql.NullString
	var nodeType string
	var createdAt string

	if err := row.Scan(&n.ID, &parentID, &nodeType, &n.Title, &n.URL, &createdAt); err != nil {
		return domain.Node{}, err
	}

	if parentID.Valid {
		n.ParentID = parentID.String
	}
	n.Type = domain.NodeType(nodeType)
	n.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)

	return n, nil
}

func scanNodes(rows *sql.Rows) ([]domain.Node, error) {
	defer rows.Close()

	nodes := []domain.Node{}
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return nodes, nil
}
