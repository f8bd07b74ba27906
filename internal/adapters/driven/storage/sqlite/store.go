package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/quill/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/quill/internal/core/domain"
	"github.com/custodia-labs/quill/internal/core/ports/driven"
)

// dbFile is the database file name inside the data directory.
const dbFile = "articles.db"

// Ensure Store implements the interface.
var _ driven.ArticleStore = (*Store)(nil)

// Store is a SQLite-backed driven.ArticleStore.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the article database in dataDir.
// If dataDir is empty, defaults to ~/.quill/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".quill", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SchemaVersion returns the highest applied migration version.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	row := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&version); err != nil {
		return 0, fmt.Errorf("getting schema version: %w", err)
	}
	return version, nil
}

// migrate runs all pending up migrations, each in its own transaction.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	currentVersion, err := s.SchemaVersion(context.Background())
	if err != nil {
		return err
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_articles.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.apply(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) apply(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// ==================== Article Store ====================

// Save stores or replaces an article with its sections and sources.
func (s *Store) Save(ctx context.Context, article *domain.Article) error {
	if article == nil || article.ID == "" {
		return domain.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO articles (id, topic, refs, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			topic = excluded.topic,
			refs = excluded.refs,
			created_at = excluded.created_at
	`, article.ID, article.Topic, article.References, article.CreatedAt.UTC().UnixNano())
	if err != nil {
		return fmt.Errorf("saving article: %w", err)
	}

	if err := deleteChildren(ctx, tx, article.ID); err != nil {
		return err
	}

	for i, section := range article.Sections {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO article_sections (article_id, position, name, content) VALUES (?, ?, ?, ?)",
			article.ID, i, section.Name, section.Content); err != nil {
			return fmt.Errorf("saving section %q: %w", section.Name, err)
		}
	}
	for i, source := range article.Sources {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO article_sources (article_id, position, source) VALUES (?, ?, ?)",
			article.ID, i, source); err != nil {
			return fmt.Errorf("saving source: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing article: %w", err)
	}
	return nil
}

// Get retrieves an article by ID.
func (s *Store) Get(ctx context.Context, id string) (*domain.Article, error) {
	var article domain.Article
	var createdAt int64
	row := s.db.QueryRowContext(ctx, "SELECT id, topic, refs, created_at FROM articles WHERE id = ?", id)
	if err := row.Scan(&article.ID, &article.Topic, &article.References, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning article: %w", err)
	}
	article.CreatedAt = time.Unix(0, createdAt).UTC()

	sections, err := s.sections(ctx, id)
	if err != nil {
		return nil, err
	}
	article.Sections = sections

	sources, err := s.sources(ctx, id)
	if err != nil {
		return nil, err
	}
	article.Sources = sources

	return &article, nil
}

// List returns summaries of all stored articles, newest first.
func (s *Store) List(ctx context.Context) ([]domain.ArticleSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.topic, a.created_at,
			(SELECT COUNT(*) FROM article_sections WHERE article_id = a.id),
			(SELECT COUNT(*) FROM article_sources WHERE article_id = a.id)
		FROM articles a
		ORDER BY a.created_at DESC, a.id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}
	defer rows.Close()

	summaries := []domain.ArticleSummary{}
	for rows.Next() {
		var summary domain.ArticleSummary
		var createdAt int64
		if err := rows.Scan(&summary.ID, &summary.Topic, &createdAt, &summary.Sections, &summary.Sources); err != nil {
			return nil, fmt.Errorf("scanning article summary: %w", err)
		}
		summary.CreatedAt = time.Unix(0, createdAt).UTC()
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating articles: %w", err)
	}
	return summaries, nil
}

// Delete removes an article. Deleting a missing article is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := deleteChildren(ctx, tx, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM articles WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting article: %w", err)
	}
	return tx.Commit()
}

func (s *Store) sections(ctx context.Context, id string) ([]domain.Section, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, content FROM article_sections WHERE article_id = ? ORDER BY position", id)
	if err != nil {
		return nil, fmt.Errorf("querying sections: %w", err)
	}
	defer rows.Close()

	var sections []domain.Section //nolint:prealloc // size unknown from query
	for rows.Next() {
		var section domain.Section
		if err := rows.Scan(&section.Name, &section.Content); err != nil {
			return nil, fmt.Errorf("scanning section: %w", err)
		}
		sections = append(sections, section)
	}
	return sections, rows.Err()
}

func (s *Store) sources(ctx context.Context, id string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT source FROM article_sources WHERE article_id = ? ORDER BY position", id)
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	var sources []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var source string
		if err := rows.Scan(&source); err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}
		sources = append(sources, source)
	}
	return sources, rows.Err()
}

func deleteChildren(ctx context.Context, tx *sql.Tx, id string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM article_sections WHERE article_id = ?", id); err != nil {
		return fmt.Errorf("deleting sections: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM article_sources WHERE article_id = ?", id); err != nil {
		return fmt.Errorf("deleting sources: %w", err)
	}
	return nil
}
