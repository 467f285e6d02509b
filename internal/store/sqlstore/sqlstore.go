package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/i474232898/weather-dashboard/internal/models"
	"github.com/i474232898/weather-dashboard/internal/store"
)

// DBType represents the type of database.
type DBType string

const (
	SQLite   DBType = "sqlite"
	Postgres DBType = "postgres"
)

// SQLStore implements store.Store for SQLite and PostgreSQL.
type SQLStore struct {
	db     *sql.DB
	dbType DBType
}

var _ store.Store = (*SQLStore)(nil)

// New opens the database for driver ("sqlite" or "postgres"), verifies the
// connection and creates the schema if needed. For SQLite, connStr is a file path.
func New(driver, connStr string) (*SQLStore, error) {
	dbType := DBType(driver)

	var dsn string
	switch dbType {
	case SQLite:
		if dir := filepath.Dir(connStr); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_time_format=sqlite", connStr)
	case Postgres:
		dsn = connStr
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if dbType == SQLite {
		// One writer at a time; avoids SQLITE_BUSY under concurrent requests.
		db.SetMaxOpenConns(1)
	}

	s := &SQLStore{db: db, dbType: dbType}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// rebind converts ? placeholders to $1, $2, etc. for PostgreSQL.
func (s *SQLStore) rebind(query string) string {
	if s.dbType == SQLite {
		return query
	}
	var result strings.Builder
	argNum := 1
	for _, c := range query {
		if c == '?' {
			result.WriteString(fmt.Sprintf("$%d", argNum))
			argNum++
		} else {
			result.WriteRune(c)
		}
	}
	return result.String()
}

func (s *SQLStore) initSchema() error {
	idCol, tsType := "INTEGER PRIMARY KEY AUTOINCREMENT", "DATETIME"
	if s.dbType == Postgres {
		idCol, tsType = "BIGSERIAL PRIMARY KEY", "TIMESTAMPTZ"
	}

	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS history (
			id %s,
			city TEXT NOT NULL,
			weather_description TEXT NOT NULL DEFAULT '',
			searched_at %s NOT NULL
		)`, idCol, tsType),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS notes (
			id %s,
			city TEXT NOT NULL,
			city_key TEXT NOT NULL,
			note TEXT NOT NULL,
			created_at %s NOT NULL
		)`, idCol, tsType),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS city_photos (
			id %s,
			city TEXT NOT NULL,
			city_key TEXT NOT NULL,
			blob_key TEXT NOT NULL,
			image_url TEXT NOT NULL,
			uploaded_at %s NOT NULL
		)`, idCol, tsType),
		`CREATE INDEX IF NOT EXISTS idx_notes_city ON notes (city_key)`,
		`CREATE INDEX IF NOT EXISTS idx_city_photos_city ON city_photos (city_key)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func now() time.Time {
	return time.Now().UTC()
}

// History functions
func (s *SQLStore) AddHistory(ctx context.Context, city, description string) (models.HistoryEntry, error) {
	var e models.HistoryEntry
	err := s.db.QueryRowContext(ctx, s.rebind(
		`INSERT INTO history (city, weather_description, searched_at) VALUES (?, ?, ?)
		 RETURNING id, city, weather_description, searched_at`),
		city, description, now(),
	).Scan(&e.ID, &e.City, &e.Description, scanTime(&e.SearchedAt))
	return e, err
}

func (s *SQLStore) ListHistory(ctx context.Context) ([]models.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, city, weather_description, searched_at FROM history ORDER BY searched_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.HistoryEntry, 0)
	for rows.Next() {
		var e models.HistoryEntry
		if err := rows.Scan(&e.ID, &e.City, &e.Description, scanTime(&e.SearchedAt)); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteHistory(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "history", id)
}

// Note functions
func (s *SQLStore) AddNote(ctx context.Context, city, text string) (models.Note, error) {
	var n models.Note
	err := s.db.QueryRowContext(ctx, s.rebind(
		`INSERT INTO notes (city, city_key, note, created_at) VALUES (?, ?, ?, ?)
		 RETURNING id, city, note, created_at`),
		city, store.CityKey(city), text, now(),
	).Scan(&n.ID, &n.City, &n.Text, scanTime(&n.CreatedAt))
	return n, err
}

func (s *SQLStore) ListNotes(ctx context.Context) ([]models.Note, error) {
	return s.queryNotes(ctx, `SELECT id, city, note, created_at FROM notes ORDER BY city ASC, created_at DESC, id DESC`)
}

func (s *SQLStore) ListCityNotes(ctx context.Context, city string) ([]models.Note, error) {
	return s.queryNotes(ctx, s.rebind(
		`SELECT id, city, note, created_at FROM notes WHERE city_key = ? ORDER BY created_at DESC, id DESC`), store.CityKey(city))
}

func (s *SQLStore) queryNotes(ctx context.Context, query string, args ...any) ([]models.Note, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Note, 0)
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.City, &n.Text, scanTime(&n.CreatedAt)); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateNote(ctx context.Context, id int64, text string) (models.Note, error) {
	var n models.Note
	err := s.db.QueryRowContext(ctx, s.rebind(
		`UPDATE notes SET note = ? WHERE id = ? RETURNING id, city, note, created_at`),
		text, id,
	).Scan(&n.ID, &n.City, &n.Text, scanTime(&n.CreatedAt))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Note{}, store.ErrNotFound
	}
	return n, err
}

func (s *SQLStore) DeleteNote(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "notes", id)
}

// Photo functions
func (s *SQLStore) AddPhoto(ctx context.Context, city, blobKey, imageURL string) (models.Photo, error) {
	var p models.Photo
	err := s.db.QueryRowContext(ctx, s.rebind(
		`INSERT INTO city_photos (city, city_key, blob_key, image_url, uploaded_at) VALUES (?, ?, ?, ?, ?)
		 RETURNING id, city, blob_key, image_url, uploaded_at`),
		city, store.CityKey(city), blobKey, imageURL, now(),
	).Scan(&p.ID, &p.City, &p.BlobKey, &p.ImageURL, scanTime(&p.UploadedAt))
	return p, err
}

func (s *SQLStore) ListCityPhotos(ctx context.Context, city string) ([]models.Photo, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT id, city, blob_key, image_url, uploaded_at FROM city_photos
		 WHERE city_key = ? ORDER BY uploaded_at DESC, id DESC`), store.CityKey(city))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Photo, 0)
	for rows.Next() {
		var p models.Photo
		if err := rows.Scan(&p.ID, &p.City, &p.BlobKey, &p.ImageURL, scanTime(&p.UploadedAt)); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetPhoto(ctx context.Context, id int64) (models.Photo, error) {
	var p models.Photo
	err := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT id, city, blob_key, image_url, uploaded_at FROM city_photos WHERE id = ?`), id,
	).Scan(&p.ID, &p.City, &p.BlobKey, &p.ImageURL, scanTime(&p.UploadedAt))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Photo{}, store.ErrNotFound
	}
	return p, err
}

func (s *SQLStore) DeletePhoto(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "city_photos", id)
}

func (s *SQLStore) PhotoBlobKeys(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT blob_key FROM city_photos`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys[k] = struct{}{}
	}
	return keys, rows.Err()
}

// deleteByID removes one row and reports store.ErrNotFound when nothing matched.
// table is always a package constant, never user input.
func (s *SQLStore) deleteByID(ctx context.Context, table string, id int64) error {
	result, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM "+table+" WHERE id = ?"), id)
	if err != nil {
		return err
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
