package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"studio/internal/models"
)

const (
	// DriverCGO is the mattn/go-sqlite3 driver.
	DriverCGO = "sqlite3"
	// DriverPure is the modernc.org/sqlite driver, usable without cgo.
	DriverPure = "sqlite"
)

var (
	// ErrNotFound is returned when a content item does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalid is returned for input the store refuses to persist.
	ErrInvalid = errors.New("invalid input")
)

// Store wraps access to the SQLite database and exposes high level helpers.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open initializes a new SQLite store and runs the required migrations.
func Open(driver, dbPath string, logger *slog.Logger) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("empty database path")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if driver == "" {
		driver = DriverCGO
	}

	if err := ensureDir(dbPath); err != nil {
		return nil, err
	}

	var dsn string
	switch driver {
	case DriverCGO:
		dsn = fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=ON", dbPath)
	case DriverPure:
		dsn = dbPath
	default:
		return nil, fmt.Errorf("unsupported sqlite driver %q", driver)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	s := &Store{db: conn, logger: logger, now: func() time.Time { return time.Now().UTC() }}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	logger.Debug("sqlite store opened", slog.String("driver", driver), slog.String("path", dbPath))
	return s, nil
}

// Close releases the database resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (s *Store) migrate() error {
	stmts := []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS content_items (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            title TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            stage TEXT NOT NULL DEFAULT 'Idea',
            platform TEXT NOT NULL DEFAULT '',
            target_release_date TEXT,
            actual_release_date TEXT,
            associated_files TEXT NOT NULL DEFAULT '',
            tags TEXT NOT NULL DEFAULT '',
            position INTEGER NOT NULL DEFAULT 0,
            created_at TEXT NOT NULL,
            updated_at TEXT NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_content_items_stage ON content_items(stage, position);`,
		`CREATE TABLE IF NOT EXISTS content_history (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            content_id INTEGER NOT NULL,
            event_type TEXT NOT NULL,
            details TEXT NOT NULL DEFAULT '',
            created_at TEXT NOT NULL,
            FOREIGN KEY(content_id) REFERENCES content_items(id) ON DELETE CASCADE
        );`,
		`CREATE INDEX IF NOT EXISTS idx_content_history_item ON content_history(content_id);`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

const itemColumns = `id, title, description, stage, platform, target_release_date, actual_release_date,
        associated_files, tags, created_at, updated_at`

// ListContentItems returns every content item ordered by stage position.
func (s *Store) ListContentItems(ctx context.Context) ([]models.ContentItem, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM content_items ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("list content items: %w", err)
	}
	defer rows.Close()

	items := []models.ContentItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetContentItem fetches a single content item by id.
func (s *Store) GetContentItem(ctx context.Context, id int64) (models.ContentItem, error) {
	return getItem(ctx, s.db, id)
}

// CreateContentItem persists a new item. An empty stage defaults to Idea.
func (s *Store) CreateContentItem(ctx context.Context, input models.ContentInput) (models.ContentItem, error) {
	input, err := normalizeInput(input, models.StageIdea)
	if err != nil {
		return models.ContentItem{}, err
	}

	var id int64
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		pos, err := nextPosition(ctx, tx, input.Stage)
		if err != nil {
			return err
		}
		stamp := s.timestamp()
		res, err := tx.ExecContext(ctx, `INSERT INTO content_items(title, description, stage, platform, target_release_date,
                actual_release_date, tags, position, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			input.Title, input.Description, string(input.Stage), input.Platform,
			nullable(input.TargetReleaseDate), nullable(input.ActualReleaseDate),
			strings.Join(input.Tags, ","), pos, stamp, stamp)
		if err != nil {
			return fmt.Errorf("insert content item: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("content item id: %w", err)
		}
		return s.addHistory(ctx, tx, id, "created", formatCreatedDetails(input))
	})
	if err != nil {
		return models.ContentItem{}, err
	}
	return s.GetContentItem(ctx, id)
}

// UpdateContentStage moves an item to another stage, appending it to the
// end of that stage.
func (s *Store) UpdateContentStage(ctx context.Context, id int64, stage models.Stage) (models.ContentItem, error) {
	if !stage.Valid() {
		return models.ContentItem{}, fmt.Errorf("%w: invalid stage %q", ErrInvalid, stage)
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := getItem(ctx, tx, id)
		if err != nil {
			return err
		}
		if current.Stage == stage {
			return nil
		}
		pos, err := nextPosition(ctx, tx, stage)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE content_items SET stage = ?, position = ?, updated_at = ? WHERE id = ?`,
			string(stage), pos, s.timestamp(), id); err != nil {
			return fmt.Errorf("update content stage: %w", err)
		}
		return s.addHistory(ctx, tx, id, "stage", fmt.Sprintf("%s -> %s", current.Stage, stage))
	})
	if err != nil {
		return models.ContentItem{}, err
	}
	return s.GetContentItem(ctx, id)
}

// UpdateContentItem replaces the writable fields of an item. An empty stage
// keeps the current one.
func (s *Store) UpdateContentItem(ctx context.Context, id int64, input models.ContentInput) (models.ContentItem, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := getItem(ctx, tx, id)
		if err != nil {
			return err
		}
		input, err := normalizeInput(input, current.Stage)
		if err != nil {
			return err
		}

		pos := int64(-1)
		if input.Stage != current.Stage {
			if pos, err = nextPosition(ctx, tx, input.Stage); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, `UPDATE content_items SET title = ?, description = ?, stage = ?, platform = ?,
                target_release_date = ?, actual_release_date = ?, tags = ?,
                position = CASE WHEN ? >= 0 THEN ? ELSE position END, updated_at = ? WHERE id = ?`,
			input.Title, input.Description, string(input.Stage), input.Platform,
			nullable(input.TargetReleaseDate), nullable(input.ActualReleaseDate),
			strings.Join(input.Tags, ","), pos, pos, s.timestamp(), id); err != nil {
			return fmt.Errorf("update content item: %w", err)
		}
		return s.addHistory(ctx, tx, id, "updated", formatItemDiff(current, input))
	})
	if err != nil {
		return models.ContentItem{}, err
	}
	return s.GetContentItem(ctx, id)
}

// ListHistory returns the change log of an item, oldest first.
func (s *Store) ListHistory(ctx context.Context, id int64) ([]models.HistoryEntry, error) {
	if _, err := s.GetContentItem(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, content_id, event_type, details, created_at
        FROM content_history WHERE content_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	history := []models.HistoryEntry{}
	for rows.Next() {
		var entry models.HistoryEntry
		var created string
		if err := rows.Scan(&entry.ID, &entry.ContentID, &entry.EventType, &entry.Details, &created); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		entry.CreatedAt = parseStamp(created)
		history = append(history, entry)
	}
	return history, rows.Err()
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Store) addHistory(ctx context.Context, q querier, id int64, eventType, details string) error {
	if _, err := q.ExecContext(ctx, `INSERT INTO content_history(content_id, event_type, details, created_at) VALUES(?, ?, ?, ?)`,
		id, eventType, details, s.timestamp()); err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

func (s *Store) timestamp() string {
	return s.now().Format(time.RFC3339Nano)
}

func getItem(ctx context.Context, q querier, id int64) (models.ContentItem, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+itemColumns+` FROM content_items WHERE id = ?`, id)
	if err != nil {
		return models.ContentItem{}, fmt.Errorf("get content item: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return models.ContentItem{}, fmt.Errorf("get content item: %w", err)
		}
		return models.ContentItem{}, fmt.Errorf("content item %d: %w", id, ErrNotFound)
	}
	return scanItem(rows)
}

func nextPosition(ctx context.Context, q querier, stage models.Stage) (int64, error) {
	var position sql.NullInt64
	err := q.QueryRowContext(ctx, `SELECT MAX(position) FROM content_items WHERE stage = ?`, string(stage)).Scan(&position)
	if err != nil {
		return 0, fmt.Errorf("select position: %w", err)
	}
	if position.Valid {
		return position.Int64 + 1, nil
	}
	return 0, nil
}

func scanItem(rows *sql.Rows) (models.ContentItem, error) {
	var item models.ContentItem
	var stage, tags, created, updated string
	var target, actual sql.NullString
	if err := rows.Scan(&item.ID, &item.Title, &item.Description, &stage, &item.Platform, &target, &actual,
		&item.AssociatedFiles, &tags, &created, &updated); err != nil {
		return models.ContentItem{}, fmt.Errorf("scan content item: %w", err)
	}
	item.Stage = models.Stage(stage)
	item.TargetReleaseDate = target.String
	item.ActualReleaseDate = actual.String
	item.Tags = models.SplitTags(tags)
	item.CreatedAt = parseStamp(created)
	item.UpdatedAt = parseStamp(updated)
	return item, nil
}

func parseStamp(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func normalizeInput(input models.ContentInput, defaultStage models.Stage) (models.ContentInput, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return input, fmt.Errorf("%w: title must not be empty", ErrInvalid)
	}
	input.Description = strings.TrimSpace(input.Description)
	input.Platform = strings.TrimSpace(input.Platform)
	if input.Stage == "" {
		input.Stage = defaultStage
	}
	if !input.Stage.Valid() {
		return input, fmt.Errorf("%w: invalid stage %q", ErrInvalid, input.Stage)
	}
	for _, date := range []string{input.TargetReleaseDate, input.ActualReleaseDate} {
		if date == "" {
			continue
		}
		if _, err := time.Parse(models.DateLayout, date); err != nil {
			return input, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalid, date)
		}
	}
	input.Tags = models.NormalizeTags(input.Tags)
	return input, nil
}
