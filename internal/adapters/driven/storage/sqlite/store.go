package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/ragkit/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// index_info keys.
const (
	InfoMetric         = "metric"
	InfoDimensions     = "dimensions"
	InfoCount          = "count"
	InfoEmbeddingModel = "embedding_model"
	InfoBuiltAt        = "built_at"
)

// Errors reported while reading a metadata artifact.
var (
	// ErrPositionGap indicates stored positions are not exactly 0..n-1.
	ErrPositionGap = errors.New("record positions are not contiguous")

	// ErrSchemaVersion indicates the database was not written by this schema.
	ErrSchemaVersion = errors.New("unsupported metadata schema")
)

// Store is a metadata artifact backed by a single SQLite file.
type Store struct {
	db   *sqlx.DB
	path string
}

// recordRow is the records table row.
type recordRow struct {
	Position      int    `db:"position"`
	ChunkID       string `db:"chunk_id"`
	DocumentID    string `db:"document_id"`
	Source        string `db:"source"`
	Text          string `db:"text"`
	ChunkPosition int    `db:"chunk_position"`
	Metadata      string `db:"metadata"`
}

type infoRow struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

// Create makes a new, empty metadata database at path, replacing any file there.
func Create(ctx context.Context, path string) (*Store, error) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("removing stale database: %w", err)
	}

	// Rollback journal rather than WAL: the file is renamed into place and
	// must be self-contained once closed.
	db, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(DELETE)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(ctx, migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Open opens an existing metadata database read-only. It never creates or
// migrates the schema: a database older or newer than this build is rejected.
// A missing file is fs.ErrNotExist.
func Open(ctx context.Context, path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	db, err := sqlx.Open("sqlite", readOnlyDSN(path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: path}
	want, err := latestVersion(migrations.FS)
	if err != nil {
		db.Close()
		return nil, err
	}
	got, err := s.SchemaVersion(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("reading schema version: %w", err)
	}
	if got != want {
		db.Close()
		return nil, fmt.Errorf("%w: schema version %d, expected %d", ErrSchemaVersion, got, want)
	}
	return s, nil
}

// readOnlyDSN builds a URI filename opened with mode=ro and query_only.
func readOnlyDSN(path string) string {
	escaped := strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23").Replace(filepath.ToSlash(path))
	return "file:" + escaped + "?mode=ro&_pragma=busy_timeout(5000)&_pragma=query_only(1)"
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(ctx context.Context, fsys fs.FS) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	ups, err := upMigrations(fsys)
	if err != nil {
		return err
	}
	for _, m := range ups {
		if m.version <= currentVersion {
			continue
		}
		content, err := fs.ReadFile(fsys, m.name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", m.name, err)
		}
		if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", m.name, err)
		}
	}
	return nil
}

type migration struct {
	version int
	name    string
}

// upMigrations lists the NNN_*.up.sql files in version order.
func upMigrations(fsys fs.FS) ([]migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}

	var ups []migration
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}
		var version int
		if _, err := fmt.Sscanf(entry.Name(), "%d_", &version); err != nil {
			continue
		}
		ups = append(ups, migration{version: version, name: entry.Name()})
	}
	sort.Slice(ups, func(i, j int) bool { return ups[i].version < ups[j].version })
	return ups, nil
}

// latestVersion is the schema version a fully migrated database reports.
func latestVersion(fsys fs.FS) (int, error) {
	ups, err := upMigrations(fsys)
	if err != nil {
		return 0, err
	}
	if len(ups) == 0 {
		return 0, errors.New("no migrations embedded")
	}
	return ups[len(ups)-1].version, nil
}

// SchemaVersion returns the highest applied migration.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := s.db.GetContext(ctx, &v, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	return v, err
}

// WriteIndex replaces the stored index with info and records in one transaction.
// Record i is stored at position i.
func (s *Store) WriteIndex(ctx context.Context, info domain.IndexInfo, records []domain.RecordMetadata) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM records"); err != nil {
		return fmt.Errorf("clearing records: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM index_info"); err != nil {
		return fmt.Errorf("clearing index info: %w", err)
	}

	stmt, err := tx.PrepareNamedContext(ctx, `
		INSERT INTO records (position, chunk_id, document_id, source, text, chunk_position, metadata)
		VALUES (:position, :chunk_id, :document_id, :source, :text, :chunk_position, :metadata)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i := range records {
		row, err := toRow(i, records[i])
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, row); err != nil {
			return fmt.Errorf("inserting record %d: %w", i, err)
		}
	}

	for _, kv := range infoRows(info, len(records)) {
		if _, err := tx.NamedExecContext(ctx, "INSERT INTO index_info (key, value) VALUES (:key, :value)", kv); err != nil {
			return fmt.Errorf("inserting index info %s: %w", kv.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func toRow(pos int, r domain.RecordMetadata) (recordRow, error) {
	meta := "{}"
	if len(r.Metadata) > 0 {
		b, err := json.Marshal(r.Metadata)
		if err != nil {
			return recordRow{}, fmt.Errorf("marshalling metadata of record %d: %w", pos, err)
		}
		meta = string(b)
	}
	return recordRow{
		Position:      pos,
		ChunkID:       r.ChunkID,
		DocumentID:    r.DocumentID,
		Source:        r.Source,
		Text:          r.Text,
		ChunkPosition: r.Position,
		Metadata:      meta,
	}, nil
}

func infoRows(info domain.IndexInfo, count int) []infoRow {
	rows := []infoRow{
		{Key: InfoMetric, Value: info.Metric.String()},
		{Key: InfoDimensions, Value: strconv.Itoa(info.Dimensions)},
		{Key: InfoCount, Value: strconv.Itoa(count)},
		{Key: InfoEmbeddingModel, Value: info.EmbeddingModel},
	}
	if !info.BuiltAt.IsZero() {
		rows = append(rows, infoRow{Key: InfoBuiltAt, Value: info.BuiltAt.UTC().Format(time.RFC3339)})
	}
	return rows
}

// ReadInfo returns the stored index facts. State and Dir are left for the caller.
func (s *Store) ReadInfo(ctx context.Context) (domain.IndexInfo, error) {
	var rows []infoRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT key, value FROM index_info"); err != nil {
		return domain.IndexInfo{}, fmt.Errorf("reading index info: %w", err)
	}

	values := make(map[string]string, len(rows))
	for _, r := range rows {
		values[r.Key] = r.Value
	}

	var info domain.IndexInfo
	for _, key := range []string{InfoMetric, InfoDimensions, InfoCount} {
		if _, ok := values[key]; !ok {
			return domain.IndexInfo{}, fmt.Errorf("index info %q missing", key)
		}
	}

	info.Metric = domain.DistanceMetric(values[InfoMetric])
	if !info.Metric.IsValid() {
		return domain.IndexInfo{}, fmt.Errorf("index info metric %q invalid", values[InfoMetric])
	}
	var err error
	if info.Dimensions, err = strconv.Atoi(values[InfoDimensions]); err != nil {
		return domain.IndexInfo{}, fmt.Errorf("index info dimensions: %w", err)
	}
	if info.Count, err = strconv.Atoi(values[InfoCount]); err != nil {
		return domain.IndexInfo{}, fmt.Errorf("index info count: %w", err)
	}
	info.EmbeddingModel = values[InfoEmbeddingModel]
	if v := values[InfoBuiltAt]; v != "" {
		if info.BuiltAt, err = time.Parse(time.RFC3339, v); err != nil {
			return domain.IndexInfo{}, fmt.Errorf("index info built_at: %w", err)
		}
	}
	return info, nil
}

// ReadRecords returns all records ordered by position.
// Returns ErrPositionGap unless positions are exactly 0..n-1.
func (s *Store) ReadRecords(ctx context.Context) ([]domain.RecordMetadata, error) {
	var rows []recordRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT position, chunk_id, document_id, source, text, chunk_position, metadata
		FROM records ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}

	records := make([]domain.RecordMetadata, len(rows))
	for i, row := range rows {
		if row.Position != i {
			return nil, fmt.Errorf("%w: expected position %d, found %d", ErrPositionGap, i, row.Position)
		}
		meta, err := decodeMetadata(row.Metadata)
		if err != nil {
			return nil, fmt.Errorf("decoding metadata at position %d: %w", i, err)
		}
		records[i] = domain.RecordMetadata{
			ChunkID:    row.ChunkID,
			DocumentID: row.DocumentID,
			Source:     row.Source,
			Text:       row.Text,
			Position:   row.ChunkPosition,
			Metadata:   meta,
		}
	}
	return records, nil
}

// decodeMetadata reverses toRow's JSON encoding. Integral numbers come back as
// int, other numbers as float64, so loader metadata such as row and page
// numbers keeps its type.
func decodeMetadata(raw string) (map[string]any, error) {
	if raw == "" || raw == "{}" {
		return nil, nil
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var meta map[string]any
	if err := dec.Decode(&meta); err != nil {
		return nil, err
	}
	for k, v := range meta {
		meta[k] = restoreNumbers(v)
	}
	return meta, nil
}

func restoreNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if n, err := strconv.ParseInt(t.String(), 10, 0); err == nil {
			return int(n)
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		for k, e := range t {
			t[k] = restoreNumbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = restoreNumbers(e)
		}
		return t
	default:
		return v
	}
}
