package sqlitevec

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/paradise-voice/travel-knowledge/internal/core/domain"
)

// Store is an embedded single-file backend. Vectors live as little-endian
// BLOBs; similarity search is brute force over one namespace, which is fine
// at personal-archive scale. SQLite serializes writers itself, so the store
// needs no locking of its own.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	// Brute-force scans read whole namespaces; one connection avoids
	// SQLITE_BUSY churn under concurrent ingests.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS travel_chunks (
	id TEXT PRIMARY KEY,
	namespace TEXT NOT NULL,
	embedding BLOB NOT NULL,
	text TEXT NOT NULL,
	destination TEXT NOT NULL,
	section TEXT NOT NULL,
	document_title TEXT NOT NULL,
	source_file TEXT NOT NULL,
	chunk_index INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_travel_chunks_namespace ON travel_chunks(namespace);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, namespace string, points []domain.VectorPoint) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapStoreError("begin upsert tx", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const query = `
INSERT OR REPLACE INTO travel_chunks (
	id, namespace, embedding, text, destination, section, document_title, source_file, chunk_index
) VALUES (?,?,?,?,?,?,?,?,?)
`
	for _, p := range points {
		_, err := tx.ExecContext(ctx, query,
			p.ID, namespace, encodeVector(p.Vector),
			p.Chunk.Text, p.Chunk.Destination, string(p.Chunk.Section),
			p.Chunk.DocumentTitle, p.Chunk.SourceFile, p.Chunk.Index,
		)
		if err != nil {
			return wrapStoreError("upsert chunk", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return wrapStoreError("commit upsert tx", err)
	}
	return nil
}

func (s *Store) Query(
	ctx context.Context,
	namespace string,
	vector []float32,
	topK int,
	filter domain.MetadataFilter,
) ([]domain.RetrievedChunk, error) {
	if topK <= 0 {
		return nil, nil
	}
	where, args := buildWhere(namespace, filter)

	query := fmt.Sprintf(`
SELECT embedding, text, destination, section, document_title, source_file, chunk_index
FROM travel_chunks
WHERE %s
`, where)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapStoreError("query chunks", err)
	}
	defer rows.Close()

	var out []domain.RetrievedChunk
	for rows.Next() {
		var blob []byte
		var rc domain.RetrievedChunk
		var section string
		if err := rows.Scan(
			&blob, &rc.Text, &rc.Destination, &section,
			&rc.DocumentTitle, &rc.SourceFile, &rc.Index,
		); err != nil {
			return nil, wrapStoreError("scan chunk row", err)
		}
		stored, err := decodeVector(blob)
		if err != nil {
			return nil, wrapStoreError("decode embedding", err)
		}
		rc.Section = domain.Section(section)
		rc.Namespace = namespace
		rc.Score = cosineSimilarity(vector, stored)
		out = append(out, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStoreError("iterate chunk rows", err)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

func (s *Store) Usage(ctx context.Context) (domain.StorageUsage, error) {
	var usage domain.StorageUsage
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM travel_chunks`).Scan(&usage.Vectors); err != nil {
		return domain.StorageUsage{}, wrapStoreError("count chunks", err)
	}

	var pageCount, pageSize int64
	if err := s.db.QueryRowContext(ctx, `PRAGMA page_count`).Scan(&pageCount); err != nil {
		return domain.StorageUsage{}, wrapStoreError("read page count", err)
	}
	if err := s.db.QueryRowContext(ctx, `PRAGMA page_size`).Scan(&pageSize); err != nil {
		return domain.StorageUsage{}, wrapStoreError("read page size", err)
	}
	usage.Bytes = pageCount * pageSize
	return usage, nil
}

func buildWhere(namespace string, filter domain.MetadataFilter) (string, []any) {
	clauses := []string{"namespace = ?"}
	args := []any{namespace}

	for _, cond := range filter.Conditions {
		column, ok := filterColumns[cond.Field]
		if !ok {
			clauses = append(clauses, "0")
			continue
		}
		if len(cond.OneOf) > 0 {
			placeholders := strings.TrimSuffix(strings.Repeat("?,", len(cond.OneOf)), ",")
			clauses = append(clauses, fmt.Sprintf("%s IN (%s)", column, placeholders))
			for _, v := range cond.OneOf {
				args = append(args, v)
			}
			continue
		}
		clauses = append(clauses, column+" = ?")
		args = append(args, cond.Equals)
	}
	return strings.Join(clauses, " AND "), args
}

var filterColumns = map[string]string{
	"section":        "section",
	"destination":    "destination",
	"source_file":    "source_file",
	"document_title": "document_title",
}

func wrapStoreError(operation string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.WrapError(domain.ErrTimeout, operation, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return domain.WrapError(domain.ErrVectorStore, operation, err)
}
