package pgvector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/paradise-voice/travel-knowledge/internal/core/domain"
)

// Store keeps chunks in Postgres with the pgvector extension. Cosine
// distance (<=>) orders matches; score is 1 - distance so larger is better,
// matching the other backends.
type Store struct {
	db        *sql.DB
	dimension int
}

func NewStore(db *sql.DB, dimension int) *Store {
	return &Store{db: db, dimension: dimension}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrent service startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	ddl := fmt.Sprintf(`
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS travel_chunks (
	id TEXT PRIMARY KEY,
	namespace TEXT NOT NULL,
	embedding vector(%d) NOT NULL,
	text TEXT NOT NULL,
	destination TEXT NOT NULL,
	section TEXT NOT NULL,
	document_title TEXT NOT NULL,
	source_file TEXT NOT NULL,
	chunk_index INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_travel_chunks_namespace ON travel_chunks(namespace);
CREATE INDEX IF NOT EXISTS idx_travel_chunks_namespace_section ON travel_chunks(namespace, section);
`, s.dimension)
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
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
INSERT INTO travel_chunks (
	id, namespace, embedding, text, destination, section, document_title, source_file, chunk_index
) VALUES ($1,$2,$3::vector,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO UPDATE SET
	namespace = EXCLUDED.namespace,
	embedding = EXCLUDED.embedding,
	text = EXCLUDED.text,
	destination = EXCLUDED.destination,
	section = EXCLUDED.section,
	document_title = EXCLUDED.document_title,
	source_file = EXCLUDED.source_file,
	chunk_index = EXCLUDED.chunk_index
`
	for _, p := range points {
		_, err := tx.ExecContext(ctx, query,
			p.ID, namespace, formatVector(p.Vector),
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
	where, args := buildWhere(namespace, filter, formatVector(vector))

	query := fmt.Sprintf(`
SELECT text, destination, section, document_title, source_file, chunk_index,
	1 - (embedding <=> $1::vector) AS score
FROM travel_chunks
WHERE %s
ORDER BY embedding <=> $1::vector
LIMIT %d
`, where, topK)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapStoreError("query chunks", err)
	}
	defer rows.Close()

	var out []domain.RetrievedChunk
	for rows.Next() {
		var rc domain.RetrievedChunk
		var section string
		if err := rows.Scan(
			&rc.Text, &rc.Destination, &section, &rc.DocumentTitle,
			&rc.SourceFile, &rc.Index, &rc.Score,
		); err != nil {
			return nil, wrapStoreError("scan chunk row", err)
		}
		rc.Section = domain.Section(section)
		rc.Namespace = namespace
		out = append(out, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStoreError("iterate chunk rows", err)
	}
	return out, nil
}

func (s *Store) Usage(ctx context.Context) (domain.StorageUsage, error) {
	var usage domain.StorageUsage
	err := s.db.QueryRowContext(ctx, `
SELECT count(*), COALESCE(pg_total_relation_size('travel_chunks'), 0)
FROM travel_chunks
`).Scan(&usage.Vectors, &usage.Bytes)
	if err != nil {
		return domain.StorageUsage{}, wrapStoreError("query usage", err)
	}
	return usage, nil
}

// buildWhere renders the typed metadata filter into SQL. Filter fields map
// onto a column whitelist; unknown fields match nothing rather than risking
// injection through identifier interpolation.
func buildWhere(namespace string, filter domain.MetadataFilter, vectorArg string) (string, []any) {
	clauses := []string{"namespace = $2"}
	args := []any{vectorArg, namespace}

	for _, cond := range filter.Conditions {
		column, ok := filterColumns[cond.Field]
		if !ok {
			clauses = append(clauses, "FALSE")
			continue
		}
		if len(cond.OneOf) > 0 {
			placeholders := make([]string, len(cond.OneOf))
			for i, v := range cond.OneOf {
				args = append(args, v)
				placeholders[i] = "$" + strconv.Itoa(len(args))
			}
			clauses = append(clauses, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ",")))
			continue
		}
		args = append(args, cond.Equals)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	return strings.Join(clauses, " AND "), args
}

var filterColumns = map[string]string{
	"section":        "section",
	"destination":    "destination",
	"source_file":    "source_file",
	"document_title": "document_title",
}

// formatVector renders a pgvector literal: [0.1,0.2,...].
func formatVector(vector []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range vector {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
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
