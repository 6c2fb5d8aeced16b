package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

type pgVector struct {
	pool       *pgxpool.Pool
	dimensions int
	metric     string // cosine|l2|ip
}

// NewPostgresVector bootstraps the pgvector extension and the chunk
// embeddings table, and returns a VectorStore backed by pool.
func NewPostgresVector(ctx context.Context, pool *pgxpool.Pool, dimensions int, metric string) (VectorStore, error) {
	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return nil, fmt.Errorf("create vector extension: %w", err)
	}
	vecType := "vector"
	if dimensions > 0 {
		vecType = fmt.Sprintf("vector(%d)", dimensions)
	}
	if _, err := pool.Exec(ctx, fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS rag_embeddings (
  chunk_id TEXT PRIMARY KEY,
  doc_id TEXT NOT NULL,
  vec %s,
  payload JSONB NOT NULL DEFAULT '{}'::jsonb
);
`, vecType)); err != nil {
		return nil, fmt.Errorf("create embeddings table: %w", err)
	}
	if _, err := pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS rag_embeddings_doc_id ON rag_embeddings(doc_id)`); err != nil {
		return nil, fmt.Errorf("create doc_id index: %w", err)
	}
	return &pgVector{pool: pool, dimensions: dimensions, metric: strings.ToLower(strings.TrimSpace(metric))}, nil
}

func (p *pgVector) Upsert(ctx context.Context, chunkID string, vector []float32, payload map[string]any) error {
	vecVal, err := pgvector.NewVector(vector).Value()
	if err != nil {
		return fmt.Errorf("encode vector: %w", err)
	}
	docID, _ := payload["doc_id"].(string)
	if payload == nil {
		payload = map[string]any{}
	}
	pb, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	_, err = p.pool.Exec(ctx, `
INSERT INTO rag_embeddings(chunk_id, doc_id, vec, payload) VALUES($1, $2, $3::vector, $4)
ON CONFLICT (chunk_id) DO UPDATE SET doc_id=EXCLUDED.doc_id, vec=EXCLUDED.vec, payload=EXCLUDED.payload
`, chunkID, docID, vecVal, pb)
	return err
}

func (p *pgVector) Search(ctx context.Context, queryVector []float32, languageFilter string, topK int) ([]VectorPoint, error) {
	if topK <= 0 {
		topK = 10
	}
	vecVal, err := pgvector.NewVector(queryVector).Value()
	if err != nil {
		return nil, fmt.Errorf("encode query vector: %w", err)
	}
	op := "<=>"
	scoreExpr := "1 - (vec <=> $1::vector)"
	switch p.metric {
	case "l2", "euclidean":
		op = "<->"
		scoreExpr = "-(vec <-> $1::vector)"
	case "ip", "dot":
		op = "<#>"
		scoreExpr = "-(vec <#> $1::vector)"
	}
	args := []any{vecVal, topK}
	where := ""
	if languageFilter != "" {
		where = "WHERE payload->>'language' = $3"
		args = append(args, languageFilter)
	}
	query := fmt.Sprintf(`SELECT chunk_id, %s AS score, payload FROM rag_embeddings %s ORDER BY vec %s $1::vector LIMIT $2`, scoreExpr, where, op)
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]VectorPoint, 0, topK)
	for rows.Next() {
		var chunkID string
		var score float64
		var pb []byte
		if err := rows.Scan(&chunkID, &score, &pb); err != nil {
			return nil, err
		}
		var payload map[string]any
		_ = json.Unmarshal(pb, &payload)
		out = append(out, VectorPoint{ChunkID: chunkID, Similarity: score, Payload: payload})
	}
	return out, rows.Err()
}

func (p *pgVector) DeleteByDocID(ctx context.Context, docID string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM rag_embeddings WHERE doc_id=$1`, docID)
	return err
}

func (p *pgVector) ClearCollection(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `TRUNCATE rag_embeddings`)
	return err
}

func (p *pgVector) Count(ctx context.Context) (int, error) {
	var n int
	err := p.pool.QueryRow(ctx, `SELECT count(*) FROM rag_embeddings`).Scan(&n)
	return n, err
}

func (p *pgVector) Dimension() int { return p.dimensions }

func (p *pgVector) Ping(ctx context.Context) error { return p.pool.Ping(ctx) }
