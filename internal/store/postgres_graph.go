package store

import (
	"context"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
)

// pgGraph is the Postgres-backed Graph Store adapter. It stores documents,
// chunks, and entities as typed rows rather than a generic node/edge table,
// so MENTIONS and RELATES_TO can MERGE on conflict with a max(confidence)
// update instead of silently dropping the new value.
type pgGraph struct{ pool *pgxpool.Pool }

// NewPostgresGraph bootstraps the schema and returns a GraphDB backed by pool.
func NewPostgresGraph(ctx context.Context, pool *pgxpool.Pool) (GraphDB, error) {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS rag_documents (
			id TEXT PRIMARY KEY,
			props JSONB NOT NULL DEFAULT '{}'::jsonb
		)`,
		`CREATE TABLE IF NOT EXISTS rag_chunks (
			id TEXT PRIMARY KEY,
			doc_id TEXT NOT NULL REFERENCES rag_documents(id) ON DELETE CASCADE,
			ordinal INT NOT NULL,
			props JSONB NOT NULL DEFAULT '{}'::jsonb
		)`,
		`CREATE INDEX IF NOT EXISTS rag_chunks_doc_id ON rag_chunks(doc_id)`,
		`CREATE TABLE IF NOT EXISTS rag_entities (
			id TEXT PRIMARY KEY,
			confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
			props JSONB NOT NULL DEFAULT '{}'::jsonb
		)`,
		`CREATE TABLE IF NOT EXISTS rag_mentions (
			chunk_id TEXT NOT NULL REFERENCES rag_chunks(id) ON DELETE CASCADE,
			entity_id TEXT NOT NULL REFERENCES rag_entities(id) ON DELETE CASCADE,
			confidence DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (chunk_id, entity_id)
		)`,
		`CREATE INDEX IF NOT EXISTS rag_mentions_entity ON rag_mentions(entity_id)`,
		`CREATE TABLE IF NOT EXISTS rag_relates_to (
			source_id TEXT NOT NULL REFERENCES rag_entities(id) ON DELETE CASCADE,
			target_id TEXT NOT NULL REFERENCES rag_entities(id) ON DELETE CASCADE,
			weight DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (source_id, target_id)
		)`,
	}
	for _, s := range stmts {
		if _, err := pool.Exec(ctx, s); err != nil {
			return nil, err
		}
	}
	return &pgGraph{pool: pool}, nil
}

func (g *pgGraph) UpsertDocument(ctx context.Context, id string, props map[string]any) error {
	if props == nil {
		props = map[string]any{}
	}
	_, err := g.pool.Exec(ctx, `
INSERT INTO rag_documents(id, props) VALUES($1,$2)
ON CONFLICT (id) DO UPDATE SET props = rag_documents.props || EXCLUDED.props`, id, props)
	return err
}

func (g *pgGraph) UpsertChunk(ctx context.Context, id, docID string, ordinal int, props map[string]any) error {
	if props == nil {
		props = map[string]any{}
	}
	_, err := g.pool.Exec(ctx, `
INSERT INTO rag_chunks(id, doc_id, ordinal, props) VALUES($1,$2,$3,$4)
ON CONFLICT (id) DO UPDATE SET doc_id=EXCLUDED.doc_id, ordinal=EXCLUDED.ordinal, props=EXCLUDED.props`,
		id, docID, ordinal, props)
	return err
}

func (g *pgGraph) UpsertEntity(ctx context.Context, id string, confidence float64, props map[string]any) error {
	if props == nil {
		props = map[string]any{}
	}
	_, err := g.pool.Exec(ctx, `
INSERT INTO rag_entities(id, confidence, props) VALUES($1,$2,$3)
ON CONFLICT (id) DO UPDATE SET confidence = GREATEST(rag_entities.confidence, EXCLUDED.confidence),
	props = rag_entities.props || EXCLUDED.props`, id, confidence, props)
	return err
}

func (g *pgGraph) LinkMention(ctx context.Context, chunkID, entityID string, confidence float64) error {
	_, err := g.pool.Exec(ctx, `
INSERT INTO rag_mentions(chunk_id, entity_id, confidence) VALUES($1,$2,$3)
ON CONFLICT (chunk_id, entity_id) DO UPDATE SET confidence = GREATEST(rag_mentions.confidence, EXCLUDED.confidence)`,
		chunkID, entityID, confidence)
	return err
}

func (g *pgGraph) LinkRelation(ctx context.Context, sourceEntityID, targetEntityID string, weight float64) error {
	_, err := g.pool.Exec(ctx, `
INSERT INTO rag_relates_to(source_id, target_id, weight) VALUES($1,$2,$3)
ON CONFLICT (source_id, target_id) DO UPDATE SET weight = GREATEST(rag_relates_to.weight, EXCLUDED.weight)`,
		sourceEntityID, targetEntityID, weight)
	return err
}

// FindChunksByEntities mirrors the in-memory BFS: it walks RELATES_TO one
// level at a time (bounded by hops) and accumulates MENTIONS confidence at
// each level, divided by 1+hop_distance.
func (g *pgGraph) FindChunksByEntities(ctx context.Context, entityIDs []string, hops int, limit int) ([]ChunkWeight, error) {
	if hops <= 0 {
		hops = 1
	}
	visited := make(map[string]bool, len(entityIDs))
	frontier := make([]string, 0, len(entityIDs))
	for _, id := range entityIDs {
		if !visited[id] {
			visited[id] = true
			frontier = append(frontier, id)
		}
	}
	weights := make(map[string]float64)
	for dist := 0; len(frontier) > 0; dist++ {
		rows, err := g.pool.Query(ctx,
			`SELECT chunk_id, confidence FROM rag_mentions WHERE entity_id = ANY($1)`, frontier)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var chunkID string
			var conf float64
			if err := rows.Scan(&chunkID, &conf); err != nil {
				rows.Close()
				return nil, err
			}
			weights[chunkID] += conf / (1 + float64(dist))
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}

		if dist+1 >= hops {
			break
		}
		relRows, err := g.pool.Query(ctx,
			`SELECT target_id FROM rag_relates_to WHERE source_id = ANY($1)`, frontier)
		if err != nil {
			return nil, err
		}
		next := make([]string, 0)
		for relRows.Next() {
			var target string
			if err := relRows.Scan(&target); err != nil {
				relRows.Close()
				return nil, err
			}
			if !visited[target] {
				visited[target] = true
				next = append(next, target)
			}
		}
		relRows.Close()
		if err := relRows.Err(); err != nil {
			return nil, err
		}
		frontier = next
	}

	out := make([]ChunkWeight, 0, len(weights))
	for chunkID, w := range weights {
		out = append(out, ChunkWeight{ChunkID: chunkID, Weight: w})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].ChunkID < out[j].ChunkID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// FindEntitiesByName matches canonical names case-insensitively via lower().
// Unlike the in-memory backend it does not fold diacritics or collapse
// whitespace.
func (g *pgGraph) FindEntitiesByName(ctx context.Context, canonicalName, language string) ([]string, error) {
	rows, err := g.pool.Query(ctx, `
SELECT id FROM rag_entities
WHERE lower(props->>'canonical_name') = lower($1)
  AND ($2 = '' OR props->>'language' = $2 OR props->>'language' IS NULL)
ORDER BY id`, canonicalName, language)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (g *pgGraph) HasChunk(ctx context.Context, chunkID string) (bool, error) {
	var exists bool
	err := g.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM rag_chunks WHERE id=$1)`, chunkID).Scan(&exists)
	return exists, err
}

func (g *pgGraph) ResetAll(ctx context.Context) error {
	_, err := g.pool.Exec(ctx, `TRUNCATE rag_mentions, rag_relates_to, rag_chunks, rag_entities, rag_documents CASCADE`)
	return err
}

func (g *pgGraph) Stats(ctx context.Context) (GraphStats, error) {
	var s GraphStats
	err := g.pool.QueryRow(ctx, `SELECT
		(SELECT count(*) FROM rag_documents),
		(SELECT count(*) FROM rag_chunks),
		(SELECT count(*) FROM rag_entities),
		(SELECT count(*) FROM rag_mentions) + (SELECT count(*) FROM rag_relates_to)
	`).Scan(&s.Documents, &s.Chunks, &s.Entities, &s.Relationships)
	return s, err
}

func (g *pgGraph) Ping(ctx context.Context) error {
	return g.pool.Ping(ctx)
}
