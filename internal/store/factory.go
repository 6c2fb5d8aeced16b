package store

import (
	"context"
	"fmt"
	"strings"

	"hybridrag/internal/config"
)

// NewGraph resolves the configured Graph Store backend.
func NewGraph(ctx context.Context, cfg config.GraphConfig) (GraphDB, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "memory":
		return NewMemoryGraph(), nil
	case "postgres":
		pool, err := OpenPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open graph postgres pool: %w", err)
		}
		return NewPostgresGraph(ctx, pool)
	default:
		return nil, fmt.Errorf("unknown graph backend %q", cfg.Backend)
	}
}

// NewVectorStore resolves the configured Dense Index vector store backend.
func NewVectorStore(ctx context.Context, cfg config.DenseConfig) (VectorStore, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "memory":
		return NewMemoryVector(cfg.Dimensions), nil
	case "qdrant":
		return NewQdrantVector(cfg.QdrantDSN, cfg.QdrantCollection, cfg.Dimensions, cfg.DistanceMetric)
	case "postgres":
		pool, err := OpenPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open vector postgres pool: %w", err)
		}
		return NewPostgresVector(ctx, pool, cfg.Dimensions, cfg.DistanceMetric)
	default:
		return nil, fmt.Errorf("unknown dense backend %q", cfg.Backend)
	}
}
