package store

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// payloadChunkIDField stores the original chunk_id in the point payload.
// Qdrant point IDs must be a UUID or a positive integer, so chunk_id is
// mapped through a deterministic UUIDv5 hash and the original string is
// carried in the payload for result hydration.
const payloadChunkIDField = "chunk_id"

type qdrantVector struct {
	client     *qdrant.Client
	collection string
	dimension  int
	metric     string // cosine|l2|euclidean|ip|dot|manhattan
}

// NewQdrantVector connects to Qdrant over its gRPC API (default port 6334)
// and ensures collection exists with the requested dimension/metric.
// An API key may be supplied as a DSN query parameter: "http://host:6334?api_key=...".
func NewQdrantVector(dsn string, collection string, dimensions int, metric string) (VectorStore, error) {
	if collection == "" {
		return nil, fmt.Errorf("collection name is required")
	}
	parsedURL, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse qdrant dsn: %w", err)
	}
	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}
	port := parsedURL.Port()
	if port == "" {
		port = "6334"
	}
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return nil, fmt.Errorf("invalid port in qdrant dsn: %w", err)
	}
	cfg := &qdrant.Config{Host: host, Port: portNum}
	if parsedURL.Scheme == "https" {
		cfg.UseTLS = true
	}
	if apiKey := parsedURL.Query().Get("api_key"); apiKey != "" {
		cfg.APIKey = apiKey
	}
	client, err := qdrant.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}
	qv := &qdrantVector{
		client:     client,
		collection: collection,
		dimension:  dimensions,
		metric:     strings.ToLower(strings.TrimSpace(metric)),
	}
	if err := qv.ensureCollection(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("ensure collection: %w", err)
	}
	return qv, nil
}

func (q *qdrantVector) ensureCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collection)
	if err != nil {
		return fmt.Errorf("check collection exists: %w", err)
	}
	if exists {
		return nil
	}
	var distance qdrant.Distance
	switch q.metric {
	case "l2", "euclidean":
		distance = qdrant.Distance_Euclid
	case "ip", "dot":
		distance = qdrant.Distance_Dot
	case "manhattan":
		distance = qdrant.Distance_Manhattan
	default:
		distance = qdrant.Distance_Cosine
	}
	if q.dimension <= 0 {
		return fmt.Errorf("qdrant requires dimensions > 0")
	}
	return q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(q.dimension),
			Distance: distance,
		}),
	})
}

func pointID(chunkID string) *qdrant.PointId {
	u := chunkID
	if _, err := uuid.Parse(chunkID); err != nil {
		u = uuid.NewSHA1(uuid.NameSpaceOID, []byte(chunkID)).String()
	}
	return qdrant.NewIDUUID(u)
}

func (q *qdrantVector) Upsert(ctx context.Context, chunkID string, vector []float32, payload map[string]any) error {
	full := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		full[k] = v
	}
	full[payloadChunkIDField] = chunkID
	vec := make([]float32, len(vector))
	copy(vec, vector)
	points := []*qdrant.PointStruct{{
		Id:      pointID(chunkID),
		Vectors: qdrant.NewVectorsDense(vec),
		Payload: qdrant.NewValueMap(full),
	}}
	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{CollectionName: q.collection, Points: points})
	return err
}

func (q *qdrantVector) Search(ctx context.Context, queryVector []float32, languageFilter string, topK int) ([]VectorPoint, error) {
	if topK <= 0 {
		topK = 10
	}
	vec := make([]float32, len(queryVector))
	copy(vec, queryVector)

	var queryFilter *qdrant.Filter
	if languageFilter != "" {
		queryFilter = &qdrant.Filter{Must: []*qdrant.Condition{qdrant.NewMatch("language", languageFilter)}}
	}
	limit := uint64(topK)
	hits, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQueryDense(vec),
		Limit:          &limit,
		Filter:         queryFilter,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, err
	}
	out := make([]VectorPoint, 0, len(hits))
	for _, hit := range hits {
		payload := make(map[string]any)
		var chunkID string
		if hit.Payload != nil {
			for k, v := range hit.Payload {
				if k == payloadChunkIDField {
					chunkID = v.GetStringValue()
					continue
				}
				payload[k] = qdrantValueToAny(v)
			}
		}
		if chunkID == "" {
			chunkID = hit.Id.GetUuid()
		}
		out = append(out, VectorPoint{ChunkID: chunkID, Similarity: float64(hit.Score), Payload: payload})
	}
	return out, nil
}

func (q *qdrantVector) DeleteByDocID(ctx context.Context, docID string) error {
	filter := &qdrant.Filter{Must: []*qdrant.Condition{qdrant.NewMatch("doc_id", docID)}}
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collection,
		Points:         qdrant.NewPointsSelectorFilter(filter),
	})
	return err
}

func (q *qdrantVector) ClearCollection(ctx context.Context) error {
	if err := q.client.DeleteCollection(ctx, q.collection); err != nil {
		return err
	}
	return q.ensureCollection(ctx)
}

func (q *qdrantVector) Count(ctx context.Context) (int, error) {
	info, err := q.client.GetCollectionInfo(ctx, q.collection)
	if err != nil {
		return 0, err
	}
	return int(info.GetPointsCount()), nil
}

func (q *qdrantVector) Dimension() int { return q.dimension }

func (q *qdrantVector) Ping(ctx context.Context) error {
	_, err := q.client.HealthCheck(ctx)
	return err
}

func qdrantValueToAny(v *qdrant.Value) any {
	switch v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return v.GetStringValue()
	case *qdrant.Value_IntegerValue:
		return v.GetIntegerValue()
	case *qdrant.Value_DoubleValue:
		return v.GetDoubleValue()
	case *qdrant.Value_BoolValue:
		return v.GetBoolValue()
	default:
		return v.GetStringValue()
	}
}
