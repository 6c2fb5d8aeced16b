package ingest

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"hybridrag/internal/config"
)

// eventPayload is the wire shape of an Event published to the progress topic.
type eventPayload struct {
	DocID     string `json:"doc_id"`
	Stage     string `json:"stage"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

// KafkaSink publishes ingestion progress events to a Kafka topic for async
// consumers (e.g. a UI progress stream). Publish errors are logged and
// swallowed: a broker outage must never abort ingestion, which is why Sink
// implementations are called synchronously but must not propagate failure.
type KafkaSink struct {
	writer *kafka.Writer
}

// NewKafkaSink builds a publisher from the configured brokers and topic.
func NewKafkaSink(cfg config.EventsConfig) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(cfg.Brokers...),
			Topic:    cfg.Topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (k *KafkaSink) Emit(e Event) {
	if k == nil || k.writer == nil {
		return
	}
	payload := eventPayload{
		DocID:     e.DocID,
		Stage:     string(e.Stage),
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
	if e.Err != nil {
		payload.Error = e.Err.Error()
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Warn().Err(err).Msg("ingest_event_marshal_failed")
		return
	}
	msg := kafka.Message{Key: []byte(e.DocID), Value: data, Time: time.Now()}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		log.Warn().Err(err).Str("doc_id", e.DocID).Msg("ingest_event_publish_failed")
	}
}

// Close shuts down the underlying writer.
func (k *KafkaSink) Close() error {
	if k == nil || k.writer == nil {
		return nil
	}
	return k.writer.Close()
}
