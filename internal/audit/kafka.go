package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaSink publishes audit events to a Kafka topic for downstream SIEM and
// compliance consumers. Records are keyed by applicant so per-applicant
// history stays ordered within a partition.
type KafkaSink struct {
	client *kgo.Client
	topic  string
}

// NewKafkaSink connects to the given brokers.
func NewKafkaSink(brokers []string, topic string) (*KafkaSink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return &KafkaSink{client: client, topic: topic}, nil
}

// kafkaPayload is the JSON record shape published to the topic.
type kafkaPayload struct {
	ID          string `json:"id"`
	Timestamp   string `json:"timestamp"`
	Mode        string `json:"mode"`
	Stage       string `json:"stage"`
	Code        string `json:"code"`
	ApplicantID string `json:"applicant_id"`
	Detail      string `json:"detail"`
	RequestID   string `json:"request_id,omitempty"`
	Client      string `json:"client,omitempty"`
}

// Append produces one record per event and waits for the ack, so a returned
// nil means the event is durably with the broker.
func (s *KafkaSink) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(kafkaPayload{
		ID:          event.ID,
		Timestamp:   event.Timestamp.Format(time.RFC3339Nano),
		Mode:        event.Mode,
		Stage:       event.Stage,
		Code:        event.Code,
		ApplicantID: event.ApplicantID,
		Detail:      event.Detail,
		RequestID:   event.RequestID,
		Client:      event.Client,
	})
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	record := &kgo.Record{Key: []byte(event.ApplicantID), Value: payload}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes buffered records and tears down the client.
func (s *KafkaSink) Close() {
	s.client.Close()
}
