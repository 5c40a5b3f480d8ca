package kafka

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/followup-compliance/internal/config"
	"github.com/turtacn/followup-compliance/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/followup-compliance/pkg/errors"
)

type mockKafkaWriter struct {
	writeFunc func(ctx context.Context, msgs ...kafka.Message) error
	closeFunc func() error
}

func (m *mockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if m.writeFunc != nil {
		return m.writeFunc(ctx, msgs...)
	}
	return nil
}

func (m *mockKafkaWriter) Close() error {
	if m.closeFunc != nil {
		return m.closeFunc()
	}
	return nil
}

func newTestProducer(w WriterInterface) *Producer {
	return newProducerWithWriter(w, ProducerConfig{
		Brokers:  []string{"localhost:9092"},
		ClientID: "followup-test",
	}, logging.NewNopLogger())
}

func TestValidateProducerConfig(t *testing.T) {
	assert.NoError(t, ValidateProducerConfig(ProducerConfig{Brokers: []string{"b:9092"}}))
	assert.Error(t, ValidateProducerConfig(ProducerConfig{}))
	assert.Error(t, ValidateProducerConfig(ProducerConfig{Brokers: []string{"b:9092"}, MaxRetries: -1}))
}

func TestProducerConfigFrom(t *testing.T) {
	cfg := ProducerConfigFrom(config.KafkaConfig{Enabled: true, Brokers: []string{"k1:9092", "k2:9092"}, ClientID: "svc"})
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Brokers)
	assert.Equal(t, "svc", cfg.ClientID)
}

func TestNewProducer_RejectsEmptyBrokers(t *testing.T) {
	_, err := NewProducer(ProducerConfig{}, logging.NewNopLogger())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
}

func TestPublish_Success(t *testing.T) {
	var captured []kafka.Message
	p := newTestProducer(&mockKafkaWriter{
		writeFunc: func(ctx context.Context, msgs ...kafka.Message) error {
			captured = msgs
			return nil
		},
	})

	ctx := logging.ContextWithRequestID(context.Background(), "req-42")
	payload := SubmissionCreatedPayload{
		SubmissionID: "s-1",
		PatientID:    "p-1",
		PlanID:       "plan-1",
		CheckpointID: "postoperative_1m",
		CreatedAt:    time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, p.Publish(ctx, TopicSubmissionCreated, "p-1", payload))

	require.Len(t, captured, 1)
	msg := captured[0]
	assert.Equal(t, TopicSubmissionCreated, msg.Topic)
	assert.Equal(t, "p-1", string(msg.Key))

	env, err := MessageToEventEnvelope(msg)
	require.NoError(t, err)
	assert.Equal(t, TopicSubmissionCreated, env.EventType)
	assert.Equal(t, "followup-test", env.Source)
	assert.Equal(t, "v1", env.SchemaVersion)
	assert.Equal(t, "req-42", env.TraceID)
	assert.NotEmpty(t, env.EventID)

	var got SubmissionCreatedPayload
	require.NoError(t, env.DecodePayload(&got))
	assert.Equal(t, payload, got)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, TopicSubmissionCreated, headers["event_type"])
	assert.Equal(t, "req-42", headers["trace_id"])
	assert.Equal(t, int64(1), p.sent.Load())
}

func TestPublish_WriterFailure(t *testing.T) {
	p := newTestProducer(&mockKafkaWriter{
		writeFunc: func(ctx context.Context, msgs ...kafka.Message) error {
			return errors.New("broker unavailable")
		},
	})
	err := p.Publish(context.Background(), TopicPlanDiscarded, "plan-1", PlanDiscardedPayload{PlanID: "plan-1"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeExternalService))
	assert.Equal(t, int64(1), p.failed.Load())
}

func TestPublish_Validation(t *testing.T) {
	p := newTestProducer(&mockKafkaWriter{})

	err := p.Publish(context.Background(), "", "k", struct{}{})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))

	p.config.MaxMessageBytes = 64
	err = p.Publish(context.Background(), TopicBindingCreated, "k", map[string]string{"pad": strings.Repeat("x", 128)})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))

	err = p.Publish(context.Background(), TopicBindingCreated, "k", make(chan int))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeSerialization))
}

func TestPublish_AfterClose(t *testing.T) {
	closes := 0
	p := newTestProducer(&mockKafkaWriter{closeFunc: func() error { closes++; return nil }})

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, 1, closes)

	err := p.Publish(context.Background(), TopicCurrentChanged, "p-1", CurrentChangedPayload{})
	assert.ErrorIs(t, err, ErrProducerClosed)
}

func TestNopPublisher(t *testing.T) {
	var p NopPublisher
	assert.NoError(t, p.Publish(context.Background(), TopicBindingCreated, "k", nil))
	assert.NoError(t, p.Close())
}
