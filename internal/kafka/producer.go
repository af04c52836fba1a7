package kafka

import (
	"context"
	"encoding/json"
	"errors"

	"kql-assistant-backend/config"
	"kql-assistant-backend/internal/model"
	"kql-assistant-backend/internal/observability"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"go.uber.org/fx"
)

const sinkName = "kafka"

type RunProducer interface {
	Name() string
	StoreRuns(ctx context.Context, runs []model.QueryRun) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaRunProducer struct {
	writer messageWriter
	topic  string
}

// NewRunProducer builds an async producer. The caller owns Close, which
// flushes pending messages.
func NewRunProducer(cfg *config.Config) (RunProducer, error) {
	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.RunTopic == "" {
		log.Error().Msg("Kafka brokers or run topic is not configured.")
		return nil, errors.New("kafka configuration missing")
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Topic:        cfg.Kafka.RunTopic,
		Balancer:     &kafka.Hash{},
		BatchSize:    cfg.Kafka.BatchSize,
		BatchTimeout: cfg.Kafka.BatchTimeout,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				observability.ObserveAuditFailure(sinkName)
				log.Error().Err(err).Int("message_count", len(messages)).Msg("Async Kafka write failed")
			}
		},
	}
	log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.RunTopic).Msg("Kafka run producer initialized")
	return newRunProducer(writer, cfg.Kafka.RunTopic), nil
}

// NewKafkaRunProducer is NewRunProducer with Close bound to the app lifecycle.
func NewKafkaRunProducer(lc fx.Lifecycle, cfg *config.Config) (RunProducer, error) {
	p, err := NewRunProducer(cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Closing Kafka run producer")
			return p.Close()
		},
	})
	return p, nil
}

func newRunProducer(w messageWriter, topic string) *kafkaRunProducer {
	return &kafkaRunProducer{writer: w, topic: topic}
}

func (p *kafkaRunProducer) Name() string { return sinkName }

// StoreRuns publishes each run keyed by its ID so retries of the same run land
// on the same partition.
func (p *kafkaRunProducer) StoreRuns(ctx context.Context, runs []model.QueryRun) error {
	if len(runs) == 0 {
		return nil
	}
	messages := make([]kafka.Message, 0, len(runs))

	for _, run := range runs {
		value, err := json.Marshal(run)
		if err != nil {
			log.Error().Err(err).Str("run_id", run.ID).Msg("Failed to marshal query run for Kafka")
			continue
		}
		messages = append(messages, kafka.Message{
			Key:   []byte(run.ID),
			Value: value,
		})
	}
	if len(messages) == 0 {
		log.Warn().Msg("No valid messages to produce.")
		return nil
	}

	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		log.Error().Err(err).Int("message_count", len(messages)).Msg("Failed to write messages to Kafka")
		return err
	}

	log.Debug().Int("message_count", len(messages)).Str("topic", p.topic).Msg("Successfully produced messages to Kafka")
	return nil
}

func (p *kafkaRunProducer) Close() error {
	return p.writer.Close()
}
