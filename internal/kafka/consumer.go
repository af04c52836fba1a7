package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"kql-assistant-backend/config"
	"kql-assistant-backend/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

type RunConsumer interface {
	FetchRun(ctx context.Context) (*model.QueryRun, kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaRunConsumer struct {
	reader *kafka.Reader
}

// NewKafkaRunConsumer joins the configured consumer group on the run topic.
// With fromBeginning a new group starts at the oldest retained run instead of
// only new ones.
func NewKafkaRunConsumer(cfg *config.Config, fromBeginning bool) (RunConsumer, error) {
	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.RunTopic == "" {
		return nil, errors.New("kafka configuration missing")
	}
	startOffset := kafka.LastOffset
	if fromBeginning {
		startOffset = kafka.FirstOffset
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Kafka.Brokers,
		GroupID:        cfg.Kafka.ConsumerGroup,
		Topic:          cfg.Kafka.RunTopic,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        time.Second,
		CommitInterval: 0,
		StartOffset:    startOffset,
	})
	log.Info().
		Strs("brokers", cfg.Kafka.Brokers).
		Str("topic", cfg.Kafka.RunTopic).
		Str("group", cfg.Kafka.ConsumerGroup).
		Msg("Kafka run consumer initialized")
	return &kafkaRunConsumer{reader: reader}, nil
}

func (c *kafkaRunConsumer) FetchRun(ctx context.Context) (*model.QueryRun, kafka.Message, error) {
	msg, err := c.reader.FetchMessage(ctx)
	if err != nil {
		return nil, kafka.Message{}, err
	}
	log.Debug().
		Str("topic", msg.Topic).
		Int("partition", msg.Partition).
		Int64("offset", msg.Offset).
		Msg("Fetched run from Kafka")
	run, err := decodeRun(msg.Value)
	if err != nil {
		log.Error().Err(err).Int64("offset", msg.Offset).Msg("Failed to unmarshal Kafka message value")
		return nil, msg, err
	}
	return run, msg, nil
}

func decodeRun(value []byte) (*model.QueryRun, error) {
	var run model.QueryRun
	if err := json.Unmarshal(value, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

func (c *kafkaRunConsumer) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	err := c.reader.CommitMessages(ctx, msgs...)
	if err != nil {
		log.Error().Err(err).Int("count", len(msgs)).Msg("Failed to commit Kafka messages")
		return err
	}
	log.Debug().Int("count", len(msgs)).Int64("last_offset", msgs[len(msgs)-1].Offset).Msg("Committed Kafka messages")
	return nil
}

func (c *kafkaRunConsumer) Close() error {
	return c.reader.Close()
}
