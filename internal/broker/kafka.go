package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"shopsync/internal/config"
	"shopsync/internal/constants"
	"shopsync/internal/logger"
	"shopsync/pkg/metrics"
	"shopsync/pkg/retry"
	"shopsync/pkg/tracing"
)

type KafkaPublisher struct {
	writer *kafka.Writer
	topic  string
	policy retry.Policy
	logger logger.Logger
}

func NewKafkaPublisher(cfg config.KafkaConfig, log logger.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: constants.KafkaBatchTimeout,
		WriteTimeout: constants.KafkaWriteTimeout,
		Async:        false,
	}

	policy := retry.DefaultPolicy()
	if cfg.Retry.MaxAttempts > 0 {
		policy = retry.Policy{
			MaxAttempts:     cfg.Retry.MaxAttempts,
			InitialInterval: cfg.Retry.InitialInterval,
			MaxInterval:     cfg.Retry.MaxInterval,
			Multiplier:      cfg.Retry.Multiplier,
			MaxElapsedTime:  cfg.Retry.MaxElapsedTime,
		}
	}

	return &KafkaPublisher{
		writer: w,
		topic:  cfg.OutcomeTopic,
		policy: policy,
		logger: log,
	}
}

func (p *KafkaPublisher) PublishOutcome(ctx context.Context, event OutcomeEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal outcome event: %w", err)
	}

	headers := tracing.InjectTraceContext(ctx, nil)

	err = retry.Retry(ctx, p.policy, func() error {
		start := time.Now()
		writeErr := p.writer.WriteMessages(ctx, kafka.Message{
			Topic:   p.topic,
			Key:     []byte(event.ID),
			Value:   body,
			Headers: headers,
			Time:    time.Now(),
		})
		metrics.ObserveKafkaWriteDuration("sync-service", p.topic, time.Since(start))
		return writeErr
	})
	if err != nil {
		return fmt.Errorf("failed to write outcome event: %w", err)
	}

	metrics.IncKafkaMessagesWritten("sync-service", p.topic)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NewPublisher builds the configured publisher, or nil when outcome
// publishing is disabled.
func NewPublisher(cfg config.BrokerConfig, log logger.Logger) (Publisher, error) {
	switch cfg.Type {
	case "":
		return nil, nil
	case "kafka":
		return NewKafkaPublisher(cfg.Kafka, log), nil
	default:
		return nil, fmt.Errorf("unknown broker type: %s", cfg.Type)
	}
}
