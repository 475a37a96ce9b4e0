package kafka

import (
	"context"
	"encoding/json"
	"log"

	"github.com/IBM/sarama"
)

// JobHandler processes one decoded sticker job. A returned error leaves the
// message unmarked so the group redelivers it.
type JobHandler func(ctx context.Context, job *StickerJob) error

// ConsumerConfig holds the connection settings for the job consumer.
type ConsumerConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// Consumer reads StickerJob messages from a Kafka topic via a consumer group
// and feeds them to a JobHandler.
type Consumer struct {
	group   sarama.ConsumerGroup
	handler JobHandler
	topic   string
	groupID string
	ready   chan struct{}
}

// NewConsumer creates a consumer-group client for sticker jobs.
func NewConsumer(cfg ConsumerConfig, handler JobHandler) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaConfig)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		group:   group,
		handler: handler,
		topic:   cfg.Topic,
		groupID: cfg.GroupID,
		ready:   make(chan struct{}),
	}, nil
}

// Start begins consuming jobs. It returns once the group session is
// established; consumption continues until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	session := &jobSession{handler: c.handler, ready: c.ready}

	go func() {
		for {
			if err := c.group.Consume(ctx, []string{c.topic}, session); err != nil {
				if err == context.Canceled {
					log.Println("Kafka consumer context canceled")
					return
				}
				log.Printf("Error from Kafka consumer: %v", err)
			}

			if ctx.Err() != nil {
				return
			}
			session.ready = make(chan struct{})
		}
	}()

	<-c.ready
	log.Printf("✅ Sticker job consumer started (group: %s, topic: %s)", c.groupID, c.topic)

	go func() {
		for err := range c.group.Errors() {
			log.Printf("❌ Kafka consumer error: %v", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the consumer group.
func (c *Consumer) Close() error {
	log.Println("Closing sticker job consumer...")
	return c.group.Close()
}

// jobSession implements sarama.ConsumerGroupHandler for sticker jobs.
type jobSession struct {
	handler JobHandler
	ready   chan struct{}
}

func (s *jobSession) Setup(sarama.ConsumerGroupSession) error {
	close(s.ready)
	return nil
}

func (s *jobSession) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (s *jobSession) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}

			log.Printf("📥 Received sticker job: partition=%d, offset=%d, key=%s",
				message.Partition, message.Offset, string(message.Key))

			var job StickerJob
			if err := json.Unmarshal(message.Value, &job); err != nil {
				// Malformed payloads are marked to avoid redelivery loops.
				log.Printf("❌ Failed to unmarshal sticker job: %v", err)
				session.MarkMessage(message, "")
				continue
			}
			if !job.Valid() {
				log.Printf("⚠️  Skipping invalid sticker job %q", job.ID)
				session.MarkMessage(message, "")
				continue
			}

			if err := s.handler(session.Context(), &job); err != nil {
				// Leave unmarked so the job is retried.
				log.Printf("❌ Failed to process sticker job %q: %v", job.ID, err)
				continue
			}
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}
