package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/IBM/sarama"
)

// Handler processes one consumed message. Returning mark=false or an error
// leaves the offset unmarked so the message is retried.
type Handler interface {
	Handle(ctx context.Context, payload []byte) (mark bool, err error)
}

// Consumer wraps a sarama consumer group around a pluggable handler.
type Consumer struct {
	group   sarama.ConsumerGroup
	handler Handler
	topic   string
	groupID string
	started chan struct{}
}

type ConsumerConfig struct {
	Brokers []string
	Topic   string
	GroupID string
	Handler Handler
}

func NewConsumer(cfg ConsumerConfig) (*Consumer, error) {
	sc := sarama.NewConfig()
	sc.Version = sarama.V3_6_0_0
	sc.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	sc.Consumer.Offsets.Initial = sarama.OffsetNewest
	sc.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, sc)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		group:   group,
		handler: cfg.Handler,
		topic:   cfg.Topic,
		groupID: cfg.GroupID,
		started: make(chan struct{}),
	}, nil
}

// Start begins consuming and returns once the group session is established.
func (c *Consumer) Start(ctx context.Context) error {
	h := &sessionHandler{handler: c.handler, started: c.started}

	go func() {
		for {
			if err := c.group.Consume(ctx, []string{c.topic}, h); err != nil {
				if errors.Is(err, context.Canceled) {
					log.Println("Kafka consumer context canceled")
					return
				}
				log.Printf("Error from Kafka consumer: %v", err)
			}
			if ctx.Err() != nil {
				return
			}
			h.started = make(chan struct{})
		}
	}()

	<-c.started
	log.Printf("✅ Kafka consumer started (group: %s, topic: %s)", c.groupID, c.topic)

	go func() {
		for err := range c.group.Errors() {
			log.Printf("❌ Kafka consumer error: %v", err)
		}
	}()

	return nil
}

func (c *Consumer) Close() error {
	log.Println("Closing Kafka consumer...")
	return c.group.Close()
}

type sessionHandler struct {
	handler Handler
	started chan struct{}
}

func (h *sessionHandler) Setup(sarama.ConsumerGroupSession) error {
	close(h.started)
	return nil
}

func (h *sessionHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *sessionHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case msg := <-claim.Messages():
			if msg == nil {
				return nil
			}
			log.Printf("📥 Received Kafka message: partition=%d, offset=%d, key=%s",
				msg.Partition, msg.Offset, string(msg.Key))

			mark, err := h.handler.Handle(session.Context(), msg.Value)
			if err != nil {
				log.Printf("❌ Failed to handle message: %v", err)
			}
			if mark {
				session.MarkMessage(msg, "")
			}

		case <-session.Context().Done():
			return nil
		}
	}
}

// JSONHandler decodes each message into T before dispatch. Undecodable and
// invalid messages are marked when MarkInvalid is set, so poison messages
// don't wedge the partition; processing errors are never marked.
type JSONHandler[T any] struct {
	Validate    func(msg *T) bool
	Process     func(ctx context.Context, msg *T) error
	MarkInvalid bool
}

func (h *JSONHandler[T]) Handle(ctx context.Context, payload []byte) (bool, error) {
	var msg T
	if err := json.Unmarshal(payload, &msg); err != nil {
		log.Printf("❌ Failed to unmarshal message: %v", err)
		return h.MarkInvalid, nil
	}
	if h.Validate != nil && !h.Validate(&msg) {
		return h.MarkInvalid, nil
	}
	if err := h.Process(ctx, &msg); err != nil {
		return false, err
	}
	return true, nil
}
