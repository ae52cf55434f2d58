package kafka

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/IBM/sarama"

	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/logging"
	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/usecase"
)

// HandlerFunc processes a decoded payment status event.
type HandlerFunc func(ctx context.Context, ev usecase.PaymentStatusChangedMsg) error

// Consumer consumes one topic with a single handler.
type Consumer struct {
	group  sarama.ConsumerGroup
	topics []string
	handle HandlerFunc
	log    *slog.Logger
}

func NewConsumer(group sarama.ConsumerGroup, topics []string, h HandlerFunc, log *slog.Logger) *Consumer {
	return &Consumer{group: group, topics: topics, handle: h, log: log}
}

// Start blocks until ctx is cancelled, rejoining the group after rebalances.
func (c *Consumer) Start(ctx context.Context) error {
	handler := &cgHandler{handle: c.handle, log: c.log}
	for {
		if err := c.group.Consume(ctx, c.topics, handler); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

type cgHandler struct {
	handle HandlerFunc
	log    *slog.Logger
}

func (h *cgHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *cgHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *cgHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		ctx := logging.WithCtx(sess.Context(), h.log)

		var ev usecase.PaymentStatusChangedMsg
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			h.log.Warn("kafka decode error", "topic", msg.Topic, "offset", msg.Offset, "error", err)
			// poison message, skip it
			sess.MarkMessage(msg, "decode-error")
			continue
		}
		if err := h.handle(ctx, ev); err != nil {
			h.log.Error("payment event handler failed",
				"checkout_id", ev.CheckoutID, "offset", msg.Offset, "error", err)
			// unmarked: redelivered on the next poll
			continue
		}
		sess.MarkMessage(msg, "")
	}
	return nil
}
