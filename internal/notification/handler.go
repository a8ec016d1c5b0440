package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/email"
	"github.com/example/storefront/internal/infrastructure/kafka"
	"go.uber.org/zap"
)

// Mailer sends operator notices
type Mailer interface {
	SendOrderNotice(to string, notice email.OrderNotice) error
}

// Handler processes events for sending notifications
type Handler struct {
	mailer   Mailer
	notifyTo string
	logger   *zap.Logger
}

// NewHandler creates a new notification handler
func NewHandler(mailer Mailer, notifyTo string, logger *zap.Logger) *Handler {
	return &Handler{
		mailer:   mailer,
		notifyTo: notifyTo,
		logger:   logger.Named("notifier"),
	}
}

// HandleEvent processes an event from Kafka
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	event, err := kafka.DecodeEvent(value)
	if err != nil {
		return fmt.Errorf("decode event: %w", err)
	}

	if event.Type != order.EventOrderPlaced {
		return nil
	}
	return h.handleOrderPlaced(event)
}

func (h *Handler) handleOrderPlaced(event kafka.Event) error {
	var e order.OrderPlaced
	if err := json.Unmarshal(event.Data, &e); err != nil {
		return fmt.Errorf("decode OrderPlaced: %w", err)
	}

	notice := email.OrderNotice{
		OrderID:      e.OrderID,
		CustomerName: e.Name,
		Address:      e.Address,
		Total:        e.Total,
		DeliveryDate: e.DeliveryDate,
		Items:        make([]email.OrderNoticeItem, len(e.Items)),
	}
	for i, item := range e.Items {
		notice.Items[i] = email.OrderNoticeItem{Title: item.Title, Quantity: item.Quantity, Price: item.Price}
	}

	if err := h.mailer.SendOrderNotice(h.notifyTo, notice); err != nil {
		return fmt.Errorf("send notice for order %d: %w", e.OrderID, err)
	}

	h.logger.Info("order notice sent", zap.Int64("order_id", e.OrderID), zap.String("to", h.notifyTo))
	return nil
}
