// Package consumer bridges the Kafka fanout topic to the notification
// service. Decode failures are permanent; everything else is classified
// by the service's error taxonomy.
package consumer

import (
	"context"

	"campustime/internal/notifications/service"
	apperrors "campustime/pkg/errors"
	"campustime/pkg/kafka"
	"campustime/pkg/logger"
	"campustime/pkg/model"
)

type FanoutHandler struct {
	service service.NotificationService
	log     *logger.Logger
}

func NewFanoutHandler(service service.NotificationService, log *logger.Logger) *FanoutHandler {
	return &FanoutHandler{
		service: service,
		log:     log,
	}
}

// Handle implements kafka.MessageHandler.
func (h *FanoutHandler) Handle(ctx context.Context, msg kafka.Message) error {
	var event model.FanoutEvent
	if err := msg.DecodeValue(&event); err != nil {
		return kafka.NewPermanentError("failed to decode fanout event", err)
	}

	h.log.Info("Processing fanout event",
		"event_id", msg.GetEventID(),
		"event_type", msg.GetEventType(),
		"audience", event.Audience,
	)

	if err := h.service.Fanout(ctx, &event); err != nil {
		if apperrors.IsRetryable(err) {
			return kafka.NewTransientError("fanout failed", err)
		}
		return kafka.NewPermanentError("fanout rejected", err)
	}

	return nil
}
