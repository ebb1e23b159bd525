package events

import (
	"context"
	"encoding/json"
	"errors"

	"tableboard/board-svc/internal/domain"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type ActivityRecorder interface {
	Record(ctx context.Context, event domain.BoardEvent) error
}

// Consumer folds board events from the topic into daily activity counters.
type Consumer struct {
	Reader MessageReader
	Store  ActivityRecorder
	Logger logrus.FieldLogger
}

func NewConsumer(reader MessageReader, store ActivityRecorder, logger logrus.FieldLogger) *Consumer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Consumer{
		Reader: reader,
		Store:  store,
		Logger: logger.WithField("module", "activity"),
	}
}

// Start reads until ctx is cancelled. Bad messages are logged and skipped.
func (c *Consumer) Start(ctx context.Context) {
	c.Logger.Info("starting board activity consumer")
	for {
		message, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				c.Logger.Info("board activity consumer stopped")
				return
			}
			c.Logger.WithError(err).Error("error reading message")
			continue
		}

		var event domain.BoardEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			c.Logger.WithField("offset", message.Offset).WithError(err).Warn("error unmarshaling board event")
			continue
		}

		c.Process(ctx, event)
	}
}

func (c *Consumer) Process(ctx context.Context, event domain.BoardEvent) {
	if !knownEvent(event.Type) {
		c.Logger.WithField("type", event.Type).Debug("ignoring unknown event type")
		return
	}
	if err := c.Store.Record(ctx, event); err != nil {
		c.Logger.WithFields(logrus.Fields{
			"type":      event.Type,
			"table_ids": event.TableIDs,
		}).WithError(err).Error("error recording board activity")
	}
}

func knownEvent(t domain.EventType) bool {
	switch t {
	case domain.EventBookingCreated, domain.EventBookingCancelled, domain.EventTablesJoined,
		domain.EventTableCheckedIn, domain.EventTableReleased:
		return true
	}
	return false
}
