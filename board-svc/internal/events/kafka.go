package events

import (
	"context"
	"encoding/json"
	"strconv"

	"tableboard/board-svc/internal/domain"

	"github.com/segmentio/kafka-go"
)

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type KafkaPublisher struct {
	Writer MessageWriter
}

func NewKafkaPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{Writer: writer}
}

// Publish keys messages by the first table id so that events for one table
// stay on one partition.
func (p *KafkaPublisher) Publish(ctx context.Context, event domain.BoardEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	key := event.BranchID
	if len(event.TableIDs) > 0 {
		key = strconv.Itoa(event.TableIDs[0])
	}
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
	})
}
