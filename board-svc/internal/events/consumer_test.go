package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"tableboard/board-svc/internal/domain"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

// queueReader hands out queued messages, then blocks until ctx is done.
type queueReader struct {
	messages []kafka.Message
	errs     []error
}

func (r *queueReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.errs) > 0 {
		err := r.errs[0]
		r.errs = r.errs[1:]
		return kafka.Message{}, err
	}
	if len(r.messages) > 0 {
		msg := r.messages[0]
		r.messages = r.messages[1:]
		return msg, nil
	}
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

type recordingStore struct {
	events []domain.BoardEvent
	err    error
}

func (s *recordingStore) Record(_ context.Context, event domain.BoardEvent) error {
	s.events = append(s.events, event)
	return s.err
}

func encode(t *testing.T, event domain.BoardEvent) kafka.Message {
	t.Helper()
	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return kafka.Message{Value: payload}
}

func TestConsumer_Start(t *testing.T) {
	reader := &queueReader{
		errs: []error{errors.New("leader not available")},
		messages: []kafka.Message{
			encode(t, domain.BoardEvent{Type: domain.EventBookingCreated, BranchID: "1", TableIDs: []int{3}}),
			{Value: []byte(`{not json`)},
			encode(t, domain.BoardEvent{Type: "new_review"}),
			encode(t, domain.BoardEvent{Type: domain.EventTableReleased, BranchID: "1", TableIDs: []int{3}}),
		},
	}
	store := &recordingStore{}
	logger, hook := test.NewNullLogger()
	consumer := NewConsumer(reader, store, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		consumer.Start(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop after context cancellation")
	}

	if assert.Len(t, store.events, 2) {
		assert.Equal(t, domain.EventBookingCreated, store.events[0].Type)
		assert.Equal(t, domain.EventTableReleased, store.events[1].Type)
	}
	assert.NotEmpty(t, hook.AllEntries())
}

func TestConsumer_ProcessStoreError(t *testing.T) {
	store := &recordingStore{err: errors.New("redis error")}
	logger, hook := test.NewNullLogger()

	NewConsumer(nil, store, logger).Process(context.Background(), domain.BoardEvent{Type: domain.EventTablesJoined, TableIDs: []int{1, 2}})

	assert.Len(t, store.events, 1)
	assert.Equal(t, "error recording board activity", hook.LastEntry().Message)
}
