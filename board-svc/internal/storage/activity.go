package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"tableboard/board-svc/internal/domain"

	"github.com/redis/go-redis/v9"
)

const activityTTL = 7 * 24 * time.Hour

// RedisActivityStore counts board events per branch and day, one hash field
// per event type.
type RedisActivityStore struct {
	client *redis.Client
}

func NewRedisActivityStore(client *redis.Client) *RedisActivityStore {
	return &RedisActivityStore{client: client}
}

func ActivityKey(branchID string, day time.Time) string {
	return RedisKey(branchID, "activity:"+day.Format("2006-01-02"))
}

func (s *RedisActivityStore) Record(ctx context.Context, event domain.BoardEvent) error {
	key := ActivityKey(event.BranchID, event.Timestamp)

	pipe := s.client.TxPipeline()
	pipe.HIncrBy(ctx, key, string(event.Type), 1)
	pipe.HIncrBy(ctx, key, "tables", int64(len(event.TableIDs)))
	pipe.Expire(ctx, key, activityTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record %s: %w", key, err)
	}
	return nil
}

func (s *RedisActivityStore) Daily(ctx context.Context, branchID string, day time.Time) (domain.ActivitySummary, error) {
	key := ActivityKey(branchID, day)
	summary := domain.ActivitySummary{
		BranchID: branchID,
		Date:     day.Format("2006-01-02"),
		Counts:   map[domain.EventType]int64{},
	}

	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return summary, fmt.Errorf("read %s: %w", key, err)
	}
	for field, raw := range fields {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		if field == "tables" {
			summary.TablesTouched = n
			continue
		}
		summary.Counts[domain.EventType(field)] = n
	}
	return summary, nil
}
