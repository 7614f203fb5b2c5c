package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"gridpulse/internal/models"
)

// SummaryStore caches performance summaries in redis with a short TTL. There
// is deliberately no invalidation on ingest; staleness is bounded by the TTL.
type SummaryStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSummaryStore returns redis-backed cache.
func NewSummaryStore(client *redis.Client, ttl time.Duration) *SummaryStore {
	return &SummaryStore{client: client, ttl: ttl}
}

func (s *SummaryStore) key(deviceID string) string {
	return fmt.Sprintf("performance:summary:%s", deviceID)
}

// GetSummary returns the cached summary or (nil, nil) on miss.
func (s *SummaryStore) GetSummary(ctx context.Context, deviceID string) (*models.PerformanceSummary, error) {
	result, err := s.client.Get(ctx, s.key(deviceID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var summary models.PerformanceSummary
	if err := json.Unmarshal([]byte(result), &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// SaveSummary caches the summary for the configured TTL.
func (s *SummaryStore) SaveSummary(ctx context.Context, deviceID string, summary *models.PerformanceSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(deviceID), data, s.ttl).Err()
}
