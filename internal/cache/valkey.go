package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"theater/internal/config"
	"theater/internal/models"
)

const weekMostPopularKey = "plays:week_most_popular"

// noPopularPlay marks a cached "no play qualifies" result
const noPopularPlay = "null"

// ValkeyClient caches the week-most-popular play summary. Seat availability
// is never cached.
type ValkeyClient struct {
	client rueidis.Client
	ttl    time.Duration
}

func NewValkeyClient(cfg config.ValkeyConfig) (*ValkeyClient, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:      []string{cfg.Addr},
		Password:         cfg.Password,
		SelectDB:         cfg.DB,
		DisableCache:     true,
		ConnWriteTimeout: 2 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Valkey: %w", err)
	}

	return &ValkeyClient{client: client, ttl: cfg.PopularityTTL}, nil
}

// GetWeekMostPopular reports ok=false on a cache miss. A hit may carry a nil
// ref when no play qualified at the time it was cached.
func (v *ValkeyClient) GetWeekMostPopular(ctx context.Context) (*models.PlayRef, bool, error) {
	raw, err := v.client.Do(ctx, v.client.B().Get().Key(weekMostPopularKey).Build()).ToString()
	if rueidis.IsRedisNil(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache lookup error: %w", err)
	}

	ref, err := decodePlayRef(raw)
	if err != nil {
		return nil, false, err
	}
	return ref, true, nil
}

func (v *ValkeyClient) SetWeekMostPopular(ctx context.Context, ref *models.PlayRef) error {
	raw, err := encodePlayRef(ref)
	if err != nil {
		return err
	}

	cmd := v.client.B().Set().Key(weekMostPopularKey).Value(raw).ExSeconds(int64(v.ttl / time.Second)).Build()
	if err := v.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("cache write error: %w", err)
	}
	return nil
}

func (v *ValkeyClient) InvalidateWeekMostPopular(ctx context.Context) error {
	if err := v.client.Do(ctx, v.client.B().Del().Key(weekMostPopularKey).Build()).Error(); err != nil {
		return fmt.Errorf("cache invalidate error: %w", err)
	}
	return nil
}

func (v *ValkeyClient) Close() error {
	v.client.Close()
	return nil
}

func encodePlayRef(ref *models.PlayRef) (string, error) {
	if ref == nil {
		return noPopularPlay, nil
	}
	b, err := json.Marshal(ref)
	if err != nil {
		return "", fmt.Errorf("failed to encode play ref: %w", err)
	}
	return string(b), nil
}

func decodePlayRef(raw string) (*models.PlayRef, error) {
	if raw == noPopularPlay {
		return nil, nil
	}
	ref := &models.PlayRef{}
	if err := json.Unmarshal([]byte(raw), ref); err != nil {
		return nil, fmt.Errorf("invalid cached play ref: %w", err)
	}
	return ref, nil
}
