package cache

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"rscasurvey/internal/model"
)

const recorderKey = "eeg:active"

// RecorderCache mirrors the recorder slot so other processes can see what is being recorded.
// The key has no TTL; Clear removes it when the slot empties.
type RecorderCache interface {
	SetActive(ctx context.Context, slot *model.RecorderSlot) error
	GetActive(ctx context.Context) (*model.RecorderSlot, error)
	Clear(ctx context.Context) error
}

type recorderCache struct {
	client *redis.Client
}

func NewRecorderCache(client *redis.Client) RecorderCache {
	return &recorderCache{client: client}
}

func (c *recorderCache) SetActive(ctx context.Context, slot *model.RecorderSlot) error {
	data, err := json.Marshal(slot)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, recorderKey, data, 0).Err()
}

func (c *recorderCache) GetActive(ctx context.Context) (*model.RecorderSlot, error) {
	data, err := c.client.Get(ctx, recorderKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var slot model.RecorderSlot
	if err := json.Unmarshal([]byte(data), &slot); err != nil {
		return nil, err
	}
	return &slot, nil
}

func (c *recorderCache) Clear(ctx context.Context) error {
	return c.client.Del(ctx, recorderKey).Err()
}
