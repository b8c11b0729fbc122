// Package cache provides a small read-through Redis cache for
// per-user task lists. Cache failures degrade to the store and are
// never surfaced to callers.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/mek0124/TrackMasterPro/internal/models"
)

type TaskLists struct {
	logger zerolog.Logger
	client *redis.Client
	ttl    time.Duration
}

func NewTaskLists(
	logger zerolog.Logger,
	client *redis.Client,
	ttl time.Duration,
) *TaskLists {
	return &TaskLists{
		logger: logger,
		client: client,
		ttl:    ttl,
	}
}

func taskListKey(ownerID int64) string {
	return fmt.Sprintf("tasks:user:%d", ownerID)
}

func (c *TaskLists) Get(ctx context.Context, ownerID int64) ([]*models.Task, bool) {
	data, err := c.client.Get(ctx, taskListKey(ownerID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().
				Err(err).
				Int64("user_id", ownerID).
				Msg("failed to read task list from cache")
		}
		return nil, false
	}

	var tasks []*models.Task
	err = json.Unmarshal(data, &tasks)
	if err != nil {
		c.logger.Warn().
			Err(err).
			Int64("user_id", ownerID).
			Msg("failed to decode cached task list")
		return nil, false
	}

	return tasks, true
}

func (c *TaskLists) Set(ctx context.Context, ownerID int64, tasks []*models.Task) {
	data, err := json.Marshal(tasks)
	if err != nil {
		c.logger.Warn().
			Err(err).
			Int64("user_id", ownerID).
			Msg("failed to encode task list for cache")
		return
	}

	err = c.client.Set(ctx, taskListKey(ownerID), data, c.ttl).Err()
	if err != nil {
		c.logger.Warn().
			Err(err).
			Int64("user_id", ownerID).
			Msg("failed to write task list to cache")
	}
}

func (c *TaskLists) Invalidate(ctx context.Context, ownerID int64) {
	err := c.client.Del(ctx, taskListKey(ownerID)).Err()
	if err != nil {
		c.logger.Warn().
			Err(err).
			Int64("user_id", ownerID).
			Msg("failed to invalidate cached task list")
	}
}
