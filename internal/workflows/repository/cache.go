package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/workflows/domain"
)

const (
	listKeyPrefix      = "wf:list:"     // cached listings: wf:list:{all|project:{id}}
	listKeySet         = "wf:list:keys" // every listing key currently cached
	listGenKey         = "wf:list:gen"  // bumped by every invalidation
	eventChannelPrefix = "wf:events:"   // change events: wf:events:{workflow_id}
	defaultCacheTTL    = 5 * time.Minute
)

var errStaleGeneration = errors.New("listing generation changed")

// Cache keeps workflow listings in Redis and publishes change events.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func listKey(f domain.ListFilter) string {
	if f.ProjectID == 0 {
		return listKeyPrefix + "all"
	}
	return fmt.Sprintf("%sproject:%d", listKeyPrefix, f.ProjectID)
}

// EventChannel is the Pub/Sub channel carrying events for one workflow.
func EventChannel(workflowID int64) string {
	return fmt.Sprintf("%s%d", eventChannelPrefix, workflowID)
}

// GetList returns the cached listing; ok is false on a miss.
func (c *Cache) GetList(ctx context.Context, f domain.ListFilter) ([]domain.Workflow, bool, error) {
	data, err := c.client.Get(ctx, listKey(f)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cached workflows: %w", err)
	}

	var list []domain.Workflow
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached workflows: %w", err)
	}
	return list, true, nil
}

// Generation returns the listing generation. Read it before loading the
// listing from the store and hand it to SetList.
func (c *Cache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, listGenKey).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read cache generation: %w", err)
	}
	return gen, nil
}

// SetList stores a listing loaded at generation gen. The write is dropped
// when an Invalidate happened since, so a stale snapshot never lands.
func (c *Cache) SetList(ctx context.Context, f domain.ListFilter, gen int64, list []domain.Workflow) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to marshal workflows: %w", err)
	}

	key := listKey(f)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, listGenKey).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if cur != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, c.ttl)
			pipe.SAdd(ctx, listKeySet, key)
			return nil
		})
		return err
	}, listGenKey)

	switch {
	case err == nil, errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		return nil
	default:
		return fmt.Errorf("failed to cache workflows: %w", err)
	}
}

// Invalidate bumps the generation and drops every cached listing.
func (c *Cache) Invalidate(ctx context.Context) error {
	keys, err := c.client.SMembers(ctx, listKeySet).Result()
	if err != nil {
		return fmt.Errorf("failed to read cached keys: %w", err)
	}

	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, listGenKey)
	if len(keys) > 0 {
		pipe.Del(ctx, keys...)
	}
	pipe.Del(ctx, listKeySet)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to invalidate workflows: %w", err)
	}
	return nil
}

// Publish announces a workflow change. The event id is assigned here when missing.
func (c *Cache) Publish(ctx context.Context, ev domain.WorkflowEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := c.client.Publish(ctx, EventChannel(ev.WorkflowID), data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Subscribe listens for events of one workflow. The caller closes the subscription.
func (c *Cache) Subscribe(ctx context.Context, workflowID int64) *redis.PubSub {
	return c.client.Subscribe(ctx, EventChannel(workflowID))
}

// Events decodes the Pub/Sub stream of one workflow until ctx is done.
// Malformed payloads are skipped.
func (c *Cache) Events(ctx context.Context, workflowID int64) (<-chan domain.WorkflowEvent, error) {
	sub := c.Subscribe(ctx, workflowID)
	// wait for the subscription to be confirmed so no publish is missed
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to workflow events: %w", err)
	}

	out := make(chan domain.WorkflowEvent)
	go func() {
		defer close(out)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev domain.WorkflowEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
