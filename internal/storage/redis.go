package storage

import (
	"context"
	"fmt"
	"time"

	go_json "github.com/goccy/go-json"
	"github.com/kestrelhq/nfeed/internal/client/kestrel"
	"github.com/redis/go-redis/v9"
)

const (
	recordsKey = "nfeed:records"
	feedKey    = "nfeed:feed"
	readKey    = "nfeed:read"
	liveKey    = "nfeed:live"
)

type RedisConfig struct {
	URL string
}

// NewRedisClient parses the URL, connects, and verifies the connection.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

var _ NotificationStore = (*RedisStore)(nil)

// RedisStore persists the feed in redis: record JSON in a hash, a sorted
// set ordered by creation time for pagination, a set of read ids, and
// pub/sub for live fan-out across broker processes.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Add(ctx context.Context, n kestrel.Notification) error {
	data, err := go_json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, recordsKey, n.ID, string(data))
	pipe.ZAdd(ctx, feedKey, redis.Z{
		Score:  float64(n.CreatedAt.UnixMilli()),
		Member: n.ID,
	})
	if n.Read {
		pipe.SAdd(ctx, readKey, n.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to add notification: %w", err)
	}

	return s.publish(ctx, Event{Kind: EventNewNotification, Notification: &n})
}

func (s *RedisStore) List(ctx context.Context, page, pageSize int) (*ListResult, error) {
	if page < 1 {
		page = 1
	}
	offset := int64((page - 1) * pageSize)

	total, err := s.client.ZCard(ctx, feedKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to count feed: %w", err)
	}

	ids, err := s.client.ZRevRange(ctx, feedKey, offset, offset+int64(pageSize)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to page feed: %w", err)
	}

	result := &ListResult{
		TotalCount: int(total),
		HasMore:    offset+int64(len(ids)) < total,
	}

	if len(ids) > 0 {
		rows, err := s.client.HMGet(ctx, recordsKey, ids...).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to load records: %w", err)
		}
		for _, row := range rows {
			raw, ok := row.(string)
			if !ok {
				continue
			}
			var n kestrel.Notification
			if err := go_json.Unmarshal([]byte(raw), &n); err != nil {
				continue
			}
			read, err := s.client.SIsMember(ctx, readKey, n.ID).Result()
			if err != nil {
				return nil, fmt.Errorf("failed to check read state: %w", err)
			}
			n.Read = n.Read || read
			result.Records = append(result.Records, n)
		}
	}

	readCount, err := s.client.SCard(ctx, readKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to count read set: %w", err)
	}
	unread := int(total - readCount)
	if unread < 0 {
		unread = 0
	}
	result.UnreadCount = unread

	return result, nil
}

func (s *RedisStore) SetRead(ctx context.Context, id string, read bool) error {
	if read {
		added, err := s.client.SAdd(ctx, readKey, id).Result()
		if err != nil {
			return fmt.Errorf("failed to mark read: %w", err)
		}
		if added > 0 {
			return s.publish(ctx, Event{Kind: EventNotificationRead, NotificationID: id})
		}
		return nil
	}

	if err := s.client.SRem(ctx, readKey, id).Err(); err != nil {
		return fmt.Errorf("failed to mark unread: %w", err)
	}
	return nil
}

func (s *RedisStore) MarkAllRead(ctx context.Context) error {
	ids, err := s.client.ZRange(ctx, feedKey, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to list feed: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	members := make([]any, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	if err := s.client.SAdd(ctx, readKey, members...).Err(); err != nil {
		return fmt.Errorf("failed to mark all read: %w", err)
	}

	for _, id := range ids {
		if err := s.publish(ctx, Event{Kind: EventNotificationRead, NotificationID: id}); err != nil {
			return err
		}
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	pipe.ZRem(ctx, feedKey, id)
	pipe.HDel(ctx, recordsKey, id)
	pipe.SRem(ctx, readKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}

func (s *RedisStore) Subscribe(ctx context.Context) (<-chan Event, func(), error) {
	pubsub := s.client.Subscribe(ctx, liveKey)

	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	eventCh := make(chan Event)

	go func() {
		defer close(eventCh)
		ch := pubsub.Channel()

		for msg := range ch {
			var event Event
			if err := go_json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue
			}

			select {
			case eventCh <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	unsubscribe := func() {
		_ = pubsub.Close()
	}

	return eventCh, unsubscribe, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) publish(ctx context.Context, event Event) error {
	data, err := go_json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := s.client.Publish(ctx, liveKey, string(data)).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
