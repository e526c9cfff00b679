package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Handler processes one event.
type Handler func(ctx context.Context, event Event) error

// Subscriber drains a stream through a consumer group and hands every event
// to Handler. Delivery is single-attempt: a message is acked whether or not
// Handler succeeds. Messages left pending by a consumer that died before
// acking are claimed and delivered once they have been idle for ClaimIdle.
type Subscriber struct {
	client    *redis.Client
	cfg       SubscriberConfig
	lastClaim time.Time
}

type SubscriberConfig struct {
	Group         string
	Consumer      string
	Stream        string
	Handler       Handler
	BatchSize     int64
	BlockDuration time.Duration
	ClaimIdle     time.Duration
}

func NewSubscriber(client *redis.Client, cfg SubscriberConfig) *Subscriber {
	if cfg.Stream == "" {
		cfg.Stream = BankingEventsStream
	}
	if cfg.Consumer == "" {
		cfg.Consumer = defaultConsumerName()
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 10
	}
	if cfg.BlockDuration == 0 {
		cfg.BlockDuration = 5 * time.Second
	}
	if cfg.ClaimIdle == 0 {
		cfg.ClaimIdle = time.Minute
	}
	return &Subscriber{client: client, cfg: cfg}
}

// Start blocks until ctx is cancelled.
func (s *Subscriber) Start(ctx context.Context) error {
	// The group is created at the tail, so events published before the first start are skipped.
	err := s.client.XGroupCreateMkStream(ctx, s.cfg.Stream, s.cfg.Group, "$").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create consumer group %s: %w", s.cfg.Group, err)
	}
	log.Printf("Relaying %s as %s/%s", s.cfg.Stream, s.cfg.Group, s.cfg.Consumer)

	for ctx.Err() == nil {
		if time.Since(s.lastClaim) >= s.cfg.ClaimIdle {
			s.lastClaim = time.Now()
			if err := s.reclaim(ctx); err != nil && ctx.Err() == nil {
				log.Printf("Failed to claim stale events: %v", err)
			}
		}

		if err := s.poll(ctx); err != nil && ctx.Err() == nil {
			log.Printf("Failed to read %s: %v", s.cfg.Stream, err)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
	}

	log.Printf("Stopped relaying %s", s.cfg.Stream)
	return ctx.Err()
}

func (s *Subscriber) poll(ctx context.Context) error {
	streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    s.cfg.Group,
		Consumer: s.cfg.Consumer,
		Streams:  []string{s.cfg.Stream, ">"},
		Count:    s.cfg.BatchSize,
		Block:    s.cfg.BlockDuration,
	}).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}

	for _, stream := range streams {
		s.deliver(ctx, stream.Messages)
	}
	return nil
}

func (s *Subscriber) reclaim(ctx context.Context) error {
	start := "0-0"
	for {
		messages, next, err := s.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   s.cfg.Stream,
			Group:    s.cfg.Group,
			Consumer: s.cfg.Consumer,
			MinIdle:  s.cfg.ClaimIdle,
			Start:    start,
			Count:    s.cfg.BatchSize,
		}).Result()
		if err != nil {
			return err
		}
		if len(messages) > 0 {
			log.Printf("Claimed %d stale events from %s", len(messages), s.cfg.Stream)
			s.deliver(ctx, messages)
		}
		if next == "0-0" || next == "" {
			return nil
		}
		start = next
	}
}

func (s *Subscriber) deliver(ctx context.Context, messages []redis.XMessage) {
	for _, message := range messages {
		event, err := decodeMessage(message)
		if err == nil {
			err = s.cfg.Handler(ctx, event)
		}
		if err != nil {
			log.Printf("Dropping event %s: %v", message.ID, err)
		}

		if err := s.client.XAck(ctx, s.cfg.Stream, s.cfg.Group, message.ID).Err(); err != nil {
			log.Printf("Failed to ack event %s: %v", message.ID, err)
		}
	}
}

func defaultConsumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}

func decodeMessage(message redis.XMessage) (Event, error) {
	var event Event
	raw, ok := message.Values["event"].(string)
	if !ok {
		return event, fmt.Errorf("message %s has no event field", message.ID)
	}
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		return event, fmt.Errorf("decode event %s: %w", message.ID, err)
	}
	return event, nil
}
