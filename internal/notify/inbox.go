package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultInboxSize bounds how many undrained notices a session keeps.
const DefaultInboxSize = 50

// MemoryInbox keeps notifications in process memory.
type MemoryInbox struct {
	mu    sync.Mutex
	size  int
	boxes map[string][]Notification
}

func NewMemoryInbox(size int) *MemoryInbox {
	if size <= 0 {
		size = DefaultInboxSize
	}
	return &MemoryInbox{size: size, boxes: make(map[string][]Notification)}
}

func (m *MemoryInbox) Notify(_ context.Context, n Notification) error {
	if n.SessionID == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	box := append(m.boxes[n.SessionID], n)
	if len(box) > m.size {
		box = box[len(box)-m.size:]
	}
	m.boxes[n.SessionID] = box
	return nil
}

func (m *MemoryInbox) Drain(_ context.Context, sessionID string) ([]Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	box := m.boxes[sessionID]
	delete(m.boxes, sessionID)
	if box == nil {
		box = []Notification{}
	}
	return box, nil
}

// RedisInbox keeps notifications in a capped redis list per session so every
// portal instance sees them.
type RedisInbox struct {
	client *redis.Client
	size   int64
	ttl    time.Duration
}

func NewRedisInbox(client *redis.Client, size int, ttl time.Duration) *RedisInbox {
	if size <= 0 {
		size = DefaultInboxSize
	}
	return &RedisInbox{client: client, size: int64(size), ttl: ttl}
}

func inboxKey(sessionID string) string {
	return fmt.Sprintf("portal:inbox:%s", sessionID)
}

func (r *RedisInbox) Notify(ctx context.Context, n Notification) error {
	if n.SessionID == "" {
		return nil
	}
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	key := inboxKey(n.SessionID)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, data)
		pipe.LTrim(ctx, key, -r.size, -1)
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store notification in redis: %w", err)
	}
	return nil
}

func (r *RedisInbox) Drain(ctx context.Context, sessionID string) ([]Notification, error) {
	key := inboxKey(sessionID)
	var rangeCmd *redis.StringSliceCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		rangeCmd = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to drain inbox: %w", err)
	}
	out := make([]Notification, 0, len(rangeCmd.Val()))
	for _, raw := range rangeCmd.Val() {
		var n Notification
		if err := json.Unmarshal([]byte(raw), &n); err != nil {
			continue
		}
		n.SessionID = sessionID
		out = append(out, n)
	}
	return out, nil
}
