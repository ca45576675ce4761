package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MonitorRef is the cached resolution of a ping token. The ingest hot path
// needs only the id and interval; everything else stays in the DB.
type MonitorRef struct {
	MonitorID   uuid.UUID `json:"monitor_id"`
	IntervalSec int32     `json:"interval_sec"`
}

func tokenKey(token string) string {
	return fmt.Sprintf("monitor:token:%s", token)
}

// GetMonitorRef returns (nil, nil) on a cache miss.
func (c *Client) GetMonitorRef(ctx context.Context, token string) (*MonitorRef, error) {
	val, err := c.rdb.Get(ctx, tokenKey(token)).Result()
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var ref MonitorRef
	if err := json.Unmarshal([]byte(val), &ref); err != nil {
		// corrupted entry, drop it and treat as miss
		_ = c.rdb.Del(ctx, tokenKey(token)).Err()
		return nil, nil
	}
	return &ref, nil
}

func (c *Client) SetMonitorRef(ctx context.Context, token string, ref MonitorRef, ttl time.Duration) error {
	data, err := json.Marshal(ref)
	if err != nil {
		return err
	}

	return retry(ctx, 3, func() error {
		return c.rdb.Set(ctx, tokenKey(token), data, ttl).Err()
	})
}

func (c *Client) DelMonitorRef(ctx context.Context, token string) error {
	return retry(ctx, 3, func() error {
		return c.rdb.Del(ctx, tokenKey(token)).Err()
	})
}
