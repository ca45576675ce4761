package redisstore

import (
	"context"
	"time"
)

const retryBackoff = 50 * time.Millisecond

// retry runs fn up to attempts times with linearly growing backoff. The
// token cache issues small single-key commands; a couple of quick retries
// ride out a failover blip without holding a ping request for long.
func retry(ctx context.Context, attempts int, fn func() error) error {
	var err error

	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryBackoff * time.Duration(i+1)):
		}
	}

	return err
}
