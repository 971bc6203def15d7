package store

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StartAutoRefresh reloads the store every interval until ctx is cancelled.
// A tick that lands while a load is running is skipped by LoadAll itself.
func (s *Store) StartAutoRefresh(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.Refresh(ctx); err != nil {
					s.log.Warn("auto refresh failed", zap.Error(err))
				}
			}
		}
	}()
}
