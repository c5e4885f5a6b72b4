package preapproval

import (
	"context"
	"time"

	"societyhub/internal/pkg/logger"
)

// ScheduleExpirySweep runs ExpireOverdue every interval until ctx is done or
// the returned channel is closed. A non-positive interval disables it and
// returns nil.
func (s *Service) ScheduleExpirySweep(ctx context.Context, interval time.Duration) chan struct{} {
	if interval <= 0 {
		logger.Info("pre-approval expiry sweep disabled")
		return nil
	}

	stopCh := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				_, _ = s.ExpireOverdue(ctx)
			case <-stopCh:
				logger.Info("pre-approval expiry sweep stopped")
				return
			case <-ctx.Done():
				logger.Info("pre-approval expiry sweep stopped", "reason", ctx.Err())
				return
			}
		}
	}()

	logger.Info("pre-approval expiry sweep started", "interval", interval.String())
	return stopCh
}
