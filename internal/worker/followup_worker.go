package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/TaniaLee11/opsflow-circle-sub004/internal/service"
)

// StartFollowupWorker runs follow-up passes on a fixed cadence for
// deployments without an external scheduler. The HTTP trigger remains the
// primary invocation path; overlapping invocations are safe because each
// record is claimed with a conditional update.
func StartFollowupWorker(ctx context.Context, followups *service.FollowupService, interval time.Duration, logger *zap.Logger) {
	if followups == nil || interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		logger.Info("follow-up worker started", zap.Duration("interval", interval))
		for {
			select {
			case <-ctx.Done():
				logger.Info("follow-up worker stopped")
				return
			case <-ticker.C:
				if _, err := followups.RunPass(ctx); err != nil {
					logger.Error("follow-up pass failed", zap.Error(err))
				}
			}
		}
	}()
}
