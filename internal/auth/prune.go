package auth

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ayush/argumetrics/internal/metrics"
)

// StartPruner sweeps expired sessions every interval until ctx is done.
// It blocks; run it in its own goroutine.
func StartPruner(ctx context.Context, p Pruner, interval time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pruned, err := p.Prune(ctx)
			if err != nil {
				log.Error("session prune failed", zap.Error(err))
				continue
			}
			if pruned > 0 {
				metrics.SessionsPrunedTotal.Add(float64(pruned))
				log.Info("pruned expired sessions", zap.Int64("count", pruned))
			}
		}
	}
}
