package cronjobs

import (
	"fmt"
	"time"

	"go-safeher/session"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// InitCronJobs schedules the idle session sweep and starts the scheduler.
// The caller stops it on shutdown.
func InitCronJobs(store *session.Store, schedule string, idle time.Duration, logger *zap.Logger) (*cron.Cron, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("starting cron jobs", zap.String("schedule", schedule), zap.Duration("idle_timeout", idle))
	c := cron.New()

	// Session sweep: drop conversations nobody has touched for idle
	_, err := c.AddFunc(schedule, func() {
		removed := store.Sweep(idle)
		logger.Debug("cron: session sweep ran", zap.Int("removed", removed), zap.Int("active", store.Len()))
	})
	if err != nil {
		return nil, fmt.Errorf("scheduling session sweep %q: %w", schedule, err)
	}

	c.Start()
	return c, nil
}
