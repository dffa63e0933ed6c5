package main

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type healthProber interface {
	Health(ctx context.Context) map[string]string
}

// StartHealthCheckScheduler refreshes the cached database health on schedule.
// The caller stops the returned cron when shutting down.
func StartHealthCheckScheduler(schedule string, prober healthProber, log *logrus.Entry) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		stats := prober.Health(context.Background())
		if stats["status"] != "up" {
			log.WithField("error", stats["error"]).Warn("database health check failed")
			return
		}
		log.WithField("open_connections", stats["open_connections"]).Debug("database healthy")
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
