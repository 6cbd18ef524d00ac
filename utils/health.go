package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"

	"voicedesk/config"
)

// HealthStatus reports each dependency a live call path needs: Mongo for
// call and booking records, the generic cache, the dialogue state cache and
// the reminder queue Redis.
type HealthStatus struct {
	Mongo      bool      `json:"mongo"`
	Cache      bool      `json:"cache"`
	StateCache bool      `json:"state_cache"`
	Queue      bool      `json:"queue"`
	CheckedAt  time.Time `json:"checked_at"`
}

// HealthTargets holds the clients the monitor pings. A nil entry reports
// as unhealthy rather than being skipped.
type HealthTargets struct {
	Mongo      *mongo.Client
	Cache      *redis.Client
	StateCache *redis.Client
	Queue      *redis.Client
}

var (
	currentHealth HealthStatus
	healthMu      sync.RWMutex
)

// GetHealthStatus returns the latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	healthMu.RLock()
	defer healthMu.RUnlock()
	return currentHealth
}

func checkHealth(ctx context.Context, targets HealthTargets) HealthStatus {
	status := HealthStatus{CheckedAt: time.Now()}
	if targets.Mongo != nil {
		status.Mongo = targets.Mongo.Ping(ctx, nil) == nil
	}
	if targets.Cache != nil {
		status.Cache = targets.Cache.Ping(ctx).Err() == nil
	}
	if targets.StateCache != nil {
		status.StateCache = targets.StateCache.Ping(ctx).Err() == nil
	}
	if targets.Queue != nil {
		status.Queue = targets.Queue.Ping(ctx).Err() == nil
	}
	return status
}

// StartHealthMonitor pings the dependencies on the configured interval and
// keeps the latest snapshot in memory for the health endpoint.
func StartHealthMonitor(targets HealthTargets) {
	interval := time.Duration(config.AppConfig.HealthIntervalSecs) * time.Second
	if interval <= 0 {
		interval = 60 * time.Second
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		ctx := context.Background()
		for range ticker.C {
			status := checkHealth(ctx, targets)
			healthMu.Lock()
			currentHealth = status
			healthMu.Unlock()
		}
	}()
}
