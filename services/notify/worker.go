package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"voicedesk/config"
	"voicedesk/models"
)

// StartReminderWorker runs the reminder queue consumer in the background.
// Each task places one outbound call to the booked number.
func StartReminderWorker(caller *Caller, logger *zap.Logger) {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     config.AppConfig.RedisAddr,
			Password: config.AppConfig.RedisPass,
			DB:       config.AppConfig.RedisQueueDB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeReminderCall, handleReminderTask(caller, logger))

	go func() {
		logger.Info("starting reminder worker")
		const maxAttempts = 5
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			err := srv.Run(mux)
			if err == nil {
				return
			}
			logger.Error("reminder worker failed to start",
				zap.Int("attempt", attempt), zap.Error(err))
			if attempt == maxAttempts {
				logger.Fatal("reminder worker exhausted retries")
			}
			time.Sleep(time.Duration(attempt*2) * time.Second)
		}
	}()
}

func handleReminderTask(caller *Caller, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("invalid reminder payload", zap.Error(err))
			return err
		}

		message := fmt.Sprintf(
			"Hello! This is a reminder for your booking number %d at %s. See you soon!",
			p.BookingID, p.Time)
		if err := caller.Call(p.Phone, message); err != nil {
			logger.Error("reminder call failed",
				zap.Int("booking_id", p.BookingID), zap.Error(err))
			return err
		}

		logger.Info("reminder call placed",
			zap.Int("booking_id", p.BookingID), zap.String("phone", p.Phone))
		return nil
	}
}
