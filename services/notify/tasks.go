// Package notify schedules and delivers booking reminder calls: a reminder
// task is enqueued when a booking is confirmed and a worker places the
// outbound call when it fires.
package notify

import (
	"encoding/json"
	"time"

	"voicedesk/models"

	"github.com/hibiken/asynq"
)

const TypeReminderCall = "reminder:call"

// NewReminderTask builds the delayed task carrying the booking details.
func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeReminderCall, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}
	return task, opts, nil
}
