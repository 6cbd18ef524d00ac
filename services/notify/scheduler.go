package notify

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"voicedesk/config"
	"voicedesk/models"
)

// Scheduler enqueues delayed reminder tasks.
type Scheduler struct {
	client *asynq.Client
	lead   time.Duration
	logger *zap.Logger
	now    func() time.Time
}

func NewScheduler(logger *zap.Logger) *Scheduler {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPass,
		DB:       config.AppConfig.RedisQueueDB,
	})
	lead := time.Duration(config.AppConfig.ReminderLeadMin) * time.Minute
	if lead <= 0 {
		lead = 60 * time.Minute
	}
	return &Scheduler{client: client, lead: lead, logger: logger, now: time.Now}
}

// Schedule enqueues a reminder call ahead of the booking time. Bookings whose
// reminder window has already passed are skipped.
func (s *Scheduler) Schedule(booking *models.Booking) error {
	fireAt, err := s.fireTime(booking.Time)
	if err != nil {
		return fmt.Errorf("failed to resolve reminder time for booking %d: %w", booking.ID, err)
	}
	if fireAt.Before(s.now()) {
		s.logger.Info("reminder window already passed, skipping",
			zap.Int("booking_id", booking.ID), zap.String("time", booking.Time))
		return nil
	}

	task, opts, err := NewReminderTask(models.ReminderPayload{
		BookingID: booking.ID,
		Phone:     booking.PhoneNumber,
		Time:      booking.Time,
	}, fireAt)
	if err != nil {
		return fmt.Errorf("failed to build reminder task: %w", err)
	}
	if _, err := s.client.Enqueue(task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue reminder: %w", err)
	}

	s.logger.Info("reminder scheduled",
		zap.Int("booking_id", booking.ID),
		zap.Time("fire_at", fireAt))
	return nil
}

// fireTime maps a clock time like "7:00 PM" to its next occurrence, minus the
// configured lead. Bookings carry no date, so the next occurrence is assumed.
func (s *Scheduler) fireTime(bookingTime string) (time.Time, error) {
	clock, err := time.Parse("3:04 PM", bookingTime)
	if err != nil {
		clock, err = time.Parse("3 PM", bookingTime)
		if err != nil {
			return time.Time{}, err
		}
	}

	now := s.now()
	occurrence := time.Date(now.Year(), now.Month(), now.Day(),
		clock.Hour(), clock.Minute(), 0, 0, now.Location())
	if occurrence.Before(now) {
		occurrence = occurrence.Add(24 * time.Hour)
	}
	return occurrence.Add(-s.lead), nil
}

func (s *Scheduler) Close() error {
	return s.client.Close()
}
