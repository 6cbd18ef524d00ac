package notify

import (
	"context"

	"go.uber.org/zap"

	"voicedesk/models"
	"voicedesk/services/dialogue"
)

// ReminderStore decorates a booking store so confirmed writes schedule a
// reminder call. Scheduling failures are logged, never surfaced; the booking
// itself has already been saved.
type ReminderStore struct {
	dialogue.BookingStore
	scheduler *Scheduler
	logger    *zap.Logger
}

func NewReminderStore(store dialogue.BookingStore, scheduler *Scheduler, logger *zap.Logger) *ReminderStore {
	return &ReminderStore{BookingStore: store, scheduler: scheduler, logger: logger}
}

func (r *ReminderStore) Create(ctx context.Context, booking *models.Booking) error {
	if err := r.BookingStore.Create(ctx, booking); err != nil {
		return err
	}
	if err := r.scheduler.Schedule(booking); err != nil {
		r.logger.Warn("failed to schedule reminder", zap.Int("booking_id", booking.ID), zap.Error(err))
	}
	return nil
}

func (r *ReminderStore) Update(ctx context.Context, id int, phone, bookingTime string) error {
	if err := r.BookingStore.Update(ctx, id, phone, bookingTime); err != nil {
		return err
	}
	if err := r.scheduler.Schedule(&models.Booking{ID: id, PhoneNumber: phone, Time: bookingTime}); err != nil {
		r.logger.Warn("failed to reschedule reminder", zap.Int("booking_id", id), zap.Error(err))
	}
	return nil
}
