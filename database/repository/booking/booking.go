package bookingRepo

import (
	"context"

	"voicedesk/models"
)

// Repository defines persistence operations for bookings.
// Lookup methods return (nil, nil) when no booking matches: a miss is a
// normal dialogue branch, not an error.
type Repository interface {
	// NextID atomically allocates the next booking identifier.
	NextID(ctx context.Context) (int, error)
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id int) (*models.Booking, error)
	GetByPhone(ctx context.Context, phone string) (*models.Booking, error)
	Update(ctx context.Context, id int, phone, bookingTime string) error
	List(ctx context.Context, limit int64) ([]models.Booking, error)
}
