package models

// ReminderPayload is the queued payload for an outbound reminder call.
type ReminderPayload struct {
	BookingID int    `json:"booking_id"`
	Phone     string `json:"phone"`
	Time      string `json:"time"` // Canonical booking time string
}
