package models

import "time"

// Booking represents a confirmed reservation record.
type Booking struct {
	ID          int       `bson:"id" json:"id"`                     // Unique booking identifier, monotonically assigned
	PhoneNumber string    `bson:"phone_number" json:"phone_number"` // Format: 123-456-7890
	Time        string    `bson:"time" json:"time"`                 // Canonical "H:MM AM/PM" (or "H AM/PM") string
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}
