package models

import "time"

// Call status values.
const (
	CallStatusInitiated = "initiated"
	CallStatusCompleted = "completed"
)

// Call represents a single phone call. ID is the join key for transcripts
// and dialogue state snapshots; the telephony SID is kept only here.
type Call struct {
	ID          string     `bson:"id" json:"id"`   // Internal UUID
	SID         string     `bson:"sid" json:"sid"` // Telephony provider call SID
	CallerPhone string     `bson:"caller_phone,omitempty" json:"caller_phone,omitempty"`
	StartTime   time.Time  `bson:"start_time" json:"start_time"`
	EndTime     *time.Time `bson:"end_time,omitempty" json:"end_time,omitempty"`
	Status      string     `bson:"status" json:"status"`
}
