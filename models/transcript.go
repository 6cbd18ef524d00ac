package models

import "time"

// Transcript roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Transcript is one utterance within a call, append-only.
type Transcript struct {
	CallID    string    `bson:"call_id" json:"call_id"`
	Role      string    `bson:"role" json:"role"` // "user" or "assistant"
	Text      string    `bson:"text" json:"text"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}
