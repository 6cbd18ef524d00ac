package models

import "time"

// DialogueState carries the conversation context of one call across turns.
// Empty strings mean "not collected yet"; string fields are tentative until
// a confirmation lands them in the booking store.
type DialogueState struct {
	Text     string `bson:"text" json:"text"`         // Latest recognized utterance, overwritten each turn
	Intent   string `bson:"intent" json:"intent"`     // Last classified intent label
	Response string `bson:"response" json:"response"` // Last generated reply

	BookingTime  string `bson:"booking_time,omitempty" json:"booking_time,omitempty"`
	BookingPhone string `bson:"booking_phone,omitempty" json:"booking_phone,omitempty"`
	BookingID    string `bson:"booking_id,omitempty" json:"booking_id,omitempty"`

	AwaitingConfirmation      bool `bson:"awaiting_confirmation" json:"awaiting_confirmation"`
	InBookingFlow             bool `bson:"in_booking_flow" json:"in_booking_flow"`
	InUpdateFlow              bool `bson:"in_update_flow" json:"in_update_flow"`
	InRetrieveFlow            bool `bson:"in_retrieve_flow" json:"in_retrieve_flow"`
	AwaitingFurtherAssistance bool `bson:"awaiting_further_assistance" json:"awaiting_further_assistance"`
}

// StateSnapshot is the persisted form of a call's dialogue state.
type StateSnapshot struct {
	CallID    string        `bson:"call_id" json:"call_id"`
	State     DialogueState `bson:"state" json:"state"`
	UpdatedAt time.Time     `bson:"updated_at" json:"updated_at"`
}
