package dialogue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"voicedesk/models"

	"go.uber.org/zap"
)

const classifierPrompt = `Classify the intent of this user message: '%s'.
Possible intents: create_booking, retrieve_booking, update_booking, general_info, confirm_assistance.
- 'create_booking': User wants to make a new reservation (e.g., "Book a table for 7 PM").
- 'retrieve_booking': User wants to check an existing booking (e.g., "What's my booking details?").
- 'update_booking': User wants to modify an existing booking (e.g., "Change my booking to 2 PM").
- 'general_info': User asks for general information or says goodbye (e.g., "What are your hours?").
- 'confirm_assistance': User responds to "Is there anything else I can help with?" (e.g., "No").

Context:
- Current state: %s.
- If awaiting_confirmation is true, treat responses like 'Yes', 'No' as part of create_booking.
- If in_booking_flow is true and has_booking_time is true but has_booking_phone is false, treat ambiguous responses as part of create_booking.
- If user says goodbye and awaiting_confirmation is false, prefer 'general_info'.

Respond with only the intent label.`

// classifyIntent tags the utterance with an intent and derives the flow flag
// updates from the label. Oracle failure defaults to general_info so the turn
// is never blocked.
func (e *Engine) classifyIntent(ctx context.Context, st models.DialogueState) models.DialogueState {
	summary, _ := json.Marshal(map[string]bool{
		"in_booking_flow":             st.InBookingFlow,
		"in_update_flow":              st.InUpdateFlow,
		"in_retrieve_flow":            st.InRetrieveFlow,
		"has_booking_time":            st.BookingTime != "",
		"has_booking_phone":           st.BookingPhone != "",
		"has_booking_id":              st.BookingID != "",
		"awaiting_confirmation":       st.AwaitingConfirmation,
		"awaiting_further_assistance": st.AwaitingFurtherAssistance,
	})

	intent := IntentGeneralInfo
	out, err := e.complete(ctx, "You are an intent classifier.", fmt.Sprintf(classifierPrompt, st.Text, summary))
	if err != nil {
		e.logger.Warn("intent classification failed, defaulting to general_info", zap.Error(err))
	} else {
		intent = strings.TrimSpace(out)
	}
	e.logger.Debug("classified intent", zap.String("intent", intent), zap.String("text", st.Text))

	// A fresh create_booking (not answering a pending confirmation) restarts
	// the confirmation handshake.
	resetConfirmation := intent == IntentCreateBooking && !st.AwaitingConfirmation

	out2 := st
	out2.Intent = intent
	// Booking context is sticky: it survives any intent except general_info,
	// unless a confirmation is pending.
	out2.InBookingFlow = intent == IntentCreateBooking ||
		(st.InBookingFlow && !st.AwaitingConfirmation && intent != IntentGeneralInfo)
	out2.InUpdateFlow = intent == IntentUpdateBooking
	out2.InRetrieveFlow = intent == IntentRetrieveBooking
	if resetConfirmation {
		out2.AwaitingConfirmation = false
	}
	out2.AwaitingFurtherAssistance = intent == IntentConfirmAssistance && !st.InBookingFlow
	return out2
}
