package dialogue

import (
	"context"
	"fmt"

	"voicedesk/models"

	"go.uber.org/zap"
)

const createExtractionPrompt = `Extract the booking details from this message: '%s'.
Return a JSON object with keys: 'phone_number', 'time'.
If a value is not found, use null.
For 'time', format as 'H AM/PM' or 'H:MM AM/PM'.
For 'phone_number', expect formats like '123-456-7890'.`

// createBookingNode collects a time and phone number across turns, then runs
// a confirmation handshake before anything is persisted.
func (e *Engine) createBookingNode(ctx context.Context, st models.DialogueState) models.DialogueState {
	if st.AwaitingConfirmation {
		return e.finishCreate(ctx, st)
	}

	details := e.extractDetails(ctx, fmt.Sprintf(createExtractionPrompt, st.Text))

	phone := details.Phone
	if phone == "" {
		phone = st.BookingPhone
	}
	rawTime := details.Time
	if rawTime == "" {
		rawTime = st.BookingTime
	}
	var newTime string
	if rawTime != "" {
		newTime = NormalizeTime(rawTime)
	}

	switch {
	case phone != "" && !ValidPhone(phone):
		// Invalid phone is discarded; a previously validated one survives.
		st.Response = "Phone number should be in format 123-456-7890. Could you repeat it?"
		st.BookingTime = newTime
		st.AwaitingConfirmation = false
		st.InBookingFlow = true
	case newTime != "" && !ValidTime(newTime):
		st.Response = "Time should be like '7 PM' or '7:00 PM'. Could you repeat it?"
		st.BookingPhone = phone
		st.AwaitingConfirmation = false
		st.InBookingFlow = true
	case phone == "" && newTime == "":
		st.Response = "What time would you like, and what's your phone number?"
		st.AwaitingConfirmation = false
		st.InBookingFlow = true
	case phone == "":
		st.Response = fmt.Sprintf("Got %s for your booking. Can I have your phone number?", newTime)
		st.BookingTime = newTime
		st.AwaitingConfirmation = false
		st.InBookingFlow = true
	case newTime == "":
		st.Response = fmt.Sprintf("Thanks for the number, %s. What time would you like?", phone)
		st.BookingPhone = phone
		st.AwaitingConfirmation = false
		st.InBookingFlow = true
	default:
		st.Response = fmt.Sprintf("Booking for %s under %s. Does that sound right?", newTime, phone)
		st.BookingTime = newTime
		st.BookingPhone = phone
		st.AwaitingConfirmation = true
		st.InBookingFlow = true
	}
	return st
}

func (e *Engine) finishCreate(ctx context.Context, st models.DialogueState) models.DialogueState {
	if e.detectConfirmation(ctx, st.Text) != "yes" {
		st.Response = "Okay, let's try again. What time would you like to book for?"
		st.BookingTime, st.BookingPhone = "", ""
		st.AwaitingConfirmation = false
		st.InBookingFlow = true
		return st
	}

	id, err := e.bookings.NextID(ctx)
	if err == nil {
		err = e.bookings.Create(ctx, &models.Booking{
			ID:          id,
			PhoneNumber: st.BookingPhone,
			Time:        st.BookingTime,
		})
	}
	if err != nil {
		e.logger.Error("failed to save booking", zap.Error(err))
		st.Response = "Sorry, there was an issue saving your booking. Please try again."
		// Collected fields survive so the caller can retry without re-dictating.
		st.AwaitingConfirmation = false
		st.InBookingFlow = true
		return st
	}

	e.logger.Info("booking saved",
		zap.Int("booking_id", id),
		zap.String("phone", st.BookingPhone),
		zap.String("time", st.BookingTime))

	st.Response = fmt.Sprintf(
		"Great, your booking is confirmed with ID %d for %s. We'll call %s to confirm. Is there anything else I can help you with?",
		id, st.BookingTime, st.BookingPhone)
	st.BookingTime, st.BookingPhone, st.BookingID = "", "", ""
	st.AwaitingConfirmation = false
	st.InBookingFlow = false
	st.AwaitingFurtherAssistance = true
	return st
}
