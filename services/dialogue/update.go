package dialogue

import (
	"context"
	"fmt"
	"strconv"

	"voicedesk/models"

	"go.uber.org/zap"
)

const updateExtractionPrompt = `Extract the booking update details from this message: '%s'.
Return a JSON object with keys: 'phone_number', 'time', 'booking_id'.
If a value is not found, use null.`

// updateBookingNode mirrors the create node's two phases: locate the target
// booking and collect new values, then confirm before mutating anything.
func (e *Engine) updateBookingNode(ctx context.Context, st models.DialogueState) models.DialogueState {
	if st.AwaitingConfirmation {
		return e.finishUpdate(ctx, st)
	}

	details := e.extractDetails(ctx, fmt.Sprintf(updateExtractionPrompt, st.Text))

	phone := details.Phone
	if phone == "" {
		phone = st.BookingPhone
	}
	rawTime := details.Time
	if rawTime == "" {
		rawTime = st.BookingTime
	}
	bookingID := details.BookingID
	if bookingID == "" {
		bookingID = st.BookingID
	}
	var newTime string
	if rawTime != "" {
		newTime = NormalizeTime(rawTime)
	}

	if phone == "" && bookingID == "" {
		st.Response = "Please provide your phone number or booking ID."
		st.BookingTime = newTime
		st.InUpdateFlow = true
		return st
	}

	booking := e.lookupBooking(ctx, bookingID, phone)
	if booking == nil {
		st.Response = "No booking found. Would you like to create a new booking?"
		st.BookingTime = newTime
		st.BookingPhone = phone
		st.BookingID = ""
		st.InBookingFlow = true
		return st
	}

	st.Response = fmt.Sprintf("Update booking to %s under %s. Does that sound right?", newTime, phone)
	st.BookingTime = newTime
	st.BookingPhone = phone
	st.BookingID = strconv.Itoa(booking.ID)
	st.AwaitingConfirmation = true
	st.InUpdateFlow = true
	return st
}

func (e *Engine) finishUpdate(ctx context.Context, st models.DialogueState) models.DialogueState {
	if e.detectConfirmation(ctx, st.Text) != "yes" {
		st.Response = "Okay, what time or phone number would you like to update to?"
		st.BookingTime, st.BookingPhone = "", ""
		st.AwaitingConfirmation = false
		st.InUpdateFlow = true
		return st
	}

	id, err := strconv.Atoi(st.BookingID)
	if err == nil {
		err = e.bookings.Update(ctx, id, st.BookingPhone, st.BookingTime)
	}
	if err != nil {
		e.logger.Error("failed to update booking", zap.Error(err))
		st.Response = "Sorry, there was an issue updating your booking. Please try again."
		// The located booking id survives for the retry.
		st.BookingTime, st.BookingPhone = "", ""
		st.AwaitingConfirmation = false
		st.InUpdateFlow = true
		return st
	}

	e.logger.Info("booking updated",
		zap.Int("booking_id", id),
		zap.String("phone", st.BookingPhone),
		zap.String("time", st.BookingTime))

	st.Response = fmt.Sprintf("Booking updated to %s for %s. Anything else?", st.BookingTime, st.BookingPhone)
	st.BookingTime, st.BookingPhone, st.BookingID = "", "", ""
	st.AwaitingConfirmation = false
	st.InUpdateFlow = false
	st.AwaitingFurtherAssistance = true
	return st
}
