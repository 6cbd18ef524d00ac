package dialogue

import (
	"context"
	"fmt"
	"strconv"

	"voicedesk/models"

	"go.uber.org/zap"
)

const retrieveExtractionPrompt = `Extract the booking details from this message: '%s'.
Return a JSON object with keys: 'phone_number', 'booking_id'.
If a value is not found, use null.
For 'phone_number', expect formats like '123-456-7890'.
For 'booking_id', return a numeric string or null.`

// retrieveBookingNode looks up a booking by id or phone. A miss is a defined
// branch offering to create a new booking, not an error.
func (e *Engine) retrieveBookingNode(ctx context.Context, st models.DialogueState) models.DialogueState {
	details := e.extractDetails(ctx, fmt.Sprintf(retrieveExtractionPrompt, st.Text))

	phone := details.Phone
	if phone == "" {
		phone = st.BookingPhone
	}
	bookingID := details.BookingID
	if bookingID == "" {
		bookingID = st.BookingID
	}

	if phone == "" && bookingID == "" {
		st.Response = "Please provide your phone number or booking ID."
		st.InRetrieveFlow = true
		return st
	}

	booking := e.lookupBooking(ctx, bookingID, phone)
	if booking == nil {
		st.Response = "No booking found. Would you like to create a new booking?"
		st.BookingPhone = phone
		st.BookingID = ""
		st.InBookingFlow = true
		return st
	}

	st.Response = fmt.Sprintf(
		"Your booking ID is %d for %s, registered under %s. Would you like to update this booking?",
		booking.ID, booking.Time, booking.PhoneNumber)
	st.BookingPhone = booking.PhoneNumber
	st.BookingID = strconv.Itoa(booking.ID)
	st.BookingTime = booking.Time
	st.InRetrieveFlow = false
	st.AwaitingFurtherAssistance = true
	return st
}

// lookupBooking prefers the booking id when both identifiers are present.
// Store errors are logged and treated as a miss.
func (e *Engine) lookupBooking(ctx context.Context, bookingID, phone string) *models.Booking {
	if bookingID != "" {
		id, err := strconv.Atoi(bookingID)
		if err != nil {
			return nil
		}
		booking, err := e.bookings.GetByID(ctx, id)
		if err != nil {
			e.logger.Error("booking lookup by id failed", zap.Error(err))
			return nil
		}
		return booking
	}
	if phone != "" {
		booking, err := e.bookings.GetByPhone(ctx, phone)
		if err != nil {
			e.logger.Error("booking lookup by phone failed", zap.Error(err))
			return nil
		}
		return booking
	}
	return nil
}
