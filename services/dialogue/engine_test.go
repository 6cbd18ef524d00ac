package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"voicedesk/models"

	"go.uber.org/zap"
)

// stubOracle scripts oracle behavior per test and counts calls.
type stubOracle struct {
	completeFn    func(system, prompt string) (string, error)
	embedFn       func(text string) ([]float32, error)
	completeCalls int
	embedCalls    int
}

func (s *stubOracle) Complete(_ context.Context, system, prompt string) (string, error) {
	s.completeCalls++
	if s.completeFn == nil {
		return "", errors.New("no completion scripted")
	}
	return s.completeFn(system, prompt)
}

func (s *stubOracle) Embed(_ context.Context, text string) ([]float32, error) {
	s.embedCalls++
	if s.embedFn == nil {
		return nil, errors.New("no embedding scripted")
	}
	return s.embedFn(text)
}

// memStore is an in-memory BookingStore for engine tests.
type memStore struct {
	bookings  map[int]*models.Booking
	lastID    int
	createErr error
	updateErr error
}

func newMemStore() *memStore {
	return &memStore{bookings: map[int]*models.Booking{}}
}

func (m *memStore) NextID(context.Context) (int, error) {
	m.lastID++
	return m.lastID, nil
}

func (m *memStore) Create(_ context.Context, b *models.Booking) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.bookings[b.ID] = b
	return nil
}

func (m *memStore) GetByID(_ context.Context, id int) (*models.Booking, error) {
	return m.bookings[id], nil
}

func (m *memStore) GetByPhone(_ context.Context, phone string) (*models.Booking, error) {
	for _, b := range m.bookings {
		if b.PhoneNumber == phone {
			return b, nil
		}
	}
	return nil, nil
}

func (m *memStore) Update(_ context.Context, id int, phone, bookingTime string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	b, ok := m.bookings[id]
	if !ok {
		return errors.New("not found")
	}
	b.PhoneNumber = phone
	b.Time = bookingTime
	return nil
}

func newTestEngine(o *stubOracle, store BookingStore) *Engine {
	logger := zap.NewNop()
	return NewEngine(o, store, NewRetriever(o, 0, logger), 0, logger)
}

// scriptedOracle routes by system prompt: a fixed intent label plus a map of
// utterance substring to extraction JSON.
func scriptedOracle(intent string, extractions map[string]string) *stubOracle {
	return &stubOracle{
		completeFn: func(system, prompt string) (string, error) {
			switch {
			case strings.Contains(system, "intent classifier"):
				return intent, nil
			case strings.Contains(system, "details extractor"):
				for needle, out := range extractions {
					if strings.Contains(prompt, needle) {
						return out, nil
					}
				}
				return `{"phone_number": null, "time": null, "booking_id": null}`, nil
			default:
				return "", fmt.Errorf("unexpected oracle call: %s", system)
			}
		},
	}
}

func TestCreateBookingEndToEnd(t *testing.T) {
	oracle := scriptedOracle(IntentCreateBooking, map[string]string{
		"book a table": `{"phone_number": null, "time": "7 PM"}`,
		"123-456-7890": `{"phone_number": "123-456-7890", "time": null}`,
	})
	store := newMemStore()
	engine := newTestEngine(oracle, store)
	ctx := context.Background()

	var state models.DialogueState

	reply, state := engine.ProcessTurn(ctx, "I want to book a table for 7pm", state)
	if want := "Got 7:00 PM for your booking. Can I have your phone number?"; reply != want {
		t.Fatalf("turn 1 reply = %q, want %q", reply, want)
	}
	if state.BookingTime != "7:00 PM" || state.AwaitingConfirmation || !state.InBookingFlow {
		t.Fatalf("turn 1 state = %+v", state)
	}

	reply, state = engine.ProcessTurn(ctx, "it's 123-456-7890", state)
	if want := "Booking for 7:00 PM under 123-456-7890. Does that sound right?"; reply != want {
		t.Fatalf("turn 2 reply = %q, want %q", reply, want)
	}
	if !state.AwaitingConfirmation {
		t.Fatal("turn 2 should await confirmation")
	}

	reply, state = engine.ProcessTurn(ctx, "yes", state)
	if !strings.Contains(reply, "confirmed with ID 1") {
		t.Fatalf("turn 3 reply = %q, want booking ID 1", reply)
	}
	if state.BookingTime != "" || state.BookingPhone != "" || state.AwaitingConfirmation || state.InBookingFlow {
		t.Fatalf("turn 3 should clear booking state, got %+v", state)
	}
	if !state.AwaitingFurtherAssistance {
		t.Fatal("turn 3 should offer further assistance")
	}

	saved := store.bookings[1]
	if saved == nil || saved.PhoneNumber != "123-456-7890" || saved.Time != "7:00 PM" {
		t.Fatalf("saved booking = %+v", saved)
	}
}

func TestCreateConfirmationNoClearsTentativeFields(t *testing.T) {
	oracle := scriptedOracle(IntentCreateBooking, nil)
	store := newMemStore()
	engine := newTestEngine(oracle, store)

	state := models.DialogueState{
		BookingTime:          "7:00 PM",
		BookingPhone:         "123-456-7890",
		AwaitingConfirmation: true,
		InBookingFlow:        true,
	}
	reply, state := engine.ProcessTurn(context.Background(), "no", state)
	if want := "Okay, let's try again. What time would you like to book for?"; reply != want {
		t.Fatalf("reply = %q, want %q", reply, want)
	}
	if state.BookingTime != "" || state.BookingPhone != "" {
		t.Fatalf("rejection should clear tentative fields, got %+v", state)
	}
	if state.AwaitingConfirmation || !state.InBookingFlow {
		t.Fatalf("rejection should keep the booking flow open, got %+v", state)
	}
	if len(store.bookings) != 0 {
		t.Fatal("nothing should be persisted on rejection")
	}
}

func TestCreatePersistFailureKeepsCollectedFields(t *testing.T) {
	oracle := scriptedOracle(IntentCreateBooking, nil)
	store := newMemStore()
	store.createErr = errors.New("write failed")
	engine := newTestEngine(oracle, store)

	state := models.DialogueState{
		BookingTime:          "7:00 PM",
		BookingPhone:         "123-456-7890",
		AwaitingConfirmation: true,
		InBookingFlow:        true,
	}
	reply, state := engine.ProcessTurn(context.Background(), "yes", state)
	if want := "Sorry, there was an issue saving your booking. Please try again."; reply != want {
		t.Fatalf("reply = %q, want %q", reply, want)
	}
	if state.BookingTime != "7:00 PM" || state.BookingPhone != "123-456-7890" {
		t.Fatalf("collected fields should survive a persist failure, got %+v", state)
	}
	if state.AwaitingConfirmation || !state.InBookingFlow {
		t.Fatalf("failure should reopen collection, got %+v", state)
	}
}

func TestCreateRejectsInvalidPhone(t *testing.T) {
	oracle := scriptedOracle(IntentCreateBooking, map[string]string{
		"5551234": `{"phone_number": "5551234", "time": "7 PM"}`,
	})
	engine := newTestEngine(oracle, newMemStore())

	reply, state := engine.ProcessTurn(context.Background(), "book me at 7pm, number 5551234", models.DialogueState{})
	if want := "Phone number should be in format 123-456-7890. Could you repeat it?"; reply != want {
		t.Fatalf("reply = %q, want %q", reply, want)
	}
	if state.BookingPhone != "" {
		t.Fatalf("invalid phone must not be stored, got %q", state.BookingPhone)
	}
	if state.BookingTime != "7:00 PM" {
		t.Fatalf("valid time should be kept, got %q", state.BookingTime)
	}
}

func TestRetrieveMissingBookingOffersCreate(t *testing.T) {
	oracle := scriptedOracle(IntentRetrieveBooking, map[string]string{
		"999-999-9999": `{"phone_number": "999-999-9999", "booking_id": null}`,
	})
	engine := newTestEngine(oracle, newMemStore())

	reply, state := engine.ProcessTurn(context.Background(), "my number is 999-999-9999", models.DialogueState{})
	if want := "No booking found. Would you like to create a new booking?"; reply != want {
		t.Fatalf("reply = %q, want %q", reply, want)
	}
	if !state.InBookingFlow || state.BookingID != "" {
		t.Fatalf("miss should open the booking flow with no id, got %+v", state)
	}
	if state.BookingPhone != "999-999-9999" {
		t.Fatalf("phone should carry into the create flow, got %q", state.BookingPhone)
	}
}

func TestRetrieveIsIdempotent(t *testing.T) {
	store := newMemStore()
	store.bookings[3] = &models.Booking{ID: 3, PhoneNumber: "123-456-7890", Time: "7:00 PM"}
	oracle := scriptedOracle(IntentRetrieveBooking, map[string]string{
		"booking 3": `{"phone_number": null, "booking_id": "3"}`,
	})
	engine := newTestEngine(oracle, store)
	ctx := context.Background()

	start := models.DialogueState{}
	reply1, state1 := engine.ProcessTurn(ctx, "what's booking 3?", start)
	reply2, state2 := engine.ProcessTurn(ctx, "what's booking 3?", start)
	if reply1 != reply2 {
		t.Fatalf("replies differ: %q vs %q", reply1, reply2)
	}
	if state1 != state2 {
		t.Fatalf("states differ: %+v vs %+v", state1, state2)
	}
	if !strings.Contains(reply1, "booking ID is 3") || !strings.Contains(reply1, "7:00 PM") {
		t.Fatalf("reply = %q", reply1)
	}
}

func TestUpdateBookingConfirmThenPersist(t *testing.T) {
	store := newMemStore()
	store.bookings[7] = &models.Booking{ID: 7, PhoneNumber: "123-456-7890", Time: "6:00 PM"}
	oracle := scriptedOracle(IntentUpdateBooking, map[string]string{
		"booking 7": `{"phone_number": "123-456-7890", "time": "19:00", "booking_id": 7}`,
	})
	engine := newTestEngine(oracle, store)
	ctx := context.Background()

	reply, state := engine.ProcessTurn(ctx, "move booking 7 to 19:00", models.DialogueState{})
	if want := "Update booking to 7:00 PM under 123-456-7890. Does that sound right?"; reply != want {
		t.Fatalf("reply = %q, want %q", reply, want)
	}
	if !state.AwaitingConfirmation || state.BookingID != "7" {
		t.Fatalf("state = %+v", state)
	}

	reply, state = engine.ProcessTurn(ctx, "yes", state)
	if want := "Booking updated to 7:00 PM for 123-456-7890. Anything else?"; reply != want {
		t.Fatalf("reply = %q, want %q", reply, want)
	}
	if state.InUpdateFlow || state.BookingID != "" || !state.AwaitingFurtherAssistance {
		t.Fatalf("state = %+v", state)
	}
	if got := store.bookings[7].Time; got != "7:00 PM" {
		t.Fatalf("stored time = %q, want 7:00 PM", got)
	}
}

func TestUpdateMissingBookingRedirectsToCreate(t *testing.T) {
	oracle := scriptedOracle(IntentUpdateBooking, map[string]string{
		"booking 42": `{"phone_number": null, "time": "5 PM", "booking_id": "42"}`,
	})
	engine := newTestEngine(oracle, newMemStore())

	reply, state := engine.ProcessTurn(context.Background(), "change booking 42 to 5 PM", models.DialogueState{})
	if want := "No booking found. Would you like to create a new booking?"; reply != want {
		t.Fatalf("reply = %q, want %q", reply, want)
	}
	if !state.InBookingFlow || state.BookingID != "" {
		t.Fatalf("state = %+v", state)
	}
	if state.BookingTime != "5:00 PM" {
		t.Fatalf("normalized time should carry over, got %q", state.BookingTime)
	}
}

func TestFarewellBypassesRetrieval(t *testing.T) {
	oracle := scriptedOracle(IntentGeneralInfo, nil)
	engine := newTestEngine(oracle, newMemStore())

	reply, state := engine.ProcessTurn(context.Background(), "thanks, bye", models.DialogueState{InBookingFlow: true})
	if reply != GoodbyeReply {
		t.Fatalf("reply = %q, want %q", reply, GoodbyeReply)
	}
	if state.InBookingFlow {
		t.Fatal("farewell should close the booking flow")
	}
	if oracle.embedCalls != 0 {
		t.Fatalf("farewell must not touch the retriever, got %d embed calls", oracle.embedCalls)
	}
	if oracle.completeCalls != 1 {
		t.Fatalf("only the classifier should run, got %d complete calls", oracle.completeCalls)
	}
}

func TestClassifierFailureDefaultsToGeneralInfo(t *testing.T) {
	oracle := &stubOracle{
		completeFn: func(string, string) (string, error) { return "", errors.New("oracle down") },
		embedFn:    func(string) ([]float32, error) { return nil, errors.New("oracle down") },
	}
	engine := newTestEngine(oracle, newMemStore())

	reply, state := engine.ProcessTurn(context.Background(), "what are your hours?", models.DialogueState{})
	if state.Intent != IntentGeneralInfo {
		t.Fatalf("intent = %q, want %q", state.Intent, IntentGeneralInfo)
	}
	if reply != indexUnavailableReply {
		t.Fatalf("reply = %q, want %q", reply, indexUnavailableReply)
	}
}

func TestConfirmAssistance(t *testing.T) {
	cases := []struct {
		name      string
		verdict   string
		wantReply string
		wantAsk   bool
	}{
		{"done", `{"needs_assistance": "no"}`, GoodbyeReply, false},
		{"more", `{"needs_assistance": "yes"}`, "Great, what else can I help you with?", false},
		{"unsure", `not json at all`, "Is there anything else I can assist you with?", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			oracle := &stubOracle{
				completeFn: func(system, _ string) (string, error) {
					if strings.Contains(system, "intent classifier") {
						return IntentConfirmAssistance, nil
					}
					return tc.verdict, nil
				},
			}
			engine := newTestEngine(oracle, newMemStore())

			state := models.DialogueState{AwaitingFurtherAssistance: true}
			reply, state := engine.ProcessTurn(context.Background(), "hmm", state)
			if reply != tc.wantReply {
				t.Fatalf("reply = %q, want %q", reply, tc.wantReply)
			}
			if state.AwaitingFurtherAssistance != tc.wantAsk {
				t.Fatalf("AwaitingFurtherAssistance = %v, want %v", state.AwaitingFurtherAssistance, tc.wantAsk)
			}
		})
	}
}

func TestProcessTurnRecoversFromPanic(t *testing.T) {
	oracle := scriptedOracle(IntentGeneralInfo, nil)
	// A nil retriever makes the general_info node panic.
	engine := NewEngine(oracle, newMemStore(), nil, 0, zap.NewNop())

	before := models.DialogueState{InBookingFlow: true, BookingTime: "7:00 PM"}
	reply, after := engine.ProcessTurn(context.Background(), "what are your hours?", before)
	if reply != FallbackReply {
		t.Fatalf("reply = %q, want %q", reply, FallbackReply)
	}
	if after != before {
		t.Fatalf("state must be unchanged after a panic, got %+v", after)
	}
}
