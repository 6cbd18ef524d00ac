// Package dialogue implements the turn-by-turn conversation engine: intent
// classification, the per-intent workflow nodes, confirmation handling and
// the semantic-retrieval fallback for open questions.
package dialogue

import (
	"context"
	"time"

	"voicedesk/models"
	"voicedesk/services/oracle"

	"go.uber.org/zap"
)

// Intent labels.
const (
	IntentCreateBooking     = "create_booking"
	IntentRetrieveBooking   = "retrieve_booking"
	IntentUpdateBooking     = "update_booking"
	IntentGeneralInfo       = "general_info"
	IntentConfirmAssistance = "confirm_assistance"
)

const (
	// GoodbyeReply closes the conversation on a farewell.
	GoodbyeReply = "Thank you for calling! Goodbye."
	// FallbackReply is the last-resort reply when turn processing fails outright.
	FallbackReply = "Sorry, something went wrong. Please try again."
)

// BookingStore is the persistence surface the workflow nodes need.
// Lookups return (nil, nil) on a miss.
type BookingStore interface {
	NextID(ctx context.Context) (int, error)
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id int) (*models.Booking, error)
	GetByPhone(ctx context.Context, phone string) (*models.Booking, error)
	Update(ctx context.Context, id int, phone, bookingTime string) error
}

// Engine routes each turn through the classifier and exactly one workflow node.
type Engine struct {
	oracle    oracle.TextOracle
	bookings  BookingStore
	retriever *Retriever
	timeout   time.Duration
	logger    *zap.Logger
}

// NewEngine wires the dialogue engine. timeout bounds every oracle call;
// a timeout is treated exactly like any other oracle failure.
func NewEngine(o oracle.TextOracle, bookings BookingStore, retriever *Retriever, timeout time.Duration, logger *zap.Logger) *Engine {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Engine{
		oracle:    o,
		bookings:  bookings,
		retriever: retriever,
		timeout:   timeout,
		logger:    logger,
	}
}

// ProcessTurn runs one turn: classify the utterance, dispatch to the matching
// workflow node and return the reply together with the next state. No failure
// escapes as an error; a panic anywhere in node logic degrades to FallbackReply
// with the state unchanged.
func (e *Engine) ProcessTurn(ctx context.Context, text string, state models.DialogueState) (reply string, next models.DialogueState) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("turn processing panicked", zap.Any("panic", r))
			reply, next = FallbackReply, state
		}
	}()

	st := state
	st.Text = text
	st = e.classifyIntent(ctx, st)

	switch st.Intent {
	case IntentCreateBooking:
		st = e.createBookingNode(ctx, st)
	case IntentRetrieveBooking:
		st = e.retrieveBookingNode(ctx, st)
	case IntentUpdateBooking:
		st = e.updateBookingNode(ctx, st)
	case IntentConfirmAssistance:
		st = e.confirmAssistanceNode(ctx, st)
	default:
		st = e.generalInfoNode(ctx, st)
	}

	return st.Response, st
}

// complete wraps the oracle call with the engine's bounded timeout.
func (e *Engine) complete(ctx context.Context, system, prompt string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return e.oracle.Complete(cctx, system, prompt)
}
