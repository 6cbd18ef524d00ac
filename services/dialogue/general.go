package dialogue

import (
	"context"
	"strings"

	"voicedesk/models"
)

var farewellMarkers = []string{"bye", "goodbye", "thank you"}

func isFarewell(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range farewellMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// generalInfoNode answers open questions via the retriever. Farewells
// short-circuit before any retrieval work happens.
func (e *Engine) generalInfoNode(ctx context.Context, st models.DialogueState) models.DialogueState {
	if isFarewell(st.Text) {
		st.Response = GoodbyeReply
		st.InBookingFlow = false
		return st
	}

	st.Response = e.retriever.Answer(ctx, st.Text)
	st.InBookingFlow = false
	return st
}
