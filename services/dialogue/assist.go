package dialogue

import (
	"context"
	"encoding/json"
	"fmt"

	"voicedesk/models"

	"go.uber.org/zap"
)

const assistancePrompt = `Does the user need further assistance based on: '%s'?
Return a JSON object with key 'needs_assistance' and value 'yes', 'no', or 'unsure'.`

// confirmAssistanceNode resolves the "anything else?" question. An unsure or
// failed classification re-asks rather than guessing either way.
func (e *Engine) confirmAssistanceNode(ctx context.Context, st models.DialogueState) models.DialogueState {
	needs := "unsure"
	if out, err := e.complete(ctx, "You are an assistance detector.", fmt.Sprintf(assistancePrompt, st.Text)); err == nil {
		var raw map[string]any
		if json.Unmarshal([]byte(stripFences(out)), &raw) == nil {
			if v := stringField(raw, "needs_assistance"); v != "" {
				needs = v
			}
		}
	} else {
		e.logger.Warn("assistance detection failed", zap.Error(err))
	}

	switch needs {
	case "no":
		st.Response = GoodbyeReply
		st.InBookingFlow = false
	case "yes":
		st.Response = "Great, what else can I help you with?"
		st.InBookingFlow = false
	default:
		st.Response = "Is there anything else I can assist you with?"
		st.AwaitingFurtherAssistance = true
	}
	return st
}
