package dialogue

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

var (
	confirmationPhrases = []string{"yes", "correct", "right", "sounds good", "confirm", "okay"}
	rejectionPhrases    = []string{"no", "wrong", "not right", "change it"}
)

// detectConfirmation resolves a pending yes/no. Literal phrase matching wins;
// the oracle is consulted only when no phrase matches. Failure counts as "no"
// so nothing is ever persisted without a positive signal.
func (e *Engine) detectConfirmation(ctx context.Context, text string) string {
	lower := strings.ToLower(text)
	for _, phrase := range confirmationPhrases {
		if strings.Contains(lower, phrase) {
			return "yes"
		}
	}
	for _, phrase := range rejectionPhrases {
		if strings.Contains(lower, phrase) {
			return "no"
		}
	}

	prompt := fmt.Sprintf("Does the user confirm the booking in this message: '%s'? Respond with 'yes' or 'no'.", text)
	out, err := e.complete(ctx, "You are a confirmation detector.", prompt)
	if err != nil {
		e.logger.Warn("confirmation detection failed", zap.Error(err))
		return "no"
	}
	if strings.Contains(strings.ToLower(strings.TrimSpace(out)), "yes") {
		return "yes"
	}
	return "no"
}
