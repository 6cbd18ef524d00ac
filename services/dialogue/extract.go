package dialogue

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// extraction holds the structured fields pulled out of an utterance.
// Empty string means the field was absent.
type extraction struct {
	Phone     string
	Time      string
	BookingID string
}

// extractDetails asks the oracle for structured fields. Any failure, including
// malformed JSON, yields an empty extraction; the nodes then re-prompt.
func (e *Engine) extractDetails(ctx context.Context, prompt string) extraction {
	out, err := e.complete(ctx, "You are a booking details extractor.", prompt)
	if err != nil {
		e.logger.Warn("detail extraction failed", zap.Error(err))
		return extraction{}
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(stripFences(out)), &raw); err != nil {
		e.logger.Warn("detail extraction returned malformed JSON", zap.String("output", out))
		return extraction{}
	}

	return extraction{
		Phone:     stringField(raw, "phone_number"),
		Time:      stringField(raw, "time"),
		BookingID: stringField(raw, "booking_id"),
	}
}

// stringField coerces a JSON value to string; models occasionally return
// numbers where a numeric string was requested.
func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.Itoa(int(v))
	default:
		return ""
	}
}

// stripFences removes a markdown code fence around a JSON payload.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
