package dialogue

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

// axisEmbed maps each knowledge passage to its own axis so the nearest
// neighbour of a query is fully deterministic.
func axisEmbed(queryAxis int) func(string) ([]float32, error) {
	return func(text string) ([]float32, error) {
		vec := make([]float32, len(knowledgeBase))
		for i, passage := range knowledgeBase {
			if text == passage {
				vec[i] = 1
				return vec, nil
			}
		}
		vec[queryAxis] = 1
		return vec, nil
	}
}

func TestRetrieverAnswersFromNearestPassage(t *testing.T) {
	oracle := &stubOracle{
		embedFn: axisEmbed(2), // nearest to the address passage
		completeFn: func(_, prompt string) (string, error) {
			if !strings.Contains(prompt, "123 Main St") {
				t.Errorf("prompt should carry the retrieved passage, got %q", prompt)
			}
			return "We're at 123 Main St, City, State.", nil
		},
	}
	r := NewRetriever(oracle, 0, zap.NewNop())

	got := r.Answer(context.Background(), "where are you located?")
	if got != "We're at 123 Main St, City, State." {
		t.Fatalf("Answer = %q", got)
	}
	if !r.Ready() {
		t.Fatal("index should be built after the first answer")
	}
}

func TestRetrieverRetriesFailedIndexBuild(t *testing.T) {
	embedDown := true
	oracle := &stubOracle{
		embedFn: func(text string) ([]float32, error) {
			if embedDown {
				return nil, errors.New("embedding service down")
			}
			return axisEmbed(0)(text)
		},
		completeFn: func(_, _ string) (string, error) {
			return "We're open 10 AM to 10 PM.", nil
		},
	}
	r := NewRetriever(oracle, 0, zap.NewNop())

	if got := r.Answer(context.Background(), "when do you open?"); got != indexUnavailableReply {
		t.Fatalf("Answer while down = %q, want %q", got, indexUnavailableReply)
	}
	if r.Ready() {
		t.Fatal("failed build must not mark the index ready")
	}

	embedDown = false
	if got := r.Answer(context.Background(), "when do you open?"); got != "We're open 10 AM to 10 PM." {
		t.Fatalf("Answer after recovery = %q", got)
	}
	if !r.Ready() {
		t.Fatal("index should be ready after the retry succeeds")
	}
}

func TestRetrieverGenerationFailureAsksToRepeat(t *testing.T) {
	oracle := &stubOracle{
		embedFn: axisEmbed(0),
		completeFn: func(_, _ string) (string, error) {
			return "", errors.New("generation failed")
		},
	}
	r := NewRetriever(oracle, 0, zap.NewNop())

	if got := r.Answer(context.Background(), "when do you open?"); got != repeatReply {
		t.Fatalf("Answer = %q, want %q", got, repeatReply)
	}
}
