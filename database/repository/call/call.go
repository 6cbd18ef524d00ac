package callRepo

import (
	"context"
	"time"

	"voicedesk/models"
)

// Repository defines persistence operations for calls, their transcripts
// and dialogue state snapshots. Transcripts are append-only.
type Repository interface {
	CreateCall(ctx context.Context, call *models.Call) error
	CompleteCall(ctx context.Context, callID string, endedAt time.Time) error
	GetCallBySID(ctx context.Context, sid string) (*models.Call, error)
	ListCalls(ctx context.Context, limit int64) ([]models.Call, error)

	AppendTranscript(ctx context.Context, entry *models.Transcript) error
	ListTranscripts(ctx context.Context, callID string) ([]models.Transcript, error)

	SaveState(ctx context.Context, callID string, state models.DialogueState) error
	// LoadState returns (nil, nil) when no snapshot exists for the call.
	LoadState(ctx context.Context, callID string) (*models.DialogueState, error)
}
