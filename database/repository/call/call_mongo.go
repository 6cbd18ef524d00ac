package callRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"voicedesk/database"
	"voicedesk/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCallRepo implements Repository using MongoDB.
type MongoCallRepo struct {
	callColl       *mongo.Collection
	transcriptColl *mongo.Collection
	stateColl      *mongo.Collection
}

// NewMongoCallRepo constructs a new instance of MongoCallRepo.
func NewMongoCallRepo() *MongoCallRepo {
	db := database.MongoClient.Database("voicedesk")
	return &MongoCallRepo{
		callColl:       db.Collection("calls"),
		transcriptColl: db.Collection("transcripts"),
		stateColl:      db.Collection("dialogue_states"),
	}
}

// CreateCall inserts a new call record.
func (repo *MongoCallRepo) CreateCall(ctx context.Context, call *models.Call) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if call.StartTime.IsZero() {
		call.StartTime = time.Now()
	}
	if call.Status == "" {
		call.Status = models.CallStatusInitiated
	}
	if _, err := repo.callColl.InsertOne(ctxWithTimeout, call); err != nil {
		return fmt.Errorf("error creating call record: %w", err)
	}
	return nil
}

// CompleteCall marks a call as completed and stamps its end time.
func (repo *MongoCallRepo) CompleteCall(ctx context.Context, callID string, endedAt time.Time) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"status":   models.CallStatusCompleted,
		"end_time": endedAt,
	}}
	if _, err := repo.callColl.UpdateOne(ctxWithTimeout, bson.M{"id": callID}, update); err != nil {
		return fmt.Errorf("error completing call %s: %w", callID, err)
	}
	return nil
}

// GetCallBySID retrieves a call by its telephony SID, (nil, nil) on miss.
func (repo *MongoCallRepo) GetCallBySID(ctx context.Context, sid string) (*models.Call, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var call models.Call
	err := repo.callColl.FindOne(ctxWithTimeout, bson.M{"sid": sid}).Decode(&call)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching call %s: %w", sid, err)
	}
	return &call, nil
}

// ListCalls returns the most recent calls, newest first.
func (repo *MongoCallRepo) ListCalls(ctx context.Context, limit int64) ([]models.Call, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: -1}}).SetLimit(limit)
	cursor, err := repo.callColl.Find(ctxWithTimeout, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing calls: %w", err)
	}
	defer cursor.Close(ctxWithTimeout)

	var calls []models.Call
	if err := cursor.All(ctxWithTimeout, &calls); err != nil {
		return nil, fmt.Errorf("error decoding calls: %w", err)
	}
	return calls, nil
}

// AppendTranscript appends one utterance to a call's transcript.
func (repo *MongoCallRepo) AppendTranscript(ctx context.Context, entry *models.Transcript) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if _, err := repo.transcriptColl.InsertOne(ctxWithTimeout, entry); err != nil {
		return fmt.Errorf("error appending transcript: %w", err)
	}
	return nil
}

// ListTranscripts returns a call's transcript in chronological order.
func (repo *MongoCallRepo) ListTranscripts(ctx context.Context, callID string) ([]models.Transcript, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := repo.transcriptColl.Find(ctxWithTimeout, bson.M{"call_id": callID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing transcripts for call %s: %w", callID, err)
	}
	defer cursor.Close(ctxWithTimeout)

	var entries []models.Transcript
	if err := cursor.All(ctxWithTimeout, &entries); err != nil {
		return nil, fmt.Errorf("error decoding transcripts: %w", err)
	}
	return entries, nil
}

// SaveState upserts the dialogue state snapshot for a call.
func (repo *MongoCallRepo) SaveState(ctx context.Context, callID string, state models.DialogueState) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	snapshot := models.StateSnapshot{
		CallID:    callID,
		State:     state,
		UpdatedAt: time.Now(),
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := repo.stateColl.ReplaceOne(ctxWithTimeout, bson.M{"call_id": callID}, snapshot, opts); err != nil {
		return fmt.Errorf("error saving state for call %s: %w", callID, err)
	}
	return nil
}

// LoadState retrieves the latest dialogue state snapshot for a call, (nil, nil) on miss.
func (repo *MongoCallRepo) LoadState(ctx context.Context, callID string) (*models.DialogueState, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var snapshot models.StateSnapshot
	err := repo.stateColl.FindOne(ctxWithTimeout, bson.M{"call_id": callID}).Decode(&snapshot)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error loading state for call %s: %w", callID, err)
	}
	return &snapshot.State, nil
}
