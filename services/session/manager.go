// Package session ties a phone call to its dialogue state: it owns call
// lifecycle records, per-call turn serialization, transcript capture and the
// cached state snapshots that survive between webhook requests.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	callRepo "voicedesk/database/repository/call"
	"voicedesk/models"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const stateKeyPrefix = "call:state:"

// TurnProcessor produces a reply and the next state for one utterance.
type TurnProcessor interface {
	ProcessTurn(ctx context.Context, text string, state models.DialogueState) (reply string, next models.DialogueState)
}

// Manager coordinates calls, transcripts and state snapshots. Turns for the
// same call run strictly one at a time; different calls never block each other.
type Manager struct {
	calls  callRepo.Repository
	engine TurnProcessor
	cache  *redis.Client
	ttl    time.Duration
	logger *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager wires the session manager. cache may be nil, in which case
// snapshots go straight to the repository.
func NewManager(calls callRepo.Repository, engine TurnProcessor, cache *redis.Client, ttl time.Duration, logger *zap.Logger) *Manager {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Manager{
		calls:  calls,
		engine: engine,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
		locks:  map[string]*sync.Mutex{},
	}
}

// Begin records the start of a call. Repeated webhooks for the same SID
// return the call already on record; concurrent webhooks (answer racing the
// first turn) serialize on a per-SID lock so only one record is created.
func (m *Manager) Begin(ctx context.Context, sid, callerPhone string) (*models.Call, error) {
	lock := m.lockFor(sidLockKey(sid))
	lock.Lock()
	defer lock.Unlock()

	if existing, err := m.calls.GetCallBySID(ctx, sid); err != nil {
		return nil, fmt.Errorf("failed to look up call: %w", err)
	} else if existing != nil {
		return existing, nil
	}

	call := &models.Call{
		ID:          uuid.NewString(),
		SID:         sid,
		CallerPhone: callerPhone,
		StartTime:   time.Now().UTC(),
		Status:      models.CallStatusInitiated,
	}
	if err := m.calls.CreateCall(ctx, call); err != nil {
		return nil, fmt.Errorf("failed to record call: %w", err)
	}
	m.logger.Info("call started", zap.String("call_id", call.ID), zap.String("sid", sid))
	return call, nil
}

// RunTurn processes one utterance for the call and returns the reply.
// The transcript gains the user line and the assistant line, and the
// resulting state is snapshotted before returning.
func (m *Manager) RunTurn(ctx context.Context, callID, text string) string {
	lock := m.lockFor(callID)
	lock.Lock()
	defer lock.Unlock()

	state := m.loadState(ctx, callID)
	m.appendTranscript(ctx, callID, models.RoleUser, text)

	reply, next := m.engine.ProcessTurn(ctx, text, state)

	m.appendTranscript(ctx, callID, models.RoleAssistant, reply)
	m.saveState(ctx, callID, next)
	return reply
}

// End marks the call completed and drops its cached state.
func (m *Manager) End(ctx context.Context, sid string) error {
	call, err := m.calls.GetCallBySID(ctx, sid)
	if err != nil {
		return fmt.Errorf("failed to look up call: %w", err)
	}
	if call == nil {
		return nil
	}
	if err := m.calls.CompleteCall(ctx, call.ID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to complete call: %w", err)
	}
	if m.cache != nil {
		if err := m.cache.Del(ctx, stateKeyPrefix+call.ID).Err(); err != nil {
			m.logger.Warn("failed to drop cached state", zap.String("call_id", call.ID), zap.Error(err))
		}
	}

	m.mu.Lock()
	delete(m.locks, call.ID)
	delete(m.locks, sidLockKey(sid))
	m.mu.Unlock()

	m.logger.Info("call completed", zap.String("call_id", call.ID), zap.String("sid", sid))
	return nil
}

// sidLockKey keeps SID locks from colliding with call-id locks; call ids
// are UUIDs and never carry this prefix.
func sidLockKey(sid string) string {
	return "sid:" + sid
}

func (m *Manager) lockFor(callID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[callID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[callID] = lock
	}
	return lock
}

// loadState reads the cached snapshot, falling back to the repository and
// finally to a fresh state. A fresh state is always safe: the engine
// re-collects anything that was lost.
func (m *Manager) loadState(ctx context.Context, callID string) models.DialogueState {
	if m.cache != nil {
		raw, err := m.cache.Get(ctx, stateKeyPrefix+callID).Result()
		if err == nil {
			var state models.DialogueState
			if json.Unmarshal([]byte(raw), &state) == nil {
				return state
			}
			m.logger.Warn("cached state is malformed, falling back", zap.String("call_id", callID))
		} else if err != redis.Nil {
			m.logger.Warn("state cache read failed", zap.String("call_id", callID), zap.Error(err))
		}
	}

	snapshot, err := m.calls.LoadState(ctx, callID)
	if err != nil {
		m.logger.Warn("state load failed, starting fresh", zap.String("call_id", callID), zap.Error(err))
		return models.DialogueState{}
	}
	if snapshot == nil {
		return models.DialogueState{}
	}
	return *snapshot
}

// saveState writes through the cache and the repository. Neither failure
// aborts the turn; the reply has already been produced.
func (m *Manager) saveState(ctx context.Context, callID string, state models.DialogueState) {
	if m.cache != nil {
		if raw, err := json.Marshal(state); err == nil {
			if err := m.cache.Set(ctx, stateKeyPrefix+callID, raw, m.ttl).Err(); err != nil {
				m.logger.Warn("state cache write failed", zap.String("call_id", callID), zap.Error(err))
			}
		}
	}
	if err := m.calls.SaveState(ctx, callID, state); err != nil {
		m.logger.Error("state snapshot write failed", zap.String("call_id", callID), zap.Error(err))
	}
}

func (m *Manager) appendTranscript(ctx context.Context, callID, role, text string) {
	if text == "" {
		return
	}
	entry := &models.Transcript{
		CallID:    callID,
		Role:      role,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
	if err := m.calls.AppendTranscript(ctx, entry); err != nil {
		m.logger.Warn("transcript append failed", zap.String("call_id", callID), zap.Error(err))
	}
}
