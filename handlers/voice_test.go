package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"voicedesk/models"
	"voicedesk/services/dialogue"
	"voicedesk/services/session"
)

type memCallRepo struct {
	mu          sync.Mutex
	calls       map[string]*models.Call // keyed by SID
	transcripts []models.Transcript
	states      map[string]models.DialogueState
}

func newMemCallRepo() *memCallRepo {
	return &memCallRepo{
		calls:  map[string]*models.Call{},
		states: map[string]models.DialogueState{},
	}
}

func (f *memCallRepo) CreateCall(_ context.Context, call *models.Call) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[call.SID] = call
	return nil
}

func (f *memCallRepo) CompleteCall(_ context.Context, callID string, endedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c.ID == callID {
			c.Status = models.CallStatusCompleted
			c.EndTime = &endedAt
		}
	}
	return nil
}

func (f *memCallRepo) GetCallBySID(_ context.Context, sid string) (*models.Call, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[sid], nil
}

func (f *memCallRepo) ListCalls(context.Context, int64) ([]models.Call, error) {
	return nil, nil
}

func (f *memCallRepo) AppendTranscript(_ context.Context, entry *models.Transcript) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transcripts = append(f.transcripts, *entry)
	return nil
}

func (f *memCallRepo) ListTranscripts(context.Context, string) ([]models.Transcript, error) {
	return nil, nil
}

func (f *memCallRepo) SaveState(_ context.Context, callID string, state models.DialogueState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[callID] = state
	return nil
}

func (f *memCallRepo) LoadState(_ context.Context, callID string) (*models.DialogueState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	state, ok := f.states[callID]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

// fixedEngine returns the same reply for every turn and counts invocations.
type fixedEngine struct {
	mu    sync.Mutex
	reply string
	turns int
}

func (e *fixedEngine) ProcessTurn(_ context.Context, text string, state models.DialogueState) (string, models.DialogueState) {
	e.mu.Lock()
	e.turns++
	e.mu.Unlock()
	state.Text = text
	state.Response = e.reply
	return e.reply, state
}

func voiceTestRouter(repo *memCallRepo, engine *fixedEngine) *gin.Engine {
	gin.SetMode(gin.TestMode)
	mgr := session.NewManager(repo, engine, nil, 0, zap.NewNop())
	h := NewVoiceHandlers(mgr, nil, zap.NewNop())

	r := gin.New()
	r.POST("/voice/answer", h.Answer)
	r.POST("/voice/turn", h.Turn)
	r.POST("/voice/status", h.Status)
	return r
}

func postVoiceForm(r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestVoiceAnswerGreetsAndGathers(t *testing.T) {
	repo := newMemCallRepo()
	r := voiceTestRouter(repo, &fixedEngine{reply: "ok"})

	w := postVoiceForm(r, "/voice/answer", url.Values{
		"CallSid": {"CA100"},
		"From":    {"123-456-7890"},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, welcomeMessage) {
		t.Fatalf("greeting missing from response: %s", body)
	}
	if !strings.Contains(body, "<Gather") {
		t.Fatalf("no speech gather in response: %s", body)
	}
	if !strings.Contains(body, "<Redirect") {
		t.Fatalf("no silence redirect in response: %s", body)
	}
	if call, _ := repo.GetCallBySID(context.Background(), "CA100"); call == nil {
		t.Fatal("answer webhook did not record the call")
	}
}

func TestVoiceTurnEmptySpeechRepeatsPrompt(t *testing.T) {
	repo := newMemCallRepo()
	engine := &fixedEngine{reply: "ok"}
	r := voiceTestRouter(repo, engine)

	w := postVoiceForm(r, "/voice/turn", url.Values{
		"CallSid": {"CA100"},
		"From":    {"123-456-7890"},
	})

	body := w.Body.String()
	if !strings.Contains(body, repeatMessage) {
		t.Fatalf("repeat prompt missing: %s", body)
	}
	if !strings.Contains(body, "<Gather") {
		t.Fatalf("no re-gather after silence: %s", body)
	}
	if engine.turns != 0 {
		t.Fatalf("empty utterance reached the engine %d times", engine.turns)
	}
}

func TestVoiceTurnGoodbyeHangsUp(t *testing.T) {
	repo := newMemCallRepo()
	r := voiceTestRouter(repo, &fixedEngine{reply: dialogue.GoodbyeReply})

	w := postVoiceForm(r, "/voice/turn", url.Values{
		"CallSid":      {"CA100"},
		"From":         {"123-456-7890"},
		"SpeechResult": {"no thanks, bye"},
	})

	body := w.Body.String()
	if !strings.Contains(body, dialogue.GoodbyeReply) {
		t.Fatalf("goodbye line missing: %s", body)
	}
	if !strings.Contains(body, "<Hangup") {
		t.Fatalf("goodbye did not hang up: %s", body)
	}
	if strings.Contains(body, "<Gather") {
		t.Fatalf("goodbye should not re-gather: %s", body)
	}
}

func TestVoiceTurnRepliesAndKeepsListening(t *testing.T) {
	repo := newMemCallRepo()
	r := voiceTestRouter(repo, &fixedEngine{reply: "Your booking is confirmed."})

	w := postVoiceForm(r, "/voice/turn", url.Values{
		"CallSid":      {"CA100"},
		"From":         {"123-456-7890"},
		"SpeechResult": {"book a table"},
	})

	body := w.Body.String()
	if !strings.Contains(body, "Your booking is confirmed.") {
		t.Fatalf("reply missing: %s", body)
	}
	if !strings.Contains(body, "<Gather") {
		t.Fatalf("no follow-up gather: %s", body)
	}
	if !strings.Contains(body, timeoutGoodbye) {
		t.Fatalf("silence goodbye missing: %s", body)
	}
}

func TestVoiceStatusCompletedEndsCall(t *testing.T) {
	repo := newMemCallRepo()
	r := voiceTestRouter(repo, &fixedEngine{reply: "ok"})
	ctx := context.Background()

	postVoiceForm(r, "/voice/answer", url.Values{
		"CallSid": {"CA100"},
		"From":    {"123-456-7890"},
	})

	w := postVoiceForm(r, "/voice/status", url.Values{
		"CallSid":    {"CA100"},
		"CallStatus": {"completed"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	call, _ := repo.GetCallBySID(ctx, "CA100")
	if call.Status != models.CallStatusCompleted || call.EndTime == nil {
		t.Fatalf("call not closed: %+v", call)
	}
}

func TestVoiceStatusRingingLeavesCallOpen(t *testing.T) {
	repo := newMemCallRepo()
	r := voiceTestRouter(repo, &fixedEngine{reply: "ok"})
	ctx := context.Background()

	postVoiceForm(r, "/voice/answer", url.Values{
		"CallSid": {"CA100"},
		"From":    {"123-456-7890"},
	})
	postVoiceForm(r, "/voice/status", url.Values{
		"CallSid":    {"CA100"},
		"CallStatus": {"ringing"},
	})

	call, _ := repo.GetCallBySID(ctx, "CA100")
	if call.Status == models.CallStatusCompleted || call.EndTime != nil {
		t.Fatalf("non-final status closed the call: %+v", call)
	}
}
