package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/twilio/twilio-go/twiml"
	"go.uber.org/zap"

	"voicedesk/config"
	"voicedesk/services/dialogue"
	"voicedesk/services/session"
	"voicedesk/services/speech"
)

const (
	welcomeMessage = "Welcome to our customer support. How can I help you today?"
	repeatMessage  = "I didn't catch that. Could you please repeat?"
	troubleMessage = "I'm sorry, I'm having trouble understanding. Could you try again?"
	followUpPrompt = "Is there anything else I can help you with?"
	timeoutGoodbye = "Thank you for calling our customer support. Goodbye!"
)

// VoiceHandlers serves the telephony webhooks for inbound calls.
type VoiceHandlers struct {
	sessions *session.Manager
	synth    *speech.Synthesizer // nil disables audio playback, Say is used instead
	logger   *zap.Logger
}

func NewVoiceHandlers(sessions *session.Manager, synth *speech.Synthesizer, logger *zap.Logger) *VoiceHandlers {
	return &VoiceHandlers{sessions: sessions, synth: synth, logger: logger}
}

// speak prefers synthesized audio over the provider's builtin voice.
func (h *VoiceHandlers) speak(c *gin.Context, text string) twiml.Element {
	if h.synth != nil {
		if name := h.synth.Synthesize(c.Request.Context(), text); name != "" {
			return twiml.VoicePlay{Url: config.AppConfig.BaseURL + "/audio/" + name}
		}
	}
	return twiml.VoiceSay{Message: text}
}

func speechGather(inner ...twiml.Element) twiml.VoiceGather {
	return twiml.VoiceGather{
		Input:         "speech",
		Action:        "/voice/turn",
		SpeechTimeout: "auto",
		SpeechModel:   "phone_call",
		Enhanced:      "true",
		Timeout:       "5",
		InnerElements: inner,
	}
}

func (h *VoiceHandlers) respondTwiML(c *gin.Context, elements []twiml.Element) {
	doc, err := twiml.Voice(elements)
	if err != nil {
		h.logger.Error("failed to render voice markup", zap.Error(err))
		c.String(http.StatusInternalServerError, "")
		return
	}
	c.Header("Content-Type", "text/xml")
	c.String(http.StatusOK, doc)
}

// Answer greets the caller and opens the first speech gather.
func (h *VoiceHandlers) Answer(c *gin.Context) {
	sid := c.PostForm("CallSid")
	from := c.PostForm("From")

	if _, err := h.sessions.Begin(c.Request.Context(), sid, from); err != nil {
		h.logger.Error("failed to begin call", zap.String("sid", sid), zap.Error(err))
	}

	h.respondTwiML(c, []twiml.Element{
		h.speak(c, welcomeMessage),
		speechGather(),
		twiml.VoiceRedirect{Url: "/voice/answer"},
	})
}

// Turn handles one recognized utterance and speaks the reply. The elements
// after the gather only play when the caller stays silent until the timeout.
func (h *VoiceHandlers) Turn(c *gin.Context) {
	sid := c.PostForm("CallSid")
	from := c.PostForm("From")
	text := c.PostForm("SpeechResult")

	call, err := h.sessions.Begin(c.Request.Context(), sid, from)
	if err != nil {
		h.logger.Error("failed to resolve call", zap.String("sid", sid), zap.Error(err))
		h.respondTwiML(c, []twiml.Element{
			twiml.VoiceSay{Message: troubleMessage},
			speechGather(),
		})
		return
	}

	if text == "" {
		h.respondTwiML(c, []twiml.Element{
			h.speak(c, repeatMessage),
			speechGather(),
		})
		return
	}

	reply := h.sessions.RunTurn(c.Request.Context(), call.ID, text)

	if reply == dialogue.GoodbyeReply {
		h.respondTwiML(c, []twiml.Element{
			h.speak(c, reply),
			twiml.VoiceHangup{},
		})
		return
	}

	h.respondTwiML(c, []twiml.Element{
		h.speak(c, reply),
		speechGather(),
		h.speak(c, followUpPrompt),
		h.speak(c, timeoutGoodbye),
		twiml.VoiceHangup{},
	})
}

// Status consumes call status callbacks and closes finished calls.
func (h *VoiceHandlers) Status(c *gin.Context) {
	sid := c.PostForm("CallSid")
	status := c.PostForm("CallStatus")
	h.logger.Info("call status update", zap.String("sid", sid), zap.String("status", status))

	switch status {
	case "completed", "busy", "failed", "no-answer", "canceled":
		if err := h.sessions.End(c.Request.Context(), sid); err != nil {
			h.logger.Error("failed to close call", zap.String("sid", sid), zap.Error(err))
		}
	}
	c.Status(http.StatusOK)
}
