package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Voice webhook endpoints
	AnswerHandler gin.HandlerFunc
	TurnHandler   gin.HandlerFunc
	StatusHandler gin.HandlerFunc

	// Audio playback
	ServeAudioHandler gin.HandlerFunc

	// Speech-to-text
	TranscribeHandler gin.HandlerFunc

	// Admin endpoints
	AdminLoginHandler    gin.HandlerFunc
	ListCallsHandler     gin.HandlerFunc
	GetTranscriptHandler gin.HandlerFunc
	ListBookingsHandler  gin.HandlerFunc
}
