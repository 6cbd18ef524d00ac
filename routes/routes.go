package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"voicedesk/handlers"
	"voicedesk/middleware"
	"voicedesk/utils"
)

// RegisterVoiceRoutes registers the telephony webhook endpoints.
func RegisterVoiceRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	voice := r.Group("/voice")
	{
		voice.POST("/answer", hb.AnswerHandler)
		voice.POST("/turn", hb.TurnHandler)
		voice.POST("/status", hb.StatusHandler)
	}
}

// RegisterAudioRoute serves synthesized reply audio.
func RegisterAudioRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/audio/:filename", hb.ServeAudioHandler)
}

// RegisterSTTRoute registers the standalone transcription endpoint.
func RegisterSTTRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	if hb.TranscribeHandler != nil {
		r.POST("/api/stt", hb.TranscribeHandler)
	}
}

// RegisterAdminRoutes sets up endpoints for admin operations.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/api/admin/login", hb.AdminLoginHandler)

	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(middleware.JWTAuthAdminMiddleware())
		adminGroup.GET("/calls", hb.ListCallsHandler)
		adminGroup.GET("/calls/:callID/transcript", hb.GetTranscriptHandler)
		adminGroup.GET("/bookings", hb.ListBookingsHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, utils.GetHealthStatus())
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware())

	RegisterVoiceRoutes(r, hb)
	RegisterAudioRoute(r, hb)
	RegisterSTTRoute(r, hb)
	RegisterAdminRoutes(r, hb)
	RegisterHealthRoute(r)
}
