package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"voicedesk/config"
)

// ServeAudioHandler serves synthesized MP3 files to the telephony provider.
// The file name is flattened so the lookup can never escape the audio dir.
func ServeAudioHandler(c *gin.Context) {
	name := filepath.Base(c.Param("filename"))
	if !strings.HasSuffix(name, ".mp3") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid audio file name"})
		return
	}

	path := filepath.Join(config.AppConfig.AudioDir, name)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "audio file not found"})
		return
	}
	c.Header("Content-Type", "audio/mpeg")
	c.File(path)
}
