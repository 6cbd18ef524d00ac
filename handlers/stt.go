package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"voicedesk/services/speech"
)

const (
	MaxDurationSeconds = 60              // 1 minute maximum
	MaxFileSize        = 5 * 1024 * 1024 // 5MB (conservative buffer)
	AllowedExtension   = ".wav"
)

// TranscribeHandler accepts a WAV upload and returns its transcription.
// Useful for testing recognition quality without placing a phone call.
func TranscribeHandler(recognizer *speech.Recognizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		language := c.DefaultPostForm("language", "en-US")

		file, header, err := c.Request.FormFile("audio")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "audio file is required",
				"details": err.Error(),
			})
			return
		}
		defer file.Close()

		if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != AllowedExtension {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid file type",
				"details": fmt.Sprintf("expected %s, got %s", AllowedExtension, ext),
			})
			return
		}

		tempInput, err := os.CreateTemp("", "audio-*.wav")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "failed to create temp file",
				"details": err.Error(),
			})
			return
		}
		defer os.Remove(tempInput.Name())
		defer tempInput.Close()

		if _, err := io.Copy(tempInput, io.LimitReader(file, MaxFileSize)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "failed to save audio file",
				"details": err.Error(),
			})
			return
		}

		tempOutput, err := os.CreateTemp("", "converted-*.wav")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "failed to create output temp file",
				"details": err.Error(),
			})
			return
		}
		defer os.Remove(tempOutput.Name())
		defer tempOutput.Close()

		if err := speech.ConvertToLinear16(tempInput.Name(), tempOutput.Name()); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "audio conversion failed",
				"details": err.Error(),
			})
			return
		}

		audioData, err := os.ReadFile(tempOutput.Name())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "failed to read converted audio",
				"details": err.Error(),
			})
			return
		}

		wav, err := speech.ParseWaveHeader(audioData)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid WAV file",
				"details": err.Error(),
			})
			return
		}
		if wav.ByteRate > 0 && wav.DataSize/wav.ByteRate > MaxDurationSeconds {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("audio exceeds %d second limit", MaxDurationSeconds),
			})
			return
		}

		transcription, err := recognizer.Recognize(c.Request.Context(), audioData, language)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "speech recognition failed",
				"details": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"transcription": transcription,
		})
	}
}
