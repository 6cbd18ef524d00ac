package speech

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	audioMaxAge   = time.Hour
	sweepInterval = 30 * time.Minute
)

// StartAudioJanitor deletes synthesized MP3 files older than an hour.
// Call webhooks fetch audio within seconds, so anything older is garbage.
func StartAudioJanitor(audioDir string, logger *zap.Logger) {
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			sweepAudioDir(audioDir, logger)
		}
	}()
}

func sweepAudioDir(audioDir string, logger *zap.Logger) {
	entries, err := os.ReadDir(audioDir)
	if err != nil {
		logger.Warn("audio sweep failed", zap.Error(err))
		return
	}
	cutoff := time.Now().Add(-audioMaxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".mp3") {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(audioDir, entry.Name())); err == nil {
			removed++
		}
	}
	if removed > 0 {
		logger.Debug("swept stale audio files", zap.Int("removed", removed))
	}
}
