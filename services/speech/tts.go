// Package speech wraps the Google Cloud speech services: synthesis of reply
// audio for playback over the phone, and recognition of uploaded recordings.
package speech

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	texttospeechpb "google.golang.org/genproto/googleapis/cloud/texttospeech/v1"

	"voicedesk/config"
)

// Synthesizer renders reply text to MP3 files under a local audio directory.
type Synthesizer struct {
	client   *texttospeech.Client
	audioDir string
	logger   *zap.Logger
}

// NewSynthesizer creates the TTS client and ensures the audio directory exists.
func NewSynthesizer(ctx context.Context, logger *zap.Logger) (*Synthesizer, error) {
	client, err := texttospeech.NewClient(ctx, option.WithCredentialsFile(config.AppConfig.GoogleServiceAccountFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create text-to-speech client: %w", err)
	}
	dir := config.AppConfig.AudioDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to create audio directory: %w", err)
	}
	return &Synthesizer{client: client, audioDir: dir, logger: logger}, nil
}

// Synthesize renders text to an MP3 file and returns the file name relative
// to the audio directory. An empty name means synthesis failed and the caller
// should fall back to plain speech markup.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) string {
	resp, err := s.client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: "en-US",
			Name:         "en-US-Neural2-J",
			SsmlGender:   texttospeechpb.SsmlVoiceGender_MALE,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	})
	if err != nil {
		s.logger.Warn("speech synthesis failed", zap.Error(err))
		return ""
	}

	name := fmt.Sprintf("tts_%s.mp3", uuid.NewString())
	if err := os.WriteFile(filepath.Join(s.audioDir, name), resp.AudioContent, 0o644); err != nil {
		s.logger.Warn("failed to write synthesized audio", zap.Error(err))
		return ""
	}
	return name
}

// Close releases the underlying client.
func (s *Synthesizer) Close() error {
	return s.client.Close()
}
