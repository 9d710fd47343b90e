package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrEmptySpeechText = errors.New("speech text is empty")

var allowedVoices = map[string]bool{
	"alloy":   true,
	"echo":    true,
	"fable":   true,
	"onyx":    true,
	"nova":    true,
	"shimmer": true,
	"sage":    true,
}

const defaultVoice = "alloy"

// SpeechService turns interviewer text into spoken audio
type SpeechService struct {
	client SpeechClient
}

func NewSpeechService(client SpeechClient) *SpeechService {
	return &SpeechService{client: client}
}

// Synthesize returns MP3 audio for the given text. Unknown voices fall
// back to the default rather than erroring.
func (s *SpeechService) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptySpeechText
	}
	voice = strings.ToLower(strings.TrimSpace(voice))
	if !allowedVoices[voice] {
		voice = defaultVoice
	}
	if s.client == nil || !s.client.IsEnabled() {
		return nil, errors.New("speech synthesis is not configured")
	}
	audio, err := s.client.Synthesize(ctx, text, voice)
	if err != nil {
		return nil, fmt.Errorf("synthesizing speech: %w", err)
	}
	return audio, nil
}
