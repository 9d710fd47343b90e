package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"intervue/internal/service"
)

// SpeechHandler serves text-to-speech synthesis
type SpeechHandler struct {
	speech *service.SpeechService
}

func NewSpeechHandler(speech *service.SpeechService) *SpeechHandler {
	return &SpeechHandler{speech: speech}
}

// Synthesize handles POST /v1/speech and streams MP3 audio
func (h *SpeechHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text  string `json:"text"`
		Voice string `json:"voice"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	audio, err := h.speech.Synthesize(r.Context(), req.Text, req.Voice)
	if err != nil {
		if errors.Is(err, service.ErrEmptySpeechText) {
			writeError(w, http.StatusBadRequest, "text is required")
			return
		}
		log.Printf("[HTTP] Speech synthesis failed: %v", err)
		writeError(w, http.StatusBadGateway, "speech synthesis unavailable")
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(audio); err != nil {
		log.Printf("[HTTP] Audio write failed: %v", err)
	}
}
