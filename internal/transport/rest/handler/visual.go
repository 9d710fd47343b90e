package handler

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"intervue/internal/service"
)

// VisualHandler serves camera frame ingestion
type VisualHandler struct {
	interviews *service.InterviewService
	visual     *service.VisualService
}

func NewVisualHandler(interviews *service.InterviewService, visual *service.VisualService) *VisualHandler {
	return &VisualHandler{interviews: interviews, visual: visual}
}

// IngestFrame handles POST /v1/interviews/{id}/frames. The frame is a
// base64 data URL as produced by canvas.toDataURL.
func (h *VisualHandler) IngestFrame(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	if _, err := h.interviews.Session(sessionID); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "interview session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "could not load session")
		return
	}

	var req struct {
		Frame string `json:"frame"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Frame == "" {
		writeError(w, http.StatusBadRequest, "missing frame data")
		return
	}

	data, err := decodeDataURL(req.Frame)
	if err != nil {
		writeError(w, http.StatusBadRequest, "frame is not valid base64 image data")
		return
	}

	sample, err := h.visual.Ingest(r.Context(), sessionID, data)
	if err != nil {
		log.Printf("[HTTP] Frame ingestion failed: %v", err)
		writeError(w, http.StatusInternalServerError, "could not store frame analysis")
		return
	}
	writeJSON(w, http.StatusOK, sample)
}

// decodeDataURL strips an optional "data:image/...;base64," prefix and
// decodes the remainder.
func decodeDataURL(s string) ([]byte, error) {
	if idx := strings.Index(s, ","); idx != -1 && strings.HasPrefix(s, "data:") {
		s = s[idx+1:]
	}
	return base64.StdEncoding.DecodeString(s)
}
