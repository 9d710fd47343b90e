package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"intervue/internal/extract"
	"intervue/internal/service"
	"intervue/internal/transport/rest/middleware"
)

const maxResumeBytes = 10 << 20 // 10 MiB upload cap

// InterviewHandler serves session lifecycle endpoints
type InterviewHandler struct {
	interviews *service.InterviewService
}

func NewInterviewHandler(interviews *service.InterviewService) *InterviewHandler {
	return &InterviewHandler{interviews: interviews}
}

// Start handles POST /v1/interviews. The request is multipart: form
// fields describe the session, an optional "resume" file part carries
// the upload.
func (h *InterviewHandler) Start(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := r.ParseMultipartForm(maxResumeBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	params := service.StartParams{
		Username:        claims.Username,
		Category:        claims.Category,
		Track:           r.FormValue("track"),
		SubTrack:        r.FormValue("subTrack"),
		JobDescription:  r.FormValue("jobDescription"),
		UseCamera:       r.FormValue("useCamera") == "true",
		IcebreakerFrame: r.FormValue("icebreakerFrame"),
	}

	if file, header, err := r.FormFile("resume"); err == nil {
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxResumeBytes))
		if err != nil {
			writeError(w, http.StatusBadRequest, "could not read resume upload")
			return
		}
		params.ResumeFilename = header.Filename
		params.ResumeData = data
	}

	resp, err := h.interviews.Start(r.Context(), params)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupportedType) {
			writeError(w, http.StatusBadRequest, "unsupported resume file type")
			return
		}
		log.Printf("[HTTP] Interview start failed: %v", err)
		writeError(w, http.StatusInternalServerError, "could not start interview")
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// SubmitAnswer handles POST /v1/interviews/{id}/answers
func (h *InterviewHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	var req struct {
		Answer string `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.interviews.SubmitAnswer(r.Context(), sessionID, req.Answer)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			writeError(w, http.StatusNotFound, "interview session not found")
		case errors.Is(err, service.ErrSessionFinished):
			writeError(w, http.StatusConflict, "interview already finished")
		default:
			log.Printf("[HTTP] Answer submission failed: %v", err)
			writeError(w, http.StatusInternalServerError, "could not process answer")
		}
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// CurrentQuestion handles GET /v1/interviews/{id}/question/current
func (h *InterviewHandler) CurrentQuestion(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	question, number, total, err := h.interviews.CurrentQuestion(sessionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionFinished):
			writeError(w, http.StatusConflict, "interview already finished")
		default:
			writeError(w, http.StatusNotFound, "interview session not found")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"currentQuestion": question,
		"questionNumber":  number,
		"totalQuestions":  total,
	})
}

// Icebreaker handles POST /v1/interviews/{id}/icebreaker
func (h *InterviewHandler) Icebreaker(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	var req struct {
		Frame string `json:"frame"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ice, err := h.interviews.Icebreaker(r.Context(), sessionID, req.Frame)
	if err != nil {
		writeError(w, http.StatusNotFound, "interview session not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"icebreaker": ice})
}

// Teardown handles DELETE /v1/interviews/{id}
func (h *InterviewHandler) Teardown(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	h.interviews.Teardown(r.Context(), sessionID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "session discarded"})
}

// SessionExists reports whether a session is live; used by the
// websocket upgrade.
func (h *InterviewHandler) SessionExists(sessionID string) bool {
	_, err := h.interviews.Session(sessionID)
	return err == nil
}
