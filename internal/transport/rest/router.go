package rest

import (
	"net/http"

	"github.com/gorilla/mux"

	"intervue/internal/service"
	"intervue/internal/transport/rest/handler"
	"intervue/internal/transport/rest/middleware"
	"intervue/internal/transport/ws"
)

// Deps holds everything the router wires together
type Deps struct {
	Auth       *service.AuthService
	Interviews *service.InterviewService
	Visual     *service.VisualService
	Speech     *service.SpeechService
	Hub        *ws.Hub
}

// NewRouter builds the HTTP surface: public auth and health, and the
// JWT-protected interview API.
func NewRouter(deps Deps) *mux.Router {
	r := mux.NewRouter()
	r.Use(corsMiddleware)

	authHandler := handler.NewAuthHandler(deps.Auth)
	interviewHandler := handler.NewInterviewHandler(deps.Interviews)
	visualHandler := handler.NewVisualHandler(deps.Interviews, deps.Visual)
	speechHandler := handler.NewSpeechHandler(deps.Speech)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost, http.MethodOptions)

	protected := v1.NewRoute().Subrouter()
	protected.Use(middleware.Auth(deps.Auth))
	protected.HandleFunc("/interviews", interviewHandler.Start).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/interviews/{id}/answers", interviewHandler.SubmitAnswer).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/interviews/{id}/question/current", interviewHandler.CurrentQuestion).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/interviews/{id}/frames", visualHandler.IngestFrame).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/interviews/{id}/icebreaker", interviewHandler.Icebreaker).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/interviews/{id}", interviewHandler.Teardown).Methods(http.MethodDelete, http.MethodOptions)
	protected.HandleFunc("/speech", speechHandler.Synthesize).Methods(http.MethodPost, http.MethodOptions)

	if deps.Hub != nil {
		// Browsers cannot set Authorization headers on websocket
		// upgrades, so this route checks session existence instead.
		v1.HandleFunc("/ws/interviews/{id}", deps.Hub.ServeWS(interviewHandler.SessionExists)).Methods(http.MethodGet)
	}

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
