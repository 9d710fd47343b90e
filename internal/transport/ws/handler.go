package ws

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The REST layer authenticates via JWT; cross-origin browser
	// clients are expected during development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades the connection and subscribes it to the session's
// event stream. exists reports whether the session is known.
func (h *Hub) ServeWS(exists func(sessionID string) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := mux.Vars(r)["id"]
		if sessionID == "" || (exists != nil && !exists(sessionID)) {
			http.Error(w, "unknown session", http.StatusNotFound)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("[WS] Upgrade failed: %v", err)
			return
		}

		c := &client{
			hub:       h,
			conn:      conn,
			sessionID: sessionID,
			send:      make(chan []byte, sendBuffer),
		}
		h.register(c)
		go c.writePump()
		go c.readPump()
	}
}
