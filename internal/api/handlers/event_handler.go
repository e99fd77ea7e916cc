package handlers

import (
	"net/http"

	ws "github.com/aviramh/gradecast-be/internal/websocket"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// EventHandler upgrades HTTP connections for the live presence feed
// consumed by the admin panel.
type EventHandler struct {
	hub *ws.Hub
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(hub *ws.Hub) *EventHandler {
	return &EventHandler{hub: hub}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins (consider tightening this in production).
		return true
	},
}

// Serve handles the WebSocket connection request.
func (h *EventHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	client := ws.NewClient(h.hub, conn)
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
