package websocket

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"

	"github.com/harutok/counts-service/internal/utils/response"
	wsClient "github.com/harutok/counts-service/internal/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin for development
		// In production, you should check the origin properly
		return true
	},
}

// WebSocketHandler subscribes the caller to a user's live count-up events
// @Summary Subscribe to count-up events
// @Description Upgrade to WebSocket and receive count.recorded events for one user
// @Tags events
// @Param user_id query int true "User ID to subscribe to"
// @Success 101 "Switching protocols"
// @Failure 400 {object} response.Response "Bad request"
// @Router /ws [get]
func WebSocketHandler(hub *wsClient.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user_id")
		if _, err := strconv.ParseInt(userID, 10, 64); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("Invalid request")))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("Failed to upgrade WebSocket connection", slog.String("error", err.Error()))
			return
		}

		client := wsClient.NewClient(conn, userID, hub)
		hub.RegisterClient(client)

		client.Start()

		slog.Info("WebSocket subscription established", slog.String("user_id", userID))
	}
}
