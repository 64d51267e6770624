package handler

import (
	"net/http"

	"go.uber.org/zap"

	"sportmatch-service/internal/ws"
	"sportmatch-service/pkg/middleware"
	"sportmatch-service/pkg/response"
)

// WSHandler upgrades authenticated requests into hub clients. Browsers
// cannot set headers on websocket dials, so the auth middleware also accepts
// the token as a query parameter on this route.
type WSHandler struct {
	hub    *ws.Hub
	logger *zap.Logger
}

func NewWSHandler(hub *ws.Hub, logger *zap.Logger) *WSHandler {
	return &WSHandler{hub: hub, logger: logger}
}

func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	h.hub.ServeWS(w, r, userID)
}

// Health reports service liveness plus the live connection count.
func (h *WSHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"service":     "sportmatch-service",
		"connections": h.hub.ClientCount(),
	})
}
