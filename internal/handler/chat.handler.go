package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"sportmatch-service/internal/domain"
	"sportmatch-service/internal/usecase"
	"sportmatch-service/pkg/middleware"
	"sportmatch-service/pkg/response"
)

type ChatHandler struct {
	uc     *usecase.ChatUsecase
	logger *zap.Logger
}

func NewChatHandler(uc *usecase.ChatUsecase, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{uc: uc, logger: logger}
}

func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req domain.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, fields, err := h.uc.Send(r.Context(), userID, &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if !fields.Empty() {
		response.ValidationError(w, fields)
		return
	}
	response.JSON(w, http.StatusCreated, msg)
}

func (h *ChatHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	otherID := chi.URLParam(r, "userID")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	msgs, err := h.uc.Conversation(r.Context(), userID, otherID, limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, msgs)
}
