package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"sportmatch-service/internal/usecase"
	"sportmatch-service/pkg/middleware"
	"sportmatch-service/pkg/response"
)

type FriendHandler struct {
	uc     *usecase.FriendUsecase
	logger *zap.Logger
}

func NewFriendHandler(uc *usecase.FriendUsecase, logger *zap.Logger) *FriendHandler {
	return &FriendHandler{uc: uc, logger: logger}
}

func (h *FriendHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req struct {
		ToUser string `json:"to_user"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ToUser == "" {
		response.Error(w, http.StatusBadRequest, "to_user is required")
		return
	}

	fr, err := h.uc.Send(r.Context(), userID, req.ToUser)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusCreated, fr)
}

func (h *FriendHandler) Respond(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	requestID := chi.URLParam(r, "requestID")

	var req struct {
		Accept bool `json:"accept"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fr, err := h.uc.Respond(r.Context(), userID, requestID, req.Accept)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, fr)
}

func (h *FriendHandler) Incoming(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	reqs, err := h.uc.Incoming(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, reqs)
}

func (h *FriendHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	friends, err := h.uc.Friends(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, friends)
}
