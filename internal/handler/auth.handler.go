package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"sportmatch-service/internal/domain"
	"sportmatch-service/internal/usecase"
	"sportmatch-service/pkg/response"
)

type AuthHandler struct {
	uc     *usecase.AuthUsecase
	logger *zap.Logger
}

func NewAuthHandler(uc *usecase.AuthUsecase, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{uc: uc, logger: logger}
}

type sessionPayload struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := h.uc.Register(r.Context(), &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.JSON(w, http.StatusCreated, sessionPayload{User: user, Token: token})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := h.uc.Login(r.Context(), &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, sessionPayload{User: user, Token: token})
}
