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
	"sportmatch-service/pkg/xerrors"
)

// SetupHandler serves the four-step profile completion flow. These routes
// stay reachable for incomplete profiles; everything else redirects here.
type SetupHandler struct {
	uc     *usecase.SetupUsecase
	logger *zap.Logger
}

func NewSetupHandler(uc *usecase.SetupUsecase, logger *zap.Logger) *SetupHandler {
	return &SetupHandler{uc: uc, logger: logger}
}

func (h *SetupHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	status, err := h.uc.Status(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, status)
}

// SubmitStep dispatches POST /setup/step/{step}. Validation failures come
// back as field errors; stage mismatches as a conflict.
func (h *SetupHandler) SubmitStep(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	step, err := strconv.Atoi(chi.URLParam(r, "step"))
	if err != nil || step < domain.StepPersonal || step > domain.StepFinish {
		response.Error(w, http.StatusNotFound, "unknown setup step")
		return
	}

	var fields xerrors.FieldErrors
	switch step {
	case domain.StepPersonal:
		var req domain.Step1Request
		if !decode(w, r, &req) {
			return
		}
		fields, err = h.uc.SubmitStep1(r.Context(), userID, &req)
	case domain.StepSports:
		var req domain.Step2Request
		if !decode(w, r, &req) {
			return
		}
		fields, err = h.uc.SubmitStep2(r.Context(), userID, &req)
	case domain.StepSchedule:
		var req domain.Step3Request
		if !decode(w, r, &req) {
			return
		}
		fields, err = h.uc.SubmitStep3(r.Context(), userID, &req)
	case domain.StepFinish:
		var req domain.Step4Request
		if !decode(w, r, &req) {
			return
		}
		fields, err = h.uc.SubmitStep4(r.Context(), userID, &req)
	}

	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if !fields.Empty() {
		response.ValidationError(w, fields)
		return
	}

	status, err := h.uc.Status(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, status)
}

func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
