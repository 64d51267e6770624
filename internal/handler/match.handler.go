package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"sportmatch-service/internal/domain"
	"sportmatch-service/internal/usecase"
	"sportmatch-service/pkg/middleware"
	"sportmatch-service/pkg/response"
)

type MatchHandler struct {
	uc     *usecase.MatchUsecase
	logger *zap.Logger
}

func NewMatchHandler(uc *usecase.MatchUsecase, logger *zap.Logger) *MatchHandler {
	return &MatchHandler{uc: uc, logger: logger}
}

func (h *MatchHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	profile, err := h.uc.Profile(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, profile)
}

func (h *MatchHandler) PublicProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.uc.PublicProfile(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, profile)
}

func (h *MatchHandler) Sports(w http.ResponseWriter, r *http.Request) {
	sports, err := h.uc.Sports(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, sports)
}

// Search filters come in as query parameters, e.g.
// GET /search/partners?sport_id=3&min_skill=intermediate&day=saturday.
func (h *MatchHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	q := r.URL.Query()
	filter := domain.PartnerFilter{
		MinSkill: domain.SkillLevel(q.Get("min_skill")),
		Gender:   domain.Gender(q.Get("gender")),
		Day:      q.Get("day"),
	}
	if v := q.Get("sport_id"); v != "" {
		sportID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "sport_id must be an integer")
			return
		}
		filter.SportID = sportID
	}
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))

	results, fields, err := h.uc.Search(r.Context(), userID, filter)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if !fields.Empty() {
		response.ValidationError(w, fields)
		return
	}
	response.JSON(w, http.StatusOK, results)
}
