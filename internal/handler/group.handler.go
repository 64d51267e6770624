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

type GroupHandler struct {
	uc     *usecase.GroupUsecase
	logger *zap.Logger
}

func NewGroupHandler(uc *usecase.GroupUsecase, logger *zap.Logger) *GroupHandler {
	return &GroupHandler{uc: uc, logger: logger}
}

func groupID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "groupID"), 10, 64)
	return id, err == nil
}

func postID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "postID"), 10, 64)
	return id, err == nil
}

func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req domain.CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	group, fields, err := h.uc.Create(r.Context(), userID, &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if !fields.Empty() {
		response.ValidationError(w, fields)
		return
	}
	response.JSON(w, http.StatusCreated, group)
}

func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := groupID(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "invalid group id")
		return
	}

	group, err := h.uc.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, group)
}

func (h *GroupHandler) Join(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	id, ok := groupID(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "invalid group id")
		return
	}

	if err := h.uc.Join(r.Context(), id, userID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"result": "joined"})
}

func (h *GroupHandler) Leave(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	id, ok := groupID(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "invalid group id")
		return
	}

	if err := h.uc.Leave(r.Context(), id, userID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"result": "left"})
}

func (h *GroupHandler) Mine(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	groups, err := h.uc.GroupsForUser(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, groups)
}

func (h *GroupHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	id, ok := groupID(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "invalid group id")
		return
	}

	var req domain.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	post, fields, err := h.uc.CreatePost(r.Context(), id, userID, &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if !fields.Empty() {
		response.ValidationError(w, fields)
		return
	}
	response.JSON(w, http.StatusCreated, post)
}

func (h *GroupHandler) Posts(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	id, ok := groupID(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "invalid group id")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	posts, err := h.uc.Posts(r.Context(), id, userID, limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, posts)
}

func (h *GroupHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	id, ok := postID(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "invalid post id")
		return
	}

	if err := h.uc.DeletePost(r.Context(), id, userID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"result": "deleted"})
}

func (h *GroupHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	id, ok := postID(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "invalid post id")
		return
	}

	var req domain.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	comment, fields, err := h.uc.AddComment(r.Context(), id, userID, &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if !fields.Empty() {
		response.ValidationError(w, fields)
		return
	}
	response.JSON(w, http.StatusCreated, comment)
}

func (h *GroupHandler) Like(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	id, ok := postID(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "invalid post id")
		return
	}

	if err := h.uc.LikePost(r.Context(), id, userID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"result": "liked"})
}
