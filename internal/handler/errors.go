package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"sportmatch-service/pkg/response"
	"sportmatch-service/pkg/xerrors"
)

// statusFor maps domain errors to HTTP status codes. Unknown errors are
// internal faults and must not leak their message.
func statusFor(err error) int {
	switch {
	case errors.Is(err, xerrors.ErrInvalidRequest),
		errors.Is(err, xerrors.ErrInvalidEmailFormat),
		errors.Is(err, xerrors.ErrPasswordTooShort),
		errors.Is(err, xerrors.ErrSelfFriendRequest):
		return http.StatusBadRequest

	case errors.Is(err, xerrors.ErrInvalidCredentials),
		errors.Is(err, xerrors.ErrInvalidToken),
		errors.Is(err, xerrors.ErrExpiredToken):
		return http.StatusUnauthorized

	case errors.Is(err, xerrors.ErrIncompleteProfile),
		errors.Is(err, xerrors.ErrNotFriends),
		errors.Is(err, xerrors.ErrNotGroupMember),
		errors.Is(err, xerrors.ErrNotPostAuthor),
		errors.Is(err, xerrors.ErrChannelUnauthorized):
		return http.StatusForbidden

	case errors.Is(err, xerrors.ErrNotFound),
		errors.Is(err, xerrors.ErrUserNotFound),
		errors.Is(err, xerrors.ErrSportNotFound),
		errors.Is(err, xerrors.ErrGroupNotFound),
		errors.Is(err, xerrors.ErrFriendRequestUnknown):
		return http.StatusNotFound

	case errors.Is(err, xerrors.ErrEmailAlreadyInUse),
		errors.Is(err, xerrors.ErrAlreadyFriends),
		errors.Is(err, xerrors.ErrFriendRequestExists),
		errors.Is(err, xerrors.ErrFriendRequestClosed),
		errors.Is(err, xerrors.ErrAlreadyMember),
		errors.Is(err, xerrors.ErrInvalidSetupStage):
		return http.StatusConflict

	case errors.Is(err, xerrors.ErrTermsRequired):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", zap.Error(err))
		response.Error(w, status, "internal server error")
		return
	}
	response.Error(w, status, err.Error())
}
