package xerrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// FieldErrors maps a payload field name to a human-readable message.
// Returned to the caller for re-display; never treated as a system fault.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	for field, msg := range fe {
		return field + ": " + msg
	}
	return "validation failed"
}

func (fe FieldErrors) Empty() bool { return len(fe) == 0 }

func ParsePGErrorCode(err error) string {
	if pgErr, ok := err.(*pgconn.PgError); ok {
		return pgErr.Code // e.g. 23505 for unique_violation
	}
	return "unknown"
}

// Generic
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrInternalServer = errors.New("internal server error")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
	ErrInvalidInput   = errors.New("invalid input provided")
)

// Registration / Login
var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailAlreadyInUse  = errors.New("email already in use")
	ErrEmailRequired      = errors.New("email required")
	ErrPasswordRequired   = errors.New("password required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters long")
	ErrInvalidEmailFormat = errors.New("invalid email format")
)

// Profile setup
var (
	ErrInvalidSetupStage = errors.New("invalid setup stage")
	ErrIncompleteProfile = errors.New("incomplete profile")
	ErrSportNotFound     = errors.New("sport not found")
	ErrTermsRequired     = errors.New("you must accept terms and conditions to finish setup")
)

// Friends
var (
	ErrFriendRequestExists  = errors.New("friend request already exists")
	ErrAlreadyFriends       = errors.New("users are already friends")
	ErrSelfFriendRequest    = errors.New("cannot send a friend request to yourself")
	ErrFriendRequestClosed  = errors.New("friend request already handled")
	ErrNotFriends           = errors.New("users are not friends")
	ErrFriendRequestUnknown = errors.New("friend request not found")
)

// Groups
var (
	ErrGroupNotFound  = errors.New("group not found")
	ErrNotGroupMember = errors.New("not a member of this group")
	ErrAlreadyMember  = errors.New("already a member of this group")
	ErrNotPostAuthor  = errors.New("only the author can modify this post")
)

// Realtime
var (
	ErrNotConnected        = errors.New("realtime connection not established")
	ErrChannelUnauthorized = errors.New("not authorized for this channel")
)

// Token
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)
