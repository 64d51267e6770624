package middleware

import (
	"context"
	"net/http"

	"sportmatch-service/pkg/jwtutil"
)

type contextKey string

const (
	ContextUserID          contextKey = "userID"
	ContextToken           contextKey = "token"
	ContextProfileComplete contextKey = "profileComplete"
	ContextSetupStep       contextKey = "setupStep"
)

func GetUserID(ctx context.Context) (string, bool) {
	val, ok := ctx.Value(ContextUserID).(string)
	return val, ok
}

func GetToken(ctx context.Context) (string, bool) {
	val, ok := ctx.Value(ContextToken).(string)
	return val, ok
}

// PrincipalFromContext rebuilds the gate's view of the session. Returns nil
// for anonymous requests.
func PrincipalFromContext(ctx context.Context) *Principal {
	userID, ok := ctx.Value(ContextUserID).(string)
	if !ok || userID == "" {
		return nil
	}
	complete, _ := ctx.Value(ContextProfileComplete).(bool)
	step, _ := ctx.Value(ContextSetupStep).(int)
	return &Principal{
		UserID:          userID,
		ProfileComplete: complete,
		SetupStep:       step,
	}
}

func setContextValues(r *http.Request, claims *jwtutil.Claims, token string, complete bool, step int) *http.Request {
	ctx := context.WithValue(r.Context(), ContextUserID, claims.UserID)
	ctx = context.WithValue(ctx, ContextToken, token)
	ctx = context.WithValue(ctx, ContextProfileComplete, complete)
	ctx = context.WithValue(ctx, ContextSetupStep, step)
	return r.WithContext(ctx)
}
