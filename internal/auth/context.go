package auth

import (
	"context"
	"errors"
)

type ctxKey int

const (
	ctxUserID ctxKey = iota
	ctxCenterID
	ctxManagedCenters
	ctxRole
)

// Identity is the request-scoped caller identity extracted from a token.
type Identity struct {
	UserID         string
	CenterID       int
	ManagedCenters []int
	Role           string
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	ctx = context.WithValue(ctx, ctxUserID, id.UserID)
	ctx = context.WithValue(ctx, ctxCenterID, id.CenterID)
	ctx = context.WithValue(ctx, ctxManagedCenters, id.ManagedCenters)
	ctx = context.WithValue(ctx, ctxRole, id.Role)
	return ctx
}

func UserID(ctx context.Context) (string, error) {
	if s, ok := ctx.Value(ctxUserID).(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("user_id not in context")
}

func CenterID(ctx context.Context) (int, error) {
	if n, ok := ctx.Value(ctxCenterID).(int); ok && n > 0 {
		return n, nil
	}
	return 0, errors.New("center_id not in context")
}

// ManagedCenters returns the centers a manager token may aggregate across.
// Non-manager tokens yield an empty list, not an error.
func ManagedCenters(ctx context.Context) []int {
	if ids, ok := ctx.Value(ctxManagedCenters).([]int); ok {
		return ids
	}
	return nil
}

func Role(ctx context.Context) (string, error) {
	if s, ok := ctx.Value(ctxRole).(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("role not in context")
}
