package grpc

import (
	"context"
	"strings"

	"google.golang.org/grpc/metadata"

	"clinicsched/internal/domain"
)

// Identity is established upstream. The gateway in front of this server
// forwards the authenticated caller in these keys.
const (
	actorIDKey   = "x-actor-id"
	actorRoleKey = "x-actor-role"
)

func firstValue(ctx context.Context, keys ...string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	for _, k := range keys {
		if values := md.Get(k); len(values) > 0 {
			return strings.TrimSpace(values[0])
		}
	}
	return ""
}

func actorFromContext(ctx context.Context) (domain.Actor, error) {
	id := firstValue(ctx, actorIDKey)
	if id == "" {
		return domain.Actor{}, &fieldError{field: actorIDKey, reason: "metadata is required"}
	}
	role, err := domain.ParseRole(firstValue(ctx, actorRoleKey))
	if err != nil {
		return domain.Actor{}, &fieldError{field: actorRoleKey, reason: "metadata must be provider, patient or admin"}
	}
	return domain.Actor{ID: id, Role: role}, nil
}

func idempotencyKey(ctx context.Context) string {
	return firstValue(ctx, "idempotency-key", "x-idempotency-key")
}
