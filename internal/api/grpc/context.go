package grpc

import (
	"context"
	"strconv"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"journal-backend/internal/security"
)

// GetUserIDFromContext returns the id of the calling admin, preferring the validated
// claims over the "user-id" header the auth interceptor writes.
func GetUserIDFromContext(ctx context.Context) (int32, error) {
	if claims := security.ClaimsFromContext(ctx); claims != nil {
		return claims.UserID, nil
	}

	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return 0, status.Errorf(codes.Unauthenticated, "metadata is not provided")
	}
	ids := md.Get("user-id")
	if len(ids) == 0 {
		return 0, status.Errorf(codes.Unauthenticated, "user_id is not provided in metadata")
	}
	userID, err := strconv.ParseInt(ids[0], 10, 32)
	if err != nil {
		return 0, status.Errorf(codes.InvalidArgument, "invalid user_id format: %v", err)
	}
	return int32(userID), nil
}
