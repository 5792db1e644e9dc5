package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/mkravets/gearlog-backend/internal/domain"
	"github.com/mkravets/gearlog-backend/pkg/ctxutil"
)

// Authorize checks that the caller in ctx may act on a resource owned by
// ownerID. Admins may act on anything. Returns domain.ErrUnauthorized when no
// caller is present and domain.ErrForbidden on an ownership mismatch.
func Authorize(ctx context.Context, ownerID uuid.UUID) error {
	callerID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}
	if callerID == ownerID || ctxutil.IsAdminFromCtx(ctx) {
		return nil
	}
	return domain.ErrForbidden
}
