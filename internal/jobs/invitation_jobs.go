package jobs

import (
	"context"

	"journal-backend/internal/logger"
)

// ExpireInvitations moves pending invitations past their expiry date to EXPIRED.
func (jr *JobRunner) ExpireInvitations() {
	jr.runWithRecovery("ExpireInvitations", func() {
		n, err := jr.services.Invitation.ExpirePending(context.Background(), jr.now().UTC())
		if err != nil {
			logger.Error("Failed to expire invitations", "error", err)
			return
		}
		logger.Info("Expired invitations", "count", n)
	})
}
