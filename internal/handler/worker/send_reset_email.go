package worker

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/opustools/opustools-go/internal/logger"
	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/task"
	"github.com/opustools/opustools-go/internal/uuid"
)

// SendPasswordResetEmailHandler handles an auth:password_reset_email task.
func SendPasswordResetEmailHandler(ctx context.Context, p task.PasswordResetEmailPayload, svc port.PasswordResetMailer) error {
	id, err := uuid.Parse(p.UserID)
	if err != nil {
		logger.Errorf(ctx, "❌  Invalid user ID %q: %v", p.UserID, err)
		return fmt.Errorf("invalid user id %q: %w", p.UserID, asynq.SkipRetry)
	}

	in := port.SendPasswordResetEmailInput{UserID: id, UID: p.UID, Token: p.Token}
	if err := svc.SendPasswordResetEmail(ctx, in); err != nil {
		logger.Errorf(ctx, "❌  Failed to send password reset e-mail to user #%s: %v", id, err)
		return err
	}

	logger.Infof(ctx, "✅  Password reset e-mail sent to user #%s", id)
	return nil
}
