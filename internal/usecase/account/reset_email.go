package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/opustools/opustools-go/internal/logger"
	"github.com/opustools/opustools-go/internal/port"
)

const resetSubject = "Reset Your Password for OpusTools"

type resetMailerSrv struct {
	users       port.UserRepository
	mailer      port.Mailer
	frontendURL string
}

func NewPasswordResetMailer(users port.UserRepository, mailer port.Mailer, frontendURL string) port.PasswordResetMailer {
	return &resetMailerSrv{users, mailer, strings.TrimRight(frontendURL, "/")}
}

func (s *resetMailerSrv) SendPasswordResetEmail(ctx context.Context, in port.SendPasswordResetEmailInput) error {
	user, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.Warnf(ctx, "user #%s is gone, reset email dropped", in.UserID)
			return nil
		}
		return err
	}

	link := fmt.Sprintf("%s/password/reset/confirm/%s/%s/", s.frontendURL, in.UID, in.Token)
	if err := s.mailer.Send(ctx, user.Email, resetSubject, resetBody(user.Username, link)); err != nil {
		return fmt.Errorf("failed to send reset email to user #%s: %w", user.ID, err)
	}
	return nil
}

func resetBody(username, link string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", username)
	b.WriteString("You are receiving this email because you requested a password reset for your account at OpusTools.\n\n")
	b.WriteString("Please go to the following page and choose a new password:\n")
	fmt.Fprintf(&b, "%s\n\n", link)
	b.WriteString("If you did not request a password reset, please ignore this email.\n\n")
	b.WriteString("Thanks,\nThe OpusTools Team")
	return b.String()
}
