package account

import (
	"errors"

	"github.com/opustools/opustools-go/internal/validation"
)

var (
	ErrUserNotFound = errors.New("user not found")

	ErrMissingIdentifier  = validation.NewError("error", `Must include either "username" or "email".`)
	ErrInvalidCredentials = validation.NewError("error", "Unable to log in with provided credentials.")
	ErrInvalidResetToken  = validation.NewError("error", "Invalid or expired reset token.")
	ErrPasswordMismatch   = validation.NewError("password", "Password fields didn't match.")
	ErrUsernameTaken      = validation.NewError("username", "A user with that username already exists.")
	ErrEmailTaken         = validation.NewError("email", "A user with that email already exists.")
)
