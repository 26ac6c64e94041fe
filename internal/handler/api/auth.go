package api

import (
	"errors"
	"net/http"

	"github.com/opustools/opustools-go/internal/api_context"
	"github.com/opustools/opustools-go/internal/logger"
	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/usecase/account"
	"github.com/opustools/opustools-go/internal/uuid"
)

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// updateUserRequest has no username: it is read-only once registered.
type updateUserRequest struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

type resetRequest struct {
	Email string `json:"email"`
}

type resetConfirmRequest struct {
	UID         string `json:"uid"`
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func RegisterHandler(svc port.Registerer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := decodeJSON(r, &req); err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid JSON body.", err)
			return
		}

		out, err := svc.Register(r.Context(), port.RegisterInput(req))
		if err != nil {
			writeUseCaseError(w, err, "Could not register user")
			return
		}

		RespondJSON(w, http.StatusCreated, out)
		logger.Infof(r.Context(), "✅  Registered user #%s", out.User.ID)
	}
}

func LoginHandler(svc port.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(r, &req); err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid JSON body.", err)
			return
		}

		out, err := svc.Login(r.Context(), port.LoginInput(req))
		if err != nil {
			writeUseCaseError(w, err, "Could not log in")
			return
		}

		RespondJSON(w, http.StatusOK, out)
		logger.Infof(r.Context(), "✅  User #%s logged in", out.User.ID)
	}
}

func LogoutHandler(svc port.SessionCloser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jti, exp, ok := api_context.AuthTokenFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
			return
		}

		if err := svc.Logout(r.Context(), port.LogoutInput{TokenID: jti, ExpiresAt: exp}); err != nil {
			WriteError(w, http.StatusInternalServerError, "Could not log out", err)
			return
		}

		RespondJSON(w, http.StatusOK, MessageResponse{Message: "Successfully logged out."})
	}
}

func GetUserHandler(svc port.UserGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := authUser(w, r)
		if !ok {
			return
		}

		user, err := svc.GetUser(r.Context(), id)
		if err != nil {
			writeUserError(w, err)
			return
		}
		RespondJSON(w, http.StatusOK, user)
	}
}

func UpdateUserHandler(svc port.UserUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := authUser(w, r)
		if !ok {
			return
		}

		var req updateUserRequest
		if err := decodeJSON(r, &req); err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid JSON body.", err)
			return
		}

		user, err := svc.UpdateUser(r.Context(), port.UpdateUserInput{
			ID:        id,
			Email:     req.Email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
		})
		if err != nil {
			writeUserError(w, err)
			return
		}

		RespondJSON(w, http.StatusOK, user)
		logger.Infof(r.Context(), "✅  Updated user #%s", id)
	}
}

func RequestPasswordResetHandler(svc port.PasswordResetRequester) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resetRequest
		if err := decodeJSON(r, &req); err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid JSON body.", err)
			return
		}

		if err := svc.RequestPasswordReset(r.Context(), req.Email); err != nil {
			writeUseCaseError(w, err, "Could not request password reset")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func ConfirmPasswordResetHandler(svc port.PasswordResetConfirmer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resetConfirmRequest
		if err := decodeJSON(r, &req); err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid JSON body.", err)
			return
		}

		if err := svc.ConfirmPasswordReset(r.Context(), port.ConfirmPasswordResetInput(req)); err != nil {
			writeUseCaseError(w, err, "Could not reset password")
			return
		}
		w.WriteHeader(http.StatusNoContent)
		logger.Info(r.Context(), "✅  Password reset confirmed")
	}
}

func authUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := api_context.AuthUserIDFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
	}
	return id, ok
}

func writeUserError(w http.ResponseWriter, err error) {
	if errors.Is(err, account.ErrUserNotFound) {
		WriteError(w, http.StatusNotFound, "User not found.", nil)
		return
	}
	writeUseCaseError(w, err, "Could not load user")
}
