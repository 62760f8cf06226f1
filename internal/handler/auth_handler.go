/*
Package handler provides HTTP handler functions for registration and login.
*/
package handler

import (
	"errors"
	"net/http"

	"dmchat/internal/app/user"
	"dmchat/internal/pkg/auth/jwt"
	"dmchat/internal/pkg/errs"
	"dmchat/internal/pkg/logx"
	"dmchat/internal/pkg/req"
	"dmchat/internal/pkg/resp"
)

// CredentialsInput is the request body shared by registration and login.
type CredentialsInput struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// HandleRegister processes the request to create a new user account.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input CredentialsInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		created, err := deps.Users.Register(r.Context(), input.Name, input.Password)
		if err != nil {
			switch {
			case errors.Is(err, user.ErrInvalid):
				resp.RespondError(w, r, errs.NewError(errs.ErrMissingFields))
			case errors.Is(err, user.ErrNameTaken):
				logx.Warn("Registration conflict: name already exists", "name", input.Name)
				resp.RespondError(w, r, errs.NewError(errs.ErrNameTaken))
			default:
				logx.Error(err, "Failed to create user")
				resp.RespondError(w, r, errs.NewError(errs.ErrStorageUnavailable))
			}
			return
		}

		resp.RespondCreated(w, r, map[string]any{
			"name": created.Name,
		})
	}
}

// HandleLogin verifies user credentials and issues a bearer token.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input CredentialsInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		verified, err := deps.Users.Verify(r.Context(), input.Name, input.Password)
		if err != nil {
			switch {
			case errors.Is(err, user.ErrInvalid):
				resp.RespondError(w, r, errs.NewError(errs.ErrMissingFields))
			case errors.Is(err, user.ErrUnauthorized):
				logx.Warn("Login rejected: bad credentials", "name", input.Name)
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			default:
				logx.Error(err, "Login failed against credential store", "name", input.Name)
				resp.RespondError(w, r, errs.NewError(errs.ErrStorageUnavailable))
			}
			return
		}

		token, err := jwt.GenerateToken(verified.Name, deps.Config.JWTSecret, jwt.IdentityExpiration)
		if err != nil {
			logx.Error(err, "Failed to generate token after login", "name", verified.Name)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"token": token,
		})
	}
}
