package controllers

import (
	"net/http"

	"github.com/angelmondragon/dronemart-backend/api/middleware"
	"github.com/angelmondragon/dronemart-backend/api/responses"
	"github.com/angelmondragon/dronemart-backend/api/validators"
	"github.com/angelmondragon/dronemart-backend/internal/auth"
	pkgerrors "github.com/angelmondragon/dronemart-backend/pkg/errors"
	"github.com/angelmondragon/dronemart-backend/pkg/logger"
)

// AccessTokenHeader mirrors the access token for clients that read headers.
const AccessTokenHeader = "X-DM-Token"

var errAuthUnavailable = pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")

// writeTokens answers with the token pair and copies the access token into
// AccessTokenHeader.
func writeTokens(w http.ResponseWriter, status int, tokens *auth.TokenResponse) {
	w.Header().Set(AccessTokenHeader, tokens.AccessToken)
	responses.WriteSuccessStatus(w, status, tokens)
}

func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, errAuthUnavailable)
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		tokens, err := svc.Login(ctx, body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		writeTokens(w, http.StatusOK, tokens)
	}
}

// AuthRegister creates a customer account and signs it in. A failed
// registration never attempts the login.
func AuthRegister(registerSvc auth.RegisterService, authSvc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if registerSvc == nil || authSvc == nil {
			responses.WriteError(ctx, logg, w, errAuthUnavailable)
			return
		}

		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if _, err := registerSvc.Register(ctx, body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		tokens, err := authSvc.Login(ctx, auth.LoginRequest{Email: body.Email, Password: body.Password})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		writeTokens(w, http.StatusCreated, tokens)
	}
}

// AuthRefresh rotates the refresh token. The bearer token may be expired but
// must still carry a valid signature.
func AuthRefresh(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, errAuthUnavailable)
			return
		}

		var body auth.RefreshRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		bearer := middleware.BearerToken(r)
		if bearer == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}
		tokens, err := svc.Refresh(ctx, bearer, body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		writeTokens(w, http.StatusOK, tokens)
	}
}

// AuthLogout revokes the session bound to the caller's access token.
func AuthLogout(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, errAuthUnavailable)
			return
		}
		if err := svc.Logout(ctx, middleware.AccessIDFromContext(ctx)); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}
