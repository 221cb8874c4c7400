package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/dronemart-backend/api/responses"
	pkgerrors "github.com/angelmondragon/dronemart-backend/pkg/errors"
	"github.com/angelmondragon/dronemart-backend/pkg/logger"
)

// MediaResolver signs an object name into a short-lived read URL.
type MediaResolver interface {
	Resolve(ctx context.Context, name string) (string, error)
}

type signedURLResponse struct {
	URL string `json:"url"`
}

// SignedURL answers GET /api/signed-url?video=<name>.
func SignedURL(resolver MediaResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if resolver == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeMisconfigured, "media storage is not configured"))
			return
		}
		url, err := resolver.Resolve(r.Context(), r.URL.Query().Get("video"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		responses.WriteSuccess(w, signedURLResponse{URL: url})
	}
}
