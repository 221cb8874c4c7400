package media

import (
	"context"
	"errors"
	"strings"

	pkgerrors "github.com/angelmondragon/dronemart-backend/pkg/errors"
	"github.com/angelmondragon/dronemart-backend/pkg/storage/gcs"
)

// URLSigner issues time-boxed read URLs for objects in the media bucket.
type URLSigner interface {
	Configured() bool
	SignedURL(ctx context.Context, object string) (string, error)
}

// Resolver exchanges an object name for a signed read URL. URLs are never
// cached; callers resolve again once one expires.
type Resolver struct {
	signer URLSigner
}

func NewResolver(signer URLSigner) *Resolver {
	return &Resolver{signer: signer}
}

// Resolve signs name. Errors carry VALIDATION_ERROR for a missing name,
// CONFIGURATION_ERROR when no bucket or credentials are set up, and
// DEPENDENCY_ERROR when signing itself fails.
func (r *Resolver) Resolve(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "object name is required").
			WithDetails(map[string]string{"video": "required"})
	}
	if r == nil || r.signer == nil || !r.signer.Configured() {
		return "", pkgerrors.New(pkgerrors.CodeMisconfigured, "media storage is not configured")
	}

	url, err := r.signer.SignedURL(ctx, strings.TrimPrefix(name, "/"))
	switch {
	case err == nil:
		return url, nil
	case errors.Is(err, gcs.ErrNotConfigured):
		return "", pkgerrors.Wrap(pkgerrors.CodeMisconfigured, err, "media storage is not configured")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "", err
	default:
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to sign media url")
	}
}
