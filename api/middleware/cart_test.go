package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cartEcho(got *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = CartIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestCartIDRequiresUUIDHeader(t *testing.T) {
	for _, header := range []string{"", "cart-1", uuid.Nil.String()} {
		t.Run(header, func(t *testing.T) {
			var got string
			req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
			if header != "" {
				req.Header.Set(CartIDHeader, header)
			}
			rec := httptest.NewRecorder()

			CartID(nil)(cartEcho(&got)).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, got)
		})
	}
}

func TestCartIDExposesNormalizedID(t *testing.T) {
	id := uuid.New()
	var got string
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set(CartIDHeader, "  "+id.String()+" ")
	rec := httptest.NewRecorder()

	CartID(nil)(cartEcho(&got)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, id.String(), got)
}

func TestOptionalCartID(t *testing.T) {
	var got string
	rec := httptest.NewRecorder()
	OptionalCartID(nil)(cartEcho(&got)).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, got)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
	req.Header.Set(CartIDHeader, "nope")
	rec = httptest.NewRecorder()
	OptionalCartID(nil)(cartEcho(&got)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
