package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/dronemart-backend/internal/cart"
	"github.com/angelmondragon/dronemart-backend/internal/checkout"
	"github.com/angelmondragon/dronemart-backend/internal/orders"
	pkgerrors "github.com/angelmondragon/dronemart-backend/pkg/errors"
)

type stubCheckout struct {
	outcome *checkout.Outcome
	err     error

	calls    int
	identity *checkout.Identity
	store    checkout.CartStore
}

func (s *stubCheckout) Checkout(_ context.Context, identity *checkout.Identity, store checkout.CartStore) (*checkout.Outcome, error) {
	s.calls++
	s.identity = identity
	s.store = store
	return s.outcome, s.err
}

func TestCheckoutAnonymousDoesNotNeedCart(t *testing.T) {
	svc := &stubCheckout{outcome: &checkout.Outcome{Status: checkout.StatusRedirect, Redirect: checkout.AuthPath, Orders: []orders.OrderDTO{}}}
	rec := httptest.NewRecorder()

	Checkout(svc, cart.NewStores(newMemRedis(), 0, nil), nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, 1, svc.calls)
	assert.Nil(t, svc.identity)
	assert.Nil(t, svc.store)

	var got checkout.Outcome
	decodeData(t, rec, &got)
	assert.Equal(t, checkout.StatusRedirect, got.Status)
	assert.Equal(t, "/auth", got.Redirect)
}

func TestCheckoutAuthenticatedRequiresCartID(t *testing.T) {
	svc := &stubCheckout{}
	rec := httptest.NewRecorder()
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil), uuid.New())

	Checkout(svc, cart.NewStores(newMemRedis(), 0, nil), nil).ServeHTTP(rec, req)

	requireErrorCode(t, rec, http.StatusBadRequest, string(pkgerrors.CodeValidation))
	assert.Zero(t, svc.calls)
}

func TestCheckoutCompletedReturnsCreated(t *testing.T) {
	userID := uuid.New()
	svc := &stubCheckout{outcome: &checkout.Outcome{
		Status:   checkout.StatusCompleted,
		Redirect: checkout.AccountPath,
		Orders:   []orders.OrderDTO{{ID: uuid.New(), ProductName: "Falcon"}},
	}}
	req := asUser(withCart(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil), uuid.NewString()), userID)
	rec := httptest.NewRecorder()

	Checkout(svc, cart.NewStores(newMemRedis(), 0, nil), nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, svc.identity)
	assert.Equal(t, userID, svc.identity.UserID)
	assert.NotNil(t, svc.store)

	var got checkout.Outcome
	decodeData(t, rec, &got)
	assert.Equal(t, "/account", got.Redirect)
	require.Len(t, got.Orders, 1)
}

func TestCheckoutEmptyCartIsNotARedirect(t *testing.T) {
	svc := &stubCheckout{outcome: &checkout.Outcome{Status: checkout.StatusEmpty, Orders: []orders.OrderDTO{}}}
	req := asUser(withCart(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil), uuid.NewString()), uuid.New())
	rec := httptest.NewRecorder()

	Checkout(svc, cart.NewStores(newMemRedis(), 0, nil), nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got checkout.Outcome
	decodeData(t, rec, &got)
	assert.Equal(t, checkout.StatusEmpty, got.Status)
	assert.Empty(t, got.Redirect)
}

func TestCheckoutPartialFailureNamesItem(t *testing.T) {
	svc := &stubCheckout{err: pkgerrors.New(pkgerrors.CodeCheckout, "failed to create order for Hawk: insert failed").
		WithDetails(map[string]any{"item": "Hawk", "position": 2})}
	req := asUser(withCart(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil), uuid.NewString()), uuid.New())
	rec := httptest.NewRecorder()

	Checkout(svc, cart.NewStores(newMemRedis(), 0, nil), nil).ServeHTTP(rec, req)

	apiErr := requireErrorCode(t, rec, http.StatusConflict, string(pkgerrors.CodeCheckout))
	assert.Contains(t, apiErr.Message, "Hawk")
	assert.Contains(t, string(apiErr.Details), `"item":"Hawk"`)
}
