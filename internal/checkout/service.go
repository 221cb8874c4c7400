package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dronemart-backend/internal/cart"
	"github.com/angelmondragon/dronemart-backend/internal/orders"
	"github.com/angelmondragon/dronemart-backend/pkg/db"
	"github.com/angelmondragon/dronemart-backend/pkg/db/models"
	"github.com/angelmondragon/dronemart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dronemart-backend/pkg/errors"
	"github.com/angelmondragon/dronemart-backend/pkg/logger"
	"github.com/angelmondragon/dronemart-backend/pkg/metrics"
	"github.com/angelmondragon/dronemart-backend/pkg/types"
)

const (
	// AuthPath is where unauthenticated shoppers are sent.
	AuthPath = "/auth"
	// AccountPath is where shoppers land after a completed checkout.
	AccountPath = "/account"
)

type Status string

const (
	StatusRedirect  Status = "redirect"
	StatusCompleted Status = "completed"
	StatusEmpty     Status = "empty"
)

// ClearFailedWarning is set on a completed Outcome whose cart still holds the
// placed lines. Checking out again would place them twice.
const ClearFailedWarning = "orders placed but the cart could not be cleared; clear it before checking out again"

// Outcome is the result of one checkout attempt.
type Outcome struct {
	Status      Status            `json:"status"`
	Redirect    string            `json:"redirect,omitempty"`
	Orders      []orders.OrderDTO `json:"orders"`
	Total       types.Money       `json:"total"`
	CartCleared bool              `json:"cart_cleared"`
	Warning     string            `json:"warning,omitempty"`
}

// Identity is the authenticated shopper. A nil Identity means anonymous.
type Identity struct {
	UserID uuid.UUID
}

// CartStore is the slice of the cart store checkout needs.
type CartStore interface {
	Load(ctx context.Context) (cart.Cart, error)
	Clear(ctx context.Context) (cart.Cart, error)
}

// EventEmitter announces placed orders. Implementations must not fail the
// checkout.
type EventEmitter interface {
	OrdersPlaced(ctx context.Context, placed []models.Order) int
}

// Options tunes the reconciler. Atomic requires Tx.
type Options struct {
	Atomic  bool
	Tx      db.TxRunner
	Events  EventEmitter
	Metrics *metrics.CheckoutMetrics
	Logger  *logger.Logger
}

// Service turns a cart into pending orders, one per line.
type Service struct {
	orders  orders.Repository
	tx      db.TxRunner
	atomic  bool
	events  EventEmitter
	metrics *metrics.CheckoutMetrics
	logg    *logger.Logger
	now     func() time.Time
}

func NewService(repo orders.Repository, opts Options) (*Service, error) {
	if repo == nil {
		return nil, errors.New("orders repository required")
	}
	if opts.Atomic && opts.Tx == nil {
		return nil, errors.New("atomic checkout requires a transaction runner")
	}
	return &Service{
		orders:  repo,
		tx:      opts.Tx,
		atomic:  opts.Atomic,
		events:  opts.Events,
		metrics: opts.Metrics,
		logg:    opts.Logger,
		now:     time.Now,
	}, nil
}

// Checkout reconciles the cart in store into orders for identity.
//
// Without an identity the outcome is a redirect to AuthPath and nothing is
// read or written. An empty cart yields StatusEmpty with no inserts and no
// redirect. Otherwise one pending order is inserted per line, in cart order.
// The first failed insert stops the run: earlier orders stay persisted (unless
// atomic mode rolled them back), the cart is left as it was, and the returned
// error names the failing item. When every insert succeeds the cart is cleared
// and the outcome redirects to AccountPath; if clearing fails the outcome is
// still completed but CartCleared is false and Warning says so.
func (s *Service) Checkout(ctx context.Context, identity *Identity, store CartStore) (*Outcome, error) {
	started := s.now()

	if identity == nil || identity.UserID == uuid.Nil {
		s.metrics.ObserveAttempt(metrics.OutcomeRedirect, s.now().Sub(started))
		return &Outcome{Status: StatusRedirect, Redirect: AuthPath, Orders: []orders.OrderDTO{}}, nil
	}
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is required")
	}

	items, err := store.Load(ctx)
	if err != nil {
		s.metrics.ObserveAttempt(metrics.OutcomeFailed, s.now().Sub(started))
		return nil, err
	}
	if len(items) == 0 {
		s.metrics.ObserveAttempt(metrics.OutcomeEmpty, s.now().Sub(started))
		return &Outcome{Status: StatusEmpty, Orders: []orders.OrderDTO{}, Total: types.NewMoney(items.Total())}, nil
	}

	placed, err := s.place(ctx, identity.UserID, items)
	if err != nil {
		s.metrics.ObserveAttempt(metrics.OutcomeFailed, s.now().Sub(started))
		var ce *CheckoutError
		if errors.As(err, &ce) {
			s.logFailure(ctx, ce)
			return nil, pkgerrors.Wrap(pkgerrors.CodeCheckout, ce, ce.Error()).WithDetails(ce.details())
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checkout failed")
	}

	out := &Outcome{
		Status:      StatusCompleted,
		Redirect:    AccountPath,
		Orders:      make([]orders.OrderDTO, 0, len(placed)),
		Total:       types.NewMoney(items.Total()),
		CartCleared: true,
	}
	if _, err := store.Clear(ctx); err != nil {
		out.CartCleared = false
		out.Warning = ClearFailedWarning
		if s.logg != nil {
			s.logg.Error(s.logg.WithField(ctx, "orders", len(placed)), "orders placed but cart could not be cleared", err)
		}
	}
	for _, o := range placed {
		s.metrics.IncOrder(o.Action.String())
		out.Orders = append(out.Orders, orders.FromModel(o))
	}
	if s.events != nil {
		s.events.OrdersPlaced(ctx, placed)
	}
	s.metrics.ObserveAttempt(metrics.OutcomeCompleted, s.now().Sub(started))
	return out, nil
}

func (s *Service) place(ctx context.Context, userID uuid.UUID, items cart.Cart) ([]models.Order, error) {
	if !s.atomic {
		return s.insertAll(ctx, s.orders, userID, items)
	}

	var placed []models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		placed, err = s.insertAll(ctx, s.orders.WithTx(tx), userID, items)
		return err
	})
	if err != nil {
		var ce *CheckoutError
		if errors.As(err, &ce) {
			ce.Persisted = nil
		}
		return nil, err
	}
	return placed, nil
}

func (s *Service) insertAll(ctx context.Context, repo orders.Repository, userID uuid.UUID, items cart.Cart) ([]models.Order, error) {
	placed := make([]models.Order, 0, len(items))
	for i, line := range items {
		order, err := newOrder(userID, line)
		if err == nil {
			_, err = repo.Create(ctx, order)
		}
		if err != nil {
			persisted := make([]uuid.UUID, 0, len(placed))
			for _, p := range placed {
				persisted = append(persisted, p.ID)
			}
			return placed, &CheckoutError{
				Item:      itemLabel(line),
				ProductID: line.ID,
				Position:  i + 1,
				Persisted: persisted,
				Cause:     err,
			}
		}
		placed = append(placed, *order)
	}
	return placed, nil
}

func newOrder(userID uuid.UUID, line cart.Line) (*models.Order, error) {
	productID, err := uuid.Parse(line.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid product id %q", line.ID)
	}
	if !line.Action.IsValid() {
		return nil, fmt.Errorf("invalid action %q", line.Action)
	}
	return &models.Order{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		Action:    line.Action,
		Status:    enums.OrderStatusPending,
		Quantity:  line.Quantity,
		UnitPrice: line.Price,
	}, nil
}

func itemLabel(line cart.Line) string {
	if line.Name != "" {
		return line.Name
	}
	return line.ID
}

func (s *Service) logFailure(ctx context.Context, ce *CheckoutError) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"item":      ce.Item,
		"position":  ce.Position,
		"persisted": len(ce.Persisted),
		"atomic":    s.atomic,
	})
	s.logg.Error(ctx, "checkout aborted", ce.Cause)
}
