package cart

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/dronemart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dronemart-backend/pkg/errors"
	"github.com/angelmondragon/dronemart-backend/pkg/logger"
)

// Store is the read-modify-write layer over one cart slot. Every mutator loads
// the slot, changes the cart, persists it and returns the new cart. There is
// no isolation between concurrent writers: the last write wins.
type Store struct {
	slot Slot
	logg *logger.Logger
}

func NewStore(slot Slot, logg *logger.Logger) *Store {
	return &Store{slot: slot, logg: logg}
}

// Load returns the sanitized cart. Corrupt content yields an empty cart; only
// an unreachable slot is an error.
func (s *Store) Load(ctx context.Context) (Cart, error) {
	raw, err := s.slot.Read(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to read cart")
	}
	return Decode(raw), nil
}

// AddOrIncrement adds one unit of productID under mode, or bumps the quantity
// of the existing (productID, mode) line.
func (s *Store) AddOrIncrement(ctx context.Context, productID string, mode enums.TransactionMode, unitPrice decimal.Decimal, name string) (Cart, error) {
	productID = strings.TrimSpace(productID)
	details := map[string]string{}
	if productID == "" {
		details["product_id"] = "required"
	}
	if !mode.IsValid() {
		details["action"] = "must be buy or rent"
	}
	if !unitPrice.IsPositive() {
		details["price"] = "must be greater than zero"
	}
	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cart item").WithDetails(details)
	}

	return s.mutate(ctx, func(c Cart) Cart {
		if i := c.index(productID, mode); i >= 0 {
			c[i].Quantity = addQuantity(c[i].Quantity, 1)
			return c
		}
		return append(c, Line{
			ID:       productID,
			Name:     strings.TrimSpace(name),
			Price:    unitPrice,
			Quantity: 1,
			Action:   mode,
		})
	})
}

// SetQuantity adds delta to every line of productID. A line whose quantity
// would drop to zero or below is removed; growth stops at MaxQuantity.
func (s *Store) SetQuantity(ctx context.Context, productID string, delta int) (Cart, error) {
	return s.mutate(ctx, func(c Cart) Cart {
		out := c[:0]
		for _, l := range c {
			if l.ID == productID {
				l.Quantity = addQuantity(l.Quantity, delta)
				if l.Quantity <= 0 {
					continue
				}
			}
			out = append(out, l)
		}
		return out
	})
}

// SetMode switches every line of productID to mode. If a line already exists
// under mode the quantities are merged into it.
func (s *Store) SetMode(ctx context.Context, productID string, mode enums.TransactionMode) (Cart, error) {
	if !mode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cart item").
			WithDetails(map[string]string{"action": "must be buy or rent"})
	}
	return s.mutate(ctx, func(c Cart) Cart {
		out := Cart{}
		for _, l := range c {
			if l.ID == productID {
				l.Action = mode
			}
			if i := out.index(l.ID, l.Action); i >= 0 {
				out[i].Quantity = addQuantity(out[i].Quantity, l.Quantity)
				continue
			}
			out = append(out, l)
		}
		return out
	})
}

// Remove drops every line of productID.
func (s *Store) Remove(ctx context.Context, productID string) (Cart, error) {
	return s.mutate(ctx, func(c Cart) Cart {
		out := c[:0]
		for _, l := range c {
			if l.ID != productID {
				out = append(out, l)
			}
		}
		return out
	})
}

// Clear empties the slot.
func (s *Store) Clear(ctx context.Context) (Cart, error) {
	empty := Cart{}
	if err := s.persist(ctx, empty); err != nil {
		return nil, err
	}
	return empty, nil
}

func (s *Store) mutate(ctx context.Context, fn func(Cart) Cart) (Cart, error) {
	current, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	next := fn(current.clone())
	if next == nil {
		next = Cart{}
	}
	if err := s.persist(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

func (s *Store) persist(ctx context.Context, c Cart) error {
	payload, err := Encode(c)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to encode cart")
	}
	if err := s.slot.Write(ctx, payload); err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "cart slot write failed", err)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to save cart")
	}
	return nil
}

// Stores hands out a Store per client cart id, all backed by Redis.
type Stores struct {
	store slotStore
	ttl   time.Duration
	logg  *logger.Logger
}

func NewStores(store slotStore, ttl time.Duration, logg *logger.Logger) *Stores {
	return &Stores{store: store, ttl: ttl, logg: logg}
}

// For returns the Store for cartID.
func (s *Stores) For(cartID string) *Store {
	return NewStore(NewRedisSlot(s.store, cartID, s.ttl), s.logg)
}
