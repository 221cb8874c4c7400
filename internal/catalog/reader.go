package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/dronemart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/dronemart-backend/pkg/errors"
	"github.com/angelmondragon/dronemart-backend/pkg/logger"
	"github.com/angelmondragon/dronemart-backend/pkg/types"
)

// DefaultRecommendationLimit caps related products on the detail view.
const DefaultRecommendationLimit = 3

const signConcurrency = 8

// ProductSource lists every product ordered for display.
type ProductSource interface {
	List(ctx context.Context) ([]models.Product, error)
}

// MediaResolver signs an object name into a short-lived read URL.
type MediaResolver interface {
	Resolve(ctx context.Context, name string) (string, error)
}

// Reader loads the catalog and decorates every row with a signed media URL.
type Reader struct {
	source   ProductSource
	media    MediaResolver
	cache    *SnapshotCache
	logg     *logger.Logger
	recLimit int
}

type ReaderOption func(*Reader)

// WithCache serves rows from a Redis snapshot when one is fresh.
func WithCache(cache *SnapshotCache) ReaderOption {
	return func(r *Reader) { r.cache = cache }
}

func WithLogger(logg *logger.Logger) ReaderOption {
	return func(r *Reader) { r.logg = logg }
}

func WithRecommendationLimit(limit int) ReaderOption {
	return func(r *Reader) {
		if limit > 0 {
			r.recLimit = limit
		}
	}
}

func NewReader(source ProductSource, media MediaResolver, opts ...ReaderOption) (*Reader, error) {
	if source == nil {
		return nil, fmt.Errorf("catalog product source required")
	}
	if media == nil {
		return nil, fmt.Errorf("catalog media resolver required")
	}
	r := &Reader{source: source, media: media, recLimit: DefaultRecommendationLimit}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// List returns the whole catalog in display order with freshly signed media
// URLs. If any row fails to sign the read fails as a whole.
func (r *Reader) List(ctx context.Context) ([]Product, error) {
	rows, err := r.rows(ctx)
	if err != nil {
		return nil, err
	}
	return r.sign(ctx, rows)
}

// Search is List followed by Filter.
func (r *Reader) Search(ctx context.Context, search, productType string) ([]Product, error) {
	products, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(products, search, productType), nil
}

// Get returns one product with its recommendations.
func (r *Reader) Get(ctx context.Context, id uuid.UUID) (*Detail, error) {
	products, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		if p.ID == id {
			return &Detail{Product: p, Recommendations: Recommend(products, id, r.recLimit)}, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (r *Reader) rows(ctx context.Context) ([]Row, error) {
	if rows, ok, err := r.cache.Get(ctx); err != nil {
		r.warn(ctx, "catalog cache read failed", err)
	} else if ok {
		return rows, nil
	}

	records, err := r.source.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load catalog")
	}
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, RowFromModel(rec))
	}

	if err := r.cache.Set(ctx, rows); err != nil {
		r.warn(ctx, "catalog cache write failed", err)
	}
	return rows, nil
}

func (r *Reader) sign(ctx context.Context, rows []Row) ([]Product, error) {
	out := make([]Product, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(signConcurrency)

	for i, row := range rows {
		out[i] = Product{
			ID:           row.ID,
			Name:         row.Name,
			Description:  row.Description,
			Type:         row.Type,
			Price:        types.NewMoney(row.Price),
			AvailableFor: row.AvailableFor,
		}
		if row.Image == "" {
			continue
		}
		g.Go(func() error {
			url, err := r.media.Resolve(gctx, row.Image)
			if err != nil {
				return err
			}
			out[i].ImageURL = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Reader) warn(ctx context.Context, msg string, err error) {
	if r.logg == nil {
		return
	}
	r.logg.Warn(r.logg.WithField(ctx, "error", err.Error()), msg)
}
