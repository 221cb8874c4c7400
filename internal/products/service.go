package product

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dronemart-backend/internal/catalog"
	"github.com/angelmondragon/dronemart-backend/pkg/db"
	"github.com/angelmondragon/dronemart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/dronemart-backend/pkg/errors"
	"github.com/angelmondragon/dronemart-backend/pkg/logger"
	"github.com/angelmondragon/dronemart-backend/pkg/pagination"
)

// CacheInvalidator drops cached catalog snapshots after a write.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Service exposes admin product management operations.
type Service interface {
	ListProducts(ctx context.Context, params pagination.Params) (*ProductListResult, error)
	AllProducts(ctx context.Context) ([]ProductDTO, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	Seed(ctx context.Context, inputs []CreateProductInput) (*SeedResult, error)
}

// SeedResult counts what a seed run did.
type SeedResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

type service struct {
	repo  *Repository
	cache CacheInvalidator
	logg  *logger.Logger
}

// NewService builds the admin product service. cache may be nil.
func NewService(repo *Repository, cache CacheInvalidator, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New("product repository required")
	}
	return &service{repo: repo, cache: cache, logg: logg}, nil
}

func (s *service) ListProducts(ctx context.Context, params pagination.Params) (*ProductListResult, error) {
	rows, next, err := s.repo.ListPage(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	out := &ProductListResult{Products: make([]ProductDTO, 0, len(rows)), NextCursor: next}
	for _, row := range rows {
		out.Products = append(out.Products, FromModel(row))
	}
	return out, nil
}

func (s *service) AllProducts(ctx context.Context) ([]ProductDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to list products")
	}
	out := make([]ProductDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(*row)
	return &dto, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	record := &models.Product{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Type:        strings.TrimSpace(input.Type),
		Price:       input.Price,
		ImageURL:    imageObject(input.ImageObject),
	}
	record.AvailableFor = modesToArray(catalog.NormalizeAvailableFor(input.AvailableFor))
	if err := validateRecord(record); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create product")
	}
	s.invalidate(ctx)
	dto := FromModel(*created)
	return &dto, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	record, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		record.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		record.Description = strings.TrimSpace(*input.Description)
	}
	if input.Type != nil {
		record.Type = strings.TrimSpace(*input.Type)
	}
	if input.Price != nil {
		record.Price = *input.Price
	}
	if input.AvailableFor != nil {
		record.AvailableFor = modesToArray(catalog.NormalizeAvailableFor(*input.AvailableFor))
	}
	if input.ImageObject != nil {
		record.ImageURL = imageObject(input.ImageObject)
	}
	if err := validateRecord(record); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, record)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to update product")
	}
	s.invalidate(ctx)
	dto := FromModel(*updated)
	return &dto, nil
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	switch {
	case err == nil:
		s.invalidate(ctx)
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	case db.IsForeignKeyViolation(err):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "product has orders and cannot be deleted")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to delete product")
	}
}

// Seed creates every input whose name is not already listed.
func (s *service) Seed(ctx context.Context, inputs []CreateProductInput) (*SeedResult, error) {
	result := &SeedResult{}
	for _, input := range inputs {
		exists, err := s.repo.ExistsByName(ctx, strings.TrimSpace(input.Name))
		if err != nil {
			return result, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to check existing product")
		}
		if exists {
			result.Skipped++
			continue
		}
		if _, err := s.CreateProduct(ctx, input); err != nil {
			return result, err
		}
		result.Created++
	}
	return result, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	row, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load product")
	}
	return row, nil
}

func (s *service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "catalog cache invalidation failed")
	}
}

func validateRecord(p *models.Product) error {
	details := map[string]string{}
	if p.Name == "" {
		details["name"] = "required"
	}
	if p.Type == "" {
		details["type"] = "required"
	}
	if p.Price.IsNegative() {
		details["price"] = "must be zero or greater"
	}
	if len(p.AvailableFor) == 0 {
		details["available_for"] = "must include buy or rent"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid product").WithDetails(details)
	}
	return nil
}
