package product

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"

	"github.com/angelmondragon/dronemart-backend/pkg/db/dbtest"
	"github.com/angelmondragon/dronemart-backend/pkg/db/models"
	"github.com/angelmondragon/dronemart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dronemart-backend/pkg/errors"
	"github.com/angelmondragon/dronemart-backend/pkg/pagination"
)

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.calls++
	return nil
}

func newTestService(t *testing.T) (Service, *Repository, *countingInvalidator) {
	t.Helper()
	repo := NewRepository(dbtest.Open(t))
	cache := &countingInvalidator{}
	svc, err := NewService(repo, cache, nil)
	require.NoError(t, err)
	return svc, repo, cache
}

func strPtr(s string) *string { return &s }

func TestCreateProductNormalizesAndInvalidates(t *testing.T) {
	svc, repo, cache := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, CreateProductInput{
		Name:         " Falcon ",
		Type:         "Quadcopter",
		Price:        decimal.RequireFromString("199.99"),
		AvailableFor: []string{"RENT, buy", "buy"},
		ImageObject:  strPtr(" /media/falcon.mp4 "),
	})
	require.NoError(t, err)
	assert.Equal(t, "Falcon", created.Name)
	assert.Equal(t, []enums.TransactionMode{enums.TransactionModeBuy, enums.TransactionModeRent}, created.AvailableFor)
	require.NotNil(t, created.ImageObject)
	assert.Equal(t, "media/falcon.mp4", *created.ImageObject)
	assert.Equal(t, 1, cache.calls)

	stored, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, pq.StringArray{"buy", "rent"}, stored.AvailableFor)
	assert.Equal(t, "199.99", stored.Price.StringFixed(2))
}

func TestCreateProductValidation(t *testing.T) {
	svc, _, cache := newTestService(t)

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Price:        decimal.NewFromInt(-1),
		AvailableFor: []string{"lease"},
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "name")
	assert.Contains(t, details, "type")
	assert.Contains(t, details, "price")
	assert.Contains(t, details, "available_for")
	assert.Equal(t, 0, cache.calls)
}

func TestUpdateProductPartial(t *testing.T) {
	svc, _, cache := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, CreateProductInput{
		Name: "Hawk", Type: "Fixed Wing", Price: decimal.RequireFromString("349"), AvailableFor: []string{"buy"},
	})
	require.NoError(t, err)

	price := decimal.RequireFromString("299.50")
	modes := []string{"rent"}
	updated, err := svc.UpdateProduct(ctx, created.ID, UpdateProductInput{Price: &price, AvailableFor: &modes, ImageObject: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, "Hawk", updated.Name)
	assert.Equal(t, "299.50", updated.Price.StringFixed(2))
	assert.Equal(t, []enums.TransactionMode{enums.TransactionModeRent}, updated.AvailableFor)
	assert.Nil(t, updated.ImageObject)
	assert.Equal(t, 2, cache.calls)

	_, err = svc.UpdateProduct(ctx, uuid.New(), UpdateProductInput{Price: &price})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestDeleteProduct(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	svc, err := NewService(repo, nil, nil)
	require.NoError(t, err)
	ctx := context.Background()

	free := dbtest.SeedProduct(t, conn, models.Product{Name: "Free", Type: "Quadcopter", Price: decimal.NewFromInt(10)})
	ordered := dbtest.SeedProduct(t, conn, models.Product{Name: "Ordered", Type: "Quadcopter", Price: decimal.NewFromInt(10)})
	user := dbtest.SeedUser(t, conn, "buyer@example.com")
	require.NoError(t, conn.Create(&models.Order{
		ID: uuid.New(), UserID: user.ID, ProductID: ordered.ID, Action: enums.TransactionModeBuy,
		Status: enums.OrderStatusPending, Quantity: 1, UnitPrice: decimal.NewFromInt(10),
	}).Error)

	require.NoError(t, svc.DeleteProduct(ctx, free.ID))
	assert.True(t, pkgerrors.IsCode(svc.DeleteProduct(ctx, free.ID), pkgerrors.CodeNotFound))
	assert.True(t, pkgerrors.IsCode(svc.DeleteProduct(ctx, ordered.ID), pkgerrors.CodeConflict))
}

func TestListProductsPaginates(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn), nil, nil)
	require.NoError(t, err)
	for _, name := range []string{"Charlie", "Alpha", "Bravo"} {
		dbtest.SeedProduct(t, conn, models.Product{Name: name, Type: "Quadcopter", Price: decimal.NewFromInt(1)})
	}
	ctx := context.Background()

	first, err := svc.ListProducts(ctx, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Products, 2)
	assert.Equal(t, "Alpha", first.Products[0].Name)
	assert.Equal(t, "Bravo", first.Products[1].Name)
	require.NotEmpty(t, first.NextCursor)

	second, err := svc.ListProducts(ctx, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Products, 1)
	assert.Equal(t, "Charlie", second.Products[0].Name)
	assert.Empty(t, second.NextCursor)

	_, err = svc.ListProducts(ctx, pagination.Params{Cursor: "%%%"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestSeedSkipsExistingNames(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	inputs, err := ParseSeed(strings.NewReader(`
products:
  - name: Falcon
    type: Quadcopter
    price: "199.99"
    available_for: [buy]
    image: falcon.mp4
  - name: Hawk
    type: Fixed Wing
    price: "349.00"
    available_for: ["buy,rent"]
`))
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	require.NotNil(t, inputs[0].ImageObject)
	assert.Nil(t, inputs[1].ImageObject)

	res, err := svc.Seed(ctx, inputs)
	require.NoError(t, err)
	assert.Equal(t, &SeedResult{Created: 2}, res)

	res, err = svc.Seed(ctx, inputs)
	require.NoError(t, err)
	assert.Equal(t, &SeedResult{Skipped: 2}, res)

	all, err := svc.AllProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestParseSeedErrors(t *testing.T) {
	_, err := ParseSeed(strings.NewReader("products:\n  - name: Bad\n    price: \"cheap\"\n"))
	assert.ErrorContains(t, err, "invalid price")

	_, err = ParseSeed(strings.NewReader("products:\n  - name: Bad\n    colour: red\n"))
	assert.Error(t, err)

	inputs, err := ParseSeed(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, inputs)
}

func TestWriteXLSX(t *testing.T) {
	image := "falcon.mp4"
	products := []ProductDTO{{
		ID:           uuid.New(),
		Name:         "Falcon",
		Type:         "Quadcopter",
		AvailableFor: []enums.TransactionMode{enums.TransactionModeBuy, enums.TransactionModeRent},
		ImageObject:  &image,
		UpdatedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}}
	products[0].Price.Decimal = decimal.RequireFromString("199.99")

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, products))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)
	sheet := file.Sheets[0]
	assert.Equal(t, exportSheetName, sheet.Name)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "Name", sheet.Rows[0].Cells[1].String())
	assert.Equal(t, "Falcon", sheet.Rows[1].Cells[1].String())
	assert.Equal(t, "199.99", sheet.Rows[1].Cells[3].String())
	assert.Equal(t, "buy,rent", sheet.Rows[1].Cells[4].String())
}
