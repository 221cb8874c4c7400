package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/dronemart-backend/pkg/db/models"
	"github.com/angelmondragon/dronemart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dronemart-backend/pkg/errors"
	"github.com/angelmondragon/dronemart-backend/pkg/redis"
)

type fakeSource struct {
	rows  []models.Product
	err   error
	calls int
}

func (f *fakeSource) List(context.Context) ([]models.Product, error) {
	f.calls++
	return f.rows, f.err
}

type fakeResolver struct {
	fail map[string]error
}

func (f fakeResolver) Resolve(_ context.Context, name string) (string, error) {
	if err := f.fail[name]; err != nil {
		return "", err
	}
	return "https://signed.example.com/" + name, nil
}

type memoryStore struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memoryStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	switch v := value.(type) {
	case []byte:
		m.values[key] = string(v)
	case string:
		m.values[key] = v
	}
	m.ttls[key] = ttl
	return nil
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func (m *memoryStore) CatalogKey() string { return "dm:catalog:snapshot" }

func strPtr(s string) *string { return &s }

func sampleProducts() []models.Product {
	return []models.Product{
		{ID: uuid.New(), Name: "Falcon", Type: "Quadcopter", Price: decimal.RequireFromString("199.99"), AvailableFor: pq.StringArray{"buy"}, ImageURL: strPtr("falcon.mp4")},
		{ID: uuid.New(), Name: "Hawk", Type: "Fixed Wing", Price: decimal.RequireFromString("349.00"), AvailableFor: pq.StringArray{"buy,rent"}},
		{ID: uuid.New(), Name: "Sparrow", Type: "Quadcopter", Price: decimal.RequireFromString("89.50"), AvailableFor: pq.StringArray{" Rent ", "lease"}, ImageURL: strPtr("sparrow.mp4")},
	}
}

func TestNormalizeAvailableFor(t *testing.T) {
	cases := []struct {
		in   []string
		want []enums.TransactionMode
	}{
		{in: nil, want: []enums.TransactionMode{}},
		{in: []string{"buy"}, want: []enums.TransactionMode{enums.TransactionModeBuy}},
		{in: []string{"rent, buy"}, want: []enums.TransactionMode{enums.TransactionModeBuy, enums.TransactionModeRent}},
		{in: []string{" RENT ", "rent", "swap"}, want: []enums.TransactionMode{enums.TransactionModeRent}},
		{in: []string{""}, want: []enums.TransactionMode{}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeAvailableFor(tc.in), "input %q", tc.in)
	}
}

func TestFilter(t *testing.T) {
	catalog := []Product{
		{Name: "Falcon X", Type: "Quadcopter"},
		{Name: "Hawk", Type: "Fixed Wing"},
		{Name: "falcon mini", Type: "Fixed Wing"},
	}

	assert.Equal(t, catalog, Filter(catalog, "", AllTypes))
	assert.Equal(t, catalog, Filter(catalog, "  ", ""))

	got := Filter(catalog, "FALCON", AllTypes)
	require.Len(t, got, 2)
	assert.Equal(t, "Falcon X", got[0].Name)
	assert.Equal(t, "falcon mini", got[1].Name)

	got = Filter(catalog, "falcon", "Fixed Wing")
	require.Len(t, got, 1)
	assert.Equal(t, "falcon mini", got[0].Name)

	assert.Empty(t, Filter(catalog, "", "Helicopter"))
	assert.Empty(t, Filter(catalog, "zeppelin", AllTypes))
}

func TestTypes(t *testing.T) {
	catalog := []Product{{Type: "Quadcopter"}, {Type: "Fixed Wing"}, {Type: "Quadcopter"}, {Type: ""}}
	assert.Equal(t, []string{AllTypes, "Quadcopter", "Fixed Wing"}, Types(catalog))
	assert.Equal(t, []string{AllTypes}, Types(nil))
}

func TestRecommend(t *testing.T) {
	a := Product{ID: uuid.New(), Type: "Quadcopter", AvailableFor: []enums.TransactionMode{enums.TransactionModeBuy}}
	b := Product{ID: uuid.New(), Type: "Fixed Wing", AvailableFor: []enums.TransactionMode{enums.TransactionModeRent}}
	c := Product{ID: uuid.New(), Type: "Quadcopter", AvailableFor: []enums.TransactionMode{enums.TransactionModeRent}}
	d := Product{ID: uuid.New(), Type: "VTOL", AvailableFor: []enums.TransactionMode{enums.TransactionModeBuy}}
	catalog := []Product{a, b, c, d}

	got := Recommend(catalog, a.ID, 3)
	require.Len(t, got, 2)
	assert.Equal(t, c.ID, got[0].ID)
	assert.Equal(t, d.ID, got[1].ID)

	assert.Len(t, Recommend(catalog, b.ID, 1), 1)
	assert.Empty(t, Recommend(catalog, uuid.New(), 3))
	assert.Empty(t, Recommend(catalog, a.ID, 0))
}

func TestReaderListSignsAndNormalizes(t *testing.T) {
	src := &fakeSource{rows: sampleProducts()}
	reader, err := NewReader(src, fakeResolver{})
	require.NoError(t, err)

	products, err := reader.List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 3)

	assert.Equal(t, "https://signed.example.com/falcon.mp4", products[0].ImageURL)
	assert.Equal(t, "", products[1].ImageURL)
	assert.Equal(t, "199.99", products[0].Price.StringFixed(2))
	assert.Equal(t, []enums.TransactionMode{enums.TransactionModeBuy, enums.TransactionModeRent}, products[1].AvailableFor)
	assert.Equal(t, []enums.TransactionMode{enums.TransactionModeRent}, products[2].AvailableFor)
}

func TestReaderFailsWholeReadWhenSigningFails(t *testing.T) {
	src := &fakeSource{rows: sampleProducts()}
	signErr := pkgerrors.New(pkgerrors.CodeDependency, "failed to sign media url")
	reader, err := NewReader(src, fakeResolver{fail: map[string]error{"sparrow.mp4": signErr}})
	require.NoError(t, err)

	products, err := reader.List(context.Background())
	assert.Nil(t, products)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestReaderWrapsSourceErrors(t *testing.T) {
	reader, err := NewReader(&fakeSource{err: errors.New("connection refused")}, fakeResolver{})
	require.NoError(t, err)

	_, err = reader.List(context.Background())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestReaderUsesSnapshotCache(t *testing.T) {
	store := newMemoryStore()
	src := &fakeSource{rows: sampleProducts()}
	reader, err := NewReader(src, fakeResolver{}, WithCache(NewSnapshotCache(store, time.Minute)))
	require.NoError(t, err)
	ctx := context.Background()

	first, err := reader.List(ctx)
	require.NoError(t, err)
	second, err := reader.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls)
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].ImageURL, second[i].ImageURL)
		assert.Equal(t, first[i].Price.StringFixed(2), second[i].Price.StringFixed(2))
		assert.Equal(t, first[i].AvailableFor, second[i].AvailableFor)
	}
	assert.Equal(t, time.Minute, store.ttls[store.CatalogKey()])
	assert.NotContains(t, store.values[store.CatalogKey()], "signed.example.com")

	require.NoError(t, NewSnapshotCache(store, time.Minute).Invalidate(ctx))
	_, err = reader.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestSnapshotCacheDisabledAndCorrupt(t *testing.T) {
	assert.Nil(t, NewSnapshotCache(newMemoryStore(), 0))

	store := newMemoryStore()
	store.values[store.CatalogKey()] = "{not json"
	rows, ok, err := NewSnapshotCache(store, time.Minute).Get(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, rows)
}

func TestReaderSearchAndGet(t *testing.T) {
	src := &fakeSource{rows: sampleProducts()}
	reader, err := NewReader(src, fakeResolver{}, WithRecommendationLimit(1))
	require.NoError(t, err)
	ctx := context.Background()

	found, err := reader.Search(ctx, "spar", "Quadcopter")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Sparrow", found[0].Name)

	detail, err := reader.Get(ctx, src.rows[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Falcon", detail.Product.Name)
	require.Len(t, detail.Recommendations, 1)
	assert.Equal(t, "Hawk", detail.Recommendations[0].Name)

	_, err = reader.Get(ctx, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestNewReaderRequiresCollaborators(t *testing.T) {
	_, err := NewReader(nil, fakeResolver{})
	assert.Error(t, err)
	_, err = NewReader(&fakeSource{}, nil)
	assert.Error(t, err)
}
