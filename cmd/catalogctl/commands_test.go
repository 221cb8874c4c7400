package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"

	"github.com/angelmondragon/dronemart-backend/internal/catalog"
	product "github.com/angelmondragon/dronemart-backend/internal/products"
	"github.com/angelmondragon/dronemart-backend/pkg/db/dbtest"
)

const seedYAML = `
products:
  - name: Falcon
    type: Quadcopter
    price: "199.99"
    available_for: [buy, rent]
  - name: Hawk
    type: Fixed Wing
    price: "349.00"
    available_for: [buy]
`

func sqliteOpener(t *testing.T) serviceOpener {
	t.Helper()
	svc, err := product.NewService(product.NewRepository(dbtest.Open(t)), nil, nil)
	require.NoError(t, err)
	return func(context.Context) (product.Service, func() error, error) {
		return svc, nil, nil
	}
}

func run(t *testing.T, open serviceOpener, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeSeed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o600))
	return path
}

func TestSeedThenListByType(t *testing.T) {
	open := sqliteOpener(t)
	seed := writeSeed(t)

	out, err := run(t, open, "seed", "--file", seed)
	require.NoError(t, err)
	assert.Contains(t, out, "created 2, skipped 0")

	out, err = run(t, open, "seed", "--file", seed)
	require.NoError(t, err)
	assert.Contains(t, out, "created 0, skipped 2")

	out, err = run(t, open, "list", "--type", "Fixed Wing", "--json")
	require.NoError(t, err)
	var listed []catalog.Product
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "Hawk", listed[0].Name)
	assert.Equal(t, "349.00", listed[0].Price.StringFixed(2))

	out, err = run(t, open, "list", "--search", "fal")
	require.NoError(t, err)
	assert.Contains(t, out, "Falcon")
	assert.Contains(t, out, "199.99")
	assert.NotContains(t, out, "Hawk")
}

func TestSeedRequiresFile(t *testing.T) {
	_, err := run(t, sqliteOpener(t), "seed")
	require.Error(t, err)
}

func TestExportWritesSpreadsheet(t *testing.T) {
	open := sqliteOpener(t)
	_, err := run(t, open, "seed", "--file", writeSeed(t))
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "out.xlsx")
	out, err := run(t, open, "export", "--out", dest)
	require.NoError(t, err)
	assert.Contains(t, out, "exported 2 products")

	file, err := xlsx.OpenFile(dest)
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)
	rows := file.Sheets[0].Rows
	require.Len(t, rows, 3)
	assert.Equal(t, "Name", rows[0].Cells[1].String())
}
