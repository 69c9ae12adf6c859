package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/laundry-pos/internal/app"
	"github.com/vladislavdragonenkov/laundry-pos/internal/domain"
)

// memoryLoader отдаёт одни и те же зависимости всем командам теста.
func memoryLoader(t *testing.T) (dependencyLoader, *app.Dependencies) {
	t.Helper()
	cfg := app.Config{
		Store:         app.StoreMemory,
		Counter:       app.CounterNone,
		Timezone:      "UTC",
		LogLevel:      "info",
		OrderIDPrefix: "VDW",
	}
	deps, err := app.NewDependencies(context.Background(), cfg, prometheus.NewRegistry(), nil)
	require.NoError(t, err)

	loader := func(context.Context) (*app.Dependencies, error) {
		// Close вызывается после каждой команды; in-memory хранилище его переживает.
		return deps, nil
	}
	return loader, deps
}

func seed(t *testing.T, deps *app.Dependencies, customers ...string) {
	t.Helper()
	for _, customer := range customers {
		draft := domain.OrderDraft{CustomerName: customer}
		draft.AddItem("shirt", 3, 20)
		_, err := deps.Service.CreateOrder(context.Background(), draft)
		require.NoError(t, err)
	}
}

func runCLI(t *testing.T, load dependencyLoader, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newApp(&out, load).RunContext(context.Background(), append([]string{"posctl"}, args...))
	return out.String(), err
}

func TestListAndGet(t *testing.T) {
	load, deps := memoryLoader(t)
	seed(t, deps, "JK Resort", "URC Lodge")

	out, err := runCLI(t, load, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ORDER")
	assert.Contains(t, out, "URC Lodge")
	assert.Contains(t, out, "2 orders")
	assert.Contains(t, out, "₹120.00")

	listing, err := deps.Service.ListOrders(context.Background())
	require.NoError(t, err)
	id := listing.Orders[0].ID

	out, err = runCLI(t, load, "get", id)
	require.NoError(t, err)
	assert.Contains(t, out, `"customerName": "JK Resort"`)

	_, err = runCLI(t, load, "get")
	assert.Error(t, err)
}

func TestNextIDAndDelete(t *testing.T) {
	load, deps := memoryLoader(t)
	seed(t, deps, "JK Paradise")

	out, err := runCLI(t, load, "next-id")
	require.NoError(t, err)
	assert.Regexp(t, `^VDW-\d{4}-002\n$`, out)

	listing, _ := deps.Service.ListOrders(context.Background())
	out, err = runCLI(t, load, "delete", listing.Orders[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "deleted")

	listing, _ = deps.Service.ListOrders(context.Background())
	assert.Zero(t, listing.Count)
}

func TestPurgeRequiresConfirmation(t *testing.T) {
	load, deps := memoryLoader(t)
	seed(t, deps, "JK Resort", "URC Resort", "URC Lodge")

	_, err := runCLI(t, load, "purge")
	require.Error(t, err)
	listing, _ := deps.Service.ListOrders(context.Background())
	assert.Equal(t, 3, listing.Count)

	out, err := runCLI(t, load, "purge", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted: 3")
}

func TestExportAndReceiptFiles(t *testing.T) {
	load, deps := memoryLoader(t)
	seed(t, deps, "JK Village Resort Ukl")
	dir := t.TempDir()

	xlsx := filepath.Join(dir, "orders.xlsx")
	_, err := runCLI(t, load, "export", "--out", xlsx)
	require.NoError(t, err)
	data, err := os.ReadFile(xlsx)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))

	_, err = runCLI(t, load, "export", "--format", "csv")
	assert.Error(t, err)

	listing, _ := deps.Service.ListOrders(context.Background())
	id := listing.Orders[0].ID

	out, err := runCLI(t, load, "receipt", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Order: "+id)

	pdf := filepath.Join(dir, "receipt.pdf")
	_, err = runCLI(t, load, "receipt", "--format", "pdf", "--out", pdf, id)
	require.NoError(t, err)
	data, err = os.ReadFile(pdf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestArchiveWithoutObjectStore(t *testing.T) {
	load, _ := memoryLoader(t)

	_, err := runCLI(t, load, "archive")
	assert.Error(t, err)
}
