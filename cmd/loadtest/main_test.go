package main

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/laundry-pos/internal/gateway"
	"github.com/vladislavdragonenkov/laundry-pos/internal/httpapi"
	"github.com/vladislavdragonenkov/laundry-pos/internal/receipt"
	"github.com/vladislavdragonenkov/laundry-pos/internal/service/pos"
	"github.com/vladislavdragonenkov/laundry-pos/internal/storage/memory"
)

func newTestAPI(t *testing.T) (*httptest.Server, *pos.Service) {
	t.Helper()
	svc := pos.NewService(gateway.New(memory.NewOrderStore()))
	api := httpapi.New(httpapi.Config{
		JWTSecret:        "load-secret",
		OperatorUsername: "admin",
		OperatorPassword: "Admin1234",
		Location:         time.UTC,
		Receipt:          receipt.DefaultProfile(),
	}, svc)
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)
	return srv, svc
}

func testConfig(url string, mode loadMode) config {
	return config{
		baseURL:     url,
		username:    "admin",
		password:    "Admin1234",
		total:       12,
		concurrency: 4,
		connections: 2,
		timeout:     5 * time.Second,
		mode:        mode,
		item:        "saree",
		price:       defaultPrice,
		idTag:       "LT",
	}
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := parseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.baseURL)
	assert.Equal(t, modeCreate, cfg.mode)
	assert.Equal(t, 400, cfg.total)
	assert.False(t, cfg.totalSet)
}

func TestParseConfigRejectsInvalidValues(t *testing.T) {
	cases := map[string][]string{
		"mode":        {"-mode", "create-pay"},
		"concurrency": {"-concurrency", "0"},
		"delete rate": {"-delete-rate", "101"},
		"total":       {"-total", "0"},
		"id tag":      {"-id-tag", "9x"},
		"url":         {"-url", "localhost"},
		"unknown":     {"-nope"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseConfig(args)
			assert.Error(t, err)
		})
	}
}

func TestParseConfigDurationWithExplicitTotal(t *testing.T) {
	cfg, err := parseConfig([]string{"-duration", "2s", "-total", "5", "-url", "http://pos:8080/"})
	require.NoError(t, err)
	assert.True(t, cfg.totalSet)
	assert.Equal(t, "http://pos:8080", cfg.baseURL)
	assert.Equal(t, "duration:2s,max-total:5", runTarget(cfg))
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	srv, _ := newTestAPI(t)
	cfg := testConfig(srv.URL, modeCreate)

	err := newAPIClient(cfg).login(context.Background(), "admin", "wrong")
	assert.ErrorContains(t, err, "401")
}

func TestRunLoadCreatesOrders(t *testing.T) {
	srv, svc := newTestAPI(t)
	cfg := testConfig(srv.URL, modeCreate)
	client := newAPIClient(cfg)
	require.NoError(t, client.login(context.Background(), cfg.username, cfg.password))

	result := runLoad(context.Background(), client, cfg)
	assert.EqualValues(t, 12, result.TotalScenarios)
	assert.Zero(t, result.FailedScenarios)
	assert.EqualValues(t, 12, result.Calls["CreateOrder"].Statuses["201"])

	listing, err := svc.ListOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, listing.Count)
	assert.InDelta(t, 12*defaultQty*defaultPrice, listing.GrandTotal, 0.001)
}

func TestRunLoadCreateDeleteLeavesNothing(t *testing.T) {
	srv, svc := newTestAPI(t)
	cfg := testConfig(srv.URL, modeCreateDelete)
	client := newAPIClient(cfg)
	require.NoError(t, client.login(context.Background(), cfg.username, cfg.password))

	result := runLoad(context.Background(), client, cfg)
	assert.Zero(t, result.FailedScenarios)
	assert.EqualValues(t, 12, result.Calls["DeleteOrder"].Success)

	listing, err := svc.ListOrders(context.Background())
	require.NoError(t, err)
	assert.Zero(t, listing.Count)
}

func TestRunLoadWithoutTokenFails(t *testing.T) {
	srv, _ := newTestAPI(t)
	cfg := testConfig(srv.URL, modeCreateGet)
	cfg.total = 3

	result := runLoad(context.Background(), newAPIClient(cfg), cfg)
	assert.EqualValues(t, 3, result.FailedScenarios)
	assert.EqualValues(t, 3, result.Calls["CreateOrder"].Statuses["401"])
	_, called := result.Calls["GetOrder"]
	assert.False(t, called)
}

func TestOrderIDMatchesPattern(t *testing.T) {
	assert.Equal(t, "LTABC-2026-000007", orderID("LTABC-2026", 7))
}

func TestShouldDelete(t *testing.T) {
	assert.False(t, shouldDelete(5, 0))
	assert.True(t, shouldDelete(5, 100))
	assert.True(t, shouldDelete(105, 10))
	assert.False(t, shouldDelete(15, 10))
}

func TestLatencySummary(t *testing.T) {
	summary := buildLatencySummary([]float64{4, 1, 3, 2})
	assert.Equal(t, 1.0, summary.Min)
	assert.Equal(t, 4.0, summary.Max)
	assert.Equal(t, 2.5, summary.Avg)
	assert.InDelta(t, 2.5, summary.P50, 1e-9)
	assert.Equal(t, latencySummary{}, buildLatencySummary(nil))
	assert.Zero(t, ratio(1, 0))
}

func TestWriteJSONReport(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	require.NoError(t, writeJSONReport("report.json", report{TotalScenarios: 3}))
	data, err := os.ReadFile(filepath.Join(dir, "report.json"))
	require.NoError(t, err)

	var decoded report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.EqualValues(t, 3, decoded.TotalScenarios)

	assert.Error(t, writeJSONReport("../escape.json", report{}))
	assert.Error(t, writeJSONReport(".", report{}))
}

func TestPrintReportSortsCalls(t *testing.T) {
	var out strings.Builder
	printReport(&out, report{Calls: map[string]callReport{
		"GetOrder":    {Calls: 1},
		"CreateOrder": {Calls: 1},
		"scenario":    {Calls: 1},
	}}, config{mode: modeCreateGet, total: 1})

	text := out.String()
	assert.Less(t, strings.Index(text, "CreateOrder"), strings.Index(text, "GetOrder"))
	assert.NotContains(t, text, "scenario:")
	assert.Contains(t, text, "run=count:1")
}
