package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmurray2011/sumoknife/internal/connection"
	"github.com/jmurray2011/sumoknife/internal/metadata"
	"github.com/jmurray2011/sumoknife/internal/sumo"
	"github.com/jmurray2011/sumoknife/internal/ui"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

// searchFetcher answers search job requests by method and path.
type searchFetcher struct {
	mu     sync.Mutex
	routes map[string]any
	calls  []string
}

func (f *searchFetcher) Fetch(ctx context.Context, spec sumo.Spec) (*sumo.Response, error) {
	uri, err := spec.URI()
	if err != nil {
		return nil, err
	}
	key := spec.Method.String() + " " + uri

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, key)

	raw, ok := f.routes[key]
	if !ok {
		return nil, fmt.Errorf("no route for %s", key)
	}
	resp := &sumo.Response{StatusCode: 200, Raw: raw, Data: raw}
	if obj, ok := raw.(map[string]any); ok && spec.RootKey != "" {
		if inner, ok := obj[spec.RootKey]; ok {
			resp.Data = inner
		}
	}
	return resp, nil
}

func finishedJob() *searchFetcher {
	return &searchFetcher{routes: map[string]any{
		"POST /api/v1/search/jobs": map[string]any{"id": "J1"},
		"GET /api/v1/search/jobs/J1": map[string]any{
			"state":        "DONE GATHERING RESULTS",
			"messageCount": float64(40),
			"recordCount":  float64(1),
		},
		"GET /api/v1/search/jobs/J1/records": map[string]any{
			"records": []any{map[string]any{"map": map[string]any{"_count": "40", "_sourcehost": "web1"}}},
		},
		"GET /api/v1/search/jobs/J1/messages": map[string]any{
			"messages": []any{map[string]any{"map": map[string]any{"_raw": "GET /index.html 500"}}},
		},
	}}
}

// testApp returns an App with one saved connection whose metadata is
// already cached, so activation issues no requests.
func testApp(t *testing.T, f sumo.Fetcher, format string) (*App, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()

	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, connection.SaveConfig(cfgPath, &connection.Config{
		Connections: map[string]*connection.Connection{
			"test": {AccessID: "suTEST", AccessKey: "secret", Endpoint: "api.sumologic.com"},
		},
		DefaultConnection: "test",
	}))

	metaDir := filepath.Join(dir, "metadata")
	cache := metadata.NewCache(metaDir, "suTEST")
	seed := map[metadata.Kind][]sumo.Row{
		metadata.KindCollectors: {{"name": "web", "category": "prod/web", "sources": []any{
			map[string]any{"name": "access", "category": "prod/web/access"},
		}}},
		metadata.KindQueries:    {{"name": "Errors", "query": "error | count"}},
		metadata.KindFERs:       {{"name": "Access", "scope": "_sourceCategory=prod/web", "parseExpression": "parse \"* *\" as a, b", "fieldNames": []any{"a", "b"}}},
		metadata.KindPartitions: {{"name": "prod_web"}},
		metadata.KindViews:      {{"indexName": "daily_errors", "query": "error | count by _sourceHost"}},
		metadata.KindRoles:      {{"id": "R1", "name": "administrator"}},
		metadata.KindUsers:      {{"email": "ann@example.com", "firstName": "Ann", "roleIds": []any{"R1"}}},
	}
	for k, rows := range seed {
		require.NoError(t, cache.Save(k, rows))
	}

	viper.Set("history_file", filepath.Join(dir, "history.json"))
	t.Cleanup(func() { viper.Set("history_file", "") })

	var out bytes.Buffer
	renderer := ui.NewRendererWithOptions(
		ui.WithOutput(&out),
		ui.WithError(&bytes.Buffer{}),
		ui.WithNoColor(true),
	)
	app := NewAppWithConfig(Config{
		ConfigPath:   cfgPath,
		MetadataDir:  metaDir,
		OutputFormat: format,
		Timezone:     "UTC",
		PollInterval: time.Millisecond,
	}, renderer, nil)
	app.Fetcher = f
	app.Now = func() time.Time { return time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC) }
	return app, &out
}

func commandFor(t *testing.T, app *App) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetContext(SetApp(t.Context(), app))
	return cmd
}

func resetQueryFlags() {
	queryString, savedQuery, startTime, endTime, windowName = "", "", "", "now", ""
	wantMessages, wantRecords, pageNumber = false, false, 1
	showExpressions, showQueries = false, false
	resultsWait = false
}

func TestRunQueryPrintsRecords(t *testing.T) {
	f := finishedJob()
	app, out := testApp(t, f, "json")
	resetQueryFlags()
	defer resetQueryFlags()
	queryString = "error | count by _sourceHost"
	windowName = "Last 15 Minutes"

	require.NoError(t, runQuery(commandFor(t, app), nil))

	assert.Contains(t, out.String(), "Records #: 1")
	assert.Contains(t, out.String(), `"_sourcehost":"web1"`)
	assert.Equal(t, "POST /api/v1/search/jobs", f.calls[0])
	assert.Contains(t, f.calls, "GET /api/v1/search/jobs/J1/records")

	entries, err := loadHistory()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "test", entries[0].Connection)
	assert.Equal(t, "Last 15 Minutes", entries[0].Window)
	assert.Equal(t, "J1", entries[0].JobID)
	assert.Equal(t, int64(40), entries[0].MessageCount)
}

func TestRunQueryMessagesAndSavedQuery(t *testing.T) {
	f := finishedJob()
	app, out := testApp(t, f, "json")
	resetQueryFlags()
	defer resetQueryFlags()
	savedQuery = "Errors"
	startTime = "1h"
	wantMessages = true

	require.NoError(t, runQuery(commandFor(t, app), nil))
	assert.Contains(t, out.String(), "GET /index.html 500")
	assert.Contains(t, f.calls, "GET /api/v1/search/jobs/J1/messages")
}

func TestRunQueryPageOutOfRange(t *testing.T) {
	app, _ := testApp(t, finishedJob(), "json")
	resetQueryFlags()
	defer resetQueryFlags()
	queryString = "error"
	pageNumber = 2

	err := runQuery(commandFor(t, app), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestRunQueryErroredJob(t *testing.T) {
	f := finishedJob()
	f.routes["GET /api/v1/search/jobs/J1"] = map[string]any{"state": "CANCELLED", "error": "bad syntax"}
	app, _ := testApp(t, f, "json")
	resetQueryFlags()
	defer resetQueryFlags()
	queryString = "error |"

	err := runQuery(commandFor(t, app), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad syntax")
}

func TestRunResults(t *testing.T) {
	f := finishedJob()
	app, out := testApp(t, f, "json")
	resetQueryFlags()
	defer resetQueryFlags()

	require.NoError(t, runResults(commandFor(t, app), []string{"J1"}))
	assert.Contains(t, out.String(), `"_count":"40"`)
	assert.NotContains(t, f.calls, "POST /api/v1/search/jobs")
}

func TestRunResultsRefusesRunningJob(t *testing.T) {
	f := finishedJob()
	f.routes["GET /api/v1/search/jobs/J1"] = map[string]any{
		"state":        "GATHERING RESULTS",
		"messageCount": float64(10),
	}
	app, _ := testApp(t, f, "json")
	resetQueryFlags()
	defer resetQueryFlags()

	err := runResults(commandFor(t, app), []string{"J1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "still gathering results")
	for _, call := range f.calls {
		assert.NotContains(t, call, "/messages")
		assert.NotContains(t, call, "/records")
	}
}

func TestRunShow(t *testing.T) {
	resetQueryFlags()
	defer resetQueryFlags()

	t.Run("users with roles", func(t *testing.T) {
		app, out := testApp(t, &searchFetcher{}, "json_pretty")
		require.NoError(t, runShow(commandFor(t, app), []string{"users"}))
		assert.Contains(t, out.String(), `"users": [`)
		assert.Contains(t, out.String(), "Administrator")
	})

	t.Run("sources from collectors", func(t *testing.T) {
		app, out := testApp(t, &searchFetcher{}, "json")
		require.NoError(t, runShow(commandFor(t, app), []string{"sources"}))
		assert.Contains(t, out.String(), `"name":"access"`)
	})

	t.Run("collectors without sources", func(t *testing.T) {
		app, out := testApp(t, &searchFetcher{}, "json")
		require.NoError(t, runShow(commandFor(t, app), []string{"collectors"}))
		assert.NotContains(t, out.String(), "access")
	})

	t.Run("one rule as a query", func(t *testing.T) {
		app, out := testApp(t, &searchFetcher{}, "json")
		showExpressions = true
		defer func() { showExpressions = false }()
		require.NoError(t, runShow(commandFor(t, app), []string{"fers", "Access"}))
		assert.Contains(t, out.String(), "_sourceCategory=prod/web\n|parse")
		assert.Contains(t, out.String(), strings.Repeat("─", 40))
	})

	t.Run("unknown name", func(t *testing.T) {
		app, _ := testApp(t, &searchFetcher{}, "json")
		require.Error(t, runShow(commandFor(t, app), []string{"views", "nope"}))
	})

	t.Run("unknown kind", func(t *testing.T) {
		app, _ := testApp(t, &searchFetcher{}, "json")
		require.Error(t, runShow(commandFor(t, app), []string{"dashboards"}))
	})
}

func TestRunComplete(t *testing.T) {
	app, out := testApp(t, &searchFetcher{}, "json")
	defer func() { completeQuery = "" }()

	require.NoError(t, runComplete(commandFor(t, app), []string{"_sourceCategory", "prod"}))
	assert.Contains(t, out.String(), "prod/web/access")
	assert.Contains(t, out.String(), "Src Cat")

	out.Reset()
	completeQuery = "_sourceCategory=prod/web | count"
	require.NoError(t, runComplete(commandFor(t, app), []string{"fields"}))
	assert.Contains(t, out.String(), "FER")
	assert.Contains(t, out.String(), "_sourceHost")
}

func TestConnectionsCommands(t *testing.T) {
	app, out := testApp(t, &searchFetcher{}, "json")
	cmd := commandFor(t, app)

	addAccessID, addAccessKey, addEndpoint, addAsDefault = "suOTHER", "key2", "api.us2.sumologic.com/", true
	defer func() { addAccessID, addAccessKey, addEndpoint, addAsDefault = "", "", "", false }()

	require.NoError(t, runConnectionsAdd(cmd, []string{"other"}))
	cfg, err := app.LoadConnections()
	require.NoError(t, err)
	assert.Equal(t, "other", cfg.DefaultConnection)
	assert.Equal(t, "api.us2.sumologic.com", cfg.Connections["other"].Endpoint)

	require.NoError(t, runConnectionsDefault(cmd, []string{"test"}))
	require.NoError(t, runConnectionsRemove(cmd, []string{"other"}))
	require.Error(t, runConnectionsDefault(cmd, []string{"other"}))

	out.Reset()
	require.NoError(t, runConnections(cmd, nil))
	assert.Contains(t, out.String(), "test")
	assert.NotContains(t, out.String(), "secret")
}

func TestRunConnectRefresh(t *testing.T) {
	app, out := testApp(t, &searchFetcher{routes: map[string]any{}}, "json")
	resetConnect := func() { connectRefresh, connectDefault = false, false }
	defer resetConnect()

	require.NoError(t, runConnect(commandFor(t, app), nil))
	assert.Contains(t, out.String(), "cache")
	assert.Contains(t, out.String(), "test is ready")
	assert.Contains(t, out.String(), "Endpoint: https://api.sumologic.com")

	// Refreshing clears the cache and every kind then fails against a
	// fetcher with no routes, which the sync pass absorbs.
	connectRefresh = true
	out.Reset()
	require.NoError(t, runConnect(commandFor(t, app), []string{"test"}))
	assert.Contains(t, out.String(), "no route")
}
