package rtdb

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turboairmx/quotesync/pkg/errors"
	"github.com/turboairmx/quotesync/pkg/treestore"
)

type recorded struct {
	method string
	path   string
	query  string
	body   map[string]any
}

func newTestServer(t *testing.T, handler func(r recorded) (int, string)) (*Client, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery}
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			_ = json.Unmarshal(raw, &rec.body)
		}
		calls = append(calls, rec)
		status, body := handler(rec)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	client, err := New(context.Background(), Options{DatabaseURL: srv.URL + "/"}, nil)
	require.NoError(t, err)
	return client, &calls
}

func TestUpdateSendsSinglePatchWithNullDeletes(t *testing.T) {
	client, calls := newTestServer(t, func(recorded) (int, string) { return http.StatusOK, "{}" })

	err := client.Update(context.Background(), map[string]any{
		"/products/TSR*1": treestore.Delete,
		"products/TSR1":   map[string]any{"sku": "TSR1"},
	})
	require.NoError(t, err)
	require.Len(t, *calls, 1)

	call := (*calls)[0]
	assert.Equal(t, http.MethodPatch, call.method)
	assert.Equal(t, "/.json", call.path)
	v, present := call.body["products/TSR*1"]
	assert.True(t, present)
	assert.Nil(t, v)
	assert.Equal(t, map[string]any{"sku": "TSR1"}, call.body["products/TSR1"])
}

func TestReadNullIsNotFound(t *testing.T) {
	client, calls := newTestServer(t, func(recorded) (int, string) { return http.StatusOK, "null" })
	_, ok, err := client.Read(context.Background(), "products/NOPE")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "/products/NOPE.json", (*calls)[0].path)
}

func TestPushReturnsGeneratedName(t *testing.T) {
	client, calls := newTestServer(t, func(recorded) (int, string) {
		return http.StatusOK, `{"name":"-Nabc123"}`
	})
	key, err := client.Push(context.Background(), "import_logs", map[string]any{"status": "success"})
	require.NoError(t, err)
	assert.Equal(t, "-Nabc123", key)
	assert.Equal(t, http.MethodPost, (*calls)[0].method)
}

func TestQueryEncodesParamsAndOrdersLocally(t *testing.T) {
	client, calls := newTestServer(t, func(recorded) (int, string) {
		return http.StatusOK, `{"b":{"timestamp":"2025-02-01"},"a":{"timestamp":"2025-03-01"}}`
	})
	children, err := client.Query(context.Background(), "import_logs", treestore.Query{OrderByChild: "timestamp", LimitToLast: 50})
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "b", children[0].Key)

	query := (*calls)[0].query
	assert.Contains(t, query, "limitToLast=50")
	assert.Contains(t, query, "orderBy=%22timestamp%22")
}

func TestErrorStatusMapsToCodes(t *testing.T) {
	client, _ := newTestServer(t, func(recorded) (int, string) {
		return http.StatusUnauthorized, `{"error":"Permission denied"}`
	})
	_, _, err := client.Read(context.Background(), "users")
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnauthorized, errors.CodeOf(err))
	assert.True(t, strings.Contains(err.Error(), "Permission denied"))
}

func TestNewRequiresURL(t *testing.T) {
	_, err := New(context.Background(), Options{}, nil)
	assert.Error(t, err)
}
