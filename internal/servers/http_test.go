package servers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHTTP(t *testing.T) *httptest.Server {
	t.Helper()

	reg := prometheus.NewRegistry()
	srv := NewHttpServer(0, newTestIssuer(t, reg), reg, discard)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return ts
}

func do(t *testing.T, method, url, user, body string) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if user != "" {
		req.Header.Set(userHeader, user)
	}

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	return res, data
}

func TestHTTPIssue(t *testing.T) {
	ts := newTestHTTP(t)

	res, body := do(t, http.MethodPost, ts.URL+"/inventories/inv1/custom-ids", "2", "")
	require.Equal(t, http.StatusCreated, res.StatusCode, string(body))

	var got issueResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "LAP001", got.ID)
	require.NotNil(t, got.Sequence)
	assert.Equal(t, int64(1), *got.Sequence)
	assert.Equal(t, 1, got.Attempts)
}

func TestHTTPIssueErrors(t *testing.T) {
	ts := newTestHTTP(t)

	cases := []struct {
		name, path, user string
		want             int
	}{
		{"anonymous", "/inventories/inv1/custom-ids", "", http.StatusForbidden},
		{"no access", "/inventories/inv1/custom-ids", "3", http.StatusForbidden},
		{"unknown inventory", "/inventories/nope/custom-ids", "1", http.StatusNotFound},
		{"sequence exhausted", "/inventories/full/custom-ids", "1", http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, body := do(t, http.MethodPost, ts.URL+tc.path, tc.user, "")
			assert.Equal(t, tc.want, res.StatusCode, string(body))

			var e errorResponse
			require.NoError(t, json.Unmarshal(body, &e))
			assert.NotEmpty(t, e.Error)
		})
	}
}

func TestHTTPGetUniqueId(t *testing.T) {
	ts := newTestHTTP(t)

	res, body := do(t, http.MethodGet, ts.URL+"/get-unique-id?inventory_id=inv1", "1", "")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "LAP001", string(body))

	res, _ = do(t, http.MethodGet, ts.URL+"/get-unique-id?inventory_id=inv1", "3", "")
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestHTTPPreview(t *testing.T) {
	ts := newTestHTTP(t)

	res, body := do(t, http.MethodPost, ts.URL+"/custom-ids/preview", "",
		`{"template":[{"type":"text","value":"LAP-","order":1},{"kind":"datetime","order":2},{"kind":"sequence","order":3,"width":4}]}`)
	require.Equal(t, http.StatusOK, res.StatusCode, string(body))
	assert.JSONEq(t, `{"id":"LAP-202403030001"}`, string(body))

	res, _ = do(t, http.MethodPost, ts.URL+"/custom-ids/preview", "", `{"template":[]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)

	res, _ = do(t, http.MethodPost, ts.URL+"/custom-ids/preview", "", `{"template":[{"kind":"emoji","order":1}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)

	res, _ = do(t, http.MethodPost, ts.URL+"/custom-ids/preview", "", `not json`)
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
}

func TestHTTPDeleteInventory(t *testing.T) {
	ts := newTestHTTP(t)

	res, _ := do(t, http.MethodDelete, ts.URL+"/inventories/inv1", "2", "")
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, _ = do(t, http.MethodDelete, ts.URL+"/inventories/inv1", "1", "")
	assert.Equal(t, http.StatusNoContent, res.StatusCode)

	res, _ = do(t, http.MethodPost, ts.URL+"/inventories/inv1/custom-ids", "1", "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestHTTPHealthAndMetrics(t *testing.T) {
	ts := newTestHTTP(t)

	res, body := do(t, http.MethodGet, ts.URL+"/healthz", "", "")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "ok", string(body))

	do(t, http.MethodPost, ts.URL+"/inventories/inv1/custom-ids", "1", "")
	do(t, http.MethodPost, ts.URL+"/inventories/inv1/custom-ids", "3", "")

	res, body = do(t, http.MethodGet, ts.URL+"/metrics", "", "")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), `customid_generated_total{inventory="inv1"} 1`)
	assert.Contains(t, string(body), `customid_failures_total{reason="forbidden"} 1`)
}
