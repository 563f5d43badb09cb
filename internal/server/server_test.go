package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amahle/discus-manager/internal/config"
	"github.com/amahle/discus-manager/internal/roster"
	"github.com/amahle/discus-manager/internal/service"
	"github.com/amahle/discus-manager/internal/storage/csvfile"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := csvfile.New(filepath.Join(t.TempDir(), "discus_backup.csv"))
	require.NoError(t, err)
	svc := service.NewEventService(roster.New(), store, config.Default())
	ts := httptest.NewServer(New(svc).Router())
	t.Cleanup(ts.Close)
	return ts
}

func uploadStartList(t *testing.T, ts *httptest.Server, csvData string) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "start_list.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(csvData))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(ts.URL+"/api/roster/import", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	return resp
}

func doJSON(t *testing.T, method, url string, payload any) *http.Response {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req, err := http.NewRequest(method, url, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

const startList = "Category,House,Name\n" +
	"Girls,Blue,Amy\n" +
	"Girls,Red,Ben\n" +
	"Senior Boys,Red,Dan\n"

func TestImportAndCategories(t *testing.T) {
	ts := newTestServer(t)

	resp := uploadStartList(t, ts, startList)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	loaded := decode[map[string]int](t, resp)
	assert.Equal(t, 3, loaded["loaded"])

	resp, err := http.Get(ts.URL + "/api/categories")
	require.NoError(t, err)
	cats := decode[map[string][]string](t, resp)
	assert.Equal(t, []string{"Girls", "Senior Boys"}, cats["categories"])
}

func TestImportRejected(t *testing.T) {
	ts := newTestServer(t)

	resp := uploadStartList(t, ts, "House,Name\nBlue,Amy\n")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err := http.Post(ts.URL+"/api/roster/import", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCategoriesEmptyRoster(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/categories")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cats := decode[map[string][]string](t, resp)
	assert.NotNil(t, cats["categories"])
	assert.Empty(t, cats["categories"])
	// The manual-entry picker list comes from config, not the roster.
	assert.Contains(t, cats["known"], "Senior Boys")
}

func TestAddUpdateResults(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/athletes", map[string]string{
		"category": "Girls", "house": "Blue", "name": "Amy",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[map[string]any](t, resp)
	assert.Equal(t, "Amy_Blue", created["id"])

	resp = doJSON(t, http.MethodPatch, ts.URL+"/api/athletes/Amy_Blue", map[string]string{
		"field": "t1", "value": "21.5",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err := http.Get(ts.URL + "/api/categories/Girls/results")
	require.NoError(t, err)
	results := decode[service.CategoryResults](t, resp)
	require.Len(t, results.Rows, 1)
	assert.Equal(t, 1, results.Rows[0].Rank)
	assert.Equal(t, 21.5, results.Rows[0].Best)
	require.NotNil(t, results.Standard)
	assert.Equal(t, 15.0, *results.Standard)
}

func TestUpdateErrors(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, http.MethodPatch, ts.URL+"/api/athletes/Nobody_Red", map[string]string{
		"field": "t1", "value": "20",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	uploadStartList(t, ts, startList).Body.Close()
	resp = doJSON(t, http.MethodPatch, ts.URL+"/api/athletes/Amy_Blue", map[string]string{
		"field": "t9", "value": "20",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFinalRoundFlow(t *testing.T) {
	ts := newTestServer(t)
	uploadStartList(t, ts, startList).Body.Close()

	doJSON(t, http.MethodPatch, ts.URL+"/api/athletes/Amy_Blue", map[string]string{
		"field": "t1", "value": "20",
	}).Body.Close()

	// Not unlocked yet.
	resp, err := http.Get(ts.URL + "/api/categories/Girls/final")
	require.NoError(t, err)
	view := decode[service.FinalRoundView](t, resp)
	assert.False(t, view.Active)
	assert.Empty(t, view.Finalists)

	// Unlock, then read back.
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/categories/Girls/final", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view = decode[service.FinalRoundView](t, resp)
	assert.True(t, view.Active)
	require.Len(t, view.Finalists, 2)
	assert.Equal(t, 2, view.Finalists[0].Rank)
	assert.Equal(t, 1, view.Finalists[1].Rank)
	assert.Equal(t, "Amy", view.Finalists[1].Athlete.Name)

	// Unlocking an empty category is a client error.
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/categories/Wheelchair/final", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCategoryWithSpacesInPath(t *testing.T) {
	ts := newTestServer(t)
	uploadStartList(t, ts, startList).Body.Close()

	resp, err := http.Get(ts.URL + "/api/categories/" + url.PathEscape("Senior Boys") + "/results")
	require.NoError(t, err)
	results := decode[service.CategoryResults](t, resp)
	assert.Equal(t, "Senior Boys", results.Category)
	require.Len(t, results.Rows, 1)
	assert.Equal(t, "Dan", results.Rows[0].Name)
}

func TestExportDownload(t *testing.T) {
	ts := newTestServer(t)
	uploadStartList(t, ts, startList).Body.Close()
	doJSON(t, http.MethodPatch, ts.URL+"/api/athletes/Ben_Red", map[string]string{
		"field": "t1", "value": "24.5",
	}).Body.Close()

	resp, err := http.Get(ts.URL + "/api/categories/Girls/export")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "Discus_Girls.csv")

	var body bytes.Buffer
	_, err = body.ReadFrom(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "1,Ben,Red,24.5,24.5,,,,", lines[1])

	resp, err = http.Get(ts.URL + "/api/categories/Girls/export?format=pdf")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestClear(t *testing.T) {
	ts := newTestServer(t)
	uploadStartList(t, ts, startList).Body.Close()

	resp := doJSON(t, http.MethodDelete, ts.URL+"/api/roster", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err := http.Get(ts.URL + "/api/categories")
	require.NoError(t, err)
	cats := decode[map[string][]string](t, resp)
	assert.Empty(t, cats["categories"])
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsExposed(t *testing.T) {
	ts := newTestServer(t)

	// At least one completed request so the counter has a child to export.
	warm, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	warm.Body.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body bytes.Buffer
	_, err = body.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, body.String(), "discus_http_requests_total")
}
