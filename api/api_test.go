package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/VictoriaMetrics/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"persondir/directory"
	"persondir/person"
	"persondir/store"
)

type failingBlob struct{ store.Blob }

func (failingBlob) Put(string, []byte) error { return errors.New("quota exceeded") }

func newTestHandler(t *testing.T, blob store.Blob) (http.Handler, *directory.Directory) {
	t.Helper()
	return newLoggedHandler(t, blob, zap.NewNop())
}

func newLoggedHandler(t *testing.T, blob store.Blob, logger *zap.Logger) (http.Handler, *directory.Directory) {
	t.Helper()
	set := metrics.NewSet()
	d := directory.New(store.NewPeople(blob, store.DefaultKey, nil), directory.Options{Metrics: set})
	t.Cleanup(func() { d.Close() })

	h := NewHandler(&HandlerOptions{
		Title:           "persondir",
		Version:         "test",
		EndpointsPrefix: "/api",
		Metrics:         set,
	}, d, logger)
	return h, d
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const anaJSON = `{"firstName":"Ana","lastName":"Lee","email":"ana@x.com","phone":"9876543210","state":"MH","city":"Mumbai"}`

func TestPeople_AddListDelete(t *testing.T) {
	h, d := newTestHandler(t, store.NewInMemoryBlob())

	rec := do(t, h, http.MethodPost, "/api/people", anaJSON)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created PersonModel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Ana", created.FirstName)
	assert.Equal(t, "Mumbai", created.City)

	rec = do(t, h, http.MethodPost, "/api/people",
		`{"firstName":"Ravi","lastName":"Kumar","email":"ravi@x.com","phone":"9000000001","state":"KA","city":"Mysore"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/people?sort=name", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var listed []PersonModel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 2)
	assert.Equal(t, "Kumar", listed[0].LastName)

	rec = do(t, h, http.MethodGet, "/api/people?q=mumbai", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	rec = do(t, h, http.MethodDelete, "/api/people/"+created.ID, "")
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodDelete, "/api/people/unknown", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	people := d.People()
	require.Len(t, people, 1)
	assert.Equal(t, "Ravi", people[0].FirstName)
}

func TestPeople_ListEmpty(t *testing.T) {
	h, _ := newTestHandler(t, store.NewInMemoryBlob())

	rec := do(t, h, http.MethodGet, "/api/people", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestPeople_AddInvalid(t *testing.T) {
	h, d := newTestHandler(t, store.NewInMemoryBlob())

	body := strings.Replace(anaJSON, "9876543210", "0123", 1)
	body = strings.Replace(body, `"city":"Mumbai"`, `"city":"Agra"`, 1)
	rec := do(t, h, http.MethodPost, "/api/people", body)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Phone number must be 10 digits starting with 1-9")
	assert.Contains(t, rec.Body.String(), "body.city")
	assert.Empty(t, d.People())
}

func TestPeople_AddStorageFailure(t *testing.T) {
	h, d := newTestHandler(t, failingBlob{store.NewInMemoryBlob()})

	rec := do(t, h, http.MethodPost, "/api/people", anaJSON)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var status struct {
		IsError bool   `json:"isError"`
		Error   string `json:"error"`
		Count   int    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.IsError)
	assert.Contains(t, status.Error, "quota exceeded")
	assert.Zero(t, status.Count)
	assert.True(t, d.State().IsError)
}

func TestStates(t *testing.T) {
	h, _ := newTestHandler(t, store.NewInMemoryBlob())

	rec := do(t, h, http.MethodGet, "/api/states", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var states []person.StateInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &states))
	assert.Len(t, states, 10)
}

func TestProbesAndMetrics(t *testing.T) {
	h, d := newTestHandler(t, store.NewInMemoryBlob())

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/liveness", "").Code)

	require.NoError(t, d.Initialize().Wait(context.Background()))
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/readiness", "").Code)

	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/people", anaJSON).Code)

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	out := rec.Body.String()
	assert.Contains(t, out, `build_info{goversion="`)
	assert.Contains(t, out, `directory_people 1`)
	assert.Contains(t, out, `http_requests_total{method="POST",path="`)
	assert.Contains(t, out, `status="201"} 1`)
}

func TestRequestLogCarriesGeneratedRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h, _ := newLoggedHandler(t, store.NewInMemoryBlob(), zap.New(core))

	rec := do(t, h, http.MethodGet, "/api/states", "")
	require.Equal(t, http.StatusOK, rec.Code)

	served := logs.FilterMessageSnippet("/states").All()
	require.Len(t, served, 1)
	id, ok := served[0].ContextMap()["x-request-id"].(string)
	require.True(t, ok)
	assert.NotEmpty(t, id)
}
