package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/munitax/internal/config"
	"github.com/sells-group/munitax/internal/engine"
	"github.com/sells-group/munitax/internal/model"
	"github.com/sells-group/munitax/internal/store"
)

const breakdownDoc = `{
  "filer": "Acme Manufacturing LLC",
  "period": "2025",
  "jurisdiction": "OH",
  "income": {
    "federal_taxable_income": "500000",
    "add_backs": {"state_local_income_taxes": "25000"}
  },
  "factors": {
    "sales": {"local_sales": "250000", "everywhere_sales": "1000000"}
  },
  "nexus": {"by_state": {"OH": true}}
}`

func newTestServer(t *testing.T, st store.Store) *Server {
	t.Helper()
	eng := engine.New("OH", decimal.Zero)
	return New(eng, st, config.ServerConfig{})
}

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestBreakdown_OK(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/breakdown", strings.NewReader(breakdownDoc))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var breakdown model.FilingBreakdown
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &breakdown))
	assert.Equal(t, "OH", breakdown.Jurisdiction)
	assert.Equal(t, "525000", breakdown.Reconciliation.AdjustedMunicipalIncome.String())
	assert.Equal(t, "25", breakdown.Sourcing.LocalSales.Div(breakdown.Sourcing.EverywhereSales).Mul(decimal.NewFromInt(100)).String())
}

func TestBreakdown_RecordsRun(t *testing.T) {
	st := newTestStore(t)
	srv := newTestServer(t, st)

	req := httptest.NewRequest(http.MethodPost, "/v1/breakdown", strings.NewReader(breakdownDoc))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	runs, err := st.ListRuns(context.Background(), store.RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "Acme Manufacturing LLC", runs[0].Filer)
	assert.Equal(t, model.RunStatusComplete, runs[0].Status)
	assert.Len(t, runs[0].Digest, 64)
}

func TestBreakdown_MalformedBody(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/breakdown", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBreakdown_BadElection(t *testing.T) {
	srv := newTestServer(t, nil)

	doc := `{"elections": {"sourcing": "SPLIT_THE_DIFFERENCE"}}`
	req := httptest.NewRequest(http.MethodPost, "/v1/breakdown", strings.NewReader(doc))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown sourcing method")
}

func TestBreakdown_FactorValidationError(t *testing.T) {
	srv := newTestServer(t, nil)

	// negative everywhere denominator is an input problem, not a server fault
	doc := `{
	  "income": {"federal_taxable_income": "100000"},
	  "factors": {"sales": {"local_sales": "100", "everywhere_sales": "-1000"}}
	}`
	req := httptest.NewRequest(http.MethodPost, "/v1/breakdown", strings.NewReader(doc))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "negative everywhere denominator")
}

func TestGetRun(t *testing.T) {
	st := newTestStore(t)
	srv := newTestServer(t, st)

	run := &model.Run{
		Filer:  "Acme LLC",
		Period: "2025",
		Digest: "d1",
		Status: model.RunStatusComplete,
		Input:  &model.FilingInput{Filer: "Acme LLC"},
	}
	require.NoError(t, st.CreateRun(context.Background(), run))

	req := httptest.NewRequest(http.MethodGet, "/v1/runs/"+run.ID, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), run.ID)

	req = httptest.NewRequest(http.MethodGet, "/v1/runs/nonexistent", nil)
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListRuns_FilterByFiler(t *testing.T) {
	st := newTestStore(t)
	srv := newTestServer(t, st)

	for _, filer := range []string{"Acme LLC", "Globex Inc"} {
		require.NoError(t, st.CreateRun(context.Background(), &model.Run{
			Filer:  filer,
			Digest: "d-" + filer,
			Status: model.RunStatusComplete,
			Input:  &model.FilingInput{Filer: filer},
		}))
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/runs?filer=Acme+LLC", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Runs []model.Run `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Runs, 1)
	assert.Equal(t, "Acme LLC", resp.Runs[0].Filer)
}

func TestRunEndpoints_NoStore(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/runs", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRateLimit(t *testing.T) {
	eng := engine.New("OH", decimal.Zero)
	srv := New(eng, nil, config.ServerConfig{RateLimitPerSecond: 1, RateLimitBurst: 2})
	router := srv.Router()

	codes := make([]int, 0, 4)
	for range 4 {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	// burst of 2 passes, the rest are rejected
	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusOK, codes[1])
	assert.Equal(t, http.StatusTooManyRequests, codes[2])
	assert.Equal(t, http.StatusTooManyRequests, codes[3])

	// a different client has its own bucket
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
