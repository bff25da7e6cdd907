package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/catalog-recon/internal/model"
	"github.com/sells-group/catalog-recon/internal/store"
)

type fakeStore struct {
	latest  *model.Report
	saved   []*model.Report
	runs    []store.RunRecord
	saveErr error
	loadErr error
}

func (f *fakeStore) SaveReport(ctx context.Context, report *model.Report) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.saved = append(f.saved, report)
	return "run-1", nil
}

func (f *fakeStore) GetReport(ctx context.Context, id string) (*model.Report, error) {
	return f.latest, f.loadErr
}

func (f *fakeStore) LatestReport(ctx context.Context) (*model.Report, error) {
	return f.latest, f.loadErr
}

func (f *fakeStore) ListRuns(ctx context.Context, limit int) ([]store.RunRecord, error) {
	return f.runs, f.loadErr
}

func (f *fakeStore) Migrate(ctx context.Context) error { return nil }
func (f *fakeStore) Close() error                      { return nil }

func stubReport() *model.Report {
	return &model.Report{
		Rows: []model.ComparisonRow{
			{Key: "sku:MOD100", Reasons: []string{"Missing in Inventory"}, IsMismatch: true},
		},
		Summary:     model.Summary{TotalRows: 1, MismatchRows: 1},
		LastUpdated: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	}
}

func stubReconcile(ctx context.Context) *model.Report { return stubReport() }

func TestRouter_Healthz(t *testing.T) {
	r := buildRouter(&fakeStore{}, stubReconcile)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestRouter_Report_NoneYet(t *testing.T) {
	r := buildRouter(&fakeStore{}, stubReconcile)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/report", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "no report yet")
}

func TestRouter_Report_Latest(t *testing.T) {
	r := buildRouter(&fakeStore{latest: stubReport()}, stubReconcile)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/report", nil))

	assert.Equal(t, http.StatusOK, rr.Code)

	var report model.Report
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
	assert.Equal(t, 1, report.Summary.TotalRows)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, "sku:MOD100", report.Rows[0].Key)
}

func TestRouter_Report_StoreError(t *testing.T) {
	r := buildRouter(&fakeStore{loadErr: eris.New("disk gone")}, stubReconcile)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/report", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "failed to load report")
}

func TestRouter_Reconcile_RunsAndPersists(t *testing.T) {
	st := &fakeStore{}
	r := buildRouter(st, stubReconcile)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/reconcile", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, st.saved, 1)
	assert.Equal(t, 1, st.saved[0].Summary.MismatchRows)
}

func TestRouter_Reconcile_PersistFailure(t *testing.T) {
	r := buildRouter(&fakeStore{saveErr: eris.New("full")}, stubReconcile)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/reconcile", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "failed to persist report")
}

func TestRouter_Runs(t *testing.T) {
	st := &fakeStore{runs: []store.RunRecord{
		{ID: "run-2", TotalRows: 12, MismatchRows: 3},
		{ID: "run-1", TotalRows: 10, MismatchRows: 5},
	}}
	r := buildRouter(st, stubReconcile)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/runs", nil))

	assert.Equal(t, http.StatusOK, rr.Code)

	var runs []store.RunRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &runs))
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
}

func TestRouter_Runs_EmptyIsArray(t *testing.T) {
	r := buildRouter(&fakeStore{}, stubReconcile)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/runs", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]\n", rr.Body.String())
}
