package apihttp

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"maintenance-cloud/internal/audit"
	"maintenance-cloud/internal/auth"
	"maintenance-cloud/internal/cache"
	"maintenance-cloud/internal/dataaccess"
	inventory "maintenance-cloud/internal/inventory/domain"
	predictionapp "maintenance-cloud/internal/prediction/application"
	prediction "maintenance-cloud/internal/prediction/domain"
	"maintenance-cloud/internal/prediction/infrastructure/files"
	reportingapp "maintenance-cloud/internal/reporting/application"
	reporting "maintenance-cloud/internal/reporting/domain"
)

type env struct {
	staging string
	paths   dataaccess.Paths
	handler http.Handler
}

type stubLoader struct{ prob float64 }

func (l stubLoader) LoadClassifier(context.Context) (prediction.Classifier, error) {
	return prediction.ClassifierFunc(func(rows [][]float64) ([]float64, error) {
		out := make([]float64, len(rows))
		for i, row := range rows {
			out[i] = l.prob
			if row[3] > 0 {
				out[i] = row[3]
			}
		}
		return out, nil
	}), nil
}

type routerOption func(*RouterConfig)

func newEnv(t *testing.T, opts ...routerOption) env {
	t.Helper()
	dir := t.TempDir()
	staging := filepath.Join(dir, "data", "staging")
	require.NoError(t, os.MkdirAll(staging, 0o755))
	paths := dataaccess.StagingPaths(staging, filepath.Join(dir, "data", "complaints.csv"))

	features, err := files.NewFeatureReader(paths.Features)
	require.NoError(t, err)
	snapshots, err := files.NewSnapshotStore(paths.Snapshot)
	require.NoError(t, err)
	engine, err := predictionapp.NewEngine(features, stubLoader{prob: 0.1}, snapshots, zap.NewNop())
	require.NoError(t, err)

	store, err := dataaccess.NewStore(paths, zap.NewNop(), dataaccess.WithSnapshotComputer(engine))
	require.NoError(t, err)
	cached, err := dataaccess.NewCachedStore(store, cache.New())
	require.NoError(t, err)
	svc, err := reportingapp.NewService(cached, engine, zap.NewNop())
	require.NoError(t, err)

	cfg := RouterConfig{Reports: svc, Threshold: reporting.DefaultThreshold, Logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return env{staging: staging, paths: paths, handler: NewRouter(cfg)}
}

func (e env) write(t *testing.T, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(e.staging, name), []byte(body), 0o644))
}

func (e env) do(t *testing.T, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	resp := httptest.NewRecorder()
	e.handler.ServeHTTP(resp, req)
	return resp
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out), resp.Body.String())
	return out
}

const featuresCSV = "DeviceID,Date,HoursUsed,Hours_7d_mean,Temperature,Vibration,DaysSinceLastMaint\n" +
	"D1,2024-01-01,100,90,30,0.4,40\n" +
	"D1,2024-01-02,110,95,31,0.9,41\n" +
	"D2,2024-01-02,10,12,29,0,5\n"

func TestHealthz(t *testing.T) {
	e := newEnv(t)
	resp := e.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "ok", resp.Body.String())
}

func TestOverviewEmptyState(t *testing.T) {
	e := newEnv(t)
	resp := e.do(t, http.MethodGet, "/api/v1/overview", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	out := decode[reporting.Overview](t, resp)
	assert.False(t, out.DevicesAvailable)
	assert.False(t, out.UsageAvailable)
	assert.Zero(t, out.HighRiskDevices)
	assert.Nil(t, out.MTBFHours)
}

func TestOverviewMetrics(t *testing.T) {
	e := newEnv(t)
	e.write(t, dataaccess.DevicesFile, "DeviceID,DeviceType,Location\nD1,Fan,A\nD2,Geyser,B\n")
	e.write(t, dataaccess.UsageFile, "DeviceID,Date,HoursUsed,FailureFlag\nD1,2024-01-01,10,1\nD2,2024-01-01,30,1\n")
	e.write(t, dataaccess.SnapshotFile, "DeviceID,Date,pred_prob,priority\nD1,2024-01-02,0.9,1\nD2,2024-01-02,0.2,0.2\n")

	resp := e.do(t, http.MethodGet, "/api/v1/overview?threshold=0.5", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	out := decode[reporting.Overview](t, resp)
	assert.Equal(t, 2, out.TotalDevices)
	assert.Equal(t, 1, out.HighRiskDevices)
	require.NotNil(t, out.MTBFHours)
	assert.InDelta(t, 20, *out.MTBFHours, 1e-9)
	assert.Nil(t, out.MaintenanceCost)
}

func TestPredictionsComputedFromFeatures(t *testing.T) {
	e := newEnv(t)
	e.write(t, dataaccess.DevicesFile, "DeviceID,DeviceType,Location\nD1,Fan,A\n")
	e.write(t, dataaccess.FeaturesFile, featuresCSV)

	resp := e.do(t, http.MethodGet, "/api/v1/predictions", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	tbl := decode[reporting.RiskTable](t, resp)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "D1", tbl.Rows[0].DeviceID)
	assert.Equal(t, "Fan", tbl.Rows[0].DeviceType)
	assert.Equal(t, 0.9, tbl.Rows[0].PredProb)
	assert.Equal(t, reporting.RiskMedium, tbl.Rows[0].RiskLevel)
	assert.Equal(t, "", tbl.Rows[1].DeviceType)
	assert.Len(t, tbl.Distribution.Bins, reporting.DefaultBins)

	_, err := os.Stat(e.paths.Snapshot)
	assert.NoError(t, err)
}

func TestPredictionsRejectsBadThreshold(t *testing.T) {
	e := newEnv(t)
	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodGet, "/api/v1/predictions?threshold=abc", nil).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodGet, "/api/v1/predictions?threshold=1.2", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, e.do(t, http.MethodPost, "/api/v1/predictions", nil).Code)
}

func TestPipelineRunWithoutFeatures(t *testing.T) {
	e := newEnv(t)
	resp := e.do(t, http.MethodPost, "/api/v1/pipeline/run", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), "features file not found")
}

func TestPipelineRunRefreshesCachedPredictions(t *testing.T) {
	e := newEnv(t)
	e.write(t, dataaccess.SnapshotFile, "DeviceID,Date,pred_prob,priority\nOLD,2023-12-31,0.5,0.5\n")

	first := decode[reporting.RiskTable](t, e.do(t, http.MethodGet, "/api/v1/predictions", nil))
	require.Len(t, first.Rows, 1)
	assert.Equal(t, "OLD", first.Rows[0].DeviceID)

	e.write(t, dataaccess.FeaturesFile, featuresCSV)
	resp := e.do(t, http.MethodPost, "/api/v1/pipeline/run", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	result := decode[predictionapp.RunResult](t, resp)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 3, result.RowsScored)
	assert.Equal(t, 2, result.Devices)

	second := decode[reporting.RiskTable](t, e.do(t, http.MethodGet, "/api/v1/predictions", nil))
	require.Len(t, second.Rows, 2)
	assert.Equal(t, "D1", second.Rows[0].DeviceID)
}

func TestComplaintsSubmitAndList(t *testing.T) {
	e := newEnv(t)
	body, _ := json.Marshal(map[string]string{"device_id": "D1", "description": "fan rattles", "reported_by": "room 12"})
	resp := e.do(t, http.MethodPost, "/api/v1/complaints", body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	body, _ = json.Marshal(map[string]string{"device_id": "D2", "description": "no hot water"})
	require.Equal(t, http.StatusCreated, e.do(t, http.MethodPost, "/api/v1/complaints", body).Code)

	resp = e.do(t, http.MethodGet, "/api/v1/complaints", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	complaints := decode[[]inventory.Complaint](t, resp)
	require.Len(t, complaints, 2)
	for _, c := range complaints {
		assert.NotNil(t, c.Datetime)
	}
	assert.False(t, complaints[0].Datetime.Before(*complaints[1].Datetime), "newest first")
}

func TestComplaintsValidation(t *testing.T) {
	e := newEnv(t)
	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPost, "/api/v1/complaints", []byte("{")).Code)
	body, _ := json.Marshal(map[string]string{"device_id": " "})
	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPost, "/api/v1/complaints", body).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, e.do(t, http.MethodDelete, "/api/v1/complaints", nil).Code)
}

func TestComplaintsRateLimited(t *testing.T) {
	e := newEnv(t, func(cfg *RouterConfig) { cfg.ComplaintRatePerMin = 1 })
	body, _ := json.Marshal(map[string]string{"device_id": "D1", "description": "x"})
	assert.Equal(t, http.StatusCreated, e.do(t, http.MethodPost, "/api/v1/complaints", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, e.do(t, http.MethodPost, "/api/v1/complaints", body).Code)
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/v1/complaints", nil).Code)
}

func TestDeviceEndpoints(t *testing.T) {
	e := newEnv(t)
	e.write(t, dataaccess.DevicesFile, "DeviceID,DeviceType,Location\nD1,Fan,A\n")
	e.write(t, dataaccess.UsageFile, "DeviceID,Date,HoursUsed\nD1,2024-01-02,4\nD1,2024-01-01,3\n")

	list := decode[devicesResponse](t, e.do(t, http.MethodGet, "/api/v1/devices", nil))
	assert.True(t, list.Available)
	assert.Len(t, list.Devices, 1)

	resp := e.do(t, http.MethodGet, "/api/v1/devices/D1", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	detail := decode[reporting.DeviceDetail](t, resp)
	require.Len(t, detail.Usage, 2)
	assert.Equal(t, 3.0, detail.Usage[0].HoursUsed)

	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/api/v1/devices/D404", nil).Code)
}

func TestPagesRenderWithUnreadableRows(t *testing.T) {
	e := newEnv(t)
	e.write(t, dataaccess.DevicesFile, "DeviceID,DeviceType,Location\nD1,Fan,A\nD2,Geyser,B\n")
	e.write(t, dataaccess.UsageFile, "DeviceID,Date,HoursUsed,FailureFlag\nD1,2024-01-01,10,1\nD1,not-a-date,5,0\n")
	e.write(t, dataaccess.SnapshotFile, "DeviceID,Date,pred_prob,priority\nD1,2024-01-02,0.9,1\nD2,2024-01-02,,\n")

	resp := e.do(t, http.MethodGet, "/api/v1/overview", nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	out := decode[reporting.Overview](t, resp)
	require.NotNil(t, out.MTBFHours)
	assert.InDelta(t, 10, *out.MTBFHours, 1e-9)
	assert.Equal(t, 1, out.HighRiskDevices)

	resp = e.do(t, http.MethodGet, "/api/v1/devices/D1", nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	detail := decode[reporting.DeviceDetail](t, resp)
	assert.Len(t, detail.Usage, 1)

	resp = e.do(t, http.MethodGet, "/api/v1/predictions", nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	tbl := decode[reporting.RiskTable](t, resp)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "D1", tbl.Rows[0].DeviceID)
}

func TestCacheInvalidate(t *testing.T) {
	e := newEnv(t)
	e.write(t, dataaccess.DevicesFile, "DeviceID\nD1\n")
	assert.Len(t, decode[devicesResponse](t, e.do(t, http.MethodGet, "/api/v1/devices", nil)).Devices, 1)

	e.write(t, dataaccess.DevicesFile, "DeviceID\nD1\nD2\n")
	assert.Len(t, decode[devicesResponse](t, e.do(t, http.MethodGet, "/api/v1/devices", nil)).Devices, 1)

	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPost, "/api/v1/cache/invalidate?dataset=bogus", nil).Code)
	assert.Equal(t, http.StatusNoContent, e.do(t, http.MethodPost, "/api/v1/cache/invalidate?dataset=devices", nil).Code)
	assert.Len(t, decode[devicesResponse](t, e.do(t, http.MethodGet, "/api/v1/devices", nil)).Devices, 2)
}

func TestExports(t *testing.T) {
	e := newEnv(t)
	e.write(t, dataaccess.SnapshotFile, "DeviceID,Date,pred_prob,priority\nD1,2024-01-02,0.9,1\n")

	resp := e.do(t, http.MethodGet, "/api/v1/exports/predictions.xlsx", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, resp.Header().Get("Content-Disposition"), "predictions.xlsx")

	resp = e.do(t, http.MethodGet, "/api/v1/exports/predictions.pdf", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, strings.HasPrefix(resp.Body.String(), "%PDF"))
}

func TestRouterRequiresTokenWhenSecretSet(t *testing.T) {
	secret := []byte("router-secret")
	e := newEnv(t, func(cfg *RouterConfig) { cfg.JWTSecret = secret })

	assert.Equal(t, http.StatusUnauthorized, e.do(t, http.MethodGet, "/api/v1/overview", nil).Code)
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/healthz", nil).Code)

	token, err := auth.IssueJWT(secret, "warden", auth.RoleOperator, time.Hour)
	require.NoError(t, err)
	body, _ := json.Marshal(map[string]string{"device_id": "D1", "description": "leak"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/complaints", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	e.handler.ServeHTTP(resp, req)
	require.Equal(t, http.StatusCreated, resp.Code)
	complaint := decode[inventory.Complaint](t, resp)
	assert.Equal(t, "warden", complaint.ReportedBy, "reporter defaults to the token subject")
}

func TestWritesAreAudited(t *testing.T) {
	auditPath := filepath.Join(t.TempDir(), "audit.jsonl")
	e := newEnv(t, func(cfg *RouterConfig) { cfg.Audit = audit.NewFileLogger(auditPath) })

	require.Equal(t, http.StatusNotFound, e.do(t, http.MethodPost, "/api/v1/pipeline/run", nil).Code)
	require.Equal(t, http.StatusNoContent, e.do(t, http.MethodPost, "/api/v1/cache/invalidate?dataset=usage", nil).Code)
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/v1/complaints", nil).Code)

	data, err := os.ReadFile(auditPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2, "reads are not audited")

	var first, second audit.Entry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "pipeline.run", first.Action)
	assert.Equal(t, http.StatusNotFound, first.Status)
	assert.Equal(t, "cache.invalidate", second.Action)
	assert.JSONEq(t, `{"query":"dataset=usage"}`, string(second.Metadata))
}
