package apihttp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"maintenance-cloud/internal/auth"
	inventory "maintenance-cloud/internal/inventory/domain"
	"maintenance-cloud/internal/observability/metrics"
	predictionapp "maintenance-cloud/internal/prediction/application"
	prediction "maintenance-cloud/internal/prediction/domain"
	reportingapp "maintenance-cloud/internal/reporting/application"
	reporting "maintenance-cloud/internal/reporting/domain"
	reportexport "maintenance-cloud/internal/reporting/interfaces"
)

// Reports is the reporting surface served over HTTP.
type Reports interface {
	Overview(ctx context.Context, threshold float64) (reporting.Overview, error)
	RiskTable(ctx context.Context, threshold float64) (reporting.RiskTable, error)
	DeviceDetail(ctx context.Context, deviceID string) (reporting.DeviceDetail, error)
	Devices(ctx context.Context) (inventory.Inventory, bool, error)
	Complaints(ctx context.Context) ([]inventory.Complaint, error)
	SubmitComplaint(ctx context.Context, deviceID, description, reportedBy string) (inventory.Complaint, error)
	RunPipeline(ctx context.Context) (predictionapp.RunResult, error)
	InvalidateCache(datasets ...string) error
}

// OverviewHandler serves GET /api/v1/overview.
type OverviewHandler struct {
	reports   Reports
	threshold float64
	logger    *zap.Logger
}

// NewOverviewHandler constructs an OverviewHandler.
func NewOverviewHandler(reports Reports, threshold float64, logger *zap.Logger) *OverviewHandler {
	return &OverviewHandler{reports: reports, threshold: threshold, logger: nopIfNil(logger)}
}

// ServeHTTP handles GET /api/v1/overview.
func (h *OverviewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.reports == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}
	threshold, err := parseThreshold(r, h.threshold)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	overview, err := h.reports.Overview(r.Context(), threshold)
	if err != nil {
		writeError(w, h.logger, "overview", err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

// PredictionsHandler serves GET /api/v1/predictions.
type PredictionsHandler struct {
	reports   Reports
	threshold float64
	logger    *zap.Logger
}

// NewPredictionsHandler constructs a PredictionsHandler.
func NewPredictionsHandler(reports Reports, threshold float64, logger *zap.Logger) *PredictionsHandler {
	return &PredictionsHandler{reports: reports, threshold: threshold, logger: nopIfNil(logger)}
}

// ServeHTTP handles GET /api/v1/predictions.
func (h *PredictionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.reports == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}
	threshold, err := parseThreshold(r, h.threshold)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	tbl, err := h.reports.RiskTable(r.Context(), threshold)
	if err != nil {
		writeError(w, h.logger, "predictions", err)
		return
	}
	writeJSON(w, http.StatusOK, tbl)
}

// DevicesHandler serves GET /api/v1/devices and GET /api/v1/devices/{id}.
type DevicesHandler struct {
	reports Reports
	logger  *zap.Logger
}

// NewDevicesHandler constructs a DevicesHandler.
func NewDevicesHandler(reports Reports, logger *zap.Logger) *DevicesHandler {
	return &DevicesHandler{reports: reports, logger: nopIfNil(logger)}
}

type devicesResponse struct {
	Available bool               `json:"available"`
	Devices   []inventory.Device `json:"devices"`
}

// ServeHTTP handles device listing and detail.
func (h *DevicesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.reports == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	deviceID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/devices"), "/")
	if deviceID == "" {
		inv, available, err := h.reports.Devices(r.Context())
		if err != nil {
			writeError(w, h.logger, "devices", err)
			return
		}
		writeJSON(w, http.StatusOK, devicesResponse{Available: available, Devices: inv.Devices})
		return
	}
	if strings.Contains(deviceID, "/") {
		http.NotFound(w, r)
		return
	}
	detail, err := h.reports.DeviceDetail(r.Context(), deviceID)
	if err != nil {
		writeError(w, h.logger, "device detail", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// ComplaintsHandler serves GET and POST /api/v1/complaints.
type ComplaintsHandler struct {
	reports Reports
	logger  *zap.Logger
}

// NewComplaintsHandler constructs a ComplaintsHandler.
func NewComplaintsHandler(reports Reports, logger *zap.Logger) *ComplaintsHandler {
	return &ComplaintsHandler{reports: reports, logger: nopIfNil(logger)}
}

type complaintRequest struct {
	DeviceID    string `json:"device_id"`
	Description string `json:"description"`
	ReportedBy  string `json:"reported_by"`
}

// ServeHTTP handles complaint listing and submission.
func (h *ComplaintsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.reports == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}
	switch r.Method {
	case http.MethodGet:
		complaints, err := h.reports.Complaints(r.Context())
		if err != nil {
			writeError(w, h.logger, "complaints", err)
			return
		}
		writeJSON(w, http.StatusOK, complaints)
	case http.MethodPost:
		var req complaintRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		reportedBy := strings.TrimSpace(req.ReportedBy)
		if reportedBy == "" {
			reportedBy = auth.SubjectFromContext(r.Context())
		}
		complaint, err := h.reports.SubmitComplaint(r.Context(), req.DeviceID, req.Description, reportedBy)
		if err != nil {
			writeError(w, h.logger, "submit complaint", err)
			return
		}
		writeJSON(w, http.StatusCreated, complaint)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// PipelineHandler serves POST /api/v1/pipeline/run.
type PipelineHandler struct {
	reports Reports
	logger  *zap.Logger
}

// NewPipelineHandler constructs a PipelineHandler.
func NewPipelineHandler(reports Reports, logger *zap.Logger) *PipelineHandler {
	return &PipelineHandler{reports: reports, logger: nopIfNil(logger)}
}

// ServeHTTP handles POST /api/v1/pipeline/run.
func (h *PipelineHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.reports == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}
	result, err := h.reports.RunPipeline(r.Context())
	if err != nil {
		writeError(w, h.logger, "pipeline run", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CacheHandler serves POST /api/v1/cache/invalidate.
type CacheHandler struct {
	reports Reports
	logger  *zap.Logger
}

// NewCacheHandler constructs a CacheHandler.
func NewCacheHandler(reports Reports, logger *zap.Logger) *CacheHandler {
	return &CacheHandler{reports: reports, logger: nopIfNil(logger)}
}

// ServeHTTP handles POST /api/v1/cache/invalidate?dataset=a,b.
func (h *CacheHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.reports == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}
	datasets := splitCSV(r.URL.Query().Get("dataset"))
	if err := h.reports.InvalidateCache(datasets...); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportHandler serves GET /api/v1/exports/predictions.{xlsx,pdf}.
type ExportHandler struct {
	reports   Reports
	threshold float64
	logger    *zap.Logger
}

// NewExportHandler constructs an ExportHandler.
func NewExportHandler(reports Reports, threshold float64, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{reports: reports, threshold: threshold, logger: nopIfNil(logger)}
}

// ServeHTTP renders the risk table in the requested format.
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.reports == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	var (
		format      string
		contentType string
		build       func(reporting.RiskTable, time.Time) ([]byte, error)
	)
	switch r.URL.Path {
	case "/api/v1/exports/predictions.xlsx":
		format = "xlsx"
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		build = reportexport.BuildRiskXLSX
	case "/api/v1/exports/predictions.pdf":
		format = "pdf"
		contentType = "application/pdf"
		build = reportexport.BuildRiskPDF
	default:
		http.NotFound(w, r)
		return
	}

	threshold, err := parseThreshold(r, h.threshold)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	start := time.Now()
	tbl, err := h.reports.RiskTable(r.Context(), threshold)
	if err != nil {
		metrics.ObserveExport(format, metrics.ResultError, time.Since(start))
		writeError(w, h.logger, "export", err)
		return
	}
	data, err := build(tbl, time.Now().UTC())
	if err != nil {
		metrics.ObserveExport(format, metrics.ResultError, time.Since(start))
		writeError(w, h.logger, "export", err)
		return
	}
	metrics.ObserveExport(format, metrics.ResultSuccess, time.Since(start))

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=predictions.%s", format))
	_, _ = w.Write(data)
}

func parseThreshold(r *http.Request, fallback float64) (float64, error) {
	value := r.URL.Query().Get("threshold")
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.New("invalid threshold")
	}
	if err := reporting.ValidateThreshold(parsed); err != nil {
		return 0, err
	}
	return parsed, nil
}

// writeError maps domain errors to HTTP statuses.
func writeError(w http.ResponseWriter, logger *zap.Logger, op string, err error) {
	switch {
	case errors.Is(err, reporting.ErrInvalidThreshold),
		errors.Is(err, inventory.ErrEmptyComplaintDevice):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, reporting.ErrDeviceNotFound):
		http.Error(w, "device not found", http.StatusNotFound)
	case errors.Is(err, prediction.ErrFeaturesUnavailable):
		http.Error(w, "features file not found", http.StatusNotFound)
	case errors.Is(err, prediction.ErrModelUnavailable):
		logger.Error(op+" failed", zap.Error(err))
		http.Error(w, "model unavailable", http.StatusServiceUnavailable)
	case errors.Is(err, reportingapp.ErrPipelineDisabled):
		http.Error(w, "pipeline not configured", http.StatusServiceUnavailable)
	default:
		logger.Error(op+" failed", zap.Error(err))
		http.Error(w, op+" error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func nopIfNil(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
