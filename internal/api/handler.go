package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aaronyarm/moveclub-cohort-ultra/internal/config"
	"github.com/aaronyarm/moveclub-cohort-ultra/internal/engine"
	"github.com/aaronyarm/moveclub-cohort-ultra/internal/ingest"
	"github.com/aaronyarm/moveclub-cohort-ultra/internal/record"
)

// Handler holds all HTTP handler dependencies.
type Handler struct {
	eng    *engine.Engine
	src    config.Source
	loader *config.Loader // nil when running on defaults without a file
	mux    *http.ServeMux
}

// New creates an HTTP handler and registers all routes. loader may be
// nil, in which case the reload endpoint is unavailable.
func New(eng *engine.Engine, src config.Source, loader *config.Loader) http.Handler {
	h := &Handler{eng: eng, src: src, loader: loader, mux: http.NewServeMux()}

	h.mux.HandleFunc("POST /v1/reports", h.buildReport)
	h.mux.HandleFunc("GET /v1/config", h.showConfig)
	h.mux.HandleFunc("POST /v1/config/reload", h.reloadConfig)
	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.HandleFunc("GET /readyz", h.readyz)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	return loggingMiddleware(h.mux)
}

// reportResponse wraps one generated report.
type reportResponse struct {
	ReportID string `json:"report_id"`
	*engine.Report
}

// POST /v1/reports — body is a CSV document or a JSON array of records;
// computes and returns the full report synchronously.
func (h *Handler) buildReport(w http.ResponseWriter, r *http.Request) {
	maxBody := int64(h.src.Config().Server.MaxBodyMB) << 20
	body := http.MaxBytesReader(w, r.Body, maxBody)

	var (
		headers []string
		records []record.Record
		err     error
	)
	if strings.Contains(r.Header.Get("Content-Type"), "json") {
		records, err = recordsFromJSON(body)
	} else {
		headers, records, err = ingest.Read(body)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid body: %s", err))
		return
	}

	opts := engine.Options{Headers: headers}
	if v := r.URL.Query().Get("window_days"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days < 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid window_days %q", v))
			return
		}
		opts.WindowDays = days
	}

	report, err := h.eng.Process(records, opts)
	if errors.Is(err, engine.ErrNoRecords) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, reportResponse{ReportID: uuid.New().String(), Report: report})
}

// GET /v1/config — current analytics configuration.
func (h *Handler) showConfig(w http.ResponseWriter, r *http.Request) {
	cfg := h.src.Config()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"fee_percent": cfg.Analytics.FeePercent,
		"currency":    cfg.Analytics.Currency,
		"bands":       cfg.Analytics.Bands,
		"window_days": cfg.Analytics.WindowDays,
		"ad_spend":    cfg.Analytics.AdSpend,
	})
}

// POST /v1/config/reload — force reload from disk.
func (h *Handler) reloadConfig(w http.ResponseWriter, r *http.Request) {
	if h.loader == nil {
		writeError(w, http.StatusServiceUnavailable, "no config file configured")
		return
	}
	cfg, err := h.loader.Reload()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := config.Validate(cfg); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reloaded":      true,
		"ad_spend_keys": len(cfg.Analytics.AdSpend),
		"fee_percent":   cfg.Analytics.FeePercent,
	})
}

// GET /healthz — always 200 (liveness probe).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz — the engine is stateless, so readiness follows liveness.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// recordsFromJSON decodes a JSON array of header-keyed objects,
// stringifying scalar values the way a CSV export would carry them.
func recordsFromJSON(r io.Reader) ([]record.Record, error) {
	var rows []map[string]interface{}
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, err
	}
	records := make([]record.Record, 0, len(rows))
	for _, row := range rows {
		rec := make(record.Record, len(row))
		for k, v := range row {
			switch val := v.(type) {
			case string:
				rec[k] = val
			case float64:
				rec[k] = strconv.FormatFloat(val, 'f', -1, 64)
			case bool:
				rec[k] = strconv.FormatBool(val)
			case nil:
				rec[k] = ""
			default:
				b, _ := json.Marshal(val)
				rec[k] = string(b)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
