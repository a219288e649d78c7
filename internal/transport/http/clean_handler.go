package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"dqcli/internal/config"
	"dqcli/internal/engine"
	apierrors "dqcli/internal/errors"
	"dqcli/internal/ingest"
	"dqcli/internal/pipeline"
)

// maxUploadBytes bounds multipart uploads so a single request cannot
// exhaust memory.
const maxUploadBytes = 64 << 20

// CleanHandler handles data cleaning HTTP requests
type CleanHandler struct {
	defaults pipeline.Options
	tracer   *pipeline.Tracer
	logger   *slog.Logger
}

// NewCleanHandler creates a new clean handler
func NewCleanHandler(defaults pipeline.Options, tracer *pipeline.Tracer, logger *slog.Logger) *CleanHandler {
	return &CleanHandler{
		defaults: defaults,
		tracer:   tracer,
		logger:   logger.With(slog.String("handler", "clean")),
	}
}

// CleanResponse is the JSON body returned from a cleaning request.
type CleanResponse struct {
	RunID   string          `json:"run_id"`
	Status  string          `json:"status"`
	Report  json.RawMessage `json:"report"`
	Audit   json.RawMessage `json:"audit"`
	Data    [][]string      `json:"data"`
	Columns []string        `json:"columns"`
}

// Clean handles POST /api/v1/clean. The request is a multipart form with a
// "file" part holding CSV data and an optional "options" part holding a
// JSON-encoded options override.
func (h *CleanHandler) Clean(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		render.Render(w, r, apierrors.ErrMissingFile)
		return
	}
	defer file.Close()

	tbl, err := ingest.ReadCSV(file)
	if err != nil {
		h.logger.WarnContext(ctx, "upload parse failed",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()))
		render.Render(w, r, apierrors.ErrParseFailed(err))
		return
	}

	opts, err := h.requestOptions(r)
	if err != nil {
		render.Render(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	var engineOpts []engine.Option
	if h.tracer != nil {
		engineOpts = append(engineOpts, engine.WithTracer(h.tracer))
	}
	eng := engine.New(opts, engineOpts...)
	result := eng.Run(ctx, tbl)

	reportJSON, err := json.Marshal(result.Report)
	if err != nil {
		render.Render(w, r, apierrors.ErrPipelineExecution(err))
		return
	}
	auditJSON, err := json.Marshal(eng.Audit())
	if err != nil {
		render.Render(w, r, apierrors.ErrPipelineExecution(err))
		return
	}

	h.logger.InfoContext(ctx, "clean request completed",
		slog.String("run_id", result.RunID),
		slog.String("filename", header.Filename),
		slog.String("status", result.Status),
		slog.Float64("quality_score", result.Report.QualityScore),
		slog.Duration("latency", time.Since(start)))

	rows := make([][]string, result.Table.RowCount())
	for i := range rows {
		cells := result.Table.Row(i)
		row := make([]string, len(cells))
		for j, v := range cells {
			row[j] = v.String()
		}
		rows[i] = row
	}

	render.JSON(w, r, &CleanResponse{
		RunID:   result.RunID,
		Status:  result.Status,
		Report:  reportJSON,
		Audit:   auditJSON,
		Data:    rows,
		Columns: result.Table.ColumnNames(),
	})
}

// requestOptions merges the optional "options" form part over the server
// defaults.
func (h *CleanHandler) requestOptions(r *http.Request) (pipeline.Options, error) {
	opts := h.defaults
	raw := r.FormValue("options")
	if raw == "" {
		return opts, nil
	}
	var override config.PipelineConfig
	if err := json.Unmarshal([]byte(raw), &override); err != nil {
		return opts, err
	}
	return override.Options(), nil
}
