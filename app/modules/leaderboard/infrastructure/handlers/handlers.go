package leaderboardhandlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	leaderboardservice "github.com/Black-And-White-Club/gamezone-api/app/modules/leaderboard/application"
	"github.com/Black-And-White-Club/gamezone-api/internal/httpjson"
	"go.opentelemetry.io/otel/trace"
)

const (
	maxChartBars = 50
	exportName   = "leaderboard.xlsx"
	xlsxMIME     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// LeaderboardHandlers serves the leaderboard read and admin endpoints.
type LeaderboardHandlers struct {
	service   leaderboardservice.Service
	logger    *slog.Logger
	tracer    trace.Tracer
	chartTopN int
}

// NewLeaderboardHandlers creates a new instance of LeaderboardHandlers.
func NewLeaderboardHandlers(
	service leaderboardservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
	chartTopN int,
) *LeaderboardHandlers {
	if chartTopN <= 0 {
		chartTopN = 10
	}
	return &LeaderboardHandlers{
		service:   service,
		logger:    logger,
		tracer:    tracer,
		chartTopN: chartTopN,
	}
}

type epochResponse struct {
	EndTime time.Time `json:"end_time"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// HandleGetLeaderboard handles GET /api/leaderboard. It always answers 200;
// a store outage shows up as "stale": true.
func (h *LeaderboardHandlers) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetLeaderboard(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Leaderboard read failed", slog.Any("error", err))
		httpjson.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	httpjson.Write(w, http.StatusOK, view)
}

// HandleGetEpoch handles GET /api/leaderboard/epoch.
func (h *LeaderboardHandlers) HandleGetEpoch(w http.ResponseWriter, r *http.Request) {
	end, err := h.service.GetEpochEndTime(r.Context())
	if err != nil {
		h.logger.WarnContext(r.Context(), "Epoch end unavailable", slog.Any("error", err))
		httpjson.Error(w, http.StatusServiceUnavailable, "leaderboard store unavailable")
		return
	}
	httpjson.Write(w, http.StatusOK, epochResponse{EndTime: end})
}

// HandleGetChart handles GET /api/leaderboard/chart.png?top=N.
func (h *LeaderboardHandlers) HandleGetChart(w http.ResponseWriter, r *http.Request) {
	n := h.chartTopN
	if raw := r.URL.Query().Get("top"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > maxChartBars {
			httpjson.Error(w, http.StatusBadRequest, "top must be between 1 and "+strconv.Itoa(maxChartBars))
			return
		}
		n = v
	}

	png, err := h.service.RenderRewardChart(r.Context(), n)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Chart render failed", slog.Any("error", err))
		httpjson.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// HandleManualReset handles POST /api/reset-leaderboard.
func (h *LeaderboardHandlers) HandleManualReset(w http.ResponseWriter, r *http.Request) {
	if err := h.service.TriggerManualReset(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "Manual leaderboard reset failed", slog.Any("error", err))
		httpjson.Error(w, http.StatusServiceUnavailable, "leaderboard reset failed")
		return
	}
	httpjson.Write(w, http.StatusOK, messageResponse{Message: "leaderboard reset"})
}

// HandleExport handles GET /api/admin/leaderboard/export.xlsx.
func (h *LeaderboardHandlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.ExportLeaderboardXLSX(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Leaderboard export failed", slog.Any("error", err))
		httpjson.Error(w, http.StatusServiceUnavailable, "leaderboard store unavailable")
		return
	}
	w.Header().Set("Content-Type", xlsxMIME)
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
