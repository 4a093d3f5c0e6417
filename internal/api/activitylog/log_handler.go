package activitylog

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/bet-user-api/internal/api"
)

type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// GetSummary godoc
// @Summary      Activity log summary
// @Description  Returns every recorded account operation in append order
// @Tags         Logs
// @Produce      json
// @Success      200 {array} LogEntry
// @Router       /api/logs/summary [get]
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("LogHandler").Start(r.Context(), "GetSummary")
	defer span.End()

	entries := h.service.GetSummary()
	if entries == nil {
		entries = []LogEntry{}
	}

	span.SetStatus(codes.Ok, "Summary returned")
	api.WriteJSONResponse(w, r.WithContext(ctx), http.StatusOK, entries)
}
