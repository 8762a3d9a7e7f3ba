package handler

import (
	"fmt"
	"net/http"

	"github.com/goaltrack/goaltrack/internal/calendar"
	"github.com/goaltrack/goaltrack/internal/ctxkeys"
	"github.com/goaltrack/goaltrack/internal/service"
)

type ExportHandler struct {
	exportService *service.ExportService
	cal           *calendar.Calendar
}

func NewExportHandler(exportService *service.ExportService, cal *calendar.Calendar) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
		cal:           cal,
	}
}

// Download streams the snapshot as a JSON attachment.
func (h *ExportHandler) Download(w http.ResponseWriter, r *http.Request) {
	export, err := h.exportService.Snapshot(r.Context(), ctxkeys.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="goaltrack-export-%s.json"`, h.cal.Today()))
	writeJSON(w, http.StatusOK, export)
}

func (h *ExportHandler) Archive(w http.ResponseWriter, r *http.Request) {
	url, err := h.exportService.Archive(r.Context(), ctxkeys.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}
