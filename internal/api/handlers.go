package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"sleep-tracker/internal/logging"
	"sleep-tracker/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

const serviceName = "sleep-tracker-api"

type Handler struct {
	workers  *service.WorkerService
	entries  *service.SleepEntryService
	reports  *service.ReportService
	holidays *service.HolidayService
	export   *service.ExportService
	apiKey   string
	logger   *logrus.Logger
}

func NewHandler(
	workers *service.WorkerService,
	entries *service.SleepEntryService,
	reports *service.ReportService,
	holidays *service.HolidayService,
	export *service.ExportService,
	apiKey string,
) *Handler {
	return &Handler{
		workers:  workers,
		entries:  entries,
		reports:  reports,
		holidays: holidays,
		export:   export,
		apiKey:   apiKey,
		logger:   logging.New(),
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{OK: true, Service: serviceName})
}

// =============================================================================
// ЗАПИСИ
// =============================================================================

func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	if !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", nil)
		return
	}

	var in service.SubmitInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	entry, err := h.entries.Submit(r.Context(), in)
	if err != nil {
		h.fail(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, EntryCreatedResponse{
		OK:          true,
		ID:          entry.ID,
		WorkerName:  entry.WorkerName,
		WorkerKey:   entry.WorkerKey,
		Date:        entry.Date,
		SleepH:      entry.SleepH,
		SleepM:      entry.SleepM,
		SleepText:   entry.SleepText,
		DurationMin: *entry.DurationMin,
		Source:      entry.Source,
	})
}

func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.entries.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, EntryResponse{OK: true, Entry: entry})
}

func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	result, err := h.entries.MonthEntries(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, EntriesResponse{OK: true, MonthEntries: result})
}

// =============================================================================
// ОТЧЕТЫ
// =============================================================================

func (h *Handler) GetRanking(w http.ResponseWriter, r *http.Request) {
	ranking, err := h.reports.MonthlyRanking(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RankingResponse{OK: true, MonthlyRanking: ranking})
}

func (h *Handler) ExportRanking(w http.ResponseWriter, r *http.Request) {
	buf, filename, err := h.export.ExportRanking(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		h.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WithError(err).Warn("Failed to write export")
	}
}

func (h *Handler) GetToday(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.Today(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TodayResponse{OK: true, DayReport: report})
}

// =============================================================================
// ПРАЗДНИКИ
// =============================================================================

func parseYear(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if len(raw) != 4 {
		return 0, false
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 0 {
		return 0, false
	}
	return year, true
}

func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	year, ok := parseYear(q.Get("year"))
	if !ok {
		writeError(w, http.StatusBadRequest, "year must be YYYY", nil)
		return
	}
	country := strings.ToUpper(strings.TrimSpace(q.Get("country")))

	list, err := h.holidays.ListYear(r.Context(), year, country)
	if err != nil {
		h.fail(w, err)
		return
	}

	resp := HolidaysResponse{OK: true, Year: strconv.Itoa(year), Holidays: list}
	if country != "" {
		resp.Country = &country
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GenerateHolidays(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	year, ok := parseYear(q.Get("year"))
	if !ok {
		writeError(w, http.StatusBadRequest, "year must be YYYY", nil)
		return
	}
	country := strings.ToUpper(strings.TrimSpace(q.Get("country")))

	count, err := h.holidays.Generate(r.Context(), country, year)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, GenerateHolidaysResponse{OK: true, Country: country, Year: year, Count: count})
}

// =============================================================================
// РАБОТНИКИ
// =============================================================================

func (h *Handler) ListWorkers(w http.ResponseWriter, r *http.Request) {
	workers, err := h.workers.ListActive(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	dtos := make([]WorkerDTO, 0, len(workers))
	for _, wk := range workers {
		dtos = append(dtos, toWorkerDTO(wk))
	}
	writeJSON(w, http.StatusOK, WorkersResponse{OK: true, Workers: dtos})
}

func (h *Handler) GetWorkerStats(w http.ResponseWriter, r *http.Request) {
	month := strings.TrimSpace(r.URL.Query().Get("month"))
	report, err := h.reports.WorkerMonth(r.Context(), chi.URLParam(r, "key"), month)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, WorkerStatsResponse{OK: true, Month: month, Report: report})
}

func (h *Handler) UpdateWorkerSettings(w http.ResponseWriter, r *http.Request) {
	var upd service.SettingsUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	worker, err := h.workers.UpdateSettings(r.Context(), chi.URLParam(r, "key"), upd)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, WorkerResponse{OK: true, Worker: toWorkerDTO(worker)})
}

// =============================================================================
// ВСПОМОГАТЕЛЬНЫЕ
// =============================================================================

// fail переводит ошибку сервиса в HTTP ответ
func (h *Handler) fail(w http.ResponseWriter, err error) {
	var inErr *service.InputError
	switch {
	case errors.As(err, &inErr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: inErr.Msg, Fields: inErr.Fields})
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found", err)
	default:
		h.logger.WithError(err).Error("Request failed")
		writeError(w, http.StatusInternalServerError, "Internal error", nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Detail = err.Error()
	}
	writeJSON(w, status, resp)
}

func writeErrorDetail(w http.ResponseWriter, status int, message, detail string) {
	writeJSON(w, status, ErrorResponse{Error: message, Detail: detail})
}
