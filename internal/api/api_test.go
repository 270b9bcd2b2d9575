package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"sleep-tracker/internal/api"
	"sleep-tracker/internal/database"
	"sleep-tracker/internal/repository"
	"sleep-tracker/internal/service"
)

const testKey = "s3cret"

type testServer struct {
	router http.Handler
	db     *gorm.DB
}

func newServer(t *testing.T, apiKey string, opts api.RouterOptions) *testServer {
	t.Helper()

	db, err := database.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	workerRepo, err := repository.NewGormWorkerRepository(db)
	require.NoError(t, err)
	entryRepo, err := repository.NewGormSleepEntryRepository(db)
	require.NoError(t, err)
	holidayRepo, err := repository.NewGormHolidayRepository(db)
	require.NoError(t, err)

	workers := service.NewWorkerService(workerRepo, service.WorkerDefaults{
		Country:         "PE",
		Timezone:        "UTC",
		Schedule:        "MON_FRI",
		ExcludeHolidays: true,
	})
	entries := service.NewSleepEntryService(entryRepo, workers)
	holidays := service.NewHolidayService(holidayRepo)
	reports := service.NewReportService(workerRepo, entryRepo, holidays, 345, time.UTC)
	export := service.NewExportService(reports)

	h := api.NewHandler(workers, entries, reports, holidays, export, apiKey)
	return &testServer{router: api.NewRouter(h, opts), db: db}
}

func (s *testServer) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) post(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	return s.do(t, http.MethodPost, "/api/entries", body, map[string]string{
		"Content-Type": "application/json",
		"X-API-KEY":    testKey,
	})
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	s := newServer(t, testKey, api.RouterOptions{})

	rec := s.do(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"ok": true, "service": "sleep-tracker-api"}`, rec.Body.String())
}

func TestNotFound(t *testing.T) {
	s := newServer(t, testKey, api.RouterOptions{})

	rec := s.do(t, http.MethodGet, "/api/nope", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, decode(t, rec)["ok"])
}

func TestCreateEntry(t *testing.T) {
	s := newServer(t, testKey, api.RouterOptions{})

	// GIVEN: корректная запись
	rec := s.post(t, `{"worker_name": "Carlos Díaz", "date": "2024-01-02", "sleep_h": 7, "sleep_m": 30, "source": "telegram"}`)

	// THEN: сохранена с ключом и длительностью
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "carlos_diaz", body["worker_key"])
	assert.Equal(t, "7 h 30 min", body["sleep_text"])
	assert.Equal(t, float64(450), body["duration_min"])
	assert.Equal(t, "telegram", body["source"])
	assert.Len(t, body["id"], 36)
}

func TestGetEntry(t *testing.T) {
	s := newServer(t, testKey, api.RouterOptions{})
	created := decode(t, s.post(t, `{"worker_name": "Ana", "date": "2024-01-02", "sleep_h": 6, "sleep_m": 10, "notes": "siesta"}`))
	id := created["id"].(string)

	rec := s.do(t, http.MethodGet, "/api/entries/"+id, "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	entry := decode(t, rec)["entry"].(map[string]any)
	assert.Equal(t, id, entry["id"])
	assert.Equal(t, "6 h 10 min", entry["sleep_text"])
	assert.Equal(t, "siesta", entry["notes"])

	rec = s.do(t, http.MethodGet, "/api/entries/does-not-exist", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInternalErrorHidesDetail(t *testing.T) {
	s := newServer(t, testKey, api.RouterOptions{})
	sqlDB, err := s.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	rec := s.do(t, http.MethodGet, "/api/ranking?month=2024-01", "", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Internal error", body["error"])
	assert.NotContains(t, body, "detail")
}

func TestCreateEntry_Validation(t *testing.T) {
	s := newServer(t, testKey, api.RouterOptions{})

	tests := []struct {
		body string
		want string
	}{
		{`{"date": "2024-01-02", "sleep_h": 7, "sleep_m": 0}`, "worker_name is required"},
		{`{"worker_name": "Ana", "date": "2024-1-2", "sleep_h": 7, "sleep_m": 0}`, "date must be YYYY-MM-DD"},
		{`{"worker_name": "Ana", "date": "2024-01-02", "sleep_h": 25, "sleep_m": 0}`, "sleep_h must be an integer between 0 and 24"},
		{`{"worker_name": "Ana", "date": "2024-01-02", "sleep_h": 7, "sleep_m": 75}`, "sleep_m must be an integer between 0 and 59"},
		{`{"worker_name": "Ana", "date": "2024-01-02", "sleep_h": 24, "sleep_m": 59}`, "sleep duration must be at most 24 h 0 min"},
		{`not json`, "Invalid JSON body"},
	}

	for _, tt := range tests {
		rec := s.post(t, tt.body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, tt.body)
		assert.Equal(t, tt.want, decode(t, rec)["error"], tt.body)
	}

	rec := s.do(t, http.MethodPost, "/api/entries", `{}`, map[string]string{"X-API-KEY": testKey, "Content-Type": "text/plain"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateEntry_APIKey(t *testing.T) {
	s := newServer(t, testKey, api.RouterOptions{})
	body := `{"worker_name": "Ana", "date": "2024-01-02", "sleep_h": 7, "sleep_m": 0}`

	rec := s.do(t, http.MethodPost, "/api/entries", body, map[string]string{"Content-Type": "application/json"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/entries", body, map[string]string{"Content-Type": "application/json", "X-API-KEY": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Missing/invalid X-API-KEY", decode(t, rec)["detail"])

	unconfigured := newServer(t, "", api.RouterOptions{})
	rec = unconfigured.do(t, http.MethodPost, "/api/entries", body, map[string]string{"Content-Type": "application/json", "X-API-KEY": "anything"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "API_KEY is not configured", decode(t, rec)["error"])
}

func TestCreateEntry_RateLimited(t *testing.T) {
	s := newServer(t, testKey, api.RouterOptions{RateLimitRPS: 0.001, RateLimitBurst: 2})
	body := `{"worker_name": "Ana", "date": "2024-01-02", "sleep_h": 7, "sleep_m": 0}`

	assert.Equal(t, http.StatusCreated, s.post(t, body).Code)
	assert.Equal(t, http.StatusCreated, s.post(t, body).Code)
	assert.Equal(t, http.StatusTooManyRequests, s.post(t, body).Code)

	// Чтение не ограничивается.
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/entries?month=2024-01", "", nil).Code)
}

func TestListEntries(t *testing.T) {
	s := newServer(t, testKey, api.RouterOptions{})
	s.post(t, `{"worker_name": "Ana", "date": "2024-01-02", "sleep_h": 6, "sleep_m": 0}`)
	s.post(t, `{"worker_name": "ana", "date": "2024-01-02", "sleep_h": 8, "sleep_m": 0}`)
	s.post(t, `{"worker_name": "Bruno", "date": "2024-01-03", "sleep_h": 5, "sleep_m": 0}`)

	rec := s.do(t, http.MethodGet, "/api/entries?month=2024-01", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, float64(3), body["raw_count"])
	assert.Equal(t, float64(2), body["consolidated_count"])
	assert.Equal(t, map[string]any{"start": "2024-01-01", "end_exclusive": "2024-02-01"}, body["range"])

	entries := body["entries"].([]any)
	first := entries[0].(map[string]any)
	assert.Equal(t, float64(480), first["duration_min"])

	rec = s.do(t, http.MethodGet, "/api/entries?month=01-2024", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "month must be YYYY-MM", decode(t, rec)["error"])
}

func TestGetRanking(t *testing.T) {
	s := newServer(t, testKey, api.RouterOptions{})
	s.post(t, `{"worker_name": "Ana", "date": "2024-01-02", "sleep_h": 7, "sleep_m": 0}`)
	s.post(t, `{"worker_name": "Bruno", "date": "2024-01-02", "sleep_h": 5, "sleep_m": 0}`)
	s.post(t, `{"worker_name": "Bruno", "date": "2024-01-03", "sleep_h": 6, "sleep_m": 0}`)

	rec := s.do(t, http.MethodGet, "/api/ranking?month=2024-01", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "2024-01", body["month"])
	ranking := body["ranking"].([]any)
	require.Len(t, ranking, 2)

	kpi := body["kpi"].(map[string]any)
	top := kpi["top3"].([]any)
	assert.Equal(t, "bruno", top[0].(map[string]any)["worker_key"])
	// (1/23 + 2/23) -> 4.3 and 8.7 -> 6.5
	assert.Equal(t, 6.5, kpi["avg_compliance_pct"])
}

func TestExportRanking(t *testing.T) {
	s := newServer(t, testKey, api.RouterOptions{})
	s.post(t, `{"worker_name": "Ana", "date": "2024-01-02", "sleep_h": 7, "sleep_m": 0}`)

	rec := s.do(t, http.MethodGet, "/api/ranking/export?month=2024-01", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "sleep_ranking_2024-01.xlsx")

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	name, err := f.GetCellValue("Ranking", "A3")
	require.NoError(t, err)
	assert.Equal(t, "Ana", name)
}

func TestGetToday(t *testing.T) {
	s := newServer(t, testKey, api.RouterOptions{})
	s.post(t, `{"worker_name": "Ana", "date": "2024-01-02", "sleep_h": 5, "sleep_m": 0}`)
	s.post(t, `{"worker_name": "Bruno", "date": "2024-01-01", "sleep_h": 8, "sleep_m": 0}`)

	rec := s.do(t, http.MethodGet, "/api/today?date=2024-01-02", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "2024-01-02", body["date"])
	assert.Equal(t, float64(1), body["registered_count"])
	assert.Equal(t, float64(1), body["pending_count"])

	registered := body["registered"].([]any)[0].(map[string]any)
	assert.Equal(t, false, registered["meets_min"])
	assert.Equal(t, float64(345), registered["min_sleep_minutes"])
	assert.Equal(t, []any{}, body["holiday_summary"])

	rec = s.do(t, http.MethodGet, "/api/today?date=2024-13-45", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHolidays(t *testing.T) {
	s := newServer(t, testKey, api.RouterOptions{})

	rec := s.do(t, http.MethodPost, "/api/holidays/generate?year=2024&country=us", "", map[string]string{"X-API-KEY": testKey})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "US", decode(t, rec)["country"])

	rec = s.do(t, http.MethodPost, "/api/holidays/generate?year=2024&country=PE", "", map[string]string{"X-API-KEY": testKey})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/holidays?year=2024&country=us", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "2024", body["year"])
	assert.Equal(t, "US", body["country"])
	assert.NotEmpty(t, body["holidays"])

	rec = s.do(t, http.MethodGet, "/api/holidays?year=2024", "", nil)
	assert.Nil(t, decode(t, rec)["country"])

	rec = s.do(t, http.MethodGet, "/api/holidays?year=24", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "year must be YYYY", decode(t, rec)["error"])
}

func TestWorkers(t *testing.T) {
	s := newServer(t, testKey, api.RouterOptions{})
	s.post(t, `{"worker_name": "Ana", "date": "2024-01-02", "sleep_h": 7, "sleep_m": 0, "country_code": "cl"}`)
	s.post(t, `{"worker_name": "Bruno", "date": "2024-01-02", "sleep_h": 7, "sleep_m": 0}`)

	rec := s.do(t, http.MethodPost, "/api/workers/bruno/settings", `{"is_active": false}`, map[string]string{"X-API-KEY": testKey})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/workers", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	workers := decode(t, rec)["workers"].([]any)
	require.Len(t, workers, 1)
	ana := workers[0].(map[string]any)
	assert.Equal(t, "ana", ana["worker_key"])
	assert.Equal(t, "CL", ana["country_code"])
	assert.Equal(t, "MON_FRI", ana["required_schedule"])
	assert.Equal(t, true, ana["exclude_holidays"])

	rec = s.do(t, http.MethodGet, "/api/workers/ana/stats?month=2024-01", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	report := decode(t, rec)["report"].(map[string]any)
	assert.Equal(t, float64(1), report["days_with_record"])

	rec = s.do(t, http.MethodGet, "/api/workers/ghost/stats?month=2024-01", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/workers/ana/settings", `{"required_schedule": "SOMETIMES"}`, map[string]string{"X-API-KEY": testKey})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newServer(t, testKey, api.RouterOptions{AllowedOrigins: []string{"https://dash.example"}})

	rec := s.do(t, http.MethodOptions, "/api/entries", "", map[string]string{
		"Origin":                         "https://dash.example",
		"Access-Control-Request-Method":  "POST",
		"Access-Control-Request-Headers": "X-API-KEY",
	})

	assert.Less(t, rec.Code, 300)
	assert.Equal(t, "https://dash.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
}
