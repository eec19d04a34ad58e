package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"termshift/internal/domain"
	"termshift/internal/store"
)

type mockScheduleService struct {
	schedules  []domain.Schedule
	addErr     error
	cacheCalls int
}

func (m *mockScheduleService) List(_ context.Context) ([]domain.Schedule, error) {
	return m.schedules, nil
}

func (m *mockScheduleService) Get(_ context.Context, index int) (domain.Schedule, error) {
	if index < 0 || index >= len(m.schedules) {
		return domain.Schedule{}, store.ErrNotFound
	}
	return m.schedules[index], nil
}

func (m *mockScheduleService) Add(_ context.Context, rec domain.Record) (int, error) {
	if m.addErr != nil {
		return 0, m.addErr
	}
	sched, err := domain.NewSchedule(rec)
	if err != nil {
		return 0, err
	}
	m.schedules = append(m.schedules, sched)
	return len(m.schedules) - 1, nil
}

func (m *mockScheduleService) Update(_ context.Context, index int, rec domain.Record) error {
	if index < 0 || index >= len(m.schedules) {
		return store.ErrNotFound
	}
	sched, err := domain.NewSchedule(rec)
	if err != nil {
		return err
	}
	m.schedules[index] = sched
	return nil
}

func (m *mockScheduleService) Delete(_ context.Context, index int) error {
	if index < 0 || index >= len(m.schedules) {
		return store.ErrNotFound
	}
	m.schedules = append(m.schedules[:index], m.schedules[index+1:]...)
	return nil
}

func (m *mockScheduleService) Export(_ context.Context) ([]domain.Record, error) {
	out := make([]domain.Record, 0, len(m.schedules))
	for _, s := range m.schedules {
		out = append(out, s.Record())
	}
	return out, nil
}

func (m *mockScheduleService) Import(_ context.Context, records []domain.Record) (int, error) {
	imported := 0
	for _, rec := range records {
		if _, err := m.Add(context.Background(), rec); err == nil {
			imported++
		}
	}
	return imported, nil
}

func (m *mockScheduleService) ClearCache() {
	m.cacheCalls++
}

func newScheduleRouter(svc ScheduleService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewSchedulesHandler(svc, nil).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func mustSchedule(t *testing.T, name string) domain.Schedule {
	t.Helper()
	s, err := domain.NewSchedule(domain.Record{
		Name:          name,
		ContentType:   "event",
		CategoryAxis:  "event_status",
		DateSource:    "event_date",
		UpcomingLabel: "upcoming",
		PastLabel:     "past",
	})
	require.NoError(t, err)
	return s
}

func TestSchedulesList(t *testing.T) {
	svc := &mockScheduleService{schedules: []domain.Schedule{mustSchedule(t, "a"), mustSchedule(t, "b")}}
	r := newScheduleRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedules", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"a"`)
	assert.Contains(t, w.Body.String(), `"name":"b"`)
}

func TestSchedulesCreate(t *testing.T) {
	svc := &mockScheduleService{}
	r := newScheduleRouter(svc)

	body := `{"name":"a","content_type":"event","category_axis":"event_status","date_source":"event_date","upcoming_label":"upcoming","past_label":"past"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/schedules", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"index":0}`, w.Body.String())
	require.Len(t, svc.schedules, 1)
}

func TestSchedulesCreate_InvalidSchedule(t *testing.T) {
	r := newScheduleRouter(&mockScheduleService{})

	body := `{"name":"a","content_type":"event","category_axis":"event_status","date_source":"event_date","source_kind":"repeating","upcoming_label":"upcoming","past_label":"past"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/schedules", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "date_subfield")
}

func TestSchedulesCreate_StoreFailure(t *testing.T) {
	r := newScheduleRouter(&mockScheduleService{addErr: errors.New("db down")})

	body := `{"name":"a"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/schedules", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSchedulesGet_NotFound(t *testing.T) {
	r := newScheduleRouter(&mockScheduleService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedules/3", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSchedulesGet_BadIndex(t *testing.T) {
	r := newScheduleRouter(&mockScheduleService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedules/nope", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSchedulesDelete(t *testing.T) {
	svc := &mockScheduleService{schedules: []domain.Schedule{mustSchedule(t, "a"), mustSchedule(t, "b")}}
	r := newScheduleRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/schedules/0", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, svc.schedules, 1)
	assert.Equal(t, "b", svc.schedules[0].Name)
}

func TestSchedulesImport(t *testing.T) {
	svc := &mockScheduleService{}
	r := newScheduleRouter(svc)

	body := `{"schedules":[
		{"name":"a","content_type":"event","category_axis":"event_status","date_source":"event_date","upcoming_label":"upcoming","past_label":"past"},
		{"name":"broken"}
	]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/schedules/import", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"imported":1}`, w.Body.String())
}

func TestSchedulesExport(t *testing.T) {
	svc := &mockScheduleService{schedules: []domain.Schedule{mustSchedule(t, "a")}}
	r := newScheduleRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedules/export", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"a"`)
}

func TestSchedulesClearCache(t *testing.T) {
	svc := &mockScheduleService{}
	r := newScheduleRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/schedules/cache/clear", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, svc.cacheCalls)
}
