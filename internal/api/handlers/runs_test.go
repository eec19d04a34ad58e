package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type mockRunService struct {
	counts        map[string]int
	runErr        error
	categorized   []int64
	categorizeErr error
}

func (m *mockRunService) RunManual(_ context.Context) (map[string]int, error) {
	if m.runErr != nil {
		return nil, m.runErr
	}
	return m.counts, nil
}

func (m *mockRunService) CategorizeOnSave(_ context.Context, itemID int64) error {
	if m.categorizeErr != nil {
		return m.categorizeErr
	}
	m.categorized = append(m.categorized, itemID)
	return nil
}

func newRunsRouter(svc RunService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewRunsHandler(svc, nil).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestRunManual_ReturnsPerScheduleCounts(t *testing.T) {
	svc := &mockRunService{counts: map[string]int{"events": 3, "courses": 0}}
	r := newRunsRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/runs", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"transitioned":{"events":3,"courses":0}}`, w.Body.String())
}

func TestRunManual_Failure(t *testing.T) {
	r := newRunsRouter(&mockRunService{runErr: errors.New("store down")})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/runs", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCategorizeItem(t *testing.T) {
	svc := &mockRunService{}
	r := newRunsRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/items/42/categorize", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int64{42}, svc.categorized)
}

func TestCategorizeItem_RejectsNonNumericIDs(t *testing.T) {
	svc := &mockRunService{}
	r := newRunsRouter(svc)

	for _, id := range []string{"draft", "0", "-3", "12.5"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/items/"+id+"/categorize", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "id %q", id)
	}
	assert.Empty(t, svc.categorized)
}
