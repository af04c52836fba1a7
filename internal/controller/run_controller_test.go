package controller_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kql-assistant-backend/internal/controller"
	"kql-assistant-backend/internal/dto"
	"kql-assistant-backend/internal/model"
	"kql-assistant-backend/internal/service"
)

type fakeSearchRepo struct {
	got dto.RunSearchRequest
}

func (f *fakeSearchRepo) Search(_ context.Context, req dto.RunSearchRequest) (*dto.RunSearchResponse, error) {
	f.got = req
	return &dto.RunSearchResponse{
		Runs:       []model.QueryRun{{ID: "run-1", Outcome: model.RunOutcomeSuccess}},
		TotalCount: 1,
	}, nil
}

func newRunRouter(svc service.RunQueryService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	controller.RegisterRunRoutes(r, controller.NewRunController(svc))
	controller.RegisterHealthRoutes(r)
	return r
}

func TestGetRuns_SearchDisabled(t *testing.T) {
	r := newRunRouter(service.NewRunQueryService(nil, nil))

	rr := serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/kql/runs", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	rr = serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/kql/runs/stats", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestGetRuns_PassesFilters(t *testing.T) {
	repo := &fakeSearchRepo{}
	r := newRunRouter(service.NewRunQueryService(repo, nil))

	rr := serve(r, httptest.NewRequest(http.MethodGet,
		"/api/v1/kql/runs?startTime=2024-05-01T00:00:00Z&endTime=2024-05-02T00:00:00Z&outcome=error&size=10", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	assert.Equal(t, "error", repo.got.Outcome)
	assert.Equal(t, 10, repo.got.Size)
	assert.Equal(t, "2024-05-01T00:00:00Z", repo.got.StartTime.Format("2006-01-02T15:04:05Z07:00"))

	var resp dto.RunSearchResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.EqualValues(t, 1, resp.TotalCount)
	require.Len(t, resp.Runs, 1)
	assert.Equal(t, "run-1", resp.Runs[0].ID)
}

func TestGetRuns_BadTime(t *testing.T) {
	r := newRunRouter(service.NewRunQueryService(&fakeSearchRepo{}, nil))
	rr := serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/kql/runs?startTime=yesterday", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetRuns_EndBeforeStart(t *testing.T) {
	r := newRunRouter(service.NewRunQueryService(&fakeSearchRepo{}, nil))
	rr := serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/kql/runs?startTime=now&endTime=now-1h", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHealthz(t *testing.T) {
	r := newRunRouter(service.NewRunQueryService(nil, nil))
	rr := serve(r, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

type fakeStatsRepo struct{}

func (fakeStatsRepo) GetRunStats(context.Context, dto.RunStatsRequest) (*dto.RunStatsResponse, error) {
	return &dto.RunStatsResponse{}, nil
}

func TestGetRunStats_UnknownInterval(t *testing.T) {
	r := newRunRouter(service.NewRunQueryService(nil, fakeStatsRepo{}))

	rr := serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/kql/runs/stats?interval=2+weeks", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/kql/runs/stats?interval=5+minute", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}
