package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"kql-assistant-backend/internal/dto"
	"kql-assistant-backend/internal/model"
	"kql-assistant-backend/internal/service"
	"kql-assistant-backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type RunController struct {
	runQueryService service.RunQueryService
	now             func() time.Time
}

func NewRunController(runQueryService service.RunQueryService) *RunController {
	return &RunController{
		runQueryService: runQueryService,
		now:             time.Now,
	}
}

func RegisterRunRoutes(router *gin.Engine, controller *RunController) {
	v1 := router.Group("/api/v1/kql/runs")
	{
		v1.GET("", controller.GetRuns)
		v1.GET("/stats", controller.GetRunStats)
	}
}

func RegisterHealthRoutes(router *gin.Engine) {
	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func (c *RunController) parseRange(ctx *gin.Context) (time.Time, time.Time, bool) {
	now := c.now()
	startTime, errStart := util.ParseTimeInput(ctx.DefaultQuery("startTime", "now-24h"), now)
	endTime, errEnd := util.ParseTimeInput(ctx.DefaultQuery("endTime", "now"), now)
	if errStart != nil || errEnd != nil {
		ctx.JSON(http.StatusBadRequest, model.NewResponse("Invalid startTime or endTime format. Use ISO 8601, epoch milliseconds or now-<duration>.", nil))
		return time.Time{}, time.Time{}, false
	}
	return startTime, endTime, true
}

func (c *RunController) writeError(ctx *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrAuditDisabled):
		ctx.JSON(http.StatusServiceUnavailable, model.NewResponse(err.Error(), nil))
	case service.IsInputError(err):
		ctx.JSON(http.StatusBadRequest, model.NewResponse(err.Error(), nil))
	default:
		log.Error().Err(err).Msg(msg)
		ctx.JSON(http.StatusInternalServerError, model.NewResponse(msg, nil))
	}
}

// GetRuns godoc
// @Summary      Search recorded query runs
// @Description  Lists audited pipeline runs from the search index, newest first. Requires the elasticsearch audit sink.
// @Tags         runs
// @Produce      json
// @Param        startTime  query     string  false  "Start time: ISO 8601, epoch milliseconds or now-<duration> (default: now-24h)"
// @Param        endTime    query     string  false  "End time: ISO 8601, epoch milliseconds or now-<duration> (default: now)"
// @Param        outcome    query     string  false  "Filter by outcome" Enums(success, empty, error)
// @Param        size       query     int     false  "Maximum runs to return (default: 50, max: 1000)" minimum(1) maximum(1000)
// @Success      200        {object}  dto.RunSearchResponse
// @Failure      400        {object}  model.Response "Invalid query parameters"
// @Failure      503        {object}  model.Response "Search sink disabled"
// @Failure      500        {object}  model.Response "Internal server error"
// @Router       /api/v1/kql/runs [get]
func (c *RunController) GetRuns(ctx *gin.Context) {
	startTime, endTime, ok := c.parseRange(ctx)
	if !ok {
		return
	}
	size, err := strconv.Atoi(ctx.DefaultQuery("size", "50"))
	if err != nil || size <= 0 {
		size = 50
	}

	result, err := c.runQueryService.SearchRuns(ctx.Request.Context(), dto.RunSearchRequest{
		StartTime: startTime,
		EndTime:   endTime,
		Outcome:   ctx.Query("outcome"),
		Size:      size,
	})
	if err != nil {
		c.writeError(ctx, err, "Failed to search query runs")
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// GetRunStats godoc
// @Summary      Aggregate recorded query runs
// @Description  Returns run counts and average duration per outcome and time bucket. Requires the timescaledb audit sink.
// @Tags         runs
// @Produce      json
// @Param        startTime  query     string  false  "Start time (default: now-24h)"
// @Param        endTime    query     string  false  "End time (default: now)"
// @Param        interval   query     string  false  "Bucket width (default: 1 hour)" Enums(1 minute, 5 minute, 10 minute, 30 minute, 1 hour, 1 day)
// @Success      200        {object}  dto.RunStatsResponse
// @Failure      400        {object}  model.Response "Invalid query parameters"
// @Failure      503        {object}  model.Response "Time-series sink disabled"
// @Failure      500        {object}  model.Response "Internal server error"
// @Router       /api/v1/kql/runs/stats [get]
func (c *RunController) GetRunStats(ctx *gin.Context) {
	startTime, endTime, ok := c.parseRange(ctx)
	if !ok {
		return
	}

	result, err := c.runQueryService.GetRunStats(ctx.Request.Context(), dto.RunStatsRequest{
		StartTime: startTime,
		EndTime:   endTime,
		Interval:  ctx.Query("interval"),
	})
	if err != nil {
		c.writeError(ctx, err, "Failed to aggregate query runs")
		return
	}
	ctx.JSON(http.StatusOK, result)
}
