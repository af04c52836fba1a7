package controller

import (
	"net/http"

	"kql-assistant-backend/internal/dto"
	"kql-assistant-backend/internal/model"
	"kql-assistant-backend/internal/observability"
	"kql-assistant-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	MsgMissingNLQuery = "Please pass a nlquery parameter in the query string or in the request body."
	MsgNoResult       = "An error occurred while executing the Kusto query."
	errorPrefix       = "An error occurred: "
)

type KQLController struct {
	kqlService service.KQLService
}

func NewKQLController(kqlService service.KQLService) *KQLController {
	return &KQLController{
		kqlService: kqlService,
	}
}

func RegisterKQLRoutes(router *gin.Engine, controller *KQLController) {
	v1 := router.Group("/api/v1/kql")
	{
		v1.GET("/query", controller.HandleTrigger)
		v1.POST("/query", controller.HandleTrigger)
	}
	// Legacy function-app path kept for existing callers.
	router.GET("/api/HttpTrigger", controller.HandleTrigger)
	router.POST("/api/HttpTrigger", controller.HandleTrigger)
}

// HandleTrigger godoc
// @Summary      Answer a natural-language question with a generated KQL query
// @Description  Builds a prompt from nlquery, asks the completion service for one KQL query, executes it verbatim against the configured Kusto cluster/database and returns the generated query with the primary result rows. The generated query is not validated before execution.
// @Tags         kql
// @Accept       json
// @Produce      json
// @Param        nlquery  query     string              false  "Natural-language question (query string takes precedence over body)"
// @Param        request  body      dto.KQLTriggerBody  false  "Natural-language question"
// @Success      200      {object}  dto.KQLTriggerResponse
// @Failure      400      {string}  string  "Missing nlquery"
// @Failure      500      {string}  string  "Generation, execution or empty-result failure"
// @Router       /api/v1/kql/query [get]
// @Router       /api/v1/kql/query [post]
func (c *KQLController) HandleTrigger(ctx *gin.Context) {
	log.Info().Str("request_id", observability.RequestIDFromContext(ctx.Request.Context())).Msg("KQL trigger processed a request")

	nlquery := ctx.Query("nlquery")
	if nlquery == "" && ctx.Request.ContentLength != 0 {
		var body dto.KQLTriggerBody
		if err := ctx.ShouldBind(&body); err != nil {
			log.Debug().Err(err).Msg("Could not bind KQL trigger body")
		}
		nlquery = body.NLQuery
	}
	if nlquery == "" {
		ctx.String(http.StatusBadRequest, MsgMissingNLQuery)
		return
	}

	answer, err := c.kqlService.Answer(ctx.Request.Context(), dto.KQLQueryRequest{
		Question: nlquery,
		Source:   model.RunSourceHTTP,
		RunID:    observability.RequestIDFromContext(ctx.Request.Context()),
	})
	if err != nil {
		log.Error().Err(err).Str("nlquery", nlquery).Msg("An error occurred while answering KQL question")
		ctx.String(http.StatusInternalServerError, errorPrefix+err.Error())
		return
	}

	if answer.Table == nil {
		ctx.String(http.StatusInternalServerError, MsgNoResult)
		return
	}

	ctx.JSON(http.StatusOK, dto.KQLTriggerResponse{
		KQLQuery:    answer.Query,
		KustoResult: answer.Table.Records(),
	})
}
