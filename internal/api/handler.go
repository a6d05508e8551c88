package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"leadflow/internal/automation"
	"leadflow/internal/integration"
	"leadflow/internal/logger"
	"leadflow/pkg/errors"
)

// Previewer evaluates trigger conditions against a sample lead.
type Previewer interface {
	PreviewDraft(ctx context.Context, draft automation.ConditionDraft, lead map[string]interface{}) (automation.PreviewResult, error)
}

type BaseHandler struct {
	Logger logger.Logger
}

func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	appErr := toAppError(err)
	status := errors.ToHTTPStatus(appErr)

	if status >= http.StatusInternalServerError {
		h.Logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)
	} else {
		h.Logger.WarnwCtx(c.Request.Context(), "Request rejected", "error", err, "path", c.Request.URL.Path)
	}

	c.JSON(status, errors.ToErrorResponse(appErr))
}

func (h *BaseHandler) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
}

type Handler struct {
	BaseHandler
	Automations  automation.Repository
	Integrations integration.Repository
	Previewer    Previewer
}

func NewHandler(
	automations automation.Repository,
	integrations integration.Repository,
	previewer Previewer,
	log logger.Logger,
) *Handler {
	return &Handler{
		BaseHandler:  BaseHandler{Logger: log},
		Automations:  automations,
		Integrations: integrations,
		Previewer:    previewer,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		v1.GET("/action-types", h.ListActionTypes)

		drafts := v1.Group("/drafts")
		{
			drafts.GET("/new", h.NewDraft)
			drafts.POST("/compile", h.CompileDraft)
			drafts.POST("/decompile", h.DecompileRule)
		}

		automations := v1.Group("/automations")
		{
			automations.GET("", h.ListAutomations)
			automations.POST("", h.CreateAutomation)
			automations.POST("/execute", h.ExecuteAutomations)
			automations.POST("/preview", h.PreviewConditions)
			automations.PUT("/:id", h.SaveAutomation)
			automations.PATCH("/:id", h.UpdateAutomation)
			automations.DELETE("/:id", h.RemoveAutomation)
		}

		integrations := v1.Group("/integrations")
		{
			integrations.GET("", h.ListIntegrations)
			integrations.GET("/:key/status", h.IntegrationStatus)
			integrations.POST("/:key/connect", h.ConnectIntegration)
			integrations.POST("/:key/disconnect", h.DisconnectIntegration)
			integrations.POST("/:key/sync", h.SyncIntegration)
		}
	}
}
