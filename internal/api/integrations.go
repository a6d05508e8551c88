package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type ActionResponse struct {
	Provider string      `json:"provider"`
	Result   interface{} `json:"result"`
}

// ListIntegrations godoc
// @Summary      List provider integrations
// @Tags         integrations
// @Produce      json
// @Success      200  {array}   integration.Integration
// @Failure      502  {object}  errors.ErrorResponse
// @Router       /integrations [get]
func (h *Handler) ListIntegrations(c *gin.Context) {
	list, err := h.Integrations.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) IntegrationStatus(c *gin.Context) {
	status, err := h.Integrations.Status(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *Handler) ConnectIntegration(c *gin.Context) {
	key := c.Param("key")
	out, err := h.Integrations.Connect(c.Request.Context(), key)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, ActionResponse{Provider: key, Result: out})
}

func (h *Handler) DisconnectIntegration(c *gin.Context) {
	key := c.Param("key")
	out, err := h.Integrations.Disconnect(c.Request.Context(), key)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, ActionResponse{Provider: key, Result: out})
}

func (h *Handler) SyncIntegration(c *gin.Context) {
	key := c.Param("key")
	out, err := h.Integrations.Sync(c.Request.Context(), key)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, ActionResponse{Provider: key, Result: out})
}
