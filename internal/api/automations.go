package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"leadflow/internal/automation"
)

type PreviewRequest struct {
	Conditions automation.ConditionDraft `json:"conditions"`
	Lead       map[string]interface{}    `json:"lead"`
}

type ExecuteResponse struct {
	Result interface{} `json:"result"`
}

// ListActionTypes godoc
// @Summary      List action types
// @Description  Get every registered action kind with its label, icon and required parameters
// @Tags         drafts
// @Produce      json
// @Success      200  {array}  automation.ActionType
// @Router       /action-types [get]
func (h *Handler) ListActionTypes(c *gin.Context) {
	c.JSON(http.StatusOK, automation.ActionTypes())
}

func (h *Handler) NewDraft(c *gin.Context) {
	c.JSON(http.StatusOK, automation.NewDraft())
}

// CompileDraft godoc
// @Summary      Compile a draft
// @Description  Validate a rule draft and return the canonical rule without saving it
// @Tags         drafts
// @Accept       json
// @Produce      json
// @Param        draft  body      automation.RuleDraft  true  "Rule draft"
// @Success      200    {object}  automation.AutomationRule
// @Failure      400    {object}  errors.ErrorResponse
// @Router       /drafts/compile [post]
func (h *Handler) CompileDraft(c *gin.Context) {
	var draft automation.RuleDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		h.badRequest(c, err)
		return
	}

	rule, err := automation.Compile(draft)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

func (h *Handler) DecompileRule(c *gin.Context) {
	var rule automation.AutomationRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		h.badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, automation.Decompile(&rule))
}

// ListAutomations godoc
// @Summary      List automation rules
// @Tags         automations
// @Produce      json
// @Success      200  {array}   automation.AutomationRule
// @Failure      502  {object}  errors.ErrorResponse
// @Router       /automations [get]
func (h *Handler) ListAutomations(c *gin.Context) {
	rules, err := h.Automations.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rules)
}

// CreateAutomation godoc
// @Summary      Create an automation rule from a draft
// @Tags         automations
// @Accept       json
// @Produce      json
// @Param        draft  body      automation.RuleDraft  true  "Rule draft"
// @Success      201    {object}  automation.AutomationRule
// @Failure      400    {object}  errors.ErrorResponse
// @Router       /automations [post]
func (h *Handler) CreateAutomation(c *gin.Context) {
	var draft automation.RuleDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		h.badRequest(c, err)
		return
	}
	draft.ID = ""

	rule, err := h.Automations.Save(c.Request.Context(), draft)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rule)
}

// SaveAutomation compiles the draft and fully updates the rule at :id.
func (h *Handler) SaveAutomation(c *gin.Context) {
	var draft automation.RuleDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		h.badRequest(c, err)
		return
	}
	draft.ID = automation.ID(c.Param("id"))

	rule, err := h.Automations.Save(c.Request.Context(), draft)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

// UpdateAutomation godoc
// @Summary      Partially update an automation rule
// @Tags         automations
// @Accept       json
// @Produce      json
// @Param        id     path      string                true  "Rule ID"
// @Param        patch  body      automation.RulePatch  true  "Fields to change"
// @Success      200    {object}  automation.AutomationRule
// @Failure      404    {object}  errors.ErrorResponse
// @Router       /automations/{id} [patch]
func (h *Handler) UpdateAutomation(c *gin.Context) {
	var patch automation.RulePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.badRequest(c, err)
		return
	}

	rule, err := h.Automations.Update(c.Request.Context(), automation.ID(c.Param("id")), patch)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

func (h *Handler) RemoveAutomation(c *gin.Context) {
	if err := h.Automations.Remove(c.Request.Context(), automation.ID(c.Param("id"))); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExecuteAutomations godoc
// @Summary      Manually fire rules for a trigger type
// @Tags         automations
// @Accept       json
// @Produce      json
// @Param        request  body      automation.ExecuteRequest  true  "Trigger to fire"
// @Success      200      {object}  ExecuteResponse
// @Router       /automations/execute [post]
func (h *Handler) ExecuteAutomations(c *gin.Context) {
	var req automation.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	if req.Type == "" {
		h.HandleError(c, errMissingTriggerType)
		return
	}

	out, err := h.Automations.Execute(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, ExecuteResponse{Result: out})
}

func (h *Handler) PreviewConditions(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	res, err := h.Previewer.PreviewDraft(c.Request.Context(), req.Conditions, req.Lead)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
