package automation

import (
	"encoding/json"
	"strings"
)

// Decompile turns a canonical rule into an editable draft. A nil rule yields
// the draft for a new rule. Decompile never fails: anything it cannot render
// becomes an empty field.
func Decompile(rule *AutomationRule) RuleDraft {
	if rule == nil {
		return NewDraft()
	}

	draft := RuleDraft{
		ID:                rule.ID,
		Name:              rule.Name,
		Active:            rule.Active,
		TriggerType:       rule.Trigger.Type,
		TriggerParamsText: prettyJSON(rule.Trigger.Params),
		Conditions:        decompileConditions(rule.Trigger.Conditions),
		Actions:           make([]DraftAction, 0, len(rule.Actions)),
	}

	for _, action := range rule.Actions {
		draft.Actions = append(draft.Actions, decompileAction(action))
	}
	return draft
}

func decompileConditions(c *ConditionMap) ConditionDraft {
	if c == nil {
		return ConditionDraft{}
	}
	return ConditionDraft{
		PipelineStageIs:              c.PipelineStageIs,
		FormIDIs:                     c.FormIDIs,
		SegmentID:                    c.SegmentID,
		NoFormSubmissionSinceMinutes: itoaPtr(c.NoFormSubmissionSinceMinutes),
		NoActivitySinceMinutes:       itoaPtr(c.NoActivitySinceMinutes),
	}
}

func decompileAction(action Action) DraftAction {
	kind := action.Type
	params := action.Params
	if params == nil {
		params = DefaultParamsFor(kind)
	}
	if kind == "" {
		kind = params.Kind()
	}

	d := DraftAction{LocalID: newLocalID(), Type: kind}
	params.toDraft(&d)
	return d
}

// prettyJSON renders v as indented JSON, or "" for nil and unencodable values.
func prettyJSON(v interface{}) string {
	if v == nil {
		return ""
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(out)
}

func (p *SendEmailTemplateParams) toDraft(d *DraftAction) {
	d.TemplateID = p.TemplateID
	d.To = p.To
	d.VariablesText = prettyJSON(p.Variables)
}

func (p *SendEmailParams) toDraft(d *DraftAction) {
	d.To = p.To
	d.Subject = p.Subject
	d.HTML = p.HTML
}

func (p *SendConversionParams) toDraft(d *DraftAction) {
	d.EventName = p.EventName
}

func (p *UpdatePipelineParams) toDraft(d *DraftAction) {
	d.Stage = p.Stage
}

func (p *RouteToTeamParams) toDraft(d *DraftAction) {
	d.TeamID = p.TeamID
}

func (p *NotifySlackParams) toDraft(d *DraftAction) {
	d.WebhookURL = p.WebhookURL
	d.Text = p.Text
}

func (p *AddCustomAudienceParams) toDraft(d *DraftAction) {
	d.AdAccountID = p.AdAccountID
	d.EmailsText = strings.Join(p.Emails, "\n")
}

func (p *SendWebhookParams) toDraft(d *DraftAction) {
	d.URL = p.URL
	d.BodyText = prettyJSON(p.Body)
}

func (p *CreateTaskParams) toDraft(d *DraftAction) {
	d.Title = p.Title
	d.DueDate = p.DueDate
	d.AssignedTo = p.AssignedTo
	d.DelayMinutes = itoaPtr(p.DelayMinutes)
	d.DelaySeconds = itoaPtr(p.DelaySeconds)
	d.ConditionsText = prettyJSON(p.Conditions)
}

func (p *UnknownParams) toDraft(d *DraftAction) {
	d.ParamsText = prettyJSON(p.Raw)
}
