package automation

import (
	"sort"
	"strings"
)

type ActionKind string

const (
	ActionSendEmailTemplate ActionKind = "send_email_template"
	ActionSendEmail         ActionKind = "send_email"
	ActionSendConversion    ActionKind = "send_conversion"
	ActionUpdatePipeline    ActionKind = "update_pipeline"
	ActionRouteToTeam       ActionKind = "route_to_team"
	ActionNotifySlack       ActionKind = "notify_slack"
	ActionAddCustomAudience ActionKind = "add_custom_audience"
	ActionSendWebhook       ActionKind = "send_webhook"
	ActionCreateTask        ActionKind = "create_task"
)

// ActionParams is the closed set of typed parameter shapes, one per known
// ActionKind, plus UnknownParams for kinds the registry does not describe.
type ActionParams interface {
	Kind() ActionKind
	toDraft(d *DraftAction)
}

type SendEmailTemplateParams struct {
	TemplateID string      `json:"templateId"`
	To         string      `json:"to,omitempty"`
	Variables  interface{} `json:"variables,omitempty"`
}

type SendEmailParams struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type SendConversionParams struct {
	EventName string `json:"eventName,omitempty"`
}

type UpdatePipelineParams struct {
	Stage string `json:"stage"`
}

type RouteToTeamParams struct {
	TeamID string `json:"teamId"`
}

type NotifySlackParams struct {
	WebhookURL string `json:"webhookUrl"`
	Text       string `json:"text"`
}

type AddCustomAudienceParams struct {
	AdAccountID string   `json:"adAccountId"`
	Emails      []string `json:"emails,omitempty"`
}

type SendWebhookParams struct {
	URL  string      `json:"url"`
	Body interface{} `json:"body,omitempty"`
}

type CreateTaskParams struct {
	Title        string      `json:"title"`
	DueDate      string      `json:"dueDate,omitempty"`
	AssignedTo   string      `json:"assignedTo,omitempty"`
	DelayMinutes *int        `json:"delayMinutes,omitempty"`
	DelaySeconds *int        `json:"delaySeconds,omitempty"`
	Conditions   interface{} `json:"conditions,omitempty"`
}

// UnknownParams carries the raw params of an action kind this build does not
// know about. It is passed through untouched.
type UnknownParams struct {
	Type ActionKind
	Raw  interface{}
}

func (*SendEmailTemplateParams) Kind() ActionKind { return ActionSendEmailTemplate }
func (*SendEmailParams) Kind() ActionKind         { return ActionSendEmail }
func (*SendConversionParams) Kind() ActionKind    { return ActionSendConversion }
func (*UpdatePipelineParams) Kind() ActionKind    { return ActionUpdatePipeline }
func (*RouteToTeamParams) Kind() ActionKind       { return ActionRouteToTeam }
func (*NotifySlackParams) Kind() ActionKind       { return ActionNotifySlack }
func (*AddCustomAudienceParams) Kind() ActionKind { return ActionAddCustomAudience }
func (*SendWebhookParams) Kind() ActionKind       { return ActionSendWebhook }
func (*CreateTaskParams) Kind() ActionKind        { return ActionCreateTask }
func (p *UnknownParams) Kind() ActionKind         { return p.Type }

type actionSpec struct {
	label    string
	icon     string
	required []string
	empty    func() ActionParams
	compile  func(d DraftAction) (ActionParams, error)
	missing  func(p ActionParams) string
}

// ActionType describes a registered action kind for pickers and docs.
type ActionType struct {
	Kind     ActionKind `json:"kind"`
	Label    string     `json:"label"`
	Icon     string     `json:"icon"`
	Required []string   `json:"required"`
}

var registry = map[ActionKind]actionSpec{
	ActionSendEmailTemplate: {
		label:    "Send email template",
		icon:     "mail",
		required: []string{"templateId"},
		empty:    func() ActionParams { return &SendEmailTemplateParams{} },
		compile: func(d DraftAction) (ActionParams, error) {
			vars, err := parseJSONText(d.VariablesText)
			if err != nil {
				return nil, newCompileError(CodeVariablesJSON, ErrVariablesJSON, "variables", err)
			}
			return &SendEmailTemplateParams{
				TemplateID: trim(d.TemplateID),
				To:         trim(d.To),
				Variables:  vars,
			}, nil
		},
		missing: func(p ActionParams) string {
			return firstBlank(p.(*SendEmailTemplateParams).TemplateID, "templateId")
		},
	},
	ActionSendEmail: {
		label:    "Send email",
		icon:     "mail-open",
		required: []string{"to", "subject", "html"},
		empty:    func() ActionParams { return &SendEmailParams{} },
		compile: func(d DraftAction) (ActionParams, error) {
			return &SendEmailParams{
				To:      trim(d.To),
				Subject: trim(d.Subject),
				HTML:    trim(d.HTML),
			}, nil
		},
		missing: func(p ActionParams) string {
			e := p.(*SendEmailParams)
			return firstBlank(e.To, "to", e.Subject, "subject", e.HTML, "html")
		},
	},
	ActionSendConversion: {
		label: "Send conversion",
		icon:  "target",
		empty: func() ActionParams { return &SendConversionParams{} },
		compile: func(d DraftAction) (ActionParams, error) {
			return &SendConversionParams{EventName: trim(d.EventName)}, nil
		},
		missing: func(ActionParams) string { return "" },
	},
	ActionUpdatePipeline: {
		label:    "Update pipeline stage",
		icon:     "git-branch",
		required: []string{"stage"},
		empty:    func() ActionParams { return &UpdatePipelineParams{} },
		compile: func(d DraftAction) (ActionParams, error) {
			return &UpdatePipelineParams{Stage: trim(d.Stage)}, nil
		},
		missing: func(p ActionParams) string {
			return firstBlank(p.(*UpdatePipelineParams).Stage, "stage")
		},
	},
	ActionRouteToTeam: {
		label:    "Route to team",
		icon:     "users",
		required: []string{"teamId"},
		empty:    func() ActionParams { return &RouteToTeamParams{} },
		compile: func(d DraftAction) (ActionParams, error) {
			return &RouteToTeamParams{TeamID: trim(d.TeamID)}, nil
		},
		missing: func(p ActionParams) string {
			return firstBlank(p.(*RouteToTeamParams).TeamID, "teamId")
		},
	},
	ActionNotifySlack: {
		label:    "Notify Slack",
		icon:     "slack",
		required: []string{"webhookUrl", "text"},
		empty:    func() ActionParams { return &NotifySlackParams{} },
		compile: func(d DraftAction) (ActionParams, error) {
			return &NotifySlackParams{
				WebhookURL: trim(d.WebhookURL),
				Text:       trim(d.Text),
			}, nil
		},
		missing: func(p ActionParams) string {
			s := p.(*NotifySlackParams)
			return firstBlank(s.WebhookURL, "webhookUrl", s.Text, "text")
		},
	},
	ActionAddCustomAudience: {
		label:    "Add to custom audience",
		icon:     "user-plus",
		required: []string{"adAccountId"},
		empty:    func() ActionParams { return &AddCustomAudienceParams{} },
		compile: func(d DraftAction) (ActionParams, error) {
			return &AddCustomAudienceParams{
				AdAccountID: trim(d.AdAccountID),
				Emails:      splitList(d.EmailsText),
			}, nil
		},
		missing: func(p ActionParams) string {
			return firstBlank(p.(*AddCustomAudienceParams).AdAccountID, "adAccountId")
		},
	},
	ActionSendWebhook: {
		label:    "Send webhook",
		icon:     "webhook",
		required: []string{"url"},
		empty:    func() ActionParams { return &SendWebhookParams{} },
		compile: func(d DraftAction) (ActionParams, error) {
			body, err := parseJSONText(d.BodyText)
			if err != nil {
				return nil, newCompileError(CodeWebhookBodyJSON, ErrWebhookBodyJSON, "body", err)
			}
			return &SendWebhookParams{URL: trim(d.URL), Body: body}, nil
		},
		missing: func(p ActionParams) string {
			return firstBlank(p.(*SendWebhookParams).URL, "url")
		},
	},
	ActionCreateTask: {
		label:    "Create task",
		icon:     "check-square",
		required: []string{"title"},
		empty:    func() ActionParams { return &CreateTaskParams{} },
		compile: func(d DraftAction) (ActionParams, error) {
			conds, err := parseJSONText(d.ConditionsText)
			if err != nil {
				return nil, newCompileError(CodeTaskConditionsJSON, ErrTaskConditionsJSON, "conditions", err)
			}
			return &CreateTaskParams{
				Title:        trim(d.Title),
				DueDate:      trim(d.DueDate),
				AssignedTo:   trim(d.AssignedTo),
				DelayMinutes: parseLenientInt(d.DelayMinutes),
				DelaySeconds: parseLenientInt(d.DelaySeconds),
				Conditions:   conds,
			}, nil
		},
		missing: func(p ActionParams) string {
			return firstBlank(p.(*CreateTaskParams).Title, "title")
		},
	},
}

func LabelOf(kind ActionKind) string {
	if spec, ok := registry[kind]; ok {
		return spec.label
	}
	if kind == "" {
		return "Unknown action"
	}
	return string(kind)
}

func IconOf(kind ActionKind) string {
	if spec, ok := registry[kind]; ok {
		return spec.icon
	}
	return "zap"
}

func IsKnown(kind ActionKind) bool {
	_, ok := registry[kind]
	return ok
}

// DefaultParamsFor returns a blank parameter set for kind. Unknown kinds get
// an UnknownParams with an empty object so the editor shows "{}".
func DefaultParamsFor(kind ActionKind) ActionParams {
	if spec, ok := registry[kind]; ok {
		return spec.empty()
	}
	return &UnknownParams{Type: kind, Raw: map[string]interface{}{}}
}

func RequiredParams(kind ActionKind) []string {
	spec, ok := registry[kind]
	if !ok {
		return nil
	}
	out := make([]string, len(spec.required))
	copy(out, spec.required)
	return out
}

// ActionTypes lists every registered kind, sorted by kind.
func ActionTypes() []ActionType {
	types := make([]ActionType, 0, len(registry))
	for kind := range registry {
		types = append(types, ActionType{
			Kind:     kind,
			Label:    LabelOf(kind),
			Icon:     IconOf(kind),
			Required: RequiredParams(kind),
		})
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Kind < types[j].Kind })
	return types
}

// firstBlank takes (value, name) pairs and returns the name of the first
// blank value.
func firstBlank(pairs ...string) string {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i]) == "" {
			return pairs[i+1]
		}
	}
	return ""
}
