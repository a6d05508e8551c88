package automation

import (
	"github.com/google/uuid"
)

// RuleDraft is the editable, text-based mirror of an AutomationRule. JSON
// values are held as raw text and numbers as strings until Compile parses
// them.
type RuleDraft struct {
	ID                ID             `json:"id,omitempty"`
	Name              string         `json:"name"`
	Active            bool           `json:"active"`
	TriggerType       string         `json:"triggerType"`
	TriggerParamsText string         `json:"triggerParamsText"`
	Conditions        ConditionDraft `json:"conditions"`
	Actions           []DraftAction  `json:"actions"`
}

type ConditionDraft struct {
	PipelineStageIs              string `json:"pipelineStageIs"`
	FormIDIs                     string `json:"formIdIs"`
	SegmentID                    string `json:"segmentId"`
	NoFormSubmissionSinceMinutes string `json:"noFormSubmissionSinceMinutes"`
	NoActivitySinceMinutes       string `json:"noActivitySinceMinutes"`
}

// DraftAction holds the editable fields of every action kind. Only the fields
// belonging to Type are read by the compiler. LocalID is generated locally and
// is stable across edits; it is never sent to the backend.
type DraftAction struct {
	LocalID string     `json:"localId"`
	Type    ActionKind `json:"type"`

	TemplateID    string `json:"templateId,omitempty"`
	To            string `json:"to,omitempty"`
	VariablesText string `json:"variablesText,omitempty"`

	Subject string `json:"subject,omitempty"`
	HTML    string `json:"html,omitempty"`

	EventName string `json:"eventName,omitempty"`
	Stage     string `json:"stage,omitempty"`
	TeamID    string `json:"teamId,omitempty"`

	WebhookURL string `json:"webhookUrl,omitempty"`
	Text       string `json:"text,omitempty"`

	AdAccountID string `json:"adAccountId,omitempty"`
	EmailsText  string `json:"emailsText,omitempty"`

	URL      string `json:"url,omitempty"`
	BodyText string `json:"bodyText,omitempty"`

	Title          string `json:"title,omitempty"`
	DueDate        string `json:"dueDate,omitempty"`
	AssignedTo     string `json:"assignedTo,omitempty"`
	DelayMinutes   string `json:"delayMinutes,omitempty"`
	DelaySeconds   string `json:"delaySeconds,omitempty"`
	ConditionsText string `json:"conditionsText,omitempty"`

	ParamsText string `json:"paramsText,omitempty"`
}

func newLocalID() string {
	return uuid.New().String()
}

// NewDraft returns the draft for a rule that does not exist yet.
func NewDraft() RuleDraft {
	return RuleDraft{
		Active:  true,
		Actions: []DraftAction{},
	}
}

// NewDraftAction returns a blank action of kind with a fresh local id.
func NewDraftAction(kind ActionKind) DraftAction {
	d := DraftAction{LocalID: newLocalID(), Type: kind}
	DefaultParamsFor(kind).toDraft(&d)
	return d
}

func (d RuleDraft) IndexOf(localID string) int {
	for i := range d.Actions {
		if d.Actions[i].LocalID == localID {
			return i
		}
	}
	return -1
}

func (d RuleDraft) withActions(actions []DraftAction) RuleDraft {
	d.Actions = actions
	return d
}

func (d RuleDraft) cloneActions() []DraftAction {
	out := make([]DraftAction, len(d.Actions))
	copy(out, d.Actions)
	return out
}

// AddAction appends a blank action of kind.
func (d RuleDraft) AddAction(kind ActionKind) RuleDraft {
	actions := make([]DraftAction, len(d.Actions), len(d.Actions)+1)
	copy(actions, d.Actions)
	return d.withActions(append(actions, NewDraftAction(kind)))
}

func (d RuleDraft) RemoveAction(localID string) RuleDraft {
	idx := d.IndexOf(localID)
	if idx < 0 {
		return d
	}
	actions := make([]DraftAction, 0, len(d.Actions)-1)
	actions = append(actions, d.Actions[:idx]...)
	actions = append(actions, d.Actions[idx+1:]...)
	return d.withActions(actions)
}

// MoveAction swaps the action with its neighbour delta positions away
// (-1 is up, +1 is down). Moves past either end are ignored.
func (d RuleDraft) MoveAction(localID string, delta int) RuleDraft {
	from := d.IndexOf(localID)
	to := from + delta
	if from < 0 || delta == 0 || to < 0 || to >= len(d.Actions) {
		return d
	}
	actions := d.cloneActions()
	actions[from], actions[to] = actions[to], actions[from]
	return d.withActions(actions)
}

// SwitchActionType resets the action to a blank parameter set of kind while
// keeping its local id and position.
func (d RuleDraft) SwitchActionType(localID string, kind ActionKind) RuleDraft {
	idx := d.IndexOf(localID)
	if idx < 0 {
		return d
	}
	actions := d.cloneActions()
	fresh := DraftAction{LocalID: localID, Type: kind}
	DefaultParamsFor(kind).toDraft(&fresh)
	actions[idx] = fresh
	return d.withActions(actions)
}

// UpdateAction applies fn to a copy of the action. fn cannot change the local
// id.
func (d RuleDraft) UpdateAction(localID string, fn func(a *DraftAction)) RuleDraft {
	idx := d.IndexOf(localID)
	if idx < 0 || fn == nil {
		return d
	}
	actions := d.cloneActions()
	fn(&actions[idx])
	actions[idx].LocalID = localID
	return d.withActions(actions)
}
