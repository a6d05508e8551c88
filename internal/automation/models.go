package automation

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
)

// ID is the backend identifier of a rule. Backends disagree on whether ids are
// strings or numbers, so both decode into the same opaque value.
type ID string

// UnmarshalJSON accepts strings and numbers. Any other shape decodes to an
// empty id.
func (id *ID) UnmarshalJSON(data []byte) error {
	*id = ID(looseString(data))
	return nil
}

func (id ID) String() string {
	return string(id)
}

type AutomationRule struct {
	ID      ID       `json:"id,omitempty"`
	Name    string   `json:"name"`
	Active  bool     `json:"active"`
	Trigger Trigger  `json:"trigger"`
	Actions []Action `json:"actions"`
}

type Trigger struct {
	Type       string        `json:"type"`
	Params     interface{}   `json:"params,omitempty"`
	Conditions *ConditionMap `json:"conditions,omitempty"`
}

// ConditionMap narrows when a trigger fires. Blank keys are omitted on the
// wire; a map with no keys set is represented by a nil *ConditionMap.
type ConditionMap struct {
	PipelineStageIs              string `json:"pipeline_stage_is,omitempty"`
	FormIDIs                     string `json:"form_id_is,omitempty"`
	SegmentID                    string `json:"segment_id,omitempty"`
	NoFormSubmissionSinceMinutes *int   `json:"no_form_submission_since_minutes,omitempty"`
	NoActivitySinceMinutes       *int   `json:"no_activity_since_minutes,omitempty"`
}

// UnmarshalJSON decodes a rule field by field. Only a value that is not an
// object fails; mistyped fields degrade to their zero value.
func (r *AutomationRule) UnmarshalJSON(data []byte) error {
	fields := looseFields(data)
	if fields == nil {
		return &json.UnmarshalTypeError{Value: "non-object", Type: reflect.TypeOf(r)}
	}
	*r = AutomationRule{
		ID:     ID(looseString(fields["id"])),
		Name:   looseString(fields["name"]),
		Active: looseBool(fields["active"]),
	}
	if raw, ok := fields["trigger"]; ok {
		_ = r.Trigger.UnmarshalJSON(raw)
	}

	var actions []json.RawMessage
	if err := json.Unmarshal(fields["actions"], &actions); err != nil {
		return nil
	}
	r.Actions = make([]Action, 0, len(actions))
	for _, raw := range actions {
		var a Action
		if err := a.UnmarshalJSON(raw); err != nil {
			continue
		}
		r.Actions = append(r.Actions, a)
	}
	return nil
}

func (t *Trigger) UnmarshalJSON(data []byte) error {
	fields := looseFields(data)
	*t = Trigger{Type: looseString(fields["type"])}

	if raw := bytes.TrimSpace(fields["params"]); len(raw) > 0 {
		var params interface{}
		if err := decodeValue(raw, &params); err == nil {
			t.Params = params
		}
	}
	if raw, ok := fields["conditions"]; ok {
		c := &ConditionMap{}
		if err := c.UnmarshalJSON(raw); err == nil && !c.IsEmpty() {
			t.Conditions = c
		}
	}
	return nil
}

// UnmarshalJSON reads minute thresholds from numbers or numeric strings.
// Values it cannot read are left absent.
func (c *ConditionMap) UnmarshalJSON(data []byte) error {
	fields := looseFields(data)
	*c = ConditionMap{
		PipelineStageIs:              looseString(fields["pipeline_stage_is"]),
		FormIDIs:                     looseString(fields["form_id_is"]),
		SegmentID:                    looseString(fields["segment_id"]),
		NoFormSubmissionSinceMinutes: looseMinutes(fields["no_form_submission_since_minutes"]),
		NoActivitySinceMinutes:       looseMinutes(fields["no_activity_since_minutes"]),
	}
	return nil
}

func (c *ConditionMap) IsEmpty() bool {
	return c == nil ||
		(c.PipelineStageIs == "" && c.FormIDIs == "" && c.SegmentID == "" &&
			c.NoFormSubmissionSinceMinutes == nil && c.NoActivitySinceMinutes == nil)
}

// Action is one unit of work. Params is always non-nil after decoding; its
// concrete type is selected by Type through the action registry.
type Action struct {
	Type   ActionKind
	Params ActionParams
}

func (a Action) MarshalJSON() ([]byte, error) {
	kind := a.Type
	var params interface{} = a.Params
	if u, ok := a.Params.(*UnknownParams); ok {
		params = u.Raw
		if kind == "" {
			kind = u.Type
		}
	} else if a.Params != nil && kind == "" {
		kind = a.Params.Kind()
	}

	wire := struct {
		Type   ActionKind  `json:"type"`
		Params interface{} `json:"params,omitempty"`
	}{Type: kind, Params: params}
	return json.Marshal(wire)
}

func (a *Action) UnmarshalJSON(data []byte) error {
	fields := looseFields(data)
	if fields == nil {
		return &json.UnmarshalTypeError{Value: "non-object", Type: reflect.TypeOf(a)}
	}
	kind := ActionKind(looseString(fields["type"]))
	a.Type = kind
	a.Params = decodeParams(kind, fields["params"])
	return nil
}

func decodeParams(kind ActionKind, raw json.RawMessage) ActionParams {
	if !IsKnown(kind) {
		var v interface{}
		if len(bytes.TrimSpace(raw)) > 0 {
			_ = decodeValue(raw, &v)
		}
		return &UnknownParams{Type: kind, Raw: v}
	}

	params := DefaultParamsFor(kind)
	if len(bytes.TrimSpace(raw)) > 0 {
		// A type mismatch zeroes only the offending field.
		_ = decodeValue(raw, params)
	}
	return params
}

// RulePatch is a partial rule used by update. Nil fields are not sent.
type RulePatch struct {
	Name    *string  `json:"name,omitempty"`
	Active  *bool    `json:"active,omitempty"`
	Trigger *Trigger `json:"trigger,omitempty"`
	Actions []Action `json:"actions,omitempty"`
}

// PatchFromRule builds a full patch carrying every field of rule.
func PatchFromRule(rule AutomationRule) RulePatch {
	name := rule.Name
	active := rule.Active
	trigger := rule.Trigger
	return RulePatch{
		Name:    &name,
		Active:  &active,
		Trigger: &trigger,
		Actions: rule.Actions,
	}
}

// IsFullRule reports whether the patch carries enough to create a rule from
// scratch: a non-empty name, a typed trigger and at least one action.
func (p RulePatch) IsFullRule() bool {
	return p.Name != nil && strings.TrimSpace(*p.Name) != "" &&
		p.Trigger != nil && p.Trigger.Type != "" &&
		len(p.Actions) > 0
}

// CreateBody returns the collection-create body for a full patch.
func (p RulePatch) CreateBody() RuleBody {
	body := RuleBody{
		Name:    *p.Name,
		Trigger: *p.Trigger,
		Actions: p.Actions,
		Active:  true,
	}
	if p.Active != nil {
		body.Active = *p.Active
	}
	return body
}

// RuleBody is the request body accepted by the collection create endpoint.
type RuleBody struct {
	Name    string   `json:"name"`
	Trigger Trigger  `json:"trigger"`
	Actions []Action `json:"actions"`
	Active  bool     `json:"active"`
}

func bodyFromRule(rule AutomationRule) RuleBody {
	return RuleBody{
		Name:    rule.Name,
		Trigger: rule.Trigger,
		Actions: rule.Actions,
		Active:  rule.Active,
	}
}

type ExecuteRequest struct {
	Type    string      `json:"type"`
	LeadID  string      `json:"leadId,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

func intPtr(v int) *int {
	return &v
}

func itoaPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
