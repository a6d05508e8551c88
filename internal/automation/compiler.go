package automation

import (
	"strconv"
	"strings"
)

// Compile validates a draft and produces the canonical rule. It returns the
// first failure as a *CompileError and performs no I/O. Actions keep the
// exact order of the draft.
func Compile(draft RuleDraft) (*AutomationRule, error) {
	name := trim(draft.Name)
	if name == "" {
		return nil, newCompileError(CodeMissingName, ErrMissingName, "name", nil)
	}

	triggerType := trim(draft.TriggerType)
	if triggerType == "" {
		return nil, newCompileError(CodeMissingTriggerType, ErrMissingTriggerType, "triggerType", nil)
	}

	params, err := parseJSONText(draft.TriggerParamsText)
	if err != nil {
		return nil, newCompileError(CodeTriggerParamsJSON, ErrTriggerParamsJSON, "triggerParams", err)
	}

	actions, err := CompileActions(draft.Actions)
	if err != nil {
		return nil, err
	}
	if len(actions) == 0 {
		return nil, newCompileError(CodeEmptyActions, ErrEmptyActions, "actions", nil)
	}

	return &AutomationRule{
		ID:     draft.ID,
		Name:   name,
		Active: draft.Active,
		Trigger: Trigger{
			Type:       triggerType,
			Params:     params,
			Conditions: CompileConditions(draft.Conditions),
		},
		Actions: actions,
	}, nil
}

// CompileActions compiles drafted actions in order and stops at the first
// action that fails; later actions are not looked at.
func CompileActions(drafts []DraftAction) ([]Action, error) {
	actions := make([]Action, 0, len(drafts))
	for i, d := range drafts {
		action, err := compileAction(d)
		if err != nil {
			if ce, ok := err.(*CompileError); ok {
				ce.Index = i
				ce.LocalID = d.LocalID
			}
			return nil, err
		}
		actions = append(actions, action)
	}
	return actions, nil
}

func compileAction(d DraftAction) (Action, error) {
	spec, ok := registry[d.Type]
	if !ok {
		raw, err := parseJSONText(d.ParamsText)
		if err != nil {
			return Action{}, newCompileError(CodeUnknownActionParamsJSON, ErrUnknownActionParamsJSON, "params", err)
		}
		return Action{Type: d.Type, Params: &UnknownParams{Type: d.Type, Raw: raw}}, nil
	}

	params, err := spec.compile(d)
	if err != nil {
		return Action{}, err
	}
	if field := spec.missing(params); field != "" {
		return Action{}, newCompileError(CodeMissingActionParam, ErrMissingActionParam, field, nil)
	}
	return Action{Type: d.Type, Params: params}, nil
}

// CompileConditions builds the trigger condition map. Blank fields are
// omitted and a map with nothing set compiles to nil, never to an empty map.
// Numeric fields that do not parse become 0.
func CompileConditions(c ConditionDraft) *ConditionMap {
	out := &ConditionMap{
		PipelineStageIs:              trim(c.PipelineStageIs),
		FormIDIs:                     trim(c.FormIDIs),
		SegmentID:                    trim(c.SegmentID),
		NoFormSubmissionSinceMinutes: parseLenientInt(c.NoFormSubmissionSinceMinutes),
		NoActivitySinceMinutes:       parseLenientInt(c.NoActivitySinceMinutes),
	}
	if out.IsEmpty() {
		return nil
	}
	return out
}

// parseJSONText parses editor text as a JSON value. Blank text is null.
func parseJSONText(text string) (interface{}, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	var v interface{}
	if err := decodeValue([]byte(text), &v); err != nil {
		return nil, err
	}
	return v, nil
}

// parseLenientInt returns nil for blank input and 0 for input that is not a
// non-negative integer.
func parseLenientInt(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return intPtr(0)
	}
	return intPtr(n)
}

// splitList splits on newlines and commas, trimming and dropping empties.
func splitList(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ','
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func trim(s string) string {
	return strings.TrimSpace(s)
}
