package automation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ID
	}{
		{"string", `{"id":"abc"}`, "abc"},
		{"integer", `{"id":42}`, "42"},
		{"null", `{"id":null}`, ""},
		{"missing", `{}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rule AutomationRule
			require.NoError(t, json.Unmarshal([]byte(tt.in), &rule))
			assert.Equal(t, tt.want, rule.ID)
		})
	}
}

func TestAction_UnmarshalJSON_Lenient(t *testing.T) {
	var a Action
	require.NoError(t, json.Unmarshal([]byte(`{"type":"send_email","params":{"to":"x@y.z","subject":7,"html":"<b/>"}}`), &a))

	p, ok := a.Params.(*SendEmailParams)
	require.True(t, ok)
	assert.Equal(t, "x@y.z", p.To)
	assert.Empty(t, p.Subject)
	assert.Equal(t, "<b/>", p.HTML)
}

func TestAction_UnknownPassesThrough(t *testing.T) {
	in := `{"type":"future_thing","params":{"deep":{"list":[1,2,3]},"flag":true}}`

	var a Action
	require.NoError(t, json.Unmarshal([]byte(in), &a))
	_, ok := a.Params.(*UnknownParams)
	require.True(t, ok)

	out, err := json.Marshal(a)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestAction_MissingParamsGetDefaults(t *testing.T) {
	var a Action
	require.NoError(t, json.Unmarshal([]byte(`{"type":"update_pipeline"}`), &a))
	assert.IsType(t, &UpdatePipelineParams{}, a.Params)
}

func TestRulePatch(t *testing.T) {
	name := "Rule"
	blank := " "
	trigger := &Trigger{Type: "lead_created"}
	actions := []Action{{Type: ActionSendConversion, Params: &SendConversionParams{}}}

	tests := []struct {
		name  string
		patch RulePatch
		full  bool
	}{
		{"complete", RulePatch{Name: &name, Trigger: trigger, Actions: actions}, true},
		{"blank name", RulePatch{Name: &blank, Trigger: trigger, Actions: actions}, false},
		{"no trigger type", RulePatch{Name: &name, Trigger: &Trigger{}, Actions: actions}, false},
		{"no actions", RulePatch{Name: &name, Trigger: trigger}, false},
		{"active only", RulePatch{Active: new(bool)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.full, tt.patch.IsFullRule())
		})
	}

	body := RulePatch{Name: &name, Trigger: trigger, Actions: actions}.CreateBody()
	assert.True(t, body.Active)

	out, err := json.Marshal(RulePatch{Active: new(bool)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"active":false}`, string(out))
}

func TestConditionMap_UnmarshalJSON_Lenient(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		minutes *int
		stage   string
		wantNil bool
	}{
		{"integer", `{"no_activity_since_minutes":30}`, intPtr(30), "", false},
		{"numeric string", `{"no_activity_since_minutes":"30"}`, intPtr(30), "", false},
		{"float truncated", `{"no_activity_since_minutes":30.5}`, intPtr(30), "", false},
		{"negative dropped", `{"no_activity_since_minutes":-4,"pipeline_stage_is":"new"}`, nil, "new", false},
		{"object dropped", `{"no_activity_since_minutes":{"x":1},"pipeline_stage_is":"new"}`, nil, "new", false},
		{"numeric stage", `{"pipeline_stage_is":3}`, nil, "3", false},
		{"nothing readable", `{"no_activity_since_minutes":"soon"}`, nil, "", true},
		{"not an object", `"always"`, nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var trigger Trigger
			require.NoError(t, json.Unmarshal([]byte(`{"type":"t","conditions":`+tt.in+`}`), &trigger))
			assert.Equal(t, "t", trigger.Type)
			if tt.wantNil {
				assert.Nil(t, trigger.Conditions)
				return
			}
			require.NotNil(t, trigger.Conditions)
			assert.Equal(t, tt.minutes, trigger.Conditions.NoActivitySinceMinutes)
			assert.Equal(t, tt.stage, trigger.Conditions.PipelineStageIs)
		})
	}
}

func TestAutomationRule_UnmarshalJSON_Lenient(t *testing.T) {
	in := `{"id":7,"name":12,"active":"true","trigger":{"type":5,"params":[1]},` +
		`"actions":[{"type":"update_pipeline","params":{"stage":"won"}},"junk"]}`

	var rule AutomationRule
	require.NoError(t, json.Unmarshal([]byte(in), &rule))
	assert.Equal(t, ID("7"), rule.ID)
	assert.Equal(t, "12", rule.Name)
	assert.True(t, rule.Active)
	assert.Equal(t, "5", rule.Trigger.Type)
	require.Len(t, rule.Actions, 1)
	assert.Equal(t, ActionUpdatePipeline, rule.Actions[0].Type)

	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &rule))
}

func TestDecompile_StringMinutesFromWire(t *testing.T) {
	var rule AutomationRule
	require.NoError(t, json.Unmarshal([]byte(`{"name":"A","trigger":{"type":"t","conditions":{"no_activity_since_minutes":"45"}},"actions":[]}`), &rule))

	draft := Decompile(&rule)
	assert.Equal(t, "45", draft.Conditions.NoActivitySinceMinutes)
}

func TestLargeIntegersSurviveRoundTrip(t *testing.T) {
	wire := `{"id":"1","name":"Big","active":true,` +
		`"trigger":{"type":"t","params":{"accountId":9007199254740993}},` +
		`"actions":[` +
		`{"type":"send_webhook","params":{"url":"https://x.test","body":{"leadId":9007199254740993}}},` +
		`{"type":"send_email_template","params":{"templateId":"t","variables":{"n":12345678901234567890}}},` +
		`{"type":"create_task","params":{"title":"c","conditions":{"max":9007199254740995}}},` +
		`{"type":"future","params":{"big":9007199254740997}}` +
		`]}`

	var rule AutomationRule
	require.NoError(t, json.Unmarshal([]byte(wire), &rule))

	compiled, err := Compile(Decompile(&rule))
	require.NoError(t, err)

	out, err := json.Marshal(compiled)
	require.NoError(t, err)
	assert.JSONEq(t, wire, string(out))
	assert.Contains(t, string(out), "9007199254740993")
	assert.Contains(t, string(out), "12345678901234567890")
}
