package automation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_KnownKinds(t *testing.T) {
	kinds := []ActionKind{
		ActionSendEmailTemplate, ActionSendEmail, ActionSendConversion,
		ActionUpdatePipeline, ActionRouteToTeam, ActionNotifySlack,
		ActionAddCustomAudience, ActionSendWebhook, ActionCreateTask,
	}

	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			assert.True(t, IsKnown(kind))
			assert.NotEqual(t, string(kind), LabelOf(kind))
			assert.NotEmpty(t, IconOf(kind))

			params := DefaultParamsFor(kind)
			assert.Equal(t, kind, params.Kind())
		})
	}

	assert.Len(t, ActionTypes(), len(kinds))
}

func TestRegistry_UnknownKind(t *testing.T) {
	assert.False(t, IsKnown("teleport"))
	assert.Equal(t, "teleport", LabelOf("teleport"))
	assert.Equal(t, "Unknown action", LabelOf(""))
	assert.Nil(t, RequiredParams("teleport"))

	params, ok := DefaultParamsFor("teleport").(*UnknownParams)
	assert.True(t, ok)
	assert.Equal(t, ActionKind("teleport"), params.Kind())
	assert.Equal(t, map[string]interface{}{}, params.Raw)
}

func TestRequiredParams(t *testing.T) {
	tests := []struct {
		kind ActionKind
		want []string
	}{
		{ActionSendEmailTemplate, []string{"templateId"}},
		{ActionSendEmail, []string{"to", "subject", "html"}},
		{ActionSendConversion, nil},
		{ActionUpdatePipeline, []string{"stage"}},
		{ActionRouteToTeam, []string{"teamId"}},
		{ActionNotifySlack, []string{"webhookUrl", "text"}},
		{ActionAddCustomAudience, []string{"adAccountId"}},
		{ActionSendWebhook, []string{"url"}},
		{ActionCreateTask, []string{"title"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			got := RequiredParams(tt.kind)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestActionTypes_Sorted(t *testing.T) {
	types := ActionTypes()
	for i := 1; i < len(types); i++ {
		assert.Less(t, string(types[i-1].Kind), string(types[i].Kind))
	}
	for _, at := range types {
		assert.Equal(t, IconOf(at.Kind), at.Icon)
		assert.Equal(t, LabelOf(at.Kind), at.Label)
	}
}

func TestRequiredParams_ReturnsCopy(t *testing.T) {
	got := RequiredParams(ActionSendEmail)
	got[0] = "mutated"
	assert.Equal(t, "to", RequiredParams(ActionSendEmail)[0])
}
