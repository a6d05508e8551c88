package automation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func localIDs(d RuleDraft) []string {
	ids := make([]string, len(d.Actions))
	for i, a := range d.Actions {
		ids[i] = a.LocalID
	}
	return ids
}

func threeActionDraft() RuleDraft {
	return NewDraft().
		AddAction(ActionSendEmail).
		AddAction(ActionUpdatePipeline).
		AddAction(ActionCreateTask)
}

func TestNewDraft(t *testing.T) {
	d := NewDraft()
	assert.True(t, d.Active)
	assert.NotNil(t, d.Actions)
	assert.Empty(t, d.Actions)
}

func TestAddAction_DoesNotAliasOriginal(t *testing.T) {
	base := NewDraft().AddAction(ActionSendEmail)
	a := base.AddAction(ActionRouteToTeam)
	b := base.AddAction(ActionNotifySlack)

	require.Len(t, base.Actions, 1)
	assert.Equal(t, ActionRouteToTeam, a.Actions[1].Type)
	assert.Equal(t, ActionNotifySlack, b.Actions[1].Type)
	assert.NotEqual(t, a.Actions[1].LocalID, b.Actions[1].LocalID)
}

func TestMoveAction(t *testing.T) {
	d := threeActionDraft()
	ids := localIDs(d)

	tests := []struct {
		name  string
		id    string
		delta int
		want  []string
	}{
		{"move middle up", ids[1], -1, []string{ids[1], ids[0], ids[2]}},
		{"move middle down", ids[1], 1, []string{ids[0], ids[2], ids[1]}},
		{"first up is ignored", ids[0], -1, ids},
		{"last down is ignored", ids[2], 1, ids},
		{"unknown id is ignored", "nope", 1, ids},
		{"zero delta is ignored", ids[0], 0, ids},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			moved := d.MoveAction(tt.id, tt.delta)
			assert.Equal(t, tt.want, localIDs(moved))
			assert.Equal(t, ids, localIDs(d))
		})
	}
}

func TestRemoveAction(t *testing.T) {
	d := threeActionDraft()
	ids := localIDs(d)

	removed := d.RemoveAction(ids[1])
	assert.Equal(t, []string{ids[0], ids[2]}, localIDs(removed))
	assert.Equal(t, ids, localIDs(d))

	assert.Equal(t, ids, localIDs(d.RemoveAction("missing")))
}

func TestSwitchActionType(t *testing.T) {
	d := threeActionDraft()
	id := d.Actions[0].LocalID
	d = d.UpdateAction(id, func(a *DraftAction) {
		a.To = "x@y.z"
		a.Subject = "hello"
	})

	switched := d.SwitchActionType(id, "mystery")
	a := switched.Actions[0]

	assert.Equal(t, id, a.LocalID)
	assert.Equal(t, ActionKind("mystery"), a.Type)
	assert.Empty(t, a.To)
	assert.Empty(t, a.Subject)
	assert.Equal(t, "{}", a.ParamsText)
	assert.Equal(t, "x@y.z", d.Actions[0].To)
}

func TestUpdateAction_KeepsLocalID(t *testing.T) {
	d := threeActionDraft()
	id := d.Actions[2].LocalID

	updated := d.UpdateAction(id, func(a *DraftAction) {
		a.LocalID = "hijacked"
		a.Title = "Call back"
	})

	assert.Equal(t, id, updated.Actions[2].LocalID)
	assert.Equal(t, "Call back", updated.Actions[2].Title)
	assert.Empty(t, d.Actions[2].Title)
	assert.Equal(t, 2, updated.IndexOf(id))
}
