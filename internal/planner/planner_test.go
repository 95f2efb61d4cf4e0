package planner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisrosenlind/atv-bot/internal/domain"
	"github.com/chrisrosenlind/atv-bot/internal/llm"
)

// stubCompleter returns a canned schema-shaped payload instead of calling a
// live service.
type stubCompleter struct {
	text    string
	err     error
	lastReq llm.Request
}

func (s *stubCompleter) GenerateDecision(_ context.Context, req llm.Request, model string) (*llm.Response, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &llm.Response{Text: s.text, Model: model}, nil
}

func testPlanContext() PlanContext {
	loc, _ := time.LoadLocation("Europe/Stockholm")
	return PlanContext{
		Timezone: loc,
		Now:      time.Date(2025, 6, 1, 12, 0, 0, 0, loc),
		Channels: []domain.EligibleChannel{
			{ID: "111", Name: "General", Kind: domain.EntityVoice},
		},
	}
}

func plan(t *testing.T, text string, sess *domain.Session) *domain.PlanResult {
	t.Helper()
	p := New(&stubCompleter{text: text}, "test-model", 60*time.Minute)
	res, err := p.Plan(context.Background(), "whatever", sess, testPlanContext())
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func TestPlan_VoiceEventProposal(t *testing.T) {
	// Scenario: "let's do a voice hangout tomorrow at 6pm in the General
	// channel" with one eligible VOICE channel
	res := plan(t, `{
		"action": "propose_event",
		"reply": null,
		"question": null,
		"draft": {
			"name": "Voice hangout",
			"description": null,
			"scheduledStartTime": "2025-06-02T18:00:00+02:00",
			"scheduledEndTime": null,
			"entityType": "VOICE",
			"location": null,
			"channelId": "111"
		},
		"sessionPatch": {"mode": "event", "awaiting": "confirm"}
	}`, nil)

	assert.Equal(t, domain.PlanProposeEvent, res.Action)
	require.NotNil(t, res.Draft)
	assert.Equal(t, domain.EntityVoice, res.Draft.EntityType)
	assert.Equal(t, "111", res.Draft.ChannelID)
	assert.Empty(t, res.Draft.ScheduledEndTime, "a null end time must stay absent")
	assert.Empty(t, res.Draft.Description, "a null description must stay absent")
	assert.Equal(t, domain.PatchSet, res.Patch.Mode.Op)
	assert.Equal(t, domain.ModeEvent, res.Patch.Mode.Value)
	assert.Equal(t, domain.AwaitingConfirm, res.Patch.Awaiting.Value)
}

func TestPlan_PlainChat(t *testing.T) {
	// Scenario: "hi there" with no prior session
	res := plan(t, `{
		"action": "chat",
		"reply": "Hey! How is it going?",
		"question": null,
		"draft": null,
		"sessionPatch": {"mode": null, "awaiting": null}
	}`, nil)

	assert.Equal(t, domain.PlanChat, res.Action)
	assert.Equal(t, "Hey! How is it going?", res.Reply)
	assert.Equal(t, domain.PatchLeave, res.Patch.Mode.Op, "chat must not force a mode change")
}

func TestPlan_ChatCarriesMeaningfulPatch(t *testing.T) {
	res := plan(t, `{
		"action": "chat",
		"reply": "Sure, let's plan it.",
		"question": null,
		"draft": null,
		"sessionPatch": {"mode": "event", "awaiting": "name"}
	}`, nil)

	assert.Equal(t, domain.PlanChat, res.Action)
	assert.Equal(t, domain.PatchSet, res.Patch.Mode.Op)
	assert.Equal(t, domain.AwaitingName, res.Patch.Awaiting.Value)
}

func TestPlan_AskEmptyQuestionDowngradesToChat(t *testing.T) {
	res := plan(t, `{
		"action": "ask",
		"reply": null,
		"question": "   ",
		"draft": null,
		"sessionPatch": {"mode": "event", "awaiting": "duration"}
	}`, nil)

	assert.Equal(t, domain.PlanChat, res.Action)
	assert.Equal(t, fallbackEmptyQuestion, res.Reply)
	assert.Empty(t, res.Question)
	// The patch still rides along on the downgrade
	assert.Equal(t, domain.AwaitingDuration, res.Patch.Awaiting.Value)
}

func TestPlan_Ask(t *testing.T) {
	res := plan(t, `{
		"action": "ask",
		"reply": null,
		"question": "Where should the event take place?",
		"draft": null,
		"sessionPatch": {"mode": "event", "awaiting": "where"}
	}`, nil)

	assert.Equal(t, domain.PlanAsk, res.Action)
	assert.Equal(t, "Where should the event take place?", res.Question)
	assert.Equal(t, domain.AwaitingWhere, res.Patch.Awaiting.Value)
}

func TestPlan_EmptyReplyFallsBack(t *testing.T) {
	res := plan(t, `{
		"action": "chat",
		"reply": "  ",
		"question": null,
		"draft": null,
		"sessionPatch": {"mode": null, "awaiting": null}
	}`, nil)

	assert.Equal(t, fallbackEmptyReply, res.Reply)
}

func TestPlan_EmptyCompletionText(t *testing.T) {
	res := plan(t, "   ", nil)

	assert.Equal(t, domain.PlanChat, res.Action)
	assert.Equal(t, fallbackEmptyResponse, res.Reply)
}

func TestPlan_NonJSONTextEchoedVerbatim(t *testing.T) {
	res := plan(t, "Sounds fun! When were you thinking?", nil)

	assert.Equal(t, domain.PlanChat, res.Action)
	assert.Equal(t, "Sounds fun! When were you thinking?", res.Reply)
}

func TestPlan_UnknownActionFallsBack(t *testing.T) {
	res := plan(t, `{
		"action": "summon",
		"reply": null,
		"question": null,
		"draft": null,
		"sessionPatch": {"mode": null, "awaiting": null}
	}`, nil)

	assert.Equal(t, domain.PlanChat, res.Action)
	assert.Equal(t, fallbackUnknownAction, res.Reply)
}

func TestPlan_ProposeWithoutDraftFallsBack(t *testing.T) {
	res := plan(t, `{
		"action": "propose_event",
		"reply": null,
		"question": null,
		"draft": null,
		"sessionPatch": {"mode": null, "awaiting": null}
	}`, nil)

	assert.Equal(t, domain.PlanChat, res.Action)
	assert.Equal(t, fallbackUnknownAction, res.Reply)
}

func TestPlan_CompletionErrorPropagates(t *testing.T) {
	wantErr := errors.New("upstream unavailable")
	p := New(&stubCompleter{err: wantErr}, "test-model", 60*time.Minute)

	res, err := p.Plan(context.Background(), "hi", nil, testPlanContext())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, wantErr)
}

func TestPlan_SessionGroundingReachesTheModel(t *testing.T) {
	stub := &stubCompleter{text: `{"action":"chat","reply":"ok","question":null,"draft":null,"sessionPatch":{"mode":null,"awaiting":null}}`}
	p := New(stub, "test-model", 60*time.Minute)

	sess := &domain.Session{
		Key:      domain.SessionKey{GuildID: "g", ChannelID: "c", UserID: "u"},
		Mode:     domain.ModeEvent,
		Awaiting: domain.AwaitingDuration,
		Draft:    &domain.EventDraft{Name: "Movie night", EntityType: domain.EntityVoice},
	}

	_, err := p.Plan(context.Background(), "about an hour", sess, testPlanContext())
	require.NoError(t, err)

	assert.Contains(t, stub.lastReq.Instructions, "awaiting: duration")
	assert.Contains(t, stub.lastReq.Instructions, "Movie night")
	assert.Equal(t, "about an hour", stub.lastReq.Input)
}
