package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisrosenlind/atv-bot/internal/domain"
)

func newTestRules(t *testing.T) (*Rules, time.Time) {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Stockholm")
	require.NoError(t, err)

	r := NewRules(loc, 60*time.Minute)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, loc)
	r.now = func() time.Time { return now }
	return r, now
}

func validVoiceDraft() domain.EventDraft {
	return domain.EventDraft{
		Name:               "Voice hangout",
		ScheduledStartTime: "2025-06-02T18:00:00+02:00",
		EntityType:         domain.EntityVoice,
		ChannelID:          "111",
	}
}

func TestValidate(t *testing.T) {
	r, _ := newTestRules(t)

	tests := []struct {
		name    string
		mutate  func(*domain.EventDraft)
		wantErr string
	}{
		{"valid voice draft", func(d *domain.EventDraft) {}, ""},
		{"missing name", func(d *domain.EventDraft) { d.Name = "  " }, "needs a name"},
		{"missing start", func(d *domain.EventDraft) { d.ScheduledStartTime = "" }, "needs a start time"},
		{"missing type", func(d *domain.EventDraft) { d.EntityType = "" }, "needs a type"},
		{"unknown type", func(d *domain.EventDraft) { d.EntityType = "HOLOGRAM" }, "unknown event type"},
		{"unparseable start", func(d *domain.EventDraft) { d.ScheduledStartTime = "tomorrow-ish" }, "start time"},
		{"start in the past", func(d *domain.EventDraft) { d.ScheduledStartTime = "2025-05-31T18:00:00+02:00" }, "must be in the future"},
		{"start inside grace margin", func(d *domain.EventDraft) { d.ScheduledStartTime = "2025-06-01T12:00:30+02:00" }, "must be in the future"},
		{"unparseable end", func(d *domain.EventDraft) { d.ScheduledEndTime = "later" }, "end time"},
		{"end before start", func(d *domain.EventDraft) { d.ScheduledEndTime = "2025-06-02T17:00:00+02:00" }, "after the start"},
		{"end equal to start", func(d *domain.EventDraft) { d.ScheduledEndTime = d.ScheduledStartTime }, "after the start"},
		{"voice without channel", func(d *domain.EventDraft) { d.ChannelID = "" }, "needs a channel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := validVoiceDraft()
			tt.mutate(&draft)

			err := r.Validate(&draft)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidate_ExternalLocation(t *testing.T) {
	r, _ := newTestRules(t)

	draft := domain.EventDraft{
		Name:               "Picnic",
		ScheduledStartTime: "2025-06-02T18:00:00+02:00",
		EntityType:         domain.EntityExternal,
	}
	err := r.Validate(&draft)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs a location")

	// A channel id does not satisfy the location requirement
	draft.ChannelID = "111"
	require.Error(t, r.Validate(&draft))

	draft.Location = "Central Park"
	assert.NoError(t, r.Validate(&draft))
}

func TestValidate_ZonelessTimestamps(t *testing.T) {
	r, _ := newTestRules(t)

	draft := validVoiceDraft()
	draft.ScheduledStartTime = "2025-06-02T18:00:00"
	draft.ScheduledEndTime = "2025-06-02T19:30"
	assert.NoError(t, r.Validate(&draft))
}

func TestApplyDefaultEndTime(t *testing.T) {
	r, _ := newTestRules(t)

	t.Run("fills missing end", func(t *testing.T) {
		draft := validVoiceDraft()
		got := r.ApplyDefaultEndTime(draft)

		require.NotEmpty(t, got.ScheduledEndTime)
		end, err := r.ParseTimestamp(got.ScheduledEndTime)
		require.NoError(t, err)
		start, err := r.ParseTimestamp(got.ScheduledStartTime)
		require.NoError(t, err)
		assert.Equal(t, 60*time.Minute, end.Sub(start))
	})

	t.Run("idempotent", func(t *testing.T) {
		draft := validVoiceDraft()
		once := r.ApplyDefaultEndTime(draft)
		twice := r.ApplyDefaultEndTime(once)
		assert.Equal(t, once, twice)
	})

	t.Run("keeps explicit end", func(t *testing.T) {
		draft := validVoiceDraft()
		draft.ScheduledEndTime = "2025-06-02T21:00:00+02:00"
		got := r.ApplyDefaultEndTime(draft)
		assert.Equal(t, "2025-06-02T21:00:00+02:00", got.ScheduledEndTime)
	})

	t.Run("malformed start left untouched", func(t *testing.T) {
		draft := validVoiceDraft()
		draft.ScheduledStartTime = "not-a-time"
		got := r.ApplyDefaultEndTime(draft)
		assert.Empty(t, got.ScheduledEndTime)
	})
}

func TestValidateAfterDefaultEnd(t *testing.T) {
	r, _ := newTestRules(t)

	draft := r.ApplyDefaultEndTime(validVoiceDraft())
	require.NoError(t, r.Validate(&draft))

	start, err := r.ParseTimestamp(draft.ScheduledStartTime)
	require.NoError(t, err)
	end, err := r.ParseTimestamp(draft.ScheduledEndTime)
	require.NoError(t, err)
	assert.True(t, end.After(start))
}

func TestResolvePastStart(t *testing.T) {
	r, now := newTestRules(t)

	t.Run("bumps a clearly past start one year forward", func(t *testing.T) {
		draft := validVoiceDraft()
		draft.ScheduledStartTime = "2025-03-10T18:00:00+01:00"
		got := r.ResolvePastStart(draft)

		start, err := r.ParseTimestamp(got.ScheduledStartTime)
		require.NoError(t, err)
		assert.Equal(t, 2026, start.Year())
		assert.Equal(t, time.March, start.Month())
	})

	t.Run("leaves a future start alone", func(t *testing.T) {
		draft := validVoiceDraft()
		got := r.ResolvePastStart(draft)
		assert.Equal(t, draft.ScheduledStartTime, got.ScheduledStartTime)
	})

	t.Run("tolerates a start just behind now", func(t *testing.T) {
		draft := validVoiceDraft()
		draft.ScheduledStartTime = now.Add(-2 * time.Minute).Format(time.RFC3339)
		got := r.ResolvePastStart(draft)
		assert.Equal(t, draft.ScheduledStartTime, got.ScheduledStartTime)
	})

	t.Run("unparseable start passes through", func(t *testing.T) {
		draft := validVoiceDraft()
		draft.ScheduledStartTime = "???"
		got := r.ResolvePastStart(draft)
		assert.Equal(t, "???", got.ScheduledStartTime)
	})
}

func TestRenderPreview(t *testing.T) {
	r, _ := newTestRules(t)
	channels := []domain.EligibleChannel{
		{ID: "111", Name: "General", Kind: domain.EntityVoice},
	}

	t.Run("voice event with end time", func(t *testing.T) {
		draft := validVoiceDraft()
		draft.Description = "Casual catch-up"
		draft.ScheduledEndTime = "2025-06-02T19:00:00+02:00"

		got := r.RenderPreview(&draft, channels)
		assert.Contains(t, got, "**Voice hangout**")
		assert.Contains(t, got, "Casual catch-up")
		assert.Contains(t, got, "When: 02-06-2025 18:00 - 02-06-2025 19:00")
		assert.Contains(t, got, "Where: #General (VOICE)")
	})

	t.Run("description omitted when absent", func(t *testing.T) {
		draft := validVoiceDraft()
		got := r.RenderPreview(&draft, channels)
		assert.Equal(t, "**Voice hangout**\nWhen: 02-06-2025 18:00\nWhere: #General (VOICE)", got)
	})

	t.Run("external event shows location", func(t *testing.T) {
		draft := domain.EventDraft{
			Name:               "Picnic",
			ScheduledStartTime: "2025-06-02T18:00:00+02:00",
			EntityType:         domain.EntityExternal,
			Location:           "Central Park",
		}
		got := r.RenderPreview(&draft, nil)
		assert.Contains(t, got, "Where: Central Park")
	})

	t.Run("unknown channel falls back to a mention", func(t *testing.T) {
		draft := validVoiceDraft()
		draft.ChannelID = "999"
		got := r.RenderPreview(&draft, channels)
		assert.Contains(t, got, "Where: <#999> (VOICE)")
	})
}
