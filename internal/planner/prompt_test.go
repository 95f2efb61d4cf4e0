package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisrosenlind/atv-bot/internal/domain"
)

func TestBuildInstructions(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Stockholm")
	require.NoError(t, err)

	in := InstructionInput{
		Timezone:        loc,
		Now:             time.Date(2025, 6, 1, 12, 0, 0, 0, loc),
		DefaultDuration: 60 * time.Minute,
		Channels: []domain.EligibleChannel{
			{ID: "111", Name: "General", Kind: domain.EntityVoice},
			{ID: "222", Name: "Town Hall", Kind: domain.EntityStage},
		},
	}

	got := BuildInstructions(in)

	mustContain := []string{
		"ONE at a time",
		"Europe/Stockholm",
		"Sunday, 1 June 2025 12:00",
		`id=111 name="General" kind=VOICE`,
		`id=222 name="Town Hall" kind=STAGE`,
		"60 minutes",
		"propose_event",
	}
	for _, s := range mustContain {
		assert.Contains(t, got, s)
	}
	assert.NotContains(t, got, "Ongoing session state")
}

func TestBuildInstructions_NoChannels(t *testing.T) {
	loc := time.UTC
	got := BuildInstructions(InstructionInput{
		Timezone:        loc,
		Now:             time.Date(2025, 6, 1, 12, 0, 0, 0, loc),
		DefaultDuration: 45 * time.Minute,
	})

	assert.Contains(t, got, "(none)")
	assert.Contains(t, got, "45 minutes")
}

func TestBuildInstructions_SessionGrounding(t *testing.T) {
	loc := time.UTC
	got := BuildInstructions(InstructionInput{
		Timezone:        loc,
		Now:             time.Date(2025, 6, 1, 12, 0, 0, 0, loc),
		DefaultDuration: 60 * time.Minute,
		Session: &domain.Session{
			Mode:     domain.ModeEvent,
			Awaiting: domain.AwaitingWhere,
			Draft: &domain.EventDraft{
				Name:       "Movie night",
				EntityType: domain.EntityVoice,
			},
		},
	})

	assert.Contains(t, got, "mode: event")
	assert.Contains(t, got, "awaiting: where")
	assert.Contains(t, got, `"name":"Movie night"`)
}
