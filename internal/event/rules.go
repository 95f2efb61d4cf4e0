package event

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chrisrosenlind/atv-bot/internal/domain"
)

// timestampLayouts are the ISO-8601 shapes the planner is allowed to emit.
// Zone-less timestamps are interpreted in the configured timezone.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

const previewTimeFormat = "02-01-2006 15:04"

// startGrace is the minimum lead time a start must have at validation.
const startGrace = 60 * time.Second

// pastStartSlack is how far in the past a parsed start may sit before the
// ambiguity heuristic assumes the user meant the same date next year.
const pastStartSlack = 5 * time.Minute

// Rules holds the pure validation and defaulting logic applied to an event
// draft before any commit against the platform API.
type Rules struct {
	loc             *time.Location
	defaultDuration time.Duration
	now             func() time.Time
}

// NewRules creates draft rules for a timezone and default event duration.
func NewRules(loc *time.Location, defaultDuration time.Duration) *Rules {
	return &Rules{
		loc:             loc,
		defaultDuration: defaultDuration,
		now:             time.Now,
	}
}

// ParseTimestamp parses an ISO-8601 timestamp in the configured timezone.
func (r *Rules) ParseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, r.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}

// Validate checks a draft for completeness and consistency. It returns the
// first failing rule's error, or nil when the draft is ready to commit.
// The check order is fixed so error messages are deterministic.
func (r *Rules) Validate(d *domain.EventDraft) error {
	if strings.TrimSpace(d.Name) == "" {
		return errors.New("the event needs a name")
	}
	if d.ScheduledStartTime == "" {
		return errors.New("the event needs a start time")
	}
	if d.EntityType == "" {
		return errors.New("the event needs a type (external, voice or stage)")
	}
	if !d.EntityType.Valid() {
		return fmt.Errorf("unknown event type %q", d.EntityType)
	}

	start, err := r.ParseTimestamp(d.ScheduledStartTime)
	if err != nil {
		return fmt.Errorf("I couldn't read the start time: %w", err)
	}
	if start.Sub(r.now()) < startGrace {
		return errors.New("the start time must be in the future")
	}

	if d.ScheduledEndTime != "" {
		end, err := r.ParseTimestamp(d.ScheduledEndTime)
		if err != nil {
			return fmt.Errorf("I couldn't read the end time: %w", err)
		}
		if !end.After(start) {
			return errors.New("the end time must be after the start time")
		}
	}

	if d.EntityType == domain.EntityExternal {
		if strings.TrimSpace(d.Location) == "" {
			return errors.New("an external event needs a location")
		}
	} else if d.ChannelID == "" {
		return errors.New("a voice or stage event needs a channel")
	}

	return nil
}

// ApplyDefaultEndTime fills in the end time as start plus the configured
// default duration when no end time is present. A draft whose start cannot
// be parsed is returned unchanged rather than given a bad end time.
// Idempotent.
func (r *Rules) ApplyDefaultEndTime(d domain.EventDraft) domain.EventDraft {
	if d.ScheduledEndTime != "" {
		return d
	}

	start, err := r.ParseTimestamp(d.ScheduledStartTime)
	if err != nil {
		return d
	}

	d.ScheduledEndTime = start.Add(r.defaultDuration).Format(time.RFC3339)
	return d
}

// ResolvePastStart applies the date-ambiguity heuristic: a start that parses
// but sits more than five minutes in the past is assumed to mean the same
// date next year. Drafts with unparseable or near-present starts pass
// through unchanged.
func (r *Rules) ResolvePastStart(d domain.EventDraft) domain.EventDraft {
	start, err := r.ParseTimestamp(d.ScheduledStartTime)
	if err != nil {
		return d
	}

	if r.now().Sub(start) > pastStartSlack {
		d.ScheduledStartTime = start.AddDate(1, 0, 0).Format(time.RFC3339)
	}
	return d
}

// RenderPreview produces the human-readable confirmation summary for a
// draft: name, optional description, when, and where.
func (r *Rules) RenderPreview(d *domain.EventDraft, channels []domain.EligibleChannel) string {
	var b strings.Builder

	fmt.Fprintf(&b, "**%s**\n", d.Name)
	if d.Description != "" {
		fmt.Fprintf(&b, "%s\n", d.Description)
	}

	fmt.Fprintf(&b, "When: %s", r.formatWhen(d))

	if d.EntityType == domain.EntityExternal {
		fmt.Fprintf(&b, "\nWhere: %s", d.Location)
	} else {
		fmt.Fprintf(&b, "\nWhere: %s (%s)", channelRef(d.ChannelID, channels), d.EntityType)
	}

	return b.String()
}

func (r *Rules) formatWhen(d *domain.EventDraft) string {
	start, err := r.ParseTimestamp(d.ScheduledStartTime)
	if err != nil {
		return d.ScheduledStartTime
	}

	if d.ScheduledEndTime != "" {
		if end, err := r.ParseTimestamp(d.ScheduledEndTime); err == nil {
			return fmt.Sprintf("%s - %s",
				start.In(r.loc).Format(previewTimeFormat),
				end.In(r.loc).Format(previewTimeFormat))
		}
	}
	return start.In(r.loc).Format(previewTimeFormat)
}

func channelRef(channelID string, channels []domain.EligibleChannel) string {
	for _, ch := range channels {
		if ch.ID == channelID {
			return "#" + ch.Name
		}
	}
	return "<#" + channelID + ">"
}
