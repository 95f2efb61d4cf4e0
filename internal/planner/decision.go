package planner

import (
	"encoding/json"
	"strings"

	"github.com/chrisrosenlind/atv-bot/internal/domain"
)

// decision is the loosely-typed wire shape of one completion. Strict-mode
// providers always emit every key; the types here also tolerate providers
// that drop keys instead of sending null.
type decision struct {
	Action       string         `json:"action"`
	Reply        *string        `json:"reply"`
	Question     *string        `json:"question"`
	Draft        *decisionDraft `json:"draft"`
	SessionPatch decisionPatch  `json:"sessionPatch"`
}

type decisionDraft struct {
	Name               string  `json:"name"`
	Description        *string `json:"description"`
	ScheduledStartTime string  `json:"scheduledStartTime"`
	ScheduledEndTime   *string `json:"scheduledEndTime"`
	EntityType         string  `json:"entityType"`
	Location           *string `json:"location"`
	ChannelID          *string `json:"channelId"`
}

// decisionPatch keeps awaiting as raw JSON because an explicit null and an
// absent key mean different things there (clear versus leave unchanged).
type decisionPatch struct {
	Mode     *string         `json:"mode"`
	Awaiting json.RawMessage `json:"awaiting"`
}

// normalizePatch turns the model's loosely-typed patch into instructions.
// Only actual instructions survive: unrecognized values collapse to
// leave-unchanged, and null (or the string "null") on awaiting is an
// explicit clear.
func normalizePatch(p decisionPatch) domain.SessionPatch {
	var out domain.SessionPatch

	if p.Mode != nil {
		switch domain.Mode(*p.Mode) {
		case domain.ModeChat, domain.ModeEvent:
			out.Mode = domain.ModePatch{Op: domain.PatchSet, Value: domain.Mode(*p.Mode)}
		}
	}

	if len(p.Awaiting) > 0 {
		if string(p.Awaiting) == "null" {
			out.Awaiting = domain.AwaitingPatch{Op: domain.PatchClear}
		} else {
			var s string
			if err := json.Unmarshal(p.Awaiting, &s); err == nil {
				switch {
				case s == "null":
					out.Awaiting = domain.AwaitingPatch{Op: domain.PatchClear}
				case domain.Awaiting(s).Valid():
					out.Awaiting = domain.AwaitingPatch{Op: domain.PatchSet, Value: domain.Awaiting(s)}
				}
			}
		}
	}

	return out
}

// mapDraft maps a decoded draft into the domain shape. Name and start time
// are coerced to trimmed strings; optional fields are carried only when the
// model produced a non-empty value, so a null never becomes a stored empty
// string.
func mapDraft(d *decisionDraft) *domain.EventDraft {
	draft := &domain.EventDraft{
		Name:               strings.TrimSpace(d.Name),
		ScheduledStartTime: strings.TrimSpace(d.ScheduledStartTime),
		EntityType:         domain.EntityType(d.EntityType),
	}

	if v := deref(d.Description); v != "" {
		draft.Description = v
	}
	if v := deref(d.ScheduledEndTime); v != "" {
		draft.ScheduledEndTime = v
	}
	if v := deref(d.Location); v != "" {
		draft.Location = v
	}
	if v := deref(d.ChannelID); v != "" {
		draft.ChannelID = v
	}

	return draft
}
