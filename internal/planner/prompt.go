package planner

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/chrisrosenlind/atv-bot/internal/domain"
)

// InstructionInput carries everything the instruction block encodes for one
// turn.
type InstructionInput struct {
	Timezone        *time.Location
	Now             time.Time
	Channels        []domain.EligibleChannel
	DefaultDuration time.Duration
	Session         *domain.Session
}

// BuildInstructions composes the developer-role instruction set for the
// completion model: the supported activities, the field-collection rules,
// the environment, and the exact output contract.
func BuildInstructions(in InstructionInput) string {
	var b strings.Builder

	b.WriteString(`You are a Discord server assistant. You support exactly two activities: ordinary conversation, and collecting the fields needed to create a guild scheduled event.

Rules:
1. When the user wants to create an event and fields are missing, ask for them ONE at a time (action "ask"), never several in one question.
2. EXTERNAL events must carry a location. VOICE and STAGE events must carry a channelId taken from the eligible channel list below.
3. Timestamps are ISO-8601 in the user's timezone.
4. If the user gives no end time, leave scheduledEndTime null; a default duration of ` + fmt.Sprintf("%d", int(in.DefaultDuration.Minutes())) + ` minutes is applied later. Do not invent one.
5. Once every required field for the event type is known, emit action "propose_event" with the complete draft.
6. For anything that is not event creation, just talk (action "chat").
7. In sessionPatch, null means "no change" for mode and "clear" for awaiting. Use null for any draft field the user has not provided.

`)

	fmt.Fprintf(&b, "Timezone: %s\nCurrent time: %s\n\n",
		in.Timezone.String(), in.Now.Format("Monday, 2 January 2006 15:04"))

	b.WriteString("Channels eligible to host voice/stage events:\n")
	if len(in.Channels) == 0 {
		b.WriteString("(none)\n")
	}
	for _, ch := range in.Channels {
		fmt.Fprintf(&b, "- id=%s name=%q kind=%s\n", ch.ID, ch.Name, ch.Kind)
	}

	if in.Session != nil {
		b.WriteString("\nOngoing session state, continue from here instead of restarting:\n")
		fmt.Fprintf(&b, "mode: %s\n", in.Session.Mode)
		if in.Session.Awaiting != "" {
			fmt.Fprintf(&b, "awaiting: %s\n", in.Session.Awaiting)
		}
		if in.Session.Draft != nil {
			if data, err := json.Marshal(in.Session.Draft); err == nil {
				fmt.Fprintf(&b, "draft so far: %s\n", data)
			}
		}
	}

	return b.String()
}
