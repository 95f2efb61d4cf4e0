package domain

// EntityType classifies where a scheduled event takes place
type EntityType string

const (
	EntityExternal EntityType = "EXTERNAL"
	EntityVoice    EntityType = "VOICE"
	EntityStage    EntityType = "STAGE"
)

// Valid reports whether e is one of the recognized entity types
func (e EntityType) Valid() bool {
	switch e {
	case EntityExternal, EntityVoice, EntityStage:
		return true
	}
	return false
}

// EventDraft is an in-progress, possibly-incomplete candidate event.
// Optional fields are empty strings when not yet collected; timestamps are
// ISO-8601 strings as produced by the planner.
type EventDraft struct {
	Name               string     `json:"name"`
	Description        string     `json:"description,omitempty"`
	ScheduledStartTime string     `json:"scheduledStartTime"`
	ScheduledEndTime   string     `json:"scheduledEndTime,omitempty"`
	EntityType         EntityType `json:"entityType"`
	Location           string     `json:"location,omitempty"`
	ChannelID          string     `json:"channelId,omitempty"`
}

// EligibleChannel is a guild channel able to host a VOICE or STAGE event
type EligibleChannel struct {
	ID   string     `json:"id"`
	Name string     `json:"name"`
	Kind EntityType `json:"kind"`
}
