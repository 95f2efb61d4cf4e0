package domain

import (
	"fmt"
	"time"
)

// Mode represents the activity a user is currently engaged in
type Mode string

const (
	ModeChat  Mode = "chat"
	ModeEvent Mode = "event"
)

// Awaiting names the single event field the assistant is blocked on collecting
type Awaiting string

const (
	AwaitingName        Awaiting = "name"
	AwaitingWhere       Awaiting = "where"
	AwaitingDuration    Awaiting = "duration"
	AwaitingDescription Awaiting = "description"
	AwaitingConfirm     Awaiting = "confirm"
)

// Valid reports whether a is one of the recognized slot names
func (a Awaiting) Valid() bool {
	switch a {
	case AwaitingName, AwaitingWhere, AwaitingDuration, AwaitingDescription, AwaitingConfirm:
		return true
	}
	return false
}

// SessionKey identifies one user's conversation within one channel
type SessionKey struct {
	GuildID   string
	ChannelID string
	UserID    string
}

func (k SessionKey) String() string {
	return fmt.Sprintf("%s:%s:%s", k.GuildID, k.ChannelID, k.UserID)
}

// Session holds per-user-per-channel conversation state with expiry
type Session struct {
	Key       SessionKey
	Mode      Mode
	Awaiting  Awaiting // empty when the assistant is not blocked on a field
	Draft     *EventDraft
	ExpiresAt time.Time
}

// PatchOp distinguishes "leave unchanged" from "clear" from "set" when
// applying a partial session update
type PatchOp int

const (
	PatchLeave PatchOp = iota
	PatchClear
	PatchSet
)

// ModePatch is a three-valued update instruction for Session.Mode
type ModePatch struct {
	Op    PatchOp
	Value Mode
}

// AwaitingPatch is a three-valued update instruction for Session.Awaiting
type AwaitingPatch struct {
	Op    PatchOp
	Value Awaiting
}

// SessionPatch is a partial session update. Zero-value fields leave the
// session untouched; Draft replaces the stored draft when non-nil.
type SessionPatch struct {
	Mode     ModePatch
	Awaiting AwaitingPatch
	Draft    *EventDraft
}

// IsZero reports whether the patch carries no instruction at all
func (p SessionPatch) IsZero() bool {
	return p.Mode.Op == PatchLeave && p.Awaiting.Op == PatchLeave && p.Draft == nil
}

// SessionStore defines the interface for session state. Expiry is evaluated
// lazily on read; expired entries are evicted and reported as absent.
type SessionStore interface {
	Get(key SessionKey) (*Session, bool)
	Upsert(key SessionKey, patch SessionPatch) *Session
	Clear(key SessionKey)
}
