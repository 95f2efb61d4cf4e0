package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/chrisrosenlind/atv-bot/internal/domain"
)

const (
	confirmCustomID = "event_confirm"
	cancelCustomID  = "event_cancel"

	expiredReply = "I lost track of that event (the session expired). Mind starting over?"
)

// handleInteractionCreate commits or cancels a previewed draft when the
// confirm/cancel buttons are pressed. Only the user who owns the session can
// act on it; anyone else simply has no session under their key.
func (b *Bot) handleInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	customID := i.MessageComponentData().CustomID
	if customID != confirmCustomID && customID != cancelCustomID {
		return
	}

	user := i.User
	if i.Member != nil {
		user = i.Member.User
	}
	if user == nil {
		return
	}
	key := domain.SessionKey{GuildID: i.GuildID, ChannelID: i.ChannelID, UserID: user.ID}

	if customID == cancelCustomID {
		b.store.Clear(key)
		b.updateInteraction(s, i, "Event cancelled.")
		return
	}

	sess, ok := b.store.Get(key)
	if !ok || sess.Draft == nil {
		b.updateInteraction(s, i, expiredReply)
		return
	}

	draft := *sess.Draft
	if err := b.rules.Validate(&draft); err != nil {
		// The draft can go stale between preview and confirm (start time
		// slipping into the past)
		b.updateInteraction(s, i, err.Error()+" - let's try again.")
		return
	}

	ev, err := b.createScheduledEvent(s, i.GuildID, &draft)
	if err != nil {
		log.Error().Err(err).Str("key", key.String()).Msg("failed to create scheduled event")
		b.updateInteraction(s, i, genericFailureReply)
		return
	}

	b.store.Clear(key)
	b.updateInteraction(s, i, fmt.Sprintf("Done! %q is on the calendar.", ev.Name))
}

func (b *Bot) createScheduledEvent(s *discordgo.Session, guildID string, draft *domain.EventDraft) (*discordgo.GuildScheduledEvent, error) {
	start, err := b.rules.ParseTimestamp(draft.ScheduledStartTime)
	if err != nil {
		return nil, fmt.Errorf("bad start time: %w", err)
	}

	params := &discordgo.GuildScheduledEventParams{
		Name:               draft.Name,
		Description:        draft.Description,
		ScheduledStartTime: &start,
		PrivacyLevel:       discordgo.GuildScheduledEventPrivacyLevelGuildOnly,
	}

	if draft.ScheduledEndTime != "" {
		end, err := b.rules.ParseTimestamp(draft.ScheduledEndTime)
		if err != nil {
			return nil, fmt.Errorf("bad end time: %w", err)
		}
		params.ScheduledEndTime = &end
	}

	switch draft.EntityType {
	case domain.EntityExternal:
		params.EntityType = discordgo.GuildScheduledEventEntityTypeExternal
		params.EntityMetadata = &discordgo.GuildScheduledEventEntityMetadata{Location: draft.Location}
	case domain.EntityVoice:
		params.EntityType = discordgo.GuildScheduledEventEntityTypeVoice
		params.ChannelID = draft.ChannelID
	case domain.EntityStage:
		params.EntityType = discordgo.GuildScheduledEventEntityTypeStageInstance
		params.ChannelID = draft.ChannelID
	}

	return s.GuildScheduledEventCreate(guildID, params)
}

// updateInteraction replaces the preview message content and removes the
// buttons so a committed or cancelled draft cannot be acted on twice.
func (b *Bot) updateInteraction(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Components: []discordgo.MessageComponent{},
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to respond to interaction")
	}
}
