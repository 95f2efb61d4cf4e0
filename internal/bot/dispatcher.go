package bot

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/chrisrosenlind/atv-bot/internal/domain"
	"github.com/chrisrosenlind/atv-bot/internal/planner"
)

const (
	genericFailureReply = "Something went wrong on my end. Please try again in a moment."
	throttleReply       = "You're sending messages a bit too fast, give me a minute."
)

// handleMessageCreate runs one planning turn for an addressed guild message.
// A message is addressed when it mentions the bot or when its author already
// has an active session in the channel.
func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}
	if b.guildID != "" && m.GuildID != b.guildID {
		return
	}

	key := domain.SessionKey{GuildID: m.GuildID, ChannelID: m.ChannelID, UserID: m.Author.ID}
	sess, hasSession := b.store.Get(key)
	if !hasSession && !mentionsBot(m, s.State.User.ID) {
		return
	}

	ctx := context.Background()

	if b.limiter != nil {
		allowed, _, _, err := b.limiter.Allow(ctx, key.String())
		if err != nil {
			log.Warn().Err(err).Msg("rate limit check failed, letting the turn through")
		} else if !allowed {
			b.reply(s, m, throttleReply)
			return
		}
	}

	channels := eligibleChannels(s, m.GuildID)
	res, err := b.planner.Plan(ctx, stripBotMention(m.Content, s.State.User.ID), sess, planner.PlanContext{
		Timezone: b.loc,
		Now:      time.Now().In(b.loc),
		Channels: channels,
	})
	if err != nil {
		log.Error().Err(err).Str("key", key.String()).Msg("planner turn failed")
		b.reply(s, m, genericFailureReply)
		return
	}

	switch res.Action {
	case domain.PlanChat:
		if !res.Patch.IsZero() {
			b.store.Upsert(key, res.Patch)
		}
		b.reply(s, m, res.Reply)

	case domain.PlanAsk:
		b.store.Upsert(key, res.Patch)
		b.reply(s, m, res.Question)

	case domain.PlanProposeEvent:
		b.handleProposal(s, m, key, res, channels)
	}
}

// handleProposal validates and defaults a proposed draft, then either asks
// the user to correct it or posts the preview with confirm/cancel buttons.
func (b *Bot) handleProposal(s *discordgo.Session, m *discordgo.MessageCreate, key domain.SessionKey, res *domain.PlanResult, channels []domain.EligibleChannel) {
	draft := b.rules.ResolvePastStart(*res.Draft)
	draft = b.rules.ApplyDefaultEndTime(draft)

	patch := res.Patch
	patch.Draft = &draft

	if err := b.rules.Validate(&draft); err != nil {
		// Keep the draft so the next turn can continue from it
		b.store.Upsert(key, patch)
		b.reply(s, m, err.Error()+" - could you sort that out?")
		return
	}

	patch.Mode = domain.ModePatch{Op: domain.PatchSet, Value: domain.ModeEvent}
	patch.Awaiting = domain.AwaitingPatch{Op: domain.PatchSet, Value: domain.AwaitingConfirm}
	b.store.Upsert(key, patch)

	preview := b.rules.RenderPreview(&draft, channels)
	_, err := s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Content:   preview + "\n\nShall I create it?",
		Reference: m.Reference(),
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{Label: "Confirm", Style: discordgo.SuccessButton, CustomID: confirmCustomID},
					discordgo.Button{Label: "Cancel", Style: discordgo.DangerButton, CustomID: cancelCustomID},
				},
			},
		},
	})
	if err != nil {
		log.Error().Err(err).Str("channel_id", m.ChannelID).Msg("failed to send event preview")
	}
}

func (b *Bot) reply(s *discordgo.Session, m *discordgo.MessageCreate, content string) {
	if _, err := s.ChannelMessageSendReply(m.ChannelID, content, m.Reference()); err != nil {
		log.Error().Err(err).Str("channel_id", m.ChannelID).Msg("failed to send reply")
	}
}

func mentionsBot(m *discordgo.MessageCreate, botID string) bool {
	for _, u := range m.Mentions {
		if u.ID == botID {
			return true
		}
	}
	return false
}

// stripBotMention removes the leading bot mention so the planner sees only
// what the user actually said.
func stripBotMention(content, botID string) string {
	for _, mention := range []string{"<@" + botID + ">", "<@!" + botID + ">"} {
		content = strings.ReplaceAll(content, mention, "")
	}
	return strings.TrimSpace(content)
}
