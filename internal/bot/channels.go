package bot

import (
	"github.com/bwmarrin/discordgo"

	"github.com/chrisrosenlind/atv-bot/internal/domain"
)

// eligibleChannels lists the guild channels able to host voice/stage events,
// preferring the gateway state cache over a REST round-trip.
func eligibleChannels(s *discordgo.Session, guildID string) []domain.EligibleChannel {
	var channels []*discordgo.Channel
	if g, err := s.State.Guild(guildID); err == nil && len(g.Channels) > 0 {
		channels = g.Channels
	} else if cs, err := s.GuildChannels(guildID); err == nil {
		channels = cs
	}
	return mapEligible(channels)
}

func mapEligible(channels []*discordgo.Channel) []domain.EligibleChannel {
	var out []domain.EligibleChannel
	for _, ch := range channels {
		switch ch.Type {
		case discordgo.ChannelTypeGuildVoice:
			out = append(out, domain.EligibleChannel{ID: ch.ID, Name: ch.Name, Kind: domain.EntityVoice})
		case discordgo.ChannelTypeGuildStageVoice:
			out = append(out, domain.EligibleChannel{ID: ch.ID, Name: ch.Name, Kind: domain.EntityStage})
		}
	}
	return out
}
