package bot

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/chrisrosenlind/atv-bot/internal/domain"
	"github.com/chrisrosenlind/atv-bot/internal/event"
	"github.com/chrisrosenlind/atv-bot/internal/planner"
	"github.com/chrisrosenlind/atv-bot/internal/repository/redis"
)

// Bot wires the Discord gateway to the planning core. It is the only
// component that touches the session store, so all session mutations go
// through one funnel.
type Bot struct {
	dg      *discordgo.Session
	store   domain.SessionStore
	planner *planner.Planner
	rules   *event.Rules
	limiter *redis.RateLimiter // nil when rate limiting is disabled
	loc     *time.Location
	guildID string // empty means every joined guild
}

// New creates the bot and registers its gateway handlers. The session is not
// opened yet; call Start.
func New(
	token, guildID string,
	store domain.SessionStore,
	pl *planner.Planner,
	rules *event.Rules,
	limiter *redis.RateLimiter,
	loc *time.Location,
) (*Bot, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	dg.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMessages |
		discordgo.IntentMessageContent

	b := &Bot{
		dg:      dg,
		store:   store,
		planner: pl,
		rules:   rules,
		limiter: limiter,
		loc:     loc,
		guildID: guildID,
	}

	dg.AddHandler(b.handleReady)
	dg.AddHandler(b.handleMessageCreate)
	dg.AddHandler(b.handleInteractionCreate)

	return b, nil
}

// Start opens the gateway connection
func (b *Bot) Start() error {
	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open discord gateway: %w", err)
	}
	return nil
}

// Stop closes the gateway connection
func (b *Bot) Stop() error {
	return b.dg.Close()
}

// Connected reports whether the gateway handshake has completed
func (b *Bot) Connected() bool {
	return b.dg.State != nil && b.dg.State.User != nil
}

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Info().
		Str("username", r.User.Username).
		Int("guilds", len(r.Guilds)).
		Msg("discord gateway ready")
}
