package planner

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/chrisrosenlind/atv-bot/internal/domain"
	"github.com/chrisrosenlind/atv-bot/internal/llm"
)

// Fallback texts for the degradation paths. Every reachable path must end in
// something the user can read.
const (
	fallbackEmptyResponse = "I didn't get a usable response, could you try that again?"
	fallbackEmptyReply    = "OK."
	fallbackEmptyQuestion = "I wanted to ask you something but lost the thread. What would you like me to clarify?"
	fallbackUnknownAction = "I couldn't quite follow that. Could you rephrase?"
)

// Completer is the injected completion capability. Tests substitute a stub
// returning canned schema-shaped payloads.
type Completer interface {
	GenerateDecision(ctx context.Context, req llm.Request, model string) (*llm.Response, error)
}

// PlanContext supplies the per-turn environment the model needs to ground
// its decision.
type PlanContext struct {
	Timezone *time.Location
	Now      time.Time // already localized
	Channels []domain.EligibleChannel
}

// Planner decides the single next action for a user turn by delegating to a
// schema-constrained completion and reconciling the output with session
// state.
type Planner struct {
	completer       Completer
	model           string
	defaultDuration time.Duration
}

// New creates a planner bound to a completer, model and default event
// duration (quoted to the model so it can leave end times null).
func New(completer Completer, model string, defaultDuration time.Duration) *Planner {
	return &Planner{
		completer:       completer,
		model:           model,
		defaultDuration: defaultDuration,
	}
}

// Plan runs one decision cycle. Completion transport failures propagate to
// the caller; malformed model output degrades to a chat result.
func (p *Planner) Plan(ctx context.Context, userText string, sess *domain.Session, pctx PlanContext) (*domain.PlanResult, error) {
	turnID := uuid.New().String()

	req := llm.Request{
		Instructions: BuildInstructions(InstructionInput{
			Timezone:        pctx.Timezone,
			Now:             pctx.Now,
			Channels:        pctx.Channels,
			DefaultDuration: p.defaultDuration,
			Session:         sess,
		}),
		Input: userText,
	}

	resp, err := p.completer.GenerateDecision(ctx, req, p.model)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("turn_id", turnID).
		Str("model", resp.Model).
		Int("tokens_used", resp.TokensUsed).
		Int64("latency_ms", resp.LatencyMs).
		Msg("planner completion received")

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return &domain.PlanResult{Action: domain.PlanChat, Reply: fallbackEmptyResponse}, nil
	}

	var d decision
	if err := json.Unmarshal([]byte(text), &d); err != nil {
		// Not the schema shape: treat it as the model just wanting to talk
		log.Debug().Str("turn_id", turnID).Err(err).Msg("completion text is not a decision, echoing verbatim")
		return &domain.PlanResult{Action: domain.PlanChat, Reply: text}, nil
	}

	patch := normalizePatch(d.SessionPatch)

	switch d.Action {
	case "chat":
		reply := strings.TrimSpace(deref(d.Reply))
		if reply == "" {
			reply = fallbackEmptyReply
		}
		res := &domain.PlanResult{Action: domain.PlanChat, Reply: reply}
		if !patch.IsZero() {
			res.Patch = patch
		}
		return res, nil

	case "ask":
		question := strings.TrimSpace(deref(d.Question))
		if question == "" {
			// An empty question is not actionable; downgrade to chat
			return &domain.PlanResult{
				Action: domain.PlanChat,
				Reply:  fallbackEmptyQuestion,
				Patch:  patch,
			}, nil
		}
		return &domain.PlanResult{Action: domain.PlanAsk, Question: question, Patch: patch}, nil

	case "propose_event":
		if d.Draft == nil {
			return &domain.PlanResult{Action: domain.PlanChat, Reply: fallbackUnknownAction, Patch: patch}, nil
		}
		return &domain.PlanResult{
			Action: domain.PlanProposeEvent,
			Draft:  mapDraft(d.Draft),
			Patch:  patch,
		}, nil

	default:
		return &domain.PlanResult{Action: domain.PlanChat, Reply: fallbackUnknownAction}, nil
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
