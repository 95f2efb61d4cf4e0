package llm

import "context"

// Request contains one schema-constrained planning completion.
// Instructions carry the developer-role rule set, Input the raw user text
// to be interpreted.
type Request struct {
	Instructions string
	Input        string
}

// Response contains the raw completion result. Text is expected to be the
// JSON shape of DecisionSchema, but callers must tolerate anything.
type Response struct {
	Text       string
	Model      string
	TokensUsed int
	LatencyMs  int64
}

// Provider defines the interface for completion providers
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// AvailableModels returns list of supported models
	AvailableModels() []string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// GenerateDecision runs one completion constrained to DecisionSchema
	GenerateDecision(ctx context.Context, req Request, model string) (*Response, error)
}
