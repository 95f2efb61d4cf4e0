package domain

// PlanAction is the single next action decided for a user turn
type PlanAction string

const (
	PlanChat         PlanAction = "chat"
	PlanAsk          PlanAction = "ask"
	PlanProposeEvent PlanAction = "propose_event"
)

// PlanResult is the planner's decision for one turn. Exactly one of the
// action-specific fields is meaningful: Reply for chat, Question for ask,
// Draft for propose_event. Patch accompanies ask and propose_event, and
// chat only when the model asked for a state change.
type PlanResult struct {
	Action   PlanAction
	Reply    string
	Question string
	Draft    *EventDraft
	Patch    SessionPatch
}
