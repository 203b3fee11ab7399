package workflow

import "fmt"

const (
	illegalTransitionMessageTemplateConstant = "cannot %s: issue is %s, expected %s"
	unknownTransitionMessageTemplateConstant = "unknown transition: %s"
)

// TransitionName identifies a workflow transition command.
type TransitionName string

// Transition commands exposed by the CLI.
const (
	TransitionStartPlan      TransitionName = "start-plan"
	TransitionSubmitPlan     TransitionName = "submit-plan"
	TransitionApprovePlan    TransitionName = "approve-plan"
	TransitionRequestChanges TransitionName = "request-changes"
	TransitionStartWork      TransitionName = "start-work"
	TransitionSubmitWork     TransitionName = "submit-work"
	TransitionApproveWork    TransitionName = "approve-work"
	TransitionRejectWork     TransitionName = "reject-work"
)

// Transition is a legal edge of the workflow state machine.
type Transition struct {
	Name      TransitionName
	FromState State
	ToState   State
}

var transitionTable = []Transition{
	{Name: TransitionStartPlan, FromState: StateBacklog, ToState: StatePlanning},
	{Name: TransitionSubmitPlan, FromState: StatePlanning, ToState: StateAwaitingPlanApproval},
	{Name: TransitionApprovePlan, FromState: StateAwaitingPlanApproval, ToState: StatePlanApproved},
	{Name: TransitionRequestChanges, FromState: StateAwaitingPlanApproval, ToState: StatePlanning},
	{Name: TransitionStartWork, FromState: StatePlanApproved, ToState: StateInProgress},
	{Name: TransitionSubmitWork, FromState: StateInProgress, ToState: StateAwaitingCompletionApproval},
	{Name: TransitionApproveWork, FromState: StateAwaitingCompletionApproval, ToState: StateClosed},
	{Name: TransitionRejectWork, FromState: StateAwaitingCompletionApproval, ToState: StateInProgress},
}

// UnknownTransitionError reports a transition name outside the state machine.
type UnknownTransitionError struct {
	Name TransitionName
}

// Error describes the unknown transition.
func (unknownError UnknownTransitionError) Error() string {
	return fmt.Sprintf(unknownTransitionMessageTemplateConstant, unknownError.Name)
}

// IllegalTransitionError reports a transition applied from the wrong state.
type IllegalTransitionError struct {
	Transition   TransitionName
	CurrentState State
	RequiredFrom State
}

// Error describes the illegal transition.
func (illegalError IllegalTransitionError) Error() string {
	return fmt.Sprintf(illegalTransitionMessageTemplateConstant, illegalError.Transition, illegalError.CurrentState, illegalError.RequiredFrom)
}

// AllTransitions lists the transitions of the state machine.
func AllTransitions() []Transition {
	transitions := make([]Transition, len(transitionTable))
	copy(transitions, transitionTable)
	return transitions
}

// LookupTransition finds a transition by command name.
func LookupTransition(name TransitionName) (Transition, bool) {
	for _, transition := range transitionTable {
		if transition.Name == name {
			return transition, true
		}
	}
	return Transition{}, false
}
