package workflow

import (
	"fmt"
	"strings"
)

const (
	statusLabelPrefixConstant = "status:"
	typeLabelPrefixConstant   = "type:"

	unknownStateMessageTemplateConstant         = "unknown workflow state: %s"
	unknownIssueTypeMessageTemplateConstant     = "unknown issue type: %s"
	missingStatusLabelMessageTemplateConstant   = "issue carries no status label; run init and label the issue (labels: %s)"
	multipleStatusLabelsMessageTemplateConstant = "issue carries multiple status labels: %s"
	missingTypeLabelMessageTemplateConstant     = "issue carries no type label (labels: %s)"
	multipleTypeLabelsMessageTemplateConstant   = "issue carries multiple type labels: %s"
)

// State is a workflow state stored on the issue as a status label.
type State string

// Workflow states in lifecycle order.
const (
	StateBacklog                    State = "backlog"
	StatePlanning                   State = "planning"
	StateAwaitingPlanApproval       State = "awaiting-plan-approval"
	StatePlanApproved               State = "plan-approved"
	StateInProgress                 State = "in-progress"
	StateAwaitingCompletionApproval State = "awaiting-completion-approval"
	StateClosed                     State = "closed"
)

// IssueType classifies a managed issue within the hierarchy.
type IssueType string

// Issue types from the top of the hierarchy down.
const (
	IssueTypeEpic    IssueType = "epic"
	IssueTypeTask    IssueType = "task"
	IssueTypeSubtask IssueType = "subtask"
)

// UnknownStateError reports a state name outside the workflow.
type UnknownStateError struct {
	Value string
}

// Error describes the unknown state.
func (unknownError UnknownStateError) Error() string {
	return fmt.Sprintf(unknownStateMessageTemplateConstant, unknownError.Value)
}

// UnknownIssueTypeError reports an issue type name outside the hierarchy.
type UnknownIssueTypeError struct {
	Value string
}

// Error describes the unknown issue type.
func (unknownError UnknownIssueTypeError) Error() string {
	return fmt.Sprintf(unknownIssueTypeMessageTemplateConstant, unknownError.Value)
}

// MissingStatusLabelError reports an issue without any status label.
type MissingStatusLabelError struct {
	Labels []string
}

// Error describes the unmanaged issue.
func (missingError MissingStatusLabelError) Error() string {
	return fmt.Sprintf(missingStatusLabelMessageTemplateConstant, strings.Join(missingError.Labels, ", "))
}

// MultipleStatusLabelsError reports an issue carrying conflicting status labels.
type MultipleStatusLabelsError struct {
	StatusLabels []string
}

// Error describes the conflicting labels.
func (multipleError MultipleStatusLabelsError) Error() string {
	return fmt.Sprintf(multipleStatusLabelsMessageTemplateConstant, strings.Join(multipleError.StatusLabels, ", "))
}

// MissingTypeLabelError reports an issue without any type label.
type MissingTypeLabelError struct {
	Labels []string
}

// Error describes the untyped issue.
func (missingError MissingTypeLabelError) Error() string {
	return fmt.Sprintf(missingTypeLabelMessageTemplateConstant, strings.Join(missingError.Labels, ", "))
}

// MultipleTypeLabelsError reports an issue carrying conflicting type labels.
type MultipleTypeLabelsError struct {
	TypeLabels []string
}

// Error describes the conflicting labels.
func (multipleError MultipleTypeLabelsError) Error() string {
	return fmt.Sprintf(multipleTypeLabelsMessageTemplateConstant, strings.Join(multipleError.TypeLabels, ", "))
}

// AllStates lists the workflow states in lifecycle order.
func AllStates() []State {
	return []State{
		StateBacklog,
		StatePlanning,
		StateAwaitingPlanApproval,
		StatePlanApproved,
		StateInProgress,
		StateAwaitingCompletionApproval,
		StateClosed,
	}
}

// AllIssueTypes lists the issue types from epic down to sub-task.
func AllIssueTypes() []IssueType {
	return []IssueType{IssueTypeEpic, IssueTypeTask, IssueTypeSubtask}
}

// ParseState converts a state name into a State.
func ParseState(value string) (State, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(value))
	for _, knownState := range AllStates() {
		if string(knownState) == normalizedValue {
			return knownState, nil
		}
	}
	return "", UnknownStateError{Value: value}
}

// ParseIssueType converts an issue type name into an IssueType.
func ParseIssueType(value string) (IssueType, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(value))
	for _, knownType := range AllIssueTypes() {
		if string(knownType) == normalizedValue {
			return knownType, nil
		}
	}
	return "", UnknownIssueTypeError{Value: value}
}

// StatusLabel returns the label storing the state on an issue.
func (state State) StatusLabel() string {
	return statusLabelPrefixConstant + string(state)
}

// TypeLabel returns the label storing the type on an issue.
func (issueType IssueType) TypeLabel() string {
	return typeLabelPrefixConstant + string(issueType)
}

// StateFromLabels determines the issue's current state from its labels.
// A managed issue carries exactly one status label.
func StateFromLabels(labels []string) (State, error) {
	var statusLabels []string
	var resolvedState State
	for _, label := range labels {
		if !strings.HasPrefix(label, statusLabelPrefixConstant) {
			continue
		}
		statusLabels = append(statusLabels, label)
		parsedState, parseError := ParseState(strings.TrimPrefix(label, statusLabelPrefixConstant))
		if parseError != nil {
			return "", parseError
		}
		resolvedState = parsedState
	}

	switch len(statusLabels) {
	case 0:
		return "", MissingStatusLabelError{Labels: labels}
	case 1:
		return resolvedState, nil
	default:
		return "", MultipleStatusLabelsError{StatusLabels: statusLabels}
	}
}

// TypeFromLabels determines the issue's type from its labels.
func TypeFromLabels(labels []string) (IssueType, error) {
	var typeLabels []string
	var resolvedType IssueType
	for _, label := range labels {
		if !strings.HasPrefix(label, typeLabelPrefixConstant) {
			continue
		}
		typeLabels = append(typeLabels, label)
		parsedType, parseError := ParseIssueType(strings.TrimPrefix(label, typeLabelPrefixConstant))
		if parseError != nil {
			return "", parseError
		}
		resolvedType = parsedType
	}

	switch len(typeLabels) {
	case 0:
		return "", MissingTypeLabelError{Labels: labels}
	case 1:
		return resolvedType, nil
	default:
		return "", MultipleTypeLabelsError{TypeLabels: typeLabels}
	}
}

// ReplaceStatusLabel returns the label set with all status labels replaced by
// the new state's label, preserving the order of the remaining labels.
func ReplaceStatusLabel(labels []string, newState State) []string {
	updatedLabels := make([]string, 0, len(labels)+1)
	for _, label := range labels {
		if strings.HasPrefix(label, statusLabelPrefixConstant) {
			continue
		}
		updatedLabels = append(updatedLabels, label)
	}
	return append(updatedLabels, newState.StatusLabel())
}
