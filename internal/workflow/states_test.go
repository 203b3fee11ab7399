package workflow_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ghoo-cli/ghoo/internal/workflow"
)

func TestParseState(testInstance *testing.T) {
	testCases := []struct {
		name          string
		value         string
		expectedState workflow.State
		expectError   bool
	}{
		{name: "backlog", value: "backlog", expectedState: workflow.StateBacklog},
		{name: "mixed_case_with_spaces", value: "  In-Progress ", expectedState: workflow.StateInProgress},
		{name: "awaiting_completion_approval", value: "awaiting-completion-approval", expectedState: workflow.StateAwaitingCompletionApproval},
		{name: "unknown", value: "review", expectError: true},
		{name: "empty", value: "", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			parsedState, parseError := workflow.ParseState(testCase.value)
			if testCase.expectError {
				require.ErrorAs(subtestInstance, parseError, &workflow.UnknownStateError{})
				return
			}
			require.NoError(subtestInstance, parseError)
			require.Equal(subtestInstance, testCase.expectedState, parsedState)
		})
	}
}

func TestStateFromLabels(testInstance *testing.T) {
	testCases := []struct {
		name          string
		labels        []string
		expectedState workflow.State
		expectedError any
	}{
		{
			name:          "single_status_label",
			labels:        []string{"type:task", "status:planning", "bug"},
			expectedState: workflow.StatePlanning,
		},
		{
			name:          "no_status_label",
			labels:        []string{"type:task", "bug"},
			expectedError: &workflow.MissingStatusLabelError{},
		},
		{
			name:          "multiple_status_labels",
			labels:        []string{"status:planning", "status:backlog"},
			expectedError: &workflow.MultipleStatusLabelsError{},
		},
		{
			name:          "unknown_status_label",
			labels:        []string{"status:review"},
			expectedError: &workflow.UnknownStateError{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			resolvedState, stateError := workflow.StateFromLabels(testCase.labels)
			if testCase.expectedError != nil {
				require.ErrorAs(subtestInstance, stateError, testCase.expectedError)
				return
			}
			require.NoError(subtestInstance, stateError)
			require.Equal(subtestInstance, testCase.expectedState, resolvedState)
		})
	}
}

func TestTypeFromLabels(testInstance *testing.T) {
	resolvedType, typeError := workflow.TypeFromLabels([]string{"status:backlog", "type:epic"})
	require.NoError(testInstance, typeError)
	require.Equal(testInstance, workflow.IssueTypeEpic, resolvedType)

	_, missingError := workflow.TypeFromLabels([]string{"status:backlog"})
	require.ErrorAs(testInstance, missingError, &workflow.MissingTypeLabelError{})

	_, multipleError := workflow.TypeFromLabels([]string{"type:epic", "type:task"})
	require.ErrorAs(testInstance, multipleError, &workflow.MultipleTypeLabelsError{})
}

func TestReplaceStatusLabel(testInstance *testing.T) {
	updatedLabels := workflow.ReplaceStatusLabel([]string{"type:task", "status:backlog", "bug"}, workflow.StatePlanning)
	require.Equal(testInstance, []string{"type:task", "bug", "status:planning"}, updatedLabels)
}

func TestStatusAndTypeLabels(testInstance *testing.T) {
	require.Equal(testInstance, "status:plan-approved", workflow.StatePlanApproved.StatusLabel())
	require.Equal(testInstance, "type:subtask", workflow.IssueTypeSubtask.TypeLabel())
}

func TestTransitionTable(testInstance *testing.T) {
	transitions := workflow.AllTransitions()
	require.Len(testInstance, transitions, 8)

	approveWork, transitionFound := workflow.LookupTransition(workflow.TransitionApproveWork)
	require.True(testInstance, transitionFound)
	require.Equal(testInstance, workflow.StateAwaitingCompletionApproval, approveWork.FromState)
	require.Equal(testInstance, workflow.StateClosed, approveWork.ToState)

	_, unknownFound := workflow.LookupTransition("reopen")
	require.False(testInstance, unknownFound)
}
