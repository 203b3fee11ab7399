package workflow_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ghoo-cli/ghoo/internal/utils"
	"github.com/ghoo-cli/ghoo/internal/workflow"
)

func TestTransitionCommandBuilderRejectsUnknownTransition(testInstance *testing.T) {
	builder := &workflow.TransitionCommandBuilder{TransitionName: "reopen"}

	_, buildError := builder.Build()
	require.ErrorAs(testInstance, buildError, &workflow.UnknownTransitionError{})
}

func TestTransitionCommandExecution(testInstance *testing.T) {
	testCases := []struct {
		name           string
		arguments      []string
		repository     string
		expectError    bool
		expectedOutput string
	}{
		{
			name:           "successful_transition",
			arguments:      []string{"7"},
			repository:     testRepositoryConstant,
			expectedOutput: "#7: backlog → planning\n",
		},
		{
			name:        "invalid_issue_number",
			arguments:   []string{"seven"},
			repository:  testRepositoryConstant,
			expectError: true,
		},
		{
			name:        "missing_repository",
			arguments:   []string{"7"},
			repository:  "",
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			stub := &stubGitHubOperations{issue: managedIssue(workflow.StateBacklog, workflow.IssueTypeTask, "## Summary\n\nShip it.")}
			contextAccessor := utils.NewCommandContextAccessor()

			builder := &workflow.TransitionCommandBuilder{
				TransitionName:  workflow.TransitionStartPlan,
				GitHubClient:    stub,
				ContextAccessor: contextAccessor,
			}

			command, buildError := builder.Build()
			require.NoError(subtestInstance, buildError)

			outputBuffer := &bytes.Buffer{}
			command.SetOut(outputBuffer)
			command.SetErr(outputBuffer)
			command.SetArgs(testCase.arguments)

			executionContext := context.Background()
			if len(testCase.repository) > 0 {
				executionContext = contextAccessor.WithRepository(executionContext, testCase.repository)
			}

			executionError := command.ExecuteContext(executionContext)
			if testCase.expectError {
				require.Error(subtestInstance, executionError)
				return
			}

			require.NoError(subtestInstance, executionError)
			require.Equal(subtestInstance, testCase.expectedOutput, outputBuffer.String())
		})
	}
}

func TestTransitionCommandPassesMessageFlag(testInstance *testing.T) {
	stub := &stubGitHubOperations{issue: managedIssue(workflow.StateBacklog, workflow.IssueTypeTask, "")}
	contextAccessor := utils.NewCommandContextAccessor()

	builder := &workflow.TransitionCommandBuilder{
		TransitionName:  workflow.TransitionStartPlan,
		GitHubClient:    stub,
		ContextAccessor: contextAccessor,
	}

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetArgs([]string{"7", "--message", "Kicking off."})

	executionError := command.ExecuteContext(contextAccessor.WithRepository(context.Background(), testRepositoryConstant))
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, stub.updatedBody, "> Kicking off.")
}
