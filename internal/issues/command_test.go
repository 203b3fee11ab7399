package issues_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ghoo-cli/ghoo/internal/githubcli"
	"github.com/ghoo-cli/ghoo/internal/issues"
	"github.com/ghoo-cli/ghoo/internal/utils"
	"github.com/ghoo-cli/ghoo/internal/workflow"
)

func newTestCommandBuilder(stub *stubGitHubOperations) (*issues.CommandBuilder, utils.CommandContextAccessor) {
	contextAccessor := utils.NewCommandContextAccessor()
	builder := &issues.CommandBuilder{
		GitHubClient:    stub,
		ContextAccessor: contextAccessor,
	}
	return builder, contextAccessor
}

func TestCreateTaskCommand(testInstance *testing.T) {
	stub := &stubGitHubOperations{
		issuesByNumber: map[int]githubcli.Issue{3: plannedParent(3, workflow.IssueTypeEpic)},
		createdIssue:   githubcli.Issue{Number: 22, Title: "Build it", NodeID: "CHILD_NODE"},
	}
	builder, contextAccessor := newTestCommandBuilder(stub)

	command, buildError := builder.BuildCreateCommand(workflow.IssueTypeTask)
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetArgs([]string{"Build it", "--parent", "3"})

	executionError := command.ExecuteContext(contextAccessor.WithRepository(context.Background(), testRepositoryConstant))
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, "created task #22: Build it\n", outputBuffer.String())
}

func TestCreateEpicCommandHasNoParentFlag(testInstance *testing.T) {
	builder, _ := newTestCommandBuilder(&stubGitHubOperations{})

	command, buildError := builder.BuildCreateCommand(workflow.IssueTypeEpic)
	require.NoError(testInstance, buildError)
	require.Nil(testInstance, command.Flags().Lookup("parent"))
}

func TestCreateCommandReportsLinkFallback(testInstance *testing.T) {
	stub := &stubGitHubOperations{
		issuesByNumber:   map[int]githubcli.Issue{3: plannedParent(3, workflow.IssueTypeEpic)},
		createdIssue:     githubcli.Issue{Number: 22, Title: "Build it", NodeID: "CHILD_NODE"},
		addSubIssueError: githubcli.ErrSubIssuesUnavailable,
	}
	builder, contextAccessor := newTestCommandBuilder(stub)

	command, buildError := builder.BuildCreateCommand(workflow.IssueTypeTask)
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetArgs([]string{"Build it", "--parent", "3"})

	executionError := command.ExecuteContext(contextAccessor.WithRepository(context.Background(), testRepositoryConstant))
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, outputBuffer.String(), "native sub-issue link unavailable")
}

func TestCreateCommandRequiresRepository(testInstance *testing.T) {
	builder, _ := newTestCommandBuilder(&stubGitHubOperations{})

	command, buildError := builder.BuildCreateCommand(workflow.IssueTypeEpic)
	require.NoError(testInstance, buildError)

	command.SetOut(&bytes.Buffer{})
	command.SetErr(&bytes.Buffer{})
	command.SetArgs([]string{"Launch"})

	executionError := command.ExecuteContext(context.Background())
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "repository not resolved")
}

func TestGetCommandOutput(testInstance *testing.T) {
	issueBody := "## Summary\n\nShip it.\n\n## Acceptance Criteria\n\n- [x] Designed\n- [ ] Shipped"
	stub := &stubGitHubOperations{
		issuesByNumber: map[int]githubcli.Issue{7: {
			Number: 7,
			Title:  "Managed",
			Body:   issueBody,
			State:  "open",
			Labels: []string{"type:task", "status:planning"},
		}},
		subIssues: []githubcli.SubIssue{{Number: 8, State: "closed"}},
	}
	builder, contextAccessor := newTestCommandBuilder(stub)

	command, buildError := builder.BuildGetCommand()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetArgs([]string{"7"})

	executionError := command.ExecuteContext(contextAccessor.WithRepository(context.Background(), testRepositoryConstant))
	require.NoError(testInstance, executionError)

	renderedOutput := outputBuffer.String()
	require.Contains(testInstance, renderedOutput, "#7 [task/planning] Managed")
	require.Contains(testInstance, renderedOutput, "Acceptance Criteria (1/2 todos)")
	require.Contains(testInstance, renderedOutput, "sub-issues: 0 open, 1 closed")
	require.Contains(testInstance, renderedOutput, "## Summary")
}

func TestListCommandOutput(testInstance *testing.T) {
	stub := &stubGitHubOperations{
		listedIssues: []githubcli.Issue{
			{Number: 1, Title: "Epic", Labels: []string{"type:epic", "status:planning"}},
		},
	}
	builder, contextAccessor := newTestCommandBuilder(stub)

	command, buildError := builder.BuildListCommand()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetArgs([]string{"--type", "epic"})

	executionError := command.ExecuteContext(contextAccessor.WithRepository(context.Background(), testRepositoryConstant))
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, "#1 [epic/planning] Epic\n", outputBuffer.String())
}

func TestListCommandRejectsUnknownFilters(testInstance *testing.T) {
	builder, contextAccessor := newTestCommandBuilder(&stubGitHubOperations{})

	command, buildError := builder.BuildListCommand()
	require.NoError(testInstance, buildError)

	command.SetOut(&bytes.Buffer{})
	command.SetErr(&bytes.Buffer{})
	command.SetArgs([]string{"--state", "review"})

	executionError := command.ExecuteContext(contextAccessor.WithRepository(context.Background(), testRepositoryConstant))
	require.ErrorAs(testInstance, executionError, &workflow.UnknownStateError{})
}
