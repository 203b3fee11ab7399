package workflow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ghoo-cli/ghoo/internal/githubcli"
	"github.com/ghoo-cli/ghoo/internal/issuebody"
	"github.com/ghoo-cli/ghoo/internal/workflow"
)

const (
	testRepositoryConstant  = "octocat/hello"
	testAuthorLoginConstant = "octocat"
)

var testTransitionTime = time.Date(2026, time.August, 10, 14, 0, 0, 0, time.UTC)

type stubGitHubOperations struct {
	issue              githubcli.Issue
	getIssueError      error
	setLabelsError     error
	updateBodyError    error
	commentError       error
	closeError         error
	subIssues          []githubcli.SubIssue
	listSubIssuesError error
	userLoginError     error

	labelsSet       []string
	updatedBody     string
	commentBody     string
	closeCalled     bool
	userLoginCalls  int
	listSubIssueRun bool
}

func (stub *stubGitHubOperations) GetIssue(_ context.Context, _ string, _ int) (githubcli.Issue, error) {
	return stub.issue, stub.getIssueError
}

func (stub *stubGitHubOperations) SetIssueLabels(_ context.Context, _ string, _ int, labels []string) error {
	stub.labelsSet = labels
	return stub.setLabelsError
}

func (stub *stubGitHubOperations) UpdateIssueBody(_ context.Context, _ string, _ int, body string) error {
	if stub.updateBodyError != nil {
		return stub.updateBodyError
	}
	stub.updatedBody = body
	return nil
}

func (stub *stubGitHubOperations) CloseIssue(_ context.Context, _ string, _ int) error {
	stub.closeCalled = true
	return stub.closeError
}

func (stub *stubGitHubOperations) CreateIssueComment(_ context.Context, _ string, _ int, commentBody string) error {
	if stub.commentError != nil {
		return stub.commentError
	}
	stub.commentBody = commentBody
	return nil
}

func (stub *stubGitHubOperations) CurrentUserLogin(_ context.Context) (string, error) {
	stub.userLoginCalls++
	if stub.userLoginError != nil {
		return "", stub.userLoginError
	}
	return testAuthorLoginConstant, nil
}

func (stub *stubGitHubOperations) ListSubIssues(_ context.Context, _ string, _ int) ([]githubcli.SubIssue, error) {
	stub.listSubIssueRun = true
	return stub.subIssues, stub.listSubIssuesError
}

func newTestEngine(testInstance *testing.T, stub *stubGitHubOperations) *workflow.Engine {
	engine, creationError := workflow.NewEngine(zap.NewNop(), stub, workflow.Configuration{})
	require.NoError(testInstance, creationError)
	engine.SetTimeProvider(func() time.Time { return testTransitionTime })
	return engine
}

func managedIssue(state workflow.State, issueType workflow.IssueType, body string) githubcli.Issue {
	return githubcli.Issue{
		Number: 7,
		Title:  "Managed issue",
		Body:   body,
		State:  "open",
		Labels: []string{issueType.TypeLabel(), state.StatusLabel()},
	}
}

func TestNewEngineValidation(testInstance *testing.T) {
	_, loggerError := workflow.NewEngine(nil, &stubGitHubOperations{}, workflow.Configuration{})
	require.ErrorIs(testInstance, loggerError, workflow.ErrEngineLoggerRequired)

	_, clientError := workflow.NewEngine(zap.NewNop(), nil, workflow.Configuration{})
	require.ErrorIs(testInstance, clientError, workflow.ErrEngineClientRequired)

	_, configurationError := workflow.NewEngine(zap.NewNop(), &stubGitHubOperations{}, workflow.Configuration{StatusMethod: "status_field"})
	require.ErrorAs(testInstance, configurationError, &workflow.UnsupportedStatusMethodError{})
}

func TestExecuteTransitionStartPlan(testInstance *testing.T) {
	stub := &stubGitHubOperations{issue: managedIssue(workflow.StateBacklog, workflow.IssueTypeTask, "## Summary\n\nShip it.")}
	engine := newTestEngine(testInstance, stub)

	outcome, transitionError := engine.ExecuteTransition(context.Background(), workflow.TransitionRequest{
		Repository:  testRepositoryConstant,
		IssueNumber: 7,
		Transition:  workflow.TransitionStartPlan,
		Message:     "Kicking off planning.",
	})

	require.NoError(testInstance, transitionError)
	require.Equal(testInstance, workflow.StateBacklog, outcome.FromState)
	require.Equal(testInstance, workflow.StatePlanning, outcome.ToState)
	require.Equal(testInstance, workflow.IssueTypeTask, outcome.IssueType)
	require.False(testInstance, outcome.IssueClosed)
	require.False(testInstance, outcome.LogRecordedAsComment)

	require.Equal(testInstance, []string{"type:task", "status:planning"}, stub.labelsSet)

	updatedDocument := issuebody.ParseBody(stub.updatedBody)
	logEntries := updatedDocument.ParseLogEntries()
	require.Len(testInstance, logEntries, 1)
	require.Equal(testInstance, "planning", logEntries[0].ToState)
	require.Equal(testInstance, testAuthorLoginConstant, logEntries[0].Author)
	require.Equal(testInstance, testTransitionTime, logEntries[0].Timestamp)
	require.Equal(testInstance, "Kicking off planning.", logEntries[0].Message)
}

func TestExecuteTransitionRejectsWrongState(testInstance *testing.T) {
	stub := &stubGitHubOperations{issue: managedIssue(workflow.StateBacklog, workflow.IssueTypeTask, "")}
	engine := newTestEngine(testInstance, stub)

	_, transitionError := engine.ExecuteTransition(context.Background(), workflow.TransitionRequest{
		Repository:  testRepositoryConstant,
		IssueNumber: 7,
		Transition:  workflow.TransitionSubmitWork,
	})

	require.ErrorAs(testInstance, transitionError, &workflow.IllegalTransitionError{})
	require.Nil(testInstance, stub.labelsSet)
}

func TestExecuteTransitionRejectsUnmanagedIssue(testInstance *testing.T) {
	stub := &stubGitHubOperations{issue: githubcli.Issue{Number: 7, Labels: []string{"bug"}}}
	engine := newTestEngine(testInstance, stub)

	_, transitionError := engine.ExecuteTransition(context.Background(), workflow.TransitionRequest{
		Repository:  testRepositoryConstant,
		IssueNumber: 7,
		Transition:  workflow.TransitionStartPlan,
	})

	require.ErrorAs(testInstance, transitionError, &workflow.MissingStatusLabelError{})
}

func TestSubmitPlanValidatesRequiredSections(testInstance *testing.T) {
	incompleteBody := "## Summary\n\nShip it.\n\n## Implementation Plan"
	stub := &stubGitHubOperations{issue: managedIssue(workflow.StatePlanning, workflow.IssueTypeTask, incompleteBody)}
	engine := newTestEngine(testInstance, stub)

	_, transitionError := engine.ExecuteTransition(context.Background(), workflow.TransitionRequest{
		Repository:  testRepositoryConstant,
		IssueNumber: 7,
		Transition:  workflow.TransitionSubmitPlan,
	})

	var sectionsError workflow.IncompleteSectionsError
	require.ErrorAs(testInstance, transitionError, &sectionsError)
	require.Equal(testInstance, []string{"Acceptance Criteria"}, sectionsError.MissingSections)
	require.Equal(testInstance, []string{"Implementation Plan"}, sectionsError.EmptySections)
}

func TestSubmitPlanSucceedsWithCompleteSections(testInstance *testing.T) {
	completeBody := "## Summary\n\nShip it.\n\n## Acceptance Criteria\n\n- [ ] Done\n\n## Implementation Plan\n\nSteps."
	stub := &stubGitHubOperations{issue: managedIssue(workflow.StatePlanning, workflow.IssueTypeTask, completeBody)}
	engine := newTestEngine(testInstance, stub)

	outcome, transitionError := engine.ExecuteTransition(context.Background(), workflow.TransitionRequest{
		Repository:  testRepositoryConstant,
		IssueNumber: 7,
		Transition:  workflow.TransitionSubmitPlan,
	})

	require.NoError(testInstance, transitionError)
	require.Equal(testInstance, workflow.StateAwaitingPlanApproval, outcome.ToState)
}

func TestSubmitWorkValidatesTodos(testInstance *testing.T) {
	openTodoBody := "## Acceptance Criteria\n\n- [x] Designed\n- [ ] Shipped"
	stub := &stubGitHubOperations{issue: managedIssue(workflow.StateInProgress, workflow.IssueTypeTask, openTodoBody)}
	engine := newTestEngine(testInstance, stub)

	_, transitionError := engine.ExecuteTransition(context.Background(), workflow.TransitionRequest{
		Repository:  testRepositoryConstant,
		IssueNumber: 7,
		Transition:  workflow.TransitionSubmitWork,
	})

	var todosError workflow.OpenTodosError
	require.ErrorAs(testInstance, transitionError, &todosError)
	require.Equal(testInstance, 1, todosError.OpenCount)
}

func TestApproveWorkValidatesSubIssues(testInstance *testing.T) {
	stub := &stubGitHubOperations{
		issue: managedIssue(workflow.StateAwaitingCompletionApproval, workflow.IssueTypeEpic, "## Summary\n\nDone."),
		subIssues: []githubcli.SubIssue{
			{Number: 11, State: "closed"},
			{Number: 12, State: "open"},
		},
	}
	engine := newTestEngine(testInstance, stub)

	_, transitionError := engine.ExecuteTransition(context.Background(), workflow.TransitionRequest{
		Repository:  testRepositoryConstant,
		IssueNumber: 7,
		Transition:  workflow.TransitionApproveWork,
	})

	var subIssuesError workflow.OpenSubIssuesError
	require.ErrorAs(testInstance, transitionError, &subIssuesError)
	require.Equal(testInstance, []int{12}, subIssuesError.OpenNumbers)
	require.False(testInstance, stub.closeCalled)
}

func TestApproveWorkClosesIssue(testInstance *testing.T) {
	stub := &stubGitHubOperations{
		issue:     managedIssue(workflow.StateAwaitingCompletionApproval, workflow.IssueTypeEpic, "## Summary\n\nDone."),
		subIssues: []githubcli.SubIssue{{Number: 11, State: "closed"}},
	}
	engine := newTestEngine(testInstance, stub)

	outcome, transitionError := engine.ExecuteTransition(context.Background(), workflow.TransitionRequest{
		Repository:  testRepositoryConstant,
		IssueNumber: 7,
		Transition:  workflow.TransitionApproveWork,
	})

	require.NoError(testInstance, transitionError)
	require.True(testInstance, outcome.IssueClosed)
	require.True(testInstance, stub.closeCalled)
	require.Contains(testInstance, stub.labelsSet, "status:closed")
}

func TestApproveWorkProceedsWhenSubIssuesUnavailable(testInstance *testing.T) {
	stub := &stubGitHubOperations{
		issue:              managedIssue(workflow.StateAwaitingCompletionApproval, workflow.IssueTypeTask, "## Summary\n\nDone."),
		listSubIssuesError: githubcli.ErrSubIssuesUnavailable,
	}
	engine := newTestEngine(testInstance, stub)

	outcome, transitionError := engine.ExecuteTransition(context.Background(), workflow.TransitionRequest{
		Repository:  testRepositoryConstant,
		IssueNumber: 7,
		Transition:  workflow.TransitionApproveWork,
	})

	require.NoError(testInstance, transitionError)
	require.True(testInstance, stub.listSubIssueRun)
	require.True(testInstance, outcome.IssueClosed)
}

func TestBodyUpdateFallsBackToComment(testInstance *testing.T) {
	stub := &stubGitHubOperations{
		issue:           managedIssue(workflow.StateBacklog, workflow.IssueTypeTask, "## Summary\n\nShip it."),
		updateBodyError: errors.New("body update failed"),
	}
	engine := newTestEngine(testInstance, stub)

	outcome, transitionError := engine.ExecuteTransition(context.Background(), workflow.TransitionRequest{
		Repository:  testRepositoryConstant,
		IssueNumber: 7,
		Transition:  workflow.TransitionStartPlan,
		Message:     "Starting.",
	})

	require.NoError(testInstance, transitionError)
	require.True(testInstance, outcome.LogRecordedAsComment)
	require.Contains(testInstance, stub.commentBody, "planning")
	require.Contains(testInstance, stub.commentBody, "@"+testAuthorLoginConstant)
}

func TestBodyUpdateAndCommentFailureIsReported(testInstance *testing.T) {
	stub := &stubGitHubOperations{
		issue:           managedIssue(workflow.StateBacklog, workflow.IssueTypeTask, ""),
		updateBodyError: errors.New("body update failed"),
		commentError:    errors.New("comment failed"),
	}
	engine := newTestEngine(testInstance, stub)

	_, transitionError := engine.ExecuteTransition(context.Background(), workflow.TransitionRequest{
		Repository:  testRepositoryConstant,
		IssueNumber: 7,
		Transition:  workflow.TransitionStartPlan,
	})

	require.Error(testInstance, transitionError)
	require.Contains(testInstance, transitionError.Error(), "comment failed")
}

func TestAuthorLoginIsCachedAcrossTransitions(testInstance *testing.T) {
	stub := &stubGitHubOperations{issue: managedIssue(workflow.StateBacklog, workflow.IssueTypeTask, "")}
	engine := newTestEngine(testInstance, stub)

	_, firstError := engine.ExecuteTransition(context.Background(), workflow.TransitionRequest{
		Repository:  testRepositoryConstant,
		IssueNumber: 7,
		Transition:  workflow.TransitionStartPlan,
	})
	require.NoError(testInstance, firstError)

	stub.issue = managedIssue(workflow.StatePlanning, workflow.IssueTypeSubtask, "## Summary\n\nS.\n\n## Acceptance Criteria\n\nC.")
	_, secondError := engine.ExecuteTransition(context.Background(), workflow.TransitionRequest{
		Repository:  testRepositoryConstant,
		IssueNumber: 7,
		Transition:  workflow.TransitionSubmitPlan,
	})
	require.NoError(testInstance, secondError)

	require.Equal(testInstance, 1, stub.userLoginCalls)
}
