package editing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ghoo-cli/ghoo/internal/githubcli"
	"github.com/ghoo-cli/ghoo/internal/issuebody"
	"github.com/ghoo-cli/ghoo/internal/workflow"
)

const (
	editingLoggerRequiredMessageConstant = "editing service requires a logger"
	editingClientRequiredMessageConstant = "editing service requires a GitHub client"

	closedIssueMessageTemplateConstant = "issue #%d is closed and cannot be edited"
	editFailedMessageTemplateConstant  = "body edit failed: %w"
	closedIssueStateConstant           = "closed"

	bodyUpdatedMessageConstant = "issue body updated"
	issueNumberFieldConstant   = "issue_number"
	repositoryFieldConstant    = "repository"
)

// Service validation sentinels.
var (
	ErrEditingLoggerRequired = errors.New(editingLoggerRequiredMessageConstant)
	ErrEditingClientRequired = errors.New(editingClientRequiredMessageConstant)
)

// ClosedIssueError rejects edits to closed issues.
type ClosedIssueError struct {
	IssueNumber int
}

// Error describes the closed issue.
func (closedError ClosedIssueError) Error() string {
	return fmt.Sprintf(closedIssueMessageTemplateConstant, closedError.IssueNumber)
}

// GitHubOperations captures the GitHub access body editing needs.
type GitHubOperations interface {
	GetIssue(executionContext context.Context, repository string, issueNumber int) (githubcli.Issue, error)
	UpdateIssueBody(executionContext context.Context, repository string, issueNumber int, body string) error
}

// Service edits the bodies of open managed issues.
type Service struct {
	logger       *zap.Logger
	gitHubClient GitHubOperations
}

// NewService validates its dependencies and builds an editing service.
func NewService(logger *zap.Logger, gitHubClient GitHubOperations) (*Service, error) {
	if logger == nil {
		return nil, ErrEditingLoggerRequired
	}
	if gitHubClient == nil {
		return nil, ErrEditingClientRequired
	}

	return &Service{logger: logger, gitHubClient: gitHubClient}, nil
}

// SetBody replaces the entire issue body.
func (service *Service) SetBody(executionContext context.Context, repository string, issueNumber int, body string) error {
	if _, loadError := service.loadOpenIssue(executionContext, repository, issueNumber); loadError != nil {
		return loadError
	}
	return service.saveBody(executionContext, repository, issueNumber, body)
}

// CreateSection adds an empty section, keeping the log section last.
func (service *Service) CreateSection(executionContext context.Context, repository string, issueNumber int, sectionTitle string) error {
	return service.mutateBody(executionContext, repository, issueNumber, func(document *issuebody.Document) error {
		_, additionError := document.AddSection(sectionTitle)
		return additionError
	})
}

// UpdateSection replaces the content of an existing section.
func (service *Service) UpdateSection(executionContext context.Context, repository string, issueNumber int, sectionTitle string, content string) error {
	return service.mutateBody(executionContext, repository, issueNumber, func(document *issuebody.Document) error {
		return document.UpdateSectionContent(sectionTitle, content)
	})
}

// CreateTodo appends an unchecked todo item to a section.
func (service *Service) CreateTodo(executionContext context.Context, repository string, issueNumber int, sectionTitle string, todoText string) error {
	return service.mutateBody(executionContext, repository, issueNumber, func(document *issuebody.Document) error {
		return document.AddTodo(sectionTitle, todoText)
	})
}

// SetTodoChecked checks or unchecks a todo item matched by its text.
func (service *Service) SetTodoChecked(executionContext context.Context, repository string, issueNumber int, sectionTitle string, todoText string, checked bool) error {
	return service.mutateBody(executionContext, repository, issueNumber, func(document *issuebody.Document) error {
		return document.SetTodoChecked(sectionTitle, todoText, checked)
	})
}

func (service *Service) mutateBody(executionContext context.Context, repository string, issueNumber int, mutate func(*issuebody.Document) error) error {
	issue, loadError := service.loadOpenIssue(executionContext, repository, issueNumber)
	if loadError != nil {
		return loadError
	}

	document := issuebody.ParseBody(issue.Body)
	if mutationError := mutate(document); mutationError != nil {
		return mutationError
	}

	return service.saveBody(executionContext, repository, issueNumber, document.Render())
}

func (service *Service) loadOpenIssue(executionContext context.Context, repository string, issueNumber int) (githubcli.Issue, error) {
	issue, issueError := service.gitHubClient.GetIssue(executionContext, repository, issueNumber)
	if issueError != nil {
		return githubcli.Issue{}, fmt.Errorf(editFailedMessageTemplateConstant, issueError)
	}

	if strings.EqualFold(issue.State, closedIssueStateConstant) {
		return githubcli.Issue{}, ClosedIssueError{IssueNumber: issueNumber}
	}
	if currentState, stateError := workflow.StateFromLabels(issue.Labels); stateError == nil && currentState == workflow.StateClosed {
		return githubcli.Issue{}, ClosedIssueError{IssueNumber: issueNumber}
	}

	return issue, nil
}

func (service *Service) saveBody(executionContext context.Context, repository string, issueNumber int, body string) error {
	if updateError := service.gitHubClient.UpdateIssueBody(executionContext, repository, issueNumber, body); updateError != nil {
		return fmt.Errorf(editFailedMessageTemplateConstant, updateError)
	}

	service.logger.Debug(bodyUpdatedMessageConstant,
		zap.String(repositoryFieldConstant, repository),
		zap.Int(issueNumberFieldConstant, issueNumber),
	)
	return nil
}
