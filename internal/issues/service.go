package issues

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/ghoo-cli/ghoo/internal/githubcli"
	"github.com/ghoo-cli/ghoo/internal/workflow"
)

const (
	serviceLoggerRequiredMessageConstant = "issue service requires a logger"
	serviceClientRequiredMessageConstant = "issue service requires a GitHub client"
)

// Service validation sentinels.
var (
	ErrServiceLoggerRequired = errors.New(serviceLoggerRequiredMessageConstant)
	ErrServiceClientRequired = errors.New(serviceClientRequiredMessageConstant)
)

// GitHubOperations captures the GitHub access the issue service needs.
type GitHubOperations interface {
	GetIssue(executionContext context.Context, repository string, issueNumber int) (githubcli.Issue, error)
	ListIssues(executionContext context.Context, repository string, options githubcli.IssueListOptions) ([]githubcli.Issue, error)
	CreateIssue(executionContext context.Context, repository string, draft githubcli.IssueDraft) (githubcli.Issue, error)
	AddSubIssue(executionContext context.Context, parentNodeID string, childNodeID string) error
	ListSubIssues(executionContext context.Context, repository string, issueNumber int) ([]githubcli.SubIssue, error)
}

// Service creates and inspects issues in the managed hierarchy.
type Service struct {
	logger        *zap.Logger
	gitHubClient  GitHubOperations
	configuration workflow.Configuration
}

// NewService validates its dependencies and builds an issue service.
func NewService(logger *zap.Logger, gitHubClient GitHubOperations, configuration workflow.Configuration) (*Service, error) {
	if logger == nil {
		return nil, ErrServiceLoggerRequired
	}
	if gitHubClient == nil {
		return nil, ErrServiceClientRequired
	}
	if validationError := configuration.Validate(); validationError != nil {
		return nil, validationError
	}

	return &Service{
		logger:        logger,
		gitHubClient:  gitHubClient,
		configuration: configuration,
	}, nil
}
