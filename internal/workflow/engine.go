package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ghoo-cli/ghoo/internal/githubcli"
	"github.com/ghoo-cli/ghoo/internal/issuebody"
)

const (
	engineLoggerRequiredMessageConstant = "workflow engine requires a logger"
	engineClientRequiredMessageConstant = "workflow engine requires a GitHub client"

	transitionFailedTemplateConstant    = "%s failed: %w"
	bodyUpdateFallbackMessageConstant   = "issue body update failed; transition log recorded as a comment"
	logDeliveryFailedTemplateConstant   = "could not record transition log for issue #%d: %w"
	subIssueCheckSkippedMessageConstant = "sub-issue API unavailable; skipping sub-issue completion check"

	issueNumberFieldConstant = "issue_number"
	repositoryFieldConstant  = "repository"
	transitionFieldConstant  = "transition"
	fromStateFieldConstant   = "from_state"
	toStateFieldConstant     = "to_state"
)

// Engine validation sentinels.
var (
	ErrEngineLoggerRequired = errors.New(engineLoggerRequiredMessageConstant)
	ErrEngineClientRequired = errors.New(engineClientRequiredMessageConstant)
)

// GitHubOperations captures the GitHub access the engine needs.
type GitHubOperations interface {
	GetIssue(executionContext context.Context, repository string, issueNumber int) (githubcli.Issue, error)
	SetIssueLabels(executionContext context.Context, repository string, issueNumber int, labels []string) error
	UpdateIssueBody(executionContext context.Context, repository string, issueNumber int, body string) error
	CloseIssue(executionContext context.Context, repository string, issueNumber int) error
	CreateIssueComment(executionContext context.Context, repository string, issueNumber int, commentBody string) error
	CurrentUserLogin(executionContext context.Context) (string, error)
	ListSubIssues(executionContext context.Context, repository string, issueNumber int) ([]githubcli.SubIssue, error)
}

// TransitionRequest identifies the issue and transition to apply.
type TransitionRequest struct {
	Repository  string
	IssueNumber int
	Transition  TransitionName
	Message     string
}

// TransitionOutcome reports the applied transition.
type TransitionOutcome struct {
	FromState            State
	ToState              State
	IssueType            IssueType
	IssueClosed          bool
	LogRecordedAsComment bool
}

// Engine applies workflow transitions to GitHub issues.
type Engine struct {
	logger            *zap.Logger
	gitHubClient      GitHubOperations
	configuration     Configuration
	timeProvider      func() time.Time
	cachedAuthorLogin string
}

// NewEngine validates its dependencies and builds a transition engine.
func NewEngine(logger *zap.Logger, gitHubClient GitHubOperations, configuration Configuration) (*Engine, error) {
	if logger == nil {
		return nil, ErrEngineLoggerRequired
	}
	if gitHubClient == nil {
		return nil, ErrEngineClientRequired
	}
	if validationError := configuration.Validate(); validationError != nil {
		return nil, validationError
	}

	return &Engine{
		logger:        logger,
		gitHubClient:  gitHubClient,
		configuration: configuration,
		timeProvider:  time.Now,
	}, nil
}

// SetTimeProvider overrides the clock used for log entry timestamps.
func (engine *Engine) SetTimeProvider(timeProvider func() time.Time) {
	if timeProvider != nil {
		engine.timeProvider = timeProvider
	}
}

// ExecuteTransition applies a workflow transition: it resolves the issue's
// current state from its labels, checks legality, runs the transition's
// validators, swaps the status label, and appends the audit log entry to the
// issue body. A failed body update falls back to an issue comment; the
// transition still succeeds.
func (engine *Engine) ExecuteTransition(executionContext context.Context, request TransitionRequest) (TransitionOutcome, error) {
	transition, transitionFound := LookupTransition(request.Transition)
	if !transitionFound {
		return TransitionOutcome{}, UnknownTransitionError{Name: request.Transition}
	}

	issue, issueError := engine.gitHubClient.GetIssue(executionContext, request.Repository, request.IssueNumber)
	if issueError != nil {
		return TransitionOutcome{}, fmt.Errorf(transitionFailedTemplateConstant, transition.Name, issueError)
	}

	currentState, stateError := StateFromLabels(issue.Labels)
	if stateError != nil {
		return TransitionOutcome{}, stateError
	}
	issueType, typeError := TypeFromLabels(issue.Labels)
	if typeError != nil {
		return TransitionOutcome{}, typeError
	}

	if currentState != transition.FromState {
		return TransitionOutcome{}, IllegalTransitionError{
			Transition:   transition.Name,
			CurrentState: currentState,
			RequiredFrom: transition.FromState,
		}
	}

	document := issuebody.ParseBody(issue.Body)
	if validationError := engine.runValidators(executionContext, transition, issueType, document, request); validationError != nil {
		return TransitionOutcome{}, validationError
	}

	authorLogin, authorError := engine.authorLogin(executionContext)
	if authorError != nil {
		return TransitionOutcome{}, fmt.Errorf(transitionFailedTemplateConstant, transition.Name, authorError)
	}

	updatedLabels := ReplaceStatusLabel(issue.Labels, transition.ToState)
	if labelsError := engine.gitHubClient.SetIssueLabels(executionContext, request.Repository, request.IssueNumber, updatedLabels); labelsError != nil {
		return TransitionOutcome{}, fmt.Errorf(transitionFailedTemplateConstant, transition.Name, labelsError)
	}

	logEntry := issuebody.LogEntry{
		ToState:   string(transition.ToState),
		Author:    authorLogin,
		Timestamp: engine.timeProvider().UTC(),
		Message:   request.Message,
	}

	outcome := TransitionOutcome{
		FromState: transition.FromState,
		ToState:   transition.ToState,
		IssueType: issueType,
	}

	document.AppendLogEntry(logEntry)
	bodyUpdateError := engine.gitHubClient.UpdateIssueBody(executionContext, request.Repository, request.IssueNumber, document.Render())
	if bodyUpdateError != nil {
		engine.logger.Warn(bodyUpdateFallbackMessageConstant,
			zap.String(repositoryFieldConstant, request.Repository),
			zap.Int(issueNumberFieldConstant, request.IssueNumber),
			zap.Error(bodyUpdateError),
		)
		commentError := engine.gitHubClient.CreateIssueComment(executionContext, request.Repository, request.IssueNumber, issuebody.RenderLogEntry(logEntry))
		if commentError != nil {
			return TransitionOutcome{}, fmt.Errorf(logDeliveryFailedTemplateConstant, request.IssueNumber, commentError)
		}
		outcome.LogRecordedAsComment = true
	}

	if transition.ToState == StateClosed {
		if closeError := engine.gitHubClient.CloseIssue(executionContext, request.Repository, request.IssueNumber); closeError != nil {
			return TransitionOutcome{}, fmt.Errorf(transitionFailedTemplateConstant, transition.Name, closeError)
		}
		outcome.IssueClosed = true
	}

	engine.logger.Info(string(transition.Name),
		zap.String(repositoryFieldConstant, request.Repository),
		zap.Int(issueNumberFieldConstant, request.IssueNumber),
		zap.String(transitionFieldConstant, string(transition.Name)),
		zap.String(fromStateFieldConstant, string(transition.FromState)),
		zap.String(toStateFieldConstant, string(transition.ToState)),
	)

	return outcome, nil
}

func (engine *Engine) runValidators(executionContext context.Context, transition Transition, issueType IssueType, document *issuebody.Document, request TransitionRequest) error {
	switch transition.Name {
	case TransitionSubmitPlan:
		return validateRequiredSections(document, engine.configuration.RequiredSectionsForType(issueType))
	case TransitionSubmitWork:
		return validateTodosComplete(document)
	case TransitionApproveWork:
		subIssues, listError := engine.gitHubClient.ListSubIssues(executionContext, request.Repository, request.IssueNumber)
		if listError != nil {
			if errors.Is(listError, githubcli.ErrSubIssuesUnavailable) {
				engine.logger.Warn(subIssueCheckSkippedMessageConstant,
					zap.String(repositoryFieldConstant, request.Repository),
					zap.Int(issueNumberFieldConstant, request.IssueNumber),
				)
				return nil
			}
			return fmt.Errorf(transitionFailedTemplateConstant, transition.Name, listError)
		}
		return validateSubIssuesClosed(subIssues)
	default:
		return nil
	}
}

func (engine *Engine) authorLogin(executionContext context.Context) (string, error) {
	if len(engine.cachedAuthorLogin) > 0 {
		return engine.cachedAuthorLogin, nil
	}

	resolvedLogin, loginError := engine.gitHubClient.CurrentUserLogin(executionContext)
	if loginError != nil {
		return "", loginError
	}

	engine.cachedAuthorLogin = resolvedLogin
	return resolvedLogin, nil
}
