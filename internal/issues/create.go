package issues

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
	titleRequiredMessageConstant              = "issue title required"
	parentRequiredMessageTemplateConstant     = "a %s requires a parent %s"
	parentNotAllowedMessageConstant           = "an epic does not take a parent"
	parentTypeMismatchMessageTemplateConstant = "parent issue #%d is not a %s"
	parentInBacklogMessageTemplateConstant    = "parent issue #%d is still in backlog; plan it before adding children"
	parentClosedMessageTemplateConstant       = "parent issue #%d is closed"
	creationFailedMessageTemplateConstant     = "issue creation failed: %w"
	parentReferenceTemplateConstant           = "Parent: #%d"
	subIssueLinkUnavailableMessageConstant    = "sub-issue API unavailable; parent reference in the body is authoritative"
	subIssueLinkFailedMessageConstant         = "sub-issue linking failed; parent reference in the body is authoritative"
	closedIssueStateConstant                  = "closed"
	createdIssueFieldConstant                 = "issue_number"
	parentIssueFieldConstant                  = "parent_number"
	issueTypeFieldConstant                    = "issue_type"
	parentGateFailedMessageTemplateConstant   = "cannot create %s: %w"
)

// ErrTitleRequired rejects creation requests without a title.
var ErrTitleRequired = errors.New(titleRequiredMessageConstant)

// ErrParentNotAllowed rejects a parent reference on an epic.
var ErrParentNotAllowed = errors.New(parentNotAllowedMessageConstant)

// ParentRequiredError reports a child created without its required parent.
type ParentRequiredError struct {
	ChildType  workflow.IssueType
	ParentType workflow.IssueType
}

// Error describes the missing parent.
func (requiredError ParentRequiredError) Error() string {
	return fmt.Sprintf(parentRequiredMessageTemplateConstant, requiredError.ChildType, requiredError.ParentType)
}

// ParentTypeMismatchError reports a parent of the wrong type.
type ParentTypeMismatchError struct {
	ParentNumber int
	ExpectedType workflow.IssueType
}

// Error describes the mismatched parent.
func (mismatchError ParentTypeMismatchError) Error() string {
	return fmt.Sprintf(parentTypeMismatchMessageTemplateConstant, mismatchError.ParentNumber, mismatchError.ExpectedType)
}

// ParentInBacklogError reports a parent that has not left backlog.
type ParentInBacklogError struct {
	ParentNumber int
}

// Error describes the unplanned parent.
func (backlogError ParentInBacklogError) Error() string {
	return fmt.Sprintf(parentInBacklogMessageTemplateConstant, backlogError.ParentNumber)
}

// ParentClosedError reports a closed parent.
type ParentClosedError struct {
	ParentNumber int
}

// Error describes the closed parent.
func (closedError ParentClosedError) Error() string {
	return fmt.Sprintf(parentClosedMessageTemplateConstant, closedError.ParentNumber)
}

// CreationRequest describes the issue to create.
type CreationRequest struct {
	Repository   string
	IssueType    workflow.IssueType
	Title        string
	ParentNumber int
}

// CreationResult reports the created issue and whether native sub-issue
// linking succeeded.
type CreationResult struct {
	Issue          githubcli.Issue
	SubIssueLinked bool
}

// Create creates a managed issue with a scaffolded body, backlog status, and
// type label. Children are linked to their parent natively when the sub-issue
// API is available; the body reference remains regardless.
func (service *Service) Create(executionContext context.Context, request CreationRequest) (CreationResult, error) {
	trimmedTitle := strings.TrimSpace(request.Title)
	if len(trimmedTitle) == 0 {
		return CreationResult{}, ErrTitleRequired
	}

	parentIssue, gateError := service.checkParentGate(executionContext, request)
	if gateError != nil {
		return CreationResult{}, fmt.Errorf(parentGateFailedMessageTemplateConstant, request.IssueType, gateError)
	}

	draft := githubcli.IssueDraft{
		Title:  trimmedTitle,
		Body:   service.scaffoldBody(request.IssueType, request.ParentNumber),
		Labels: []string{request.IssueType.TypeLabel(), workflow.StateBacklog.StatusLabel()},
	}

	createdIssue, creationError := service.gitHubClient.CreateIssue(executionContext, request.Repository, draft)
	if creationError != nil {
		return CreationResult{}, fmt.Errorf(creationFailedMessageTemplateConstant, creationError)
	}

	result := CreationResult{Issue: createdIssue}
	if parentIssue != nil {
		result.SubIssueLinked = service.linkSubIssue(executionContext, *parentIssue, createdIssue, request.IssueType)
	}

	service.logger.Info("issue created",
		zap.Int(createdIssueFieldConstant, createdIssue.Number),
		zap.String(issueTypeFieldConstant, string(request.IssueType)),
	)

	return result, nil
}

func parentTypeFor(issueType workflow.IssueType) (workflow.IssueType, bool) {
	switch issueType {
	case workflow.IssueTypeTask:
		return workflow.IssueTypeEpic, true
	case workflow.IssueTypeSubtask:
		return workflow.IssueTypeTask, true
	default:
		return "", false
	}
}

func (service *Service) checkParentGate(executionContext context.Context, request CreationRequest) (*githubcli.Issue, error) {
	expectedParentType, parentNeeded := parentTypeFor(request.IssueType)
	if !parentNeeded {
		if request.ParentNumber > 0 {
			return nil, ErrParentNotAllowed
		}
		return nil, nil
	}

	if request.ParentNumber <= 0 {
		return nil, ParentRequiredError{ChildType: request.IssueType, ParentType: expectedParentType}
	}

	parentIssue, parentError := service.gitHubClient.GetIssue(executionContext, request.Repository, request.ParentNumber)
	if parentError != nil {
		return nil, parentError
	}

	parentType, typeError := workflow.TypeFromLabels(parentIssue.Labels)
	if typeError != nil || parentType != expectedParentType {
		return nil, ParentTypeMismatchError{ParentNumber: request.ParentNumber, ExpectedType: expectedParentType}
	}

	if strings.EqualFold(parentIssue.State, closedIssueStateConstant) {
		return nil, ParentClosedError{ParentNumber: request.ParentNumber}
	}

	parentState, stateError := workflow.StateFromLabels(parentIssue.Labels)
	if stateError != nil {
		return nil, stateError
	}
	switch parentState {
	case workflow.StateBacklog:
		return nil, ParentInBacklogError{ParentNumber: request.ParentNumber}
	case workflow.StateClosed:
		return nil, ParentClosedError{ParentNumber: request.ParentNumber}
	}

	return &parentIssue, nil
}

func (service *Service) scaffoldBody(issueType workflow.IssueType, parentNumber int) string {
	document := &issuebody.Document{}
	if parentNumber > 0 {
		document.Preamble = append(document.Preamble, fmt.Sprintf(parentReferenceTemplateConstant, parentNumber))
	}
	for _, sectionTitle := range service.configuration.RequiredSectionsForType(issueType) {
		document.Sections = append(document.Sections, &issuebody.Section{Title: sectionTitle})
	}
	return document.Render()
}

func (service *Service) linkSubIssue(executionContext context.Context, parentIssue githubcli.Issue, childIssue githubcli.Issue, issueType workflow.IssueType) bool {
	linkError := service.gitHubClient.AddSubIssue(executionContext, parentIssue.NodeID, childIssue.NodeID)
	if linkError == nil {
		return true
	}

	warningMessage := subIssueLinkFailedMessageConstant
	if errors.Is(linkError, githubcli.ErrSubIssuesUnavailable) {
		warningMessage = subIssueLinkUnavailableMessageConstant
	}
	service.logger.Warn(warningMessage,
		zap.Int(parentIssueFieldConstant, parentIssue.Number),
		zap.Int(createdIssueFieldConstant, childIssue.Number),
		zap.String(issueTypeFieldConstant, string(issueType)),
		zap.Error(linkError),
	)
	return false
}
