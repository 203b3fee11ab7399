package issues

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ghoo-cli/ghoo/internal/githubcli"
	"github.com/ghoo-cli/ghoo/internal/issuebody"
	"github.com/ghoo-cli/ghoo/internal/workflow"
)

const (
	describeFailedMessageTemplateConstant = "issue lookup failed: %w"
	listFailedMessageTemplateConstant     = "issue listing failed: %w"
	openIssueStateConstant                = "open"
)

// SectionSummary reports a body section and its todo progress.
type SectionSummary struct {
	Title       string
	TodoTotal   int
	TodoChecked int
	HasContent  bool
}

// IssueDetails is the full picture of a managed issue.
type IssueDetails struct {
	Issue              githubcli.Issue
	IssueType          workflow.IssueType
	State              workflow.State
	Sections           []SectionSummary
	SubIssuesOpen      int
	SubIssuesClosed    int
	SubIssuesAvailable bool
}

// IssueSummary is one line of list output.
type IssueSummary struct {
	Number    int
	Title     string
	IssueType workflow.IssueType
	State     workflow.State
}

// ListRequest filters the issue listing. Zero values mean no filter.
type ListRequest struct {
	Repository string
	IssueType  workflow.IssueType
	State      workflow.State
}

// Describe fetches a managed issue with its section summary and sub-issue
// counts. Sub-issue counts are omitted when the API is unavailable.
func (service *Service) Describe(executionContext context.Context, repository string, issueNumber int) (IssueDetails, error) {
	issue, issueError := service.gitHubClient.GetIssue(executionContext, repository, issueNumber)
	if issueError != nil {
		return IssueDetails{}, fmt.Errorf(describeFailedMessageTemplateConstant, issueError)
	}

	issueType, typeError := workflow.TypeFromLabels(issue.Labels)
	if typeError != nil {
		return IssueDetails{}, typeError
	}
	currentState, stateError := workflow.StateFromLabels(issue.Labels)
	if stateError != nil {
		return IssueDetails{}, stateError
	}

	details := IssueDetails{
		Issue:     issue,
		IssueType: issueType,
		State:     currentState,
	}

	document := issuebody.ParseBody(issue.Body)
	for _, section := range document.Sections {
		if section.IsLog() {
			continue
		}
		sectionTodos := section.Todos()
		checkedCount := 0
		for _, todoItem := range sectionTodos {
			if todoItem.Checked {
				checkedCount++
			}
		}
		details.Sections = append(details.Sections, SectionSummary{
			Title:       section.Title,
			TodoTotal:   len(sectionTodos),
			TodoChecked: checkedCount,
			HasContent:  section.HasContent(),
		})
	}

	subIssues, subIssuesError := service.gitHubClient.ListSubIssues(executionContext, repository, issueNumber)
	if subIssuesError != nil {
		if !errors.Is(subIssuesError, githubcli.ErrSubIssuesUnavailable) {
			return IssueDetails{}, fmt.Errorf(describeFailedMessageTemplateConstant, subIssuesError)
		}
		return details, nil
	}

	details.SubIssuesAvailable = true
	for _, subIssue := range subIssues {
		if strings.EqualFold(subIssue.State, closedIssueStateConstant) {
			details.SubIssuesClosed++
			continue
		}
		details.SubIssuesOpen++
	}

	return details, nil
}

// List returns the managed issues matching the type and state filters.
// Issues without both managed labels are skipped.
func (service *Service) List(executionContext context.Context, request ListRequest) ([]IssueSummary, error) {
	options := githubcli.IssueListOptions{State: openIssueStateConstant}
	if len(request.IssueType) > 0 {
		options.Labels = append(options.Labels, request.IssueType.TypeLabel())
	}
	if len(request.State) > 0 {
		options.Labels = append(options.Labels, request.State.StatusLabel())
		if request.State == workflow.StateClosed {
			options.State = closedIssueStateConstant
		}
	}

	issues, listError := service.gitHubClient.ListIssues(executionContext, request.Repository, options)
	if listError != nil {
		return nil, fmt.Errorf(listFailedMessageTemplateConstant, listError)
	}

	var summaries []IssueSummary
	for _, issue := range issues {
		issueType, typeError := workflow.TypeFromLabels(issue.Labels)
		if typeError != nil {
			continue
		}
		currentState, stateError := workflow.StateFromLabels(issue.Labels)
		if stateError != nil {
			continue
		}
		summaries = append(summaries, IssueSummary{
			Number:    issue.Number,
			Title:     issue.Title,
			IssueType: issueType,
			State:     currentState,
		})
	}

	return summaries, nil
}
