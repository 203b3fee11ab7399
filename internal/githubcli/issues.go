package githubcli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ghoo-cli/ghoo/internal/execshell"
)

const (
	issueEndpointTemplateConstant         = "repos/%s/issues/%d"
	issuesEndpointTemplateConstant        = "repos/%s/issues"
	issueLabelsEndpointTemplateConstant   = "repos/%s/issues/%d/labels"
	issueCommentsEndpointTemplateConstant = "repos/%s/issues/%d/comments"
	issueListQueryTemplateConstant        = "repos/%s/issues?state=%s&per_page=%d"
	issueListLabelsQueryTemplateConstant  = "&labels=%s"
	issueListDefaultPageSizeConstant      = 100
	issueListLabelSeparatorConstant       = ","

	issueNumberFieldNameConstant = "issue_number"
	issueTitleFieldNameConstant  = "title"
	issueStateOpenConstant       = "open"
	issueStateClosedConstant     = "closed"
	issueCloseReasonConstant     = "completed"

	getIssueOperationNameConstant      = OperationName("GetIssue")
	listIssuesOperationNameConstant    = OperationName("ListIssues")
	createIssueOperationNameConstant   = OperationName("CreateIssue")
	updateIssueBodyOperationName       = OperationName("UpdateIssueBody")
	setIssueLabelsOperationName        = OperationName("SetIssueLabels")
	closeIssueOperationNameConstant    = OperationName("CloseIssue")
	createCommentOperationNameConstant = OperationName("CreateIssueComment")
)

// Issue represents the GitHub issue fields ghoo operates on.
type Issue struct {
	Number  int
	Title   string
	Body    string
	State   string
	NodeID  string
	HTMLURL string
	Labels  []string
}

// IssueDraft describes the payload for creating a new issue.
type IssueDraft struct {
	Title  string
	Body   string
	Labels []string
}

// IssueListOptions filters ListIssues queries.
type IssueListOptions struct {
	State  string
	Labels []string
}

type issueResponse struct {
	Number      int    `json:"number"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	State       string `json:"state"`
	NodeID      string `json:"node_id"`
	HTMLURL     string `json:"html_url"`
	PullRequest *struct {
		URL string `json:"url"`
	} `json:"pull_request"`
	Labels []struct {
		Name string `json:"name"`
	} `json:"labels"`
}

func (response issueResponse) toIssue() Issue {
	labels := make([]string, 0, len(response.Labels))
	for _, labelEntry := range response.Labels {
		labels = append(labels, labelEntry.Name)
	}
	return Issue{
		Number:  response.Number,
		Title:   response.Title,
		Body:    response.Body,
		State:   response.State,
		NodeID:  response.NodeID,
		HTMLURL: response.HTMLURL,
		Labels:  labels,
	}
}

func (client *Client) executeRESTCall(executionContext context.Context, operation OperationName, endpoint string, method string, payload any) (execshell.ExecutionResult, error) {
	arguments := []string{apiSubcommandConstant, endpoint}

	if len(method) > 0 {
		arguments = append(arguments, methodFlagConstant, method)
	}

	var standardInput []byte
	if payload != nil {
		payloadBytes, encodingError := json.Marshal(payload)
		if encodingError != nil {
			return execshell.ExecutionResult{}, PayloadEncodingError{Operation: operation, Cause: encodingError}
		}
		standardInput = payloadBytes
		arguments = append(arguments, inputFlagConstant, stdinReferenceConstant)
	}

	arguments = append(arguments, acceptHeaderFlagConstant, acceptHeaderValueConstant)

	commandDetails := execshell.CommandDetails{
		Arguments:     arguments,
		StandardInput: standardInput,
	}

	executionResult, executionError := client.executeWithRetry(executionContext, commandDetails)
	if executionError != nil {
		return execshell.ExecutionResult{}, OperationError{Operation: operation, Cause: executionError}
	}

	return executionResult, nil
}

func validateIssueCoordinates(repository string, issueNumber int) (string, error) {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return "", InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if issueNumber <= 0 {
		return "", InvalidInputError{FieldName: issueNumberFieldNameConstant, Message: positiveValueMessageConstant}
	}
	return repositoryIdentifier, nil
}

// GetIssue fetches a single issue by number.
func (client *Client) GetIssue(executionContext context.Context, repository string, issueNumber int) (Issue, error) {
	repositoryIdentifier, validationError := validateIssueCoordinates(repository, issueNumber)
	if validationError != nil {
		return Issue{}, validationError
	}

	endpoint := fmt.Sprintf(issueEndpointTemplateConstant, repositoryIdentifier, issueNumber)
	executionResult, executionError := client.executeRESTCall(executionContext, getIssueOperationNameConstant, endpoint, "", nil)
	if executionError != nil {
		return Issue{}, executionError
	}

	var response issueResponse
	if decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response); decodingError != nil {
		return Issue{}, ResponseDecodingError{Operation: getIssueOperationNameConstant, Cause: decodingError}
	}

	return response.toIssue(), nil
}

// ListIssues enumerates issues matching the provided state and label filters.
// Pull requests surfaced by the issues endpoint are excluded.
func (client *Client) ListIssues(executionContext context.Context, repository string, options IssueListOptions) ([]Issue, error) {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return nil, InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}

	stateFilter := strings.TrimSpace(options.State)
	if len(stateFilter) == 0 {
		stateFilter = issueStateOpenConstant
	}

	endpoint := fmt.Sprintf(issueListQueryTemplateConstant, repositoryIdentifier, stateFilter, issueListDefaultPageSizeConstant)
	if len(options.Labels) > 0 {
		endpoint += fmt.Sprintf(issueListLabelsQueryTemplateConstant, strings.Join(options.Labels, issueListLabelSeparatorConstant))
	}

	executionResult, executionError := client.executeRESTCall(executionContext, listIssuesOperationNameConstant, endpoint, "", nil)
	if executionError != nil {
		return nil, executionError
	}

	var response []issueResponse
	if decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response); decodingError != nil {
		return nil, ResponseDecodingError{Operation: listIssuesOperationNameConstant, Cause: decodingError}
	}

	issues := make([]Issue, 0, len(response))
	for _, issueEntry := range response {
		if issueEntry.PullRequest != nil {
			continue
		}
		issues = append(issues, issueEntry.toIssue())
	}

	return issues, nil
}

// CreateIssue opens a new issue with the supplied title, body, and labels.
func (client *Client) CreateIssue(executionContext context.Context, repository string, draft IssueDraft) (Issue, error) {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return Issue{}, InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(draft.Title)) == 0 {
		return Issue{}, InvalidInputError{FieldName: issueTitleFieldNameConstant, Message: requiredValueMessageConstant}
	}

	payload := struct {
		Title  string   `json:"title"`
		Body   string   `json:"body"`
		Labels []string `json:"labels,omitempty"`
	}{
		Title:  draft.Title,
		Body:   draft.Body,
		Labels: draft.Labels,
	}

	endpoint := fmt.Sprintf(issuesEndpointTemplateConstant, repositoryIdentifier)
	executionResult, executionError := client.executeRESTCall(executionContext, createIssueOperationNameConstant, endpoint, httpMethodPostConstant, payload)
	if executionError != nil {
		return Issue{}, executionError
	}

	var response issueResponse
	if decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response); decodingError != nil {
		return Issue{}, ResponseDecodingError{Operation: createIssueOperationNameConstant, Cause: decodingError}
	}

	return response.toIssue(), nil
}

// UpdateIssueBody replaces the body of an existing issue.
func (client *Client) UpdateIssueBody(executionContext context.Context, repository string, issueNumber int, body string) error {
	repositoryIdentifier, validationError := validateIssueCoordinates(repository, issueNumber)
	if validationError != nil {
		return validationError
	}

	payload := struct {
		Body string `json:"body"`
	}{Body: body}

	endpoint := fmt.Sprintf(issueEndpointTemplateConstant, repositoryIdentifier, issueNumber)
	_, executionError := client.executeRESTCall(executionContext, updateIssueBodyOperationName, endpoint, httpMethodPatchConstant, payload)
	return executionError
}

// SetIssueLabels replaces the full label set of an issue.
func (client *Client) SetIssueLabels(executionContext context.Context, repository string, issueNumber int, labels []string) error {
	repositoryIdentifier, validationError := validateIssueCoordinates(repository, issueNumber)
	if validationError != nil {
		return validationError
	}

	payload := struct {
		Labels []string `json:"labels"`
	}{Labels: labels}

	endpoint := fmt.Sprintf(issueLabelsEndpointTemplateConstant, repositoryIdentifier, issueNumber)
	_, executionError := client.executeRESTCall(executionContext, setIssueLabelsOperationName, endpoint, httpMethodPutConstant, payload)
	return executionError
}

// CloseIssue closes an issue recording the completed state reason.
func (client *Client) CloseIssue(executionContext context.Context, repository string, issueNumber int) error {
	repositoryIdentifier, validationError := validateIssueCoordinates(repository, issueNumber)
	if validationError != nil {
		return validationError
	}

	payload := struct {
		State       string `json:"state"`
		StateReason string `json:"state_reason"`
	}{State: issueStateClosedConstant, StateReason: issueCloseReasonConstant}

	endpoint := fmt.Sprintf(issueEndpointTemplateConstant, repositoryIdentifier, issueNumber)
	_, executionError := client.executeRESTCall(executionContext, closeIssueOperationNameConstant, endpoint, httpMethodPatchConstant, payload)
	return executionError
}

// CreateIssueComment posts a comment on an issue.
func (client *Client) CreateIssueComment(executionContext context.Context, repository string, issueNumber int, commentBody string) error {
	repositoryIdentifier, validationError := validateIssueCoordinates(repository, issueNumber)
	if validationError != nil {
		return validationError
	}

	payload := struct {
		Body string `json:"body"`
	}{Body: commentBody}

	endpoint := fmt.Sprintf(issueCommentsEndpointTemplateConstant, repositoryIdentifier, issueNumber)
	_, executionError := client.executeRESTCall(executionContext, createCommentOperationNameConstant, endpoint, httpMethodPostConstant, payload)
	return executionError
}
