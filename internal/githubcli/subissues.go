package githubcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ghoo-cli/ghoo/internal/execshell"
)

const (
	graphqlEndpointConstant                = "graphql"
	graphqlQueryFlagConstant               = "-f"
	graphqlVariableFlagConstant            = "-F"
	graphqlFeaturesHeaderConstant          = "GraphQL-Features: sub_issues"
	graphqlQueryTemplateConstant           = "query=%s"
	graphqlVariableTemplateConstant        = "%s=%s"
	parentNodeFieldNameConstant            = "parent_node_id"
	childNodeFieldNameConstant             = "child_node_id"
	ownerFieldNameConstant                 = "owner"
	subIssuesUnavailableMessageConstant    = "sub-issues are not available on this repository"
	addSubIssueOperationNameConstant       = OperationName("AddSubIssue")
	listSubIssuesOperationNameConstant     = OperationName("ListSubIssues")
	repositorySplitExpectedPartsConstant   = 2
	invalidRepositoryFormatMessageConstant = "expected owner/name"
)

// Markers in GraphQL error output indicating the sub-issue API is unavailable.
var subIssuesUnavailableMarkers = []string{
	"doesn't exist on type",
	"sub_issues",
	"subissues",
}

// ErrSubIssuesUnavailable signals the repository or host does not support native sub-issues.
var ErrSubIssuesUnavailable = errors.New(subIssuesUnavailableMessageConstant)

// SubIssue summarizes a child issue returned by the sub-issue listing query.
type SubIssue struct {
	Number int
	Title  string
	State  string
	Labels []string
}

const addSubIssueMutationConstant = `mutation($issueId: ID!, $subIssueId: ID!) {
  addSubIssue(input: {issueId: $issueId, subIssueId: $subIssueId}) {
    issue { number }
  }
}`

const listSubIssuesQueryConstant = `query($owner: String!, $name: String!, $number: Int!) {
  repository(owner: $owner, name: $name) {
    issue(number: $number) {
      subIssues(first: 100) {
        nodes { number title state labels(first: 50) { nodes { name } } }
      }
    }
  }
}`

// AddSubIssue links a child issue beneath a parent using the native sub-issue API.
func (client *Client) AddSubIssue(executionContext context.Context, parentNodeID string, childNodeID string) error {
	trimmedParentNode := strings.TrimSpace(parentNodeID)
	if len(trimmedParentNode) == 0 {
		return InvalidInputError{FieldName: parentNodeFieldNameConstant, Message: requiredValueMessageConstant}
	}
	trimmedChildNode := strings.TrimSpace(childNodeID)
	if len(trimmedChildNode) == 0 {
		return InvalidInputError{FieldName: childNodeFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			apiSubcommandConstant,
			graphqlEndpointConstant,
			acceptHeaderFlagConstant,
			graphqlFeaturesHeaderConstant,
			graphqlQueryFlagConstant,
			fmt.Sprintf(graphqlQueryTemplateConstant, addSubIssueMutationConstant),
			graphqlQueryFlagConstant,
			fmt.Sprintf(graphqlVariableTemplateConstant, "issueId", trimmedParentNode),
			graphqlQueryFlagConstant,
			fmt.Sprintf(graphqlVariableTemplateConstant, "subIssueId", trimmedChildNode),
		},
	}

	_, executionError := client.executeWithRetry(executionContext, commandDetails)
	if executionError != nil {
		if indicatesSubIssuesUnavailable(executionError) {
			return ErrSubIssuesUnavailable
		}
		return OperationError{Operation: addSubIssueOperationNameConstant, Cause: executionError}
	}

	return nil
}

// ListSubIssues returns the native child issues linked beneath the given issue.
func (client *Client) ListSubIssues(executionContext context.Context, repository string, issueNumber int) ([]SubIssue, error) {
	repositoryIdentifier, validationError := validateIssueCoordinates(repository, issueNumber)
	if validationError != nil {
		return nil, validationError
	}

	repositoryParts := strings.Split(repositoryIdentifier, "/")
	if len(repositoryParts) != repositorySplitExpectedPartsConstant {
		return nil, InvalidInputError{FieldName: repositoryFieldNameConstant, Message: invalidRepositoryFormatMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			apiSubcommandConstant,
			graphqlEndpointConstant,
			acceptHeaderFlagConstant,
			graphqlFeaturesHeaderConstant,
			graphqlQueryFlagConstant,
			fmt.Sprintf(graphqlQueryTemplateConstant, listSubIssuesQueryConstant),
			graphqlQueryFlagConstant,
			fmt.Sprintf(graphqlVariableTemplateConstant, ownerFieldNameConstant, repositoryParts[0]),
			graphqlQueryFlagConstant,
			fmt.Sprintf(graphqlVariableTemplateConstant, "name", repositoryParts[1]),
			graphqlVariableFlagConstant,
			fmt.Sprintf(graphqlVariableTemplateConstant, "number", strconv.Itoa(issueNumber)),
		},
	}

	executionResult, executionError := client.executeWithRetry(executionContext, commandDetails)
	if executionError != nil {
		if indicatesSubIssuesUnavailable(executionError) {
			return nil, ErrSubIssuesUnavailable
		}
		return nil, OperationError{Operation: listSubIssuesOperationNameConstant, Cause: executionError}
	}

	var response struct {
		Data struct {
			Repository struct {
				Issue struct {
					SubIssues struct {
						Nodes []struct {
							Number int    `json:"number"`
							Title  string `json:"title"`
							State  string `json:"state"`
							Labels struct {
								Nodes []struct {
									Name string `json:"name"`
								} `json:"nodes"`
							} `json:"labels"`
						} `json:"nodes"`
					} `json:"subIssues"`
				} `json:"issue"`
			} `json:"repository"`
		} `json:"data"`
	}

	if decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response); decodingError != nil {
		return nil, ResponseDecodingError{Operation: listSubIssuesOperationNameConstant, Cause: decodingError}
	}

	nodes := response.Data.Repository.Issue.SubIssues.Nodes
	subIssues := make([]SubIssue, 0, len(nodes))
	for _, node := range nodes {
		labelNames := make([]string, 0, len(node.Labels.Nodes))
		for _, labelNode := range node.Labels.Nodes {
			labelNames = append(labelNames, labelNode.Name)
		}
		subIssues = append(subIssues, SubIssue{Number: node.Number, Title: node.Title, State: strings.ToLower(node.State), Labels: labelNames})
	}

	return subIssues, nil
}

func indicatesSubIssuesUnavailable(executionError error) bool {
	failedError := execshell.CommandFailedError{}
	if !errors.As(executionError, &failedError) {
		return false
	}

	failureText := strings.ToLower(failedError.Result.StandardError + failedError.Result.StandardOutput)
	for _, marker := range subIssuesUnavailableMarkers {
		if strings.Contains(failureText, marker) {
			return true
		}
	}
	return false
}
