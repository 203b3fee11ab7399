package githubcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ghoo-cli/ghoo/internal/execshell"
)

const (
	labelsEndpointTemplateConstant    = "repos/%s/labels"
	labelsListQueryTemplateConstant   = "repos/%s/labels?per_page=%d"
	labelEndpointTemplateConstant     = "repos/%s/labels/%s"
	labelsListDefaultPageSizeConstant = 100
	labelNameFieldNameConstant        = "label_name"
	labelAlreadyExistsMarkerConstant  = "already_exists"
	ensureLabelOperationNameConstant  = OperationName("EnsureLabel")
	listLabelsOperationNameConstant   = OperationName("ListLabels")
)

// Label describes a repository label managed by ghoo.
type Label struct {
	Name        string
	Color       string
	Description string
}

// ListLabels enumerates repository labels.
func (client *Client) ListLabels(executionContext context.Context, repository string) ([]Label, error) {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return nil, InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}

	endpoint := fmt.Sprintf(labelsListQueryTemplateConstant, repositoryIdentifier, labelsListDefaultPageSizeConstant)
	executionResult, executionError := client.executeRESTCall(executionContext, listLabelsOperationNameConstant, endpoint, "", nil)
	if executionError != nil {
		return nil, executionError
	}

	var response []struct {
		Name        string `json:"name"`
		Color       string `json:"color"`
		Description string `json:"description"`
	}
	if decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response); decodingError != nil {
		return nil, ResponseDecodingError{Operation: listLabelsOperationNameConstant, Cause: decodingError}
	}

	labels := make([]Label, 0, len(response))
	for _, labelEntry := range response {
		labels = append(labels, Label{Name: labelEntry.Name, Color: labelEntry.Color, Description: labelEntry.Description})
	}

	return labels, nil
}

// EnsureLabel creates the label or updates its color and description when it already exists.
func (client *Client) EnsureLabel(executionContext context.Context, repository string, label Label) error {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(label.Name)) == 0 {
		return InvalidInputError{FieldName: labelNameFieldNameConstant, Message: requiredValueMessageConstant}
	}

	createPayload := struct {
		Name        string `json:"name"`
		Color       string `json:"color"`
		Description string `json:"description"`
	}{Name: label.Name, Color: label.Color, Description: label.Description}

	createEndpoint := fmt.Sprintf(labelsEndpointTemplateConstant, repositoryIdentifier)
	_, creationError := client.executeRESTCall(executionContext, ensureLabelOperationNameConstant, createEndpoint, httpMethodPostConstant, createPayload)
	if creationError == nil {
		return nil
	}

	if !labelAlreadyExists(creationError) {
		return creationError
	}

	updatePayload := struct {
		Color       string `json:"color"`
		Description string `json:"description"`
	}{Color: label.Color, Description: label.Description}

	updateEndpoint := fmt.Sprintf(labelEndpointTemplateConstant, repositoryIdentifier, label.Name)
	_, updateError := client.executeRESTCall(executionContext, ensureLabelOperationNameConstant, updateEndpoint, httpMethodPatchConstant, updatePayload)
	return updateError
}

func labelAlreadyExists(creationError error) bool {
	failedError := execshell.CommandFailedError{}
	if !errors.As(creationError, &failedError) {
		return false
	}
	failureText := failedError.Result.StandardError + failedError.Result.StandardOutput
	return strings.Contains(failureText, labelAlreadyExistsMarkerConstant)
}
