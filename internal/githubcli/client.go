package githubcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/ghoo-cli/ghoo/internal/execshell"
)

const (
	apiSubcommandConstant                = "api"
	repoSubcommandConstant               = "repo"
	viewSubcommandConstant               = "view"
	jsonFlagConstant                     = "--json"
	methodFlagConstant                   = "-X"
	inputFlagConstant                    = "--input"
	stdinReferenceConstant               = "-"
	acceptHeaderFlagConstant             = "-H"
	acceptHeaderValueConstant            = "Accept: application/vnd.github+json"
	repositoryFieldNameConstant          = "repository"
	requiredValueMessageConstant         = "value required"
	positiveValueMessageConstant         = "positive value required"
	executorNotConfiguredMessageConstant = "github cli executor not configured"

	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	responseDecodingErrorTemplateConstant   = "%s response decoding failed: %s"
	payloadEncodingErrorTemplateConstant    = "%s payload encoding failed: %s"
	invalidInputErrorTemplateConstant       = "%s: %s"

	currentUserEndpointConstant             = "user"
	repoViewJSONFieldsConstant              = "nameWithOwner,defaultBranchRef,hasIssuesEnabled"
	repositoryMetadataOperationNameConstant = OperationName("ResolveRepoMetadata")
	currentUserOperationNameConstant        = OperationName("CurrentUserLogin")
	retryMaximumElapsedTimeConstant         = 30 * time.Second
	httpMethodGetConstant                   = "GET"
	httpMethodPostConstant                  = "POST"
	httpMethodPatchConstant                 = "PATCH"
	httpMethodPutConstant                   = "PUT"
)

// Markers identifying transient GitHub CLI failures worth retrying.
var transientFailureMarkers = []string{
	"rate limit",
	"secondary rate limit",
	"HTTP 502",
	"HTTP 503",
	"HTTP 504",
	"timeout",
	"connection reset",
}

// OperationName describes a named GitHub CLI workflow supported by the client.
type OperationName string

// GitHubCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type GitHubCommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates GitHub CLI invocations through execshell.
type Client struct {
	executor       GitHubCommandExecutor
	backOffFactory func() backoff.BackOff
}

var (
	// ErrExecutorNotConfigured indicates the client was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for GitHub CLI operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ResponseDecodingError indicates JSON decoding failures.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying JSON error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// PayloadEncodingError indicates JSON encoding issues.
type PayloadEncodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the encoding failure.
func (encodingError PayloadEncodingError) Error() string {
	return fmt.Sprintf(payloadEncodingErrorTemplateConstant, encodingError.Operation, encodingError.Cause)
}

// Unwrap exposes the underlying error.
func (encodingError PayloadEncodingError) Unwrap() error {
	return encodingError.Cause
}

// RepositoryMetadata contains key details resolved from GitHub.
type RepositoryMetadata struct {
	NameWithOwner string
	DefaultBranch string
	IssuesEnabled bool
}

// NewClient constructs a GitHub CLI client.
func NewClient(executor GitHubCommandExecutor) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor, backOffFactory: newDefaultBackOff}, nil
}

// SetBackOffFactory overrides the retry policy used for transient failures.
func (client *Client) SetBackOffFactory(factory func() backoff.BackOff) {
	if factory == nil {
		client.backOffFactory = newDefaultBackOff
		return
	}
	client.backOffFactory = factory
}

// BackOff implementations are stateful; always return a fresh instance.
func newDefaultBackOff() backoff.BackOff {
	exponentialBackOff := backoff.NewExponentialBackOff()
	exponentialBackOff.MaxElapsedTime = retryMaximumElapsedTimeConstant
	return exponentialBackOff
}

func isTransientFailure(executionError error) bool {
	failedError := execshell.CommandFailedError{}
	if !errors.As(executionError, &failedError) {
		return false
	}

	failureText := strings.ToLower(failedError.Result.StandardError + failedError.Result.StandardOutput)
	for _, marker := range transientFailureMarkers {
		if strings.Contains(failureText, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}

func (client *Client) executeWithRetry(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	var executionResult execshell.ExecutionResult

	attempt := func() error {
		attemptResult, attemptError := client.executor.ExecuteGitHubCLI(executionContext, details)
		if attemptError != nil {
			if isTransientFailure(attemptError) {
				return attemptError
			}
			return backoff.Permanent(attemptError)
		}
		executionResult = attemptResult
		return nil
	}

	retryError := backoff.Retry(attempt, backoff.WithContext(client.backOffFactory(), executionContext))
	if retryError != nil {
		return execshell.ExecutionResult{}, retryError
	}

	return executionResult, nil
}

// ResolveRepoMetadata retrieves canonical metadata for a repository using gh repo view.
func (client *Client) ResolveRepoMetadata(executionContext context.Context, repository string) (RepositoryMetadata, error) {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return RepositoryMetadata{}, InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			repoSubcommandConstant,
			viewSubcommandConstant,
			repositoryIdentifier,
			jsonFlagConstant,
			repoViewJSONFieldsConstant,
		},
	}

	executionResult, executionError := client.executeWithRetry(executionContext, commandDetails)
	if executionError != nil {
		return RepositoryMetadata{}, OperationError{Operation: repositoryMetadataOperationNameConstant, Cause: executionError}
	}

	var response struct {
		NameWithOwner    string `json:"nameWithOwner"`
		HasIssuesEnabled bool   `json:"hasIssuesEnabled"`
		DefaultBranchRef struct {
			Name string `json:"name"`
		} `json:"defaultBranchRef"`
	}

	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response)
	if decodingError != nil {
		return RepositoryMetadata{}, ResponseDecodingError{Operation: repositoryMetadataOperationNameConstant, Cause: decodingError}
	}

	return RepositoryMetadata{
		NameWithOwner: response.NameWithOwner,
		DefaultBranch: response.DefaultBranchRef.Name,
		IssuesEnabled: response.HasIssuesEnabled,
	}, nil
}

// CurrentUserLogin resolves the authenticated user's login via gh api user.
func (client *Client) CurrentUserLogin(executionContext context.Context) (string, error) {
	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			apiSubcommandConstant,
			currentUserEndpointConstant,
			acceptHeaderFlagConstant,
			acceptHeaderValueConstant,
		},
	}

	executionResult, executionError := client.executeWithRetry(executionContext, commandDetails)
	if executionError != nil {
		return "", OperationError{Operation: currentUserOperationNameConstant, Cause: executionError}
	}

	var response struct {
		Login string `json:"login"`
	}

	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response)
	if decodingError != nil {
		return "", ResponseDecodingError{Operation: currentUserOperationNameConstant, Cause: decodingError}
	}

	return response.Login, nil
}
