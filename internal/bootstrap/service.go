package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ghoo-cli/ghoo/internal/githubcli"
	"github.com/ghoo-cli/ghoo/internal/workflow"
)

const (
	bootstrapLoggerRequiredMessageConstant = "bootstrap service requires a logger"
	bootstrapClientRequiredMessageConstant = "bootstrap service requires a GitHub client"

	issuesDisabledMessageTemplateConstant      = "issues are disabled on %s; enable them before running init"
	labelFailuresMessageTemplateConstant       = "%d label(s) could not be ensured: %s"
	configurationWriteMessageTemplateConstant  = "could not write %s: %w"
	configurationEncodeMessageTemplateConstant = "could not encode configuration: %w"

	defaultConfigurationFileNameConstant = "ghoo.yaml"
	configurationFileModeConstant        = 0o644

	labelEnsuredMessageConstant      = "label ensured"
	configurationKeptMessageConstant = "configuration file already present; left untouched"
	labelNameFieldConstant           = "label"
	repositoryFieldConstant          = "repository"
	configurationPathFieldConstant   = "path"
)

// Service validation sentinels.
var (
	ErrBootstrapLoggerRequired = errors.New(bootstrapLoggerRequiredMessageConstant)
	ErrBootstrapClientRequired = errors.New(bootstrapClientRequiredMessageConstant)
)

// IssuesDisabledError reports a repository with the issue tracker turned off.
type IssuesDisabledError struct {
	Repository string
}

// Error describes the disabled tracker.
func (disabledError IssuesDisabledError) Error() string {
	return fmt.Sprintf(issuesDisabledMessageTemplateConstant, disabledError.Repository)
}

// LabelFailure pairs a label name with the error that prevented ensuring it.
type LabelFailure struct {
	LabelName string
	Cause     error
}

// LabelFailuresError aggregates every label that could not be ensured.
type LabelFailuresError struct {
	Failures []LabelFailure
}

// Error lists the failed labels.
func (failuresError LabelFailuresError) Error() string {
	failedNames := make([]string, 0, len(failuresError.Failures))
	for _, failure := range failuresError.Failures {
		failedNames = append(failedNames, failure.LabelName)
	}
	return fmt.Sprintf(labelFailuresMessageTemplateConstant, len(failuresError.Failures), strings.Join(failedNames, ", "))
}

// GitHubOperations captures the GitHub access bootstrap needs.
type GitHubOperations interface {
	ResolveRepoMetadata(executionContext context.Context, repository string) (githubcli.RepositoryMetadata, error)
	EnsureLabel(executionContext context.Context, repository string, label githubcli.Label) error
}

// InitializationRequest identifies the repository and configuration target.
type InitializationRequest struct {
	Repository            string
	ConfigurationFilePath string
}

// InitializationResult reports what init accomplished. Labels already in
// place count as ensured; partial label failure does not roll back.
type InitializationResult struct {
	LabelsEnsured           int
	ConfigurationScaffolded bool
	ConfigurationFilePath   string
}

// Service prepares repositories for the managed workflow.
type Service struct {
	logger       *zap.Logger
	gitHubClient GitHubOperations
}

// NewService validates its dependencies and builds a bootstrap service.
func NewService(logger *zap.Logger, gitHubClient GitHubOperations) (*Service, error) {
	if logger == nil {
		return nil, ErrBootstrapLoggerRequired
	}
	if gitHubClient == nil {
		return nil, ErrBootstrapClientRequired
	}

	return &Service{logger: logger, gitHubClient: gitHubClient}, nil
}

// Initialize ensures the workflow labels exist and scaffolds ghoo.yaml. Label
// failures are collected and reported together after every label is tried.
func (service *Service) Initialize(executionContext context.Context, request InitializationRequest) (InitializationResult, error) {
	metadata, metadataError := service.gitHubClient.ResolveRepoMetadata(executionContext, request.Repository)
	if metadataError != nil {
		return InitializationResult{}, metadataError
	}
	if !metadata.IssuesEnabled {
		return InitializationResult{}, IssuesDisabledError{Repository: request.Repository}
	}

	result := InitializationResult{}
	var labelFailures []LabelFailure
	for _, label := range WorkflowLabels() {
		ensureError := service.gitHubClient.EnsureLabel(executionContext, request.Repository, label)
		if ensureError != nil {
			labelFailures = append(labelFailures, LabelFailure{LabelName: label.Name, Cause: ensureError})
			continue
		}
		result.LabelsEnsured++
		service.logger.Debug(labelEnsuredMessageConstant,
			zap.String(repositoryFieldConstant, request.Repository),
			zap.String(labelNameFieldConstant, label.Name),
		)
	}

	scaffolded, scaffoldPath, scaffoldError := service.scaffoldConfiguration(request)
	if scaffoldError != nil {
		return result, scaffoldError
	}
	result.ConfigurationScaffolded = scaffolded
	result.ConfigurationFilePath = scaffoldPath

	if len(labelFailures) > 0 {
		return result, LabelFailuresError{Failures: labelFailures}
	}

	return result, nil
}

func (service *Service) scaffoldConfiguration(request InitializationRequest) (bool, string, error) {
	configurationFilePath := strings.TrimSpace(request.ConfigurationFilePath)
	if len(configurationFilePath) == 0 {
		configurationFilePath = defaultConfigurationFileNameConstant
	}

	if _, statError := os.Stat(configurationFilePath); statError == nil {
		service.logger.Info(configurationKeptMessageConstant,
			zap.String(configurationPathFieldConstant, configurationFilePath),
		)
		return false, configurationFilePath, nil
	}

	defaultSections := map[string][]string{}
	for issueType, sectionTitles := range workflow.DefaultRequiredSections() {
		defaultSections[string(issueType)] = sectionTitles
	}

	configuration := workflow.Configuration{
		Repository:       request.Repository,
		StatusMethod:     workflow.StatusMethodLabelsConstant,
		RequiredSections: defaultSections,
	}

	encodedConfiguration, encodeError := yaml.Marshal(configuration)
	if encodeError != nil {
		return false, configurationFilePath, fmt.Errorf(configurationEncodeMessageTemplateConstant, encodeError)
	}

	writeError := os.WriteFile(configurationFilePath, encodedConfiguration, configurationFileModeConstant)
	if writeError != nil {
		return false, configurationFilePath, fmt.Errorf(configurationWriteMessageTemplateConstant, configurationFilePath, writeError)
	}

	return true, configurationFilePath, nil
}
