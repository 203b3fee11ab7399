package bootstrap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ghoo-cli/ghoo/internal/execshell"
	"github.com/ghoo-cli/ghoo/internal/githubcli"
	"github.com/ghoo-cli/ghoo/internal/utils"
	"github.com/ghoo-cli/ghoo/internal/workflow"
)

const (
	commandUseConstant              = "init"
	commandShortDescriptionConstant = "Create workflow labels and scaffold ghoo.yaml"

	flagConfigOutputNameConstant        = "config-output"
	flagConfigOutputDescriptionConstant = "Path of the configuration file to scaffold"

	repositoryUnresolvedMessageConstant = "repository not resolved; use --repo, ghoo.yaml, or run inside a clone"
	labelsEnsuredTemplateConstant       = "%d label(s) ensured\n"
	configurationWrittenTemplate        = "configuration scaffolded at %s\n"
	configurationKeptTemplate           = "configuration already present at %s\n"
)

var errRepositoryNotResolved = errors.New(repositoryUnresolvedMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the init command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	GitHubClient                 GitHubOperations
	HumanReadableLoggingProvider workflow.HumanReadableLoggingProvider
	ContextAccessor              utils.CommandContextAccessor
}

// Build constructs the init command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	command.Flags().String(flagConfigOutputNameConstant, defaultConfigurationFileNameConstant, flagConfigOutputDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	repository, repositoryAvailable := builder.ContextAccessor.Repository(command.Context())
	if !repositoryAvailable || len(strings.TrimSpace(repository)) == 0 {
		return errRepositoryNotResolved
	}

	configurationFilePath, _ := command.Flags().GetString(flagConfigOutputNameConstant)

	logger := builder.resolveLogger()
	gitHubClient, clientError := builder.resolveGitHubClient(logger)
	if clientError != nil {
		return clientError
	}

	service, serviceError := NewService(logger, gitHubClient)
	if serviceError != nil {
		return serviceError
	}

	result, initializationError := service.Initialize(command.Context(), InitializationRequest{
		Repository:            repository,
		ConfigurationFilePath: configurationFilePath,
	})
	if initializationError != nil && result.LabelsEnsured == 0 && !result.ConfigurationScaffolded {
		return initializationError
	}

	fmt.Fprintf(command.OutOrStdout(), labelsEnsuredTemplateConstant, result.LabelsEnsured)
	if result.ConfigurationScaffolded {
		fmt.Fprintf(command.OutOrStdout(), configurationWrittenTemplate, result.ConfigurationFilePath)
	} else if len(result.ConfigurationFilePath) > 0 {
		fmt.Fprintf(command.OutOrStdout(), configurationKeptTemplate, result.ConfigurationFilePath)
	}

	return initializationError
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (builder *CommandBuilder) resolveGitHubClient(logger *zap.Logger) (GitHubOperations, error) {
	if builder.GitHubClient != nil {
		return builder.GitHubClient, nil
	}

	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}

	shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), humanReadableLogging)
	if executorError != nil {
		return nil, executorError
	}

	gitHubClient, clientError := githubcli.NewClient(shellExecutor)
	if clientError != nil {
		return nil, clientError
	}

	return gitHubClient, nil
}
