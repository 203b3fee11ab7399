package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/ghoo-cli/ghoo/internal/bootstrap"
	"github.com/ghoo-cli/ghoo/internal/editing"
	"github.com/ghoo-cli/ghoo/internal/execshell"
	"github.com/ghoo-cli/ghoo/internal/gitrepo"
	"github.com/ghoo-cli/ghoo/internal/issues"
	"github.com/ghoo-cli/ghoo/internal/utils"
	"github.com/ghoo-cli/ghoo/internal/workflow"
)

const (
	applicationNameConstant             = "ghoo"
	applicationShortDescriptionConstant = "GitHub-issue Agile workflow manager"
	applicationLongDescriptionConstant  = "ghoo manages an Agile workflow on GitHub issues: epics, tasks, and sub-tasks with status labels, required body sections, todo checklists, and an auditable transition log."

	configFileFlagNameConstant  = "config"
	configFileFlagUsageConstant = "Optional path to a configuration file (YAML)."
	logLevelFlagNameConstant    = "log-level"
	logLevelFlagUsageConstant   = "Override the configured log level."
	logFormatFlagNameConstant   = "log-format"
	logFormatFlagUsageConstant  = "Override the configured log format (structured or console)."
	repositoryFlagNameConstant  = "repo"
	repositoryFlagUsageConstant = "Repository as owner/name; overrides ghoo.yaml and the origin remote."

	environmentPrefixConstant              = "GHOO"
	configurationNameConstant              = "ghoo"
	configurationTypeConstant              = "yaml"
	defaultConfigurationSearchPathConstant = "."
	logLevelConfigKeyConstant              = "log_level"
	logFormatConfigKeyConstant             = "log_format"

	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	repositoryResolvedMessageConstant       = "repository resolved"
	repositoryFieldConstant                 = "repository"
	repositorySourceFieldConstant           = "source"

	repositorySourceFlagConstant          = "flag"
	repositorySourceConfigurationConstant = "configuration"
	repositorySourceGitRemoteConstant     = "git_remote"

	configurationLoadErrorTemplateConstant = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant    = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant        = "unable to flush logger: %w"
	loggerNotInitializedMessageConstant    = "logger not initialized"

	rootCommandInfoMessageConstant = "ghoo CLI executed"
	logFieldCommandNameConstant    = "command_name"
	logFieldArgumentCountConstant  = "argument_count"

	originRemoteNameConstant          = "origin"
	gitRemoteSubcommandConstant       = "remote"
	gitRemoteGetURLSubcommandConstant = "get-url"
)

// ApplicationConfiguration is the persisted ghoo.yaml shape plus logging keys.
type ApplicationConfiguration struct {
	LogLevel  string                 `mapstructure:"log_level"`
	LogFormat string                 `mapstructure:"log_format"`
	Workflow  workflow.Configuration `mapstructure:",squash"`
}

// Application wires the Cobra root command, configuration loader, structured
// logger, and repository resolution.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	repositoryFlagValue    string
	commandContextAccessor utils.CommandContextAccessor
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant},
	)

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.repositoryFlagValue, repositoryFlagNameConstant, "", repositoryFlagUsageConstant)

	application.registerCommands(cobraCommand)
	application.rootCommand = cobraCommand

	return application
}

func (application *Application) registerCommands(rootCommand *cobra.Command) {
	loggerProvider := func() *zap.Logger {
		return application.logger
	}
	workflowConfigurationProvider := func() workflow.Configuration {
		return application.configuration.Workflow
	}

	initBuilder := bootstrap.CommandBuilder{
		LoggerProvider:               bootstrap.LoggerProvider(loggerProvider),
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ContextAccessor:              application.commandContextAccessor,
	}
	if initCommand, buildError := initBuilder.Build(); buildError == nil {
		rootCommand.AddCommand(initCommand)
	}

	for _, transition := range workflow.AllTransitions() {
		transitionBuilder := workflow.TransitionCommandBuilder{
			TransitionName:               transition.Name,
			LoggerProvider:               workflow.LoggerProvider(loggerProvider),
			ConfigurationProvider:        workflowConfigurationProvider,
			HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
			ContextAccessor:              application.commandContextAccessor,
		}
		if transitionCommand, buildError := transitionBuilder.Build(); buildError == nil {
			rootCommand.AddCommand(transitionCommand)
		}
	}

	issueBuilder := issues.CommandBuilder{
		LoggerProvider:               issues.LoggerProvider(loggerProvider),
		ConfigurationProvider:        workflowConfigurationProvider,
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ContextAccessor:              application.commandContextAccessor,
	}
	for _, issueType := range workflow.AllIssueTypes() {
		if createCommand, buildError := issueBuilder.BuildCreateCommand(issueType); buildError == nil {
			rootCommand.AddCommand(createCommand)
		}
	}
	if getCommand, buildError := issueBuilder.BuildGetCommand(); buildError == nil {
		rootCommand.AddCommand(getCommand)
	}
	if listCommand, buildError := issueBuilder.BuildListCommand(); buildError == nil {
		rootCommand.AddCommand(listCommand)
	}

	editingBuilder := editing.CommandBuilder{
		LoggerProvider:               editing.LoggerProvider(loggerProvider),
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ContextAccessor:              application.commandContextAccessor,
	}
	editingBuilds := []func() (*cobra.Command, error){
		editingBuilder.BuildSetBodyCommand,
		editingBuilder.BuildCreateSectionCommand,
		editingBuilder.BuildUpdateSectionCommand,
		editingBuilder.BuildCreateTodoCommand,
		editingBuilder.BuildCheckTodoCommand,
		editingBuilder.BuildUncheckTodoCommand,
	}
	for _, buildCommand := range editingBuilds {
		if editingCommand, buildError := buildCommand(); buildError == nil {
			rootCommand.AddCommand(editingCommand)
		}
	}
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		logLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		logFormatConfigKeyConstant: string(utils.LogFormatStructured),
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.LogLevel = application.logLevelFlagValue
	}
	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.LogFormat = application.logFormatFlagValue
	}

	createdLogger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.LogLevel),
		utils.LogFormat(application.configuration.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = createdLogger

	if configurationError := application.configuration.Workflow.Validate(); configurationError != nil {
		return configurationError
	}

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
		command.Context(),
		application.configurationMetadata.ConfigFileUsed,
	)

	if repository, repositorySource := application.resolveRepository(updatedContext); len(repository) > 0 {
		application.logger.Debug(
			repositoryResolvedMessageConstant,
			zap.String(repositoryFieldConstant, repository),
			zap.String(repositorySourceFieldConstant, repositorySource),
		)
		updatedContext = application.commandContextAccessor.WithRepository(updatedContext, repository)
	}

	command.SetContext(updatedContext)
	if rootCommand := command.Root(); rootCommand != nil {
		rootCommand.SetContext(updatedContext)
	}

	return nil
}

// resolveRepository picks the repository from the --repo flag, ghoo.yaml, or
// the origin remote of the current clone, in that order.
func (application *Application) resolveRepository(executionContext context.Context) (string, string) {
	if flagRepository := strings.TrimSpace(application.repositoryFlagValue); len(flagRepository) > 0 {
		return flagRepository, repositorySourceFlagConstant
	}

	if configuredRepository := strings.TrimSpace(application.configuration.Workflow.Repository); len(configuredRepository) > 0 {
		return configuredRepository, repositorySourceConfigurationConstant
	}

	if remoteRepository := application.repositoryFromOriginRemote(executionContext); len(remoteRepository) > 0 {
		return remoteRepository, repositorySourceGitRemoteConstant
	}

	return "", ""
}

func (application *Application) repositoryFromOriginRemote(executionContext context.Context) string {
	shellExecutor, executorError := execshell.NewShellExecutor(application.logger, execshell.NewOSCommandRunner(), application.humanReadableLoggingEnabled())
	if executorError != nil {
		return ""
	}

	executionResult, executionError := shellExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments: []string{gitRemoteSubcommandConstant, gitRemoteGetURLSubcommandConstant, originRemoteNameConstant},
	})
	if executionError != nil {
		return ""
	}

	remoteURL, parseError := gitrepo.ParseRemoteURL(strings.TrimSpace(executionResult.StandardOutput))
	if parseError != nil {
		return ""
	}

	return remoteURL.OwnerRepository()
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	application.logger.Debug(
		rootCommandInfoMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Int(logFieldArgumentCountConstant, len(arguments)),
	)

	return command.Help()
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
