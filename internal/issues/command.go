package issues

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ghoo-cli/ghoo/internal/execshell"
	"github.com/ghoo-cli/ghoo/internal/githubcli"
	"github.com/ghoo-cli/ghoo/internal/utils"
	"github.com/ghoo-cli/ghoo/internal/workflow"
)

const (
	createCommandUseTemplateConstant    = "create-%s <title>"
	createCommandShortTemplateConstant  = "Create a %s in the backlog"
	getCommandUseConstant               = "get <issue-number>"
	getCommandShortConstant             = "Show a managed issue with its sections and sub-issues"
	listCommandUseConstant              = "list"
	listCommandShortConstant            = "List managed issues filtered by type and state"
	flagParentNameConstant              = "parent"
	flagParentDescriptionConstant       = "Issue number of the parent"
	flagTypeNameConstant                = "type"
	flagTypeDescriptionConstant         = "Filter by issue type (epic, task, subtask)"
	flagStateNameConstant               = "state"
	flagStateDescriptionConstant        = "Filter by workflow state"
	createdResultTemplateConstant       = "created %s #%d: %s\n"
	createdLinkNoticeConstant           = "note: native sub-issue link unavailable, body reference used\n"
	getHeaderTemplateConstant           = "#%d [%s/%s] %s\n"
	getSectionTemplateConstant          = "  %s%s\n"
	getSectionTodoTemplateConstant      = " (%d/%d todos)"
	getSubIssuesTemplateConstant        = "sub-issues: %d open, %d closed\n"
	listLineTemplateConstant            = "#%d [%s/%s] %s\n"
	noIssuesMessageConstant             = "no matching issues\n"
	invalidNumberTemplateConstant       = "invalid issue number: %s"
	repositoryUnresolvedMessageConstant = "repository not resolved; use --repo, ghoo.yaml, or run inside a clone"
	emptySectionMarkerConstant          = " (empty)"
)

var errRepositoryNotResolved = errors.New(repositoryUnresolvedMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the issue hierarchy commands.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        workflow.ConfigurationProvider
	GitHubClient                 GitHubOperations
	HumanReadableLoggingProvider workflow.HumanReadableLoggingProvider
	ContextAccessor              utils.CommandContextAccessor
}

// BuildCreateCommand constructs the create command for one issue type.
func (builder *CommandBuilder) BuildCreateCommand(issueType workflow.IssueType) (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   fmt.Sprintf(createCommandUseTemplateConstant, issueType),
		Short: fmt.Sprintf(createCommandShortTemplateConstant, issueType),
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.runCreate(command, arguments, issueType)
		},
	}

	if _, parentNeeded := parentTypeFor(issueType); parentNeeded {
		command.Flags().Int(flagParentNameConstant, 0, flagParentDescriptionConstant)
	}

	return command, nil
}

// BuildGetCommand constructs the get command.
func (builder *CommandBuilder) BuildGetCommand() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   getCommandUseConstant,
		Short: getCommandShortConstant,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.runGet,
	}, nil
}

// BuildListCommand constructs the list command.
func (builder *CommandBuilder) BuildListCommand() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   listCommandUseConstant,
		Short: listCommandShortConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.runList,
	}

	command.Flags().String(flagTypeNameConstant, "", flagTypeDescriptionConstant)
	command.Flags().String(flagStateNameConstant, "", flagStateDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) runCreate(command *cobra.Command, arguments []string, issueType workflow.IssueType) error {
	repository, repositoryError := builder.resolveRepository(command)
	if repositoryError != nil {
		return repositoryError
	}

	parentNumber := 0
	if command.Flags().Lookup(flagParentNameConstant) != nil {
		parentNumber, _ = command.Flags().GetInt(flagParentNameConstant)
	}

	service, serviceError := builder.resolveService()
	if serviceError != nil {
		return serviceError
	}

	result, creationError := service.Create(command.Context(), CreationRequest{
		Repository:   repository,
		IssueType:    issueType,
		Title:        arguments[0],
		ParentNumber: parentNumber,
	})
	if creationError != nil {
		return creationError
	}

	fmt.Fprintf(command.OutOrStdout(), createdResultTemplateConstant, issueType, result.Issue.Number, result.Issue.Title)
	if parentNumber > 0 && !result.SubIssueLinked {
		fmt.Fprint(command.OutOrStdout(), createdLinkNoticeConstant)
	}

	return nil
}

func (builder *CommandBuilder) runGet(command *cobra.Command, arguments []string) error {
	issueNumber, numberError := parseIssueNumber(arguments[0])
	if numberError != nil {
		return numberError
	}

	repository, repositoryError := builder.resolveRepository(command)
	if repositoryError != nil {
		return repositoryError
	}

	service, serviceError := builder.resolveService()
	if serviceError != nil {
		return serviceError
	}

	details, describeError := service.Describe(command.Context(), repository, issueNumber)
	if describeError != nil {
		return describeError
	}

	output := command.OutOrStdout()
	fmt.Fprintf(output, getHeaderTemplateConstant, details.Issue.Number, details.IssueType, details.State, details.Issue.Title)
	for _, sectionSummary := range details.Sections {
		annotation := ""
		if sectionSummary.TodoTotal > 0 {
			annotation = fmt.Sprintf(getSectionTodoTemplateConstant, sectionSummary.TodoChecked, sectionSummary.TodoTotal)
		} else if !sectionSummary.HasContent {
			annotation = emptySectionMarkerConstant
		}
		fmt.Fprintf(output, getSectionTemplateConstant, sectionSummary.Title, annotation)
	}
	if details.SubIssuesAvailable {
		fmt.Fprintf(output, getSubIssuesTemplateConstant, details.SubIssuesOpen, details.SubIssuesClosed)
	}
	fmt.Fprintln(output)
	fmt.Fprint(output, RenderMarkdownForTerminal(details.Issue.Body))

	return nil
}

func (builder *CommandBuilder) runList(command *cobra.Command, arguments []string) error {
	repository, repositoryError := builder.resolveRepository(command)
	if repositoryError != nil {
		return repositoryError
	}

	request := ListRequest{Repository: repository}

	typeValue, _ := command.Flags().GetString(flagTypeNameConstant)
	if len(strings.TrimSpace(typeValue)) > 0 {
		parsedType, typeError := workflow.ParseIssueType(typeValue)
		if typeError != nil {
			return typeError
		}
		request.IssueType = parsedType
	}

	stateValue, _ := command.Flags().GetString(flagStateNameConstant)
	if len(strings.TrimSpace(stateValue)) > 0 {
		parsedState, stateError := workflow.ParseState(stateValue)
		if stateError != nil {
			return stateError
		}
		request.State = parsedState
	}

	service, serviceError := builder.resolveService()
	if serviceError != nil {
		return serviceError
	}

	summaries, listError := service.List(command.Context(), request)
	if listError != nil {
		return listError
	}

	if len(summaries) == 0 {
		fmt.Fprint(command.OutOrStdout(), noIssuesMessageConstant)
		return nil
	}
	for _, summary := range summaries {
		fmt.Fprintf(command.OutOrStdout(), listLineTemplateConstant, summary.Number, summary.IssueType, summary.State, summary.Title)
	}

	return nil
}

func parseIssueNumber(argument string) (int, error) {
	issueNumber, parseError := strconv.Atoi(strings.TrimSpace(argument))
	if parseError != nil || issueNumber <= 0 {
		return 0, fmt.Errorf(invalidNumberTemplateConstant, argument)
	}
	return issueNumber, nil
}

func (builder *CommandBuilder) resolveRepository(command *cobra.Command) (string, error) {
	repository, repositoryAvailable := builder.ContextAccessor.Repository(command.Context())
	if !repositoryAvailable || len(strings.TrimSpace(repository)) == 0 {
		return "", errRepositoryNotResolved
	}
	return repository, nil
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

func (builder *CommandBuilder) resolveConfiguration() workflow.Configuration {
	if builder.ConfigurationProvider == nil {
		return workflow.Configuration{}
	}
	return builder.ConfigurationProvider()
}

func (builder *CommandBuilder) resolveService() (*Service, error) {
	logger := builder.resolveLogger()

	gitHubClient := builder.GitHubClient
	if gitHubClient == nil {
		humanReadableLogging := false
		if builder.HumanReadableLoggingProvider != nil {
			humanReadableLogging = builder.HumanReadableLoggingProvider()
		}

		shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), humanReadableLogging)
		if executorError != nil {
			return nil, executorError
		}

		realClient, clientError := githubcli.NewClient(shellExecutor)
		if clientError != nil {
			return nil, clientError
		}
		gitHubClient = realClient
	}

	return NewService(logger, gitHubClient, builder.resolveConfiguration())
}
