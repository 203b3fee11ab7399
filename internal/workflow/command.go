package workflow

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
)

const (
	transitionUseTemplateConstant      = "%s <issue-number>"
	flagMessageNameConstant            = "message"
	flagMessageDescriptionConstant     = "Message recorded in the transition log entry"
	invalidIssueNumberTemplateConstant = "invalid issue number: %s"
	repositoryMissingMessageConstant   = "repository not resolved; use --repo, ghoo.yaml, or run inside a clone"
	transitionResultTemplateConstant   = "#%d: %s → %s\n"
	commentFallbackNoticeConstant      = "note: body update failed, log entry posted as a comment\n"
	issueClosedNoticeTemplateConstant  = "issue #%d closed\n"
)

var errRepositoryNotResolved = errors.New(repositoryMissingMessageConstant)

var transitionShortDescriptions = map[TransitionName]string{
	TransitionStartPlan:      "Move a backlog issue into planning",
	TransitionSubmitPlan:     "Submit a plan for approval",
	TransitionApprovePlan:    "Approve a submitted plan",
	TransitionRequestChanges: "Send a submitted plan back to planning",
	TransitionStartWork:      "Start work on an approved plan",
	TransitionSubmitWork:     "Submit completed work for approval",
	TransitionApproveWork:    "Approve completed work and close the issue",
	TransitionRejectWork:     "Send submitted work back to in-progress",
}

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the workflow configuration.
type ConfigurationProvider func() Configuration

// HumanReadableLoggingProvider reports whether console-style messages are active.
type HumanReadableLoggingProvider func() bool

// TransitionCommandBuilder assembles the Cobra command for one workflow transition.
type TransitionCommandBuilder struct {
	TransitionName               TransitionName
	LoggerProvider               LoggerProvider
	ConfigurationProvider        ConfigurationProvider
	GitHubClient                 GitHubOperations
	HumanReadableLoggingProvider HumanReadableLoggingProvider
	ContextAccessor              utils.CommandContextAccessor
}

// Build constructs the transition command.
func (builder *TransitionCommandBuilder) Build() (*cobra.Command, error) {
	transition, transitionFound := LookupTransition(builder.TransitionName)
	if !transitionFound {
		return nil, UnknownTransitionError{Name: builder.TransitionName}
	}

	command := &cobra.Command{
		Use:   fmt.Sprintf(transitionUseTemplateConstant, transition.Name),
		Short: transitionShortDescriptions[transition.Name],
		Args:  cobra.ExactArgs(1),
		RunE:  builder.run,
	}

	command.Flags().String(flagMessageNameConstant, "", flagMessageDescriptionConstant)

	return command, nil
}

func (builder *TransitionCommandBuilder) run(command *cobra.Command, arguments []string) error {
	issueNumber, numberError := strconv.Atoi(strings.TrimSpace(arguments[0]))
	if numberError != nil || issueNumber <= 0 {
		return fmt.Errorf(invalidIssueNumberTemplateConstant, arguments[0])
	}

	repository, repositoryAvailable := builder.ContextAccessor.Repository(command.Context())
	if !repositoryAvailable || len(strings.TrimSpace(repository)) == 0 {
		return errRepositoryNotResolved
	}

	messageValue, _ := command.Flags().GetString(flagMessageNameConstant)

	logger := builder.resolveLogger()
	gitHubClient, clientError := builder.resolveGitHubClient(logger)
	if clientError != nil {
		return clientError
	}

	engine, engineError := NewEngine(logger, gitHubClient, builder.resolveConfiguration())
	if engineError != nil {
		return engineError
	}

	outcome, transitionError := engine.ExecuteTransition(command.Context(), TransitionRequest{
		Repository:  repository,
		IssueNumber: issueNumber,
		Transition:  builder.TransitionName,
		Message:     messageValue,
	})
	if transitionError != nil {
		return transitionError
	}

	fmt.Fprintf(command.OutOrStdout(), transitionResultTemplateConstant, issueNumber, outcome.FromState, outcome.ToState)
	if outcome.LogRecordedAsComment {
		fmt.Fprint(command.OutOrStdout(), commentFallbackNoticeConstant)
	}
	if outcome.IssueClosed {
		fmt.Fprintf(command.OutOrStdout(), issueClosedNoticeTemplateConstant, issueNumber)
	}

	return nil
}

func (builder *TransitionCommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (builder *TransitionCommandBuilder) resolveConfiguration() Configuration {
	if builder.ConfigurationProvider == nil {
		return Configuration{}
	}
	return builder.ConfigurationProvider()
}

func (builder *TransitionCommandBuilder) resolveGitHubClient(logger *zap.Logger) (GitHubOperations, error) {
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
