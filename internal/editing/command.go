package editing

import (
	"errors"
	"fmt"
	"io"
	"os"
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
	setBodyUseConstant       = "set-body <issue-number>"
	setBodyShortConstant     = "Replace the body of an issue"
	createSectionUseConstant = "create-section <issue-number> <title>"
	createSectionShort       = "Add an empty section to an issue body"
	updateSectionUseConstant = "update-section <issue-number> <title>"
	updateSectionShort       = "Replace the content of a body section"
	createTodoUseConstant    = "create-todo <issue-number> <section> <text>"
	createTodoShortConstant  = "Add an unchecked todo to a section"
	checkTodoUseConstant     = "check-todo <issue-number> <section> <text>"
	checkTodoShortConstant   = "Check a todo item"
	uncheckTodoUseConstant   = "uncheck-todo <issue-number> <section> <text>"
	uncheckTodoShortConstant = "Uncheck a todo item"

	flagBodyNameConstant            = "body"
	flagBodyDescriptionConstant     = "Body text; mutually exclusive with --body-file"
	flagBodyFileNameConstant        = "body-file"
	flagBodyFileDescriptionConstant = "File to read the body from; - reads standard input"
	flagContentNameConstant         = "content"
	flagContentDescription          = "Section content; mutually exclusive with --content-file"
	flagContentFileNameConstant     = "content-file"
	flagContentFileDescription      = "File to read section content from; - reads standard input"

	stdinFileNameConstant = "-"

	invalidNumberTemplateConstant       = "invalid issue number: %s"
	repositoryUnresolvedMessageConstant = "repository not resolved; use --repo, ghoo.yaml, or run inside a clone"
	conflictingInputMessageConstant     = "provide the text either inline or from a file, not both"
	editDoneTemplateConstant            = "issue #%d updated\n"
)

var (
	errRepositoryNotResolved = errors.New(repositoryUnresolvedMessageConstant)
	errConflictingInput      = errors.New(conflictingInputMessageConstant)
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the body editing commands.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	GitHubClient                 GitHubOperations
	HumanReadableLoggingProvider workflow.HumanReadableLoggingProvider
	ContextAccessor              utils.CommandContextAccessor
}

// BuildSetBodyCommand constructs the set-body command.
func (builder *CommandBuilder) BuildSetBodyCommand() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   setBodyUseConstant,
		Short: setBodyShortConstant,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.runSetBody,
	}

	command.Flags().String(flagBodyNameConstant, "", flagBodyDescriptionConstant)
	command.Flags().String(flagBodyFileNameConstant, "", flagBodyFileDescriptionConstant)

	return command, nil
}

// BuildCreateSectionCommand constructs the create-section command.
func (builder *CommandBuilder) BuildCreateSectionCommand() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   createSectionUseConstant,
		Short: createSectionShort,
		Args:  cobra.ExactArgs(2),
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.runSectionEdit(command, arguments[0], func(service *Service, repository string, issueNumber int) error {
				return service.CreateSection(command.Context(), repository, issueNumber, arguments[1])
			})
		},
	}, nil
}

// BuildUpdateSectionCommand constructs the update-section command.
func (builder *CommandBuilder) BuildUpdateSectionCommand() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   updateSectionUseConstant,
		Short: updateSectionShort,
		Args:  cobra.ExactArgs(2),
		RunE: func(command *cobra.Command, arguments []string) error {
			content, contentError := builder.readTextInput(command, flagContentNameConstant, flagContentFileNameConstant)
			if contentError != nil {
				return contentError
			}
			return builder.runSectionEdit(command, arguments[0], func(service *Service, repository string, issueNumber int) error {
				return service.UpdateSection(command.Context(), repository, issueNumber, arguments[1], content)
			})
		},
	}

	command.Flags().String(flagContentNameConstant, "", flagContentDescription)
	command.Flags().String(flagContentFileNameConstant, "", flagContentFileDescription)

	return command, nil
}

// BuildCreateTodoCommand constructs the create-todo command.
func (builder *CommandBuilder) BuildCreateTodoCommand() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   createTodoUseConstant,
		Short: createTodoShortConstant,
		Args:  cobra.ExactArgs(3),
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.runSectionEdit(command, arguments[0], func(service *Service, repository string, issueNumber int) error {
				return service.CreateTodo(command.Context(), repository, issueNumber, arguments[1], arguments[2])
			})
		},
	}, nil
}

// BuildCheckTodoCommand constructs the check-todo command.
func (builder *CommandBuilder) BuildCheckTodoCommand() (*cobra.Command, error) {
	return builder.buildTodoToggleCommand(checkTodoUseConstant, checkTodoShortConstant, true), nil
}

// BuildUncheckTodoCommand constructs the uncheck-todo command.
func (builder *CommandBuilder) BuildUncheckTodoCommand() (*cobra.Command, error) {
	return builder.buildTodoToggleCommand(uncheckTodoUseConstant, uncheckTodoShortConstant, false), nil
}

func (builder *CommandBuilder) buildTodoToggleCommand(use string, short string, checked bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(3),
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.runSectionEdit(command, arguments[0], func(service *Service, repository string, issueNumber int) error {
				return service.SetTodoChecked(command.Context(), repository, issueNumber, arguments[1], arguments[2], checked)
			})
		},
	}
}

func (builder *CommandBuilder) runSetBody(command *cobra.Command, arguments []string) error {
	body, bodyError := builder.readTextInput(command, flagBodyNameConstant, flagBodyFileNameConstant)
	if bodyError != nil {
		return bodyError
	}

	return builder.runSectionEdit(command, arguments[0], func(service *Service, repository string, issueNumber int) error {
		return service.SetBody(command.Context(), repository, issueNumber, body)
	})
}

func (builder *CommandBuilder) runSectionEdit(command *cobra.Command, numberArgument string, edit func(*Service, string, int) error) error {
	issueNumber, numberError := strconv.Atoi(strings.TrimSpace(numberArgument))
	if numberError != nil || issueNumber <= 0 {
		return fmt.Errorf(invalidNumberTemplateConstant, numberArgument)
	}

	repository, repositoryAvailable := builder.ContextAccessor.Repository(command.Context())
	if !repositoryAvailable || len(strings.TrimSpace(repository)) == 0 {
		return errRepositoryNotResolved
	}

	service, serviceError := builder.resolveService()
	if serviceError != nil {
		return serviceError
	}

	if editError := edit(service, repository, issueNumber); editError != nil {
		return editError
	}

	fmt.Fprintf(command.OutOrStdout(), editDoneTemplateConstant, issueNumber)
	return nil
}

// readTextInput resolves text from an inline flag, a file flag, or standard
// input when neither flag is set.
func (builder *CommandBuilder) readTextInput(command *cobra.Command, inlineFlagName string, fileFlagName string) (string, error) {
	inlineValue, _ := command.Flags().GetString(inlineFlagName)
	fileValue, _ := command.Flags().GetString(fileFlagName)

	if len(inlineValue) > 0 && len(fileValue) > 0 {
		return "", errConflictingInput
	}
	if len(inlineValue) > 0 {
		return inlineValue, nil
	}

	if len(fileValue) > 0 && fileValue != stdinFileNameConstant {
		fileContent, readError := os.ReadFile(fileValue)
		if readError != nil {
			return "", readError
		}
		return string(fileContent), nil
	}

	streamContent, readError := io.ReadAll(command.InOrStdin())
	if readError != nil {
		return "", readError
	}
	return string(streamContent), nil
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

	return NewService(logger, gitHubClient)
}
