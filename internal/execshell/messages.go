package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s %s"
	standardErrorDetailTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
)

const (
	githubAPISubcommandNameConstant      = "api"
	githubGraphQLEndpointNameConstant    = "graphql"
	githubRepoSubcommandNameConstant     = "repo"
	githubRepoViewSubcommandNameConstant = "view"
	gitRemoteSubcommandNameConstant      = "remote"
	gitRemoteGetURLSubcommandConstant    = "get-url"
)

const (
	githubRestStartTemplateConstant              = "Calling GitHub API %s"
	githubRestSuccessTemplateConstant            = "GitHub API %s succeeded"
	githubRestFailureTemplateConstant            = "GitHub API %s failed with exit code %d%s"
	githubRestExecutionFailureTemplateConstant   = "GitHub API %s failed: %s"
	githubGraphQLStartMessageConstant            = "Calling GitHub GraphQL API"
	githubGraphQLSuccessMessageConstant          = "GitHub GraphQL call succeeded"
	githubGraphQLFailureTemplateConstant         = "GitHub GraphQL call failed with exit code %d%s"
	githubGraphQLExecutionFailureTemplate        = "GitHub GraphQL call failed: %s"
	githubRepoViewStartTemplateConstant          = "Retrieving repository details for %s"
	githubRepoViewSuccessTemplateConstant        = "Retrieved repository details for %s"
	githubRepoViewFailureTemplateConstant        = "Failed to retrieve repository details for %s (exit code %d%s)"
	githubRepoViewExecutionFailureTemplate       = "Unable to retrieve repository details for %s: %s"
	gitRemoteLookupStartTemplateConstant         = "Reading %s remote URL"
	gitRemoteLookupSuccessTemplateConstant       = "Read %s remote URL"
	gitRemoteLookupFailureTemplateConstant       = "Failed to read %s remote URL (exit code %d%s)"
	gitRemoteLookupExecutionFailureTemplate      = "Unable to read %s remote URL: %s"
	githubCurrentRepositoryLabelConstant         = "current repository"
	githubRepoViewIdentificationArgumentCountMin = 2
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandGitHub:
		return formatter.describeGitHubMessage(command, result, failure, stage)
	case CommandGit:
		return formatter.describeGitMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitHubMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments

	if len(arguments) >= githubRepoViewIdentificationArgumentCountMin &&
		arguments[0] == githubRepoSubcommandNameConstant && arguments[1] == githubRepoViewSubcommandNameConstant {
		repositoryLabel := githubCurrentRepositoryLabelConstant
		if len(arguments) > githubRepoViewIdentificationArgumentCountMin && !strings.HasPrefix(arguments[2], "-") {
			repositoryLabel = arguments[2]
		}
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(githubRepoViewStartTemplateConstant, repositoryLabel)
		case messageStageSuccess:
			return fmt.Sprintf(githubRepoViewSuccessTemplateConstant, repositoryLabel)
		case messageStageFailure:
			return fmt.Sprintf(githubRepoViewFailureTemplateConstant, repositoryLabel, result.ExitCode, formatter.standardErrorDetail(result))
		default:
			return fmt.Sprintf(githubRepoViewExecutionFailureTemplate, repositoryLabel, formatter.failureDetail(failure))
		}
	}

	if len(arguments) >= githubRepoViewIdentificationArgumentCountMin && arguments[0] == githubAPISubcommandNameConstant {
		if arguments[1] == githubGraphQLEndpointNameConstant {
			switch stage {
			case messageStageStart:
				return githubGraphQLStartMessageConstant
			case messageStageSuccess:
				return githubGraphQLSuccessMessageConstant
			case messageStageFailure:
				return fmt.Sprintf(githubGraphQLFailureTemplateConstant, result.ExitCode, formatter.standardErrorDetail(result))
			default:
				return fmt.Sprintf(githubGraphQLExecutionFailureTemplate, formatter.failureDetail(failure))
			}
		}

		endpoint := arguments[1]
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(githubRestStartTemplateConstant, endpoint)
		case messageStageSuccess:
			return fmt.Sprintf(githubRestSuccessTemplateConstant, endpoint)
		case messageStageFailure:
			return fmt.Sprintf(githubRestFailureTemplateConstant, endpoint, result.ExitCode, formatter.standardErrorDetail(result))
		default:
			return fmt.Sprintf(githubRestExecutionFailureTemplateConstant, endpoint, formatter.failureDetail(failure))
		}
	}

	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments

	if len(arguments) >= 3 && arguments[0] == gitRemoteSubcommandNameConstant && arguments[1] == gitRemoteGetURLSubcommandConstant {
		remoteName := arguments[2]
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitRemoteLookupStartTemplateConstant, remoteName)
		case messageStageSuccess:
			return fmt.Sprintf(gitRemoteLookupSuccessTemplateConstant, remoteName)
		case messageStageFailure:
			return fmt.Sprintf(gitRemoteLookupFailureTemplateConstant, remoteName, result.ExitCode, formatter.standardErrorDetail(result))
		default:
			return fmt.Sprintf(gitRemoteLookupExecutionFailureTemplate, remoteName, formatter.failureDetail(failure))
		}
	}

	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf(commandLabelTemplateConstant, command.Name, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.standardErrorDetail(result))
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.failureDetail(failure))
	}
}

func (formatter CommandMessageFormatter) standardErrorDetail(result ExecutionResult) string {
	trimmedStandardError := strings.TrimSpace(result.StandardError)
	if len(trimmedStandardError) == 0 {
		return ""
	}
	return fmt.Sprintf(standardErrorDetailTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) failureDetail(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}
