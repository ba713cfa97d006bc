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
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	defaultWorkingDirectoryLabelConstant    = "current directory"
)

const (
	gitRevParseSubcommandNameConstant = "rev-parse"
	gitWorkTreeFlagConstant           = "--is-inside-work-tree"
	gitStatusSubcommandNameConstant   = "status"
	gitRevListSubcommandNameConstant  = "rev-list"
	gitRemoteSubcommandNameConstant   = "remote"
	gitFetchSubcommandNameConstant    = "fetch"
	gitPullSubcommandNameConstant     = "pull"
	gitPushSubcommandNameConstant     = "push"
)

const (
	gitWorkTreeStartTemplateConstant            = "Analyzing repository at %s"
	gitWorkTreeSuccessTemplateConstant          = "%s is a Git repository"
	gitWorkTreeFailureTemplateConstant          = "Could not confirm %s is a Git repository (exit code %d%s)"
	gitWorkTreeExecutionFailureTemplateConstant = "Could not analyze %s: %s"
	gitStatusStartTemplateConstant              = "Reviewing working tree status in %s"
	gitStatusSuccessTemplateConstant            = "Collected working tree status for %s"
	gitStatusFailureTemplateConstant            = "Failed to review working tree status in %s (exit code %d%s)"
	gitStatusExecutionFailureTemplateConstant   = "Unable to review working tree status in %s: %s"
	gitRevListStartTemplateConstant             = "Counting commits in %s"
	gitRevListSuccessTemplateConstant           = "Counted commits in %s"
	gitRevListFailureTemplateConstant           = "Failed to count commits in %s (exit code %d%s)"
	gitRevListExecutionFailureTemplateConstant  = "Unable to count commits in %s: %s"
	gitRemoteStartTemplateConstant              = "Checking remotes for %s"
	gitRemoteSuccessTemplateConstant            = "Read remote configuration for %s"
	gitRemoteFailureTemplateConstant            = "Failed to read remote configuration for %s (exit code %d%s)"
	gitRemoteExecutionFailureTemplateConstant   = "Unable to read remote configuration for %s: %s"
	gitFetchStartTemplateConstant               = "Fetching remotes in %s"
	gitFetchSuccessTemplateConstant             = "Fetched remotes in %s"
	gitFetchFailureTemplateConstant             = "Failed to fetch remotes in %s (exit code %d%s)"
	gitFetchExecutionFailureTemplateConstant    = "Unable to fetch remotes in %s: %s"
	gitPullStartTemplateConstant                = "Pulling current branch in %s"
	gitPullSuccessTemplateConstant              = "Pulled current branch in %s"
	gitPullFailureTemplateConstant              = "Failed to pull current branch in %s (exit code %d%s)"
	gitPullExecutionFailureTemplateConstant     = "Unable to pull current branch in %s: %s"
	gitPushStartTemplateConstant                = "Pushing current branch from %s"
	gitPushSuccessTemplateConstant              = "Pushed current branch from %s"
	gitPushFailureTemplateConstant              = "Failed to push current branch from %s (exit code %d%s)"
	gitPushExecutionFailureTemplateConstant     = "Unable to push current branch from %s: %s"
)

const (
	githubRunSubcommandNameConstant                 = "run"
	githubRepoSubcommandNameConstant                = "repo"
	githubListSubcommandNameConstant                = "list"
	githubViewSubcommandNameConstant                = "view"
	githubDeleteSubcommandNameConstant              = "delete"
	githubAPISubcommandNameConstant                 = "api"
	githubRunListStartTemplateConstant              = "Listing workflow runs for %s"
	githubRunListSuccessTemplateConstant            = "Listed workflow runs for %s"
	githubRunListFailureTemplateConstant            = "Failed to list workflow runs for %s (exit code %d%s)"
	githubRunListExecutionFailureTemplateConstant   = "Unable to list workflow runs for %s: %s"
	githubRunDeleteStartTemplateConstant            = "Deleting workflow run %s in %s"
	githubRunDeleteSuccessTemplateConstant          = "Deleted workflow run %s in %s"
	githubRunDeleteFailureTemplateConstant          = "Failed to delete workflow run %s in %s (exit code %d%s)"
	githubRunDeleteExecutionFailureTemplateConstant = "Unable to delete workflow run %s in %s: %s"
	githubRepoViewStartTemplateConstant             = "Retrieving repository details for %s"
	githubRepoViewSuccessTemplateConstant           = "Retrieved repository details for %s"
	githubRepoViewFailureTemplateConstant           = "Failed to retrieve repository details for %s (exit code %d%s)"
	githubRepoViewExecutionFailureTemplateConstant  = "Unable to retrieve repository details for %s: %s"
	githubRepoListStartTemplateConstant             = "Listing repositories for %s"
	githubRepoListSuccessTemplateConstant           = "Listed repositories for %s"
	githubRepoListFailureTemplateConstant           = "Failed to list repositories for %s (exit code %d%s)"
	githubRepoListExecutionFailureTemplateConstant  = "Unable to list repositories for %s: %s"
	githubAPIStartTemplateConstant                  = "Calling GitHub API endpoint %s"
	githubAPISuccessTemplateConstant                = "Called GitHub API endpoint %s"
	githubAPIFailureTemplateConstant                = "Failed to call GitHub API endpoint %s (exit code %d%s)"
	githubAPIExecutionFailureTemplateConstant       = "Unable to call GitHub API endpoint %s: %s"
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
	case CommandGit:
		return formatter.describeGitMessage(command, result, failure, stage)
	case CommandGitHub:
		return formatter.describeGitHubMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	workingDirectory := formatter.describeWorkingDirectory(command)
	subcommand := strings.TrimSpace(command.Details.Arguments[0])

	switch subcommand {
	case gitRevParseSubcommandNameConstant:
		if containsArgument(command.Details.Arguments, gitWorkTreeFlagConstant) {
			return formatter.applyStage(stage, result, failure,
				fmt.Sprintf(gitWorkTreeStartTemplateConstant, workingDirectory),
				fmt.Sprintf(gitWorkTreeSuccessTemplateConstant, workingDirectory),
				gitWorkTreeFailureTemplateConstant,
				gitWorkTreeExecutionFailureTemplateConstant,
				workingDirectory,
			)
		}
		return formatter.buildGenericMessage(command, result, failure, stage)
	case gitStatusSubcommandNameConstant:
		return formatter.applyStage(stage, result, failure,
			fmt.Sprintf(gitStatusStartTemplateConstant, workingDirectory),
			fmt.Sprintf(gitStatusSuccessTemplateConstant, workingDirectory),
			gitStatusFailureTemplateConstant,
			gitStatusExecutionFailureTemplateConstant,
			workingDirectory,
		)
	case gitRevListSubcommandNameConstant:
		return formatter.applyStage(stage, result, failure,
			fmt.Sprintf(gitRevListStartTemplateConstant, workingDirectory),
			fmt.Sprintf(gitRevListSuccessTemplateConstant, workingDirectory),
			gitRevListFailureTemplateConstant,
			gitRevListExecutionFailureTemplateConstant,
			workingDirectory,
		)
	case gitRemoteSubcommandNameConstant:
		return formatter.applyStage(stage, result, failure,
			fmt.Sprintf(gitRemoteStartTemplateConstant, workingDirectory),
			fmt.Sprintf(gitRemoteSuccessTemplateConstant, workingDirectory),
			gitRemoteFailureTemplateConstant,
			gitRemoteExecutionFailureTemplateConstant,
			workingDirectory,
		)
	case gitFetchSubcommandNameConstant:
		return formatter.applyStage(stage, result, failure,
			fmt.Sprintf(gitFetchStartTemplateConstant, workingDirectory),
			fmt.Sprintf(gitFetchSuccessTemplateConstant, workingDirectory),
			gitFetchFailureTemplateConstant,
			gitFetchExecutionFailureTemplateConstant,
			workingDirectory,
		)
	case gitPullSubcommandNameConstant:
		return formatter.applyStage(stage, result, failure,
			fmt.Sprintf(gitPullStartTemplateConstant, workingDirectory),
			fmt.Sprintf(gitPullSuccessTemplateConstant, workingDirectory),
			gitPullFailureTemplateConstant,
			gitPullExecutionFailureTemplateConstant,
			workingDirectory,
		)
	case gitPushSubcommandNameConstant:
		return formatter.applyStage(stage, result, failure,
			fmt.Sprintf(gitPushStartTemplateConstant, workingDirectory),
			fmt.Sprintf(gitPushSuccessTemplateConstant, workingDirectory),
			gitPushFailureTemplateConstant,
			gitPushExecutionFailureTemplateConstant,
			workingDirectory,
		)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitHubMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	workingDirectory := formatter.describeWorkingDirectory(command)
	subcommand := strings.TrimSpace(arguments[0])

	switch subcommand {
	case githubRunSubcommandNameConstant:
		if len(arguments) > 1 && strings.TrimSpace(arguments[1]) == githubDeleteSubcommandNameConstant {
			runIdentifier := formatter.argumentAtIndex(arguments, 2)
			switch stage {
			case messageStageStart:
				return fmt.Sprintf(githubRunDeleteStartTemplateConstant, runIdentifier, workingDirectory)
			case messageStageSuccess:
				return fmt.Sprintf(githubRunDeleteSuccessTemplateConstant, runIdentifier, workingDirectory)
			case messageStageFailure:
				return fmt.Sprintf(githubRunDeleteFailureTemplateConstant, runIdentifier, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
			default:
				return fmt.Sprintf(githubRunDeleteExecutionFailureTemplateConstant, runIdentifier, workingDirectory, formatter.describeFailure(failure))
			}
		}
		return formatter.applyStage(stage, result, failure,
			fmt.Sprintf(githubRunListStartTemplateConstant, workingDirectory),
			fmt.Sprintf(githubRunListSuccessTemplateConstant, workingDirectory),
			githubRunListFailureTemplateConstant,
			githubRunListExecutionFailureTemplateConstant,
			workingDirectory,
		)
	case githubRepoSubcommandNameConstant:
		target := formatter.argumentAtIndex(arguments, 2)
		if len(target) == 0 {
			target = workingDirectory
		}
		if len(arguments) > 1 && strings.TrimSpace(arguments[1]) == githubViewSubcommandNameConstant {
			return formatter.applyStage(stage, result, failure,
				fmt.Sprintf(githubRepoViewStartTemplateConstant, target),
				fmt.Sprintf(githubRepoViewSuccessTemplateConstant, target),
				githubRepoViewFailureTemplateConstant,
				githubRepoViewExecutionFailureTemplateConstant,
				target,
			)
		}
		if len(arguments) > 1 && strings.TrimSpace(arguments[1]) == githubListSubcommandNameConstant {
			return formatter.applyStage(stage, result, failure,
				fmt.Sprintf(githubRepoListStartTemplateConstant, target),
				fmt.Sprintf(githubRepoListSuccessTemplateConstant, target),
				githubRepoListFailureTemplateConstant,
				githubRepoListExecutionFailureTemplateConstant,
				target,
			)
		}
		return formatter.buildGenericMessage(command, result, failure, stage)
	case githubAPISubcommandNameConstant:
		endpoint := formatter.argumentAtIndex(arguments, 1)
		return formatter.applyStage(stage, result, failure,
			fmt.Sprintf(githubAPIStartTemplateConstant, endpoint),
			fmt.Sprintf(githubAPISuccessTemplateConstant, endpoint),
			githubAPIFailureTemplateConstant,
			githubAPIExecutionFailureTemplateConstant,
			endpoint,
		)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) applyStage(stage messageStage, result ExecutionResult, failure error, startMessage string, successMessage string, failureTemplate string, executionFailureTemplate string, subject string) string {
	switch stage {
	case messageStageStart:
		return startMessage
	case messageStageSuccess:
		return successMessage
	case messageStageFailure:
		return fmt.Sprintf(failureTemplate, subject, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(executionFailureTemplate, subject, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	label := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		label = label + commandArgumentsJoinSeparatorConstant + strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant)
	}
	return fmt.Sprintf(commandLabelTemplateConstant, label, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	if len(command.Details.WorkingDirectory) == 0 {
		return ""
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, command.Details.WorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmed := strings.TrimSpace(standardError)
	if len(trimmed) == 0 {
		return ""
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmed)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	if len(command.Details.WorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return command.Details.WorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index >= len(arguments) {
		return ""
	}
	return strings.TrimSpace(arguments[index])
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}
