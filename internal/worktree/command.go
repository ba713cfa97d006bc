package worktree

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matthewdeanmartin/repokeeper/internal/execshell"
	"github.com/matthewdeanmartin/repokeeper/internal/repos/dependencies"
	"github.com/matthewdeanmartin/repokeeper/internal/repos/shared"
)

const (
	strandedCommandUseConstant         = "stranded"
	strandedCommandShortConstant       = "Report repositories with uncommitted or unpushed work"
	strandedCommandLongConstant        = "Scans immediate subdirectories of the clone root for git repositories with uncommitted changes or commits not yet pushed to their upstream."
	changesCommandUseConstant          = "changes"
	changesCommandShortConstant        = "List repositories with uncommitted local changes"
	changesCommandLongConstant         = "Lists git repositories whose worktrees contain changes that `git add -A` would pick up. Exits non-zero when any repository is dirty."
	rootFlagNameConstant               = "root"
	rootFlagDescriptionConstant        = "Clone root directory to scan"
	verboseFlagNameConstant            = "verbose"
	verboseFlagShorthandConstant       = "v"
	strandedVerboseDescriptionConstant = "Also list clean repositories and non-git directories"
	changesVerboseDescriptionConstant  = "Also list clean repositories"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies worktree scan settings resolved from configuration.
type ConfigurationProvider func() Configuration

// CommandBuilder assembles the stranded and changes cobra commands with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Discoverer            shared.RepositoryDiscoverer
	GitExecutor           shared.GitExecutor
	GitManager            shared.GitRepositoryManager
	CommandEventsObserver execshell.CommandEventObserver
}

// BuildStranded constructs the cobra command reporting stranded work.
func (builder *CommandBuilder) BuildStranded() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   strandedCommandUseConstant,
		Short: strandedCommandShortConstant,
		Long:  strandedCommandLongConstant,
		RunE: func(command *cobra.Command, arguments []string) error {
			service, configuration, serviceError := builder.resolveService(command)
			if serviceError != nil {
				return serviceError
			}
			return service.RunStranded(command.Context(), configuration)
		},
	}

	command.Flags().String(rootFlagNameConstant, "", rootFlagDescriptionConstant)
	command.Flags().BoolP(verboseFlagNameConstant, verboseFlagShorthandConstant, false, strandedVerboseDescriptionConstant)

	return command, nil
}

// BuildChanges constructs the cobra command listing dirty worktrees.
func (builder *CommandBuilder) BuildChanges() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   changesCommandUseConstant,
		Short: changesCommandShortConstant,
		Long:  changesCommandLongConstant,
		RunE: func(command *cobra.Command, arguments []string) error {
			service, configuration, serviceError := builder.resolveService(command)
			if serviceError != nil {
				return serviceError
			}
			return service.RunChanges(command.Context(), configuration)
		},
	}

	command.Flags().String(rootFlagNameConstant, "", rootFlagDescriptionConstant)
	command.Flags().BoolP(verboseFlagNameConstant, verboseFlagShorthandConstant, false, changesVerboseDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) resolveService(command *cobra.Command) (*Service, Configuration, error) {
	configuration := builder.resolveConfiguration()
	if rootOverride, _ := command.Flags().GetString(rootFlagNameConstant); len(rootOverride) > 0 {
		configuration.Root = rootOverride
	}
	if command.Flags().Changed(verboseFlagNameConstant) {
		verboseOverride, _ := command.Flags().GetBool(verboseFlagNameConstant)
		configuration.Verbose = verboseOverride
	}

	logger := resolveLogger(builder.LoggerProvider)

	gitExecutor, executorError := dependencies.ResolveGitExecutor(builder.GitExecutor, logger, builder.CommandEventsObserver)
	if executorError != nil {
		return nil, Configuration{}, executorError
	}

	gitManager, managerError := dependencies.ResolveGitRepositoryManager(builder.GitManager, gitExecutor)
	if managerError != nil {
		return nil, Configuration{}, managerError
	}

	discoverer := dependencies.ResolveRepositoryDiscoverer(builder.Discoverer, logger)

	return NewService(discoverer, gitManager, command.OutOrStdout(), command.ErrOrStderr()), configuration, nil
}

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	if builder.ConfigurationProvider == nil {
		return DefaultConfiguration()
	}
	return builder.ConfigurationProvider()
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
