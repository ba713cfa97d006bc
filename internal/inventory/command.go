package inventory

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matthewdeanmartin/repokeeper/internal/execshell"
	"github.com/matthewdeanmartin/repokeeper/internal/repos/dependencies"
	"github.com/matthewdeanmartin/repokeeper/internal/repos/discovery"
	"github.com/matthewdeanmartin/repokeeper/internal/repos/shared"
)

const (
	orphansCommandUseConstant        = "orphans"
	orphansCommandShortConstant      = "Report subdirectories of the clone root that are not git repositories"
	abandonedCommandUseConstant      = "abandoned"
	abandonedCommandShortConstant    = "Report repositories with fewer commits than the threshold"
	rootFlagNameConstant             = "root"
	rootFlagDescriptionConstant      = "Clone root directory to scan"
	thresholdFlagNameConstant        = "threshold"
	thresholdFlagDescriptionConstant = "Commit count below which a repository is reported"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies inventory scan settings resolved from configuration.
type ConfigurationProvider func() Configuration

// CommandBuilder assembles the orphans and abandoned commands with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Discoverer            shared.RepositoryDiscoverer
	GitExecutor           shared.GitExecutor
	GitManager            shared.GitRepositoryManager
	Verifier              WorktreeVerifier
	CommandEventsObserver execshell.CommandEventObserver
}

// BuildOrphans constructs the cobra command reporting non-git directories.
func (builder *CommandBuilder) BuildOrphans() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   orphansCommandUseConstant,
		Short: orphansCommandShortConstant,
		RunE: func(command *cobra.Command, arguments []string) error {
			service, configuration, serviceError := builder.resolveService(command)
			if serviceError != nil {
				return serviceError
			}
			return service.RunOrphans(command.Context(), configuration)
		},
	}
	command.Flags().String(rootFlagNameConstant, "", rootFlagDescriptionConstant)
	return command, nil
}

// BuildAbandoned constructs the cobra command reporting short-history repositories.
func (builder *CommandBuilder) BuildAbandoned() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   abandonedCommandUseConstant,
		Short: abandonedCommandShortConstant,
		RunE: func(command *cobra.Command, arguments []string) error {
			service, configuration, serviceError := builder.resolveService(command)
			if serviceError != nil {
				return serviceError
			}
			return service.RunAbandoned(command.Context(), configuration)
		},
	}
	command.Flags().String(rootFlagNameConstant, "", rootFlagDescriptionConstant)
	command.Flags().Int(thresholdFlagNameConstant, 0, thresholdFlagDescriptionConstant)
	return command, nil
}

func (builder *CommandBuilder) resolveService(command *cobra.Command) (*Service, Configuration, error) {
	configuration := builder.resolveConfiguration()
	if rootOverride, _ := command.Flags().GetString(rootFlagNameConstant); len(rootOverride) > 0 {
		configuration.Root = rootOverride
	}
	if command.Flags().Changed(thresholdFlagNameConstant) {
		thresholdOverride, _ := command.Flags().GetInt(thresholdFlagNameConstant)
		configuration.CommitThreshold = thresholdOverride
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

	verifier := builder.Verifier
	if verifier == nil {
		verifier = discovery.NewWorktreeVerifier(gitExecutor)
	}

	discoverer := dependencies.ResolveRepositoryDiscoverer(builder.Discoverer, logger)

	return NewService(discoverer, verifier, gitManager, command.OutOrStdout(), command.ErrOrStderr()), configuration, nil
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
