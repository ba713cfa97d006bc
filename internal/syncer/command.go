package syncer

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matthewdeanmartin/repokeeper/internal/execshell"
	"github.com/matthewdeanmartin/repokeeper/internal/repos/dependencies"
	"github.com/matthewdeanmartin/repokeeper/internal/repos/shared"
	"github.com/matthewdeanmartin/repokeeper/internal/utils"
)

const (
	pullCommandUseConstant      = "pull"
	pullCommandShortConstant    = "Fetch and pull every repository in the clone root"
	pushCommandUseConstant      = "push"
	pushCommandShortConstant    = "Push repositories that are ahead of their upstream"
	rootFlagNameConstant        = "root"
	rootFlagDescriptionConstant = "Clone root directory to scan"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies synchronization settings resolved from configuration.
type ConfigurationProvider func() Configuration

// CommandBuilder assembles the pull and push cobra commands with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Discoverer            shared.RepositoryDiscoverer
	GitExecutor           shared.GitExecutor
	GitManager            shared.GitRepositoryManager
	CommandEventsObserver execshell.CommandEventObserver
}

// BuildPull constructs the cobra command that fetches and pulls all repositories.
func (builder *CommandBuilder) BuildPull() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   pullCommandUseConstant,
		Short: pullCommandShortConstant,
		RunE: func(command *cobra.Command, arguments []string) error {
			service, configuration, serviceError := builder.resolveService(command)
			if serviceError != nil {
				return serviceError
			}
			return service.RunPull(command.Context(), configuration)
		},
	}

	command.Flags().String(rootFlagNameConstant, "", rootFlagDescriptionConstant)
	return command, nil
}

// BuildPush constructs the cobra command that pushes repositories with unpushed commits.
func (builder *CommandBuilder) BuildPush() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   pushCommandUseConstant,
		Short: pushCommandShortConstant,
		RunE: func(command *cobra.Command, arguments []string) error {
			service, configuration, serviceError := builder.resolveService(command)
			if serviceError != nil {
				return serviceError
			}
			return service.RunPush(command.Context(), configuration)
		},
	}

	command.Flags().String(rootFlagNameConstant, "", rootFlagDescriptionConstant)
	return command, nil
}

func (builder *CommandBuilder) resolveService(command *cobra.Command) (*Service, Configuration, error) {
	configuration := builder.resolveConfiguration()
	if rootOverride, _ := command.Flags().GetString(rootFlagNameConstant); len(rootOverride) > 0 {
		configuration.Root = rootOverride
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

	outputWriter := utils.NewFlushingWriter(command.OutOrStdout())
	errorWriter := utils.NewFlushingWriter(command.ErrOrStderr())

	return NewService(discoverer, gitManager, outputWriter, errorWriter), configuration, nil
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
