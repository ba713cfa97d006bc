package cloneprotocol

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matthewdeanmartin/repokeeper/internal/execshell"
	"github.com/matthewdeanmartin/repokeeper/internal/repos/dependencies"
	"github.com/matthewdeanmartin/repokeeper/internal/repos/shared"
)

const (
	protocolCommandUseConstant      = "protocol"
	protocolCommandShortConstant    = "Group local clones by the scheme of their origin remote"
	rootFlagNameConstant            = "root"
	rootFlagDescriptionConstant     = "Clone root directory to scan"
	showURLsFlagNameConstant        = "show-urls"
	showURLsFlagDescriptionConstant = "Print the origin URL next to each repository"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies protocol scan settings resolved from configuration.
type ConfigurationProvider func() Configuration

// CommandBuilder assembles the protocol command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Discoverer            shared.RepositoryDiscoverer
	GitExecutor           shared.GitExecutor
	GitManager            shared.GitRepositoryManager
	CommandEventsObserver execshell.CommandEventObserver
}

// Build constructs the protocol command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	protocolCommand := &cobra.Command{
		Use:   protocolCommandUseConstant,
		Short: protocolCommandShortConstant,
		RunE: func(command *cobra.Command, arguments []string) error {
			service, configuration, serviceError := builder.resolveService(command)
			if serviceError != nil {
				return serviceError
			}
			return service.Run(command.Context(), configuration)
		},
	}
	protocolCommand.Flags().String(rootFlagNameConstant, "", rootFlagDescriptionConstant)
	protocolCommand.Flags().Bool(showURLsFlagNameConstant, false, showURLsFlagDescriptionConstant)
	return protocolCommand, nil
}

func (builder *CommandBuilder) resolveService(command *cobra.Command) (*Service, Configuration, error) {
	configuration := builder.resolveConfiguration()
	if rootOverride, _ := command.Flags().GetString(rootFlagNameConstant); len(rootOverride) > 0 {
		configuration.Root = rootOverride
	}
	if command.Flags().Changed(showURLsFlagNameConstant) {
		showURLsOverride, _ := command.Flags().GetBool(showURLsFlagNameConstant)
		configuration.ShowURLs = showURLsOverride
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

	return NewService(discoverer, gitManager, command.OutOrStdout()), configuration, nil
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
