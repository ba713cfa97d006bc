package hosted

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matthewdeanmartin/repokeeper/internal/execshell"
	"github.com/matthewdeanmartin/repokeeper/internal/repos/dependencies"
	"github.com/matthewdeanmartin/repokeeper/internal/repos/discovery"
	"github.com/matthewdeanmartin/repokeeper/internal/repos/shared"
)

const (
	forksCommandUseConstant      = "forks"
	forksCommandShortConstant    = "Report local clones that are forks of another user's repository"
	unclonedCommandUseConstant   = "uncloned"
	unclonedCommandShortConstant = "Report owner repositories with no local clone"
	archivedCommandUseConstant   = "archived"
	archivedCommandShortConstant = "Report local clones of archived GitHub repositories"
	rootFlagNameConstant         = "root"
	rootFlagDescriptionConstant  = "Clone root directory to scan"
	ownerFlagNameConstant        = "owner"
	ownerFlagDescriptionConstant = "GitHub account the clones are compared against"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies hosted comparison settings resolved from configuration.
type ConfigurationProvider func() Configuration

// CommandBuilder assembles the forks, uncloned, and archived commands with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Discoverer            shared.RepositoryDiscoverer
	GitExecutor           shared.GitExecutor
	GitManager            shared.GitRepositoryManager
	HostedClient          shared.HostedRepositoryClient
	Verifier              WorktreeVerifier
	CommandEventsObserver execshell.CommandEventObserver
}

// BuildForks constructs the cobra command reporting forks of other users.
func (builder *CommandBuilder) BuildForks() (*cobra.Command, error) {
	return builder.buildCommand(forksCommandUseConstant, forksCommandShortConstant, (*Service).RunForks), nil
}

// BuildUncloned constructs the cobra command reporting repositories missing locally.
func (builder *CommandBuilder) BuildUncloned() (*cobra.Command, error) {
	return builder.buildCommand(unclonedCommandUseConstant, unclonedCommandShortConstant, (*Service).RunUncloned), nil
}

// BuildArchived constructs the cobra command reporting archived clones.
func (builder *CommandBuilder) BuildArchived() (*cobra.Command, error) {
	return builder.buildCommand(archivedCommandUseConstant, archivedCommandShortConstant, (*Service).RunArchived), nil
}

type serviceRunner func(service *Service, executionContext context.Context, configuration Configuration) error

func (builder *CommandBuilder) buildCommand(use string, short string, run serviceRunner) *cobra.Command {
	command := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(command *cobra.Command, arguments []string) error {
			service, configuration, serviceError := builder.resolveService(command)
			if serviceError != nil {
				return serviceError
			}
			return run(service, command.Context(), configuration)
		},
	}
	command.Flags().String(rootFlagNameConstant, "", rootFlagDescriptionConstant)
	command.Flags().String(ownerFlagNameConstant, "", ownerFlagDescriptionConstant)
	return command
}

func (builder *CommandBuilder) resolveService(command *cobra.Command) (*Service, Configuration, error) {
	configuration := builder.resolveConfiguration()
	if rootOverride, _ := command.Flags().GetString(rootFlagNameConstant); len(rootOverride) > 0 {
		configuration.Root = rootOverride
	}
	if ownerOverride, _ := command.Flags().GetString(ownerFlagNameConstant); len(ownerOverride) > 0 {
		configuration.Owner = ownerOverride
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

	hostedClient, clientError := dependencies.ResolveHostedRepositoryClient(builder.HostedClient, gitExecutor)
	if clientError != nil {
		return nil, Configuration{}, clientError
	}

	verifier := builder.Verifier
	if verifier == nil {
		verifier = discovery.NewWorktreeVerifier(gitExecutor)
	}

	discoverer := dependencies.ResolveRepositoryDiscoverer(builder.Discoverer, logger)

	return NewService(discoverer, verifier, gitManager, hostedClient, command.OutOrStdout()), configuration, nil
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
