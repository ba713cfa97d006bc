package ciruns

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matthewdeanmartin/repokeeper/internal/execshell"
	"github.com/matthewdeanmartin/repokeeper/internal/repos/dependencies"
	"github.com/matthewdeanmartin/repokeeper/internal/repos/shared"
)

const (
	runsCommandUseConstant        = "runs"
	runsCommandShortConstant      = "Inspect GitHub Actions workflow runs"
	failingCommandUseConstant     = "failing"
	failingCommandShortConstant   = "Report repositories whose most recent workflow run failed"
	cleanupCommandUseConstant     = "cleanup"
	cleanupCommandShortConstant   = "Delete workflow runs created by automated title prefixes"
	rootFlagNameConstant          = "root"
	rootFlagDescriptionConstant   = "Clone root directory to scan"
	dryRunFlagNameConstant        = "dry-run"
	dryRunFlagDescriptionConstant = "List matching runs without deleting them"
	prefixFlagNameConstant        = "title-prefix"
	prefixFlagDescriptionConstant = "Display title prefix selecting runs to delete"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies workflow run settings resolved from configuration.
type ConfigurationProvider func() Configuration

// CommandBuilder assembles the runs command group with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Discoverer            shared.RepositoryDiscoverer
	GitExecutor           shared.GitExecutor
	HostedClient          shared.HostedRepositoryClient
	CommandEventsObserver execshell.CommandEventObserver
}

// Build constructs the runs command group with failing and cleanup subcommands.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	groupCommand := &cobra.Command{
		Use:   runsCommandUseConstant,
		Short: runsCommandShortConstant,
	}

	failingCommand := &cobra.Command{
		Use:   failingCommandUseConstant,
		Short: failingCommandShortConstant,
		RunE: func(command *cobra.Command, arguments []string) error {
			service, configuration, serviceError := builder.resolveService(command)
			if serviceError != nil {
				return serviceError
			}
			return service.RunFailing(command.Context(), configuration)
		},
	}
	failingCommand.Flags().String(rootFlagNameConstant, "", rootFlagDescriptionConstant)

	cleanupCommand := &cobra.Command{
		Use:   cleanupCommandUseConstant,
		Short: cleanupCommandShortConstant,
		RunE: func(command *cobra.Command, arguments []string) error {
			service, configuration, serviceError := builder.resolveService(command)
			if serviceError != nil {
				return serviceError
			}
			return service.RunCleanup(command.Context(), configuration)
		},
	}
	cleanupCommand.Flags().String(rootFlagNameConstant, "", rootFlagDescriptionConstant)
	cleanupCommand.Flags().Bool(dryRunFlagNameConstant, false, dryRunFlagDescriptionConstant)
	cleanupCommand.Flags().String(prefixFlagNameConstant, "", prefixFlagDescriptionConstant)

	groupCommand.AddCommand(failingCommand, cleanupCommand)
	return groupCommand, nil
}

func (builder *CommandBuilder) resolveService(command *cobra.Command) (*Service, Configuration, error) {
	configuration := builder.resolveConfiguration()
	if rootOverride, _ := command.Flags().GetString(rootFlagNameConstant); len(rootOverride) > 0 {
		configuration.Root = rootOverride
	}
	if command.Flags().Changed(dryRunFlagNameConstant) {
		dryRunOverride, _ := command.Flags().GetBool(dryRunFlagNameConstant)
		configuration.DryRun = dryRunOverride
	}
	if prefixOverride, _ := command.Flags().GetString(prefixFlagNameConstant); len(prefixOverride) > 0 {
		configuration.CleanupTitlePrefix = prefixOverride
	}

	logger := resolveLogger(builder.LoggerProvider)

	gitExecutor, executorError := dependencies.ResolveGitExecutor(builder.GitExecutor, logger, builder.CommandEventsObserver)
	if executorError != nil {
		return nil, Configuration{}, executorError
	}

	hostedClient, clientError := dependencies.ResolveHostedRepositoryClient(builder.HostedClient, gitExecutor)
	if clientError != nil {
		return nil, Configuration{}, clientError
	}

	discoverer := dependencies.ResolveRepositoryDiscoverer(builder.Discoverer, logger)

	return NewService(discoverer, hostedClient, command.OutOrStdout(), command.ErrOrStderr()), configuration, nil
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
