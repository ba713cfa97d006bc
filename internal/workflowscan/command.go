package workflowscan

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matthewdeanmartin/repokeeper/internal/execshell"
	"github.com/matthewdeanmartin/repokeeper/internal/repos/dependencies"
	"github.com/matthewdeanmartin/repokeeper/internal/repos/discovery"
	"github.com/matthewdeanmartin/repokeeper/internal/repos/shared"
)

const (
	workflowsCommandUseConstant   = "workflows"
	workflowsCommandShortConstant = "Report workflow files pinned to python versions below 3.14"
	rootFlagNameConstant          = "root"
	rootFlagDescriptionConstant   = "Clone root directory to scan"
	parserFlagNameConstant        = "parser"
	parserFlagDescriptionConstant = "Workflow parser to use (line or yaml)"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies workflow scan settings resolved from configuration.
type ConfigurationProvider func() Configuration

// CommandBuilder assembles the workflows command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Discoverer            shared.RepositoryDiscoverer
	GitExecutor           shared.GitExecutor
	Verifier              WorktreeVerifier
	Extractor             VersionExtractor
	CommandEventsObserver execshell.CommandEventObserver
}

// Build constructs the workflows command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	workflowsCommand := &cobra.Command{
		Use:   workflowsCommandUseConstant,
		Short: workflowsCommandShortConstant,
		RunE: func(command *cobra.Command, arguments []string) error {
			service, configuration, serviceError := builder.resolveService(command)
			if serviceError != nil {
				return serviceError
			}
			return service.Run(command.Context(), configuration)
		},
	}
	workflowsCommand.Flags().String(rootFlagNameConstant, "", rootFlagDescriptionConstant)
	workflowsCommand.Flags().String(parserFlagNameConstant, "", parserFlagDescriptionConstant)
	return workflowsCommand, nil
}

func (builder *CommandBuilder) resolveService(command *cobra.Command) (*Service, Configuration, error) {
	configuration := builder.resolveConfiguration()
	if rootOverride, _ := command.Flags().GetString(rootFlagNameConstant); len(rootOverride) > 0 {
		configuration.Root = rootOverride
	}
	if parserOverride, _ := command.Flags().GetString(parserFlagNameConstant); len(parserOverride) > 0 {
		configuration.Parser = parserOverride
	}

	logger := resolveLogger(builder.LoggerProvider)

	gitExecutor, executorError := dependencies.ResolveGitExecutor(builder.GitExecutor, logger, builder.CommandEventsObserver)
	if executorError != nil {
		return nil, Configuration{}, executorError
	}

	verifier := builder.Verifier
	if verifier == nil {
		verifier = discovery.NewWorktreeVerifier(gitExecutor)
	}

	extractor := builder.Extractor
	if extractor == nil {
		extractor = ExtractorForParser(configuration.Parser)
	}

	discoverer := dependencies.ResolveRepositoryDiscoverer(builder.Discoverer, logger)

	return NewService(discoverer, verifier, extractor, command.OutOrStdout()), configuration, nil
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
