package pyenv

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matthewdeanmartin/repokeeper/internal/execshell"
	"github.com/matthewdeanmartin/repokeeper/internal/repos/dependencies"
	"github.com/matthewdeanmartin/repokeeper/internal/repos/discovery"
	"github.com/matthewdeanmartin/repokeeper/internal/repos/shared"
)

const (
	venvsCommandUseConstant     = "venvs"
	venvsCommandShortConstant   = "Report virtual environments not running Python 3.14"
	poetryCommandUseConstant    = "poetry"
	poetryCommandShortConstant  = "Report repositories still managed by Poetry"
	rootFlagNameConstant        = "root"
	rootFlagDescriptionConstant = "Clone root directory to scan"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies Python environment scan settings resolved from configuration.
type ConfigurationProvider func() Configuration

// CommandBuilder assembles the venvs and poetry commands with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Discoverer            shared.RepositoryDiscoverer
	GitExecutor           shared.GitExecutor
	Verifier              WorktreeVerifier
	Prober                VersionProber
	CommandEventsObserver execshell.CommandEventObserver
}

// BuildVenvs constructs the cobra command probing venv interpreter versions.
func (builder *CommandBuilder) BuildVenvs() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   venvsCommandUseConstant,
		Short: venvsCommandShortConstant,
		RunE: func(command *cobra.Command, arguments []string) error {
			service, configuration, serviceError := builder.resolveService(command)
			if serviceError != nil {
				return serviceError
			}
			return service.RunVenvs(command.Context(), configuration)
		},
	}
	command.Flags().String(rootFlagNameConstant, "", rootFlagDescriptionConstant)
	return command, nil
}

// BuildPoetry constructs the cobra command reporting Poetry repositories.
func (builder *CommandBuilder) BuildPoetry() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   poetryCommandUseConstant,
		Short: poetryCommandShortConstant,
		RunE: func(command *cobra.Command, arguments []string) error {
			service, configuration, serviceError := builder.resolveService(command)
			if serviceError != nil {
				return serviceError
			}
			return service.RunPoetry(command.Context(), configuration)
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

	verifier := builder.Verifier
	if verifier == nil {
		verifier = discovery.NewWorktreeVerifier(gitExecutor)
	}

	prober := builder.Prober
	if prober == nil {
		shellExecutor, isShellExecutor := gitExecutor.(ProgramExecutor)
		if !isShellExecutor {
			return nil, Configuration{}, execshell.ErrCommandRunnerNotConfigured
		}
		prober = NewInterpreterProber(shellExecutor)
	}

	discoverer := dependencies.ResolveRepositoryDiscoverer(builder.Discoverer, logger)

	return NewService(discoverer, verifier, prober, command.OutOrStdout()), configuration, nil
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
