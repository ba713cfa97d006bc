package pypi

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	pypiCommandUseConstant            = "pypi"
	pypiCommandShortConstant          = "Report which of a user's PyPI projects declare Python 3.14 support"
	usernameFlagNameConstant          = "username"
	usernameFlagDescriptionConstant   = "PyPI account whose projects are checked"
	maxWorkersFlagNameConstant        = "max-workers"
	maxWorkersFlagDescriptionConstant = "Concurrency for JSON reads"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies PyPI check settings resolved from configuration.
type ConfigurationProvider func() Configuration

// CommandBuilder assembles the pypi command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Client                MetadataClient
}

// Build constructs the pypi command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	pypiCommand := &cobra.Command{
		Use:   pypiCommandUseConstant,
		Short: pypiCommandShortConstant,
		RunE: func(command *cobra.Command, arguments []string) error {
			service, configuration := builder.resolveService(command)
			return service.Run(command.Context(), configuration)
		},
	}
	pypiCommand.Flags().String(usernameFlagNameConstant, "", usernameFlagDescriptionConstant)
	pypiCommand.Flags().Int(maxWorkersFlagNameConstant, 0, maxWorkersFlagDescriptionConstant)
	return pypiCommand, nil
}

func (builder *CommandBuilder) resolveService(command *cobra.Command) (*Service, Configuration) {
	configuration := builder.resolveConfiguration()
	if usernameOverride, _ := command.Flags().GetString(usernameFlagNameConstant); len(usernameOverride) > 0 {
		configuration.Username = usernameOverride
	}
	if command.Flags().Changed(maxWorkersFlagNameConstant) {
		workersOverride, _ := command.Flags().GetInt(maxWorkersFlagNameConstant)
		configuration.MaxWorkers = workersOverride
	}

	client := builder.Client
	if client == nil {
		client = NewClient(configuration.baseURLOrDefault())
	}

	return NewService(client, command.OutOrStdout()), configuration
}

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	if builder.ConfigurationProvider == nil {
		return DefaultConfiguration()
	}
	return builder.ConfigurationProvider()
}
