package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/matthewdeanmartin/repokeeper/internal/ciruns"
	"github.com/matthewdeanmartin/repokeeper/internal/cloneprotocol"
	"github.com/matthewdeanmartin/repokeeper/internal/hosted"
	"github.com/matthewdeanmartin/repokeeper/internal/inventory"
	"github.com/matthewdeanmartin/repokeeper/internal/pyenv"
	"github.com/matthewdeanmartin/repokeeper/internal/pypi"
	"github.com/matthewdeanmartin/repokeeper/internal/repos/shared"
	"github.com/matthewdeanmartin/repokeeper/internal/syncer"
	"github.com/matthewdeanmartin/repokeeper/internal/utils"
	"github.com/matthewdeanmartin/repokeeper/internal/workflowscan"
	"github.com/matthewdeanmartin/repokeeper/internal/worktree"
)

const (
	applicationCommandUseConstant            = "repokeeper"
	applicationCommandShortConstant          = "Audit a folder of git clones and the accounts behind them"
	applicationCommandLongConstant           = "repokeeper inspects every git clone under a root directory for stranded work, remote drift, CI health, and Python toolchain state."
	configurationFileFlagNameConstant        = "config"
	configurationFileFlagDescriptionConstant = "Path to the configuration file"
	logLevelFlagNameConstant                 = "log-level"
	logLevelFlagDescriptionConstant          = "Log level (debug, info, warn, error)"
	logFormatFlagNameConstant                = "log-format"
	logFormatFlagDescriptionConstant         = "Log output format (structured, console)"
	configurationNameConstant                = "config"
	configurationTypeConstant                = "yaml"
	environmentPrefixConstant                = "REPOKEEPER"
	configurationSearchPathConstant          = "."
	logLevelConfigurationKeyConstant         = "common.log_level"
	logFormatConfigurationKeyConstant        = "common.log_format"
	configurationInitializedMessageConstant  = "configuration initialized"
	logLevelFieldNameConstant                = "log_level"
	logFormatFieldNameConstant               = "log_format"
	configFileFieldNameConstant              = "config_file"
	rootCommandHelpMessageConstant           = "no subcommand provided; showing help"
	loggerFlushErrorTemplateConstant         = "unable to flush logger: %w"
)

// ApplicationCommonConfiguration captures settings shared by every command.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationToolsConfiguration groups per-command settings under the tools configuration key.
type ApplicationToolsConfiguration struct {
	Stranded  worktree.Configuration      `mapstructure:"stranded"`
	Changes   worktree.Configuration      `mapstructure:"changes"`
	Pull      syncer.Configuration        `mapstructure:"pull"`
	Push      syncer.Configuration        `mapstructure:"push"`
	Runs      ciruns.Configuration        `mapstructure:"runs"`
	Protocol  cloneprotocol.Configuration `mapstructure:"protocol"`
	Orphans   inventory.Configuration     `mapstructure:"orphans"`
	Abandoned inventory.Configuration     `mapstructure:"abandoned"`
	Forks     hosted.Configuration        `mapstructure:"forks"`
	Uncloned  hosted.Configuration        `mapstructure:"uncloned"`
	Archived  hosted.Configuration        `mapstructure:"archived"`
	Workflows workflowscan.Configuration  `mapstructure:"workflows"`
	Pypi      pypi.Configuration          `mapstructure:"pypi"`
	Venvs     pyenv.Configuration         `mapstructure:"venvs"`
	Poetry    pyenv.Configuration         `mapstructure:"poetry"`
}

// ApplicationConfiguration aggregates the complete configuration document.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Tools  ApplicationToolsConfiguration  `mapstructure:"tools"`
}

// Application wires the cobra command tree, configuration loading, and logging together.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	commandContextAccessor utils.CommandContextAccessor
}

// NewApplication constructs the application with every command registered.
func NewApplication() *Application {
	application := &Application{
		configurationLoader: utils.NewConfigurationLoader(
			configurationNameConstant,
			configurationTypeConstant,
			environmentPrefixConstant,
			[]string{configurationSearchPathConstant},
		),
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
	}

	application.rootCommand = &cobra.Command{
		Use:               applicationCommandUseConstant,
		Short:             applicationCommandShortConstant,
		Long:              applicationCommandLongConstant,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: application.initializeConfiguration,
		RunE:              application.runRootCommand,
	}
	application.rootCommand.SetContext(context.Background())

	persistentFlags := application.rootCommand.PersistentFlags()
	persistentFlags.StringVar(&application.configurationFilePath, configurationFileFlagNameConstant, "", configurationFileFlagDescriptionConstant)
	persistentFlags.StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagDescriptionConstant)
	persistentFlags.StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagDescriptionConstant)

	application.registerCommands()

	return application
}

func (application *Application) registerCommands() {
	loggerProvider := func() *zap.Logger {
		return application.logger
	}

	strandedBuilder := &worktree.CommandBuilder{
		LoggerProvider: loggerProvider,
		ConfigurationProvider: func() worktree.Configuration {
			return application.configuration.Tools.Stranded
		},
	}
	if strandedCommand, builderError := strandedBuilder.BuildStranded(); builderError == nil {
		application.rootCommand.AddCommand(strandedCommand)
	}

	changesBuilder := &worktree.CommandBuilder{
		LoggerProvider: loggerProvider,
		ConfigurationProvider: func() worktree.Configuration {
			return application.configuration.Tools.Changes
		},
	}
	if changesCommand, builderError := changesBuilder.BuildChanges(); builderError == nil {
		application.rootCommand.AddCommand(changesCommand)
	}

	commandEchoObserver := shared.NewCommandReportingObserver(shared.NewWriterReporter(os.Stderr))

	pullBuilder := &syncer.CommandBuilder{
		LoggerProvider: loggerProvider,
		ConfigurationProvider: func() syncer.Configuration {
			return application.configuration.Tools.Pull
		},
		CommandEventsObserver: commandEchoObserver,
	}
	if pullCommand, builderError := pullBuilder.BuildPull(); builderError == nil {
		application.rootCommand.AddCommand(pullCommand)
	}

	pushBuilder := &syncer.CommandBuilder{
		LoggerProvider: loggerProvider,
		ConfigurationProvider: func() syncer.Configuration {
			return application.configuration.Tools.Push
		},
		CommandEventsObserver: commandEchoObserver,
	}
	if pushCommand, builderError := pushBuilder.BuildPush(); builderError == nil {
		application.rootCommand.AddCommand(pushCommand)
	}

	runsBuilder := &ciruns.CommandBuilder{
		LoggerProvider: loggerProvider,
		ConfigurationProvider: func() ciruns.Configuration {
			return application.configuration.Tools.Runs
		},
	}
	if runsCommand, builderError := runsBuilder.Build(); builderError == nil {
		application.rootCommand.AddCommand(runsCommand)
	}

	protocolBuilder := &cloneprotocol.CommandBuilder{
		LoggerProvider: loggerProvider,
		ConfigurationProvider: func() cloneprotocol.Configuration {
			return application.configuration.Tools.Protocol
		},
	}
	if protocolCommand, builderError := protocolBuilder.Build(); builderError == nil {
		application.rootCommand.AddCommand(protocolCommand)
	}

	orphansBuilder := &inventory.CommandBuilder{
		LoggerProvider: loggerProvider,
		ConfigurationProvider: func() inventory.Configuration {
			return application.configuration.Tools.Orphans
		},
	}
	if orphansCommand, builderError := orphansBuilder.BuildOrphans(); builderError == nil {
		application.rootCommand.AddCommand(orphansCommand)
	}

	abandonedBuilder := &inventory.CommandBuilder{
		LoggerProvider: loggerProvider,
		ConfigurationProvider: func() inventory.Configuration {
			return application.configuration.Tools.Abandoned
		},
	}
	if abandonedCommand, builderError := abandonedBuilder.BuildAbandoned(); builderError == nil {
		application.rootCommand.AddCommand(abandonedCommand)
	}

	forksBuilder := &hosted.CommandBuilder{
		LoggerProvider: loggerProvider,
		ConfigurationProvider: func() hosted.Configuration {
			return application.configuration.Tools.Forks
		},
	}
	if forksCommand, builderError := forksBuilder.BuildForks(); builderError == nil {
		application.rootCommand.AddCommand(forksCommand)
	}

	unclonedBuilder := &hosted.CommandBuilder{
		LoggerProvider: loggerProvider,
		ConfigurationProvider: func() hosted.Configuration {
			return application.configuration.Tools.Uncloned
		},
	}
	if unclonedCommand, builderError := unclonedBuilder.BuildUncloned(); builderError == nil {
		application.rootCommand.AddCommand(unclonedCommand)
	}

	archivedBuilder := &hosted.CommandBuilder{
		LoggerProvider: loggerProvider,
		ConfigurationProvider: func() hosted.Configuration {
			return application.configuration.Tools.Archived
		},
	}
	if archivedCommand, builderError := archivedBuilder.BuildArchived(); builderError == nil {
		application.rootCommand.AddCommand(archivedCommand)
	}

	workflowsBuilder := &workflowscan.CommandBuilder{
		LoggerProvider: loggerProvider,
		ConfigurationProvider: func() workflowscan.Configuration {
			return application.configuration.Tools.Workflows
		},
	}
	if workflowsCommand, builderError := workflowsBuilder.Build(); builderError == nil {
		application.rootCommand.AddCommand(workflowsCommand)
	}

	pypiBuilder := &pypi.CommandBuilder{
		LoggerProvider: loggerProvider,
		ConfigurationProvider: func() pypi.Configuration {
			return application.configuration.Tools.Pypi
		},
	}
	if pypiCommand, builderError := pypiBuilder.Build(); builderError == nil {
		application.rootCommand.AddCommand(pypiCommand)
	}

	venvsBuilder := &pyenv.CommandBuilder{
		LoggerProvider: loggerProvider,
		ConfigurationProvider: func() pyenv.Configuration {
			return application.configuration.Tools.Venvs
		},
	}
	if venvsCommand, builderError := venvsBuilder.BuildVenvs(); builderError == nil {
		application.rootCommand.AddCommand(venvsCommand)
	}

	poetryBuilder := &pyenv.CommandBuilder{
		LoggerProvider: loggerProvider,
		ConfigurationProvider: func() pyenv.Configuration {
			return application.configuration.Tools.Poetry
		},
	}
	if poetryCommand, builderError := poetryBuilder.BuildPoetry(); builderError == nil {
		application.rootCommand.AddCommand(poetryCommand)
	}
}

func defaultConfigurationValues() map[string]any {
	worktreeDefaults := worktree.DefaultConfiguration()
	syncerDefaults := syncer.DefaultConfiguration()
	runsDefaults := ciruns.DefaultConfiguration()
	protocolDefaults := cloneprotocol.DefaultConfiguration()
	inventoryDefaults := inventory.DefaultConfiguration()
	hostedDefaults := hosted.DefaultConfiguration()
	workflowsDefaults := workflowscan.DefaultConfiguration()
	pypiDefaults := pypi.DefaultConfiguration()
	pyenvDefaults := pyenv.DefaultConfiguration()

	return map[string]any{
		logLevelConfigurationKeyConstant:   string(utils.LogLevelInfo),
		logFormatConfigurationKeyConstant:  string(utils.LogFormatStructured),
		"tools.stranded.root":              worktreeDefaults.Root,
		"tools.changes.root":               worktreeDefaults.Root,
		"tools.pull.root":                  syncerDefaults.Root,
		"tools.push.root":                  syncerDefaults.Root,
		"tools.runs.root":                  runsDefaults.Root,
		"tools.runs.cleanup_title_prefix":  runsDefaults.CleanupTitlePrefix,
		"tools.runs.cleanup_run_limit":     runsDefaults.CleanupRunLimit,
		"tools.protocol.root":              protocolDefaults.Root,
		"tools.orphans.root":               inventoryDefaults.Root,
		"tools.abandoned.root":             inventoryDefaults.Root,
		"tools.abandoned.commit_threshold": inventoryDefaults.CommitThreshold,
		"tools.forks.root":                 hostedDefaults.Root,
		"tools.uncloned.root":              hostedDefaults.Root,
		"tools.archived.root":              hostedDefaults.Root,
		"tools.workflows.root":             workflowsDefaults.Root,
		"tools.workflows.parser":           workflowsDefaults.Parser,
		"tools.pypi.max_workers":           pypiDefaults.MaxWorkers,
		"tools.pypi.base_url":              pypiDefaults.BaseURL,
		"tools.venvs.root":                 pyenvDefaults.Root,
		"tools.poetry.root":                pyenvDefaults.Root,
	}
}

func (application *Application) initializeConfiguration(command *cobra.Command, _ []string) error {
	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(
		application.configurationFilePath,
		defaultConfigurationValues(),
		&application.configuration,
	)
	if loadError != nil {
		return loadError
	}
	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}
	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	loggerInstance, loggerError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerError != nil {
		return loggerError
	}
	application.logger = loggerInstance

	application.logger.Info(configurationInitializedMessageConstant,
		zap.String(logLevelFieldNameConstant, application.configuration.Common.LogLevel),
		zap.String(logFormatFieldNameConstant, application.configuration.Common.LogFormat),
		zap.String(configFileFieldNameConstant, application.configurationMetadata.ConfigFileUsed),
	)

	commandContext := application.commandContextAccessor.WithConfigurationFilePath(command.Context(), application.configurationMetadata.ConfigFileUsed)
	command.SetContext(commandContext)
	application.rootCommand.SetContext(commandContext)

	return nil
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	flagSets := []*pflag.FlagSet{
		command.Flags(),
		command.InheritedFlags(),
		application.rootCommand.PersistentFlags(),
	}
	for _, flagSet := range flagSets {
		if flagInstance := flagSet.Lookup(flagName); flagInstance != nil && flagInstance.Changed {
			return true
		}
	}
	return false
}

func (application *Application) runRootCommand(command *cobra.Command, _ []string) error {
	application.logger.Info(rootCommandHelpMessageConstant)
	return command.Help()
}

// Execute runs the command tree and flushes the logger afterwards.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()

	if flushError := application.flushLogger(); flushError != nil && executionError == nil {
		executionError = fmt.Errorf(loggerFlushErrorTemplateConstant, flushError)
	}

	return executionError
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}
	return syncLoggerInstance(application.logger)
}

// syncLoggerInstance flushes the logger, tolerating sync errors from terminal descriptors.
func syncLoggerInstance(loggerInstance *zap.Logger) error {
	syncError := loggerInstance.Sync()
	if syncError == nil {
		return nil
	}
	if errors.Is(syncError, syscall.ENOTSUP) || errors.Is(syncError, syscall.EINVAL) {
		return nil
	}
	return syncError
}

// Execute constructs the application and runs it with default wiring.
func Execute() error {
	return NewApplication().Execute()
}
