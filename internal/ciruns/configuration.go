package ciruns

const (
	defaultRootDirectoryConstant      = "."
	defaultCleanupTitlePrefixConstant = "[pre-commit.ci]"
	defaultCleanupRunLimitConstant    = 100
)

// Configuration captures settings for the runs failing and runs cleanup commands.
type Configuration struct {
	Root               string `mapstructure:"root"`
	CleanupTitlePrefix string `mapstructure:"cleanup_title_prefix"`
	CleanupRunLimit    int    `mapstructure:"cleanup_run_limit"`
	DryRun             bool   `mapstructure:"dry_run"`
}

// DefaultConfiguration returns the baseline workflow run settings.
func DefaultConfiguration() Configuration {
	return Configuration{
		Root:               defaultRootDirectoryConstant,
		CleanupTitlePrefix: defaultCleanupTitlePrefixConstant,
		CleanupRunLimit:    defaultCleanupRunLimitConstant,
	}
}

func (configuration Configuration) rootOrDefault() string {
	if len(configuration.Root) == 0 {
		return defaultRootDirectoryConstant
	}
	return configuration.Root
}

func (configuration Configuration) cleanupTitlePrefixOrDefault() string {
	if len(configuration.CleanupTitlePrefix) == 0 {
		return defaultCleanupTitlePrefixConstant
	}
	return configuration.CleanupTitlePrefix
}

func (configuration Configuration) cleanupRunLimitOrDefault() int {
	if configuration.CleanupRunLimit <= 0 {
		return defaultCleanupRunLimitConstant
	}
	return configuration.CleanupRunLimit
}
