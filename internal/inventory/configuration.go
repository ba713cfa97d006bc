package inventory

const (
	defaultRootDirectoryConstant   = "."
	defaultCommitThresholdConstant = 10
)

// Configuration captures settings for the orphans and abandoned commands.
type Configuration struct {
	Root            string `mapstructure:"root"`
	CommitThreshold int    `mapstructure:"commit_threshold"`
}

// DefaultConfiguration returns the baseline inventory scan settings.
func DefaultConfiguration() Configuration {
	return Configuration{
		Root:            defaultRootDirectoryConstant,
		CommitThreshold: defaultCommitThresholdConstant,
	}
}

func (configuration Configuration) rootOrDefault() string {
	if len(configuration.Root) == 0 {
		return defaultRootDirectoryConstant
	}
	return configuration.Root
}

func (configuration Configuration) thresholdOrDefault() int {
	if configuration.CommitThreshold <= 0 {
		return defaultCommitThresholdConstant
	}
	return configuration.CommitThreshold
}
