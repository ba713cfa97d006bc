package worktree

const defaultRootDirectoryConstant = "."

// Configuration captures settings for the stranded and changes commands.
type Configuration struct {
	Root    string `mapstructure:"root"`
	Verbose bool   `mapstructure:"verbose"`
}

// DefaultConfiguration returns the baseline worktree scan settings.
func DefaultConfiguration() Configuration {
	return Configuration{Root: defaultRootDirectoryConstant}
}

func (configuration Configuration) rootOrDefault() string {
	if len(configuration.Root) == 0 {
		return defaultRootDirectoryConstant
	}
	return configuration.Root
}
