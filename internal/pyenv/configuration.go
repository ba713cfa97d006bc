package pyenv

const defaultRootDirectoryConstant = "."

// Configuration captures settings for the venvs and poetry commands.
type Configuration struct {
	Root string `mapstructure:"root"`
}

// DefaultConfiguration returns the baseline Python environment scan settings.
func DefaultConfiguration() Configuration {
	return Configuration{Root: defaultRootDirectoryConstant}
}

func (configuration Configuration) rootOrDefault() string {
	if len(configuration.Root) == 0 {
		return defaultRootDirectoryConstant
	}
	return configuration.Root
}
