package cloneprotocol

const defaultRootDirectoryConstant = "."

// Configuration captures settings for the protocol command.
type Configuration struct {
	Root     string `mapstructure:"root"`
	ShowURLs bool   `mapstructure:"show_urls"`
}

// DefaultConfiguration returns the baseline protocol scan settings.
func DefaultConfiguration() Configuration {
	return Configuration{Root: defaultRootDirectoryConstant}
}

func (configuration Configuration) rootOrDefault() string {
	if len(configuration.Root) == 0 {
		return defaultRootDirectoryConstant
	}
	return configuration.Root
}
