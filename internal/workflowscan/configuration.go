package workflowscan

const (
	defaultRootDirectoryConstant = "."
	// LineParserName selects the indentation-aware line scanner.
	LineParserName = "line"
	// YAMLParserName selects the full YAML document walker.
	YAMLParserName = "yaml"
)

// Configuration captures settings for the workflows command.
type Configuration struct {
	Root   string `mapstructure:"root"`
	Parser string `mapstructure:"parser"`
}

// DefaultConfiguration returns the baseline workflow scan settings.
func DefaultConfiguration() Configuration {
	return Configuration{
		Root:   defaultRootDirectoryConstant,
		Parser: LineParserName,
	}
}

func (configuration Configuration) rootOrDefault() string {
	if len(configuration.Root) == 0 {
		return defaultRootDirectoryConstant
	}
	return configuration.Root
}
