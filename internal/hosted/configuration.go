package hosted

import "errors"

const (
	defaultRootDirectoryConstant = "."
	ownerRequiredMessageConstant = "github owner is required; set tools.<command>.owner or pass --owner"
)

// ErrOwnerRequired indicates no GitHub owner was configured for a command that needs one.
var ErrOwnerRequired = errors.New(ownerRequiredMessageConstant)

// Configuration captures settings for the forks, uncloned, and archived commands.
type Configuration struct {
	Root  string `mapstructure:"root"`
	Owner string `mapstructure:"owner"`
}

// DefaultConfiguration returns the baseline hosted comparison settings.
// The owner has no default and must be supplied by configuration or flag.
func DefaultConfiguration() Configuration {
	return Configuration{Root: defaultRootDirectoryConstant}
}

func (configuration Configuration) rootOrDefault() string {
	if len(configuration.Root) == 0 {
		return defaultRootDirectoryConstant
	}
	return configuration.Root
}
