package pypi

import "errors"

const (
	defaultBaseURLConstant    = "https://pypi.org"
	defaultMaxWorkersConstant = 6
	usernameRequiredMessage   = "pypi username is required; set tools.pypi.username or pass --username"
)

// ErrUsernameRequired indicates no PyPI username was configured.
var ErrUsernameRequired = errors.New(usernameRequiredMessage)

// Configuration captures settings for the pypi command.
type Configuration struct {
	Username   string `mapstructure:"username"`
	MaxWorkers int    `mapstructure:"max_workers"`
	BaseURL    string `mapstructure:"base_url"`
}

// DefaultConfiguration returns the baseline PyPI check settings.
// The username has no default and must be supplied by configuration or flag.
func DefaultConfiguration() Configuration {
	return Configuration{
		MaxWorkers: defaultMaxWorkersConstant,
		BaseURL:    defaultBaseURLConstant,
	}
}

func (configuration Configuration) maxWorkersOrDefault() int {
	if configuration.MaxWorkers <= 0 {
		return defaultMaxWorkersConstant
	}
	return configuration.MaxWorkers
}

func (configuration Configuration) baseURLOrDefault() string {
	if len(configuration.BaseURL) == 0 {
		return defaultBaseURLConstant
	}
	return configuration.BaseURL
}
