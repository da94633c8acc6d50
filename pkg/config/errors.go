package config

import "fmt"

// ConfigError reports one invalid configuration value.
type ConfigError struct {
	Field   string
	Message string
}

// Error returns a formatted error message
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Message)
}

// ConfigErrors is a collection of configuration errors
type ConfigErrors []ConfigError

// Error returns all configuration errors formatted with clear separation
func (e ConfigErrors) Error() string {
	if len(e) == 0 {
		return "configuration errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	result := fmt.Sprintf("found %d configuration errors:\n", len(e))
	for i, err := range e {
		result += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return result
}
