package api

import "fmt"

// ConfigurationError indicates an invalid service configuration. It is
// fatal at startup: a watcher with a configuration error never starts.
type ConfigurationError struct {
	Service string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Service != "" {
		return fmt.Sprintf("service %s: %s", e.Service, e.Message)
	}
	return e.Message
}
