package ecs

import "fmt"

// AmbiguousPortError indicates a task exposes more than one candidate host
// port, so the watcher cannot pick one without an explicit container_port.
// A silent guess here would misroute traffic, so resolution fails instead.
type AmbiguousPortError struct {
	Service  string
	Bindings int
}

func (e *AmbiguousPortError) Error() string {
	return fmt.Sprintf("service %s: %d network bindings match; set container_port to disambiguate", e.Service, e.Bindings)
}

// NoMatchingPortError indicates no network binding matches the configured
// container port.
type NoMatchingPortError struct {
	Service       string
	ContainerPort int
}

func (e *NoMatchingPortError) Error() string {
	return fmt.Sprintf("service %s: no network binding for container port %d", e.Service, e.ContainerPort)
}
