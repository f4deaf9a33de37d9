// Package api defines the boundary between the service-discovery framework
// and its watchers: the backend record watchers produce, the per-service
// configuration block they consume, and the watcher lifecycle contract.
package api

// Backend is a resolved, reachable endpoint for a service. Two backends are
// equal when all three fields are equal.
type Backend struct {
	Name string `json:"name" toml:"name"`
	Host string `json:"host" toml:"host"`
	Port int    `json:"port" toml:"port"`
}

// DiscoveryOptions is the per-service discovery block. Which keys apply
// depends on Method; unknown keys for a method are ignored by its watcher.
type DiscoveryOptions struct {
	Method             string  `toml:"method"`
	AWSRegion          string  `toml:"aws_region"`
	AWSECSCluster      string  `toml:"aws_ecs_cluster"`
	AWSECSFamily       string  `toml:"aws_ecs_family"`
	AWSEC2Interface    string  `toml:"aws_ec2_interface"`
	ContainerPort      int     `toml:"container_port"`
	CheckInterval      float64 `toml:"check_interval"`
	AWSAccessKeyID     string  `toml:"aws_access_key_id"`
	AWSSecretAccessKey string  `toml:"aws_secret_access_key"`
	AWSEndpointURL     string  `toml:"aws_endpoint_url"`
}

// Service describes one service the framework wants discovered.
// DefaultServers is the static fallback published when discovery yields
// nothing.
type Service struct {
	Name           string           `toml:"name"`
	Discovery      DiscoveryOptions `toml:"discovery"`
	DefaultServers []Backend        `toml:"default_servers"`
}

// ReconfigureFunc is invoked whenever a watcher publishes a new backend
// list. It runs inside the watcher's publish step, so by the time any
// reader observes the new list the hook has already been called for it.
type ReconfigureFunc func(service string, backends []Backend)

// Watcher discovers backends for one service on a background goroutine.
type Watcher interface {
	// Name returns the service name this watcher discovers.
	Name() string
	// Validate checks the watcher's configuration without starting it.
	Validate() error
	// Start validates the configuration and launches the poll loop.
	Start() error
	// Stop signals the loop to exit and waits for the in-flight cycle to
	// finish. In-flight API calls are not interrupted. Safe to call twice.
	Stop()
	// Backends returns a snapshot of the last published backend list.
	Backends() []Backend
}
