// Package ecs implements an AWS ECS service-discovery watcher: it polls a
// cluster/family pair for running tasks, resolves each task to a host:port
// backend on its EC2 container instance, and republishes the list through a
// reconfigure hook whenever it changes.
package ecs

import (
	"fmt"
	"time"

	"github.com/bitzstein/synapse-aws-ecs/api"
)

// Method is the discovery method name this watcher registers under.
const Method = "aws_ecs"

// Interface values for selecting which EC2 address family to expose.
const (
	InterfacePublic  = "public"
	InterfacePrivate = "private"
)

const defaultCheckInterval = 15 * time.Second

// Config holds one watcher's discovery configuration.
type Config struct {
	Service         string
	Method          string
	Region          string
	Cluster         string
	Family          string
	Interface       string
	ContainerPort   int
	CheckInterval   time.Duration
	AccessKeyID     string
	SecretAccessKey string
	EndpointURL     string // custom endpoint for simulator mode
}

// FromService builds a Config from a framework service block, applying
// defaults.
func FromService(svc api.Service) Config {
	cfg := Config{
		Service:         svc.Name,
		Method:          svc.Discovery.Method,
		Region:          svc.Discovery.AWSRegion,
		Cluster:         svc.Discovery.AWSECSCluster,
		Family:          svc.Discovery.AWSECSFamily,
		Interface:       svc.Discovery.AWSEC2Interface,
		ContainerPort:   svc.Discovery.ContainerPort,
		CheckInterval:   defaultCheckInterval,
		AccessKeyID:     svc.Discovery.AWSAccessKeyID,
		SecretAccessKey: svc.Discovery.AWSSecretAccessKey,
		EndpointURL:     svc.Discovery.AWSEndpointURL,
	}
	if svc.Discovery.CheckInterval > 0 {
		cfg.CheckInterval = time.Duration(svc.Discovery.CheckInterval * float64(time.Second))
	}
	return cfg
}

// Validate checks the configuration before the poll loop starts.
func (c Config) Validate() error {
	if c.Method != Method {
		return &api.ConfigurationError{
			Service: c.Service,
			Message: fmt.Sprintf("discovery method %q is not %q", c.Method, Method),
		}
	}
	if c.Cluster == "" {
		return &api.ConfigurationError{Service: c.Service, Message: "aws_ecs_cluster is required"}
	}
	if c.Family == "" {
		return &api.ConfigurationError{Service: c.Service, Message: "aws_ecs_family is required"}
	}
	switch c.Interface {
	case "", InterfacePublic, InterfacePrivate:
	default:
		return &api.ConfigurationError{
			Service: c.Service,
			Message: fmt.Sprintf("aws_ec2_interface %q must be %q or %q", c.Interface, InterfacePublic, InterfacePrivate),
		}
	}
	if c.ContainerPort < 0 || c.ContainerPort > 65535 {
		return &api.ConfigurationError{
			Service: c.Service,
			Message: fmt.Sprintf("container_port %d out of range", c.ContainerPort),
		}
	}
	return nil
}
