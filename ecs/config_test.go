package ecs

import (
	"errors"
	"testing"
	"time"

	"github.com/bitzstein/synapse-aws-ecs/api"
)

func TestFromService(t *testing.T) {
	svc := api.Service{
		Name: "myservice",
		Discovery: api.DiscoveryOptions{
			Method:          "aws_ecs",
			AWSRegion:       "us-east-1",
			AWSECSCluster:   "production",
			AWSECSFamily:    "myservice",
			AWSEC2Interface: "public",
			ContainerPort:   8080,
			CheckInterval:   2.5,
		},
	}

	cfg := FromService(svc)
	if cfg.Service != "myservice" || cfg.Cluster != "production" || cfg.Family != "myservice" {
		t.Errorf("identity fields not mapped: %+v", cfg)
	}
	if cfg.Interface != InterfacePublic {
		t.Errorf("interface: got %q, want %q", cfg.Interface, InterfacePublic)
	}
	if cfg.ContainerPort != 8080 {
		t.Errorf("container port: got %d, want 8080", cfg.ContainerPort)
	}
	if cfg.CheckInterval != 2500*time.Millisecond {
		t.Errorf("check interval: got %v, want 2.5s", cfg.CheckInterval)
	}
}

func TestFromServiceDefaultInterval(t *testing.T) {
	cfg := FromService(api.Service{Discovery: api.DiscoveryOptions{Method: "aws_ecs"}})
	if cfg.CheckInterval != 15*time.Second {
		t.Errorf("got %v, want 15s default", cfg.CheckInterval)
	}
}

func TestConfigValidate(t *testing.T) {
	valid := Config{
		Service: "myservice",
		Method:  Method,
		Cluster: "production",
		Family:  "myservice",
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid minimal", func(c *Config) {}, false},
		{"valid public interface", func(c *Config) { c.Interface = InterfacePublic }, false},
		{"valid private interface", func(c *Config) { c.Interface = InterfacePrivate }, false},
		{"valid container port", func(c *Config) { c.ContainerPort = 8080 }, false},
		{"wrong method", func(c *Config) { c.Method = "zookeeper" }, true},
		{"empty method", func(c *Config) { c.Method = "" }, true},
		{"missing cluster", func(c *Config) { c.Cluster = "" }, true},
		{"missing family", func(c *Config) { c.Family = "" }, true},
		{"bad interface", func(c *Config) { c.Interface = "elastic" }, true},
		{"negative container port", func(c *Config) { c.ContainerPort = -1 }, true},
		{"container port too large", func(c *Config) { c.ContainerPort = 70000 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				var cfgErr *api.ConfigurationError
				if !errors.As(err, &cfgErr) {
					t.Errorf("got %v, want ConfigurationError", err)
				}
			} else if err != nil {
				t.Errorf("got %v, want nil", err)
			}
		})
	}
}
