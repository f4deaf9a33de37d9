package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/bitzstein/synapse-aws-ecs/api"
)

type stubWatcher struct {
	name string
}

func (s *stubWatcher) Name() string            { return s.name }
func (s *stubWatcher) Validate() error         { return nil }
func (s *stubWatcher) Start() error            { return nil }
func (s *stubWatcher) Stop()                   {}
func (s *stubWatcher) Backends() []api.Backend { return nil }

func TestNewUnknownMethod(t *testing.T) {
	svc := api.Service{
		Name:      "myservice",
		Discovery: api.DiscoveryOptions{Method: "zookeeper"},
	}

	_, err := New(context.Background(), svc, nil, zerolog.Nop())
	var cfgErr *api.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("got %v, want ConfigurationError", err)
	}
}

func TestNewInvalidECSConfig(t *testing.T) {
	// aws_ecs is registered by init; a block without a cluster must fail
	// before any AWS client is built
	svc := api.Service{
		Name:      "myservice",
		Discovery: api.DiscoveryOptions{Method: "aws_ecs"},
	}

	_, err := New(context.Background(), svc, nil, zerolog.Nop())
	var cfgErr *api.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("got %v, want ConfigurationError", err)
	}
}

func TestRegisterCustomFactory(t *testing.T) {
	Register("stub", func(ctx context.Context, svc api.Service, hook api.ReconfigureFunc, logger zerolog.Logger) (api.Watcher, error) {
		return &stubWatcher{name: svc.Name}, nil
	})

	svc := api.Service{
		Name:      "myservice",
		Discovery: api.DiscoveryOptions{Method: "stub"},
	}
	w, err := New(context.Background(), svc, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if w.Name() != "myservice" {
		t.Errorf("got %q, want %q", w.Name(), "myservice")
	}
}
