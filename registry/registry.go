// Package registry maps discovery method names to watcher constructors so
// the framework can instantiate watchers from service configuration blocks.
package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/bitzstein/synapse-aws-ecs/api"
	"github.com/bitzstein/synapse-aws-ecs/ecs"
)

// Factory builds a watcher for one service.
type Factory func(ctx context.Context, svc api.Service, hook api.ReconfigureFunc, logger zerolog.Logger) (api.Watcher, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a factory available under a method name, replacing any
// previous registration.
func Register(method string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[method] = f
}

// New instantiates the watcher named by the service's discovery method.
func New(ctx context.Context, svc api.Service, hook api.ReconfigureFunc, logger zerolog.Logger) (api.Watcher, error) {
	mu.RLock()
	f, ok := factories[svc.Discovery.Method]
	mu.RUnlock()
	if !ok {
		return nil, &api.ConfigurationError{
			Service: svc.Name,
			Message: fmt.Sprintf("unknown discovery method %q", svc.Discovery.Method),
		}
	}
	return f(ctx, svc, hook, logger)
}

func init() {
	Register(ecs.Method, func(ctx context.Context, svc api.Service, hook api.ReconfigureFunc, logger zerolog.Logger) (api.Watcher, error) {
		return ecs.NewFromService(ctx, svc, hook, logger)
	})
}
